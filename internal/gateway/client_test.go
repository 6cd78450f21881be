package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"taskdeck/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeService mimics the remote task service's REST contract.
type fakeService struct {
	mu       sync.Mutex
	tasks    map[int64]model.ServerTask
	order    []int64
	nextID   int64
	lastBody map[string]any
	reqIDs   []string

	// failWith forces every request to answer with this status and body.
	failWith int
	failBody string
	delay    time.Duration
}

func newFakeService(seed ...model.ServerTask) *fakeService {
	f := &fakeService{tasks: map[int64]model.ServerTask{}, nextID: 1}
	for _, s := range seed {
		f.tasks[s.ID] = s
		f.order = append(f.order, s.ID)
		if s.ID >= f.nextID {
			f.nextID = s.ID + 1
		}
	}
	return f
}

func (f *fakeService) router() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		f.mu.Lock()
		f.reqIDs = append(f.reqIDs, c.GetHeader("X-Request-ID"))
		fail, body, delay := f.failWith, f.failBody, f.delay
		f.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		if fail != 0 {
			c.Data(fail, "application/json", []byte(body))
			c.Abort()
			return
		}
		c.Next()
	})

	g := r.Group("/api/tasks")
	g.GET("", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []model.ServerTask{}
		for _, id := range f.order {
			out = append(out, f.tasks[id])
		}
		c.JSON(http.StatusOK, out)
	})
	g.GET("/incomplete", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []model.ServerTask{}
		for _, id := range f.order {
			if t := f.tasks[id]; !t.Status.IsEndState() {
				out = append(out, t)
			}
		}
		c.JSON(http.StatusOK, out)
	})
	g.GET("/:id", func(c *gin.Context) {
		t, ok := f.lookup(c)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, t)
	})
	g.POST("", func(c *gin.Context) {
		var in model.ServerTask
		if !f.bind(c, &in) {
			return
		}
		if in.Label == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "label is required"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		in.ID = f.nextID
		f.nextID++
		in.CreatedAt, in.UpdatedAt = &now, &now
		f.tasks[in.ID] = in
		f.order = append(f.order, in.ID)
		c.JSON(http.StatusCreated, in)
	})
	g.PATCH("/:id/status", func(c *gin.Context) {
		var in model.StatusUpdate
		if !f.bind(c, &in) {
			return
		}
		t, ok := f.lookup(c)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		t.Status = in.Status
		f.store(t)
		c.JSON(http.StatusOK, t)
	})
	g.PATCH("/:id/update", func(c *gin.Context) {
		var in model.ServerTask
		if !f.bind(c, &in) {
			return
		}
		cur, ok := f.lookup(c)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		in.ID = cur.ID
		in.CreatedAt = cur.CreatedAt
		f.store(in)
		c.JSON(http.StatusOK, in)
	})
	g.DELETE("/:id", func(c *gin.Context) {
		t, ok := f.lookup(c)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.tasks, t.ID)
		for i, id := range f.order {
			if id == t.ID {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func (f *fakeService) bind(c *gin.Context, v any) bool {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return false
	}
	f.mu.Lock()
	f.lastBody = raw
	f.mu.Unlock()
	b, _ := json.Marshal(raw)
	if err := json.Unmarshal(b, v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return false
	}
	return true
}

func (f *fakeService) lookup(c *gin.Context) (model.ServerTask, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return model.ServerTask{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	return t, ok
}

func (f *fakeService) store(t model.ServerTask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t
}

func (f *fakeService) body() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

func newTestClient(t *testing.T, f *fakeService) *Client {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second})
}

func TestClient_ListAdaptsToUIShape(t *testing.T) {
	done := true
	f := newFakeService(
		model.ServerTask{ID: 1, Label: "Buy milk", Status: model.StatusInProgress},
		model.ServerTask{ID: 2, Label: "Legacy", LegacyCompleted: &done},
	)
	c := newTestClient(t, f)

	got, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Buy milk", got[0].Title)
	assert.Equal(t, model.StatusInProgress, got[0].Status)
	assert.Equal(t, model.StatusCompleted, got[1].Status)
	assert.True(t, got[1].Completed())
}

func TestClient_ListIncomplete(t *testing.T) {
	f := newFakeService(
		model.ServerTask{ID: 1, Label: "a", Status: model.StatusPending},
		model.ServerTask{ID: 2, Label: "b", Status: model.StatusCompleted},
		model.ServerTask{ID: 3, Label: "c", Status: model.StatusCancelled},
	)
	c := newTestClient(t, f)

	got, err := c.ListIncomplete(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestClient_CreateSendsServerShape(t *testing.T) {
	f := newFakeService()
	c := newTestClient(t, f)

	got, err := c.Create(context.Background(), model.Task{Title: "Buy milk", Status: model.StatusPending, Priority: model.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Buy milk", got.Title)
	require.NotNil(t, got.CreatedAt)
	require.NotNil(t, got.UpdatedAt)

	body := f.body()
	assert.Equal(t, "Buy milk", body["label"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "high", body["priority"])
	assert.NotContains(t, body, "title")
	assert.NotContains(t, body, "id")
}

func TestClient_UpdateMergesOverPersistedTask(t *testing.T) {
	f := newFakeService(model.ServerTask{ID: 7, Label: "old", Description: "keep", Status: model.StatusInProgress, Priority: model.PriorityLow})
	c := newTestClient(t, f)

	title := "new"
	got, err := c.Update(context.Background(), 7, model.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "keep", got.Description)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, model.PriorityLow, got.Priority)

	body := f.body()
	assert.EqualValues(t, 7, body["id"])
	assert.Equal(t, "keep", body["description"])
	assert.Equal(t, "in-progress", body["status"])
}

func TestClient_UpdateStatus(t *testing.T) {
	f := newFakeService(model.ServerTask{ID: 5, Label: "x", Status: model.StatusPending})
	c := newTestClient(t, f)

	got, err := c.UpdateStatus(context.Background(), 5, model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, map[string]any{"status": "completed"}, f.body())
}

func TestClient_RemoveTwiceIsNotFound(t *testing.T) {
	f := newFakeService(model.ServerTask{ID: 3, Label: "x"})
	c := newTestClient(t, f)

	require.NoError(t, c.Remove(context.Background(), 3))

	err := c.Remove(context.Background(), 3)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "got %T: %v", err, err)
	assert.Equal(t, int64(3), nf.ID)
}

func TestClient_GetNotFound(t *testing.T) {
	c := newTestClient(t, newFakeService())

	_, err := c.Get(context.Background(), 99)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestClient_UpdateOfMissingTaskFailsBeforeWrite(t *testing.T) {
	f := newFakeService()
	c := newTestClient(t, f)

	title := "x"
	_, err := c.Update(context.Background(), 42, model.Patch{Title: &title})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Nil(t, f.body())
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "bad request with message",
			status: http.StatusBadRequest,
			body:   `{"message":"title is required"}`,
			check: func(t *testing.T, err error) {
				var e *InvalidRequestError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "title is required", e.Message)
			},
		},
		{
			name:   "bad request without body",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				var e *InvalidRequestError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "invalid data", e.Message)
			},
		},
		{
			name:   "server error envelope",
			status: http.StatusInternalServerError,
			body:   `{"error":{"code":500,"message":"db is down"}}`,
			check: func(t *testing.T, err error) {
				var e *ServiceError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 500, e.StatusCode)
				assert.Equal(t, "db is down", e.Message)
			},
		},
		{
			name:   "unavailable without body",
			status: http.StatusServiceUnavailable,
			check: func(t *testing.T, err error) {
				var e *ServiceError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, http.StatusServiceUnavailable, e.StatusCode)
				assert.Contains(t, e.Error(), "Service Unavailable")
			},
		},
		{
			name:   "not found with spring body",
			status: http.StatusNotFound,
			body:   `{"status":404,"error":"Not Found"}`,
			check: func(t *testing.T, err error) {
				var e *NotFoundError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "Not Found", e.Message)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeService()
			f.failWith, f.failBody = tt.status, tt.body
			c := newTestClient(t, f)

			_, err := c.List(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_NetworkErrorWhenServiceIsDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Options{BaseURL: url, Timeout: time.Second})
	_, err := c.List(context.Background())

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.NotNil(t, errors.Unwrap(ne))
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	f := newFakeService()
	f.delay = 300 * time.Millisecond
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)

	c := NewClient(Options{BaseURL: srv.URL + "/api", Timeout: 30 * time.Millisecond})
	_, err := c.List(context.Background())

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
}

func TestClient_SendsRequestID(t *testing.T) {
	f := newFakeService()
	c := newTestClient(t, f)

	_, err := c.List(context.Background())
	require.NoError(t, err)
	_, err = c.List(context.Background())
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.reqIDs, 2)
	assert.NotEmpty(t, f.reqIDs[0])
	assert.NotEqual(t, f.reqIDs[0], f.reqIDs[1])
}

func TestClient_EmptySuccessBody(t *testing.T) {
	f := newFakeService()
	f.failWith = http.StatusCreated
	c := newTestClient(t, f)

	_, err := c.Create(context.Background(), model.Task{Title: "x"})
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusCreated, se.StatusCode)
	assert.Equal(t, "empty response", se.Message)

	// No result expected: an empty body is fine.
	f.mu.Lock()
	f.failWith = http.StatusNoContent
	f.mu.Unlock()
	require.NoError(t, c.Remove(context.Background(), 1))
}
