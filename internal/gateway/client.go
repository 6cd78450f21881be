// Package gateway is the only place that talks to the remote task service.
//
// Every operation returns tasks in the canonical model shape and fails with
// exactly one of *NetworkError, *NotFoundError, *InvalidRequestError or
// *ServiceError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/model"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 4 << 20
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: base + "/tasks", http: hc, log: log.Named("gateway")}
}

func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	return c.list(ctx, "")
}

// ListIncomplete returns tasks that are neither completed nor cancelled.
func (c *Client) ListIncomplete(ctx context.Context) ([]model.Task, error) {
	return c.list(ctx, "/incomplete")
}

func (c *Client) list(ctx context.Context, suffix string) ([]model.Task, error) {
	var raw []model.ServerTask
	if err := c.do(ctx, http.MethodGet, suffix, 0, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(raw))
	for _, s := range raw {
		out = append(out, model.ToUI(s))
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (model.Task, error) {
	s, err := c.getServer(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	return model.ToUI(s), nil
}

func (c *Client) getServer(ctx context.Context, id int64) (model.ServerTask, error) {
	var s model.ServerTask
	err := c.do(ctx, http.MethodGet, "/"+idPath(id), id, nil, &s)
	return s, err
}

func (c *Client) Create(ctx context.Context, draft model.Task) (model.Task, error) {
	body := model.ToServer(draft)
	body.ID = 0
	var s model.ServerTask
	if err := c.do(ctx, http.MethodPost, "", 0, body, &s); err != nil {
		return model.Task{}, err
	}
	return model.ToUI(s), nil
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Task, error) {
	var s model.ServerTask
	if err := c.do(ctx, http.MethodPatch, "/"+idPath(id)+"/status", id, model.StatusUpdate{Status: status}, &s); err != nil {
		return model.Task{}, err
	}
	return model.ToUI(s), nil
}

// Update reads the persisted task, merges patch over it and submits the
// result as a full update. The read and the write are two requests; a
// concurrent writer between them is overwritten.
func (c *Client) Update(ctx context.Context, id int64, patch model.Patch) (model.Task, error) {
	cur, err := c.getServer(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	merged := patch.Apply(cur)
	merged.ID = id

	var s model.ServerTask
	if err := c.do(ctx, http.MethodPatch, "/"+idPath(id)+"/update", id, merged, &s); err != nil {
		return model.Task{}, err
	}
	return model.ToUI(s), nil
}

func (c *Client) Remove(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/"+idPath(id), id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, id int64, in, out any) error {
	url := c.base + path
	op := method + " " + url

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &InvalidRequestError{Message: fmt.Sprintf("encode request: %v", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorForStatus(resp.StatusCode, id, serviceMessage(raw))
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &ServiceError{StatusCode: resp.StatusCode, Message: "empty response"}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ServiceError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

// serviceMessage extracts a human message from an error body. Spring-style
// bodies carry "message"; envelope-style bodies carry "error.message".
func serviceMessage(raw []byte) string {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return ""
	}
	for _, path := range []string{"message", "error.message", "error"} {
		r := gjson.GetBytes(raw, path)
		if r.Type == gjson.String && strings.TrimSpace(r.String()) != "" {
			return strings.TrimSpace(r.String())
		}
	}
	return ""
}

func idPath(id int64) string { return strconv.FormatInt(id, 10) }
