package events

import (
	"reflect"
	"testing"
)

func TestBus_PublishInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	b := NewBus[int]()
	var got []string
	b.Subscribe(func(v int) { got = append(got, "a") })
	b.Subscribe(func(v int) { got = append(got, "b") })

	b.Publish(1)
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestBus_UnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	b := NewBus[string]()
	calls := 0
	unsub := b.Subscribe(func(string) { calls++ })
	other := 0
	b.Subscribe(func(string) { other++ })

	unsub()
	unsub()
	b.Publish("x")

	if calls != 0 {
		t.Fatalf("unsubscribed handler called %d times", calls)
	}
	if other != 1 {
		t.Fatalf("remaining handler called %d times", other)
	}
	b.mu.Lock()
	n := len(b.subs)
	b.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected 1 subscriber; got %d", n)
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	b := NewBus[int]()
	var unsub func()
	calls := 0
	unsub = b.Subscribe(func(int) {
		calls++
		unsub()
	})

	b.Publish(1)
	b.Publish(2)
	if calls != 1 {
		t.Fatalf("expected exactly one call; got %d", calls)
	}
}

func TestNotifier_CloseClearsSubscribers(t *testing.T) {
	t.Parallel()

	n := NewNotifier()
	calls := 0
	n.Subscribe(func() { calls++ })
	n.Notify()
	n.Close()
	n.Notify()

	if calls != 1 {
		t.Fatalf("expected 1 notification before close; got %d", calls)
	}
}
