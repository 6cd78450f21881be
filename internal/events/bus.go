// Package events provides a small in-process publish/subscribe bus.
package events

import "sync"

// Bus delivers published values to every current subscriber, in
// subscription order, on the publishing goroutine.
type Bus[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
	order  []int
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: map[int]func(T){}}
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = map[int]func(T){}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return
	}
	delete(b.subs, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i:i], b.order[i+1:]...)
			break
		}
	}
}

// Publish calls every subscriber with v. Handlers may subscribe or
// unsubscribe while being called; such changes apply to the next Publish.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	handlers := make([]func(T), 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(v)
	}
}

// Close drops all subscribers.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = map[int]func(T){}
	b.order = nil
}

// Notifier is the zero-argument "something changed" channel shared by views
// that re-read the task store on their own schedule.
type Notifier struct {
	bus *Bus[struct{}]
}

func NewNotifier() *Notifier {
	return &Notifier{bus: NewBus[struct{}]()}
}

func (n *Notifier) Notify() { n.bus.Publish(struct{}{}) }

func (n *Notifier) Subscribe(fn func()) (unsubscribe func()) {
	return n.bus.Subscribe(func(struct{}) { fn() })
}

func (n *Notifier) Close() { n.bus.Close() }
