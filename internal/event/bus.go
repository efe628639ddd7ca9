package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(raw any)

// Bus dispatches events synchronously on the publisher's goroutine, in subscription order.
// Locomotion events are published from inside a frame, so handlers run inside that frame.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]subscription
}

type subscription struct {
	id      uint64
	handler HandlerFunc
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]subscription),
	}
}

// Subscribe registers handler and returns a function that removes it.
func (b *Bus) Subscribe(eventName string, handler HandlerFunc) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[eventName] = append(b.handlers[eventName], subscription{id: id, handler: handler})
	return func() { b.unsubscribe(eventName, id) }
}

func (b *Bus) unsubscribe(eventName string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[eventName]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventName] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[eventName]) == 0 {
		delete(b.handlers, eventName)
	}
}

func (b *Bus) Publish(eventName string, evt any) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[eventName]))
	copy(subs, b.handlers[eventName])
	b.mu.RUnlock()

	for _, s := range subs {
		dispatch(eventName, s.handler, evt)
	}
}

func dispatch(eventName string, h HandlerFunc, evt any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", eventName, "panic", r)
		}
	}()
	h(evt)
}
