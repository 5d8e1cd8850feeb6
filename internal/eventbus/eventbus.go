// Package eventbus dispatches typed events to in-process subscribers. A
// process installs one Bus with Use; until then Publish and Subscribe are
// no-ops, so instrumented code never needs to check for one.
package eventbus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler processes events of type T.
type Handler[T any] func(context.Context, T)

type subscription struct {
	id uint64
	fn func(context.Context, any)
}

// Bus routes each event to the subscribers of its dynamic type. Publishing
// reads an immutable snapshot; subscribing replaces it.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   atomic.Pointer[map[reflect.Type][]subscription]
}

func New() *Bus {
	b := &Bus{}
	b.subs.Store(&map[reflect.Type][]subscription{})
	return b
}

// update applies fn to a copy of the subscriptions and publishes the copy.
func (b *Bus) update(fn func(map[reflect.Type][]subscription)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	old := *b.subs.Load()
	next := make(map[reflect.Type][]subscription, len(old))
	for t, s := range old {
		next[t] = s
	}
	fn(next)
	b.subs.Store(&next)
}

func (b *Bus) subscribe(t reflect.Type, fn func(context.Context, any)) (unsubscribe func()) {
	var id uint64
	b.update(func(m map[reflect.Type][]subscription) {
		b.nextID++
		id = b.nextID
		m[t] = append(m[t][:len(m[t]):len(m[t])], subscription{id: id, fn: fn})
	})
	return func() {
		b.update(func(m map[reflect.Type][]subscription) {
			kept := make([]subscription, 0, len(m[t]))
			for _, s := range m[t] {
				if s.id != id {
					kept = append(kept, s)
				}
			}
			if len(kept) == 0 {
				delete(m, t)
				return
			}
			m[t] = kept
		})
	}
}

func (b *Bus) publish(ctx context.Context, t reflect.Type, e any) {
	for _, s := range (*b.subs.Load())[t] {
		s.fn(ctx, e)
	}
}

var global atomic.Pointer[Bus]

// Use installs b as the process bus. Use(nil) turns publishing off.
func Use(b *Bus) { global.Store(b) }

// Subscribe registers h on the installed bus. Without one it does nothing
// and the returned func is a no-op.
func Subscribe[T any](h Handler[T]) (unsubscribe func()) {
	b := global.Load()
	if b == nil {
		return func() {}
	}
	return b.subscribe(typeOf[T](), func(ctx context.Context, v any) { h(ctx, v.(T)) })
}

// Publish delivers e to the subscribers of T, in subscription order.
func Publish[T any](ctx context.Context, e T) {
	if b := global.Load(); b != nil {
		b.publish(ctx, typeOf[T](), e)
	}
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }
