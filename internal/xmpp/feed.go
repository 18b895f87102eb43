package xmpp

import (
	"context"
	"sync"

	"github.com/meszmate/sessionroster/internal/subscription"
)

// Feed broadcasts snapshots to its subscribers. A new subscriber first
// receives the latest snapshot. Slow subscribers only see the newest value.
type Feed[T any] struct {
	mu     sync.RWMutex
	latest T
	has    bool
	nextID int
	subs   map[int]chan subscription.Result[T]
}

// NewFeed creates a feed without a snapshot
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{
		subs: make(map[int]chan subscription.Result[T]),
	}
}

// Subscribe returns a channel of snapshots that is closed once ctx is done
func (f *Feed[T]) Subscribe(ctx context.Context) <-chan subscription.Result[T] {
	ch := make(chan subscription.Result[T], 1)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	if f.has {
		ch <- subscription.OK(f.latest)
	}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(ch)
		f.mu.Unlock()
	}()
	return ch
}

// Publish stores v as the latest snapshot and sends it to every subscriber
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = v
	f.has = true
	f.broadcast(subscription.OK(v))
}

// Fail sends err to every subscriber. The latest snapshot is kept.
func (f *Feed[T]) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast(subscription.Fail[T](err))
}

// Latest returns the latest snapshot
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest, f.has
}

// Len returns the number of subscribers
func (f *Feed[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// broadcast must be called with mu held. Only broadcast sends on the
// subscriber channels, so after dropping a pending value there is room.
func (f *Feed[T]) broadcast(r subscription.Result[T]) {
	for _, ch := range f.subs {
		select {
		case ch <- r:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- r
		}
	}
}

// failed returns a channel emitting err once and closing when ctx is done
func failed[T any](ctx context.Context, err error) <-chan subscription.Result[T] {
	ch := make(chan subscription.Result[T], 1)
	ch <- subscription.Fail[T](err)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}
