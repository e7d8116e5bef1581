package cart

import (
	"context"
	"sync"

	"ektagames/internal/domain"
)

// Broadcaster wakes a user's subscriptions after a committed write, for
// remotes that have no change feed of their own.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]map[int]chan struct{}
	next int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[string]map[int]chan struct{}{}}
}

func (b *Broadcaster) watch(uid string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[uid] == nil {
		b.subs[uid] = map[int]chan struct{}{}
	}
	b.subs[uid][id] = ch
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[uid], id)
		if len(b.subs[uid]) == 0 {
			delete(b.subs, uid)
		}
	}
}

// Notify coalesces: a subscriber that has not caught up gets one wake-up.
func (b *Broadcaster) Notify(uid string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[uid] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe returns a Subscription that reloads the collection with load on
// open and after every Notify for uid.
func (b *Broadcaster) Subscribe(ctx context.Context, uid string, load func(context.Context) ([]domain.CartItem, error)) Subscription {
	ch, stop := b.watch(uid)
	return &reloadSub{ctx: ctx, wake: ch, stop: stop, load: load, first: true}
}

type reloadSub struct {
	ctx   context.Context
	wake  <-chan struct{}
	stop  func()
	load  func(context.Context) ([]domain.CartItem, error)
	first bool
	once  sync.Once
}

func (r *reloadSub) Next() ([]domain.CartItem, error) {
	if r.first {
		r.first = false
	} else {
		select {
		case <-r.ctx.Done():
			return nil, r.ctx.Err()
		case <-r.wake:
		}
	}
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	return r.load(r.ctx)
}

func (r *reloadSub) Stop() { r.once.Do(r.stop) }
