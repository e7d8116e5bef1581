package cart

import (
	"context"
	"errors"
	"slices"
	"sync"

	applog "ektagames/internal/log"
	"ektagames/internal/domain"
	"ektagames/internal/metrics"
)

const (
	MsgLoginRequired    = "You must be logged in to manage your cart."
	MsgPermissionDenied = "You do not have permission to change this cart."
	MsgItemGone         = "That item is no longer in your cart."
	MsgInvalidQuantity  = "Quantity must be at least 1."
	MsgUpdateFailed     = "We couldn't update your cart. Please try again."

	maxNotices = 32
)

// Notice is a user-visible outcome of a fire-and-forget mutation.
type Notice struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}

// Event is pushed to listeners whenever the cart or its notices change.
type Event struct {
	Cart   domain.Cart `json:"cart"`
	Notice *Notice     `json:"notice,omitempty"`
}

// Store projects one session's remote cart. It is empty while signed out and
// mirrors the remote collection while signed in; mutations never touch the
// local items directly.
type Store struct {
	remote  Remote
	metrics *metrics.Metrics

	mu      sync.RWMutex
	uid     string
	gen     uint64
	items   []domain.CartItem
	cancel  context.CancelFunc
	done    chan struct{}
	notices []Notice

	lmu       sync.Mutex
	listeners map[int]chan Event
	nextL     int
}

func NewStore(remote Remote, m *metrics.Metrics) *Store {
	return &Store{remote: remote, metrics: m, listeners: map[int]chan Event{}}
}

// UserID is empty while signed out.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uid
}

func (s *Store) Authenticated() bool { return s.UserID() != "" }

func (s *Store) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.NewCart(slices.Clone(s.items))
}

// SignIn opens the live subscription for uid. Signing in as another user
// first tears down the current one.
func (s *Store) SignIn(uid string) error {
	if uid == "" {
		return errors.New("cart: empty uid")
	}
	if cur := s.UserID(); cur == uid {
		return nil
	} else if cur != "" {
		s.SignOut()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := s.remote.Subscribe(ctx, uid)
	if err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.uid = uid
	s.items = nil
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.watch(ctx, sub, uid, gen, done)
	return nil
}

func (s *Store) watch(ctx context.Context, sub Subscription, uid string, gen uint64, done chan struct{}) {
	defer close(done)
	defer sub.Stop()
	for {
		items, err := sub.Next()
		if err != nil {
			if ctx.Err() == nil {
				applog.BgWarn("cart.subscription", err, map[string]any{"user_id": uid})
				s.notify(Notice{Op: "subscribe", Message: MsgUpdateFailed})
			}
			return
		}
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.items = slices.Clone(items)
		cart := domain.NewCart(slices.Clone(s.items))
		s.mu.Unlock()
		s.publish(Event{Cart: cart})
	}
}

// SignOut stops the subscription, waits for it to release, and empties the
// cart.
func (s *Store) SignOut() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.gen++
	s.uid = ""
	s.items = nil
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	s.publish(Event{Cart: domain.NewCart(nil)})
}

func (s *Store) session() (string, []domain.CartItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uid, slices.Clone(s.items), s.uid != ""
}

// AddToCart merges into the product's existing line at the remote, so
// repeated adds never race on a stale snapshot.
func (s *Store) AddToCart(ctx context.Context, p domain.Product, qty int) {
	const op = "add"
	uid, _, ok := s.session()
	if !ok {
		s.reject(op)
		return
	}
	if qty < 1 {
		s.notify(Notice{Op: op, Message: MsgInvalidQuantity})
		return
	}
	_, err := s.remote.AddItem(ctx, uid, domain.NewCartItem{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  qty,
	})
	s.finish(op, uid, err)
}

func (s *Store) RemoveFromCart(ctx context.Context, itemID string) {
	const op = "remove"
	uid, _, ok := s.session()
	if !ok {
		s.reject(op)
		return
	}
	s.finish(op, uid, s.remote.Delete(ctx, uid, itemID))
}

// UpdateQuantity sets an item's quantity; anything below 1 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, qty int) {
	if qty < 1 {
		s.RemoveFromCart(ctx, itemID)
		return
	}
	const op = "update"
	uid, _, ok := s.session()
	if !ok {
		s.reject(op)
		return
	}
	s.finish(op, uid, s.remote.UpdateQuantity(ctx, uid, itemID, qty))
}

// ClearCart deletes every current item in one atomic batch.
func (s *Store) ClearCart(ctx context.Context) {
	const op = "clear"
	uid, items, ok := s.session()
	if !ok {
		s.reject(op)
		return
	}
	if len(items) == 0 {
		return
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	s.finish(op, uid, s.remote.DeleteBatch(ctx, uid, ids))
}

func (s *Store) reject(op string) {
	s.metrics.CartMutation(op, "unauthenticated")
	s.notify(Notice{Op: op, Message: MsgLoginRequired})
}

func (s *Store) finish(op, uid string, err error) {
	if err == nil {
		s.metrics.CartMutation(op, "ok")
		return
	}
	msg := MsgUpdateFailed
	switch {
	case errors.Is(err, ErrPermissionDenied):
		msg = MsgPermissionDenied
	case errors.Is(err, ErrItemNotFound):
		msg = MsgItemGone
	}
	s.metrics.CartMutation(op, "error")
	applog.BgWarn("cart."+op, err, map[string]any{"user_id": uid})
	s.notify(Notice{Op: op, Message: msg})
}

func (s *Store) notify(n Notice) {
	s.mu.Lock()
	s.notices = append(s.notices, n)
	if len(s.notices) > maxNotices {
		s.notices = slices.Clone(s.notices[len(s.notices)-maxNotices:])
	}
	cart := domain.NewCart(slices.Clone(s.items))
	s.mu.Unlock()
	s.publish(Event{Cart: cart, Notice: &n})
}

// Notices drains the pending notices.
func (s *Store) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// Listen streams events until cancel is called or the store is dropped,
// which closes the channel. Slow listeners miss intermediate events rather
// than blocking the store.
func (s *Store) Listen() (<-chan Event, func()) {
	ch := make(chan Event, 8)
	s.lmu.Lock()
	id := s.nextL
	s.nextL++
	s.listeners[id] = ch
	s.lmu.Unlock()

	return ch, func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		if ch, ok := s.listeners[id]; ok {
			delete(s.listeners, id)
			close(ch)
		}
	}
}

// Listening reports whether an event stream is attached.
func (s *Store) Listening() bool {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	return len(s.listeners) > 0
}

func (s *Store) closeListeners() {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	for id, ch := range s.listeners {
		delete(s.listeners, id)
		close(ch)
	}
}

func (s *Store) publish(ev Event) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}
