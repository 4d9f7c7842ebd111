package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// User is the signed-in identity as the storefront sees it.
type User struct {
	ID    string
	Name  string
	Phone string
}

// Identity is the capability views and checkout consume.
type Identity interface {
	CurrentUser() (User, bool)
	SignOut(ctx context.Context) error
}

// Session is one shopper's client state: the cart and, once signed in, the
// user. All access goes through its mutex.
type Session struct {
	Key string

	mu   sync.Mutex
	cart *Cart
	user *User
	reg  *Sessions

	lastSeen time.Time // guarded by reg.mu
}

var _ Identity = (*Session)(nil)

func (s *Session) SignIn(u User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

func (s *Session) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// SignOut drops the identity and the cart and removes the session from its
// registry.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.cart.Clear()
	s.mu.Unlock()
	if s.reg != nil {
		s.reg.Close(s.Key)
	}
	return nil
}

// WithCart runs fn with the session lock held.
func (s *Session) WithCart(fn func(c *Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cart)
}

// CartView is a point-in-time copy of a cart.
type CartView struct {
	Lines     []CartLine      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CartView{Lines: s.cart.Lines(), Total: s.cart.Total(), ItemCount: s.cart.ItemCount()}
}

// Sessions is the registry of live sessions keyed by a view-specific key
// (Telegram user id, HTTP session header). Sessions idle for longer than the
// TTL are dropped by Sweep.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessions returns a registry whose sessions never expire.
func NewSessions() *Sessions {
	return NewSessionsWithTTL(0)
}

// NewSessionsWithTTL returns a registry that expires sessions idle for ttl.
// A ttl <= 0 disables expiry.
func NewSessionsWithTTL(ttl time.Duration) *Sessions {
	return &Sessions{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

func (r *Sessions) TTL() time.Duration { return r.ttl }

// Open returns the session for key, creating it with an empty cart if needed.
func (r *Sessions) Open(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		s = &Session{Key: key, cart: NewCart(), reg: r}
		r.sessions[key] = s
	}
	s.lastSeen = r.now()
	return s
}

// Get returns the session for key without creating one.
func (r *Sessions) Get(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Sessions) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	n := 0
	for key, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, key)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (r *Sessions) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// Close forgets the session without touching its state.
func (r *Sessions) Close(key string) {
	r.mu.Lock()
	delete(r.sessions, key)
	r.mu.Unlock()
}

// SignOut tears down the session for key, if any.
func (r *Sessions) SignOut(ctx context.Context, key string) error {
	s, ok := r.Get(key)
	if !ok {
		return nil
	}
	return s.SignOut(ctx)
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
