package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aayush4jha/kirayawale-beta-version/internal/cart"
)

// StorageFor returns the durable storage of one cart session.
type StorageFor func(sessionID string) cart.Storage

// CartService holds one cart per session, loaded from storage on first use.
// Carts are never shared or merged between sessions.
type CartService struct {
	listings ListingStore
	storage  StorageFor
	key      string
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*cartSession
}

type cartSession struct {
	cart     *cart.Cart
	lastUsed time.Time
}

func NewCartService(listings ListingStore, storage StorageFor, key string, log *zap.Logger) *CartService {
	if key == "" {
		key = cart.DefaultKey
	}
	return &CartService{
		listings: listings,
		storage:  storage,
		key:      key,
		log:      log,
		now:      time.Now,
		sessions: map[string]*cartSession{},
	}
}

// Cart returns the session's cart, rehydrating it from storage if needed.
// A failed storage read is reported as ErrUnavailable and nothing is
// cached, so the next call retries the read.
func (s *CartService) Cart(sessionID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		c, err := cart.Load(s.storage(sessionID), s.key)
		if err != nil {
			s.log.Error("cart load failed", zap.String("session", sessionID), zap.Error(err))
			return nil, fmt.Errorf("CartService.Cart: %w: %w", ErrUnavailable, err)
		}
		sess = &cartSession{cart: c}
		s.sessions[sessionID] = sess
	}
	sess.lastUsed = s.now()
	return sess.cart, nil
}

// Add puts the listing into the session's cart. Only listings that are
// active and not rented can be added.
func (s *CartService) Add(ctx context.Context, sessionID, listingID string, rentalDays int) (*cart.Cart, error) {
	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("CartService.Add: %w", lookupErr(err))
	}
	if !l.Eligible() {
		return nil, fmt.Errorf("CartService.Add: listing %s not available: %w", listingID, ErrConflict)
	}
	c, err := s.Cart(sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.Add(*l, rentalDays); err != nil {
		return c, s.persistErr("CartService.Add", sessionID, err)
	}
	return c, nil
}

func (s *CartService) Remove(sessionID, listingID string) (*cart.Cart, error) {
	c, err := s.Cart(sessionID)
	if err != nil {
		return nil, err
	}
	return c, s.persistErr("CartService.Remove", sessionID, c.Remove(listingID))
}

func (s *CartService) UpdateQuantity(sessionID, listingID string, quantity int) (*cart.Cart, error) {
	c, err := s.Cart(sessionID)
	if err != nil {
		return nil, err
	}
	return c, s.persistErr("CartService.UpdateQuantity", sessionID, c.UpdateQuantity(listingID, quantity))
}

func (s *CartService) UpdateRentalDays(sessionID, listingID string, days int) (*cart.Cart, error) {
	c, err := s.Cart(sessionID)
	if err != nil {
		return nil, err
	}
	return c, s.persistErr("CartService.UpdateRentalDays", sessionID, c.UpdateRentalDays(listingID, days))
}

func (s *CartService) Clear(sessionID string) (*cart.Cart, error) {
	c, err := s.Cart(sessionID)
	if err != nil {
		return nil, err
	}
	return c, s.persistErr("CartService.Clear", sessionID, c.Clear())
}

// Forget drops the session's cart from memory. Its stored copy is kept.
func (s *CartService) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Prune drops carts idle for longer than idle from memory. They are
// reloaded from storage on next use.
func (s *CartService) Prune(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// RunJanitor prunes idle carts every interval until ctx is done. A
// non-positive interval falls back to one minute.
func (s *CartService) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Prune(idle); n > 0 {
				s.log.Debug("pruned idle carts", zap.Int("count", n))
			}
		}
	}
}

func (s *CartService) persistErr(op, sessionID string, err error) error {
	if err == nil {
		return nil
	}
	s.log.Error("cart persistence failed", zap.String("op", op), zap.String("session", sessionID), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
