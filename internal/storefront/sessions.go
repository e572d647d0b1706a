package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/checkout"
)

// Backend is everything a checkout flow needs from the remote API.
type Backend interface {
	checkout.AddressSource
	checkout.OrderPlacer
	checkout.Authenticator
}

// Session is one shopper's cart store and checkout flow.
type Session struct {
	Cart     *cart.Store
	Checkout *checkout.Flow

	mu    sync.Mutex
	owner string
}

// Claim binds the session to userID on its first authenticated use. Once
// bound, every other user and every guest is refused.
func (s *Session) Claim(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner == "" {
		s.owner = userID
		return true
	}
	return s.owner == userID
}

func (s *Session) close() {
	s.Checkout.Close()
	s.Cart.Close()
}

// Sessions hands out one Session per shopper, creating and opening it on
// first use. A session idle for longer than the ttl is closed and dropped;
// its cart stays in the snapshot repository.
type Sessions struct {
	mu       sync.Mutex
	started  bool
	cache    *ttlcache.Cache[string, *Session]
	repo     cart.SnapshotRepository
	ids      cart.IDGenerator
	backend  Backend
	pricing  checkout.PricingPolicy
	loginURL string
	logger   *zap.Logger
}

func NewSessions(
	repo cart.SnapshotRepository,
	ids cart.IDGenerator,
	backend Backend,
	pricing checkout.PricingPolicy,
	loginURL string,
	ttl time.Duration,
	logger *zap.Logger,
) *Sessions {
	cache := ttlcache.New[string, *Session](
		ttlcache.WithTTL[string, *Session](ttl),
	)
	// explicit deletes close the session themselves
	cache.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Session]) {
		if reason == ttlcache.EvictionReasonDeleted {
			return
		}
		item.Value().close()
		logger.Debug("idle shopper session closed", zap.String("shopperId", item.Key()))
	})

	return &Sessions{
		cache:    cache,
		repo:     repo,
		ids:      ids,
		backend:  backend,
		pricing:  pricing,
		loginURL: loginURL,
		logger:   logger,
	}
}

// Start runs the expiry loop until CloseAll. It blocks.
func (s *Sessions) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.cache.Start()
}

func (s *Sessions) Get(ctx context.Context, shopperID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.cache.Get(shopperID); item != nil {
		return item.Value(), nil
	}
	// closes an expired entry that the expiry loop has not reached yet
	s.cache.DeleteExpired()

	logger := s.logger.With(zap.String("shopperId", shopperID))
	store := cart.NewStore(shopperID, s.repo, s.ids, logger)
	if err := store.Open(ctx); err != nil {
		return nil, err
	}

	session := &Session{
		Cart:     store,
		Checkout: checkout.NewFlow(store, s.backend, s.backend, s.backend, s.pricing, s.loginURL, logger),
	}
	s.cache.Set(shopperID, session, ttlcache.DefaultTTL)
	logger.Debug("shopper session started")
	return session, nil
}

// Close ends a shopper's session.
func (s *Sessions) Close(shopperID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.cache.Get(shopperID); item != nil {
		s.cache.Delete(shopperID)
		item.Value().close()
	}
}

// DropExpired closes every session whose ttl has passed.
func (s *Sessions) DropExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.DeleteExpired()
}

// CloseAll stops the expiry loop and closes every session. Carts stay in the
// snapshot repository.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.cache.Stop()
		s.started = false
	}
	items := s.cache.Items()
	s.cache.DeleteAll()
	for _, item := range items {
		item.Value().close()
	}
	s.logger.Info("shopper sessions closed", zap.Int("count", len(items)))
}

func (s *Sessions) Len() int {
	return s.cache.Len()
}
