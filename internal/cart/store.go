package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

var ErrStoreClosed = errors.New("cart store is closed")

// SnapshotRepository stores encoded cart snapshots. Load returns a
// *errors.NotFoundError when nothing is stored under key.
type SnapshotRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

func SnapshotKey(shopperID string) string {
	return "cart:" + shopperID
}

// Store owns one shopper's cart. Every snapshot-changing command is written
// to the repository before the new state becomes visible.
type Store struct {
	mu     sync.Mutex
	key    string
	state  domain.CartState
	repo   SnapshotRepository
	ids    IDGenerator
	logger *zap.Logger
	closed bool
}

func NewStore(shopperID string, repo SnapshotRepository, ids IDGenerator, logger *zap.Logger) *Store {
	return &Store{
		key:    SnapshotKey(shopperID),
		repo:   repo,
		ids:    ids,
		logger: logger.With(zap.String("cartKey", SnapshotKey(shopperID))),
	}
}

// Open loads the last stored snapshot. A missing or malformed snapshot leaves
// the cart empty; only a repository failure is returned.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.repo.Load(ctx, s.key)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			s.logger.Debug("no stored cart, starting empty")
			return nil
		}
		return fmt.Errorf("loading cart snapshot: %w", err)
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		s.logger.Warn("discarding stored cart", zap.Error(err))
		return nil
	}

	s.state, _ = Apply(s.state, LoadCart{Snapshot: snap}, s.ids)
	s.logger.Info("cart restored", zap.Int("lineCount", len(s.state.Lines)), zap.Int("itemCount", s.state.ItemCount()))
	return nil
}

// Close ends the store's lifecycle. The last mutation is already durable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Store) Dispatch(ctx context.Context, cmd Command) (domain.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.state.Clone(), ErrStoreClosed
	}

	next, err := Apply(s.state, cmd, s.ids)
	if err != nil {
		s.logger.Debug("cart command rejected", zap.String("command", commandName(cmd)), zap.Error(err))
		return s.state.Clone(), err
	}

	if persists(cmd) {
		payload, err := EncodeSnapshot(SnapshotOf(next))
		if err != nil {
			return s.state.Clone(), apperrors.NewInternalError("failed to encode cart", err)
		}
		if err := s.repo.Save(ctx, s.key, payload); err != nil {
			s.logger.Error("failed to persist cart", zap.String("command", commandName(cmd)), zap.Error(err))
			return s.state.Clone(), apperrors.NewInternalError("failed to save cart", err)
		}
	}

	s.state = next
	s.logger.Debug("cart updated",
		zap.String("command", commandName(cmd)),
		zap.Int("itemCount", next.ItemCount()),
		zap.Stringer("total", next.Total()),
	)
	return next.Clone(), nil
}

func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subtotal is recomputed from the current lines on every call.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Subtotal()
}

func (s *Store) AddItem(ctx context.Context, item domain.MenuItem, quantity int, customizations []domain.Customization, instructions string) (domain.CartState, error) {
	return s.Dispatch(ctx, AddItem{
		Item:                item,
		Quantity:            quantity,
		Customizations:      customizations,
		SpecialInstructions: instructions,
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, cartID string, quantity int) (domain.CartState, error) {
	return s.Dispatch(ctx, UpdateQuantity{CartID: cartID, Quantity: quantity})
}

func (s *Store) RemoveItem(ctx context.Context, cartID string) (domain.CartState, error) {
	return s.Dispatch(ctx, RemoveItem{CartID: cartID})
}

func (s *Store) Clear(ctx context.Context) (domain.CartState, error) {
	return s.Dispatch(ctx, ClearCart{})
}

func (s *Store) RemoveOrdered(ctx context.Context, lines []domain.CartLine) (domain.CartState, error) {
	return s.Dispatch(ctx, RemoveOrdered{Lines: lines})
}

func (s *Store) SetDeliveryFee(ctx context.Context, fee decimal.Decimal) (domain.CartState, error) {
	return s.Dispatch(ctx, SetDeliveryFee{Fee: fee})
}

func (s *Store) SetTax(ctx context.Context, tax decimal.Decimal) (domain.CartState, error) {
	return s.Dispatch(ctx, SetTax{Tax: tax})
}

func (s *Store) SetDiscount(ctx context.Context, discount decimal.Decimal) (domain.CartState, error) {
	return s.Dispatch(ctx, SetDiscount{Discount: discount})
}

func (s *Store) Toggle(ctx context.Context) (domain.CartState, error) {
	return s.Dispatch(ctx, ToggleCart{})
}

func (s *Store) Show(ctx context.Context) (domain.CartState, error) {
	return s.Dispatch(ctx, OpenCart{})
}

func (s *Store) Hide(ctx context.Context) (domain.CartState, error) {
	return s.Dispatch(ctx, CloseCart{})
}
