package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

// Mock implementations
type mockCatalogue struct {
	GetMenuItemFunc func(ctx context.Context, itemID string) (*domain.MenuItem, error)
}

func (m *mockCatalogue) GetMenuItem(ctx context.Context, itemID string) (*domain.MenuItem, error) {
	return m.GetMenuItemFunc(ctx, itemID)
}

func pizzaCatalogue() *mockCatalogue {
	return &mockCatalogue{
		GetMenuItemFunc: func(ctx context.Context, itemID string) (*domain.MenuItem, error) {
			if itemID != "pizza" {
				return nil, apperrors.NewNotFoundError("menu item not found")
			}
			return &domain.MenuItem{
				ID:           "pizza",
				RestaurantID: "r1",
				Name:         "Margherita Pizza",
				Price:        domain.Money("18.99"),
				IsAvailable:  true,
				Customizations: []domain.Customization{
					{ID: "cheese", Name: "Extra cheese", Price: domain.Money("1.50")},
					{ID: "olives", Name: "Olives", Price: domain.Money("0.75")},
				},
			}, nil
		},
	}
}

func TestGetCustomizationsByIDs_SplitsFoundAndNotFound(t *testing.T) {
	svc := NewService(pizzaCatalogue(), zap.NewNop())

	item, found, notFound, err := svc.GetCustomizationsByIDs(context.Background(), "pizza", []string{"olives", "bacon", "olives"})

	require.NoError(t, err)
	assert.Equal(t, "pizza", item.ID)
	require.Len(t, found, 1)
	assert.Equal(t, "olives", found[0].ID)
	assert.Equal(t, []string{"bacon"}, notFound)
}

func TestResolveSelection_Success(t *testing.T) {
	svc := NewService(pizzaCatalogue(), zap.NewNop())

	item, customizations, err := svc.ResolveSelection(context.Background(), "pizza", []string{"cheese"})

	require.NoError(t, err)
	assert.Equal(t, "r1", item.RestaurantID)
	require.Len(t, customizations, 1)
	assert.True(t, customizations[0].Price.Equal(domain.Money("1.5")))
}

func TestResolveSelection_NoCustomizations(t *testing.T) {
	svc := NewService(pizzaCatalogue(), zap.NewNop())

	_, customizations, err := svc.ResolveSelection(context.Background(), "pizza", nil)

	require.NoError(t, err)
	assert.Empty(t, customizations)
}

func TestResolveSelection_UnknownCustomization(t *testing.T) {
	svc := NewService(pizzaCatalogue(), zap.NewNop())

	_, _, err := svc.ResolveSelection(context.Background(), "pizza", []string{"bacon", "anchovies"})

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 2)
}

func TestResolveSelection_ItemNotFound(t *testing.T) {
	svc := NewService(pizzaCatalogue(), zap.NewNop())

	_, _, err := svc.ResolveSelection(context.Background(), "burger", nil)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestResolveSelection_Unavailable(t *testing.T) {
	catalogue := &mockCatalogue{
		GetMenuItemFunc: func(ctx context.Context, itemID string) (*domain.MenuItem, error) {
			return &domain.MenuItem{ID: itemID, RestaurantID: "r1", IsAvailable: false}, nil
		},
	}
	svc := NewService(catalogue, zap.NewNop())

	_, _, err := svc.ResolveSelection(context.Background(), "pizza", nil)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestResolveSelection_CatalogueError(t *testing.T) {
	catalogue := &mockCatalogue{
		GetMenuItemFunc: func(ctx context.Context, itemID string) (*domain.MenuItem, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := NewService(catalogue, zap.NewNop())

	_, _, err := svc.ResolveSelection(context.Background(), "pizza", nil)

	assert.EqualError(t, err, "timeout")
}
