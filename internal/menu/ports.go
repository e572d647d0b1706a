package menu

import (
	"context"

	"storefront/internal/domain"
)

type Catalogue interface {
	GetMenuItem(ctx context.Context, itemID string) (*domain.MenuItem, error)
}

type Service interface {
	GetCustomizationsByIDs(ctx context.Context, itemID string, ids []string) (item *domain.MenuItem, found []domain.Customization, notFoundIDs []string, err error)
	ResolveSelection(ctx context.Context, itemID string, customizationIDs []string) (domain.MenuItem, []domain.Customization, error)
}
