package menu

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

const ErrMsgItemUnavailable = "item is not available"

type menuService struct {
	catalogue Catalogue
	logger    *zap.Logger
}

func NewService(catalogue Catalogue, logger *zap.Logger) Service {
	return &menuService{catalogue: catalogue, logger: logger}
}

// GetCustomizationsByIDs loads the item and splits the requested option ids
// into the ones it offers and the ones it does not. Duplicate ids count once.
func (s *menuService) GetCustomizationsByIDs(ctx context.Context, itemID string, ids []string) (*domain.MenuItem, []domain.Customization, []string, error) {
	item, err := s.catalogue.GetMenuItem(ctx, itemID)
	if err != nil {
		return nil, nil, nil, err
	}

	offered := make(map[string]domain.Customization, len(item.Customizations))
	for _, c := range item.Customizations {
		offered[c.ID] = c
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	var found []domain.Customization
	var notFoundIDs []string
	for _, id := range ids {
		if !seen.Add(id) {
			continue
		}
		if c, ok := offered[id]; ok {
			found = append(found, c)
		} else {
			notFoundIDs = append(notFoundIDs, id)
		}
	}

	return item, found, notFoundIDs, nil
}

// ResolveSelection returns the catalogue item and the chosen customizations
// priced from the catalogue.
func (s *menuService) ResolveSelection(ctx context.Context, itemID string, customizationIDs []string) (domain.MenuItem, []domain.Customization, error) {
	item, found, notFoundIDs, err := s.GetCustomizationsByIDs(ctx, itemID, customizationIDs)
	if err != nil {
		return domain.MenuItem{}, nil, err
	}

	if !item.IsAvailable {
		s.logger.Debug("unavailable item requested", zap.String("itemId", itemID))
		return domain.MenuItem{}, nil, apperrors.NewConflictError(ErrMsgItemUnavailable)
	}

	if len(notFoundIDs) > 0 {
		details := make([]apperrors.ValidationDetail, len(notFoundIDs))
		for i, id := range notFoundIDs {
			details[i] = apperrors.ValidationDetail{
				Field:   "customizationIds",
				Message: fmt.Sprintf("customization %q is not offered for this item", id),
			}
		}
		return domain.MenuItem{}, nil, apperrors.NewValidationError("unknown customization", details...)
	}

	return *item, found, nil
}
