package storefront

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/menu"
)

const identityCacheTTL = time.Minute

func NewModule(cfg *config.Config, repo cart.SnapshotRepository, logger *zap.Logger) (*Controller, *Sessions) {
	client := backend.NewClient(cfg.Backend, logger)
	menuSvc := menu.NewService(client, logger)

	pricing := checkout.PricingPolicy{
		DeliveryFee:           decimal.NewFromFloat(cfg.Checkout.DeliveryFee),
		TaxRate:               decimal.NewFromFloat(cfg.Checkout.TaxRate),
		FreeDeliveryThreshold: decimal.NewFromFloat(cfg.Checkout.FreeDeliveryThreshold),
	}

	sessions := NewSessions(repo, cart.UUIDGenerator{}, client, pricing, cfg.Checkout.LoginURL, cfg.Cart.SessionTTL, logger)
	identity := NewCachedIdentity(client, identityCacheTTL)
	return NewController(sessions, menuSvc, client, identity, logger), sessions
}
