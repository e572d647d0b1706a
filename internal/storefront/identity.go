package storefront

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"storefront/internal/backend"
)

const identityCacheCapacity = 4096

// Identity resolves the user behind the bearer token in ctx. A guest is "".
type Identity interface {
	CurrentUser(ctx context.Context) (string, error)
}

// CachedIdentity remembers token to user lookups for ttl so that every
// request does not cost a round trip to the auth endpoint.
type CachedIdentity struct {
	source Identity
	cache  *ttlcache.Cache[string, string]
}

func NewCachedIdentity(source Identity, ttl time.Duration) *CachedIdentity {
	return &CachedIdentity{
		source: source,
		cache: ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](ttl),
			ttlcache.WithCapacity[string, string](identityCacheCapacity),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
	}
}

func (c *CachedIdentity) CurrentUser(ctx context.Context) (string, error) {
	token := backend.TokenFrom(ctx)
	if token == "" {
		return "", nil
	}
	if item := c.cache.Get(token); item != nil {
		return item.Value(), nil
	}

	userID, err := c.source.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	// rejected tokens are not cached; the shopper may log in again with it
	if userID != "" {
		c.cache.Set(token, userID, ttlcache.DefaultTTL)
	}
	return userID, nil
}
