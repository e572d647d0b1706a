package cart

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces cart line ids.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// CounterGenerator yields "1", "2", ... and is safe for concurrent use.
type CounterGenerator struct {
	next atomic.Uint64
}

func (g *CounterGenerator) NewID() string {
	return strconv.FormatUint(g.next.Add(1), 10)
}
