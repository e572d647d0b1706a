package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/errors"
)

func TestMemorySnapshotRepository_SaveAndLoad(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	payload := []byte(`{"tax":1}`)

	require.NoError(t, repo.Save(context.Background(), "cart:a", payload))
	payload[0] = 'X'

	loaded, err := repo.Load(context.Background(), "cart:a")
	require.NoError(t, err)
	assert.Equal(t, `{"tax":1}`, string(loaded))
}

func TestMemorySnapshotRepository_Load_NotFound(t *testing.T) {
	repo := NewMemorySnapshotRepository()

	_, err := repo.Load(context.Background(), "cart:missing")

	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}
