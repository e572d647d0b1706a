package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/errors"
)

type MySQLSnapshotRepository struct {
	db *sql.DB
}

func NewMySQLSnapshotRepository(db *sql.DB) *MySQLSnapshotRepository {
	return &MySQLSnapshotRepository{db: db}
}

func (r *MySQLSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT payload FROM CartSnapshots WHERE cartKey = ?`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("cart snapshot %s not found", key))
	}
	if err != nil {
		return nil, fmt.Errorf("querying cart snapshot: %w", err)
	}

	return payload, nil
}

func (r *MySQLSnapshotRepository) Save(ctx context.Context, key string, payload []byte) error {
	query := `
		INSERT INTO CartSnapshots (cartKey, payload)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload)
	`

	if _, err := r.db.ExecContext(ctx, query, key, payload); err != nil {
		return fmt.Errorf("saving cart snapshot: %w", err)
	}

	return nil
}
