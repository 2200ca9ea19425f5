package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/catnav/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoSnapshot is returned by Latest before the first import.
var ErrNoSnapshot = errors.New("no category snapshot stored")

const schema = `
CREATE TABLE IF NOT EXISTS category_snapshots (
	version    BIGSERIAL PRIMARY KEY,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SnapshotRepository stores every imported category tree as a new version.
type SnapshotRepository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, categories []*domain.Category) (int64, error)
	Latest(ctx context.Context) ([]*domain.Category, error)
}

type snapshotRepository struct {
	db *pgxpool.Pool
}

func NewSnapshotRepository(db *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepository{
		db: db,
	}
}

func (r *snapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create category_snapshots: %w", err)
	}
	return nil
}

func (r *snapshotRepository) Save(ctx context.Context, categories []*domain.Category) (int64, error) {
	data, err := json.Marshal(categories)
	if err != nil {
		return 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var version int64
	err = r.db.QueryRow(ctx,
		`INSERT INTO category_snapshots (data) VALUES ($1) RETURNING version`,
		data,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return version, nil
}

func (r *snapshotRepository) Latest(ctx context.Context) ([]*domain.Category, error) {
	var data []byte
	err := r.db.QueryRow(ctx,
		`SELECT data FROM category_snapshots ORDER BY version DESC LIMIT 1`,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	var categories []*domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return categories, nil
}
