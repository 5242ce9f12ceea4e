package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-dialog-state/internal/domain/ports/repository"
	"telegram-dialog-state/internal/infra/metrics"
)

var _ repository.DialogStorage = (*DialogStorage)(nil)

// DialogStorage persists dialog records in a single key-value table,
// one JSONB document per composite key. A missing row reads back as
// the empty mapping; writes upsert.
type DialogStorage struct {
	pool *pgxpool.Pool
}

func NewDialogStorage(pool *pgxpool.Pool) *DialogStorage {
	return &DialogStorage{pool: pool}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *DialogStorage) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS dialog_states (
  key        TEXT PRIMARY KEY,
  data       JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if _, err := s.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure dialog_states schema: %w", err)
	}
	return nil
}

func (s *DialogStorage) GetData(ctx context.Context, key repository.StorageKey) (map[string]any, error) {
	const q = `SELECT data FROM dialog_states WHERE key = $1;`
	var raw []byte
	err := s.pool.QueryRow(ctx, q, key.String()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.IncStorageOp("postgres", "get", "miss")
		return map[string]any{}, nil
	}
	if err != nil {
		metrics.IncStorageOp("postgres", "get", "error")
		return nil, fmt.Errorf("load dialog record: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		metrics.IncStorageOp("postgres", "get", "error")
		return nil, fmt.Errorf("decode dialog record: %w", err)
	}
	metrics.IncStorageOp("postgres", "get", "ok")
	return data, nil
}

func (s *DialogStorage) SetData(ctx context.Context, key repository.StorageKey, data map[string]any) error {
	const q = `
INSERT INTO dialog_states (key, data, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET
  data = EXCLUDED.data,
  updated_at = EXCLUDED.updated_at;`
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, q, key.String(), raw); err != nil {
		metrics.IncStorageOp("postgres", "set", "error")
		return fmt.Errorf("save dialog record: %w", err)
	}
	metrics.IncStorageOp("postgres", "set", "ok")
	return nil
}
