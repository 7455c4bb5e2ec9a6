package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresSnapshotStore keeps one serialized cart per session in the
// cart_snapshots table.
type PostgresSnapshotStore struct {
	db *sql.DB
}

func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

func (s *PostgresSnapshotStore) Save(ctx context.Context, sessionID string, items []LineItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}

	const query = `
INSERT INTO cart_snapshots (session_id, payload, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (session_id) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = NOW()
`
	if _, err := s.db.ExecContext(ctx, query, sessionID, string(payload)); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (s *PostgresSnapshotStore) Load(ctx context.Context, sessionID string) ([]LineItem, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM cart_snapshots WHERE session_id = $1`, sessionID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, nil
}

func (s *PostgresSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_snapshots WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}
