package store

import (
	"context"
	"fmt"
	"time"
)

// OrderKey pairs a row ID with its current sort key.
type OrderKey struct {
	ID  int64
	Key int64
}

// ListItemOrderKeys returns every item's (id, o_id), ascending by o_id.
func ListItemOrderKeys(ctx context.Context, q DBTX) ([]OrderKey, error) {
	return listOrderKeys(ctx, q, `SELECT id, o_id FROM inventory_items ORDER BY o_id`)
}

// ListProjectOrderKeys returns every project's (id, priority), ascending.
func ListProjectOrderKeys(ctx context.Context, q DBTX) ([]OrderKey, error) {
	return listOrderKeys(ctx, q, `SELECT id, priority FROM projects ORDER BY priority, id`)
}

func listOrderKeys(ctx context.Context, q DBTX, query string, args ...any) ([]OrderKey, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing order keys: %w", err)
	}
	defer rows.Close()

	var keys []OrderKey
	for rows.Next() {
		var k OrderKey
		if err := rows.Scan(&k.ID, &k.Key); err != nil {
			return nil, fmt.Errorf("scanning order key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SwapOrderKeys writes keyB onto item a and keyA onto item b. The o_id index
// is unique and SQLite checks it per row, so a is parked on a negative key
// first; q should be a transaction.
func SwapOrderKeys(ctx context.Context, q DBTX, a, b OrderKey, now time.Time) error {
	steps := []struct {
		id, key int64
	}{
		{a.ID, -b.Key},
		{b.ID, a.Key},
		{a.ID, b.Key},
	}
	for _, s := range steps {
		if _, err := q.ExecContext(ctx,
			`UPDATE inventory_items SET o_id = ?, updated_at = ? WHERE id = ?`,
			s.key, now, s.id,
		); err != nil {
			return fmt.Errorf("swapping order keys: %w", err)
		}
	}
	return nil
}

// SwapProjectPriorities exchanges the priorities of two projects.
func SwapProjectPriorities(ctx context.Context, q DBTX, a, b OrderKey, now time.Time) error {
	for _, s := range []OrderKey{{ID: a.ID, Key: b.Key}, {ID: b.ID, Key: a.Key}} {
		if err := SetProjectPriority(ctx, q, s.ID, s.Key, now); err != nil {
			return err
		}
	}
	return nil
}

// SetProjectPriority sets one project's priority.
func SetProjectPriority(ctx context.Context, q DBTX, id, priority int64, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE projects SET priority = ?, updated_at = ? WHERE id = ?`,
		priority, now, id,
	)
	if err != nil {
		return fmt.Errorf("setting project priority: %w", err)
	}
	return nil
}

// ProjectPriorityBounds returns the lowest and highest project priority.
func ProjectPriorityBounds(ctx context.Context, q DBTX) (lo, hi int64, err error) {
	err = q.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(priority), 0), COALESCE(MAX(priority), 0) FROM projects`,
	).Scan(&lo, &hi)
	if err != nil {
		return 0, 0, fmt.Errorf("getting project priority bounds: %w", err)
	}
	return lo, hi, nil
}
