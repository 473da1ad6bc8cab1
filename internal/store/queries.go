package store

import (
	"context"
	"fmt"
)

// ListCategories returns the distinct non-empty categories, ascending.
func ListCategories(ctx context.Context, q DBTX) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT DISTINCT category FROM inventory_items WHERE category <> '' ORDER BY category`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListActiveOIDsDesc returns the o_id of every active item, highest first.
func ListActiveOIDsDesc(ctx context.Context, q DBTX) ([]int64, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT o_id FROM inventory_items WHERE active = 1 ORDER BY o_id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active o_ids: %w", err)
	}
	defer rows.Close()

	var oids []int64
	for rows.Next() {
		var oid int64
		if err := rows.Scan(&oid); err != nil {
			return nil, fmt.Errorf("scanning o_id: %w", err)
		}
		oids = append(oids, oid)
	}
	return oids, rows.Err()
}
