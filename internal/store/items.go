package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/erazemk/stagehouse/internal/model"
)

const itemColumns = `id, o_id, name, category, vendor, description, location, count, in_use,
	price, cost, width, height, depth,
	image_path, image_width, image_height, thumb_path, thumb_width, thumb_height,
	active, created_at, updated_at`

func scanItem(s scanner) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	var img, thumb imageCols
	dest := []any{&item.ID, &item.OID, &item.Name, &item.Category, &item.Vendor, &item.Description, &item.Location,
		&item.Count, &item.InUse, &item.Price, &item.Cost, &item.Width, &item.Height, &item.Depth}
	dest = append(dest, img.dest()...)
	dest = append(dest, thumb.dest()...)
	dest = append(dest, &item.Active, &item.CreatedAt, &item.UpdatedAt)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	item.Image = img.image()
	item.Thumbnail = thumb.image()
	return item, nil
}

// lastOIDKey is the settings key holding the highest o_id ever issued.
const lastOIDKey = "last_item_oid"

// CreateItem inserts an active item with nothing in use. Its o_id is one past
// the highest ever issued, so numbers of deleted items are never reused.
func CreateItem(ctx context.Context, q DBTX, f model.ItemFields, now time.Time) (*model.InventoryItem, error) {
	args := []any{f.Name, f.Category, f.Vendor, f.Description, f.Location, f.Count,
		f.Price, f.Cost, f.Width, f.Height, f.Depth}
	args = append(args, imageArgs(f.Image)...)
	args = append(args, imageArgs(f.Thumbnail)...)
	args = append(args, now, now)

	result, err := q.ExecContext(ctx,
		`INSERT INTO inventory_items (o_id, name, category, vendor, description, location, count, in_use,
		     price, cost, width, height, depth,
		     image_path, image_width, image_height, thumb_path, thumb_width, thumb_height,
		     active, created_at, updated_at)
		 VALUES (MAX(
		     (SELECT COALESCE(MAX(o_id), 0) FROM inventory_items),
		     (SELECT COALESCE(MAX(CAST(value AS INTEGER)), 0) FROM settings WHERE key = '`+lastOIDKey+`')) + 1,
		     ?, ?, ?, ?, ?, ?, 0,
		     ?, ?, ?, ?, ?,
		     ?, ?, ?, ?, ?, ?,
		     1, ?, ?)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	item, err := GetItem(ctx, q, id)
	if err != nil {
		return nil, err
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastOIDKey, strconv.FormatInt(item.OID, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("recording last o_id: %w", err)
	}
	return item, nil
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, q DBTX, id int64) (*model.InventoryItem, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetItemByOID returns an item by its catalog sequence number.
func GetItemByOID(ctx context.Context, q DBTX, oid int64) (*model.InventoryItem, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE o_id = ?`, oid))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by o_id: %w", err)
	}
	return item, nil
}

// ItemFilter narrows ListItems.
type ItemFilter struct {
	ActiveOnly bool
	Category   string
}

// ListItems returns items in catalog order (ascending o_id).
func ListItems(ctx context.Context, q DBTX, f ItemFilter) ([]model.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE 1=1`
	var args []any

	if f.ActiveOnly {
		query += ` AND active = 1`
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	query += ` ORDER BY o_id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem rewrites an item's editable attributes. The in_use <= count check
// constraint rejects a count below the units in use.
func UpdateItem(ctx context.Context, q DBTX, id int64, f model.ItemFields, now time.Time) error {
	args := []any{f.Name, f.Category, f.Vendor, f.Description, f.Location, f.Count,
		f.Price, f.Cost, f.Width, f.Height, f.Depth}
	args = append(args, imageArgs(f.Image)...)
	args = append(args, imageArgs(f.Thumbnail)...)
	args = append(args, now, id)

	_, err := q.ExecContext(ctx,
		`UPDATE inventory_items SET name = ?, category = ?, vendor = ?, description = ?, location = ?, count = ?,
		     price = ?, cost = ?, width = ?, height = ?, depth = ?,
		     image_path = ?, image_width = ?, image_height = ?, thumb_path = ?, thumb_width = ?, thumb_height = ?,
		     updated_at = ?
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// SetItemActive archives or restores an item.
func SetItemActive(ctx context.Context, q DBTX, id int64, active bool, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE inventory_items SET active = ?, updated_at = ? WHERE id = ?`,
		active, now, id,
	)
	if err != nil {
		return fmt.Errorf("setting item active: %w", err)
	}
	return nil
}

// DeleteItem removes an item row. Extra images must already be gone.
func DeleteItem(ctx context.Context, q DBTX, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// IncrementInUse adds quantity to an item's in_use only if the result stays
// within count. It reports whether the row was updated.
func IncrementInUse(ctx context.Context, q DBTX, id int64, quantity int, now time.Time) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE inventory_items SET in_use = in_use + ?, updated_at = ?
		 WHERE id = ? AND in_use + ? <= count`,
		quantity, now, id, quantity,
	)
	if err != nil {
		return false, fmt.Errorf("incrementing in_use: %w", err)
	}
	n, err := affected(result)
	if err != nil {
		return false, fmt.Errorf("incrementing in_use: %w", err)
	}
	return n == 1, nil
}

// DecrementInUse subtracts quantity from an item's in_use. Unless clamp is
// set, it only applies when in_use >= quantity; with clamp the result is
// floored at zero. It reports whether the row was updated.
func DecrementInUse(ctx context.Context, q DBTX, id int64, quantity int, clamp bool, now time.Time) (bool, error) {
	var result sql.Result
	var err error
	if clamp {
		result, err = q.ExecContext(ctx,
			`UPDATE inventory_items SET in_use = MAX(in_use - ?, 0), updated_at = ? WHERE id = ?`,
			quantity, now, id,
		)
	} else {
		result, err = q.ExecContext(ctx,
			`UPDATE inventory_items SET in_use = in_use - ?, updated_at = ?
			 WHERE id = ? AND in_use >= ?`,
			quantity, now, id, quantity,
		)
	}
	if err != nil {
		return false, fmt.Errorf("decrementing in_use: %w", err)
	}
	n, err := affected(result)
	if err != nil {
		return false, fmt.Errorf("decrementing in_use: %w", err)
	}
	return n == 1, nil
}
