package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stagehouse/internal/model"
)

const assignmentSelect = `SELECT a.id, a.project_id, a.inventory_id, a.quantity, a.price_per_item,
	        a.assigned_at, a.returned_at, a.assigned_by, a.returned_by,
	        COALESCE(i.name, ''), p.name
	 FROM project_inventory a
	 JOIN projects p ON p.id = a.project_id
	 LEFT JOIN inventory_items i ON i.id = a.inventory_id`

func scanAssignment(s scanner) (*model.Assignment, error) {
	a := &model.Assignment{}
	if err := s.Scan(&a.ID, &a.ProjectID, &a.InventoryID, &a.Quantity, &a.PricePerItem,
		&a.AssignedAt, &a.ReturnedAt, &a.AssignedBy, &a.ReturnedBy,
		&a.ItemName, &a.ProjectName); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAssignment records an open assignment. It does not touch in_use.
func CreateAssignment(ctx context.Context, q DBTX, projectID, inventoryID int64, quantity int, pricePerItem decimal.Decimal, assignedBy *int64, now time.Time) (*model.Assignment, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO project_inventory (project_id, inventory_id, quantity, price_per_item, assigned_at, assigned_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		projectID, inventoryID, quantity, pricePerItem, now, assignedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording assignment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting assignment id: %w", err)
	}
	return GetAssignment(ctx, q, id)
}

// GetAssignment returns an assignment by ID.
func GetAssignment(ctx context.Context, q DBTX, id int64) (*model.Assignment, error) {
	a, err := scanAssignment(q.QueryRowContext(ctx, assignmentSelect+` WHERE a.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting assignment: %w", err)
	}
	return a, nil
}

// AssignmentFilter narrows ListAssignments. Zero IDs do not filter.
type AssignmentFilter struct {
	ProjectID   int64
	InventoryID int64
	OpenOnly    bool
}

// ListAssignments returns assignments, newest first.
func ListAssignments(ctx context.Context, q DBTX, f AssignmentFilter) ([]model.Assignment, error) {
	query := assignmentSelect + ` WHERE 1=1`
	var args []any

	if f.ProjectID > 0 {
		query += ` AND a.project_id = ?`
		args = append(args, f.ProjectID)
	}
	if f.InventoryID > 0 {
		query += ` AND a.inventory_id = ?`
		args = append(args, f.InventoryID)
	}
	if f.OpenOnly {
		query += ` AND a.returned_at IS NULL`
	}
	query += ` ORDER BY a.assigned_at DESC, a.id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// MarkReturned stamps returned_at on an open assignment. It reports false if
// the assignment was already returned.
func MarkReturned(ctx context.Context, q DBTX, id int64, returnedBy *int64, now time.Time) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE project_inventory SET returned_at = ?, returned_by = ?
		 WHERE id = ? AND returned_at IS NULL`,
		now, returnedBy, id,
	)
	if err != nil {
		return false, fmt.Errorf("marking assignment returned: %w", err)
	}
	n, err := affected(result)
	if err != nil {
		return false, fmt.Errorf("marking assignment returned: %w", err)
	}
	return n == 1, nil
}

// DeleteProjectAssignments removes every assignment row of a project.
func DeleteProjectAssignments(ctx context.Context, q DBTX, projectID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM project_inventory WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("deleting project assignments: %w", err)
	}
	return nil
}

// ListLedgerDrift returns the items whose in_use differs from the sum of their
// open assignment quantities.
func ListLedgerDrift(ctx context.Context, q DBTX) ([]model.LedgerDrift, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT i.id, i.in_use, COALESCE(SUM(a.quantity), 0) AS open_qty
		 FROM inventory_items i
		 LEFT JOIN project_inventory a ON a.inventory_id = i.id AND a.returned_at IS NULL
		 GROUP BY i.id, i.in_use
		 HAVING i.in_use <> COALESCE(SUM(a.quantity), 0)
		 ORDER BY i.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("checking ledger: %w", err)
	}
	defer rows.Close()

	var drift []model.LedgerDrift
	for rows.Next() {
		var d model.LedgerDrift
		if err := rows.Scan(&d.ItemID, &d.InUse, &d.OpenQuantity); err != nil {
			return nil, fmt.Errorf("scanning ledger drift: %w", err)
		}
		drift = append(drift, d)
	}
	return drift, rows.Err()
}
