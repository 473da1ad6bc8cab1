package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stagehouse/internal/model"
)

const projectColumns = `id, name, status, owner_id, address, start_date, end_date, revenue, notes,
	highlighted, inventory_assigned, priority, created_at, updated_at`

func scanProject(s scanner) (*model.Project, error) {
	p := &model.Project{}
	var revenue decimal.NullDecimal
	if err := s.Scan(&p.ID, &p.Name, &p.Status, &p.OwnerID, &p.Address, &p.StartDate, &p.EndDate, &revenue, &p.Notes,
		&p.Highlighted, &p.InventoryAssigned, &p.Priority, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if revenue.Valid {
		p.Revenue = &revenue.Decimal
	}
	return p, nil
}

func revenueArg(r *decimal.Decimal) any {
	if r == nil {
		return nil
	}
	return r.String()
}

// CreateProject inserts a project owned by ownerID at the end of the priority order.
func CreateProject(ctx context.Context, q DBTX, ownerID int64, f model.ProjectFields, now time.Time) (*model.Project, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO projects (name, status, owner_id, address, start_date, end_date, revenue, notes,
		     priority, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(priority), 0) + 1 FROM projects), ?, ?)`,
		f.Name, f.Status, ownerID, f.Address, f.StartDate, f.EndDate, revenueArg(f.Revenue), f.Notes, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting project id: %w", err)
	}
	return GetProject(ctx, q, id)
}

// GetProject returns a project by ID.
func GetProject(ctx context.Context, q DBTX, id int64) (*model.Project, error) {
	p, err := scanProject(q.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return p, nil
}

// ListProjects returns projects in priority order. ownerID > 0 restricts the
// list to that owner's projects.
func ListProjects(ctx context.Context, q DBTX, ownerID int64) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if ownerID > 0 {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY priority, id`

	return queryProjects(ctx, q, query, args...)
}

// ListHighlightedProjects returns up to limit highlighted projects, newest first.
func ListHighlightedProjects(ctx context.Context, q DBTX, limit int) ([]model.Project, error) {
	return queryProjects(ctx, q,
		`SELECT `+projectColumns+` FROM projects WHERE highlighted = 1
		 ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
}

func queryProjects(ctx context.Context, q DBTX, query string, args ...any) ([]model.Project, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject rewrites a project's editable attributes.
func UpdateProject(ctx context.Context, q DBTX, id int64, f model.ProjectFields, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE projects SET name = ?, status = ?, address = ?, start_date = ?, end_date = ?, revenue = ?, notes = ?,
		     updated_at = ?
		 WHERE id = ?`,
		f.Name, f.Status, f.Address, f.StartDate, f.EndDate, revenueArg(f.Revenue), f.Notes, now, id,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return nil
}

// SetProjectHighlighted toggles a project's portfolio visibility.
func SetProjectHighlighted(ctx context.Context, q DBTX, id int64, highlighted bool, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE projects SET highlighted = ?, updated_at = ? WHERE id = ?`,
		highlighted, now, id,
	)
	if err != nil {
		return fmt.Errorf("setting project highlighted: %w", err)
	}
	return nil
}

// MarkInventoryAssigned sets the project's inventory_assigned flag. The flag is
// never cleared.
func MarkInventoryAssigned(ctx context.Context, q DBTX, id int64, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE projects SET inventory_assigned = 1, updated_at = ? WHERE id = ?`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("marking inventory assigned: %w", err)
	}
	return nil
}

// DeleteProject removes a project row. Its images and assignments must already be gone.
func DeleteProject(ctx context.Context, q DBTX, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}
