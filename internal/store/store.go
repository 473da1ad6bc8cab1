// Package store persists the catalog, projects and the allocation ledger.
//
// Functions take a DBTX so that callers can compose several of them inside one
// transaction. Getters return (nil, nil) when the row does not exist.
package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/stagehouse/internal/model"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// imageCols scans an optional image reference spread over three columns.
type imageCols struct {
	path          sql.NullString
	width, height sql.NullInt64
}

func (c *imageCols) dest() []any {
	return []any{&c.path, &c.width, &c.height}
}

func (c *imageCols) image() *model.Image {
	if !c.path.Valid || c.path.String == "" {
		return nil
	}
	return &model.Image{Path: c.path.String, Width: int(c.width.Int64), Height: int(c.height.Int64)}
}

// imageArgs spreads an optional image reference into three column values.
func imageArgs(img *model.Image) []any {
	if img == nil {
		return []any{nil, nil, nil}
	}
	return []any{img.Path, img.Width, img.Height}
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
