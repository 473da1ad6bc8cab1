// Package staging implements inventory allocation, ordering and the catalog
// and project queries on top of the store.
//
// Every mutating operation authorizes the caller first and then runs in one
// transaction, so it either applies completely or not at all.
package staging

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/stagehouse/internal/auth"
	"github.com/erazemk/stagehouse/internal/config"
	"github.com/erazemk/stagehouse/internal/store"
)

// Clock returns the current time.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// LedgerMode decides what a return does when in_use is lower than the
// quantity being returned.
type LedgerMode string

// Ledger modes.
const (
	// LedgerStrict rejects the return.
	LedgerStrict LedgerMode = config.LedgerStrict
	// LedgerPermissive floors in_use at zero and logs a warning.
	LedgerPermissive LedgerMode = config.LedgerPermissive
)

// ParseLedgerMode parses "strict" or "permissive".
func ParseLedgerMode(s string) (LedgerMode, error) {
	switch LedgerMode(s) {
	case LedgerStrict, LedgerPermissive:
		return LedgerMode(s), nil
	}
	return "", fmt.Errorf("invalid ledger mode %q", s)
}

// Service is the staging backend.
type Service struct {
	db             *sql.DB
	auth           auth.Authorizer
	clock          Clock
	logger         *slog.Logger
	ledgerMode     LedgerMode
	portfolioLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger for domain events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithLedgerMode sets the ledger drift policy.
func WithLedgerMode(m LedgerMode) Option {
	return func(s *Service) { s.ledgerMode = m }
}

// WithPortfolioLimit sets how many projects the portfolio returns when the
// caller does not ask for a limit.
func WithPortfolioLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.portfolioLimit = n
		}
	}
}

// New returns a Service backed by database. Roles are read from its users table.
func New(database *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:             database,
		auth:           auth.Authorizer{Roles: store.UserRoles{DB: database}},
		clock:          utcNow,
		logger:         slog.Default(),
		ledgerMode:     LedgerStrict,
		portfolioLimit: config.DefaultPortfolioLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock()
}

// inTx runs fn in a transaction and commits it if fn succeeds. The pool holds
// a single connection, so fn must only use tx.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
