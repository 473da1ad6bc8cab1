package staging

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/stagehouse/internal/db"
	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/store"
)

// stepClock starts at a fixed instant and advances one second per reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	svc   *Service
	db    *sql.DB
	admin model.Identity
	alice model.Identity
	bob   model.Identity
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	users := make(map[string]model.Identity)
	for _, u := range []struct{ name, role string }{
		{"admin", model.RoleAdmin},
		{"alice", model.RoleUser},
		{"bob", model.RoleUser},
	} {
		created, err := store.CreateUser(ctx, database, u.name, "hash", u.role)
		require.NoError(t, err)
		users[u.name] = model.Identity{UserID: created.ID, Username: created.Username}
	}

	clock := &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	opts = append([]Option{
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)

	return &fixture{
		svc:   New(database, opts...),
		db:    database,
		admin: users["admin"],
		alice: users["alice"],
		bob:   users["bob"],
	}
}

func (f *fixture) item(t *testing.T, name string, count int) *model.InventoryItem {
	t.Helper()
	item, err := f.svc.CreateItem(context.Background(), f.admin, model.ItemFields{
		Name:  name,
		Count: count,
		Price: decimal.RequireFromString("49.99"),
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) project(t *testing.T, owner model.Identity, name string) *model.Project {
	t.Helper()
	project, err := f.svc.CreateProject(context.Background(), owner, model.ProjectFields{Name: name})
	require.NoError(t, err)
	return project
}

func (f *fixture) reload(t *testing.T, itemID int64) *model.InventoryItem {
	t.Helper()
	item, err := store.GetItem(context.Background(), f.db, itemID)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

// assertLedger checks the allocation invariants over the whole catalog.
func (f *fixture) assertLedger(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	items, err := store.ListItems(ctx, f.db, store.ItemFilter{})
	require.NoError(t, err)
	for _, item := range items {
		assert.GreaterOrEqual(t, item.InUse, 0, "item %d in_use", item.ID)
		assert.LessOrEqual(t, item.InUse, item.Count, "item %d in_use", item.ID)
	}

	drift, err := f.svc.VerifyLedger(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, drift)
}
