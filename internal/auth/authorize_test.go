package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/stagehouse/internal/apperr"
	"github.com/erazemk/stagehouse/internal/model"
)

type roleMap map[int64]string

func (m roleMap) UserRole(_ context.Context, id int64) (string, error) {
	return m[id], nil
}

type failingRoles struct{}

func (failingRoles) UserRole(context.Context, int64) (string, error) {
	return "", errors.New("database is closed")
}

func TestRequireAuthenticated(t *testing.T) {
	a := Authorizer{Roles: roleMap{1: model.RoleAdmin, 2: model.RoleUser}}
	ctx := context.Background()

	p, err := a.RequireAuthenticated(ctx, model.Identity{UserID: 2, Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, p.Role)
	assert.Equal(t, "bob", p.Username)
	assert.False(t, p.IsAdmin())

	_, err = a.RequireAuthenticated(ctx, model.Identity{})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = a.RequireAuthenticated(ctx, model.Identity{UserID: 99})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated), "unknown users are not authenticated")
}

func TestRequireAdmin(t *testing.T) {
	a := Authorizer{Roles: roleMap{1: model.RoleAdmin, 2: model.RoleUser}}
	ctx := context.Background()

	p, err := a.RequireAdmin(ctx, model.Identity{UserID: 1})
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())

	_, err = a.RequireAdmin(ctx, model.Identity{UserID: 2})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	a := Authorizer{Roles: roleMap{1: model.RoleAdmin, 2: model.RoleUser, 3: model.RoleUser}}
	ctx := context.Background()

	tests := []struct {
		name   string
		caller int64
		owner  int64
		kind   apperr.Kind
	}{
		{"owner", 2, 2, ""},
		{"admin", 1, 2, ""},
		{"other user", 3, 2, apperr.KindUnauthorized},
		{"anonymous", 0, 2, apperr.KindUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.RequireOwnerOrAdmin(ctx, model.Identity{UserID: tt.caller}, tt.owner)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestRoleLookupFailure(t *testing.T) {
	a := Authorizer{Roles: failingRoles{}}

	_, err := a.RequireAuthenticated(context.Background(), model.Identity{UserID: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.Kind(""), apperr.KindOf(err), "infrastructure errors carry no kind")
}
