package auth

import (
	"context"
	"fmt"

	"github.com/erazemk/stagehouse/internal/apperr"
	"github.com/erazemk/stagehouse/internal/model"
)

// RoleLookup resolves a user's current role. It returns "" for users that do
// not exist or were deleted.
type RoleLookup interface {
	UserRole(ctx context.Context, userID int64) (string, error)
}

// Principal is an authenticated caller together with its current role.
type Principal struct {
	model.Identity
	Role string
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool {
	return model.RoleAtLeast(p.Role, model.RoleAdmin)
}

// RequireAdmin fails with Unauthorized unless the principal is an admin.
func (p Principal) RequireAdmin() error {
	if !p.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}
	return nil
}

// RequireOwnerOrAdmin fails with Unauthorized unless the principal is an admin
// or the user identified by ownerID.
func (p Principal) RequireOwnerOrAdmin(ownerID int64) error {
	if p.IsAdmin() || p.UserID == ownerID {
		return nil
	}
	return apperr.Unauthorized("not the owner")
}

// Authorizer turns identities into principals.
type Authorizer struct {
	Roles RoleLookup
}

// RequireAuthenticated resolves the caller's role. Anonymous callers and
// callers whose user no longer exists fail with Unauthenticated.
func (a Authorizer) RequireAuthenticated(ctx context.Context, id model.Identity) (Principal, error) {
	if !id.Authenticated() {
		return Principal{}, apperr.Unauthenticated()
	}
	role, err := a.Roles.UserRole(ctx, id.UserID)
	if err != nil {
		return Principal{}, fmt.Errorf("resolving principal: %w", err)
	}
	if role == "" {
		return Principal{}, apperr.Unauthenticated()
	}
	return Principal{Identity: id, Role: role}, nil
}

// RequireAdmin resolves the caller and requires the admin role.
func (a Authorizer) RequireAdmin(ctx context.Context, id model.Identity) (Principal, error) {
	p, err := a.RequireAuthenticated(ctx, id)
	if err != nil {
		return Principal{}, err
	}
	if err := p.RequireAdmin(); err != nil {
		return Principal{}, err
	}
	return p, nil
}

// RequireOwnerOrAdmin resolves the caller and requires it to own ownerID's
// resource or be an admin.
func (a Authorizer) RequireOwnerOrAdmin(ctx context.Context, id model.Identity, ownerID int64) (Principal, error) {
	p, err := a.RequireAuthenticated(ctx, id)
	if err != nil {
		return Principal{}, err
	}
	if err := p.RequireOwnerOrAdmin(ownerID); err != nil {
		return Principal{}, err
	}
	return p, nil
}
