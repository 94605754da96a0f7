// Package authz holds the caller's authorization scope and the branch
// ownership rule shared by every operation that touches branch data.
package authz

import (
	"context"
	"errors"
	"fmt"
)

type Role string

const (
	RoleAnonymous     Role = ""
	RoleSuperAdmin    Role = "superadmin"
	RoleBusinessAdmin Role = "business_admin"
	RoleStaff         Role = "staff"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleSuperAdmin, RoleBusinessAdmin, RoleStaff:
		return r, nil
	default:
		return RoleAnonymous, fmt.Errorf("unknown role %q", s)
	}
}

// Context is the caller scope supplied by the auth layer. BusinessID is set
// for business admins, BranchID for staff.
type Context struct {
	Subject    string
	Role       Role
	BusinessID *int64
	BranchID   *int64
}

func (c Context) Authenticated() bool { return c.Role != RoleAnonymous }

// CanActOnBranch reports whether the caller may act on a branch owned by businessID.
func CanActOnBranch(c Context, branchID, businessID int64) bool {
	switch c.Role {
	case RoleSuperAdmin:
		return true
	case RoleBusinessAdmin:
		return c.BusinessID != nil && *c.BusinessID == businessID
	case RoleStaff:
		return c.BranchID != nil && *c.BranchID == branchID
	default:
		return false
	}
}

type ctxKey struct{}

func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the scope stored by WithContext, or an anonymous scope.
func FromContext(ctx context.Context) Context {
	c, _ := ctx.Value(ctxKey{}).(Context)
	return c
}

// ErrForbidden is returned when the caller's scope does not cover the target branch.
var ErrForbidden = errors.New("caller scope does not cover this branch")
