package authz

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Role       string `json:"role"`
	BusinessID *int64 `json:"businessId,omitempty"`
	BranchID   *int64 `json:"branchId,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens carrying a Context.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

func (t *Tokens) Issue(c Context, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Role:       string(c.Role),
		BusinessID: c.BusinessID,
		BranchID:   c.BranchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(raw string) (Context, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c := Context{Subject: claims.Subject, Role: role, BusinessID: claims.BusinessID, BranchID: claims.BranchID}
	switch {
	case role == RoleBusinessAdmin && c.BusinessID == nil:
		return Context{}, fmt.Errorf("%w: business admin without businessId", ErrInvalidToken)
	case role == RoleStaff && c.BranchID == nil:
		return Context{}, fmt.Errorf("%w: staff without branchId", ErrInvalidToken)
	}
	return c, nil
}
