package twofactor

import (
	"context"

	"github.com/google/uuid"
)

// PolicyChecker decides whether an account must keep two-factor authentication on.
type PolicyChecker interface {
	IsPrivilegedAccount(ctx context.Context, accountID uuid.UUID) bool
}

// PolicyFunc adapts a function to PolicyChecker.
type PolicyFunc func(ctx context.Context, accountID uuid.UUID) bool

func (f PolicyFunc) IsPrivilegedAccount(ctx context.Context, accountID uuid.UUID) bool {
	return f(ctx, accountID)
}
