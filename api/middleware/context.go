package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID      contextKey = "user_id"
	ctxAccountType contextKey = "account_type"
)

// UserIDFromContext returns the authenticated user's id, or uuid.Nil when
// the request is anonymous.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func AccountTypeFromContext(ctx context.Context) enums.AccountType {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountType).(enums.AccountType); ok {
		return v
	}
	return ""
}

// WithPrincipal seeds the context with the authenticated identity. Exposed
// for handler tests.
func WithPrincipal(ctx context.Context, userID uuid.UUID, accountType enums.AccountType) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxAccountType, accountType)
}
