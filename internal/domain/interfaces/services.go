package interfaces

import (
	"context"

	domaintypes "banbds/internal/domain/types"
)

// DeviceSession guarantees a device token before authenticated calls.
type DeviceSession interface {
	// Token returns the persisted token, bootstrapping or renewing it when absent.
	Token(ctx context.Context) (domaintypes.DeviceToken, error)
	// Refresh replaces a token the backend rejected and returns the new one.
	Refresh(ctx context.Context, stale domaintypes.DeviceToken) (domaintypes.DeviceToken, error)
	// Invalidate drops the persisted token so the next Token call renews.
	Invalidate(ctx context.Context) error
}

// UserTokenSource exposes the persisted user session to the gateway.
type UserTokenSource interface {
	UserToken(ctx context.Context) (domaintypes.UserToken, bool, error)
}

// Caller performs one logical authenticated call.
type Caller interface {
	Call(ctx context.Context, req domaintypes.Request) (domaintypes.Outcome, error)
}
