package middleware

import (
	"context"

	"github.com/silvergrain/studio-backend/internal/identity"
)

type contextKey string

const (
	ctxOwnerID contextKey = "owner_id"
	ctxViewer  contextKey = "viewer"
)

func OwnerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOwnerID).(string); ok {
		return v
	}
	return ""
}

// ViewerFromContext returns the resolved viewer identity, or nil when the
// request carried no usable credentials.
func ViewerFromContext(ctx context.Context) *identity.Identity {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxViewer).(*identity.Identity); ok {
		return v
	}
	return nil
}

// WithOwnerID injects the authenticated owner identifier into the context.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOwnerID, ownerID)
}

// WithViewer injects the resolved viewer identity for downstream handlers.
func WithViewer(ctx context.Context, viewer *identity.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxViewer, viewer)
}
