// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
//
// Usage in services (read values):
//
//	bankerID := requestcontext.BankerID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithBankerID(ctx, bankerID)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", "Firefox on Linux")
package requestcontext

import (
	"context"
	"time"

	id "veriface/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	bankerIDKey    struct{}
	branchCodeKey  struct{}
	clientIPKey    struct{}
	deviceInfoKey  struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyBankerID    = bankerIDKey{}
	ContextKeyBranchCode  = branchCodeKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyDeviceInfo  = deviceInfoKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// BankerID retrieves the authenticated banker ID from the context.
// Returns the zero value (nil UUID) if not set.
func BankerID(ctx context.Context) id.BankerID {
	if bankerID, ok := ctx.Value(ContextKeyBankerID).(id.BankerID); ok {
		return bankerID
	}
	return id.BankerID{}
}

// WithBankerID injects a banker ID into the context.
func WithBankerID(ctx context.Context, bankerID id.BankerID) context.Context {
	return context.WithValue(ctx, ContextKeyBankerID, bankerID)
}

// BranchCode retrieves the banker's branch code from the context.
func BranchCode(ctx context.Context) string {
	if branch, ok := ctx.Value(ContextKeyBranchCode).(string); ok {
		return branch
	}
	return ""
}

// WithBranchCode injects a branch code into the context.
func WithBranchCode(ctx context.Context, branch string) context.Context {
	return context.WithValue(ctx, ContextKeyBranchCode, branch)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// DeviceInfo retrieves the parsed device summary (browser/OS) from the context.
func DeviceInfo(ctx context.Context) string {
	if device, ok := ctx.Value(ContextKeyDeviceInfo).(string); ok {
		return device
	}
	return ""
}

// WithClientMetadata injects client IP and device summary into a context.
// Useful for service unit tests that don't run the full middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, deviceInfo string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyDeviceInfo, deviceInfo)
	return ctx
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
