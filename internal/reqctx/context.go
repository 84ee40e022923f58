// Package reqctx carries per-request values set by the transport layer.
package reqctx

import "context"

type contextKey string

const (
	RequestIDKey      contextKey = "request_id"
	IdempotencyKeyKey contextKey = "idempotency_key"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, IdempotencyKeyKey, key)
}

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

func GetIdempotencyKey(ctx context.Context) string {
	if v, ok := ctx.Value(IdempotencyKeyKey).(string); ok {
		return v
	}
	return ""
}
