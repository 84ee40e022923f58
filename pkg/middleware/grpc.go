package middleware

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/reqctx"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	RequestIDMetadata      = "x-request-id"
	IdempotencyKeyMetadata = "x-idempotency-key"
)

// ContextInterceptor copies request metadata into the context and logs every
// call with its duration and status code.
func ContextInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if val := md.Get(RequestIDMetadata); len(val) > 0 {
				requestID = val[0]
			}
			if val := md.Get(IdempotencyKeyMetadata); len(val) > 0 && val[0] != "" {
				ctx = reqctx.WithIdempotencyKey(ctx, val[0])
			}
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = reqctx.WithRequestID(ctx, requestID)

		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		}
		if err != nil {
			log.Warn("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			log.Debug("grpc request", fields...)
		}
		return resp, err
	}
}
