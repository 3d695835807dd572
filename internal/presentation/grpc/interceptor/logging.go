package interceptor

import (
	"context"
	"time"

	otelinfra "secureauth-server/internal/infrastructure/observability/otel"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// RequestIDKey リクエストIDを運ぶメタデータキー
const RequestIDKey = "x-request-id"

type requestIDContextKey struct{}

// RequestIDFromContext コンテキストからリクエストIDを取得
func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDContextKey{}).(string)
	return rid
}

// LoggingInterceptor リクエストIDを付与してunary呼び出しをログに記録する
// メタデータのx-request-idを引き継ぎ、なければUUIDを発行する
// ログにはメソッド・peer・ステータスのみを含め、メッセージ本文は含めない
func LoggingInterceptor(logger *otelinfra.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		var rid string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDKey); len(v) > 0 && v[0] != "" {
				rid = v[0]
			}
		}
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx = context.WithValue(ctx, requestIDContextKey{}, rid)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, rid))

		peerAddr := "-"
		if p, ok := peer.FromContext(ctx); ok && p != nil && p.Addr != nil {
			peerAddr = p.Addr.String()
		}

		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := map[string]interface{}{
			"request_id":  rid,
			"method":      info.FullMethod,
			"peer":        peerAddr,
			"code":        code.String(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		switch code {
		case codes.OK:
			logger.Info(ctx, "gRPC request completed", fields)
		case codes.InvalidArgument, codes.NotFound, codes.Canceled, codes.DeadlineExceeded:
			logger.Warn(ctx, "gRPC request completed with client error", fields)
		default:
			logger.Error(ctx, "gRPC request failed", err, fields)
		}

		return resp, err
	}
}
