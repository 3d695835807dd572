package interceptor

import (
	"context"
	"fmt"
	"runtime/debug"

	otelinfra "secureauth-server/internal/infrastructure/observability/otel"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoverInterceptor ハンドラー内のパニックを捕捉してcodes.Internalを返す
// クライアントには内部の詳細を返さない
func RecoverInterceptor(logger *otelinfra.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "Panic recovered", fmt.Errorf("panic: %v", r), map[string]interface{}{
					"method": info.FullMethod,
					"stack":  string(debug.Stack()),
				})

				resp = nil
				err = status.Error(codes.Internal, "internal server error")
			}
		}()

		return handler(ctx, req)
	}
}
