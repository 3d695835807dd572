package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	tokenapp "secureauth-server/internal/application/token_validation"
	"secureauth-server/internal/infrastructure/config"
	otelinfra "secureauth-server/internal/infrastructure/observability/otel"
	"secureauth-server/internal/presentation/grpc/handler"
	"secureauth-server/internal/presentation/grpc/interceptor"
	"secureauth-server/internal/presentation/grpc/pb"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// Server gRPCサーバー
type Server struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	logger   *otelinfra.Logger
}

// NewServer 新しいgRPCサーバーを作成
func NewServer(
	cfg *config.Config,
	logger *otelinfra.Logger,
	tokenService *tokenapp.TokenValidationApplicationService,
) (*Server, error) {
	address := cfg.GRPCAddress()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	return NewServerWithListener(cfg, logger, tokenService, listener)
}

// NewServerWithListener リスナーを指定してgRPCサーバーを作成（テスト用）
func NewServerWithListener(
	cfg *config.Config,
	logger *otelinfra.Logger,
	tokenService *tokenapp.TokenValidationApplicationService,
	listener net.Listener,
) (*Server, error) {
	unary := []grpc.UnaryServerInterceptor{
		interceptor.RecoverInterceptor(logger),
		interceptor.TracingInterceptor(),
		interceptor.LoggingInterceptor(logger),
		interceptor.TimeoutInterceptor(cfg.GRPC.HandlerTimeout),
	}
	if cfg.Metrics.PrometheusEnabled {
		grpc_prometheus.EnableHandlingTimeHistogram()
		unary = append(unary, grpc_prometheus.UnaryServerInterceptor)
	}

	// インターセプターを設定
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(unary...),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Second,
			MaxConnectionAge:      30 * time.Second,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  5 * time.Second,
			Timeout:               1 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	// gRPCサーバーを作成
	grpcServer := grpc.NewServer(opts...)

	// ハンドラーを登録
	pb.RegisterTokenValidationServiceServer(grpcServer, handler.NewTokenHandler(tokenService))

	// ヘルスチェック
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(pb.TokenValidationServiceName, healthpb.HealthCheckResponse_SERVING)

	// リフレクションを有効化（開発環境用）
	if cfg.Environment == "development" {
		reflection.Register(grpcServer)
	}

	if cfg.Metrics.PrometheusEnabled {
		grpc_prometheus.Register(grpcServer)
	}

	return &Server{
		server:   grpcServer,
		health:   healthServer,
		listener: listener,
		logger:   logger,
	}, nil
}

// Start サーバーを起動
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "gRPC server listening", map[string]interface{}{
		"address": s.Address(),
	})
	if err := s.server.Serve(s.listener); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop サーバーを停止
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info(ctx, "Stopping gRPC server", nil)

	// 新規のヘルスチェックにNOT_SERVINGを返す
	s.health.Shutdown()

	// グレースフルシャットダウン
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	// タイムアウトを設定
	select {
	case <-stopped:
		s.logger.Info(ctx, "gRPC server stopped", nil)
		return nil
	case <-ctx.Done():
		// タイムアウトした場合は強制停止
		s.logger.Warn(ctx, "gRPC server shutdown timeout, forcing stop", nil)
		s.server.Stop()
		return ctx.Err()
	}
}

// Address 待ち受けアドレスを返す
func (s *Server) Address() string {
	return s.listener.Addr().String()
}
