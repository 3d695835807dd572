package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tokenapp "secureauth-server/internal/application/token_validation"
	"secureauth-server/internal/infrastructure/config"
	otelinfra "secureauth-server/internal/infrastructure/observability/otel"
	grpcserver "secureauth-server/internal/presentation/grpc"
	"secureauth-server/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	logger := otelinfra.NewLogger(otelinfra.WithLevel(otelinfra.LogLevel(cfg.Log.Level)))
	metrics, err := otelinfra.NewMetrics(cfg.OpenTelemetry.ServiceName)
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// アプリケーションサービスの初期化
	tokenService := tokenapp.NewTokenValidationApplicationService(logger, metrics)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(cfg, logger, metrics, tokenService)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// gRPCサーバーの初期化
	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Enabled {
		grpcSrv, err = grpcserver.NewServer(cfg, logger, tokenService)
		if err != nil {
			log.Fatalf("Failed to create gRPC server: %v", err)
		}
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting secureauth-server", map[string]interface{}{
		"environment":  cfg.Environment,
		"grpc_enabled": cfg.GRPC.Enabled,
		"otel_enabled": cfg.OpenTelemetry.Enabled,
	})

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	serveErr := make(chan error, 2)

	// REST APIサーバーを別ゴルーチンで起動
	go func() {
		if err := router.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// gRPCサーバーを別ゴルーチンで起動
	if grpcSrv != nil {
		go func() {
			if err := grpcSrv.Start(); err != nil {
				serveErr <- err
			}
		}()
	}

	// シグナルまたは起動エラーを待機
	select {
	case sig := <-quit:
		logger.Info(ctx, "Shutting down servers", map[string]interface{}{
			"signal": sig.String(),
		})
	case err := <-serveErr:
		logger.Error(ctx, "Server error, shutting down", err, nil)
	}

	// グレースフルシャットダウン
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// REST APIサーバーのシャットダウン
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Error shutting down REST API server", err, nil)
	}

	// gRPCサーバーのシャットダウン
	if grpcSrv != nil {
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			logger.Error(ctx, "Error shutting down gRPC server", err, nil)
		}
	}

	logger.Info(ctx, "Servers stopped", nil)
}
