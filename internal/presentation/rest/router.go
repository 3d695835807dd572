package rest

import (
	"context"
	"net/http"

	tokenapp "secureauth-server/internal/application/token_validation"
	"secureauth-server/internal/infrastructure/config"
	otelinfra "secureauth-server/internal/infrastructure/observability/otel"
	"secureauth-server/internal/presentation/rest/handler"
	restmiddleware "secureauth-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router REST APIルーター
type Router struct {
	echo         *echo.Echo
	server       config.ServerConfig
	logger       *otelinfra.Logger
	tokenHandler *handler.TokenHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	tokenService *tokenapp.TokenValidationApplicationService,
) (*Router, error) {
	e := echo.New()
	e.Debug = cfg.Server.Debug
	e.HideBanner = true
	e.HidePort = true

	// パニック復旧やルーティング外のエラーもJSONで返す
	e.HTTPErrorHandler = restmiddleware.HTTPErrorHandler(logger)

	// ミドルウェアの設定
	setupMiddleware(e, cfg, logger, metrics)

	// ハンドラーの作成
	tokenHandler := handler.NewTokenHandler(tokenService)

	// ルーティングの設定
	setupRoutes(e, cfg, tokenHandler)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return &Router{
		echo:         e,
		server:       cfg.Server,
		logger:       logger,
		tokenHandler: tokenHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// CORS設定（iOSクライアント以外にSwagger UIからも呼ばれる）
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))

	// リクエストボディサイズ制限
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
}

// setupRoutes ルーティングを設定
func setupRoutes(e *echo.Echo, cfg *config.Config, tokenHandler *handler.TokenHandler) {
	// トークン検証エンドポイント
	e.POST("/api/validate-token", tokenHandler.ValidateToken)

	// ヘルスチェックエンドポイント
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheusメトリクス（ランタイム・gRPCのメトリクスを含む）
	if cfg.Metrics.PrometheusEnabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.Handler()))
	}
}

// ServeHTTP http.Handlerとしてリクエストを処理
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.echo.ServeHTTP(w, req)
}

// Start サーバーを起動
func (r *Router) Start() error {
	server := &http.Server{
		Addr:         r.server.Address(),
		ReadTimeout:  r.server.ReadTimeout,
		WriteTimeout: r.server.WriteTimeout,
		IdleTimeout:  r.server.IdleTimeout,
	}

	r.logger.Info(context.Background(), "HTTP server listening", map[string]interface{}{
		"address": server.Addr,
		"debug":   r.echo.Debug,
	})

	return r.echo.StartServer(server)
}

// Shutdown 処理中のリクエストを待ってサーバーをシャットダウン
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
