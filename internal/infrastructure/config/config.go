package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
)

// Config アプリケーション全体の設定
type Config struct {
	Server        ServerConfig
	GRPC          GRPCConfig
	Log           LogConfig
	Metrics       MetricsConfig
	OpenTelemetry OpenTelemetryConfig
	Environment   string
}

// ServerConfig HTTPサーバー設定
type ServerConfig struct {
	Host         string
	Port         int
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimit    string // echoのBodyLimit形式（例: "1M"）
}

// GRPCConfig gRPCサーバー設定
type GRPCConfig struct {
	Enabled        bool
	Port           int
	HandlerTimeout time.Duration // クライアントが期限を指定しない場合の処理期限
}

// LogConfig ログ設定
type LogConfig struct {
	Level string // "DEBUG", "INFO", "WARN", "ERROR"
}

// MetricsConfig Prometheusメトリクス公開設定
type MetricsConfig struct {
	PrometheusEnabled bool
	Path              string
}

// OpenTelemetryConfig OpenTelemetry設定
type OpenTelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceExporter   string // "otlp", "stdout"
	MetricsExporter string // "otlp", "stdout"
}

// Load 設定を読み込む
func Load() (*Config, error) {
	// .envファイルを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")
	port := getEnvAsInt("SERVER_PORT", 5002)

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         port,
			Debug:        getEnvAsBool("SERVER_DEBUG", true),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			BodyLimit:    getEnv("SERVER_BODY_LIMIT", "1M"),
		},
		GRPC: GRPCConfig{
			Enabled:        getEnvAsBool("GRPC_ENABLED", true),
			Port:           getEnvAsInt("GRPC_PORT", port+1),
			HandlerTimeout: getEnvAsDuration("GRPC_HANDLER_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level: strings.ToUpper(getEnv("LOG_LEVEL", "DEBUG")),
		},
		Metrics: MetricsConfig{
			PrometheusEnabled: getEnvAsBool("METRICS_PROMETHEUS_ENABLED", true),
			Path:              getEnv("METRICS_PATH", "/metrics"),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:         getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:     getEnv("OTEL_SERVICE_NAME", "secureauth-server"),
			ServiceVersion:  getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			OTLPInsecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			TraceExporter:   getEnv("OTEL_TRACES_EXPORTER", "otlp"),
			MetricsExporter: getEnv("OTEL_METRICS_EXPORTER", "otlp"),
		},
	}

	// 設定の検証
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate 設定の検証
func (c *Config) validate() error {
	if !validPort(c.Server.Port) {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535: %d", c.Server.Port)
	}
	if limit, err := bytes.Parse(c.Server.BodyLimit); err != nil || limit <= 0 {
		return fmt.Errorf("invalid SERVER_BODY_LIMIT: %q", c.Server.BodyLimit)
	}
	if c.GRPC.Enabled {
		if !validPort(c.GRPC.Port) {
			return fmt.Errorf("GRPC_PORT must be between 1 and 65535: %d", c.GRPC.Port)
		}
		if c.GRPC.Port == c.Server.Port {
			return fmt.Errorf("GRPC_PORT must differ from SERVER_PORT: %d", c.GRPC.Port)
		}
		if c.GRPC.HandlerTimeout <= 0 {
			return fmt.Errorf("GRPC_HANDLER_TIMEOUT must be positive: %s", c.GRPC.HandlerTimeout)
		}
	}
	if c.Metrics.PrometheusEnabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("METRICS_PATH must start with '/': %s", c.Metrics.Path)
	}
	switch c.Log.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL: %s", c.Log.Level)
	}
	if c.OpenTelemetry.Enabled {
		if !validExporter(c.OpenTelemetry.TraceExporter) {
			return fmt.Errorf("unsupported OTEL_TRACES_EXPORTER: %s", c.OpenTelemetry.TraceExporter)
		}
		if !validExporter(c.OpenTelemetry.MetricsExporter) {
			return fmt.Errorf("unsupported OTEL_METRICS_EXPORTER: %s", c.OpenTelemetry.MetricsExporter)
		}
	}
	return nil
}

// Address HTTPサーバーの待ち受けアドレスを返す
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GRPCAddress gRPCサーバーの待ち受けアドレスを返す
// ホストはHTTPサーバーと共通
func (c *Config) GRPCAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.GRPC.Port))
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

func validExporter(name string) bool {
	return name == "otlp" || name == "stdout"
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool 環境変数を真偽値として取得
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration 環境変数を時間として取得
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
