// Package config はアプリケーション設定の読み込みを提供します。
// 優先順位は 既定値 < YAMLファイル < .env < 環境変数 です。
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"medicine_backend/internal/platform/db"
	redisclient "medicine_backend/internal/platform/redis"
)

// DevJWTSecret は JWT_SECRET 未設定時に使う開発用の鍵です。本番では必ず上書きしてください。
const DevJWTSecret = "dev-insecure-jwt-secret"

// Config はアプリケーション全体の設定です。
type Config struct {
	Server ServerConfig       `yaml:"server"`
	DB     db.Config          `yaml:"db"`
	Auth   AuthConfig         `yaml:"auth"`
	Redis  redisclient.Config `yaml:"redis"`
	Log    LogConfig          `yaml:"log"`
}

// ServerConfig はHTTPサーバーの設定です。
// AuthRateLimit は /api/auth へのクライアントIPごとの1分あたり上限で、0は無効を表します。
// TrustedProxies はX-Forwarded-Forを信頼するプロキシのIPまたはCIDRです。空の場合は接続元アドレスのみを使います。
type ServerConfig struct {
	Port               string        `yaml:"port"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	TrustedProxies     []string      `yaml:"trusted_proxies"`
	AuthRateLimit      int           `yaml:"auth_rate_limit"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig はトークン発行の設定です。
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default は既定値の設定を返します。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "5000",
			CORSAllowedOrigins: []string{"*"},
			AuthRateLimit:      20,
			ShutdownTimeout:    10 * time.Second,
		},
		DB: db.Config{
			Driver:         db.DriverPostgres,
			Host:           "localhost",
			Port:           "5432",
			User:           "postgres",
			Name:           "medicine_tracker",
			SSLMode:        "disable",
			SQLitePath:     "medicine.db",
			ConnectTimeout: 60 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret: DevJWTSecret,
			TokenTTL:  7 * 24 * time.Hour,
		},
		Redis: redisclient.Config{
			CacheTTL: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load は設定を読み込みます。path が空の場合YAMLファイルは読みません。
// envFile が存在しない場合は無視します。.env の値は既存の環境変数を上書きしません。
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv は設定されている環境変数で値を上書きします。
func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = splitList(v)
	}
	if v, ok := lookup("TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = splitList(v)
	}

	setString(&c.DB.Driver, "DB_DRIVER")
	setString(&c.DB.URL, "DB_URL")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.Name, "DB_NAME")
	setString(&c.DB.SSLMode, "DB_SSLMODE")
	setString(&c.DB.SQLitePath, "SQLITE_PATH")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")

	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	return errors.Join(
		setInt(&c.Server.AuthRateLimit, "AUTH_RATE_LIMIT"),
		setBool(&c.DB.RunMigrations, "RUN_MIGRATIONS"),
		setDuration(&c.DB.ConnectTimeout, "DB_CONNECT_TIMEOUT"),
		setDuration(&c.Auth.TokenTTL, "TOKEN_TTL"),
		setDuration(&c.Redis.CacheTTL, "CACHE_TTL"),
		setDuration(&c.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT"),
	)
}

// Validate は設定値の整合性を確認します。
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Server.AuthRateLimit < 0 {
		errs = append(errs, errors.New("server.auth_rate_limit must not be negative"))
	}
	for _, p := range c.Server.TrustedProxies {
		if !validProxy(p) {
			errs = append(errs, fmt.Errorf("server.trusted_proxies: %q is not an IP or CIDR", p))
		}
	}
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("db.driver must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, c.DB.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Redis.CacheTTL < 0 {
		errs = append(errs, errors.New("redis.cache_ttl must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// UsingDevSecret は開発用の鍵のまま起動しようとしているかを返します。
func (c *Config) UsingDevSecret() bool {
	return c.Auth.JWTSecret == DevJWTSecret
}

// Addr はサーバーの待ち受けアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func validProxy(p string) bool {
	if _, err := netip.ParsePrefix(p); err == nil {
		return true
	}
	_, err := netip.ParseAddr(p)
	return err == nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, v)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
