// Package router はginエンジンの構築とルーティングを提供します。
package router

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "medicine_backend/internal/feature/auth/transport/handler"
	medicinehandler "medicine_backend/internal/feature/medicine/transport/handler"
	platformhandler "medicine_backend/internal/platform/http/handler"
	jwtmw "medicine_backend/internal/platform/jwt"
	"medicine_backend/internal/platform/metrics"
	"medicine_backend/internal/shared/ratelimiter"
)

// Deps はルーターが必要とするハンドラーとミドルウェアの依存です。
// AuthLimiter、Metrics、ReadyChecks は省略可能です。
// TrustedProxies が空の場合、X-Forwarded-For は無視され接続元アドレスがクライアントIPになります。
type Deps struct {
	Auth           *authhandler.AuthHandler
	Medicine       *medicinehandler.MedicineHandler
	Verifier       jwtmw.Verifier
	AuthLimiter    ratelimiter.Limiter
	Metrics        *metrics.Metrics
	ReadyChecks    map[string]platformhandler.Check
	CORSOrigins    []string
	TrustedProxies []string
}

// NewRouter はginエンジンを生成し、全ルートを登録します。
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	// クライアントIPは回数制限のキーになるため、設定されたプロキシ以外のヘッダーは信頼しない
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		slog.Error("invalid trusted proxies, ignoring forwarded headers", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(d.CORSOrigins)))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", d.Metrics.Handler())
	}

	// 認証不要
	// 導通確認用
	r.GET("/", platformhandler.Root)
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)
	r.OPTIONS("/healthz", platformhandler.Health)
	r.GET("/readyz", platformhandler.Ready(d.ReadyChecks))

	api := r.Group("/api")

	// 新規ユーザー登録・ログイン（クライアントIPごとに回数制限）
	auth := api.Group("/auth", ratelimiter.Middleware(d.AuthLimiter))
	{
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)
	}

	// 認証必須のルート
	// → リクエストヘッダーに Bearer トークンが必要になる
	meds := api.Group("/meds", jwtmw.AuthRequired(d.Verifier))
	{
		meds.POST("", d.Medicine.Create)
		meds.GET("", d.Medicine.List)
		meds.PUT("/:id", d.Medicine.Update)
		meds.DELETE("/:id", d.Medicine.Delete)
		meds.POST("/:id/log", d.Medicine.LogDose)
		meds.GET("/:id/logs", d.Medicine.GetLogs)
	}

	return r
}

// corsConfig はフロントエンドからのアクセスを許可するCORS設定を返します。
// origins が空または "*" を含む場合はすべてのオリジンを許可します。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
