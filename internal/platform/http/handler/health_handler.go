// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceName はヘルスチェックのレスポンスに含めるサービス名です。
const ServiceName = "medicine-tracker"

// Health は /healthz のライブネスチェックです。依存コンポーネントは確認しません（/readyz を参照）。
// HEAD はボディなし、OPTIONS は204を返し、いずれもキャッシュを禁止します。
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
	}
}

// Root は疎通確認用のテキストを返します。
func Root(c *gin.Context) {
	c.String(http.StatusOK, "Medicine Tracker backend is running")
}
