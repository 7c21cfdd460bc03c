// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"medicine_backend/internal/feature/auth/domain/entity"
	"medicine_backend/internal/feature/auth/transport/http/dto"
	"medicine_backend/internal/shared/apperr"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、保存されたユーザーを返します。
	Register(ctx context.Context, name, email, password string) (*entity.User, error)
	// Login はユーザーを認証し、成功時にトークンとユーザーを返します。
	Login(ctx context.Context, email, password string) (string, *entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 不正なJSONや必須項目の欠落は400
// - メール重複は400
// - 成功時は201とユーザー情報（パスワードを除く）
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register bind failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "Invalid request body"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(c, "register failed", err, req.Email)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	createdAt := user.CreatedAt
	c.JSON(http.StatusCreated, dto.RegisterRes{
		Message: "User registered successfully",
		User: dto.UserView{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			CreatedAt: &createdAt,
		},
	})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時はメールの有無に関わらず同一の401を返却
// - 成功時はトークンとユーザー情報付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login bind failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "Invalid request body"})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "login failed", err, req.Email)
		return
	}

	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginRes{
		Message: "Login successful",
		Token:   token,
		User:    dto.UserView{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// fail はエラーを分類してレスポンスを書き込みます。サーバーエラーの詳細はログにのみ出力します。
func (h *AuthHandler) fail(c *gin.Context, msg string, err error, email string) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err, "email", email, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(msg, "error", err, "email", email, "remote_addr", c.ClientIP())
	}
	c.JSON(status, dto.MessageResponse{Message: apperr.Message(err)})
}
