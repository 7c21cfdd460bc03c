package dto

import "time"

// UserView はクライアントに公開するユーザー情報です。パスワードやハッシュは含みません。
type UserView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// MessageResponse はメッセージのみのレスポンス（主にエラー）です。
type MessageResponse struct {
	Message string `json:"message"`
}
