package dto

// LoginReq は/auth/loginエンドポイントのリクエストボディを表します。
// 必須チェックはusecaseで行い、欠落時のメッセージを統一します。
type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRes はログイン成功時のレスポンスです。
type LoginRes struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserView `json:"user"`
}
