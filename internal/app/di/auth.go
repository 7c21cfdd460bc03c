package di

import (
	"time"

	"gorm.io/gorm"

	authadapters "medicine_backend/internal/feature/auth/adapters"
	authhandler "medicine_backend/internal/feature/auth/transport/handler"
	authusecase "medicine_backend/internal/feature/auth/usecase"
	jwtmw "medicine_backend/internal/platform/jwt"
)

// NewTokenGenerator creates the HS256 generator shared by login and the auth middleware.
func NewTokenGenerator(secret string, ttl time.Duration) *jwtmw.Generator {
	return jwtmw.NewGenerator(secret, ttl)
}

// NewAuthHandler wires the user repository, auth usecase and handler.
func NewAuthHandler(db *gorm.DB, tokens *jwtmw.Generator) *authhandler.AuthHandler {
	users := authadapters.NewUserRepository(db)
	return authhandler.NewAuthHandler(authusecase.NewAuthUsecase(users, tokens))
}
