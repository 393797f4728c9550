package utils

import (
	"context"
	"log/slog"

	"github.com/vaughan-dsouza/bookcart/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// context keys
type ctxKey string

const (
	CtxClaimsKey ctxKey = "claims"
	CtxLoggerKey ctxKey = "logger"
)

// PasswordCost matches bcrypt's default of 10 rounds.
const PasswordCost = bcrypt.DefaultCost

// ErrPasswordTooLong is returned for passwords over bcrypt's 72 byte input limit.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func WithClaims(ctx context.Context, c *token.Claims) context.Context {
	return context.WithValue(ctx, CtxClaimsKey, c)
}

// ClaimsFrom returns the verified identity placed by the auth middleware.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(CtxClaimsKey).(*token.Claims)
	return c, ok && c != nil
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLoggerKey, l)
}

// Logger returns the request-scoped logger or slog.Default.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(CtxLoggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
