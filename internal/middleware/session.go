// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/calendarai/calendarai/internal/model"
)

// 未認証時のエラーメッセージ
const (
	NotSignedInMessage  = "Not signed in"
	UnauthorizedMessage = "Unauthorized"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// claimsContextKey はリクエストコンテキストにセッションクレームを格納するためのキー。
	claimsContextKey = contextKey("session_claims")
	// requestIDContextKey はリクエストIDを格納するためのキー。
	requestIDContextKey = contextKey("request_id")
	// logFieldsContextKey はロギングミドルウェアが内側から受け取る値のためのキー。
	logFieldsContextKey = contextKey("log_fields")
)

// SessionReader はリクエストからセッションを読み取るインターフェース。
// session.Codecが実装する。
type SessionReader interface {
	Read(r *http.Request) (*model.SessionClaims, bool)
}

// NewSessionMiddleware は署名付きセッションCookieを検証するミドルウェアを返す。
// 有効なクレームをリクエストコンテキストに注入する。
// 未認証リクエストには上流を呼ぶ前に401 Unauthorizedを返す。
func NewSessionMiddleware(reader SessionReader) func(next http.Handler) http.Handler {
	return NewSessionMiddlewareWithMessage(reader, NotSignedInMessage)
}

// NewSessionMiddlewareWithMessage は401応答のメッセージを指定できるNewSessionMiddleware。
func NewSessionMiddlewareWithMessage(reader SessionReader, message string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := reader.Read(r)
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(message))
				return
			}

			setLogUserID(r.Context(), claims.UserID)

			ctx := ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext はリクエストコンテキストからセッションクレームを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (*model.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*model.SessionClaims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UserID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return claims.UserID, nil
}

// ContextWithClaims はコンテキストにセッションクレームを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims *model.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ContextWithUserID はユーザーIDのみを持つクレームをコンテキストに注入する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return ContextWithClaims(ctx, &model.SessionClaims{UserID: userID})
}
