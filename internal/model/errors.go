package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Messageはクライアントにそのまま返すため、内部情報を含めてはならない。
type APIError struct {
	Code    string // エラーコード
	Message string // クライアント向けメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewMethodNotAllowedError は許可されていないHTTPメソッドのエラーを生成する。
func NewMethodNotAllowedError() *APIError {
	return &APIError{Code: ErrCodeMethodNotAllowed, Message: "Method Not Allowed"}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError(message string) *APIError {
	return &APIError{Code: ErrCodeUnauthorized, Message: message}
}

// NewForbiddenError は権限のない操作のエラーを生成する。
func NewForbiddenError(message string) *APIError {
	return &APIError{Code: ErrCodeForbidden, Message: message}
}

// NewInvalidRequestError はリクエスト不正エラーを生成する。
func NewInvalidRequestError(message string) *APIError {
	return &APIError{Code: ErrCodeInvalidRequest, Message: message}
}

// NewNotFoundError はリソース未検出エラーを生成する。
func NewNotFoundError(message string) *APIError {
	return &APIError{Code: ErrCodeNotFound, Message: message}
}

// NewInternalError は内部エラーを生成する。
// messageは一般的な文言に留め、原因はサーバーログにのみ記録する。
func NewInternalError(message string) *APIError {
	return &APIError{Code: ErrCodeInternal, Message: message}
}
