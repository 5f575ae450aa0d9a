// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calendarai/calendarai/internal/middleware"
	"github.com/calendarai/calendarai/internal/model"
)

// maxBodyBytes はJSONリクエストボディの上限。
const maxBodyBytes = 1 << 20

// errBodyTooLarge はボディが上限を超えた場合に返される。
var errBodyTooLarge = errors.New("request body too large")

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeSuccess は {"success": true} を返す。
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeBadRequest は400の統一エラーレスポンスを書き込む。
func writeBadRequest(w http.ResponseWriter, message string) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(message))
}

// writeUpstreamError は上流の失敗をログに残し、一般的なメッセージで500を返す。
func writeUpstreamError(w http.ResponseWriter, r *http.Request, message string, err error) {
	slog.Error(message,
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteInternalServerError(w, message)
}

// decodeJSONBody はボディを上限付きで読み込みdstにデコードする。
// 未知のフィールドは無視する。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return err
	}
	return json.Unmarshal(body, dst)
}

// hasNUL は文字列がNUL文字を含むかを返す。PostgreSQLのTEXTとJSONBはNULを保存できない。
func hasNUL(s string) bool {
	return strings.IndexByte(s, 0) >= 0
}

// containsNUL はデコード済みJSON値のキーまたは文字列にNUL文字が含まれるかを返す。
func containsNUL(v any) bool {
	switch t := v.(type) {
	case string:
		return hasNUL(t)
	case map[string]any:
		for k, e := range t {
			if hasNUL(k) || containsNUL(e) {
				return true
			}
		}
	case model.Preferences:
		return containsNUL(map[string]any(t))
	case []any:
		for _, e := range t {
			if containsNUL(e) {
				return true
			}
		}
	}
	return false
}

// methodNotAllowed はchiのMethodNotAllowedハンドラーとして405を返す。
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteMethodNotAllowed(w)
}

// notFound はchiのNotFoundハンドラーとして404を返す。
func notFound(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("Not Found"))
}
