package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/calendarai/calendarai/internal/auth"
	"github.com/calendarai/calendarai/internal/middleware"
	"github.com/calendarai/calendarai/internal/model"
)

// OAuthフローの応答メッセージ（プレーンテキスト）
const (
	msgNoAccessToken     = "No access token returned"
	msgIncompleteProfile = "Could not retrieve user info from Google"
	msgOAuthError        = "OAuth error"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL() (string, error)
	HandleCallback(ctx context.Context, code string) (*model.SessionClaims, error)
}

// SessionIssuer はセッションCookieの発行と破棄を行うインターフェース。
// session.Codecが実装する。
type SessionIssuer interface {
	Issue(w http.ResponseWriter, claims *model.SessionClaims) error
	Clear(w http.ResponseWriter)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	// DashboardPath はサインイン成功後のリダイレクト先。
	DashboardPath string
	// HomePath はログアウト後のリダイレクト先。
	HomePath string
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionIssuer
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, sessions SessionIssuer, config AuthHandlerConfig) *AuthHandler {
	if config.DashboardPath == "" {
		config.DashboardPath = "/dashboard"
	}
	if config.HomePath == "" {
		config.HomePath = "/"
	}
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		config:   config,
	}
}

// Google はOAuthフローの開始とコールバックを1つのエンドポイントで処理する。
// GET /api/auth/google          → 認可URLへリダイレクト
// GET /api/auth/google?code=xxx → トークン交換、セッション発行、ダッシュボードへリダイレクト
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.login(w, r)
		return
	}
	h.callback(w, r, code)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.GetLoginURL()
	if err != nil {
		slog.Error("failed to build oauth login url", slog.String("error", err.Error()))
		http.Error(w, msgOAuthError, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request, code string) {
	claims, err := h.service.HandleCallback(r.Context(), code)
	switch {
	case errors.Is(err, auth.ErrNoAccessToken):
		slog.Warn("oauth exchange returned no access token")
		http.Error(w, msgNoAccessToken, http.StatusUnauthorized)
		return
	case errors.Is(err, auth.ErrIncompleteProfile):
		slog.Warn("oauth profile is missing id or email")
		http.Error(w, msgIncompleteProfile, http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		http.Error(w, msgOAuthError, http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Issue(w, claims); err != nil {
		slog.Error("failed to issue session", slog.String("error", err.Error()))
		http.Error(w, msgOAuthError, http.StatusInternalServerError)
		return
	}

	slog.Info("user signed in", slog.String("user_id", claims.UserID))
	http.Redirect(w, r, h.config.DashboardPath, http.StatusTemporaryRedirect)
}

// Logout はセッションCookieを破棄してトップページへリダイレクトする。
// GET /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, h.config.HomePath, http.StatusTemporaryRedirect)
}

// Me は現在のセッションのユーザー情報を返す。上流は呼ばない。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(middleware.NotSignedInMessage))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"userId": claims.UserID,
		"email":  claims.Email,
	})
}

// compile-time interface check
var _ AuthServiceInterface = (*auth.Service)(nil)
