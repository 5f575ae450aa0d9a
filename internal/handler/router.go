package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calendarai/calendarai/internal/calendar"
	"github.com/calendarai/calendarai/internal/metrics"
	"github.com/calendarai/calendarai/internal/middleware"
	"github.com/calendarai/calendarai/internal/repository"
	"github.com/calendarai/calendarai/internal/session"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Sessions          SessionReaderIssuer
	CORSAllowedOrigin string
	// RateLimiter がnilの場合はデフォルト設定のリミッターを生成する
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       metrics.HTTPRecorder
	MetricsHandler    http.Handler
	HealthChecker     HealthChecker

	// CSRFProtection が有効な場合、状態変更リクエストにCSRFトークンを要求する
	CSRFProtection bool
	CSRFConfig     middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// カレンダー
	EventLister calendar.EventLister

	// ドキュメントストア
	NoteRepo        repository.EventNoteRepository
	PreferencesRepo repository.PreferencesRepository

	// 要約
	SummarizeService SummarizeServiceInterface

	// UpstreamTimeout はカレンダーと言語モデル呼び出しの期限
	UpstreamTimeout time.Duration
}

// SessionReaderIssuer はセッションの読み取りと発行を兼ねるインターフェース。
type SessionReaderIssuer interface {
	middleware.SessionReader
	SessionIssuer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → Logging → Metrics → SecurityHeaders → CORS
//
// リソースルートにはさらに Session → RateLimit(General) → CSRF（有効時）を適用する。
// 未対応メソッドはセッション検証より前に405を返す。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpMetrics := deps.HTTPMetrics
	if httpMetrics == nil {
		httpMetrics = metrics.Nop{}
	}
	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	}

	r := chi.NewRouter()
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(httpMetrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.Sessions, deps.AuthConfig)
	calendarHandler := NewCalendarHandler(deps.EventLister, deps.UpstreamTimeout)
	noteHandler := NewNoteHandler(deps.NoteRepo)
	prefsHandler := NewPreferencesHandler(deps.PreferencesRepo)
	summarizeHandler := NewSummarizeHandler(deps.SummarizeService, deps.UpstreamTimeout)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 認証不要のルート ---
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// OAuthフロー
	r.Get("/api/auth/google", authHandler.Google)
	r.Get("/api/auth/logout", authHandler.Logout)

	if deps.CSRFProtection {
		r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	protected := func(message string) func(r chi.Router) {
		return func(r chi.Router) {
			r.Use(middleware.NewSessionMiddlewareWithMessage(deps.Sessions, message))
			r.Use(rateLimiter.GeneralMiddleware())
			if deps.CSRFProtection {
				r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
			}
		}
	}

	r.Group(func(r chi.Router) {
		protected(middleware.NotSignedInMessage)(r)

		r.Get("/api/auth/me", authHandler.Me)
		r.Get("/api/calendar-events", calendarHandler.ListEvents)

		// 要約には専用のレート制限を追加する
		r.With(rateLimiter.SummarizeMiddleware()).Post("/api/ai-summarize", summarizeHandler.Summarize)
	})

	r.Group(func(r chi.Router) {
		protected(middleware.UnauthorizedMessage)(r)

		r.Get("/api/event-notes", noteHandler.Get)
		r.Post("/api/event-notes", noteHandler.Save)

		r.Get("/api/user-preferences", prefsHandler.Get)
		r.Post("/api/user-preferences", prefsHandler.Save)
	})

	return r
}

// compile-time interface check
var _ SessionReaderIssuer = (*session.Codec)(nil)
