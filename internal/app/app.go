// Package app は設定の読み込みと依存関係のワイヤリングを行い、各起動モードを実行する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/calendarai/calendarai/internal/auth"
	"github.com/calendarai/calendarai/internal/calendar"
	"github.com/calendarai/calendarai/internal/config"
	"github.com/calendarai/calendarai/internal/database"
	"github.com/calendarai/calendarai/internal/handler"
	"github.com/calendarai/calendarai/internal/logger"
	"github.com/calendarai/calendarai/internal/metrics"
	"github.com/calendarai/calendarai/internal/middleware"
	"github.com/calendarai/calendarai/internal/repository"
	"github.com/calendarai/calendarai/internal/session"
	"github.com/calendarai/calendarai/internal/summarize"
)

// devSessionSecret は開発環境でSESSION_SECRETが未設定の場合に使う署名鍵。
const devSessionSecret = "calendarai-development-session-secret"

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再構成する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Server はワイヤリング済みのHTTPハンドラーと、終了時に解放するリソースを保持する。
type Server struct {
	Handler http.Handler

	db          *sql.DB
	rateLimiter *middleware.RateLimiter
}

// NewServer は設定から全依存関係を構築する。
// DATABASE_URLが空の場合はドキュメントストアを使うハンドラーだけが500を返す。
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{}

	// 1. DB接続（任意）
	var (
		userRepo  repository.UserRepository        = repository.Unavailable{}
		noteRepo  repository.EventNoteRepository   = repository.Unavailable{}
		prefsRepo repository.PreferencesRepository = repository.UnavailablePreferences{}
		checker   handler.HealthChecker
	)
	if cfg.DatabaseURL != "" {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established")

		s.db = db
		checker = db
		userRepo = repository.NewPostgresUserRepo(db)
		noteRepo = repository.NewPostgresEventNoteRepo(db)
		prefsRepo = repository.NewPostgresPreferencesRepo(db)
	} else {
		slog.Warn("DATABASE_URL is not set; notes and preferences are unavailable")
	}

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. セッション
	secret := cfg.SessionSecret
	if secret == "" && !cfg.IsProduction() {
		slog.Warn("SESSION_SECRET is not set; using the development secret")
		secret = devSessionSecret
	}
	codec := session.NewCodec(session.Config{
		Secret:     secret,
		CookieName: cfg.SessionCookieName,
		MaxAge:     cfg.SessionMaxAge,
		Secure:     cfg.CookieSecure,
		Domain:     cfg.CookieDomain,
	})

	// 4. 上流クライアントとドメインサービス
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, collector)
	authService := auth.NewService(oauthProvider, userRepo)

	calendarClient := calendar.NewGoogleClient(calendar.GoogleClientConfig{}, collector)

	openAI := summarize.NewOpenAIClient(summarize.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	}, collector)
	summarizeService := summarize.NewService(openAI)

	// 5. ルーターの構築
	s.rateLimiter = middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitSummarize),
	)

	s.Handler = handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Sessions:          codec,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       s.rateLimiter,
		HTTPMetrics:       collector,
		MetricsHandler:    metrics.Handler(reg),
		HealthChecker:     checker,
		CSRFProtection:    cfg.CSRFProtection,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		AuthService:      authService,
		EventLister:      calendarClient,
		NoteRepo:         noteRepo,
		PreferencesRepo:  prefsRepo,
		SummarizeService: summarizeService,
		UpstreamTimeout:  cfg.UpstreamTimeout,
	})

	return s, nil
}

// Close はサーバーが保持するリソースを解放する。
func (s *Server) Close() error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Serve はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func Serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg)
}

func serve(ctx context.Context, cfg *config.Config) error {
	srv, err := NewServer(cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// 上流呼び出しの期限より長く取る
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
			slog.String("base_url", cfg.BaseURL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// Migrate はデータベースマイグレーションを実行する。
// downがtrueの場合は全マイグレーションをロールバックする。
func Migrate(cfg *config.Config, down bool) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrations")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.Bool("down", down),
	)

	run := database.RunMigrations
	if down {
		run = database.RollbackMigrations
	}
	if err := run(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// Healthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func Healthcheck(port string) error {
	return healthcheck(fmt.Sprintf("http://localhost:%s/health", port))
}

func healthcheck(target string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// HealthcheckPort はヘルスチェック先のポートを環境変数から返す。
// フル初期化を行わずに使えるようConfigを経由しない。
func HealthcheckPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	return "8080"
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
