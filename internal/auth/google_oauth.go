package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/calendarai/calendarai/internal/metrics"
)

// DefaultScopes はサインイン時に要求するスコープ。
// プロフィール取得とカレンダーの読み取りのみを許可する。
var DefaultScopes = []string{
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
	"https://www.googleapis.com/auth/calendar.readonly",
}

// GoogleOAuthConfig はGoogle OAuthプロバイダーの設定。
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// テスト用にオーバーライド可能なエンドポイント
	AuthURL          string
	TokenURL         string
	UserInfoEndpoint string
	HTTPClient       *http.Client
}

// GoogleOAuthProvider はGoogle OAuth 2.0の認可コードフローを提供する。
type GoogleOAuthProvider struct {
	oauth            *oauth2.Config
	userInfoEndpoint string
	httpClient       *http.Client
	recorder         metrics.UpstreamRecorder
}

// NewGoogleOAuthProvider はGoogleOAuthProviderを生成する。
// recorderがnilの場合は何も記録しない。
func NewGoogleOAuthProvider(config GoogleOAuthConfig, recorder metrics.UpstreamRecorder) *GoogleOAuthProvider {
	endpoint := google.Endpoint
	if config.AuthURL != "" {
		endpoint.AuthURL = config.AuthURL
	}
	if config.TokenURL != "" {
		endpoint.TokenURL = config.TokenURL
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	return &GoogleOAuthProvider{
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       DefaultScopes,
		},
		userInfoEndpoint: config.UserInfoEndpoint,
		httpClient:       config.HTTPClient,
		recorder:         recorder,
	}
}

// Configured はクライアントIDとシークレットが設定されているかを返す。
func (p *GoogleOAuthProvider) Configured() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != ""
}

// GetLoginURL はGoogleの認可URLを生成する。
// オフラインアクセスと同意画面の再表示を常に要求する。
func (p *GoogleOAuthProvider) GetLoginURL() string {
	return p.oauth.AuthCodeURL("", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange は認可コードをトークンに交換する。
// レスポンスにアクセストークンが含まれない場合はErrNoAccessTokenを返す。
func (p *GoogleOAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	start := time.Now()
	token, err := p.oauth.Exchange(p.withHTTPClient(ctx), code)
	p.recorder.RecordUpstream(metrics.ProviderGoogleOAuth, err, time.Since(start))

	if err != nil {
		// x/oauth2はaccess_tokenの欠落をエラーとして返す
		if strings.Contains(err.Error(), "missing access_token") {
			return nil, ErrNoAccessToken
		}
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	if token.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	return token, nil
}

// FetchProfile はアクセストークンでユーザー情報を取得する。
// IDまたはメールアドレスが欠けている場合はErrIncompleteProfileを返す。
func (p *GoogleOAuthProvider) FetchProfile(ctx context.Context, accessToken string) (*OAuthUserInfo, error) {
	ctx = p.withHTTPClient(ctx)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if p.userInfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(p.userInfoEndpoint))
	}

	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	start := time.Now()
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	p.recorder.RecordUpstream(metrics.ProviderGoogleOAuth, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	if info.Id == "" || info.Email == "" {
		return nil, ErrIncompleteProfile
	}

	return &OAuthUserInfo{
		ProviderUserID: info.Id,
		Email:          info.Email,
		Picture:        info.Picture,
	}, nil
}

func (p *GoogleOAuthProvider) withHTTPClient(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// compile-time interface check
var _ OAuthProvider = (*GoogleOAuthProvider)(nil)
