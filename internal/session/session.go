// Package session は署名付きセッショントークンの発行・検証とCookie操作を提供する。
//
// セッションはサーバー側に状態を持たない。トークンはHS256で署名されたJWTで、
// ユーザーID・メールアドレス・上流のアクセストークンを埋め込む。
// 失効はCookieの上書きのみで行い、サーバー側の拒否リストは持たない。
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calendarai/calendarai/internal/model"
)

// DefaultCookieName はセッションCookieの既定名。
const DefaultCookieName = "session_token"

// DefaultMaxAge はセッションの既定有効期間（秒）。
const DefaultMaxAge = 7200

// ErrSecretNotConfigured は署名鍵が未設定のときにIssueが返すエラー。
var ErrSecretNotConfigured = errors.New("session secret is not configured")

// Config はセッションCodecの設定。
type Config struct {
	Secret     string
	CookieName string
	MaxAge     int // 秒
	Secure     bool
	Domain     string
}

// Codec はセッショントークンの発行・読み取り・破棄を行う。
// 状態を持たないため複数goroutineから同時に使用できる。
type Codec struct {
	config Config
	now    func() time.Time
}

// tokenClaims はJWTに埋め込むクレーム。
type tokenClaims struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
	jwt.RegisteredClaims
}

// NewCodec はCodecを生成する。
func NewCodec(config Config) *Codec {
	if config.CookieName == "" {
		config.CookieName = DefaultCookieName
	}
	if config.MaxAge <= 0 {
		config.MaxAge = DefaultMaxAge
	}
	return &Codec{config: config, now: time.Now}
}

// CookieName はセッションCookieの名前を返す。
func (c *Codec) CookieName() string {
	return c.config.CookieName
}

// Issue はクレームに署名し、HTTP Only Cookieとしてレスポンスに設定する。
// 有効期限は発行時刻からMaxAge秒後。
func (c *Codec) Issue(w http.ResponseWriter, claims *model.SessionClaims) error {
	if c.config.Secret == "" {
		return ErrSecretNotConfigured
	}

	now := c.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:      claims.UserID,
		Email:       claims.Email,
		AccessToken: claims.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(c.config.MaxAge) * time.Second)),
		},
	})

	signed, err := tok.SignedString([]byte(c.config.Secret))
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	http.SetCookie(w, c.cookie(signed, c.config.MaxAge))
	return nil
}

// Read はリクエストのセッションCookieを検証し、クレームを返す。
// Cookieなし・形式不正・署名不一致・期限切れのいずれもfalseを返し、
// 呼び出し側にはどのケースかを区別させない。
func (c *Codec) Read(r *http.Request) (*model.SessionClaims, bool) {
	if c.config.Secret == "" {
		return nil, false
	}

	cookie, err := r.Cookie(c.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	parsed := &tokenClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, parsed,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(c.config.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return nil, false
	}
	if parsed.UserID == "" {
		return nil, false
	}

	claims := &model.SessionClaims{
		UserID:      parsed.UserID,
		Email:       parsed.Email,
		AccessToken: parsed.AccessToken,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, true
}

// Clear はセッションCookieを即時失効する空値で上書きする。
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *Codec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.config.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   c.config.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
