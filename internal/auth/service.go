// Package auth はOAuth認可コードフローとサインイン処理を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/calendarai/calendarai/internal/model"
	"github.com/calendarai/calendarai/internal/repository"
)

var (
	// ErrNotConfigured はOAuthクライアントが未設定の場合に返される。
	ErrNotConfigured = errors.New("oauth client is not configured")

	// ErrNoAccessToken はトークン交換でアクセストークンが得られなかった場合に返される。
	ErrNoAccessToken = errors.New("no access token returned")

	// ErrIncompleteProfile はプロフィールにIDまたはメールアドレスが無い場合に返される。
	ErrIncompleteProfile = errors.New("could not retrieve user info")
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Picture        string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// Configured はクライアント資格情報が設定済みかを返す。
	Configured() bool
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL() string
	// Exchange は認可コードをトークンに交換する。
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	// FetchProfile はアクセストークンでユーザー情報を取得する。
	FetchProfile(ctx context.Context, accessToken string) (*OAuthUserInfo, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewService はServiceを生成する。
func NewService(oauth OAuthProvider, userRepo repository.UserRepository) *Service {
	return &Service{
		oauth:    oauth,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL() (string, error) {
	if !s.oauth.Configured() {
		return "", ErrNotConfigured
	}
	return s.oauth.GetLoginURL(), nil
}

// HandleCallback は認可コードを処理し、セッションに埋め込むクレームを返す。
// 未登録ユーザーはusersレコードを作成する。既存レコードは更新しない。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.SessionClaims, error) {
	if !s.oauth.Configured() {
		return nil, ErrNotConfigured
	}

	// 1. 認可コードをトークンに交換
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	if token == nil || token.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	// 2. アクセストークンでユーザー情報を取得
	userInfo, err := s.oauth.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	if userInfo.ProviderUserID == "" || userInfo.Email == "" {
		return nil, ErrIncompleteProfile
	}

	// 3. usersレコードを存在しない場合のみ作成
	existing, err := s.userRepo.FindByID(ctx, userInfo.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if existing == nil {
		created, err := s.userRepo.CreateIfAbsent(ctx, &model.User{
			ID:         userInfo.ProviderUserID,
			Email:      userInfo.Email,
			PictureURL: userInfo.Picture,
			CreatedAt:  s.now(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		if created {
			slog.Info("new user created",
				slog.String("user_id", userInfo.ProviderUserID),
				slog.String("email", userInfo.Email),
			)
		}
	} else {
		slog.Info("existing user logged in", slog.String("user_id", existing.ID))
	}

	return &model.SessionClaims{
		UserID:      userInfo.ProviderUserID,
		Email:       userInfo.Email,
		AccessToken: token.AccessToken,
	}, nil
}
