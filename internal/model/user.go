// Package model はドメインモデルを定義する。
package model

import "time"

// User はサインイン済みユーザーの記録を表す。
// IDはOAuthプロバイダーが発行したユーザー識別子をそのまま使う。
type User struct {
	ID         string
	Email      string
	PictureURL string
	CreatedAt  time.Time
}

// SessionClaims は署名付きセッショントークンに埋め込むクレームを表す。
// AccessTokenはカレンダー呼び出しに使う唯一の認証情報で、リフレッシュはしない。
type SessionClaims struct {
	UserID      string
	Email       string
	AccessToken string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}
