// Package repository はデータ永続化のインターフェースとPostgreSQL実装を提供する。
//
// ドキュメントストアとして扱うため、各操作は単一ドキュメントの読み書きに閉じ、
// 複数ドキュメントにまたがるトランザクションは使わない。
package repository

import (
	"context"
	"errors"

	"github.com/calendarai/calendarai/internal/model"
)

// ErrStoreNotConfigured はデータベースが設定されていない場合に返される。
var ErrStoreNotConfigured = errors.New("document store is not configured")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateIfAbsent はユーザーが存在しない場合のみ作成する。
	// 既存レコードは上書きしない。作成した場合はtrueを返す。
	CreateIfAbsent(ctx context.Context, user *model.User) (bool, error)
}

// EventNoteRepository はイベントメモの永続化インターフェース。
type EventNoteRepository interface {
	// Find はユーザーIDとイベントIDでメモを取得する。見つからない場合はnilを返す。
	Find(ctx context.Context, userID, eventID string) (*model.EventNote, error)

	// Save はメモを保存する。同じ(ユーザー, イベント)の既存メモは上書きする。
	Save(ctx context.Context, note *model.EventNote) error
}

// PreferencesRepository はユーザー設定ドキュメントの永続化インターフェース。
type PreferencesRepository interface {
	// Find はユーザーの設定を取得する。保存されていない場合はnilを返す。
	Find(ctx context.Context, userID string) (model.Preferences, error)

	// Merge は指定されたキーだけを既存の設定に上書きマージする。
	// 指定されていないキーは保持される。
	Merge(ctx context.Context, userID string, prefs model.Preferences) error
}
