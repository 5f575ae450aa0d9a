package repository

import (
	"context"

	"github.com/calendarai/calendarai/internal/model"
)

// Unavailable はDATABASE_URLが未設定のときに注入するリポジトリ。
// すべての操作がErrStoreNotConfiguredを返し、依存するハンドラーだけが500で応答する。
type Unavailable struct{}

// FindByID はErrStoreNotConfiguredを返す。
func (Unavailable) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, ErrStoreNotConfigured
}

// CreateIfAbsent はErrStoreNotConfiguredを返す。
func (Unavailable) CreateIfAbsent(ctx context.Context, user *model.User) (bool, error) {
	return false, ErrStoreNotConfigured
}

// Find はErrStoreNotConfiguredを返す。
func (Unavailable) Find(ctx context.Context, userID, eventID string) (*model.EventNote, error) {
	return nil, ErrStoreNotConfigured
}

// Save はErrStoreNotConfiguredを返す。
func (Unavailable) Save(ctx context.Context, note *model.EventNote) error {
	return ErrStoreNotConfigured
}

// UnavailablePreferences はDATABASE_URL未設定時の設定リポジトリ。
// FindのシグネチャがEventNoteRepositoryと衝突するため別の型にしている。
type UnavailablePreferences struct{}

// Find はErrStoreNotConfiguredを返す。
func (UnavailablePreferences) Find(ctx context.Context, userID string) (model.Preferences, error) {
	return nil, ErrStoreNotConfigured
}

// Merge はErrStoreNotConfiguredを返す。
func (UnavailablePreferences) Merge(ctx context.Context, userID string, prefs model.Preferences) error {
	return ErrStoreNotConfigured
}

// compile-time interface check
var (
	_ UserRepository        = Unavailable{}
	_ EventNoteRepository   = Unavailable{}
	_ PreferencesRepository = UnavailablePreferences{}
)
