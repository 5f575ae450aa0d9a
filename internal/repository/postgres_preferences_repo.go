package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calendarai/calendarai/internal/model"
)

// PostgresPreferencesRepo はJSONBカラムに設定ドキュメントを保持するリポジトリ。
type PostgresPreferencesRepo struct {
	db *sql.DB
}

// NewPostgresPreferencesRepo はPostgresPreferencesRepoを生成する。
func NewPostgresPreferencesRepo(db *sql.DB) *PostgresPreferencesRepo {
	return &PostgresPreferencesRepo{db: db}
}

// Find はユーザーの設定を取得する。保存されていない場合はnilを返す。
func (r *PostgresPreferencesRepo) Find(ctx context.Context, userID string) (model.Preferences, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM user_preferences WHERE user_id = $1`,
		userID,
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find preferences: %w", err)
	}

	prefs := model.Preferences{}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}

// Merge はトップレベルのキー単位で既存の設定にマージする。
// JSONBの || 演算子により、指定キーのみが置き換わる。
func (r *PostgresPreferencesRepo) Merge(ctx context.Context, userID string, prefs model.Preferences) error {
	if prefs == nil {
		prefs = model.Preferences{}
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	// lib/pqは[]byteをbyteaとして送るため、文字列で渡してjsonbにキャストする
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, data, updated_at)
		 VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (user_id)
		 DO UPDATE SET data = user_preferences.data || EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		userID, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to merge preferences: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PreferencesRepository = (*PostgresPreferencesRepo)(nil)
