package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calendarai/calendarai/internal/model"
)

// PostgresEventNoteRepo はPostgreSQLを使用したイベントメモリポジトリ。
type PostgresEventNoteRepo struct {
	db *sql.DB
}

// NewPostgresEventNoteRepo はPostgresEventNoteRepoを生成する。
func NewPostgresEventNoteRepo(db *sql.DB) *PostgresEventNoteRepo {
	return &PostgresEventNoteRepo{db: db}
}

// Find はユーザーIDとイベントIDでメモを取得する。見つからない場合はnilを返す。
func (r *PostgresEventNoteRepo) Find(ctx context.Context, userID, eventID string) (*model.EventNote, error) {
	note := &model.EventNote{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, event_id, note_text, updated_at
		 FROM event_notes WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	).Scan(&note.UserID, &note.EventID, &note.NoteText, &note.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event note: %w", err)
	}

	return note, nil
}

// Save はメモを後勝ちで保存する。
func (r *PostgresEventNoteRepo) Save(ctx context.Context, note *model.EventNote) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_notes (user_id, event_id, note_text, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, event_id)
		 DO UPDATE SET note_text = EXCLUDED.note_text, updated_at = EXCLUDED.updated_at`,
		note.UserID, note.EventID, note.NoteText, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save event note: %w", err)
	}
	return nil
}

// compile-time interface check
var _ EventNoteRepository = (*PostgresEventNoteRepo)(nil)
