package model

import "time"

// EventNote はユーザーとイベントの組ごとに1件保持するメモ。
// 書き込みは後勝ちで、履歴は持たない。
type EventNote struct {
	UserID    string
	EventID   string
	NoteText  string
	UpdatedAt time.Time
}

// Preferences はユーザーごとの自由形式の設定ドキュメント。
type Preferences map[string]any
