// Package summarize は言語モデルによるテキスト要約を提供する。
package summarize

import (
	"context"
	"errors"
)

// NoSummary はモデルが要約を返さなかった場合の応答。
const NoSummary = "No summary"

var (
	// ErrNotConfigured は言語モデルのAPIキーが未設定の場合に返される。
	ErrNotConfigured = errors.New("language model is not configured")

	// ErrEmptyText はテキストが空文字列の場合に返される。
	ErrEmptyText = errors.New("text is empty")
)

// Completer は言語モデルへの要約リクエストを行うインターフェース。
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, text string) (string, error)
}

// Service はテキストの要約を生成する。
type Service struct {
	completer Completer
}

// NewService はServiceを生成する。
func NewService(completer Completer) *Service {
	return &Service{completer: completer}
}

// Summarize はテキストを加工せずにモデルへ渡し、最初の候補をそのまま返す。
// モデルが空文字列を返した場合はNoSummaryを返す。
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}

	if !s.completer.Configured() {
		return "", ErrNotConfigured
	}

	summary, err := s.completer.Complete(ctx, text)
	if err != nil {
		return "", err
	}

	if summary == "" {
		return NoSummary, nil
	}
	return summary, nil
}
