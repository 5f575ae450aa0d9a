package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/calendarai/calendarai/internal/summarize"
)

const msgInvalidText = "Missing or invalid 'text' field."

// SummarizeServiceInterface は要約ハンドラーが必要とするサービスインターフェース。
type SummarizeServiceInterface interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type summarizeRequest struct {
	Text json.RawMessage `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// SummarizeHandler はAI要約のHTTPハンドラー。
type SummarizeHandler struct {
	service SummarizeServiceInterface
	timeout time.Duration
}

// NewSummarizeHandler はSummarizeHandlerを生成する。
func NewSummarizeHandler(service SummarizeServiceInterface, timeout time.Duration) *SummarizeHandler {
	return &SummarizeHandler{service: service, timeout: timeout}
}

// Summarize はテキストを要約して返す。textは空でない文字列であれば加工せずに渡す。
// POST /api/ai-summarize
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeBadRequest(w, msgInvalidText)
		return
	}

	text, ok := decodeString(req.Text)
	if !ok || text == "" {
		writeBadRequest(w, msgInvalidText)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	summary, err := h.service.Summarize(ctx, text)
	if err != nil {
		writeUpstreamError(w, r, "Failed to summarize with AI", err)
		return
	}

	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

// compile-time interface check
var _ SummarizeServiceInterface = (*summarize.Service)(nil)
