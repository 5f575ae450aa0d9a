package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/calendarai/calendarai/internal/middleware"
	"github.com/calendarai/calendarai/internal/model"
	"github.com/calendarai/calendarai/internal/repository"
)

// noteRequest はメモ保存リクエストのボディ。
// noteTextは空文字列を許容し、文字列以外の型と未指定を区別するため生のJSONで受ける。
type noteRequest struct {
	EventID  string          `json:"eventId"`
	NoteText json.RawMessage `json:"noteText"`
}

// noteResponse はメモ取得レスポンス。
type noteResponse struct {
	NoteText  string `json:"noteText"`
	UpdatedAt string `json:"updatedAt"`
}

// NoteHandler はイベントメモのHTTPハンドラー。
type NoteHandler struct {
	repo repository.EventNoteRepository
	now  func() time.Time
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(repo repository.EventNoteRepository) *NoteHandler {
	return &NoteHandler{repo: repo, now: time.Now}
}

// Save はイベントメモを保存する。既存のメモは上書きされる。
// POST /api/event-notes
func (h *NoteHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(middleware.UnauthorizedMessage))
		return
	}

	var req noteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	noteText, ok := decodeString(req.NoteText)
	if req.EventID == "" || !ok || hasNUL(req.EventID) || hasNUL(noteText) {
		writeBadRequest(w, "Invalid request body")
		return
	}

	note := &model.EventNote{
		UserID:    userID,
		EventID:   req.EventID,
		NoteText:  noteText,
		UpdatedAt: h.now().UTC(),
	}
	if err := h.repo.Save(r.Context(), note); err != nil {
		writeUpstreamError(w, r, "Failed to save note", err)
		return
	}

	writeSuccess(w)
}

// Get はイベントメモを取得する。
// GET /api/event-notes?eventId=xxx
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(middleware.UnauthorizedMessage))
		return
	}

	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		writeBadRequest(w, "No eventId provided")
		return
	}

	// NULを含むイベントIDのメモは保存できないため存在しない
	if hasNUL(eventID) {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("Note not found"))
		return
	}

	note, err := h.repo.Find(r.Context(), userID, eventID)
	if err != nil {
		writeUpstreamError(w, r, "Failed to retrieve note", err)
		return
	}
	if note == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("Note not found"))
		return
	}

	writeJSON(w, http.StatusOK, noteResponse{
		NoteText:  note.NoteText,
		UpdatedAt: note.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// decodeString はJSON値が文字列の場合のみその値を返す。
func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
