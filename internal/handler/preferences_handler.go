package handler

import (
	"encoding/json"
	"net/http"

	"github.com/calendarai/calendarai/internal/middleware"
	"github.com/calendarai/calendarai/internal/model"
	"github.com/calendarai/calendarai/internal/repository"
)

// PreferencesHandler はユーザー設定のHTTPハンドラー。
type PreferencesHandler struct {
	repo repository.PreferencesRepository
}

// NewPreferencesHandler はPreferencesHandlerを生成する。
func NewPreferencesHandler(repo repository.PreferencesRepository) *PreferencesHandler {
	return &PreferencesHandler{repo: repo}
}

// Get はユーザー設定を返す。未保存の場合は空オブジェクトを返す。
// GET /api/user-preferences
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(middleware.UnauthorizedMessage))
		return
	}

	prefs, err := h.repo.Find(r.Context(), userID)
	if err != nil {
		writeUpstreamError(w, r, "Failed to fetch preferences", err)
		return
	}
	if prefs == nil {
		prefs = model.Preferences{}
	}

	writeJSON(w, http.StatusOK, prefs)
}

// Save はボディのキーを既存の設定にマージする。
// POST /api/user-preferences
func (h *PreferencesHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(middleware.UnauthorizedMessage))
		return
	}

	var raw json.RawMessage
	if err := decodeJSONBody(w, r, &raw); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	// オブジェクト以外（配列、文字列、null）とNULを含む値はストアに保存できない
	var prefs model.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil || prefs == nil || containsNUL(prefs) {
		writeBadRequest(w, "Invalid request body")
		return
	}

	if err := h.repo.Merge(r.Context(), userID, prefs); err != nil {
		writeUpstreamError(w, r, "Failed to save preferences", err)
		return
	}

	writeSuccess(w)
}
