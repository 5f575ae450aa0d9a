package handler

import (
	"context"
	"net/http"
	"time"

	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/calendarai/calendarai/internal/calendar"
	"github.com/calendarai/calendarai/internal/middleware"
	"github.com/calendarai/calendarai/internal/model"
)

// CalendarHandler は予定一覧のHTTPハンドラー。
type CalendarHandler struct {
	lister  calendar.EventLister
	timeout time.Duration
}

// NewCalendarHandler はCalendarHandlerを生成する。
// timeoutが0以下の場合は上流呼び出しに期限を設けない。
func NewCalendarHandler(lister calendar.EventLister, timeout time.Duration) *CalendarHandler {
	return &CalendarHandler{lister: lister, timeout: timeout}
}

// ListEvents はセッションのアクセストークンでprimaryカレンダーの予定を返す。
// GET /api/calendar-events[?q=&from=YYYY-MM-DD&to=YYYY-MM-DD&order=asc|desc]
//
// クエリパラメータが無い場合はプロバイダーの順序をそのまま返す。
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.AccessToken == "" {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError(middleware.NotSignedInMessage))
		return
	}

	q := r.URL.Query()
	criteria, order, err := parseEventQuery(q.Get("q"), q.Get("from"), q.Get("to"), q.Get("order"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	reshape := q.Has("q") || q.Has("from") || q.Has("to") || q.Has("order")

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	events, err := h.lister.ListEvents(ctx, claims.AccessToken)
	if err != nil {
		writeUpstreamError(w, r, "Failed to fetch events", err)
		return
	}

	if reshape {
		events = calendar.Sort(calendar.Filter(events, criteria), order)
	}
	if events == nil {
		events = []*calendarapi.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

func parseEventQuery(search, from, to, order string) (calendar.Criteria, calendar.SortOrder, error) {
	fromDate, err := calendar.ParseDate(from)
	if err != nil {
		return calendar.Criteria{}, "", err
	}
	toDate, err := calendar.ParseDate(to)
	if err != nil {
		return calendar.Criteria{}, "", err
	}
	sortOrder, err := calendar.ParseSortOrder(order)
	if err != nil {
		return calendar.Criteria{}, "", err
	}
	return calendar.Criteria{Search: search, From: fromDate, To: toDate}, sortOrder, nil
}
