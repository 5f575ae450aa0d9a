package handler

import (
	"context"
	"net/http"
	"sync"

	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/calendarai/calendarai/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	getLoginURLFn    func() (string, error)
	handleCallbackFn func(ctx context.Context, code string) (*model.SessionClaims, error)
}

func (m *mockAuthService) GetLoginURL() (string, error) {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn()
	}
	return "", nil
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.SessionClaims, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return nil, nil
}

// mockSessions はセッションの読み取り・発行・破棄を記録する。
// Readは固定Cookie値が一致した場合のみclaimsを返す。
type mockSessions struct {
	cookieValue string
	claims      *model.SessionClaims

	issueErr error
	issued   *model.SessionClaims
	cleared  bool
}

func (m *mockSessions) Read(r *http.Request) (*model.SessionClaims, bool) {
	c, err := r.Cookie("session_token")
	if err != nil || m.claims == nil || c.Value != m.cookieValue {
		return nil, false
	}
	return m.claims, true
}

func (m *mockSessions) Issue(w http.ResponseWriter, claims *model.SessionClaims) error {
	if m.issueErr != nil {
		return m.issueErr
	}
	m.issued = claims
	http.SetCookie(w, &http.Cookie{Name: "session_token", Value: "issued", Path: "/"})
	return nil
}

func (m *mockSessions) Clear(w http.ResponseWriter) {
	m.cleared = true
	http.SetCookie(w, &http.Cookie{Name: "session_token", Value: "", Path: "/", MaxAge: -1})
}

type mockEventLister struct {
	listEventsFn func(ctx context.Context, accessToken string) ([]*calendarapi.Event, error)
	calls        int
}

func (m *mockEventLister) ListEvents(ctx context.Context, accessToken string) ([]*calendarapi.Event, error) {
	m.calls++
	if m.listEventsFn != nil {
		return m.listEventsFn(ctx, accessToken)
	}
	return []*calendarapi.Event{}, nil
}

// memoryNoteRepo はメモリ上のEventNoteRepository。
type memoryNoteRepo struct {
	mu      sync.Mutex
	notes   map[string]*model.EventNote
	findErr error
	saveErr error
	calls   int
}

func newMemoryNoteRepo() *memoryNoteRepo {
	return &memoryNoteRepo{notes: make(map[string]*model.EventNote)}
}

func (m *memoryNoteRepo) Find(ctx context.Context, userID, eventID string) (*model.EventNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	n, ok := m.notes[userID+"/"+eventID]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (m *memoryNoteRepo) Save(ctx context.Context, note *model.EventNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *note
	m.notes[note.UserID+"/"+note.EventID] = &cp
	return nil
}

// memoryPreferencesRepo はメモリ上のPreferencesRepository。
type memoryPreferencesRepo struct {
	mu       sync.Mutex
	prefs    map[string]model.Preferences
	findErr  error
	mergeErr error
	calls    int
}

func newMemoryPreferencesRepo() *memoryPreferencesRepo {
	return &memoryPreferencesRepo{prefs: make(map[string]model.Preferences)}
}

func (m *memoryPreferencesRepo) Find(ctx context.Context, userID string) (model.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	p, ok := m.prefs[userID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (m *memoryPreferencesRepo) Merge(ctx context.Context, userID string, prefs model.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.mergeErr != nil {
		return m.mergeErr
	}
	cur, ok := m.prefs[userID]
	if !ok {
		cur = model.Preferences{}
	}
	for k, v := range prefs {
		cur[k] = v
	}
	m.prefs[userID] = cur
	return nil
}

type mockSummarizeService struct {
	summarizeFn func(ctx context.Context, text string) (string, error)
	calls       int
}

func (m *mockSummarizeService) Summarize(ctx context.Context, text string) (string, error) {
	m.calls++
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, text)
	}
	return "summary", nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}
