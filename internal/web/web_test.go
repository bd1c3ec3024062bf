package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindwell/internal/auth"
	"mindwell/internal/companion"
	"mindwell/internal/llm"
	"mindwell/internal/quotes"
	"mindwell/internal/session"
	"mindwell/internal/userstore"
)

type scriptedLLM struct {
	mu      sync.Mutex
	answers []string
}

func (f *scriptedLLM) Generate(_ context.Context, _ []llm.Message, _ llm.Options) (llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	answer := "ok"
	if len(f.answers) > 0 {
		answer = f.answers[0]
		f.answers = f.answers[1:]
	}
	return llm.Response{Content: answer}, nil
}

type memStore struct {
	mu      sync.Mutex
	records map[string]*userstore.UserRecord
}

func (m *memStore) Load(key string) (*userstore.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[key]; ok {
		return rec, nil
	}
	return userstore.NewRecord(""), nil
}

func (m *memStore) Save(key string, rec *userstore.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]*userstore.UserRecord)
	}
	m.records[key] = rec
	return nil
}

type testApp struct {
	router *gin.Engine
	token  string
	llm    *scriptedLLM
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()

	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"q":"Breathe.","a":"Anon"}]`))
	}))
	t.Cleanup(quoteSrv.Close)

	fake := &scriptedLLM{}
	authSvc := auth.New("cid", "secret", "http://localhost/cb", "test-jwt-secret")
	sessions := session.NewManager(&memStore{}, logger)
	comp := companion.New(fake, "", logger)
	h := NewHandlers(sessions, comp, authSvc, quotes.New(quoteSrv.URL, logger), logger)

	token, err := authSvc.IssueToken("alice@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &testApp{
		router: NewRouter(h, authSvc, logger),
		token:  token,
		llm:    fake,
	}
}

func (a *testApp) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	a := newTestApp(t)
	w := a.do(t, http.MethodGet, "/ping", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/api/v1/home", "/api/v1/chat/history", "/api/v1/journal"} {
		if w := a.do(t, http.MethodGet, path, "", false); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: want 401 without token, got %d", path, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 with bad token, got %d", w.Code)
	}

	// A valid token without the Bearer prefix must also be rejected.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	req.Header.Set("Authorization", a.token)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without Bearer prefix, got %d", w.Code)
	}
}

func TestChatFlow(t *testing.T) {
	a := newTestApp(t)
	a.llm.answers = []string{"Positive", "so glad to hear that"}

	w := a.do(t, http.MethodPost, "/api/v1/chat", `{"message":"had a great day"}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("chat: want 200, got %d: %s", w.Code, w.Body.String())
	}
	var res companion.ChatResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Reply != "so glad to hear that" || res.Emotion != "Positive" || res.Score != 1 {
		t.Fatalf("unexpected chat result: %+v", res)
	}

	w = a.do(t, http.MethodGet, "/api/v1/chat/history", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("history: want 200, got %d", w.Code)
	}
	var hist struct {
		Messages []userstore.ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Messages) != 2 {
		t.Fatalf("want 2 messages, got %d", len(hist.Messages))
	}
}

func TestChatRejectsEmptyBody(t *testing.T) {
	a := newTestApp(t)
	if w := a.do(t, http.MethodPost, "/api/v1/chat", `{}`, true); w.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for missing message, got %d", w.Code)
	}
}

func TestCrisisMessageFlow(t *testing.T) {
	a := newTestApp(t)
	w := a.do(t, http.MethodPost, "/api/v1/chat", `{"message":"i want to die"}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var res companion.ChatResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Crisis {
		t.Fatalf("crisis flag not set: %+v", res)
	}
}

func TestLogoutDropsSessionButKeepsRecord(t *testing.T) {
	a := newTestApp(t)
	a.llm.answers = []string{"Positive", "nice"}
	a.do(t, http.MethodPost, "/api/v1/chat", `{"message":"good day"}`, true)

	if w := a.do(t, http.MethodPost, "/api/v1/auth/logout", "", true); w.Code != http.StatusNoContent {
		t.Fatalf("logout: want 204, got %d", w.Code)
	}

	// The next authenticated request reloads the persisted record.
	w := a.do(t, http.MethodGet, "/api/v1/chat/history", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("history after logout: want 200, got %d", w.Code)
	}
	var hist struct {
		Messages []userstore.ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Messages) != 2 {
		t.Fatalf("persisted history must survive logout, got %d messages", len(hist.Messages))
	}
}

func TestGratitudeDuplicateConflict(t *testing.T) {
	a := newTestApp(t)
	body := `{"date":"2024-01-15","items":["coffee","sunshine"]}`

	if w := a.do(t, http.MethodPost, "/api/v1/gratitude", body, true); w.Code != http.StatusCreated {
		t.Fatalf("first write: want 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := a.do(t, http.MethodPost, "/api/v1/gratitude", body, true); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: want 409, got %d", w.Code)
	}
	if w := a.do(t, http.MethodPost, "/api/v1/gratitude", `{"date":"2024-01-16","items":["a","b","c","d"]}`, true); w.Code != http.StatusBadRequest {
		t.Fatalf("too many items: want 400, got %d", w.Code)
	}

	w := a.do(t, http.MethodGet, "/api/v1/gratitude", "", true)
	var res struct {
		Days []session.GratitudeDay `json:"days"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Days) != 1 || res.Days[0].Date != "2024-01-15" {
		t.Fatalf("unexpected gratitude list: %+v", res.Days)
	}
}

func TestJournalEndpoints(t *testing.T) {
	a := newTestApp(t)
	a.llm.answers = []string{"Negative"}

	w := a.do(t, http.MethodPost, "/api/v1/journal", `{"text":"rough day at work"}`, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("add: want 201, got %d: %s", w.Code, w.Body.String())
	}
	var entry userstore.JournalEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.ID == "" || entry.Sentiment != "Negative" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	w = a.do(t, http.MethodGet, "/api/v1/journal/search?q=WORK", "", true)
	var res struct {
		Entries []userstore.JournalEntry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("search must match, got %+v", res.Entries)
	}

	w = a.do(t, http.MethodGet, "/api/v1/journal/export", "", true)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "rough day at work") {
		t.Fatalf("export failed: %d %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "journal.txt") {
		t.Fatalf("unexpected disposition: %q", cd)
	}

	if w := a.do(t, http.MethodDelete, "/api/v1/journal/"+entry.ID, "", true); w.Code != http.StatusNoContent {
		t.Fatalf("delete: want 204, got %d", w.Code)
	}
	if w := a.do(t, http.MethodDelete, "/api/v1/journal/"+entry.ID, "", true); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: want 404, got %d", w.Code)
	}
}

func TestChartsNoDataIsNoContent(t *testing.T) {
	a := newTestApp(t)
	if w := a.do(t, http.MethodGet, "/api/v1/analytics/mood.png", "", true); w.Code != http.StatusNoContent {
		t.Fatalf("mood chart: want 204 with no data, got %d", w.Code)
	}
	if w := a.do(t, http.MethodGet, "/api/v1/analytics/emotions.png", "", true); w.Code != http.StatusNoContent {
		t.Fatalf("emotion chart: want 204 with no data, got %d", w.Code)
	}
}

func TestChartsRenderAfterChatting(t *testing.T) {
	a := newTestApp(t)
	a.llm.answers = []string{"Positive", "nice", "Sadness", "sorry to hear"}
	a.do(t, http.MethodPost, "/api/v1/chat", `{"message":"good news"}`, true)
	a.do(t, http.MethodPost, "/api/v1/chat", `{"message":"bad news"}`, true)

	w := a.do(t, http.MethodGet, "/api/v1/analytics/mood.png", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("mood chart: want 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type: %q", ct)
	}
}

func TestHomeAndQuote(t *testing.T) {
	a := newTestApp(t)
	w := a.do(t, http.MethodGet, "/api/v1/home", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("home: want 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Breathe.") || !strings.Contains(body, "alice@example.com") {
		t.Fatalf("home payload incomplete: %s", body)
	}

	w = a.do(t, http.MethodGet, "/api/v1/quote", "", true)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Breathe.") {
		t.Fatalf("quote failed: %d %s", w.Code, w.Body.String())
	}
}

func TestWellnessTools(t *testing.T) {
	a := newTestApp(t)
	w := a.do(t, http.MethodGet, "/api/v1/wellness/tools", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var res struct {
		Tools []WellnessTool `json:"tools"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Tools) != 3 {
		t.Fatalf("want 3 tools, got %d", len(res.Tools))
	}
}

func TestAnalyticsSummaryAndInsight(t *testing.T) {
	a := newTestApp(t)
	a.llm.answers = []string{"Positive", "great", "You are trending upward."}
	a.do(t, http.MethodPost, "/api/v1/chat", `{"message":"good day"}`, true)

	w := a.do(t, http.MethodGet, "/api/v1/analytics/summary", "", true)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"mood_entries":1`) {
		t.Fatalf("summary failed: %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodGet, "/api/v1/analytics/insight", "", true)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "trending upward") {
		t.Fatalf("insight failed: %d %s", w.Code, w.Body.String())
	}
}
