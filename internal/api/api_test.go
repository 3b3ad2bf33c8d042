package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/starford/learnclj/internal/courseservice"
	"github.com/starford/learnclj/internal/render"
	"github.com/starford/learnclj/internal/segment"
	"github.com/starford/learnclj/internal/testutil"
)

// testEnv sets up a temp course, SQLite DB, service, and router for testing.
// A non-empty authToken switches the admin routes to token mode.
func testEnv(t *testing.T, files map[string]string, authToken string) (*courseservice.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, files, authToken, nil, nil)
}

func testEnvWithSSE(t *testing.T, files map[string]string, authToken string, sseHandler http.Handler, notify func(kind, path string)) (*courseservice.Service, http.Handler) {
	t.Helper()
	if files == nil {
		files = testutil.SampleCourse()
	}
	root := testutil.WriteCourse(t, files)
	seg := segment.New(render.NewMarkdown(), segment.WithLogger(testutil.Logger()))
	svc := courseservice.NewService(testutil.Loader(t, root), seg, testutil.TestDB(t), testutil.Logger())
	router := NewRouter(svc, authToken != "", authToken, sseHandler, notify)
	return svc, router
}

func do(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTreeEndpoint(t *testing.T) {
	_, router := testEnv(t, nil, "")
	w := do(router, http.MethodGet, "/tree", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp TreeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Chapters) != 2 || resp.Chapters[0].ID != "intro" || resp.Chapters[1].ID != "data" {
		t.Errorf("chapters = %+v", resp.Chapters)
	}
}

func TestPageEndpoint(t *testing.T) {
	_, router := testEnv(t, nil, "")

	w := do(router, http.MethodGet, "/pages/intro/repl", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var raw struct {
		Title    string            `json:"title"`
		Segments []json.RawMessage `json:"segments"`
		Prev     *struct {
			URL string `json:"url"`
		} `json:"prev"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw.Title != "The REPL" || len(raw.Segments) != 3 {
		t.Fatalf("page = %+v", raw)
	}
	var code struct {
		Code struct {
			Lang      string `json:"lang"`
			Content   string `json:"content"`
			Evaluable bool   `json:"evaluable"`
		} `json:"code"`
	}
	if err := json.Unmarshal(raw.Segments[1], &code); err != nil {
		t.Fatal(err)
	}
	if code.Code.Lang != "clojure" || code.Code.Evaluable || code.Code.Content != "(System/exit 0)" {
		t.Errorf("code segment = %s", raw.Segments[1])
	}
	if raw.Prev == nil || raw.Prev.URL != "/intro" {
		t.Errorf("prev = %+v", raw.Prev)
	}

	w = do(router, http.MethodGet, "/pages/intro", "")
	if w.Code != http.StatusOK {
		t.Errorf("chapter index status = %d", w.Code)
	}
}

func TestPageEndpoint_NotFound(t *testing.T) {
	_, router := testEnv(t, nil, "")
	for _, target := range []string{"/pages/intro/missing", "/pages/missing"} {
		w := do(router, http.MethodGet, target, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", target, w.Code)
		}
	}
}

func TestPageEndpoint_MalformedHeader(t *testing.T) {
	files := testutil.SampleCourse()
	files["intro/broken.md"] = "---\ntitle: Broken\n---\nbody"
	_, router := testEnv(t, files, "")
	w := do(router, http.MethodGet, "/pages/intro/broken", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	var body errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error == "" {
		t.Error("expected error message")
	}
}

func TestSearchEndpoint(t *testing.T) {
	svc, router := testEnv(t, nil, "")
	if _, err := svc.Reindex(context.Background()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	w := do(router, http.MethodGet, "/search?q=Vectors", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].URL != "/data" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, nil, "")
	w := do(router, http.MethodGet, "/search", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestReindex_NotifiesChanges(t *testing.T) {
	var mu sync.Mutex
	var events []string
	_, router := testEnvWithSSE(t, nil, "", nil, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	w := do(router, http.MethodPost, "/admin/reindex", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ReindexResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Indexed != 3 {
		t.Errorf("indexed = %d, want 3", resp.Indexed)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(events) != 3 {
		t.Errorf("events = %v", events)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, nil, "secret123")
	w := do(router, http.MethodPost, "/admin/reindex", "secret123")
	if w.Code != http.StatusOK {
		t.Errorf("authed reindex = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, nil, "secret123")
	w := do(router, http.MethodPost, "/admin/reindex", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, nil, "secret123")
	w := do(router, http.MethodPost, "/admin/reindex", "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_ReadRoutesPublic(t *testing.T) {
	_, router := testEnv(t, nil, "secret123")
	w := do(router, http.MethodGet, "/tree", "")
	if w.Code != http.StatusOK {
		t.Errorf("tree without token = %d, want 200", w.Code)
	}
}

func TestEventsMounted(t *testing.T) {
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	_, router := testEnvWithSSE(t, nil, "", sseHandler, nil)
	w := do(router, http.MethodGet, "/events", "")
	if w.Code != http.StatusOK {
		t.Errorf("events = %d, want 200", w.Code)
	}

	_, router = testEnv(t, nil, "")
	w = do(router, http.MethodGet, "/events", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("events without handler = %d, want 404", w.Code)
	}
}
