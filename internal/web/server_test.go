package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lingo-client/internal/app"
	"lingo-client/internal/config"
	"lingo-client/internal/quiz"
	"lingo-client/internal/session"
	"lingo-client/internal/storage"
)

func signedToken(t *testing.T) string {
	t.Helper()
	claims := session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           7,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// backend fakes the remote API. When revoked is set, every authenticated
// request is answered with 401.
type backend struct {
	*httptest.Server
	revoked   atomic.Bool
	submitted atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	token := signedToken(t)
	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.revoked.Load() && r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/auth/sign-in":
			w.Write([]byte(`{"accessToken":"` + token + `"}`))
		case "/api/user/profile":
			w.Write([]byte(`{"fullName":"Ada Learner","langLevel":"beginner"}`))
		case "/api/grammar/levels":
			w.Write([]byte(`[{"id":1,"level":"beginner"}]`))
		case "/api/grammar/lessons":
			w.Write([]byte(`[{"id":10,"title":"To be","levels":{"id":1}},{"id":11,"title":"Articles","levels":{"id":1}}]`))
		case "/api/grammar/my-lessons":
			w.Write([]byte(`[{"id":10,"title":"To be","levels":{"id":1},"ended":true}]`))
		case "/api/vocabulary/words":
			if r.URL.Query().Get("groupId") == "3" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`[{"id":1,"word":"apple"},{"id":2,"word":"bread"}]`))
		case "/api/quiz/grammar":
			w.Write([]byte(`[{"id":5,"question":"I ___ a student","type":"multiple_choice","correctAnswers":["am"],"otherAnswers":["is","are"]}]`))
		case "/api/quiz/grammar/answer":
			b.submitted.Add(1)
			w.Write([]byte(`{"topicId":3,"correctCount":1,"gainedScore":10}`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	t.Cleanup(b.Close)
	return b
}

func newTestServer(t *testing.T, b *backend) (*Server, *app.App) {
	t.Helper()
	cfg := &config.Config{
		API: config.APIConfig{
			BaseURL:       b.URL,
			PublicBaseURL: b.URL,
			Locale:        "en",
			AuthTimeout:   2 * time.Second,
			PublicTimeout: 2 * time.Second,
		},
		Server: config.ServerConfig{LoginPath: "/auth-login", HomePath: "/pages/home"},
		Media:  config.MediaConfig{Dir: t.TempDir()},
	}
	a, err := app.New(cfg, app.WithStorage(storage.NewMemory()), app.WithQuizOptions(quiz.WithSeed(1)))
	if err != nil {
		t.Fatalf("app.New() failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return NewServer(a), a
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %v (%s)", err, rr.Body.String())
	}
	return out
}

func signIn(t *testing.T, s *Server, next string) map[string]any {
	t.Helper()
	target := "/auth-login"
	if next != "" {
		target += "?next=" + next
	}
	rr := do(t, s, http.MethodPost, target, `{"email":"ada@example.com","password":"pw"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("sign-in: expected status %d, got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}
	return decode(t, rr)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, newBackend(t))
	rr := do(t, s, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestProtectedPageRedirectsToSignIn(t *testing.T) {
	s, _ := newTestServer(t, newBackend(t))

	rr := do(t, s, http.MethodGet, "/pages/grammar", "")
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/auth-login?next=%2Fpages%2Fgrammar" {
		t.Errorf("Location = %q", loc)
	}

	if rr := do(t, s, http.MethodGet, "/", ""); rr.Code != http.StatusOK {
		t.Errorf("main page: expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestSignInReturnsToRequestedPage(t *testing.T) {
	s, a := newTestServer(t, newBackend(t))

	out := signIn(t, s, "%2Fpages%2Fgrammar")
	if out["redirect"] != "/pages/grammar" {
		t.Errorf("redirect = %v", out["redirect"])
	}
	if !a.Session.IsAuthenticated() || a.Session.UserID() != 7 {
		t.Fatalf("session not established: %v %d", a.Session.State(), a.Session.UserID())
	}
	if a.Session.User().FullName != "Ada Learner" {
		t.Errorf("profile not loaded: %+v", a.Session.User())
	}
	if len(a.Session.StudyHistory()) != 1 {
		t.Errorf("sign-in should count as a study day, history = %v", a.Session.StudyHistory())
	}

	rr := do(t, s, http.MethodGet, "/auth-login", "")
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/pages/home" {
		t.Errorf("signed-in user on login page: %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestSignInIgnoresForeignNext(t *testing.T) {
	s, _ := newTestServer(t, newBackend(t))
	out := signIn(t, s, "%2F%2Fevil.example.com")
	if out["redirect"] != "/pages/home" {
		t.Errorf("redirect = %v, want /pages/home", out["redirect"])
	}
}

func TestGrammarPages(t *testing.T) {
	s, _ := newTestServer(t, newBackend(t))
	signIn(t, s, "")

	rr := do(t, s, http.MethodGet, "/pages/grammar", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}
	out := decode(t, rr)
	if out["completedLessons"] != float64(1) {
		t.Errorf("completedLessons = %v", out["completedLessons"])
	}

	rr = do(t, s, http.MethodGet, "/pages/grammar/levels/1", "")
	out = decode(t, rr)
	if out["progress"] != float64(50) {
		t.Errorf("level progress = %v, want 50", out["progress"])
	}

	if rr := do(t, s, http.MethodGet, "/pages/grammar/levels/abc", ""); rr.Code != http.StatusNotFound {
		t.Errorf("non-numeric level: expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestQuizFlow(t *testing.T) {
	b := newBackend(t)
	s, _ := newTestServer(t, b)
	signIn(t, s, "")

	rr := do(t, s, http.MethodPost, "/pages/quiz/submit", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty quiz submit: expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}

	rr = do(t, s, http.MethodPost, "/pages/quiz/start", `{"kind":"grammar","id":3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("start: expected status %d, got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}
	state := decode(t, rr)
	if state["total"] != float64(1) || state["canSubmit"] != false {
		t.Errorf("unexpected state after start: %v", state)
	}

	do(t, s, http.MethodPost, "/pages/quiz/answer", `{"answer":"am"}`)
	rr = do(t, s, http.MethodPost, "/pages/quiz/submit", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("submit: expected status %d, got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}
	out := decode(t, rr)
	if out["score"] != float64(100) {
		t.Errorf("score = %v, want 100", out["score"])
	}
	if b.submitted.Load() != 1 {
		t.Errorf("expected one submission, got %d", b.submitted.Load())
	}
}

func TestVocabularyLearnedNeedsWords(t *testing.T) {
	s, a := newTestServer(t, newBackend(t))
	signIn(t, s, "")

	rr := do(t, s, http.MethodPost, "/pages/vocabulary/3/learned", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusServiceUnavailable, rr.Code, rr.Body.String())
	}
	if sets := a.Session.Progress().Vocabulary.CompletedSets; len(sets) != 0 {
		t.Fatalf("a set without words must not be recorded, got %v", sets)
	}

	rr = do(t, s, http.MethodPost, "/pages/vocabulary/4/learned", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}
	if out := decode(t, rr); out["recorded"] != true {
		t.Errorf("recorded = %v, want true", out["recorded"])
	}
	p := a.Session.Progress().Vocabulary
	if len(p.CompletedSets) != 1 || p.CompletedSets[0] != 4 || p.TotalWordsLearned != 2 {
		t.Errorf("unexpected vocabulary progress: %+v", p)
	}
}

func TestRevokedTokenRedirectsOnNextNavigation(t *testing.T) {
	b := newBackend(t)
	s, a := newTestServer(t, b)
	signIn(t, s, "")

	b.revoked.Store(true)
	rr := do(t, s, http.MethodGet, "/pages/grammar", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("public tier should still serve the page, got %d", rr.Code)
	}
	if a.Session.IsAuthenticated() {
		t.Fatal("401 must end the session")
	}

	rr = do(t, s, http.MethodGet, "/pages/vocabulary", "")
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/auth-login" {
		t.Errorf("expected forced redirect to /auth-login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestUnknownPage(t *testing.T) {
	s, _ := newTestServer(t, newBackend(t))
	signIn(t, s, "")

	rr := do(t, s, http.MethodGet, "/pages/nowhere", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestSignOut(t *testing.T) {
	s, a := newTestServer(t, newBackend(t))
	signIn(t, s, "")

	rr := do(t, s, http.MethodPost, "/auth-logout", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if a.Session.IsAuthenticated() || a.Session.HasStoredToken() {
		t.Error("sign-out must clear the session and the stored token")
	}
}
