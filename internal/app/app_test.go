package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lingo-client/internal/config"
	"lingo-client/internal/models"
	"lingo-client/internal/session"
	"lingo-client/internal/storage"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL:       baseURL,
			PublicBaseURL: baseURL,
			Locale:        "en",
			AuthTimeout:   2 * time.Second,
			PublicTimeout: 2 * time.Second,
		},
		Server: config.ServerConfig{LoginPath: "/auth-login", HomePath: "/pages/home"},
	}
}

func validToken(t *testing.T) string {
	t.Helper()
	claims := session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           4,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestUnauthorizedResponseEndsSession(t *testing.T) {
	token := validToken(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/sign-in":
			w.Write([]byte(`{"accessToken":"` + token + `"}`))
		case "/api/grammar/levels":
			if r.Header.Get("Authorization") != "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`[{"id":1,"level":"beginner"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	mem := storage.NewMemory()
	a, err := New(testConfig(srv.URL), WithStorage(mem))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer a.Close()

	if err := a.Session.SignIn(context.Background(), a.Gateway.Auth(), models.SignInRequest{Email: "a@b.c"}); err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}
	a.Navigator.Visit("/pages/grammar")

	out := a.Grammar.LoadLevels(context.Background())
	if out.Degraded() || len(a.Grammar.Levels()) != 1 {
		t.Fatalf("public tier should have served levels, got %v", a.Grammar.Levels())
	}
	if a.Session.IsAuthenticated() {
		t.Error("401 must end the session")
	}
	if _, ok := mem.Get(storage.KeyAccessToken); ok {
		t.Error("401 must clear the stored token")
	}
	if loc, ok := a.Navigator.TakePending(); !ok || loc != "/auth-login" {
		t.Errorf("pending redirect = %q, %v", loc, ok)
	}
}

func TestLocaleIsStored(t *testing.T) {
	var lang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang = r.Header.Get("Accept-Language")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	a, err := New(testConfig(srv.URL), WithStorage(storage.NewMemory()))
	if err != nil {
		t.Fatal(err)
	}
	if a.Locale() != "en" {
		t.Errorf("Locale() = %q", a.Locale())
	}
	if err := a.SetLocale("uz"); err != nil {
		t.Fatal(err)
	}
	a.Vocabulary.LoadCategories(context.Background())
	if lang != "uz" {
		t.Errorf("Accept-Language = %q, want uz", lang)
	}
}
