package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginRoundTrip(t *testing.T) {
	s := NewSessions("test-secret")

	rec := httptest.NewRecorder()
	if err := s.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "u-1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	id, ok := s.CurrentUserID(req)
	if !ok || id != "u-1" {
		t.Fatalf("CurrentUserID = %q, %v", id, ok)
	}
}

func TestCookieFromOtherSecretIsRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSessions("one").Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "u-1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	if _, ok := NewSessions("two").CurrentUserID(req); ok {
		t.Fatal("cookie signed with another secret must not authenticate")
	}
}

type fixed string

func (f fixed) CurrentUserID(*http.Request) (string, bool) { return string(f), f != "" }

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware(fixed("u-7"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if seen != "u-7" {
		t.Fatalf("handler saw user %q", seen)
	}

	rec := httptest.NewRecorder()
	Middleware(fixed(""))(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
