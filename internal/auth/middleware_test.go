package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeUserChecker lets each test decide whether the token subject still
// exists in storage.
type fakeUserChecker struct {
	exists bool
	err    error
}

func (f *fakeUserChecker) UserExists(ctx context.Context, userID string) (bool, error) {
	return f.exists, f.err
}

// nextRecorder records whether the wrapped handler ran and what userID it
// saw in the request context.
type nextRecorder struct {
	called bool
	userID string
	hasID  bool
}

func (n *nextRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.called = true
		n.userID, n.hasID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate("user-42")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	next := &nextRecorder{}
	mw := RequireAuth(ts, &fakeUserChecker{exists: true})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	mw(next.handler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !next.called {
		t.Fatal("next handler was not called")
	}
	if !next.hasID || next.userID != "user-42" {
		t.Errorf("context userID = %q (ok=%v), want %q", next.userID, next.hasID, "user-42")
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	ts := newTestTokenService(t)
	next := &nextRecorder{}
	mw := RequireAuth(ts, &fakeUserChecker{exists: true})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rr := httptest.NewRecorder()

	mw(next.handler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if next.called {
		t.Error("next handler should not run without credentials")
	}
	if rr.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("401 response should carry WWW-Authenticate: Bearer")
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("user-42")

	for _, header := range []string{"Bearer", "Bearer ", "Basic " + token, token} {
		next := &nextRecorder{}
		mw := RequireAuth(ts, &fakeUserChecker{exists: true})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()

		mw(next.handler()).ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rr.Code)
		}
		if next.called {
			t.Errorf("header %q: next handler should not run", header)
		}
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	ts := newTestTokenService(t)
	next := &nextRecorder{}
	mw := RequireAuth(ts, &fakeUserChecker{exists: true})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer this.is.garbage")
	rr := httptest.NewRecorder()

	mw(next.handler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestRequireAuth_DeletedSubject(t *testing.T) {
	// A syntactically valid token whose subject no longer exists must be
	// rejected exactly like a forged one.
	ts := newTestTokenService(t)
	token, err := ts.Generate("user-gone")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	next := &nextRecorder{}
	mw := RequireAuth(ts, &fakeUserChecker{exists: false})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	mw(next.handler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if next.called {
		t.Error("next handler should not run for a deleted subject")
	}
}

func TestUserIDFromContext_Anonymous(t *testing.T) {
	if id, ok := UserIDFromContext(context.Background()); ok || id != "" {
		t.Errorf("UserIDFromContext on empty context = (%q, %v), want (\"\", false)", id, ok)
	}
}
