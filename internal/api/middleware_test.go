package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roombooking/pkg/token"
)

const testSecret = "test_secret"

func okHandler(t *testing.T, wantID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id == nil {
			t.Fatalf("identity missing from context")
		}
		if wantID != "" && id.ID != wantID {
			t.Fatalf("identity id: got %q, want %q", id.ID, wantID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	s, err := token.Sign(token.Identity{ID: "u-1", Role: token.RoleUser}, testSecret, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+s)

	RequireAuth(testSecret)(okHandler(t, "u-1")).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
}

func TestRequireAuth_MissingOrBadToken(t *testing.T) {
	mw := RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	for _, header := range []string{"", "Bearer not-a-jwt", "Basic abc"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		mw.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: got %d, want 401", header, rr.Code)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), &token.Identity{ID: "u-1", Role: token.RoleUser}))
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("user role: got %d, want 403", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), &token.Identity{ID: "a-1", Role: token.RoleAdmin}))
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin role: got %d, want 200", rr.Code)
	}
}
