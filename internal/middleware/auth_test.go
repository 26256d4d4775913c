package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kf-pos/dashboard/internal/auth"
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/middleware"
	"github.com/kf-pos/dashboard/internal/model"
)

const testSecret = "test-secret"

func issue(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{Username: "apoteker", Role: role}, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// mockSessions implements middleware.SessionValidator.
type mockSessions struct {
	valid bool
	user  *model.User
	calls int
}

func (m *mockSessions) IsValid() bool            { m.calls++; return m.valid }
func (m *mockSessions) CurrentUser() *model.User { return m.user }

func TestRequireSession_Valid(t *testing.T) {
	sessions := &mockSessions{valid: true, user: &model.User{Username: "bm", Role: enum.UserRoleBusinessManager}}

	handler := middleware.RequireSession(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := middleware.UserFromContext(r.Context())
		if user == nil || user.Username != "bm" {
			t.Fatalf("user in context: %+v", user)
		}
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/dashboard", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
		}
	}
	if sessions.calls != 2 {
		t.Errorf("IsValid called %d times, want once per request", sessions.calls)
	}
}

func TestRequireSession_InvalidRedirectsToLogin(t *testing.T) {
	tests := []struct {
		name     string
		sessions *mockSessions
	}{
		{"expired", &mockSessions{valid: false}},
		{"valid token without user", &mockSessions{valid: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := middleware.RequireSession(tc.sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be called")
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/dashboard", nil))

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["redirect"] != middleware.LoginPath {
				t.Errorf("redirect = %q", body["redirect"])
			}
		})
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := issue(t, enum.UserRoleSuperAdmin)

	handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("expected claims in context")
		}
		if claims.Username != "apoteker" {
			t.Errorf("username: got %q", claims.Username)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired, _ := auth.GenerateToken(testSecret, auth.Claims{Username: "x"}, time.Minute, time.Now().Add(-time.Hour))

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage", "Bearer invalid-token"},
		{"expired", "Bearer " + expired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := middleware.Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be called")
			}))

			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.Authenticate(testSecret)(middleware.RequireRole(enum.UserRoleSuperAdmin)(inner))

	tests := []struct {
		role string
		want int
	}{
		{enum.UserRoleSuperAdmin, http.StatusOK},
		{enum.UserRoleBranchAdmin, http.StatusForbidden},
	}
	for _, tc := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, tc.role))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != tc.want {
			t.Errorf("%s: got %d, want %d", tc.role, rr.Code, tc.want)
		}
	}
}
