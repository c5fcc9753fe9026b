package authapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campusvoice/internal/app/features/authapi"
	"github.com/dalemusser/campusvoice/internal/app/system/auth"
	"github.com/dalemusser/campusvoice/internal/app/system/ratelimit"
	"github.com/dalemusser/campusvoice/internal/testutil"
	"go.uber.org/zap"
)

type tokenBody struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Field string `json:"field"`
		Msg   string `json:"msg"`
	} `json:"errors"`
}

func newHandler(t *testing.T, limiter *ratelimit.LoginLimiter) (*authapi.Handler, *auth.Manager) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	mgr, err := auth.NewManager(auth.Options{Secret: "test-jwt-secret-must-be-32-chars-long"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return authapi.NewHandler(db, mgr, limiter, nil, zap.NewNop()), mgr
}

func register(t *testing.T, h *authapi.Handler, body map[string]string) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	h.HandleRegister(rec, testutil.NewJSONRequest("POST", "/api/auth/register", body))
	return rec
}

func TestRegister_Success(t *testing.T) {
	h, mgr := newHandler(t, nil)

	rec := register(t, h, map[string]string{
		"name": "Asha", "email": "Asha@Campus.edu", "password": "secret1", "role": "student",
	})
	rec.AssertStatus(t, http.StatusOK)

	var got tokenBody
	rec.DecodeJSON(t, &got)
	if got.User.Email != "asha@campus.edu" {
		t.Errorf("email = %q, want normalized", got.User.Email)
	}
	if got.User.Role != "student" {
		t.Errorf("role = %q", got.User.Role)
	}
	claims, err := mgr.ParseToken(got.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.UserID() != got.User.ID {
		t.Errorf("token subject %q != user id %q", claims.UserID(), got.User.ID)
	}
	if ttl := time.Until(claims.ExpiresAt.Time); ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Errorf("token ttl = %v, want ~24h", ttl)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	h, _ := newHandler(t, nil)
	body := map[string]string{"name": "Asha", "email": "asha@campus.edu", "password": "secret1", "role": "student"}

	register(t, h, body).AssertStatus(t, http.StatusOK)

	body["email"] = "ASHA@campus.edu"
	rec := register(t, h, body)
	rec.AssertStatus(t, http.StatusBadRequest)
	var got errorBody
	rec.DecodeJSON(t, &got)
	if got.Message != "User already exists" {
		t.Errorf("message = %q", got.Message)
	}
}

func TestRegister_Validation(t *testing.T) {
	h, _ := newHandler(t, nil)

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing name", map[string]string{"email": "a@b.edu", "password": "secret1", "role": "student"}, "name"},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "secret1", "role": "student"}, "email"},
		{"short password", map[string]string{"name": "A", "email": "a@b.edu", "password": "12345", "role": "student"}, "password"},
		{"bad role", map[string]string{"name": "A", "email": "a@b.edu", "password": "secret1", "role": "admin"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := register(t, h, tt.body)
			rec.AssertStatus(t, http.StatusBadRequest)
			var got errorBody
			rec.DecodeJSON(t, &got)
			found := false
			for _, e := range got.Errors {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field error for %q, got %+v", tt.field, got.Errors)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	h, _ := newHandler(t, nil)
	register(t, h, map[string]string{
		"name": "Prof", "email": "prof@campus.edu", "password": "secret1", "role": "faculty",
	}).AssertStatus(t, http.StatusOK)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantMsg    string
	}{
		{"success", map[string]string{"email": "PROF@campus.edu", "password": "secret1"}, http.StatusOK, ""},
		{"wrong password", map[string]string{"email": "prof@campus.edu", "password": "nope123"}, http.StatusBadRequest, "Invalid credentials"},
		{"unknown user", map[string]string{"email": "ghost@campus.edu", "password": "secret1"}, http.StatusBadRequest, "Invalid credentials"},
		{"missing password", map[string]string{"email": "prof@campus.edu"}, http.StatusBadRequest, "Invalid login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleLogin(rec, testutil.NewJSONRequest("POST", "/api/auth/login", tt.body))
			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantMsg != "" {
				var got errorBody
				rec.DecodeJSON(t, &got)
				if got.Message != tt.wantMsg {
					t.Errorf("message = %q, want %q", got.Message, tt.wantMsg)
				}
				return
			}
			var got tokenBody
			rec.DecodeJSON(t, &got)
			if got.Token == "" || got.User.Role != "faculty" {
				t.Errorf("unexpected body %+v", got)
			}
		})
	}
}

func TestLogin_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLoginLimiter(2, time.Minute)
	defer limiter.Stop()
	h, _ := newHandler(t, limiter)

	body := map[string]string{"email": "ghost@campus.edu", "password": "whatever"}

	rec := testutil.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest("POST", "/api/auth/login", body))
	rec.AssertStatus(t, http.StatusBadRequest)

	// The per-email allowance is half the per-IP one, so the second attempt
	// for the same address is throttled.
	rec = testutil.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest("POST", "/api/auth/login", body))
	rec.AssertStatus(t, http.StatusTooManyRequests)
}

func TestServeUser(t *testing.T) {
	h, _ := newHandler(t, nil)

	rec := testutil.NewRecorder()
	h.ServeUser(rec, testutil.NewRequest("GET", "/api/auth/user"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	u := testutil.StudentUser()
	rec = testutil.NewRecorder()
	h.ServeUser(rec, testutil.NewAuthenticatedRequest("GET", "/api/auth/user", u))
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		User struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	rec.DecodeJSON(t, &got)
	if got.User.ID != u.ID || got.User.Role != "student" {
		t.Errorf("got %+v", got)
	}
}
