package apperr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"go.uber.org/zap"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *apperr.Error
		want int
	}{
		{"validation", apperr.Validation("bad"), http.StatusBadRequest},
		{"conflict", apperr.Conflict("dup"), http.StatusBadRequest},
		{"not found", apperr.NotFound("missing"), http.StatusNotFound},
		{"forbidden", apperr.Forbidden("no"), http.StatusForbidden},
		{"unauthorized", apperr.Unauthorized("who"), http.StatusUnauthorized},
		{"rate limited", apperr.RateLimited("slow"), http.StatusTooManyRequests},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("vote: %w", apperr.Conflict("You have already voted on this complaint"))
	if got := apperr.KindOf(err); got != apperr.KindConflict {
		t.Errorf("KindOf() = %v, want conflict", got)
	}
	if !apperr.Is(err, apperr.KindConflict) {
		t.Error("Is(conflict) = false, want true")
	}
	if apperr.KindOf(errors.New("plain")) != apperr.KindInternal {
		t.Error("plain errors should classify as internal")
	}
}

func TestWrite_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/complaints", nil)

	apperr.Write(rec, req, zap.NewNop(), apperr.Validation("Invalid input",
		apperr.FieldError{Field: "title", Msg: "Title is required"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var got struct {
		Message string `json:"message"`
		Errors  []struct {
			Field string `json:"field"`
			Msg   string `json:"msg"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Message != "Invalid input" {
		t.Errorf("message = %q", got.Message)
	}
	if len(got.Errors) != 1 || got.Errors[0].Field != "title" {
		t.Errorf("errors = %+v", got.Errors)
	}
}

func TestWrite_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/complaints", nil)

	apperr.Write(rec, req, zap.NewNop(), errors.New("connection refused: mongo-0:27017"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["message"] != "Server error" {
		t.Errorf("message = %v, want generic", got["message"])
	}
}
