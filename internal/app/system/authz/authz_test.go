package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/campusvoice/internal/app/system/auth"
	"github.com/dalemusser/campusvoice/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	role, _, id, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false without a user")
	}
	if role != "visitor" || id != primitive.NilObjectID {
		t.Errorf("got role=%q id=%v", role, id)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil),
		&auth.SessionUser{ID: "not-an-objectid", Role: "faculty"})
	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected malformed ID to fail closed")
	}
	if authz.IsFaculty(req) {
		t.Error("IsFaculty should be false for malformed ID")
	}
}

func TestUserCtx_Valid(t *testing.T) {
	oid := primitive.NewObjectID()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil),
		&auth.SessionUser{ID: oid.Hex(), Name: "Dr. Rao", Role: "Faculty"})

	role, name, id, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "faculty" || name != "Dr. Rao" || id != oid {
		t.Errorf("got role=%q name=%q id=%v", role, name, id)
	}
	if !authz.IsFaculty(req) || authz.IsStudent(req) {
		t.Error("role helpers disagree with role")
	}
	if !authz.HasAnyRole(req, "student", " FACULTY ") {
		t.Error("HasAnyRole should match case-insensitively")
	}
}
