package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/campusvoice/internal/app/store/audit"
	"github.com/dalemusser/campusvoice/internal/app/system/auditlog"
	"github.com/dalemusser/campusvoice/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("POST", "/api/auth/login", nil)

	// all no-ops
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "a@campus.edu")
	logger.ComplaintStatusChanged(ctx, req, primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), "pending", "resolved")
}

func TestLogger_LogOnly_WritesZapNotDB(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "log", Admin: "log"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	logger.LoginFailedRateLimit(ctx, req, "a@campus.edu")

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != audit.EventLoginFailedRateLimit {
		t.Errorf("event_type = %v", fields["event_type"])
	}
	if fields["ip"] != "203.0.113.5" {
		t.Errorf("ip = %v", fields["ip"])
	}
	if fields["request_id"] == "" {
		t.Error("expected request_id to be set")
	}
}

func TestLogger_Off(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "off", Admin: "off"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.UserRegistered(ctx, httptest.NewRequest("POST", "/", nil), primitive.NewObjectID(), "student")
	if logs.Len() != 0 {
		t.Errorf("expected no log entries, got %d", logs.Len())
	}
}

func TestLogger_DB_StatusChange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	complaintID := primitive.NewObjectID()
	logger.ComplaintStatusChanged(ctx, httptest.NewRequest("PATCH", "/", nil),
		primitive.NewObjectID(), complaintID, primitive.NewObjectID(), "pending", "in-progress")

	events, err := store.GetByComplaint(ctx, complaintID, 10)
	if err != nil {
		t.Fatalf("GetByComplaint failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Details["previous_status"] != "pending" || events[0].Details["new_status"] != "in-progress" {
		t.Errorf("details = %v", events[0].Details)
	}
}
