package auth

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestParseToken_Expired(t *testing.T) {
	m, err := NewManager(Options{Secret: "test-jwt-secret-must-be-32-chars-long"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	issued := time.Now().Add(-48 * time.Hour)
	m.now = func() time.Time { return issued }
	tok, _, err := m.IssueToken("u1")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	m.now = time.Now
	if _, err := m.ParseToken(tok); err != ErrExpiredToken {
		t.Errorf("err = %v, want ErrExpiredToken", err)
	}
}
