package notifications_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/campusvoice/internal/app/features/notifications"
	"github.com/dalemusser/campusvoice/internal/app/notify"
	notificationstore "github.com/dalemusser/campusvoice/internal/app/store/notifications"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"github.com/dalemusser/campusvoice/internal/testutil"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestListAndMarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := notificationstore.New(db)
	u := testutil.StudentUser()
	for _, st := range []string{models.StatusInProgress, models.StatusResolved} {
		if _, err := store.Create(ctx, models.Notification{UserID: u.ID, NewStatus: st, ComplaintTitle: "Broken AC"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	h := notifications.NewHandler(notify.NewEmitter(store, nil, nil), nil, nil, zap.NewNop())
	router := notifications.Routes(h)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", u))
	rec.AssertStatus(t, http.StatusOK)
	var list []models.Notification
	rec.DecodeJSON(t, &list)
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if got := rec.Header().Get(notifications.UnreadCountHeader); got != "2" {
		t.Errorf("%s = %q, want 2", notifications.UnreadCountHeader, got)
	}

	for i, want := range []int64{2, 0} {
		rec = testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("PATCH", "/read", u))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, "All notifications marked as read")
		var body struct {
			Updated int64 `json:"updated"`
		}
		rec.DecodeJSON(t, &body)
		if body.Updated != want {
			t.Errorf("call %d: updated = %d, want %d", i+1, body.Updated, want)
		}
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", u))
	rec.AssertStatus(t, http.StatusOK)
	if got := rec.Header().Get(notifications.UnreadCountHeader); got != "0" {
		t.Errorf("%s after mark-read = %q, want 0", notifications.UnreadCountHeader, got)
	}
}

func TestRoutes_RequireSignIn(t *testing.T) {
	h := notifications.NewHandler(notify.NewEmitter(nil, nil, nil), nil, nil, zap.NewNop())
	rec := testutil.NewRecorder()
	notifications.Routes(h).ServeHTTP(rec, testutil.NewRequest("GET", "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestStream_DisabledWithoutRedis(t *testing.T) {
	h := notifications.NewHandler(notify.NewEmitter(nil, nil, nil), notify.NewBroker(nil, nil), nil, zap.NewNop())
	rec := testutil.NewRecorder()
	notifications.Routes(h).ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/stream", testutil.StudentUser()))
	rec.AssertStatus(t, http.StatusServiceUnavailable)
}

func TestStream_PushesPublishedNotification(t *testing.T) {
	mr := miniredis.RunT(t)
	broker := notify.NewBroker(redis.NewClient(&redis.Options{Addr: mr.Addr()}), zap.NewNop())
	t.Cleanup(func() { _ = broker.Close() })

	u := testutil.StudentUser()
	h := notifications.NewHandler(notify.NewEmitter(nil, broker, nil), broker, nil, zap.NewNop())
	router := notifications.Routes(h)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, testutil.WithUser(r, u))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The handler subscribes before upgrading, so this publish is delivered.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := broker.Publish(ctx, u.ID, models.Notification{UserID: u.ID, NewStatus: models.StatusResolved, ComplaintTitle: "Broken AC"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"new_status":"resolved"`) {
		t.Errorf("frame = %s", data)
	}
}

func TestStream_OriginPolicy(t *testing.T) {
	mr := miniredis.RunT(t)
	broker := notify.NewBroker(redis.NewClient(&redis.Options{Addr: mr.Addr()}), zap.NewNop())
	t.Cleanup(func() { _ = broker.Close() })

	u := testutil.StudentUser()
	dial := func(t *testing.T, allowed []string, origin func(srvURL string) string) (int, error) {
		t.Helper()
		h := notifications.NewHandler(notify.NewEmitter(nil, broker, nil), broker, allowed, zap.NewNop())
		router := notifications.Routes(h)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			router.ServeHTTP(w, testutil.WithUser(r, u))
		}))
		defer srv.Close()

		hdr := http.Header{}
		hdr.Set("Origin", origin(srv.URL))
		conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/stream", hdr)
		if conn != nil {
			conn.Close()
		}
		if resp == nil {
			return 0, err
		}
		return resp.StatusCode, err
	}
	foreign := func(string) string { return "http://evil.test" }
	same := func(srvURL string) string { return srvURL }

	tests := []struct {
		name    string
		allowed []string
		origin  func(string) string
		wantOK  bool
	}{
		{"same-origin only rejects foreign", nil, foreign, false},
		{"same-origin only accepts same host", nil, same, true},
		{"explicit list rejects unlisted", []string{"https://app.campus.edu"}, foreign, false},
		{"explicit list accepts listed", []string{"http://evil.test"}, foreign, true},
		{"wildcard accepts any", []string{"*"}, foreign, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := dial(t, tt.allowed, tt.origin)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("dial: %v (status %d)", err, code)
				}
				return
			}
			if err == nil {
				t.Fatal("expected the upgrade to be refused")
			}
			if code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", code)
			}
		})
	}
}
