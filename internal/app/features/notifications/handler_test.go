package notifications_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	featurenotifications "github.com/eventops/crewhub/internal/app/features/notifications"
	notificationstore "github.com/eventops/crewhub/internal/app/store/notifications"
	"github.com/eventops/crewhub/internal/app/system/auth"
	"github.com/eventops/crewhub/internal/domain/models"
	"github.com/eventops/crewhub/internal/testutil"
)

type testEnv struct {
	router chi.Router
	store  *notificationstore.Store
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "crewhub_session", "", false, log)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	st := notificationstore.New(db)
	h := featurenotifications.NewHandler(st, log)
	return &testEnv{
		router: featurenotifications.Routes(h, sm),
		store:  st,
	}
}

func (env *testEnv) do(t *testing.T, user testutil.TestUser, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.WithUser(httptest.NewRequest(method, path, nil), user)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("parse envelope: %v (body %s)", err, rec.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("request failed: %s", envelope.Error)
	}
	if into != nil {
		if err := json.Unmarshal(envelope.Data, into); err != nil {
			t.Fatalf("parse data: %v", err)
		}
	}
}

var recordSeq int

// record persists a notification with a strictly increasing timestamp
// so feed ordering is deterministic.
func (env *testEnv) record(t *testing.T, recipient primitive.ObjectID, subject string) models.Notification {
	t.Helper()
	recordSeq++
	n, err := env.store.Record(context.Background(), models.Notification{
		RecipientID: recipient,
		Kind:        models.NotifyShiftReminder,
		Subject:     subject,
		Body:        "body for " + subject,
		CreatedAt:   time.Now().UTC().Add(time.Duration(recordSeq) * time.Second),
	})
	if err != nil {
		t.Fatalf("record notification: %v", err)
	}
	return n
}

func TestFeed(t *testing.T) {
	env := setup(t)
	me := testutil.StaffUser(primitive.NewObjectID())
	myID, _ := primitive.ObjectIDFromHex(me.ID)
	other := primitive.NewObjectID()

	env.record(t, myID, "first")
	target := env.record(t, myID, "second")
	env.record(t, other, "not mine")

	rec := env.do(t, me, "GET", "/")
	var list []struct {
		ID      string `json:"id"`
		Subject string `json:"subject"`
		Read    bool   `json:"read"`
	}
	decodeData(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("feed: got %d notifications, want 2", len(list))
	}
	if list[0].Subject != "second" {
		t.Errorf("feed order: got %q first, want newest", list[0].Subject)
	}

	var count struct {
		Unread int64 `json:"unread"`
	}
	decodeData(t, env.do(t, me, "GET", "/unread-count"), &count)
	if count.Unread != 2 {
		t.Errorf("unread count: got %d, want 2", count.Unread)
	}

	if rec := env.do(t, me, "PATCH", "/"+target.ID.Hex()+"/read"); rec.Code != http.StatusOK {
		t.Fatalf("mark read status: got %d", rec.Code)
	}
	decodeData(t, env.do(t, me, "GET", "/unread-count"), &count)
	if count.Unread != 1 {
		t.Errorf("unread after mark: got %d, want 1", count.Unread)
	}

	// ?unread=true drops the read one.
	decodeData(t, env.do(t, me, "GET", "/?unread=true"), &list)
	if len(list) != 1 || list[0].Subject != "first" {
		t.Errorf("unread filter: got %+v", list)
	}
}

func TestMarkRead_ScopedToRecipient(t *testing.T) {
	env := setup(t)
	me := testutil.StaffUser(primitive.NewObjectID())
	myID, _ := primitive.ObjectIDFromHex(me.ID)

	n := env.record(t, myID, "mine")

	intruder := testutil.StaffUser(primitive.NewObjectID())
	if rec := env.do(t, intruder, "PATCH", "/"+n.ID.Hex()+"/read"); rec.Code != http.StatusNotFound {
		t.Errorf("cross-user mark read: got %d, want 404", rec.Code)
	}

	// Marking an already-read notification stays a no-op.
	if rec := env.do(t, me, "PATCH", "/"+n.ID.Hex()+"/read"); rec.Code != http.StatusOK {
		t.Fatalf("mark read: got %d", rec.Code)
	}
	if rec := env.do(t, me, "PATCH", "/"+n.ID.Hex()+"/read"); rec.Code != http.StatusOK {
		t.Errorf("second mark read: got %d, want 200", rec.Code)
	}
}

func TestMarkAllRead(t *testing.T) {
	env := setup(t)
	me := testutil.StaffUser(primitive.NewObjectID())
	myID, _ := primitive.ObjectIDFromHex(me.ID)

	for _, s := range []string{"a", "b", "c"} {
		env.record(t, myID, s)
	}

	var marked struct {
		Marked int64 `json:"marked"`
	}
	decodeData(t, env.do(t, me, "POST", "/read-all"), &marked)
	if marked.Marked != 3 {
		t.Errorf("marked: got %d, want 3", marked.Marked)
	}

	var count struct {
		Unread int64 `json:"unread"`
	}
	decodeData(t, env.do(t, me, "GET", "/unread-count"), &count)
	if count.Unread != 0 {
		t.Errorf("unread after read-all: got %d, want 0", count.Unread)
	}
}

func TestDedupeKeyUpserts(t *testing.T) {
	env := setup(t)
	me := testutil.StaffUser(primitive.NewObjectID())
	myID, _ := primitive.ObjectIDFromHex(me.ID)

	n := models.Notification{
		RecipientID: myID,
		Kind:        models.NotifyShiftReminder,
		Subject:     "reminder",
		Body:        "shift starts soon",
		DedupeKey:   "reminder:abc",
	}
	if _, err := env.store.Record(context.Background(), n); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := env.store.Record(context.Background(), n); err != nil {
		t.Fatalf("second record: %v", err)
	}

	rec := env.do(t, me, "GET", "/")
	var list []struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("dedupe: got %d notifications, want 1", len(list))
	}
}
