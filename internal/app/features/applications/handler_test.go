package applications_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	featureapps "github.com/eventops/crewhub/internal/app/features/applications"
	appstore "github.com/eventops/crewhub/internal/app/store/applications"
	eventstore "github.com/eventops/crewhub/internal/app/store/events"
	staffstore "github.com/eventops/crewhub/internal/app/store/staff"
	"github.com/eventops/crewhub/internal/app/system/auth"
	"github.com/eventops/crewhub/internal/testutil"
)

type testEnv struct {
	router chi.Router
	apps   *appstore.Store
	events *eventstore.Store
	fx     *testutil.Fixtures
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "crewhub_session", "", false, log)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	ap := appstore.New(db)
	ev := eventstore.New(db)
	h := featureapps.NewHandler(ap, ev, staffstore.New(db), nil, nil, log)

	return &testEnv{
		router: featureapps.Routes(h, sm),
		apps:   ap,
		events: ev,
		fx:     testutil.NewFixtures(t, db),
	}
}

func (env *testEnv) do(t *testing.T, user testutil.TestUser, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req = testutil.WithUser(req, user)
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

func TestApplyAndAccept(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Festival", start, map[string]int{"Security": 1})
	p := env.fx.CreateStaffProfile(ctx, "Sam", "Security")
	me := testutil.StaffUser(p.ID)

	body := fmt.Sprintf(`{"event_id":%q,"role":"Security","note":"I know the venue"}`, ev.ID.Hex())
	rec := env.do(t, me, "POST", "/", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var app struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, rec, &app)
	if app.Status != "pending" {
		t.Errorf("status: got %q, want pending", app.Status)
	}

	// A duplicate application for the same event and role is refused.
	if rec := env.do(t, me, "POST", "/", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate apply status: got %d, want 409", rec.Code)
	}

	rec = env.do(t, testutil.SupervisorUser(), "PATCH", "/"+app.ID, `{"status":"accepted"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept status: got %d, body %s", rec.Code, rec.Body.String())
	}

	loaded, err := env.events.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("load event: %v", err)
	}
	if loaded.Filled["Security"] != 1 {
		t.Errorf("acceptance did not book the applicant: filled %d", loaded.Filled["Security"])
	}
	if !loaded.HasAssignment(p.ID) {
		t.Error("no assignment recorded for the applicant")
	}

	// Deciding twice is a conflict.
	rec = env.do(t, testutil.SupervisorUser(), "PATCH", "/"+app.ID, `{"status":"declined"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("second decision status: got %d, want 409", rec.Code)
	}
}

func TestAccept_BlockedByFullQuota(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Tiny Event", start, map[string]int{"Security": 1})
	first := env.fx.CreateStaffProfile(ctx, "First", "Security")
	second := env.fx.CreateStaffProfile(ctx, "Second", "Security")

	apply := func(profileID string, user testutil.TestUser) string {
		body := fmt.Sprintf(`{"event_id":%q,"role":"Security"}`, ev.ID.Hex())
		rec := env.do(t, user, "POST", "/", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("apply for %s: got %d", profileID, rec.Code)
		}
		var app struct {
			ID string `json:"id"`
		}
		decodeData(t, rec, &app)
		return app.ID
	}
	firstApp := apply(first.ID.Hex(), testutil.StaffUser(first.ID))
	secondApp := apply(second.ID.Hex(), testutil.StaffUser(second.ID))

	sup := testutil.SupervisorUser()
	if rec := env.do(t, sup, "PATCH", "/"+firstApp, `{"status":"accepted"}`); rec.Code != http.StatusOK {
		t.Fatalf("first accept: got %d", rec.Code)
	}
	rec := env.do(t, sup, "PATCH", "/"+secondApp, `{"status":"accepted"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("accept over quota: got %d, want 409", rec.Code)
	}

	// The blocked application stays pending and can still be declined.
	rec = env.do(t, sup, "PATCH", "/"+secondApp, `{"status":"declined"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("decline after blocked accept: got %d, want 200", rec.Code)
	}
}

func TestApply_Validation(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Festival", start, map[string]int{"Security": 1})
	p := env.fx.CreateStaffProfile(ctx, "Sam", "Security")
	me := testutil.StaffUser(p.ID)

	body := fmt.Sprintf(`{"event_id":%q,"role":"Juggler"}`, ev.ID.Hex())
	if rec := env.do(t, me, "POST", "/", body); rec.Code != http.StatusBadRequest {
		t.Errorf("unwanted role status: got %d, want 400", rec.Code)
	}

	// Only staff can apply.
	body = fmt.Sprintf(`{"event_id":%q,"role":"Security"}`, ev.ID.Hex())
	if rec := env.do(t, testutil.ClientUser(), "POST", "/", body); rec.Code != http.StatusForbidden {
		t.Errorf("client apply status: got %d, want 403", rec.Code)
	}
}

func TestList_StaffSeesOwn(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Festival", start, map[string]int{"Security": 2})
	mine := env.fx.CreateStaffProfile(ctx, "Mine", "Security")
	other := env.fx.CreateStaffProfile(ctx, "Other", "Security")

	body := fmt.Sprintf(`{"event_id":%q,"role":"Security"}`, ev.ID.Hex())
	env.do(t, testutil.StaffUser(mine.ID), "POST", "/", body)
	env.do(t, testutil.StaffUser(other.ID), "POST", "/", body)

	rec := env.do(t, testutil.StaffUser(mine.ID), "GET", "/", "")
	var list []struct {
		StaffID string `json:"staff_id"`
	}
	decodeData(t, rec, &list)
	if len(list) != 1 || list[0].StaffID != mine.ID.Hex() {
		t.Errorf("staff list: got %+v, want only own application", list)
	}

	rec = env.do(t, testutil.SupervisorUser(), "GET", "/?event_id="+ev.ID.Hex(), "")
	decodeData(t, rec, &list)
	if len(list) != 2 {
		t.Errorf("event list: got %d applications, want 2", len(list))
	}
}
