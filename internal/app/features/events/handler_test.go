package events_test

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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	featurevents "github.com/eventops/crewhub/internal/app/features/events"
	"github.com/eventops/crewhub/internal/app/matching"
	eventstore "github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/store/ratecards"
	"github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/store/staff"
	"github.com/eventops/crewhub/internal/app/system/auth"
	"github.com/eventops/crewhub/internal/testutil"
)

type testEnv struct {
	router chi.Router
	events *eventstore.Store
	shifts *shifts.Store
	fx     *testutil.Fixtures
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	ev := eventstore.New(db)
	sh := shifts.New(db)
	st := staff.New(db)
	rc := ratecards.New(db)

	scorer := matching.NewScorer(ev, st, matching.DefaultWeights())
	detector := matching.NewConflictDetector(sh)
	orch := matching.NewOrchestrator(ev, scorer, detector, sh, rc, st, nil, log)

	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "crewhub_session", "", false, log)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	h := featurevents.NewHandler(ev, sh, orch, scorer, nil, log)
	return &testEnv{
		router: featurevents.Routes(h, sm),
		events: ev,
		shifts: sh,
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

func eventBody(title string, start time.Time, roles string) string {
	return fmt.Sprintf(`{"title":%q,"start_at":%q,"end_at":%q,"required_roles":%s}`,
		title, start.Format(time.RFC3339), start.Add(8*time.Hour).Format(time.RFC3339), roles)
}

func TestCreateAndGet(t *testing.T) {
	env := setup(t)
	admin := testutil.AdminUser()
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

	rec := env.do(t, admin, "POST", "/", eventBody("Gala Night", start, `{"Security":2}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID            string         `json:"id"`
		Title         string         `json:"title"`
		Status        string         `json:"status"`
		RequiredRoles map[string]int `json:"required_roles"`
	}
	decodeData(t, rec, &created)
	if created.Title != "Gala Night" || created.Status != "Draft" {
		t.Errorf("created event: got %+v", created)
	}
	if created.RequiredRoles["Security"] != 2 {
		t.Errorf("required roles: got %v", created.RequiredRoles)
	}

	rec = env.do(t, admin, "GET", "/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status: got %d", rec.Code)
	}
}

func TestCreate_BadInput(t *testing.T) {
	env := setup(t)
	admin := testutil.AdminUser()
	start := time.Now().UTC().Add(48 * time.Hour)

	for name, body := range map[string]string{
		"missing title":   eventBody("", start, `{"Security":1}`),
		"inverted window": fmt.Sprintf(`{"title":"X","start_at":%q,"end_at":%q}`, start.Format(time.RFC3339), start.Add(-time.Hour).Format(time.RFC3339)),
		"dotted role":     eventBody("X", start, `{"a.b":1}`),
		"dollar role":     eventBody("X", start, `{"$where":1}`),
	} {
		rec := env.do(t, admin, "POST", "/", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want 400", name, rec.Code)
		}
	}
}

func TestClientSeesOnlyOwnEvents(t *testing.T) {
	env := setup(t)
	admin := testutil.AdminUser()
	client := testutil.ClientUser()
	start := time.Now().UTC().Add(48 * time.Hour)

	env.do(t, admin, "POST", "/", eventBody("Admin Event", start, `{}`))
	rec := env.do(t, client, "POST", "/", eventBody("Client Event", start, `{}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("client create status: got %d", rec.Code)
	}

	rec = env.do(t, client, "GET", "/", "")
	var list []struct {
		Title string `json:"title"`
	}
	decodeData(t, rec, &list)
	if len(list) != 1 || list[0].Title != "Client Event" {
		t.Errorf("client list: got %+v, want only the client's event", list)
	}
}

func TestUpdate_RoleGate(t *testing.T) {
	env := setup(t)
	staffUser := testutil.StaffUser(primitive.NewObjectID())
	start := time.Now().UTC().Add(48 * time.Hour)

	rec := env.do(t, testutil.AdminUser(), "POST", "/", eventBody("Gated", start, `{}`))
	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &created)

	rec = env.do(t, staffUser, "PUT", "/"+created.ID, eventBody("Hijacked", start, `{}`))
	if rec.Code != http.StatusForbidden {
		t.Errorf("staff update status: got %d, want 403", rec.Code)
	}
}

func TestManualAssignmentQuota(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	admin := testutil.AdminUser()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Small Event", start, map[string]int{"Security": 1})
	a := env.fx.CreateStaffProfile(ctx, "Alice", "Security")
	b := env.fx.CreateStaffProfile(ctx, "Bob", "Security")

	body := fmt.Sprintf(`{"staff_id":%q,"role":"Security","status":"approved"}`, a.ID.Hex())
	rec := env.do(t, admin, "POST", "/"+ev.ID.Hex()+"/assignments", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first assignment status: got %d, body %s", rec.Code, rec.Body.String())
	}

	body = fmt.Sprintf(`{"staff_id":%q,"role":"Security","status":"approved"}`, b.ID.Hex())
	rec = env.do(t, admin, "POST", "/"+ev.ID.Hex()+"/assignments", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("over-quota assignment status: got %d, want 409", rec.Code)
	}

	// Same staff member again is a conflict, not a duplicate.
	body = fmt.Sprintf(`{"staff_id":%q,"role":"Security"}`, a.ID.Hex())
	rec = env.do(t, admin, "POST", "/"+ev.ID.Hex()+"/assignments", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate staff assignment status: got %d, want 409", rec.Code)
	}
}

func TestDecideAssignment(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	admin := testutil.AdminUser()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Pending Event", start, map[string]int{"Usher": 1})
	p := env.fx.CreateStaffProfile(ctx, "Pat", "Usher")

	body := fmt.Sprintf(`{"staff_id":%q,"role":"Usher"}`, p.ID.Hex())
	rec := env.do(t, admin, "POST", "/"+ev.ID.Hex()+"/assignments", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("pending assignment status: got %d", rec.Code)
	}

	loaded, err := env.events.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("load event: %v", err)
	}
	if loaded.Filled["Usher"] != 0 {
		t.Errorf("pending assignment consumed quota: filled %d", loaded.Filled["Usher"])
	}

	rec = env.do(t, admin, "PATCH", "/"+ev.ID.Hex()+"/assignments/"+p.ID.Hex(), `{"role":"Usher","status":"approved"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status: got %d, body %s", rec.Code, rec.Body.String())
	}

	loaded, err = env.events.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if loaded.Filled["Usher"] != 1 {
		t.Errorf("approval did not fill quota: filled %d", loaded.Filled["Usher"])
	}

	rec = env.do(t, admin, "PATCH", "/"+ev.ID.Hex()+"/assignments/"+p.ID.Hex(), `{"role":"Usher","status":"rejected"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reject status: got %d", rec.Code)
	}
	loaded, _ = env.events.GetByID(ctx, ev.ID)
	if loaded.Filled["Usher"] != 0 {
		t.Errorf("rejection did not release quota: filled %d", loaded.Filled["Usher"])
	}
}

func TestCancelCascadesToShifts(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	admin := testutil.AdminUser()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Doomed Event", start, map[string]int{"Security": 1})
	p := env.fx.CreateStaffProfile(ctx, "Sam", "Security")
	sh := env.fx.CreateShift(ctx, ev.ID, p.ID, "Security", start)

	rec := env.do(t, admin, "POST", "/"+ev.ID.Hex()+"/cancel", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var data struct {
		ShiftsCancelled int64 `json:"shifts_cancelled"`
	}
	decodeData(t, rec, &data)
	if data.ShiftsCancelled != 1 {
		t.Errorf("shifts_cancelled: got %d, want 1", data.ShiftsCancelled)
	}

	got, err := env.shifts.GetByID(ctx, sh.ID)
	if err != nil {
		t.Fatalf("load shift: %v", err)
	}
	if got.Status != "Cancelled" {
		t.Errorf("shift status after cancel: got %q, want Cancelled", got.Status)
	}
}

func TestDeleteRefusedWithActiveShifts(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	admin := testutil.AdminUser()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Busy Event", start, map[string]int{"Security": 1})
	p := env.fx.CreateStaffProfile(ctx, "Sam", "Security")
	env.fx.CreateShift(ctx, ev.ID, p.ID, "Security", start)

	rec := env.do(t, admin, "DELETE", "/"+ev.ID.Hex(), "")
	if rec.Code != http.StatusConflict {
		t.Errorf("delete status: got %d, want 409", rec.Code)
	}
}

func TestAutoAssignFillsQuotaAndCreatesShifts(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	supervisor := testutil.SupervisorUser()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Big Night", start, map[string]int{"Security": 2})
	env.fx.CreateStaffProfile(ctx, "Alice", "Security")
	env.fx.CreateStaffProfile(ctx, "Bob", "Security")
	env.fx.CreateStaffProfile(ctx, "Carol", "Security")
	env.fx.CreateRateCard(ctx, "Security", 25)

	rec := env.do(t, supervisor, "POST", "/"+ev.ID.Hex()+"/auto-assign", `{"auto_create_shifts":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("auto-assign status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Assigned int `json:"assigned"`
		Details  []struct {
			Assigned bool   `json:"assigned"`
			ShiftID  string `json:"shift_id"`
		} `json:"details"`
	}
	decodeData(t, rec, &res)
	if res.Assigned != 2 {
		t.Fatalf("assigned: got %d, want 2", res.Assigned)
	}
	for i, d := range res.Details {
		if d.Assigned && d.ShiftID == "" {
			t.Errorf("detail %d: assigned without a materialized shift", i)
		}
	}

	loaded, err := env.events.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("load event: %v", err)
	}
	if loaded.Filled["Security"] != 2 {
		t.Errorf("filled: got %d, want 2", loaded.Filled["Security"])
	}

	// A second run finds nothing left to do.
	rec = env.do(t, supervisor, "POST", "/"+ev.ID.Hex()+"/auto-assign", "")
	decodeData(t, rec, &res)
	if res.Assigned != 0 {
		t.Errorf("second run assigned: got %d, want 0", res.Assigned)
	}
}

func TestSmartMatchRanksByScore(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	admin := testutil.AdminUser()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Ranked", start, map[string]int{"Security": 1})
	low := env.fx.CreateStaffProfile(ctx, "Low", "Security")
	high := env.fx.CreateStaffProfile(ctx, "High", "Security")
	_, err := env.fx.DB().Collection("staff_profiles").UpdateByID(ctx, low.ID,
		map[string]any{"$set": map[string]any{"rating": 2.0, "on_time_rate": 50.0}})
	if err != nil {
		t.Fatalf("downgrade profile: %v", err)
	}
	_, err = env.fx.DB().Collection("staff_profiles").UpdateByID(ctx, high.ID,
		map[string]any{"$set": map[string]any{"rating": 5.0, "on_time_rate": 100.0}})
	if err != nil {
		t.Fatalf("upgrade profile: %v", err)
	}

	rec := env.do(t, admin, "GET", "/"+ev.ID.Hex()+"/smart-match/Security?count=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("smart-match status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var data struct {
		Matches []struct {
			Staff struct {
				FullName string `json:"full_name"`
			} `json:"staff"`
			Score float64 `json:"score"`
		} `json:"matches"`
	}
	decodeData(t, rec, &data)
	if len(data.Matches) != 2 {
		t.Fatalf("matches: got %d, want 2", len(data.Matches))
	}
	if data.Matches[0].Staff.FullName != "High" {
		t.Errorf("top match: got %q, want High", data.Matches[0].Staff.FullName)
	}
	if data.Matches[0].Score <= data.Matches[1].Score {
		t.Errorf("scores not descending: %f then %f", data.Matches[0].Score, data.Matches[1].Score)
	}
}

func TestRecommendationsSkipFilledRoles(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	admin := testutil.AdminUser()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Recs", start, map[string]int{"Security": 1, "Usher": 1})
	env.fx.CreateStaffProfile(ctx, "Sam", "Security")
	u := env.fx.CreateStaffProfile(ctx, "Uma", "Usher")

	body := fmt.Sprintf(`{"staff_id":%q,"role":"Usher","status":"approved"}`, u.ID.Hex())
	if rec := env.do(t, admin, "POST", "/"+ev.ID.Hex()+"/assignments", body); rec.Code != http.StatusCreated {
		t.Fatalf("seed assignment status: got %d", rec.Code)
	}

	rec := env.do(t, admin, "GET", "/"+ev.ID.Hex()+"/recommendations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("recommendations status: got %d", rec.Code)
	}
	var recs struct {
		Roles []struct {
			Role       string `json:"role"`
			Candidates []struct {
				Name string `json:"name"`
			} `json:"candidates"`
		} `json:"roles"`
	}
	decodeData(t, rec, &recs)
	if len(recs.Roles) != 1 || recs.Roles[0].Role != "Security" {
		t.Fatalf("roles: got %+v, want only Security", recs.Roles)
	}
	if len(recs.Roles[0].Candidates) != 1 || recs.Roles[0].Candidates[0].Name != "Sam" {
		t.Errorf("candidates: got %+v, want Sam", recs.Roles[0].Candidates)
	}
}

func TestMatchReadsRequireStaffingManager(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(48 * time.Hour)

	ev := env.fx.CreateEvent(ctx, "Gated", start, map[string]int{"Security": 1})
	p := env.fx.CreateStaffProfile(ctx, "Sam", "Security")

	// Ratings and score breakdowns stay off the client and staff
	// portals.
	for _, user := range []testutil.TestUser{testutil.ClientUser(), testutil.StaffUser(p.ID)} {
		if rec := env.do(t, user, "GET", "/"+ev.ID.Hex()+"/smart-match/Security", ""); rec.Code != http.StatusForbidden {
			t.Errorf("%s smart-match status: got %d, want 403", user.Role, rec.Code)
		}
		if rec := env.do(t, user, "GET", "/"+ev.ID.Hex()+"/recommendations", ""); rec.Code != http.StatusForbidden {
			t.Errorf("%s recommendations status: got %d, want 403", user.Role, rec.Code)
		}
	}

	if rec := env.do(t, testutil.SupervisorUser(), "GET", "/"+ev.ID.Hex()+"/smart-match/Security", ""); rec.Code != http.StatusOK {
		t.Errorf("supervisor smart-match status: got %d, want 200", rec.Code)
	}
}
