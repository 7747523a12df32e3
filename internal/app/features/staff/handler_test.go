package staff_test

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

	featurestaff "github.com/eventops/crewhub/internal/app/features/staff"
	staffstore "github.com/eventops/crewhub/internal/app/store/staff"
	"github.com/eventops/crewhub/internal/app/system/auth"
	"github.com/eventops/crewhub/internal/testutil"
)

type testEnv struct {
	router chi.Router
	staff  *staffstore.Store
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

	st := staffstore.New(db)
	h := featurestaff.NewHandler(st, log)
	return &testEnv{
		router: featurestaff.Routes(h, sm),
		staff:  st,
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

func TestCreateAndGet(t *testing.T) {
	env := setup(t)
	admin := testutil.AdminUser()

	rec := env.do(t, admin, "POST", "/", `{"full_name":"  Maria  Silva ","role":"Security","rating":4.5,"skills":[{"name":"Crowd Control","status":"Unverified"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID           string  `json:"id"`
		FullName     string  `json:"full_name"`
		Availability string  `json:"availability"`
		Rating       float64 `json:"rating"`
	}
	decodeData(t, rec, &created)
	if created.FullName != "Maria Silva" {
		t.Errorf("full name not normalized: got %q", created.FullName)
	}
	if created.Availability != "Available" {
		t.Errorf("default availability: got %q", created.Availability)
	}

	rec = env.do(t, admin, "GET", "/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Errorf("get status: got %d", rec.Code)
	}
}

func TestCreate_BadRating(t *testing.T) {
	env := setup(t)

	rec := env.do(t, testutil.AdminUser(), "POST", "/", `{"full_name":"X","role":"Security","rating":7}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestList_FilterAndSearch(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.fx.CreateStaffProfile(ctx, "Alice Anderson", "Security")
	env.fx.CreateStaffProfile(ctx, "Bob Brown", "Security")
	env.fx.CreateStaffProfile(ctx, "Uma Usher", "Usher")

	rec := env.do(t, testutil.AdminUser(), "GET", "/?role=Security", "")
	var res struct {
		Profiles []struct {
			FullName string `json:"full_name"`
		} `json:"profiles"`
		HasNext bool `json:"has_next"`
	}
	decodeData(t, rec, &res)
	if len(res.Profiles) != 2 {
		t.Fatalf("role filter: got %d profiles, want 2", len(res.Profiles))
	}
	if res.Profiles[0].FullName != "Alice Anderson" {
		t.Errorf("sort order: got %q first, want Alice Anderson", res.Profiles[0].FullName)
	}
	if res.HasNext {
		t.Error("has_next should be false for a short page")
	}

	rec = env.do(t, testutil.AdminUser(), "GET", "/?q=bob", "")
	decodeData(t, rec, &res)
	if len(res.Profiles) != 1 || res.Profiles[0].FullName != "Bob Brown" {
		t.Errorf("name search: got %+v", res.Profiles)
	}
}

func TestList_KeysetPaging(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	for i := 0; i < 55; i++ {
		env.fx.CreateStaffProfile(ctx, fmt.Sprintf("Worker %03d", i), "Security")
	}

	rec := env.do(t, testutil.AdminUser(), "GET", "/", "")
	var page struct {
		Profiles []struct {
			FullName string `json:"full_name"`
		} `json:"profiles"`
		HasNext    bool   `json:"has_next"`
		NextCursor string `json:"next_cursor"`
	}
	decodeData(t, rec, &page)
	if len(page.Profiles) != 50 {
		t.Fatalf("first page: got %d rows, want 50", len(page.Profiles))
	}
	if !page.HasNext || page.NextCursor == "" {
		t.Fatal("first page must advertise a next cursor")
	}
	lastOfFirst := page.Profiles[len(page.Profiles)-1].FullName

	rec = env.do(t, testutil.AdminUser(), "GET", "/?after="+page.NextCursor, "")
	decodeData(t, rec, &page)
	if len(page.Profiles) != 5 {
		t.Fatalf("second page: got %d rows, want 5", len(page.Profiles))
	}
	if page.HasNext {
		t.Error("second page should be the last")
	}
	if page.Profiles[0].FullName <= lastOfFirst {
		t.Errorf("second page starts at %q, not after %q", page.Profiles[0].FullName, lastOfFirst)
	}
}

func TestGet_StaffSeesOnlySelf(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	mine := env.fx.CreateStaffProfile(ctx, "Me Myself", "Security")
	other := env.fx.CreateStaffProfile(ctx, "Someone Else", "Security")
	me := testutil.StaffUser(mine.ID)

	if rec := env.do(t, me, "GET", "/"+mine.ID.Hex(), ""); rec.Code != http.StatusOK {
		t.Errorf("own profile status: got %d, want 200", rec.Code)
	}
	if rec := env.do(t, me, "GET", "/"+other.ID.Hex(), ""); rec.Code != http.StatusForbidden {
		t.Errorf("other profile status: got %d, want 403", rec.Code)
	}
}

func TestSetAvailability(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	mine := env.fx.CreateStaffProfile(ctx, "Me Myself", "Security")
	other := env.fx.CreateStaffProfile(ctx, "Someone Else", "Security")
	me := testutil.StaffUser(mine.ID)

	rec := env.do(t, me, "PATCH", "/"+mine.ID.Hex()+"/availability", `{"availability":"Leave"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("own availability status: got %d, body %s", rec.Code, rec.Body.String())
	}
	p, err := env.staff.GetByID(ctx, mine.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.Availability != "Leave" {
		t.Errorf("availability: got %q, want Leave", p.Availability)
	}

	rec = env.do(t, me, "PATCH", "/"+other.ID.Hex()+"/availability", `{"availability":"Leave"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("other availability status: got %d, want 403", rec.Code)
	}

	rec = env.do(t, me, "PATCH", "/"+mine.ID.Hex()+"/availability", `{"availability":"Sleeping"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad availability status: got %d, want 400", rec.Code)
	}
}

func TestVerifySkill(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	p := env.fx.CreateStaffProfile(ctx, "Skilled One", "Security")

	rec := env.do(t, testutil.SupervisorUser(), "PATCH", "/"+p.ID.Hex()+"/skills/FirstAid/verify", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status: got %d, body %s", rec.Code, rec.Body.String())
	}

	loaded, err := env.staff.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	found := false
	for _, s := range loaded.Skills {
		if s.Name == "FirstAid" && s.Status == "Verified" {
			found = true
		}
	}
	if !found {
		t.Errorf("skill not verified: %+v", loaded.Skills)
	}
}

func TestDelete_RefusedWithActiveShifts(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	p := env.fx.CreateStaffProfile(ctx, "Busy Bee", "Security")
	ev := env.fx.CreateEvent(ctx, "Work", time.Now().UTC().Add(24*time.Hour), map[string]int{"Security": 1})
	env.fx.CreateShift(ctx, ev.ID, p.ID, "Security", ev.StartAt)

	rec := env.do(t, testutil.AdminUser(), "DELETE", "/"+p.ID.Hex(), "")
	if rec.Code != http.StatusConflict {
		t.Errorf("delete status: got %d, want 409", rec.Code)
	}
}

func TestRoleGate(t *testing.T) {
	env := setup(t)
	client := testutil.ClientUser()

	if rec := env.do(t, client, "GET", "/", ""); rec.Code != http.StatusForbidden {
		t.Errorf("client list status: got %d, want 403", rec.Code)
	}
	staffUser := testutil.StaffUser(primitive.NewObjectID())
	if rec := env.do(t, staffUser, "POST", "/", `{"full_name":"X","role":"Y"}`); rec.Code != http.StatusForbidden {
		t.Errorf("staff create status: got %d, want 403", rec.Code)
	}
}
