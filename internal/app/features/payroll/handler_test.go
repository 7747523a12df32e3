package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	featurepayroll "github.com/eventops/crewhub/internal/app/features/payroll"
	payrollstore "github.com/eventops/crewhub/internal/app/store/payroll"
	ratestore "github.com/eventops/crewhub/internal/app/store/ratecards"
	shiftstore "github.com/eventops/crewhub/internal/app/store/shifts"
	"github.com/eventops/crewhub/internal/app/system/auth"
	"github.com/eventops/crewhub/internal/domain/models"
	"github.com/eventops/crewhub/internal/testutil"
)

type testEnv struct {
	router  chi.Router
	payroll *payrollstore.Store
	fx      *testutil.Fixtures
	db      *mongo.Database
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "crewhub_session", "", false, log)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	ps := payrollstore.New(db)
	h := featurepayroll.NewHandler(ps, ratestore.New(db), shiftstore.New(db), nil, log)
	return &testEnv{
		router:  featurepayroll.Routes(h, sm),
		payroll: ps,
		fx:      testutil.NewFixtures(t, db),
		db:      db,
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

func (env *testEnv) entry(t *testing.T, staffID primitive.ObjectID, period string, amount float64) models.PayrollEntry {
	t.Helper()
	e, err := env.payroll.Create(context.Background(), models.PayrollEntry{
		ShiftID:     primitive.NewObjectID(),
		StaffID:     staffID,
		EventID:     primitive.NewObjectID(),
		Period:      period,
		HoursWorked: amount / 20,
		Wage:        models.Wage{Amount: 20, Currency: "USD", Per: models.WagePerHour},
		Amount:      amount,
	})
	if err != nil {
		t.Fatalf("create payroll entry: %v", err)
	}
	return e
}

func TestListEntries_Scoping(t *testing.T) {
	env := setup(t)
	mine := primitive.NewObjectID()
	other := primitive.NewObjectID()

	env.entry(t, mine, "2026-08", 160)
	env.entry(t, mine, "2026-07", 120)
	env.entry(t, other, "2026-08", 200)

	me := testutil.StaffUser(mine)
	rec := env.do(t, me, "GET", "/entries", "")
	var list []struct {
		StaffID string  `json:"staff_id"`
		Period  string  `json:"period"`
		Amount  float64 `json:"amount"`
	}
	decodeData(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("own entries: got %d, want 2", len(list))
	}
	for _, e := range list {
		if e.StaffID != mine.Hex() {
			t.Errorf("leaked entry for %s", e.StaffID)
		}
	}

	decodeData(t, env.do(t, me, "GET", "/entries?period=2026-07", ""), &list)
	if len(list) != 1 || list[0].Amount != 120 {
		t.Errorf("period filter: got %+v", list)
	}

	// Managers browse by period and see everyone.
	sup := testutil.SupervisorUser()
	decodeData(t, env.do(t, sup, "GET", "/entries?period=2026-08", ""), &list)
	if len(list) != 2 {
		t.Errorf("manager period list: got %d, want 2", len(list))
	}

	// A manager list without a period is an error, as is a bad format.
	if rec := env.do(t, sup, "GET", "/entries", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing period: got %d, want 400", rec.Code)
	}
	if rec := env.do(t, sup, "GET", "/entries?period=August", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad period: got %d, want 400", rec.Code)
	}
}

func TestEntryStatusChain(t *testing.T) {
	env := setup(t)
	e := env.entry(t, primitive.NewObjectID(), "2026-08", 160)
	sup := testutil.SupervisorUser()
	path := "/entries/" + e.ID.Hex() + "/status"

	// Paying a pending entry skips a step.
	if rec := env.do(t, sup, "PATCH", path, `{"status":"paid"}`); rec.Code != http.StatusConflict {
		t.Errorf("pay pending: got %d, want 409", rec.Code)
	}
	if rec := env.do(t, sup, "PATCH", path, `{"status":"approved"}`); rec.Code != http.StatusOK {
		t.Fatalf("approve: got %d", rec.Code)
	}
	if rec := env.do(t, sup, "PATCH", path, `{"status":"approved"}`); rec.Code != http.StatusConflict {
		t.Errorf("approve twice: got %d, want 409", rec.Code)
	}
	if rec := env.do(t, sup, "PATCH", path, `{"status":"paid"}`); rec.Code != http.StatusOK {
		t.Fatalf("pay: got %d", rec.Code)
	}
	if rec := env.do(t, sup, "PATCH", path, `{"status":"pending"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("rewind: got %d, want 400", rec.Code)
	}

	// Staff cannot touch statuses.
	me := testutil.StaffUser(e.StaffID)
	if rec := env.do(t, me, "PATCH", path, `{"status":"approved"}`); rec.Code != http.StatusForbidden {
		t.Errorf("staff status change: got %d, want 403", rec.Code)
	}
}

func TestSummary(t *testing.T) {
	env := setup(t)
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	env.entry(t, alice, "2026-08", 160)
	env.entry(t, bob, "2026-08", 200)
	env.entry(t, alice, "2026-07", 100)

	sup := testutil.SupervisorUser()
	var sum struct {
		Period string  `json:"period"`
		Total  float64 `json:"total"`
	}
	decodeData(t, env.do(t, sup, "GET", "/summary?period=2026-08", ""), &sum)
	if sum.Total != 360 {
		t.Errorf("period total: got %v, want 360", sum.Total)
	}

	decodeData(t, env.do(t, sup, "GET", "/summary?period=2026-08&staff_id="+alice.Hex(), ""), &sum)
	if sum.Total != 160 {
		t.Errorf("staff-scoped total: got %v, want 160", sum.Total)
	}

	// An empty period totals zero rather than erroring.
	decodeData(t, env.do(t, sup, "GET", "/summary?period=2026-01", ""), &sum)
	if sum.Total != 0 {
		t.Errorf("empty period total: got %v, want 0", sum.Total)
	}
}

func TestGenerate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	ev := env.fx.CreateEvent(ctx, "Expo", start, map[string]int{"Security": 2})
	p1 := env.fx.CreateStaffProfile(ctx, "One", "Security")
	p2 := env.fx.CreateStaffProfile(ctx, "Two", "Security")

	complete := func(staffID primitive.ObjectID, hours float64) models.Shift {
		sh := env.fx.CreateShift(ctx, ev.ID, staffID, "Security", start)
		_, err := env.db.Collection("shifts").UpdateByID(ctx, sh.ID, bson.M{
			"$set": bson.M{"status": models.ShiftCompleted, "hours_worked": hours},
		})
		if err != nil {
			t.Fatalf("complete shift: %v", err)
		}
		return sh
	}
	first := complete(p1.ID, 4)
	complete(p2.ID, 8)

	// One shift already went through check-out's eager entry.
	if _, err := env.payroll.Create(ctx, models.PayrollEntry{
		ShiftID: first.ID,
		StaffID: p1.ID,
		EventID: ev.ID,
		Period:  "2026-08",
		Wage:    models.Wage{Amount: 20, Currency: "USD", Per: models.WagePerHour},
		Amount:  80,
	}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	sup := testutil.SupervisorUser()
	var res struct {
		Generated int `json:"generated"`
		Skipped   int `json:"skipped"`
	}
	decodeData(t, env.do(t, sup, "POST", "/generate?period=2026-08", ""), &res)
	if res.Generated != 1 || res.Skipped != 1 {
		t.Errorf("generate: got %+v, want 1 generated 1 skipped", res)
	}

	// A re-run is a no-op.
	decodeData(t, env.do(t, sup, "POST", "/generate?period=2026-08", ""), &res)
	if res.Generated != 0 || res.Skipped != 2 {
		t.Errorf("re-run: got %+v, want 0 generated 2 skipped", res)
	}

	// The fixture wage is 20/hour, so the 8 hour shift pays 160.
	var sum struct {
		Total float64 `json:"total"`
	}
	decodeData(t, env.do(t, sup, "GET", "/summary?period=2026-08", ""), &sum)
	if sum.Total != 240 {
		t.Errorf("period total: got %v, want 240", sum.Total)
	}

	if rec := env.do(t, sup, "POST", "/generate", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing period: got %d, want 400", rec.Code)
	}
}

func TestRateCards(t *testing.T) {
	env := setup(t)
	sup := testutil.SupervisorUser()

	rec := env.do(t, sup, "POST", "/rate-cards", `{"role":"Security","amount":30,"per":"hour"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rate card: got %d, body %s", rec.Code, rec.Body.String())
	}
	var rc struct {
		ID       string  `json:"id"`
		Role     string  `json:"role"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	decodeData(t, rec, &rc)
	if rc.Currency != "USD" {
		t.Errorf("default currency: got %q, want USD", rc.Currency)
	}

	// One card per role.
	if rec := env.do(t, sup, "POST", "/rate-cards", `{"role":"Security","amount":35,"per":"hour"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate role: got %d, want 409", rec.Code)
	}
	if rec := env.do(t, sup, "POST", "/rate-cards", `{"role":"Usher","amount":0,"per":"hour"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("zero amount: got %d, want 400", rec.Code)
	}
	if rec := env.do(t, sup, "POST", "/rate-cards", `{"role":"Usher","amount":20,"per":"day"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad per: got %d, want 400", rec.Code)
	}

	if rec := env.do(t, sup, "PUT", "/rate-cards/"+rc.ID, `{"role":"Security","amount":42,"per":"hour"}`); rec.Code != http.StatusOK {
		t.Fatalf("update rate card: got %d", rec.Code)
	}
	var cards []struct {
		Amount float64 `json:"amount"`
	}
	decodeData(t, env.do(t, sup, "GET", "/rate-cards", ""), &cards)
	if len(cards) != 1 || cards[0].Amount != 42 {
		t.Errorf("after update: got %+v", cards)
	}

	if rec := env.do(t, sup, "DELETE", "/rate-cards/"+rc.ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete rate card: got %d", rec.Code)
	}
	if rec := env.do(t, sup, "DELETE", "/rate-cards/"+rc.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("delete twice: got %d, want 404", rec.Code)
	}

	// The wage table is manager-only.
	me := testutil.StaffUser(primitive.NewObjectID())
	if rec := env.do(t, me, "GET", "/rate-cards", ""); rec.Code != http.StatusForbidden {
		t.Errorf("staff wage table: got %d, want 403", rec.Code)
	}
}
