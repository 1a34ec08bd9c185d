package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/services"
	"moneytracker/internal/storage"
)

type entryResponse struct {
	ID        int64       `json:"id"`
	Amount    json.Number `json:"amount"`
	Kind      string      `json:"kind"`
	Category  string      `json:"category"`
	Note      string      `json:"note"`
	Timestamp string      `json:"timestamp"`
	Display   string      `json:"display"`
}

type totalsResponse struct {
	Income    json.Number       `json:"income"`
	Expense   json.Number       `json:"expense"`
	Balance   json.Number       `json:"balance"`
	Currency  string            `json:"currency"`
	Formatted map[string]string `json:"formatted"`
}

type brokenStore struct{ *storage.MemoryStore }

func (brokenStore) Save(context.Context, []core.Entry) error { return errors.New("read-only filesystem") }

func quietLogger() *log.Logger {
	return log.New(log.Config{Component: log.ComponentHTTP, Output: io.Discard})
}

func newTestServer(t *testing.T, store storage.Store, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.RateLimitPerMinute == 0 {
		opts.RateLimitPerMinute = 1000
	}
	ledger := services.Open(context.Background(), store, services.WithLogger(opts.Logger))
	srv := NewServer(":0", ledger, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.RemoteAddr = "192.0.2.1:4000"
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	} else if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(nil), Options{})

	rr := do(t, srv, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/readyz", "", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"entries":0`) {
		t.Fatalf("readyz = %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("middleware headers missing: %v", rr.Header())
	}
}

func TestCreateListAndTotalsScenario(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(nil), Options{Currency: "IDR"})

	rr := do(t, srv, http.MethodPost, "/api/entries", `{"kind":"income","amount":1000,"category":"Salary"}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create income = %d %s", rr.Code, rr.Body.String())
	}
	salary := decode[entryResponse](t, rr)
	if rr.Header().Get("Location") != "/api/entries/"+strconv.FormatInt(salary.ID, 10) {
		t.Fatalf("Location = %q", rr.Header().Get("Location"))
	}
	if salary.Amount.String() != "1000" || salary.Kind != "income" || salary.Display == "" || salary.Timestamp == "" {
		t.Fatalf("unexpected entry %+v", salary)
	}

	// form bodies and string amounts are accepted too
	rr = do(t, srv, http.MethodPost, "/api/entries", "kind=expense&amount=300&category=Food&note=groceries", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense = %d %s", rr.Code, rr.Body.String())
	}
	food := decode[entryResponse](t, rr)

	rr = do(t, srv, http.MethodGet, "/api/totals", "", nil)
	totals := decode[totalsResponse](t, rr)
	if totals.Income.String() != "1000" || totals.Expense.String() != "300" || totals.Balance.String() != "700" {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if totals.Currency != "IDR" || totals.Formatted["balance"] == "" {
		t.Fatalf("unexpected formatting %+v", totals)
	}

	rr = do(t, srv, http.MethodGet, "/api/entries", "", nil)
	all := decode[[]entryResponse](t, rr)
	if len(all) != 2 || all[0].ID != food.ID || all[1].ID != salary.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}

	rr = do(t, srv, http.MethodGet, "/api/entries?filter=expense", "", nil)
	expenses := decode[[]entryResponse](t, rr)
	if len(expenses) != 1 || expenses[0].Category != "Food" || expenses[0].Note != "groceries" {
		t.Fatalf("unexpected expenses %+v", expenses)
	}

	rr = do(t, srv, http.MethodGet, "/api/entries?filter=transfers", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown filter = %d", rr.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(nil), Options{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"zero amount", `{"kind":"expense","amount":0,"category":"Food"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"kind":"expense","amount":-5,"category":"Food"}`, http.StatusUnprocessableEntity},
		{"missing amount", `{"kind":"expense","category":"Food"}`, http.StatusUnprocessableEntity},
		{"text amount", `{"kind":"expense","amount":"lots","category":"Food"}`, http.StatusUnprocessableEntity},
		{"empty category", `{"kind":"income","amount":10,"category":"  "}`, http.StatusUnprocessableEntity},
		{"unknown kind", `{"kind":"transfer","amount":10,"category":"Other"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"kind":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/entries", tt.body, nil)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.want, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), `"error"`) {
				t.Fatalf("expected JSON error body, got %s", rr.Body.String())
			}
		})
	}

	rr := do(t, srv, http.MethodGet, "/api/totals", "", nil)
	if totals := decode[totalsResponse](t, rr); totals.Balance.String() != "0" {
		t.Fatalf("rejected creates changed totals: %+v", totals)
	}
}

func TestUpdateGetAndDelete(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(nil), Options{})

	created := decode[entryResponse](t, do(t, srv, http.MethodPost, "/api/entries", `{"kind":"income","amount":"50","category":"Gift"}`, nil))
	path := "/api/entries/" + strconv.FormatInt(created.ID, 10)

	rr := do(t, srv, http.MethodPut, path, `{"kind":"expense","amount":"20.5","category":"Health","note":"pharmacy"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("update = %d %s", rr.Code, rr.Body.String())
	}
	updated := decode[entryResponse](t, rr)
	if updated.ID != created.ID || updated.Timestamp != created.Timestamp {
		t.Fatalf("identity changed: %+v vs %+v", updated, created)
	}
	if updated.Kind != "expense" || updated.Amount.String() != "20.5" || updated.Note != "pharmacy" {
		t.Fatalf("fields not replaced: %+v", updated)
	}

	rr = do(t, srv, http.MethodGet, path, "", nil)
	if got := decode[entryResponse](t, rr); rr.Code != http.StatusOK || got.Category != "Health" {
		t.Fatalf("get = %d %+v", rr.Code, got)
	}

	rr = do(t, srv, http.MethodPut, "/api/entries/42", `{"kind":"expense","amount":"1","category":"Food"}`, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("update unknown = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodPut, path, `{"kind":"expense","amount":"0","category":"Food"}`, nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid update = %d", rr.Code)
	}

	for i := 0; i < 2; i++ {
		rr = do(t, srv, http.MethodDelete, path, "", nil)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("delete #%d = %d", i+1, rr.Code)
		}
	}
	if rr = do(t, srv, http.MethodGet, path, "", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rr.Code)
	}

	for _, bad := range []string{"/api/entries/abc", "/api/entries/-1"} {
		if rr = do(t, srv, http.MethodGet, bad, "", nil); rr.Code != http.StatusBadRequest {
			t.Fatalf("GET %s = %d", bad, rr.Code)
		}
	}
}

func TestIdempotentCreate(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(nil), Options{})
	body := `{"kind":"expense","amount":12,"category":"Transport"}`
	key := map[string]string{IdempotencyKeyHeader: "retry-1"}

	first := decode[entryResponse](t, do(t, srv, http.MethodPost, "/api/entries", body, key))
	second := decode[entryResponse](t, do(t, srv, http.MethodPost, "/api/entries", body, key))
	if first.ID != second.ID {
		t.Fatalf("retry created a second entry: %d vs %d", first.ID, second.ID)
	}

	other := decode[entryResponse](t, do(t, srv, http.MethodPost, "/api/entries", body, nil))
	if other.ID == first.ID {
		t.Fatal("request without key should create a new entry")
	}

	all := decode[[]entryResponse](t, do(t, srv, http.MethodGet, "/api/entries", "", nil))
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(nil), Options{})

	rr := do(t, srv, http.MethodGet, "/api/categories?kind=income", "", nil)
	income := decode[[]string](t, rr)
	if strings.Join(income, ",") != "Salary,Freelance,Investment,Gift,Other" {
		t.Fatalf("income categories = %v", income)
	}

	rr = do(t, srv, http.MethodGet, "/api/categories", "", nil)
	both := decode[map[string][]string](t, rr)
	if len(both["expense"]) != 7 || both["expense"][0] != "Food" {
		t.Fatalf("expense categories = %v", both["expense"])
	}

	if rr = do(t, srv, http.MethodGet, "/api/categories?kind=savings", "", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind = %d", rr.Code)
	}
}

func TestPersistenceFailureIsInternalError(t *testing.T) {
	srv := newTestServer(t, brokenStore{storage.NewMemoryStore(nil)}, Options{})

	rr := do(t, srv, http.MethodPost, "/api/entries", `{"kind":"income","amount":1,"category":"Other"}`, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "read-only") {
		t.Fatalf("internal detail leaked: %s", rr.Body.String())
	}
	if all := decode[[]entryResponse](t, do(t, srv, http.MethodGet, "/api/entries", "", nil)); len(all) != 0 {
		t.Fatalf("failed create left an entry: %+v", all)
	}
}

func TestRateLimitAppliesToMutations(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(nil), Options{RateLimitPerMinute: 2})
	body := `{"kind":"income","amount":1,"category":"Other"}`

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPost, "/api/entries", body, nil); rr.Code != http.StatusCreated {
			t.Fatalf("create #%d = %d", i+1, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPost, "/api/entries", body, nil)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("third create = %d, Retry-After %q", rr.Code, rr.Header().Get("Retry-After"))
	}
	if rr := do(t, srv, http.MethodGet, "/api/entries", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(nil), Options{})
	if rr := do(t, srv, http.MethodPatch, "/api/entries", "", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PATCH = %d", rr.Code)
	}
}
