package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onero/internal/api"
	"onero/internal/core"
	"onero/internal/log"
)

// fakeStore is an in-memory external data store speaking the wire contract.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int
	expenses []map[string]any
	requests int
	failNext bool
	block    chan struct{} // when set, handlers wait on it
}

func (f *fakeStore) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		f.track()
		json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{
			"id": "u1", "name": "Jo", "email": "jo@example.com", "budget": 1000.0, "currency": "€",
		}})
	})
	mux.HandleFunc("GET /api/expenses/{userID}", func(w http.ResponseWriter, r *http.Request) {
		f.track()
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.expenses)
	})
	mux.HandleFunc("POST /api/expenses/{userID}", func(w http.ResponseWriter, r *http.Request) {
		if f.track() {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		var e map[string]any
		json.NewDecoder(r.Body).Decode(&e)
		f.mu.Lock()
		f.nextID++
		e["id"] = fmt.Sprintf("e%d", f.nextID)
		f.expenses = append(f.expenses, e)
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"expense": e})
	})
	mux.HandleFunc("PUT /api/expenses/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.track()
		id := r.PathValue("id")
		var changes map[string]any
		json.NewDecoder(r.Body).Decode(&changes)
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, e := range f.expenses {
			if e["id"] == id {
				for k, v := range changes {
					e[k] = v
				}
				json.NewEncoder(w).Encode(map[string]any{"expense": e})
				return
			}
		}
		http.Error(w, `{"error":"expense not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("DELETE /api/expenses/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.track()
		id := r.PathValue("id")
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, e := range f.expenses {
			if e["id"] == id {
				f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
				break
			}
		}
		io.WriteString(w, "{}")
	})
	mux.HandleFunc("PUT /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.track() {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		var changes map[string]any
		json.NewDecoder(r.Body).Decode(&changes)
		user := map[string]any{
			"id": "u1", "name": "Jo", "email": "jo@example.com", "budget": 1000.0, "currency": "€",
		}
		for k, v := range changes {
			user[k] = v
		}
		json.NewEncoder(w).Encode(map[string]any{"user": user})
	})
	return mux
}

// track counts the request and reports whether it should fail.
func (f *fakeStore) track() bool {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.failNext {
		f.failNext = false
		return true
	}
	return false
}

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestSession(t *testing.T) (*Session, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	srv := httptest.NewServer(store.handler())
	t.Cleanup(srv.Close)
	client := api.NewClient(srv.URL+"/api", 5*time.Second)

	sess, err := Login(context.Background(), client, testLogger(), "jo@example.com", "pw")
	require.NoError(t, err)
	return sess, store
}

func draft(amount int64, category, date string) core.Expense {
	d, _ := core.ParseDate(date)
	return core.Expense{Amount: core.Money{Cents: amount}, Category: category, Date: d}
}

func TestSessionLoginSeedsProfile(t *testing.T) {
	sess, _ := newTestSession(t)
	assert.Equal(t, "u1", sess.User().ID)
	assert.Equal(t, int64(100000), sess.Profile.Profile().Budget.Cents)
	assert.Equal(t, "€", sess.Profile.Profile().Currency)
	assert.Empty(t, sess.Expenses.All())
	assert.False(t, sess.InFlight())
}

func TestExpenseStoreAddPrepends(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()

	first, err := sess.Expenses.Add(ctx, draft(50000, "Food", "2024-01-05"))
	require.NoError(t, err)
	second, err := sess.Expenses.Add(ctx, draft(20000, "Transport", "2024-01-12"))
	require.NoError(t, err)

	held := sess.Expenses.All()
	require.Len(t, held, 2)
	// add always inserts at position 0
	assert.Equal(t, second.ID, held[0].ID)
	assert.Equal(t, first.ID, held[1].ID)
}

func TestExpenseStoreUpdatePreservesPosition(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()

	a, _ := sess.Expenses.Add(ctx, draft(100, "a", "2024-01-01"))
	b, _ := sess.Expenses.Add(ctx, draft(200, "b", "2024-01-02"))
	c, _ := sess.Expenses.Add(ctx, draft(300, "c", "2024-01-03"))

	newAmount := 9.99
	updated, err := sess.Expenses.Update(ctx, b.ID, api.ExpenseChanges{Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, int64(999), updated.Amount.Cents)

	held := sess.Expenses.All()
	require.Len(t, held, 3)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, []string{held[0].ID, held[1].ID, held[2].ID})
	assert.Equal(t, int64(999), held[1].Amount.Cents)
}

func TestExpenseStoreUpdateMissing(t *testing.T) {
	sess, _ := newTestSession(t)
	_, err := sess.Expenses.Update(context.Background(), "nope", api.ExpenseChanges{})
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestExpenseStoreRemove(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()

	a, _ := sess.Expenses.Add(ctx, draft(100, "a", "2024-01-01"))
	require.NoError(t, sess.Expenses.Remove(ctx, a.ID))
	assert.Empty(t, sess.Expenses.All())

	// removing again is idempotent
	require.NoError(t, sess.Expenses.Remove(ctx, a.ID))
}

func TestExpenseStoreValidationStopsAtBoundary(t *testing.T) {
	sess, store := newTestSession(t)
	before := store.requests

	_, err := sess.Expenses.Add(context.Background(), core.Expense{Category: "x"})
	var ve *api.ValidationError
	require.ErrorAs(t, err, &ve)
	// the draft never reached the external store
	assert.Equal(t, before, store.requests)
}

func TestExpenseStoreFailedMutationKeepsState(t *testing.T) {
	sess, store := newTestSession(t)
	ctx := context.Background()

	a, _ := sess.Expenses.Add(ctx, draft(100, "a", "2024-01-01"))

	store.failNext = true
	_, err := sess.Expenses.Add(ctx, draft(200, "b", "2024-01-02"))
	var te *api.TransportError
	require.ErrorAs(t, err, &te)

	held := sess.Expenses.All()
	require.Len(t, held, 1)
	assert.Equal(t, a.ID, held[0].ID)
}

func TestExpenseStoreLoadIsFullRefresh(t *testing.T) {
	sess, store := newTestSession(t)
	ctx := context.Background()

	sess.Expenses.Add(ctx, draft(100, "a", "2024-01-01"))

	// the external store is emptied behind our back
	store.mu.Lock()
	store.expenses = nil
	store.mu.Unlock()

	require.NoError(t, sess.Expenses.Load(ctx))
	assert.Empty(t, sess.Expenses.All())
}

func TestInFlightFlag(t *testing.T) {
	store := &fakeStore{}
	srv := httptest.NewServer(store.handler())
	defer srv.Close()
	client := api.NewClient(srv.URL+"/api", 5*time.Second)
	sess, err := Login(context.Background(), client, testLogger(), "jo@example.com", "pw")
	require.NoError(t, err)

	store.block = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.Expenses.Add(context.Background(), draft(100, "a", "2024-01-01"))
	}()

	require.Eventually(t, sess.Expenses.InFlight, time.Second, time.Millisecond)
	close(store.block)
	<-done
	assert.False(t, sess.Expenses.InFlight())
}

func TestExpenseStoreNotifiesSubscribers(t *testing.T) {
	sess, _ := newTestSession(t)
	var notified int
	cancel := sess.Expenses.Subscribe(func() { notified++ })

	sess.Expenses.Add(context.Background(), draft(100, "a", "2024-01-01"))
	assert.Equal(t, 1, notified)

	cancel()
	sess.Expenses.Add(context.Background(), draft(100, "a", "2024-01-02"))
	assert.Equal(t, 1, notified)
}

func TestProfileStoreUpdateMerges(t *testing.T) {
	sess, _ := newTestSession(t)

	budget := 2500.0
	profile, err := sess.Profile.Update(context.Background(), api.UserChanges{Budget: &budget})
	require.NoError(t, err)
	assert.Equal(t, int64(250000), profile.Budget.Cents)
	// unspecified fields retain prior values
	assert.Equal(t, "€", profile.Currency)
	assert.Equal(t, "Jo", sess.User().Name)
}

func TestProfileStoreFailedUpdateKeepsState(t *testing.T) {
	sess, store := newTestSession(t)

	store.failNext = true
	budget := 2500.0
	_, err := sess.Profile.Update(context.Background(), api.UserChanges{Budget: &budget})
	require.Error(t, err)
	assert.Equal(t, int64(100000), sess.Profile.Profile().Budget.Cents)
}

func TestLoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/login") {
			http.Error(w, `{"error":"bad credentials"}`, http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL+"/api", time.Second)
	_, err := Login(context.Background(), client, testLogger(), "jo@example.com", "wrong")
	var te *api.TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "bad credentials")
}
