package session

import (
	"context"
	"sync"
	"sync/atomic"

	"onero/internal/api"
	"onero/internal/core"
	"onero/internal/log"
)

// ExpenseStore holds the signed-in user's expenses, most-recent-first. Every
// mutation goes to the external store first; local state changes only after
// the external call succeeds, so there is nothing to roll back on failure.
type ExpenseStore struct {
	client *api.Client
	userID string
	logger *log.Logger

	mu    sync.RWMutex
	items []core.Expense

	// pending counts in-flight external calls. Concurrent calls are allowed;
	// the flag clears when the last one resolves.
	pending atomic.Int64

	changed signal
}

func newExpenseStore(client *api.Client, userID string, logger *log.Logger) *ExpenseStore {
	return &ExpenseStore{
		client: client,
		userID: userID,
		logger: logger.WithComponent(log.ComponentExpenses),
	}
}

// InFlight reports whether an external call is pending, so callers can
// disable duplicate submissions.
func (s *ExpenseStore) InFlight() bool {
	return s.pending.Load() > 0
}

// Subscribe registers fn to run after every successful mutation and returns
// a cancel function.
func (s *ExpenseStore) Subscribe(fn func()) func() {
	return s.changed.subscribe(fn)
}

// All returns a copy of the held expenses in most-recent-first order.
func (s *ExpenseStore) All() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	return out
}

// Load replaces the entire held collection with the external store's current
// contents. It is a full refresh, not a merge.
func (s *ExpenseStore) Load(ctx context.Context) error {
	if s.userID == "" {
		return api.ErrNotFound
	}
	s.pending.Add(1)
	defer s.pending.Add(-1)

	items, err := s.client.GetExpenses(ctx, s.userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expenses loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldUserID, s.userID,
		log.FieldCount, len(items))
	s.changed.notify()
	return nil
}

// Add validates the draft, persists it externally and prepends the canonical
// record to the held collection.
func (s *ExpenseStore) Add(ctx context.Context, draft core.Expense) (core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return core.Expense{}, &api.ValidationError{Err: err}
	}

	s.pending.Add(1)
	defer s.pending.Add(-1)

	created, err := s.client.CreateExpense(ctx, s.userID, draft)
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	s.items = append([]core.Expense{created}, s.items...)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense added",
		log.FieldOperation, log.OpAdd,
		log.FieldExpenseID, created.ID,
		log.FieldCategory, created.Category,
		log.FieldAmountCents, created.Amount.Cents)
	s.changed.notify()
	return created, nil
}

// Update merges changes into the stored expense and replaces the matching
// record in place, preserving its position in the held order.
func (s *ExpenseStore) Update(ctx context.Context, id string, changes api.ExpenseChanges) (core.Expense, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)

	updated, err := s.client.UpdateExpense(ctx, id, changes)
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = updated
			break
		}
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldExpenseID, id)
	s.changed.notify()
	return updated, nil
}

// Remove deletes the expense externally, then drops it from the held
// collection. Removing an already-absent record is a no-op.
func (s *ExpenseStore) Remove(ctx context.Context, id string) error {
	s.pending.Add(1)
	defer s.pending.Add(-1)

	if err := s.client.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense removed",
		log.FieldOperation, log.OpRemove,
		log.FieldExpenseID, id)
	s.changed.notify()
	return nil
}
