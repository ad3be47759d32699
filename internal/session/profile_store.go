package session

import (
	"context"
	"sync"
	"sync/atomic"

	"onero/internal/api"
	"onero/internal/core"
	"onero/internal/log"
)

// ProfileStore holds the signed-in user record, including the budget and
// currency preference the aggregation views read. Like the expense store it
// mutates remote-first: on failure the local profile is left untouched.
type ProfileStore struct {
	client *api.Client
	logger *log.Logger

	mu   sync.RWMutex
	user core.User

	pending atomic.Int64
	changed signal
}

func newProfileStore(client *api.Client, user core.User, logger *log.Logger) *ProfileStore {
	return &ProfileStore{
		client: client,
		user:   user,
		logger: logger.WithComponent(log.ComponentProfile),
	}
}

// InFlight reports whether an external call is pending.
func (p *ProfileStore) InFlight() bool {
	return p.pending.Load() > 0
}

// Subscribe registers fn to run after every successful update and returns a
// cancel function.
func (p *ProfileStore) Subscribe(fn func()) func() {
	return p.changed.subscribe(fn)
}

// User returns the held user record.
func (p *ProfileStore) User() core.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user
}

// Profile returns the budget and currency view of the held user.
func (p *ProfileStore) Profile() core.Profile {
	return p.User().Profile()
}

// Update merges the provided fields into the stored user; unspecified fields
// retain their prior values. The canonical record returned by the external
// store replaces the held one.
func (p *ProfileStore) Update(ctx context.Context, changes api.UserChanges) (core.Profile, error) {
	p.pending.Add(1)
	defer p.pending.Add(-1)

	updated, err := p.client.UpdateUser(ctx, p.User().ID, changes)
	if err != nil {
		return core.Profile{}, err
	}

	p.mu.Lock()
	p.user = updated
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "Profile updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldUserID, updated.ID)
	p.changed.notify()
	return updated.Profile(), nil
}
