// Package session owns the per-user state of the client: the expense store
// and the profile store, created at login and torn down at logout. There are
// no ambient globals; everything that needs store access receives a Session.
package session

import (
	"context"

	"onero/internal/api"
	"onero/internal/core"
	"onero/internal/log"
)

// Session is the explicit context object for one signed-in user. One
// instance exists per session; it is the single logical writer over its
// stores.
type Session struct {
	Expenses *ExpenseStore
	Profile  *ProfileStore
}

// Login authenticates against the external store and builds a session
// seeded with the returned user. The initial expense load is attempted
// eagerly; if it fails the expense list silently stays empty, the session is
// still usable and a later Load can recover.
func Login(ctx context.Context, client *api.Client, logger *log.Logger, email, password string) (*Session, error) {
	user, err := client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return start(ctx, client, logger, user, log.OpLogin), nil
}

// Register creates a new account and starts a session for it.
func Register(ctx context.Context, client *api.Client, logger *log.Logger, params api.RegisterParams) (*Session, error) {
	user, err := client.Register(ctx, params)
	if err != nil {
		return nil, err
	}
	return start(ctx, client, logger, user, log.OpRegister), nil
}

func start(ctx context.Context, client *api.Client, logger *log.Logger, user core.User, op string) *Session {
	slog := logger.WithComponent(log.ComponentSession)
	s := &Session{
		Expenses: newExpenseStore(client, user.ID, logger),
		Profile:  newProfileStore(client, user, logger),
	}
	slog.InfoContext(ctx, "Session started",
		log.FieldOperation, op,
		log.FieldUserID, user.ID)

	if err := s.Expenses.Load(ctx); err != nil {
		// a failed initial load is not fatal: the list stays empty
		slog.WarnContext(ctx, "Initial expense load failed",
			log.FieldOperation, log.OpLoad,
			log.FieldUserID, user.ID,
			log.FieldError, err.Error())
	}
	return s
}

// User returns the signed-in user record.
func (s *Session) User() core.User {
	return s.Profile.User()
}

// InFlight reports whether either store has a pending external call.
func (s *Session) InFlight() bool {
	return s.Expenses.InFlight() || s.Profile.InFlight()
}
