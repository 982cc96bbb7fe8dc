// Package session decides whether the user counts as logged in.
//
// No single source answers that question reliably: the token file may exist
// while the backend session expired, a login may have just completed in this
// run without a token being handed over, and the backend probe can fail for
// reasons that say nothing about the session. The [Resolver] therefore
// OR-combines four evidence sources and always recomputes the whole
// [State] rather than patching individual fields.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/artistblend/abx/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// Backend is the slice of the API client the resolver needs.
type Backend interface {
	Probe(ctx context.Context) bool
	Logout(ctx context.Context)
}

// Evidence records which sources contributed to an authenticated state.
type Evidence struct {
	Token    bool // a bearer token is stored locally
	Redirect bool // a login hand-off completed during this run
	RunFlag  bool // this run previously recorded a completed login
	Probe    bool // the backend confirmed the session
}

// State is the resolver's verdict. Authenticated is the OR of all evidence.
type State struct {
	Authenticated bool
	Evidence      Evidence
}

// LoginResult is returned after a completed login hand-off.
type LoginResult struct {
	State    State
	Notice   bool   // show the one-time logged-in notice
	ReturnTo string // pending destination, consumed exactly once
}

// Resolver computes session state from the store, the current run, and the
// backend probe.
type Resolver struct {
	store    *Store
	backend  Backend
	logger   *log.Logger
	runID    string
	redirect bool
	state    State
}

// NewResolver creates a resolver for a fresh process run.
func NewResolver(store *Store, backend Backend, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		store:   store,
		backend: backend,
		logger:  logger,
		runID:   shared.GenerateID(),
	}
}

// Resolve recomputes the full session state.
//
// The probe is only attempted when the redirect or run flag already suggest
// a session exists; a cold start with no local evidence never hits the
// network. Probe failures are neutral, they clear nothing.
func (r *Resolver) Resolve(ctx context.Context) State {
	var ev Evidence

	token, err := r.store.LoadToken()
	if err != nil {
		r.logger.Warn("unreadable token file", "error", err)
	}
	ev.Token = token != nil && token.AccessToken != ""
	ev.Redirect = r.redirect
	ev.RunFlag = r.store.HasRunFlag(r.runID)

	if ev.Redirect || ev.RunFlag {
		ev.Probe = r.backend.Probe(ctx)
	}

	r.state = State{
		Authenticated: ev.Token || ev.Redirect || ev.RunFlag || ev.Probe,
		Evidence:      ev,
	}
	return r.state
}

// State returns the last resolved state without recomputing.
func (r *Resolver) State() State {
	return r.state
}

// CompleteLogin applies the result of a login hand-off: the token (when the
// backend passed one through the redirect) is persisted, the run flag set,
// and the pending destination consumed. The returned result carries the
// one-time notice exactly once per hand-off.
func (r *Resolver) CompleteLogin(ctx context.Context, accessToken string) (LoginResult, error) {
	if accessToken != "" {
		if err := r.store.SaveToken(&oauth2.Token{AccessToken: accessToken}); err != nil {
			return LoginResult{}, fmt.Errorf("failed to persist token: %w", err)
		}
	}

	if err := r.store.SetRunFlag(r.runID); err != nil {
		return LoginResult{}, err
	}
	r.redirect = true

	return LoginResult{
		State:    r.Resolve(ctx),
		Notice:   true,
		ReturnTo: r.store.ConsumeReturnTo(),
	}, nil
}

// Watch polls the token file's mtime and re-resolves when it changes, so a
// login or logout in another process converges this one. States are sent on
// the returned channel until ctx is done.
func (r *Resolver) Watch(ctx context.Context, interval time.Duration) <-chan State {
	states := make(chan State, 1)
	last := r.store.TokenModTime()

	go func() {
		defer close(states)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current := r.store.TokenModTime()
				if current.Equal(last) {
					continue
				}
				last = current

				state := r.Resolve(ctx)
				select {
				case states <- state:
				default:
				}
			}
		}
	}()

	return states
}

// Logout ends the session everywhere this process can reach: the backend
// session (failures swallowed by the client), the token file, the run flag,
// and any pending destination. The history cache slot is left untouched so
// saved blends survive the logout.
func (r *Resolver) Logout(ctx context.Context) error {
	r.backend.Logout(ctx)

	if err := r.store.DeleteToken(); err != nil {
		return err
	}
	if err := r.store.ClearRunFlag(); err != nil {
		return err
	}
	r.store.ConsumeReturnTo()

	r.redirect = false
	r.state = State{}
	return nil
}
