package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/artistblend/abx/internal/shared"
	"github.com/charmbracelet/log"
)

// CallbackResult contains the outcome of a login hand-off.
type CallbackResult struct {
	Token string // bearer token when the backend handed one through the redirect
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the backend's post-login redirect.
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler expecting the given state token.
// The state token should be cryptographically random for CSRF protection;
// [shared.GenerateID] is sufficient.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the redirect request.
//
// Validates the state parameter, reads the auth outcome and optional token
// from the query, and sends the result through the result channel. The
// query parameters are consumed here and never persisted, so the success
// marker cannot leak into a later run.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle the redirect once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if state := query.Get("state"); h.state != "" && state != h.state {
		err := fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if auth := query.Get("auth"); auth != "success" {
		reason := query.Get("error")
		if reason == "" {
			reason = "login did not complete"
		}
		err := fmt.Errorf("%w: %s", shared.ErrAuthFailed, reason)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Login failed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Token: query.Get("token")})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Login Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Logged In</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving the hand-off completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

// Await runs a temporary listener on addr until the redirect lands or ctx
// expires, and returns the hand-off result.
func Await(ctx context.Context, addr string, handler *CallbackHandler, logger *log.Logger) (CallbackResult, error) {
	if logger == nil {
		logger = log.Default()
	}

	router := NewBasicRouter()
	router.Use(Logging(logger))
	router.Handler(handler)

	srv := &http.Server{Addr: addr, Handler: router}
	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case result := <-handler.Result():
		return result, nil
	case err := <-errChan:
		return CallbackResult{}, fmt.Errorf("callback listener failed: %w", err)
	case <-ctx.Done():
		return CallbackResult{}, fmt.Errorf("%w: no login redirect received", shared.ErrTimeout)
	}
}
