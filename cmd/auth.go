package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/artistblend/abx/internal/server"
	"github.com/artistblend/abx/internal/shared"
	"github.com/urfave/cli/v3"
)

const loginTimeout = 2 * time.Minute

// AuthLogin drives the browser login hand-off. A one-shot callback listener
// captures the backend's redirect and the resolver records the completed
// session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	state := shared.GenerateID()
	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)

	query := url.Values{}
	query.Set("redirect_uri", fmt.Sprintf("http://%s/callback", serverAddr))
	query.Set("state", state)
	loginURL := r.client.LoginURL() + "?" + query.Encode()

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", loginURL)
	} else {
		r.writePlain("→ Opening browser for Spotify login...\n")
		if err := shared.OpenBrowser(loginURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", loginURL)
		}
	}

	r.writePlain("→ Waiting for login (2 minute timeout)...\n")

	waitCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	handler := server.NewCallbackHandler(state)
	result, err := server.Await(waitCtx, serverAddr, handler, r.logger)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if result.Error() != nil {
		return fmt.Errorf("login failed: %w", result.Error())
	}

	login, err := r.resolver.CompleteLogin(ctx, result.Token)
	if err != nil {
		return err
	}

	r.writePlainln("✓ Logged in")
	if result.Token != "" {
		r.writePlain("✓ Token saved to %s\n", r.store.TokenPath())
	}
	if login.ReturnTo != "" {
		r.writePlain("Picking up where you left off: %s\n", login.ReturnTo)
	}

	return nil
}

// AuthStatus resolves and reports the current session state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	state := r.resolver.Resolve(ctx)

	if cmd.Bool("json") {
		return r.writeJSON(state, cmd.Bool("pretty"))
	}

	if state.Authenticated {
		r.writePlain("✓ Logged in\n\n")
	} else {
		r.writePlain("✗ Not logged in\n\n")
		r.writePlain("Run 'abx auth login' to log in with Spotify\n")
		return nil
	}

	r.writePlain("Evidence:\n")
	r.writePlain("  Stored token:    %v\n", state.Evidence.Token)
	r.writePlain("  Login hand-off:  %v\n", state.Evidence.Redirect)
	r.writePlain("  Session flag:    %v\n", state.Evidence.RunFlag)
	r.writePlain("  Backend probe:   %v\n", state.Evidence.Probe)

	return nil
}

// AuthLogout clears the stored token and session flag. The history cache
// survives so saved blends remain browsable offline.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.resolver.Logout(ctx); err != nil {
		return err
	}

	r.writePlain("✓ Logged out\n")
	r.writePlain("Saved blends are kept locally. Run 'abx history clear' to remove them.\n")
	return nil
}
