// Package server provides HTTP routing, middleware, and the login callback listener.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Login Callback Handler
//
// [CallbackHandler] receives the blend backend's post-login redirect. The backend
// completes the Spotify OAuth dance itself and then redirects the user's browser
// to this listener with an auth=success query parameter, optionally carrying a
// bearer token for API requests.
//
// The handler validates the state parameter (CSRF protection) and sends the
// result through a channel. It only processes one callback, so a stale or
// replayed redirect cannot overwrite a delivered result.
//
// # Usage
//
// When the user runs `abx auth login`, a temporary HTTP server starts on the
// configured host and port, the login URL opens in the browser, and [Await]
// blocks until the redirect lands or the context expires.
package server
