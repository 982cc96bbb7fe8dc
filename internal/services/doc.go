// Package services provides the HTTP client for the ArtistBlend backend.
//
// The backend brokers Spotify OAuth, generates blended track lists, and
// stores playlist history server-side. The [Client] wraps its JSON API:
//
//   - POST /api/playlist/generate : blend a track list from a set of artists
//   - GET  /api/search/artists    : artist name suggestions
//   - POST /api/playlist/create   : create the playlist on Spotify
//   - GET/POST /api/history       : list and save history entries
//   - DELETE /api/history/{id}    : remove a history entry
//   - GET  /api/auth/me           : session probe
//   - POST /logout                : end the backend session
//
// 401 and 403 responses surface as [shared.ErrUnauthorized] so callers can
// distinguish an expired session from transport failures. The artist search
// endpoint is throttled client-side with a [rate.Limiter] since interactive
// typing can otherwise burst requests.
package services
