// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for blending playlists:
//  1. [FormView] : Type a comma-separated artist list with live suggestions
//  2. [TracksView] : Review the generated blend, save it, or push it to Spotify
//  3. [HistoryView] : Browse saved blends, delete entries, clear the local copy
//  4. [LoginView] : Shown when the backend demands a fresh login
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Artist suggestions flow from a [search.Debouncer] through a channel into
// tea messages, so typing stays responsive while lookups run; a stale lookup
// result never overwrites a newer one.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc) with contextual help displayed via charmbracelet/bubbles/help.
package ui
