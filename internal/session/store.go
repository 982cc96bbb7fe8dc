package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	tokenFileName    = "token.json"
	flagFileName     = "session"
	returnToFileName = "return_to"
)

// Store persists login evidence as files under the state directory.
//
// Three slots exist: the bearer token (shared across processes), a run flag
// holding the id of the process run that last completed a login hand-off,
// and a pending post-login destination consumed at most once.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory must already exist,
// typically via [shared.Config.StateDir].
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// TokenPath returns the token file location, for mtime watching.
func (s *Store) TokenPath() string {
	return filepath.Join(s.dir, tokenFileName)
}

// SaveToken persists the bearer token with owner-only permissions.
func (s *Store) SaveToken(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(s.TokenPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// LoadToken reads the stored token. A missing file is not an error and
// returns (nil, nil).
func (s *Store) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.TokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// DeleteToken removes the stored token. Missing file is a no-op.
func (s *Store) DeleteToken() error {
	err := os.Remove(s.TokenPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// AccessToken returns the stored bearer token string, or "" when absent or
// unreadable. Suitable as a [services.Client] token func.
func (s *Store) AccessToken() string {
	token, err := s.LoadToken()
	if err != nil || token == nil {
		return ""
	}
	return token.AccessToken
}

// TokenModTime returns the token file's last modification time, or the zero
// time when the file is absent.
func (s *Store) TokenModTime() time.Time {
	info, err := os.Stat(s.TokenPath())
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// SetRunFlag records that the given process run completed a login hand-off.
func (s *Store) SetRunFlag(runID string) error {
	path := filepath.Join(s.dir, flagFileName)
	if err := os.WriteFile(path, []byte(runID), 0600); err != nil {
		return fmt.Errorf("failed to write session flag: %w", err)
	}
	return nil
}

// HasRunFlag reports whether the session flag belongs to the given run.
// Flags left behind by other runs do not count.
func (s *Store) HasRunFlag(runID string) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, flagFileName))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == runID
}

// ClearRunFlag removes the session flag. Missing file is a no-op.
func (s *Store) ClearRunFlag() error {
	err := os.Remove(filepath.Join(s.dir, flagFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session flag: %w", err)
	}
	return nil
}

// SetReturnTo records the destination to resume after login completes.
func (s *Store) SetReturnTo(dest string) error {
	path := filepath.Join(s.dir, returnToFileName)
	if err := os.WriteFile(path, []byte(dest), 0600); err != nil {
		return fmt.Errorf("failed to write return destination: %w", err)
	}
	return nil
}

// ConsumeReturnTo reads and deletes the pending destination. Returns ""
// when none is pending; a second call after a consume returns "".
func (s *Store) ConsumeReturnTo() string {
	path := filepath.Join(s.dir, returnToFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	os.Remove(path)
	return strings.TrimSpace(string(data))
}
