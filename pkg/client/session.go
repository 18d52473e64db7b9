package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"goingmarry-api/internal/model"
)

// Session is the locally persisted login state: the bearer token and a
// snapshot of the seller profile. Both are set and cleared together.
type Session struct {
	Token  string        `json:"token"`
	Seller *model.Seller `json:"seller"`
}

// Active reports whether a seller is logged in.
func (s *Session) Active() bool {
	return s.Token != "" && s.Seller != nil
}

// SessionStore persists the session to a single JSON file.
type SessionStore struct {
	path string
}

// NewSessionStore creates a store at the given file path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load reads the persisted session. A missing file yields an empty session.
func (st *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Session{}, nil
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// Corrupt session files are treated as logged out.
		return &Session{}, nil
	}
	return &s, nil
}

// Establish persists a fresh login.
func (st *SessionStore) Establish(token string, seller *model.Seller) error {
	data, err := json.MarshalIndent(Session{Token: token, Seller: seller}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(st.path, data, 0o600)
}

// Clear removes the persisted session. Clearing an absent session is fine.
func (st *SessionStore) Clear() error {
	err := os.Remove(st.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ValidateNewPassword applies the client-side password rules before a
// change-password request is sent.
func ValidateNewPassword(next, confirm string) error {
	if next != confirm {
		return errors.New("New passwords don't match")
	}
	if len(next) < 6 {
		return errors.New("Password must be at least 6 characters")
	}
	return nil
}
