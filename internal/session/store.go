// Package session holds the terminal's authenticated session: the bearer
// credential handed back by the backend at login, persisted locally so the
// terminal survives a restart without re-login. The store is injected into
// the backend client as a token source; it owns no auth logic itself.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Credential is the persisted login result.
type Credential struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

type Store struct {
	mu   sync.RWMutex
	path string
	cred Credential
}

// Load opens the store at path, reading any persisted credential. A missing
// file means a logged-out terminal, not an error.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if err := json.Unmarshal(data, &s.cred); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return s, nil
}

// Token returns the bearer credential, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Token
}

func (s *Store) Credential() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

// Set stores and persists a new credential (login).
func (s *Store) Set(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	s.cred = cred
	return nil
}

// Clear wipes the credential and removes the file (logout).
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = Credential{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
