// Package session holds the authenticated account identity between runs
// and resolves it to the authoritative profile record on startup.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/zarlcorp/core/pkg/zfilesystem"
)

const identityFile = "identity"

// ErrNoIdentity signals that no authenticated identity is available and
// the caller should return to the login flow.
var ErrNoIdentity = errors.New("no authenticated identity")

// Persistence selects which tier an identity is written to.
type Persistence int

const (
	// Durable survives across runs ("remember me").
	Durable Persistence = iota
	// SessionOnly lasts for the current process.
	SessionOnly
)

// Store keeps the authenticated account id in two tiers: a durable file
// and a process-lifetime value. Writing one tier never clears the other;
// the durable tier wins on read.
type Store struct {
	fs      zfilesystem.ReadWriteFileFS
	session string
}

// NewStore creates a Store whose durable tier lives on fsys.
func NewStore(fsys zfilesystem.ReadWriteFileFS) *Store {
	return &Store{fs: fsys}
}

// Set writes id to the tier selected by p.
func (s *Store) Set(id string, p Persistence) error {
	if p == SessionOnly {
		s.session = id
		return nil
	}

	if err := s.fs.WriteFile(identityFile, []byte(id), 0o600); err != nil {
		return fmt.Errorf("set identity: %w", err)
	}
	return nil
}

// Get returns the active identity, durable tier first.
func (s *Store) Get() (string, bool) {
	if data, err := s.fs.ReadFile(identityFile); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, true
		}
	}

	if s.session != "" {
		return s.session, true
	}

	return "", false
}

// Clear removes the identity from both tiers.
func (s *Store) Clear() error {
	s.session = ""

	if err := s.fs.Remove(identityFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}
