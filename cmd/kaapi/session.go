package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
)

const sessionFileName = "session.yaml"

var errNotLoggedIn = errors.New("not logged in: run `kaapi login` first")

// sessionFile is the on-disk form of a logged-in session. It holds live
// credentials and is written with owner-only permissions.
type sessionFile struct {
	SavedAt time.Time       `yaml:"savedAt"`
	Cookies cookies.Session `yaml:"cookies"`
}

func saveSession(path string, session cookies.Session, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := yaml.Marshal(sessionFile{SavedAt: now.UTC(), Cookies: session})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// loadSession reads a saved session. A missing or empty file yields
// errNotLoggedIn.
func loadSession(path string) (cookies.Session, time.Time, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cookies.Session{}, time.Time{}, errNotLoggedIn
	}
	if err != nil {
		return cookies.Session{}, time.Time{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var sf sessionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return cookies.Session{}, time.Time{}, fmt.Errorf("failed to parse session file %s: %w", path, err)
	}

	if sf.Cookies.IsZero() {
		return cookies.Session{}, time.Time{}, errNotLoggedIn
	}
	return sf.Cookies, sf.SavedAt, nil
}

// optionalSession returns the saved session, or the zero session when there
// is none.
func optionalSession(path string) (cookies.Session, error) {
	session, _, err := loadSession(path)
	if errors.Is(err, errNotLoggedIn) {
		return cookies.Session{}, nil
	}
	return session, err
}

func removeSession(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
