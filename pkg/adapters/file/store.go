package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/shopkeep/pkg/domain"
)

const ext = ".json"

// tempPrefix names in-flight writes. Like every dot file they are never listed.
const tempPrefix = ".session-"

// Store implements ports.SessionStore using the local filesystem.
// It stores sessions as JSON files in a configured directory.
// Cross-process exclusion is left to the session manager's locker.
type Store struct {
	BasePath string
}

// NewStore creates a new Store with the given base path.
// If basePath is empty, it defaults to ".shopkeep/sessions".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".shopkeep", "sessions")
	}
	return &Store{BasePath: basePath}
}

// path maps a session ID to a file name. IDs are escaped so that
// separators and dots cannot leave BasePath.
// path escapes the ID into a single file name. A leading dot is escaped too,
// so only temporary and foreign files are hidden.
func (f *Store) path(sessionID string) string {
	name := url.PathEscape(sessionID)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return filepath.Join(f.BasePath, name+ext)
}

// Save persists the session to a JSON file. The write goes through a
// temporary file and a rename so readers never see a partial document.
func (f *Store) Save(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return domain.ErrInvalidSessionID
	}

	if err := os.MkdirAll(f.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(f.BasePath, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(sess.ID)); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load retrieves the session from its JSON file.
func (f *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidSessionID
	}

	data, err := os.ReadFile(f.path(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes the session file.
func (f *Store) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrInvalidSessionID
	}

	err := os.Remove(f.path(sessionID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session IDs.
func (f *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ext {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		sessions = append(sessions, id)
	}
	return sessions, nil
}
