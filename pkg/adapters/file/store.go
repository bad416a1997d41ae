package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/novapay/pkg/domain"
	"gopkg.in/yaml.v3"
)

const ext = ".yaml"

// Store implements ports.StateStore using the local filesystem.
// It stores each session as a YAML document in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".novapay/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".novapay", "sessions")
	}
	return &Store{BasePath: basePath}
}

// Save persists the session state atomically: it writes a temp file in the
// same directory, fsyncs it and renames it over the destination.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if err := validID(sessionID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+sessionID+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	destPath := s.path(sessionID)
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing session file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to valid session: %w", err)
	}
	return nil
}

// Load retrieves the session state from its YAML file.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	if err := validID(sessionID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var state domain.State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	if state.Payload == nil {
		state.Payload = make(map[string]any)
	}
	return &state, nil
}

// Delete removes the session file. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := validID(sessionID); err != nil {
		return err
	}
	if err := os.Remove(s.path(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns the session IDs found in the base directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ext))
	}
	sort.Strings(sessions)
	return sessions, nil
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.BasePath, sessionID+ext)
}

func validID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return fmt.Errorf("invalid sessionID %q", sessionID)
	}
	return nil
}
