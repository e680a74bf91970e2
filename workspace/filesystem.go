package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore persists workspace files under a root directory, one
// subdirectory per run. This is the store used by real runs so operators
// can open screenshots and reports directly.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates the root directory if needed and returns a
// store rooted there.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

// Root returns the directory the store writes under.
func (s *FilesystemStore) Root() string { return s.root }

// Save writes the file under root/runID/name, creating the run
// directory on first use.
func (s *FilesystemStore) Save(runID, name string, data []byte) error {
	path, err := s.path(runID, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write workspace file: %w", err)
	}
	return nil
}

// Get reads the stored file bytes or returns ErrNotFound.
func (s *FilesystemStore) Get(runID, name string) ([]byte, error) {
	path, err := s.path(runID, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read workspace file: %w", err)
	}
	return data, nil
}

// List returns the file names stored for the run, sorted by name.
func (s *FilesystemStore) List(runID string) ([]string, error) {
	if !validName(runID) {
		return nil, ErrInvalidName
	}
	entries, err := os.ReadDir(filepath.Join(s.root, runID))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list workspace files: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Delete removes the file or returns ErrNotFound.
func (s *FilesystemStore) Delete(runID, name string) error {
	path, err := s.path(runID, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete workspace file: %w", err)
	}
	return nil
}

func (s *FilesystemStore) path(runID, name string) (string, error) {
	if !validName(runID) || !validName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, runID, name), nil
}

// validName rejects names that would resolve outside the run directory.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
