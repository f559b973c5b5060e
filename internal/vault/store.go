package vault

import (
	"os"
	"path/filepath"
)

// FileStore is the host filesystem surface the sync core needs. The daemon
// wires the OS implementation; tests substitute their own.
type FileStore interface {
	Exists(path string) bool
	MkdirAll(path string) error
	ReadFile(path string) (string, error)
	WriteFile(path string, content string) error
	WriteBinary(path string, data []byte) error
}

// OSStore implements FileStore on the local filesystem.
type OSStore struct{}

func NewOSStore() *OSStore {
	return &OSStore{}
}

func (s *OSStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *OSStore) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (s *OSStore) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *OSStore) WriteFile(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func (s *OSStore) WriteBinary(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
