package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileTokenStore keeps each token in <dir>/<name>.token
type FileTokenStore struct {
	dir string
}

// NewFileTokenStore creates a FileTokenStore rooted at dir
func NewFileTokenStore(dir string) *FileTokenStore {
	return &FileTokenStore{dir: dir}
}

// GetToken reads the named token, trimming surrounding whitespace
func (s *FileTokenStore) GetToken(ctx context.Context, name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// SetToken writes the named token with owner-only permissions
func (s *FileTokenStore) SetToken(ctx context.Context, name, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path(name), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) path(name string) string {
	return filepath.Join(s.dir, name+".token")
}
