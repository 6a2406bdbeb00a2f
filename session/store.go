package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenKey is the storage key the session token is persisted under
const TokenKey = "authToken"

// TokenStore is the durable client-side slot holding the session token.
// An empty token means anonymous.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	ClearToken() error
}

// MemoryStore keeps the token in process memory. The web console seeds it
// from the session cookie and writes it back after every request.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates a store holding the given token
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) ClearToken() error {
	return s.SetToken("")
}

// FileStore persists the token in <dir>/authToken, used by the CLI so the
// token survives between invocations.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, TokenKey)}
}

// Path returns the token file location
func (s *FileStore) Path() string {
	return s.path
}

// Token returns the stored token, or "" when the file is missing or unreadable
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *FileStore) SetToken(token string) error {
	if token == "" {
		return s.ClearToken()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write temp token file: %w", err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp token file: %w", err)
	}
	return nil
}

func (s *FileStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
