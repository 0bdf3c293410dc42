package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/telemetry/logging"
)

const (
	// keyFileSuffix distinguishes credential files from everything else
	// in the config directory.
	keyFileSuffix = ".key"

	// selectionFile holds the id of the currently active provider.
	selectionFile = "provider"

	// secretFileMode keeps credentials owner-only.
	secretFileMode os.FileMode = 0o600
)

// ErrNoKey reports a provider without a stored credential.
type ErrNoKey struct {
	Provider string
}

func (e *ErrNoKey) Error() string {
	return fmt.Sprintf("no api key stored for provider %q", e.Provider)
}

// Store manages per-provider credential files and the provider
// selection file inside one directory.
type Store struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]string

	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	closeOnce sync.Once
}

// Option customises a Store.
type Option func(*Store)

// WithWatch enables directory watching so keys edited on disk
// invalidate the cache.
func WithWatch() Option {
	return func(s *Store) { s.stopCh = make(chan struct{}) }
}

// NewStore opens (creating if needed) the credential directory.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}

	s := &Store{
		dir:    dir,
		logger: slog.Default().With("component", "secrets"),
		cache:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.stopCh != nil {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch secrets directory: %w", err)
		}
		s.watcher = watcher
		go s.watchLoop()
		s.logger.Info("credential store watching for changes", "dir", dir)
	}

	return s, nil
}

// APIKey returns the stored credential for providerID. The empty
// string with *ErrNoKey means no key is configured.
func (s *Store) APIKey(providerID string) (string, error) {
	if err := validateID(providerID); err != nil {
		return "", err
	}

	s.mu.RLock()
	if value, ok := s.cache[providerID]; ok {
		s.mu.RUnlock()
		return value, nil
	}
	s.mu.RUnlock()

	path := s.keyPath(providerID)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ErrNoKey{Provider: providerID}
		}
		return "", fmt.Errorf("failed to stat key file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("key path is not a regular file: %s", path)
	}
	if mode := info.Mode().Perm(); mode != 0o600 && mode != 0o400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}
	value := strings.TrimSpace(string(data))

	s.mu.Lock()
	s.cache[providerID] = value
	s.mu.Unlock()

	return value, nil
}

// SetAPIKey stores a credential for providerID with owner-only mode.
func (s *Store) SetAPIKey(providerID, key string) error {
	if err := validateID(providerID); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("api key cannot be empty")
	}

	if err := os.WriteFile(s.keyPath(providerID), []byte(key+"\n"), secretFileMode); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}

	s.mu.Lock()
	s.cache[providerID] = key
	s.mu.Unlock()

	s.logger.Info("stored api key", "provider", providerID, "key", logging.MaskSecret(key))
	return nil
}

// DeleteAPIKey removes the stored credential. Deleting a missing key
// is not an error.
func (s *Store) DeleteAPIKey(providerID string) error {
	if err := validateID(providerID); err != nil {
		return err
	}

	if err := os.Remove(s.keyPath(providerID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key file: %w", err)
	}

	s.mu.Lock()
	delete(s.cache, providerID)
	s.mu.Unlock()

	return nil
}

// Providers lists the provider ids that have a stored credential.
func (s *Store) Providers() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, keyFileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, keyFileSuffix))
	}
	return ids, nil
}

// Selected returns the active provider id, or "" when none is chosen.
func (s *Store) Selected() string {
	data, err := os.ReadFile(filepath.Join(s.dir, selectionFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Select persists providerID as the active provider.
func (s *Store) Select(providerID string) error {
	if err := validateID(providerID); err != nil {
		return err
	}
	path := filepath.Join(s.dir, selectionFile)
	if err := os.WriteFile(path, []byte(providerID+"\n"), secretFileMode); err != nil {
		return fmt.Errorf("failed to write provider selection: %w", err)
	}
	s.logger.Info("selected provider", "provider", providerID)
	return nil
}

// Refresh drops the in-memory cache, forcing re-reads from disk.
func (s *Store) Refresh() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Close stops the watcher. Close is idempotent.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.watcher != nil {
			close(s.stopCh)
			err = s.watcher.Close()
		}
	})
	return err
}

func (s *Store) keyPath(providerID string) string {
	return filepath.Join(s.dir, providerID+keyFileSuffix)
}

// validateID rejects ids that could escape the credential directory.
func validateID(providerID string) error {
	if providerID == "" {
		return fmt.Errorf("provider id cannot be empty")
	}
	if strings.ContainsAny(providerID, "/\\") || strings.Contains(providerID, "..") {
		return fmt.Errorf("invalid provider id: %q", providerID)
	}
	return nil
}

// watchLoop invalidates the cache when credential files change on disk.
func (s *Store) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("credential file changed, dropping cache",
				"file", filepath.Base(event.Name),
				"op", event.Op.String(),
			)
			s.Refresh()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("secrets watcher error", "error", err)

		case <-s.stopCh:
			return
		}
	}
}
