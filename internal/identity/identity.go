package identity

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const fileName = "identity.json"

type record struct {
	UserID string `json:"user_id"`
}

// Store resolves the per-install opaque user identifier. The identifier is
// generated once and persisted under the user config directory; if the
// directory is not writable the identifier lives for the process lifetime
// only.
type Store struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
	id string
}

func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// UserID returns the persisted identifier, creating and persisting a new one
// on first use.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		return s.id
	}

	if id, ok := s.load(); ok {
		s.id = id
		return s.id
	}

	s.id = uuid.NewString()
	if err := s.persist(s.id); err != nil {
		s.logger.Warn("identity not persisted, using process-lifetime id", "error", err)
	}
	return s.id
}

func (s *Store) load() (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, fileName))
	if err != nil {
		return "", false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("identity file unreadable, regenerating", "error", err)
		return "", false
	}
	id := strings.TrimSpace(rec.UserID)
	return id, id != ""
}

// persist writes via a temp file and rename so a crash never leaves a
// half-written identity behind.
func (s *Store) persist(id string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(record{UserID: id})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "identity-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, fileName)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
