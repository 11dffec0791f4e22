package quota

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/expsdz/petroagent/internal/log"
)

// Store persists a Directory as a flat JSON file. Reads fall back to the
// built-in default directory; writes are synchronous and atomic (temp file
// plus rename) under an advisory file lock. The lock covers individual
// saves only; it does not serialize a check-then-debit sequence across
// processes, which remains a documented race.
type Store struct {
	path   string
	lock   *flock.Flock
	logger log.Logger
}

// NewStore creates a Store for the users file at path.
func NewStore(path string, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Path returns the users file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the directory from disk. A missing or corrupt file is not an
// error: the default directory is returned in memory and only reaches disk
// if a later save succeeds.
func (s *Store) Load(now time.Time) *Directory {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("reading users file failed, using defaults",
				"path", s.path, "error", err)
		}
		return DefaultDirectory(now)
	}

	dir, err := decodeDirectory(data)
	if err != nil {
		s.logger.Warn("users file corrupt, using defaults",
			"path", s.path, "error", err)
		return DefaultDirectory(now)
	}
	if dir.Users == nil {
		dir.Users = make(map[string]*UserRecord)
	}
	return dir
}

// Save writes the directory back to disk. The caller treats a failure as
// non-fatal; the in-memory directory stays authoritative either way.
func (s *Store) Save(dir *Directory) error {
	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking users file: %w", err)
	}
	if locked {
		defer func() { _ = s.lock.Unlock() }()
	}

	data, err := json.MarshalIndent(dir, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding users file: %w", err)
	}

	dirName := filepath.Dir(s.path)
	if err := os.MkdirAll(dirName, 0o750); err != nil {
		return fmt.Errorf("creating users file directory: %w", err)
	}

	tmp, err := os.CreateTemp(dirName, ".users-*.json")
	if err != nil {
		return fmt.Errorf("creating temp users file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing users file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp users file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing users file: %w", err)
	}
	return nil
}
