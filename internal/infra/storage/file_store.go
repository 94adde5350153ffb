package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"game-vip-service/internal/domain"
	"game-vip-service/internal/domain/model"
	"game-vip-service/internal/domain/ports/repository"
)

const formatVersion = 1

// FileStore persists one keyed map as a JSON file shaped
// {"version": 1, "<field>": {...}}. Every write goes to a temp file in the
// same directory followed by an atomic rename, so a crash mid-write never
// leaves a half-written file behind. All failures wrap domain.ErrStoreIO and
// are fatal to the calling operation; there are no retries.
type FileStore[V any] struct {
	path  string
	field string

	mu  sync.Mutex
	log *zerolog.Logger
}

var _ repository.Store[int] = (*FileStore[int])(nil)

func newFileStore[V any](path, field string, logger *zerolog.Logger) *FileStore[V] {
	l := logger.With().Str("store", field).Str("path", path).Logger()
	return &FileStore[V]{path: path, field: field, log: &l}
}

// NewPlayerStateStore opens the players store under dir.
func NewPlayerStateStore(dir string, logger *zerolog.Logger) *FileStore[*model.PlayerVipState] {
	return newFileStore[*model.PlayerVipState](filepath.Join(dir, "players.json"), "players", logger)
}

// NewVoucherStore opens the vouchers store under dir.
func NewVoucherStore(dir string, logger *zerolog.Logger) *FileStore[*model.VoucherRecord] {
	return newFileStore[*model.VoucherRecord](filepath.Join(dir, "vouchers.json"), "vouchers", logger)
}

// NewHistoryStore opens the history store under dir.
func NewHistoryStore(dir string, logger *zerolog.Logger) *FileStore[[]model.VipHistoryEntry] {
	return newFileStore[[]model.VipHistoryEntry](filepath.Join(dir, "history.json"), "history", logger)
}

func (s *FileStore[V]) Load() (map[string]V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore[V]) Save(m map[string]V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(m)
}

// Mutate runs fn with the store mutex held across the whole
// load-mutate-save sequence. The map is saved only when fn reports dirty.
func (s *FileStore[V]) Mutate(fn func(m map[string]V) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadLocked()
	if err != nil {
		return err
	}
	dirty, err := fn(m)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	return s.saveLocked(m)
}

// View runs fn read-only under the store mutex.
func (s *FileStore[V]) View(fn func(m map[string]V) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadLocked()
	if err != nil {
		return err
	}
	return fn(m)
}

func (s *FileStore[V]) loadLocked() (map[string]V, error) {
	if err := s.ensureExistsLocked(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStoreIO, s.path, err)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrStoreIO, s.path, err)
	}
	m := make(map[string]V)
	if raw, ok := root[s.field]; ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: decode %s.%s: %v", domain.ErrStoreIO, s.path, s.field, err)
		}
	}
	return m, nil
}

func (s *FileStore[V]) saveLocked(m map[string]V) error {
	if m == nil {
		m = make(map[string]V)
	}
	root := map[string]any{
		"version": formatVersion,
		s.field:   m,
	}
	b, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStoreIO, s.path, err)
	}
	return s.atomicWriteLocked(b)
}

// ensureExistsLocked creates the file with an empty map and a version stamp
// on first use.
func (s *FileStore[V]) ensureExistsLocked() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: stat %s: %v", domain.ErrStoreIO, s.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %v", domain.ErrStoreIO, s.path, err)
	}
	s.log.Info().Msg("creating empty store file")
	return s.saveLocked(make(map[string]V))
}

func (s *FileStore[V]) atomicWriteLocked(content []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: temp file for %s: %v", domain.ErrStoreIO, s.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStoreIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", domain.ErrStoreIO, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s -> %s: %v", domain.ErrStoreIO, tmpName, s.path, err)
	}
	return nil
}
