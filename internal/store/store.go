// Package store persists explanation attempts as a single JSON array on disk.
//
// The file is append-only from the service's point of view: attempts are
// written once and never updated or deleted. Every read and every
// read-modify-write cycle holds the store mutex, and each write replaces the
// whole file through a temp file and rename, so a reader never observes a
// partially written collection.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"explanation-coach-service/internal/models"
	"explanation-coach-service/internal/observability/metrics"
	"explanation-coach-service/internal/schema"
)

// ErrDuplicateAttempt is returned by Save when the attempt id already exists.
var ErrDuplicateAttempt = errors.New("attempt already exists")

// Repository is the attempt history used by the pipeline and the HTTP layer.
type Repository interface {
	// Save appends a new attempt. It assigns a timestamp when empty.
	Save(ctx context.Context, a *models.Attempt) error

	// LoadAll returns attempts newest first. limit <= 0 returns all.
	LoadAll(ctx context.Context, limit int) []models.Attempt

	// LoadByID returns the attempt with the given id, or false.
	LoadByID(ctx context.Context, id string) (models.Attempt, bool)
}

// FileStore implements Repository on a local JSON file.
type FileStore struct {
	path      string
	mu        sync.Mutex
	validator *schema.Validator
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFileStore creates a store backed by path. The file and its directory are
// created on first use.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:      path,
		validator: schema.New(),
		metrics:   metrics.DefaultMetrics,
		logger:    log.With().Str("component", "store").Str("path", path).Logger(),
		now:       time.Now,
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Save implements Repository.
func (s *FileStore) Save(ctx context.Context, a *models.Attempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("save attempt: %w", schema.ErrInvalidAttempt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Timestamp == "" {
		a.Timestamp = s.now().UTC().Format(models.TimestampLayout)
	}
	if a.ReferencedChunkIDs == nil {
		a.ReferencedChunkIDs = []int{}
	}
	if err := s.validator.Validate(a); err != nil {
		s.metrics.RecordStoreOperation("save", err)
		return err
	}

	attempts, corrupt := s.readLocked()
	if corrupt != nil {
		s.backupLocked(corrupt)
	}

	for _, existing := range attempts {
		if existing.AttemptID == a.AttemptID {
			s.metrics.RecordStoreOperation("save", ErrDuplicateAttempt)
			return fmt.Errorf("save attempt %s: %w", a.AttemptID, ErrDuplicateAttempt)
		}
	}

	attempts = append(attempts, *a)
	if err := s.writeLocked(attempts); err != nil {
		s.metrics.RecordStoreOperation("save", err)
		return fmt.Errorf("save attempt %s: %w", a.AttemptID, err)
	}

	s.metrics.RecordStoreOperation("save", nil)
	s.metrics.SetHistorySize(len(attempts))
	s.logger.Debug().
		Str("attemptId", a.AttemptID).
		Int("total", len(attempts)).
		Msg("Attempt saved")
	return nil
}

// LoadAll implements Repository.
func (s *FileStore) LoadAll(ctx context.Context, limit int) []models.Attempt {
	s.mu.Lock()
	attempts, _ := s.readLocked()
	s.mu.Unlock()

	s.metrics.RecordStoreOperation("load_all", nil)

	// Timestamps compare as strings; TimestampLayout keeps that chronological.
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].Timestamp > attempts[j].Timestamp
	})

	if limit > 0 && len(attempts) > limit {
		attempts = attempts[:limit]
	}
	return attempts
}

// LoadByID implements Repository.
func (s *FileStore) LoadByID(ctx context.Context, id string) (models.Attempt, bool) {
	s.mu.Lock()
	attempts, _ := s.readLocked()
	s.mu.Unlock()

	s.metrics.RecordStoreOperation("load_by_id", nil)

	for _, a := range attempts {
		if a.AttemptID == id {
			return a, true
		}
	}
	return models.Attempt{}, false
}

// readLocked returns the stored attempts. A missing file is initialized as
// an empty array. Unparseable content is reported as empty and its raw
// bytes are returned so the next write can preserve them.
func (s *FileStore) readLocked() ([]models.Attempt, []byte) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.writeLocked([]models.Attempt{}); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to initialize history file")
		}
		return []models.Attempt{}, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read history file")
		return []models.Attempt{}, nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Attempt{}, nil
	}

	var attempts []models.Attempt
	if err := json.Unmarshal(data, &attempts); err != nil {
		s.metrics.RecordStoreCorruption()
		s.logger.Error().Err(err).Int("bytes", len(data)).Msg("History file is corrupt, treating as empty")
		return []models.Attempt{}, data
	}
	if attempts == nil {
		attempts = []models.Attempt{}
	}
	return attempts, nil
}

func (s *FileStore) backupLocked(data []byte) {
	backup := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("backup", backup).Msg("Failed to preserve corrupt history file")
		return
	}
	s.logger.Warn().Str("backup", backup).Msg("Preserved corrupt history file")
}

func (s *FileStore) writeLocked(attempts []models.Attempt) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	payload, err := json.MarshalIndent(attempts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
