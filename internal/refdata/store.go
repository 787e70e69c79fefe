package refdata

import (
	"sync/atomic"
	"time"

	"github.com/rpgo/policy-projector/internal/domain"
)

type snapshot struct {
	ref      *domain.ReferenceData
	loadedAt time.Time
}

// Store holds the current reference data snapshot. Readers never block; Refresh swaps in a new
// snapshot only when the reload succeeds.
type Store struct {
	loader  *Loader
	current atomic.Pointer[snapshot]
}

// NewStore creates a store backed by loader. The store is empty until Refresh or Set.
func NewStore(loader *Loader) *Store {
	return &Store{loader: loader}
}

// Current returns the active snapshot, or empty reference data when nothing is loaded.
func (s *Store) Current() *domain.ReferenceData {
	if snap := s.current.Load(); snap != nil {
		return snap.ref
	}
	return &domain.ReferenceData{}
}

// LoadedAt reports when the active snapshot was installed; zero when empty.
func (s *Store) LoadedAt() time.Time {
	if snap := s.current.Load(); snap != nil {
		return snap.loadedAt
	}
	return time.Time{}
}

// Ready reports whether a snapshot has been installed.
func (s *Store) Ready() bool { return s.current.Load() != nil }

// Set installs ref directly.
func (s *Store) Set(ref *domain.ReferenceData) {
	s.current.Store(&snapshot{ref: ref, loadedAt: time.Now()})
}

// Refresh rereads every table from disk. On failure the previous snapshot stays active.
func (s *Store) Refresh() error {
	ref, err := s.loader.Reload()
	if err != nil {
		s.loader.logger.Errorf("reference data refresh failed: %v", err)
		return err
	}
	s.Set(ref)
	return nil
}
