package state

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/five82/brokerdesk/internal/brokerapi"
)

// Snapshot is the latest raw collection fetched for one screen.
type Snapshot struct {
	Items               []brokerapi.Record
	Loaded              bool // at least one fetch has succeeded
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
	Generation          uint64 // bumped on every successful fetch
}

// IsOffline returns true when the API has been unreachable for multiple fetches.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the per-screen snapshots.
type Store struct {
	mu      sync.RWMutex
	screens map[string]*Snapshot
}

// Update records a fetch result for screen. When err is non-nil the previous
// items are kept but the error is recorded for visibility.
func (s *Store) Update(screen string, items []brokerapi.Record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screens == nil {
		s.screens = make(map[string]*Snapshot)
	}
	snap, ok := s.screens[screen]
	if !ok {
		snap = &Snapshot{}
		s.screens[screen] = snap
	}

	if err != nil {
		snap.LastError = err
		snap.LastUpdated = time.Now()
		snap.ConsecutiveFailures++
		return
	}

	snap.Items = brokerapi.CloneRecords(items)
	snap.Loaded = true
	snap.LastError = nil
	snap.LastUpdated = time.Now()
	snap.ConsecutiveFailures = 0
	snap.Generation++
}

// Snapshot returns a copy of the current snapshot for screen.
func (s *Store) Snapshot(screen string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.screens[screen]
	if !ok {
		return Snapshot{}
	}
	snap := *stored
	snap.Items = brokerapi.CloneRecords(stored.Items)
	if stored.LastError != nil {
		snap.LastError = fmt.Errorf("%w", stored.LastError)
	}
	return snap
}

// Screens lists the screens that have any recorded result.
func (s *Store) Screens() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.screens))
	for id := range s.screens {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Reset drops every snapshot. Called when the session ends so the next user
// never sees the previous user's rows.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screens = nil
}
