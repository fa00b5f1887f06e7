package role

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/metrics"
)

// Snapshot is an immutable view of role configuration.
//
// Unknown role ids resolve to the fallback profile. An activity tagged with a
// role nobody configured is still scored, never rejected.
type Snapshot struct {
	profiles map[string]role.Profile
	fallback role.Profile
	loadedAt time.Time
}

// NewSnapshot copies profiles into a new immutable snapshot.
func NewSnapshot(profiles []role.Profile, fallback role.Profile, loadedAt time.Time) *Snapshot {
	m := make(map[string]role.Profile, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	return &Snapshot{profiles: m, fallback: fallback, loadedAt: loadedAt}
}

// Get implements role.Lookup.
func (s *Snapshot) Get(id string) role.Profile {
	if p, ok := s.profiles[id]; ok {
		return p
	}
	metrics.IncrementRoleFallback()
	return s.fallback
}

// Lookup reports whether id is configured, without falling back.
func (s *Snapshot) Lookup(id string) (role.Profile, bool) {
	p, ok := s.profiles[id]
	return p, ok
}

func (s *Snapshot) Fallback() role.Profile { return s.fallback }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

func (s *Snapshot) Len() int { return len(s.profiles) }

// Profiles returns the configured profiles ordered by id.
func (s *Snapshot) Profiles() []role.Profile {
	out := make([]role.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Cache is the process-wide role profile store. Readers never block:
// Refresh builds a complete snapshot off to the side and swaps the pointer.
type Cache struct {
	source   role.ProfileRepository
	fallback role.Profile
	now      func() time.Time

	snapshot atomic.Pointer[Snapshot]
	// serializes refreshes; readers never take it
	refreshMu sync.Mutex
}

// NewCache loads the first snapshot eagerly; a cache that cannot load at
// startup is an error.
func NewCache(ctx context.Context, source role.ProfileRepository, fallback role.Profile) (*Cache, error) {
	c := &Cache{
		source:   source,
		fallback: fallback,
		now:      time.Now,
	}
	if _, err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Get implements role.Lookup against the current snapshot.
func (c *Cache) Get(id string) role.Profile {
	return c.Snapshot().Get(id)
}

// Snapshot returns the current snapshot. Callers computing a whole batch
// should hold on to one snapshot for the duration of the run.
func (c *Cache) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Refresh re-reads the source and swaps in a new snapshot. On failure the
// previous snapshot stays in place.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	profiles, err := c.source.ListProfiles(ctx)
	if err != nil {
		metrics.IncrementRoleRefreshFailure()
		return nil, fmt.Errorf("failed to load role profiles: %w", err)
	}

	next := NewSnapshot(profiles, c.fallback, c.now())
	c.snapshot.Store(next)
	metrics.UpdateRoleProfilesLoaded(next.Len())

	slog.Debug("Role profile snapshot refreshed", "profiles", next.Len())
	return next, nil
}

// Current implements role.Provider.
func (c *Cache) Current() role.Lookup {
	return c.Snapshot()
}

// Reload implements role.Provider.
func (c *Cache) Reload(ctx context.Context) (role.Lookup, error) {
	snap, err := c.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return snap, nil
}
