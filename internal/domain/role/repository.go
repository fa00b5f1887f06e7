package role

import "context"

// ProfileRepository reads role configuration in one set-based query.
type ProfileRepository interface {
	ListProfiles(ctx context.Context) ([]Profile, error)
}

// Lookup resolves a role id to its profile. Implementations never fail:
// unknown ids resolve to a fallback profile.
type Lookup interface {
	Get(id string) Profile
}

// Provider hands out consistent views of role configuration. A calculation
// takes one view and uses it throughout, so a concurrent refresh never mixes
// two configurations inside one employee-day.
type Provider interface {
	// Current returns the snapshot in effect right now.
	Current() Lookup

	// Reload re-reads the backing store, publishes a new snapshot and returns it.
	Reload(ctx context.Context) (Lookup, error)
}
