package role

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
)

// FileSource reads role profiles from a TOML file:
//
//	[[role]]
//	id = "picker"
//	name = "Picker"
//	type = "batch"
//	expected_per_hour = 120
//	multiplier = 1.0
//
// The file is re-read on every call so a refresh picks up edits.
type FileSource struct {
	path string
}

type fileProfile struct {
	ID                   string  `toml:"id"`
	Name                 string  `toml:"name"`
	Type                 string  `toml:"type"`
	ExpectedPerHour      float64 `toml:"expected_per_hour"`
	IdleThresholdMinutes float64 `toml:"idle_threshold_minutes"`
	Multiplier           float64 `toml:"multiplier"`
}

type fileDocument struct {
	Roles []fileProfile `toml:"role"`
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// ListProfiles implements role.ProfileRepository.
func (f *FileSource) ListProfiles(ctx context.Context) ([]role.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc fileDocument
	if _, err := toml.DecodeFile(f.path, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode role profiles file %s: %w", f.path, err)
	}

	profiles := make([]role.Profile, 0, len(doc.Roles))
	for _, r := range doc.Roles {
		p, err := role.NewProfile(r.ID, r.Name, r.Type, r.ExpectedPerHour, r.IdleThresholdMinutes, r.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("role profiles file %s: %w", f.path, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
