package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/database"
)

type roleProfileRepository struct {
	db *database.DB
}

func NewRoleProfileRepository(db *database.DB) role.ProfileRepository {
	return &roleProfileRepository{db: db}
}

// ListProfiles implements role.ProfileRepository.
func (r *roleProfileRepository) ListProfiles(ctx context.Context) ([]role.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, role_type, expected_per_hour, idle_threshold_minutes, multiplier
		FROM role_profiles
		ORDER BY id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query role profiles: %w", err)
	}
	defer rows.Close()

	var profiles []role.Profile
	for rows.Next() {
		var (
			id, name, roleType string
			expectedPerHour    float64
			idleThreshold      *float64
			multiplier         float64
		)
		if err := rows.Scan(&id, &name, &roleType, &expectedPerHour, &idleThreshold, &multiplier); err != nil {
			return nil, fmt.Errorf("failed to scan role profile: %w", err)
		}

		threshold := 0.0
		if idleThreshold != nil {
			threshold = *idleThreshold
		}

		p, err := role.NewProfile(id, name, roleType, expectedPerHour, threshold, multiplier)
		if err != nil {
			return nil, fmt.Errorf("role profile %q: %w", id, err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}
