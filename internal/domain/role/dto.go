package role

type ProfileResponse struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	RoleType             string  `json:"role_type"`
	ExpectedPerHour      float64 `json:"expected_per_hour"`
	IdleThresholdMinutes float64 `json:"idle_threshold_minutes"`
	Multiplier           float64 `json:"multiplier"`
}

type SnapshotResponse struct {
	LoadedAt string            `json:"loaded_at"`
	Fallback ProfileResponse   `json:"fallback"`
	Profiles []ProfileResponse `json:"profiles"`
}

func ToProfileResponse(p Profile) ProfileResponse {
	return ProfileResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		RoleType:             p.TypeName(),
		ExpectedPerHour:      p.ExpectedPerHour(),
		IdleThresholdMinutes: p.IdleThresholdMinutes(),
		Multiplier:           p.Multiplier,
	}
}
