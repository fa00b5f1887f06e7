package role

import (
	"fmt"
	"math"
	"strings"
)

// Idle threshold constants shared by every scoring path.
const (
	// MinBatchThresholdMinutes is the floor for a batch role's dynamic threshold.
	MinBatchThresholdMinutes = 3.0
	// BatchThresholdTolerance pads the expected processing time of the last unit.
	BatchThresholdTolerance = 1.05
	// DefaultContinuousThresholdMinutes applies when a continuous role has no threshold configured.
	DefaultContinuousThresholdMinutes = 5.0
)

const (
	TypeNameBatch      = "batch"
	TypeNameContinuous = "continuous"
)

// Type is the closed set of role kinds. Each variant knows how long an
// employee may sit idle after finishing an activity of a given size.
type Type interface {
	Name() string
	IdleThreshold(itemsCount int) float64
	isRoleType()
}

// Batch roles are measured in discrete units; the idle allowance scales with
// the size of the unit just completed.
type Batch struct {
	ExpectedPerHour float64
}

func (Batch) Name() string { return TypeNameBatch }

func (b Batch) IdleThreshold(itemsCount int) float64 {
	if b.ExpectedPerHour <= 0 {
		return MinBatchThresholdMinutes
	}
	minutesPerItem := 60 / b.ExpectedPerHour
	return math.Max(MinBatchThresholdMinutes, float64(itemsCount)*minutesPerItem*BatchThresholdTolerance)
}

func (Batch) isRoleType() {}

// Continuous roles have a flat idle allowance regardless of output.
type Continuous struct {
	ExpectedPerHour      float64
	IdleThresholdMinutes float64
}

func (Continuous) Name() string { return TypeNameContinuous }

func (c Continuous) IdleThreshold(int) float64 {
	if c.IdleThresholdMinutes <= 0 {
		return DefaultContinuousThresholdMinutes
	}
	return c.IdleThresholdMinutes
}

func (Continuous) isRoleType() {}

// Profile is the immutable scoring configuration of one role.
type Profile struct {
	ID         string
	Name       string
	Type       Type
	Multiplier float64
}

// NewProfile builds a profile from its stored columns.
func NewProfile(id, name, typeName string, expectedPerHour, idleThresholdMinutes, multiplier float64) (Profile, error) {
	if strings.TrimSpace(id) == "" {
		return Profile{}, fmt.Errorf("%w: empty role id", ErrInvalidProfile)
	}
	if expectedPerHour < 0 || idleThresholdMinutes < 0 || multiplier < 0 {
		return Profile{}, fmt.Errorf("%w: role %s has a negative setting", ErrInvalidProfile, id)
	}

	var t Type
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case TypeNameBatch:
		t = Batch{ExpectedPerHour: expectedPerHour}
	case TypeNameContinuous:
		t = Continuous{ExpectedPerHour: expectedPerHour, IdleThresholdMinutes: idleThresholdMinutes}
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrInvalidRoleType, typeName)
	}

	return Profile{
		ID:         id,
		Name:       name,
		Type:       t,
		Multiplier: multiplier,
	}, nil
}

// IdleThreshold is the allowed idle gap in minutes after an activity of itemsCount items.
func (p Profile) IdleThreshold(itemsCount int) float64 {
	if p.Type == nil {
		return DefaultContinuousThresholdMinutes
	}
	return p.Type.IdleThreshold(itemsCount)
}

// ExpectedPerHour returns the configured throughput, zero when unset.
func (p Profile) ExpectedPerHour() float64 {
	switch t := p.Type.(type) {
	case Batch:
		return t.ExpectedPerHour
	case Continuous:
		return t.ExpectedPerHour
	}
	return 0
}

// IdleThresholdMinutes returns the fixed threshold of a continuous role, zero otherwise.
func (p Profile) IdleThresholdMinutes() float64 {
	if t, ok := p.Type.(Continuous); ok {
		return t.IdleThresholdMinutes
	}
	return 0
}

func (p Profile) TypeName() string {
	if p.Type == nil {
		return ""
	}
	return p.Type.Name()
}
