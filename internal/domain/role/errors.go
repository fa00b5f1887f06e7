package role

import "errors"

var (
	ErrInvalidProfile  = errors.New("invalid role profile")
	ErrInvalidRoleType = errors.New("unknown role type")
)
