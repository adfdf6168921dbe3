package probe

import "errors"

var (
	ErrInvalidConfig = errors.New("probe: invalid config")
	ErrUnhealthy     = errors.New("probe: service unhealthy")
	ErrDecode        = errors.New("probe: undecodable response")
	ErrViolations    = errors.New("probe: consistency violations")
)
