package source

import (
	"errors"

	"github.com/okian/pitwall/pkg/metrics"
)

// Failure taxonomy shared by every adapter. Callers treat each of them as
// "no data for this key".
var (
	ErrUnavailable = errors.New("upstream unavailable")
	ErrMalformed   = errors.New("malformed payload")
	ErrNotFound    = errors.New("upstream not found")
	ErrTooLarge    = errors.New("upstream body too large")
)

// Outcome maps an adapter error onto a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrTooLarge):
		return metrics.OutcomeTooLarge
	case errors.Is(err, ErrMalformed):
		return metrics.OutcomeMalformed
	case errors.Is(err, ErrUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
