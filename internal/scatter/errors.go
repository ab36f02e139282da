package scatter

import (
	"errors"
	"fmt"
)

// ErrDomain classifies every invalid numeric precondition. Match it with
// errors.Is; the specific sentinel below is still reachable the same way.
var ErrDomain = errors.New("scatter: domain error")

// Domain errors for engine operations.
var (
	// ErrNonPositiveMass indicates a reduced mass <= 0.
	ErrNonPositiveMass = errors.New("scatter: reduced mass must be positive")

	// ErrBadInterval indicates r_max <= r_min or a non-positive r_min.
	ErrBadInterval = errors.New("scatter: radial interval must satisfy 0 < r_min < r_max")

	// ErrBadSteps indicates a zero or negative integration step count.
	ErrBadSteps = errors.New("scatter: step count must be positive")

	// ErrNegativeEll indicates an angular momentum below zero.
	ErrNegativeEll = errors.New("scatter: angular momentum must be non-negative")

	// ErrDuplicateEll indicates an angular momentum listed twice in a sweep.
	ErrDuplicateEll = errors.New("scatter: duplicate angular momentum")

	// ErrEmptyGrid indicates an empty energy grid or angular momentum list.
	ErrEmptyGrid = errors.New("scatter: empty grid")

	// ErrGridNotIncreasing indicates energies that are not strictly increasing.
	ErrGridNotIncreasing = errors.New("scatter: energy grid not strictly increasing")

	// ErrGridMismatch indicates a delay series built on a different grid than its phase series.
	ErrGridMismatch = errors.New("scatter: phase and delay grids differ")

	// ErrNonPositiveWavenumber indicates k <= 0 where it is used as a divisor.
	ErrNonPositiveWavenumber = errors.New("scatter: wavenumber must be positive")

	// ErrLegendreDomain indicates a Legendre argument outside [-1, 1].
	ErrLegendreDomain = errors.New("scatter: legendre argument outside [-1, 1]")

	// ErrAngleRange indicates a scattering angle outside [0, pi].
	ErrAngleRange = errors.New("scatter: angle outside [0, pi]")

	// ErrEmptySeries indicates a phase series with no entries.
	ErrEmptySeries = errors.New("scatter: empty phase series")

	// ErrNonFinite indicates a NaN or Inf input or potential value.
	ErrNonFinite = errors.New("scatter: NaN or Inf encountered")

	// ErrNonPositiveHbar indicates an engine configured with hbar <= 0.
	ErrNonPositiveHbar = errors.New("scatter: hbar must be positive")

	// ErrBadThreshold indicates a negative or NaN jump threshold.
	ErrBadThreshold = errors.New("scatter: jump threshold must be non-negative")
)

// DomainError wraps a domain sentinel with the operation that rejected its input.
type DomainError struct {
	Op     string
	Detail string
	Err    error
}

func (e *DomainError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Detail)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports every DomainError as an instance of ErrDomain.
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

func domainErr(op string, err error, format string, args ...any) error {
	detail := ""
	if format != "" {
		detail = fmt.Sprintf(format, args...)
	}
	return &DomainError{Op: op, Detail: detail, Err: err}
}
