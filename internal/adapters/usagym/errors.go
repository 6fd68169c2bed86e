package usagym

import (
	"errors"
	"fmt"
)

// Sentinel kinds for fetch errors.
var (
	ErrDecode = errors.New("decode upstream payload failed")
)

// FetchError reports a failed upstream fetch. Exactly one of StatusCode
// (HTTP-level non-success) or Cause (transport-level failure: timeout,
// DNS, reset) is set. Batch callers treat either as skip-and-continue.
type FetchError struct {
	Resource   string // "sanction", "scores" or "meets"
	ID         int    // sanction or result-set id; zero for listings
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s %d: %v", e.Resource, e.ID, e.Cause)
	}
	return fmt.Sprintf("fetch %s %d: upstream status %d", e.Resource, e.ID, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// IsFetchError reports whether err is a fetch failure and returns it.
func IsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
