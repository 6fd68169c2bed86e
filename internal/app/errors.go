package app

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	ErrNoScores = errors.New("result set has no scores")
)

// SyncError is the fatal outcome of a sync transaction: everything since
// the last commit boundary was rolled back. SanctionID identifies the
// sanction being reconciled when the failure hit; for a batch sync that
// is the sanction whose reconcile aborted the whole batch.
type SyncError struct {
	SanctionID int
	Cause      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync sanction %d: %v", e.SanctionID, e.Cause)
}

func (e *SyncError) Unwrap() error { return e.Cause }
