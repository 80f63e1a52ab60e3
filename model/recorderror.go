package model

import "fmt"

// RecordReason classifies why a single satellite record could not be
// evaluated. Reasons are stable strings so callers can surface or
// aggregate them without parsing error text.
type RecordReason string

const (
	ReasonMissingPosition  RecordReason = "missing_position"
	ReasonInvalidGeodetic  RecordReason = "invalid_geodetic"
	ReasonInvalidCartesian RecordReason = "invalid_cartesian"
)

// RecordError reports one malformed satellite record. The engine
// collects these instead of aborting the batch; ephemeris sources are
// not guaranteed clean.
type RecordError struct {
	ID     string
	Reason RecordReason
	Err    error
}

func (e RecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record %q: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("record %q: %s", e.ID, e.Reason)
}

func (e RecordError) Unwrap() error { return e.Err }
