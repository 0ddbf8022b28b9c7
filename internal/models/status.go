package models

type Status string

const (
	StatusNew        Status = "NEW"
	StatusProcessing Status = "PROCESSING"
	StatusDone       Status = "DONE"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether a ticket in this status must not be reprocessed
// by the pipeline. A FAILED ticket re-enters the pipeline only through the
// retry endpoint, which resets it to NEW before enqueueing.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. FAILED -> NEW is the explicit retry path.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusNew:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusDone || next == StatusFailed
	case StatusFailed:
		return next == StatusNew
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusProcessing, StatusDone, StatusFailed:
		return true
	}
	return false
}
