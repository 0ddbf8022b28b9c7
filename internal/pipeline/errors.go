package pipeline

import "fmt"

// Stage failure codes recorded on the ticket.
const (
	CodeClassificationFailed = "CLASSIFICATION_FAILED"
	CodeAddressEmpty         = "ADDRESS_EMPTY"
	CodeGeoFailed            = "GEO_FAILED"
	CodeOfficeNotFound       = "OFFICE_NOT_FOUND"
	CodeAssignmentFailed     = "ASSIGNMENT_FAILED"
)

// StageError tags a pipeline failure with the stage it happened in, so the
// consumer maps it to a recorded reason deterministically instead of
// parsing error text.
type StageError struct {
	Code string
	Err  error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(code string, err error) *StageError {
	return &StageError{Code: code, Err: err}
}
