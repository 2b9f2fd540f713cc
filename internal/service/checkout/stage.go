package checkout

import "fmt"

// Stage is a step of the checkout workflow.
type Stage int

const (
	StageReviewing Stage = iota
	StageAddressSelected
	StageValidated
	StageMaterializing
	StageCompleted
)

func (s Stage) String() string {
	switch s {
	case StageReviewing:
		return "reviewing"
	case StageAddressSelected:
		return "address_selected"
	case StageValidated:
		return "validated"
	case StageMaterializing:
		return "materializing"
	case StageCompleted:
		return "completed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError records the stage a checkout failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

func failAt(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
