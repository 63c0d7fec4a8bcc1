package entity

import "fmt"

type ValidationStatus string

const (
	StatusPending ValidationStatus = "pending"
	StatusSuccess ValidationStatus = "success"
	StatusFailed  ValidationStatus = "failed"
	StatusRetry   ValidationStatus = "retry"
)

const DefaultMaxRetries = 3

var validationStatuses = map[ValidationStatus]bool{
	StatusPending: true,
	StatusSuccess: true,
	StatusFailed:  true,
	StatusRetry:   true,
}

var terminalStatuses = map[ValidationStatus]bool{
	StatusSuccess: true,
	StatusFailed:  true,
}

// pending → success | failed | retry; retry → pending (new attempt) | failed
var validTransitions = map[ValidationStatus]map[ValidationStatus]bool{
	StatusPending: {
		StatusSuccess: true,
		StatusFailed:  true,
		StatusRetry:   true,
	},
	StatusRetry: {
		StatusPending: true,
		StatusFailed:  true,
	},
}

func ValidationStatuses() []ValidationStatus {
	return []ValidationStatus{StatusPending, StatusSuccess, StatusFailed, StatusRetry}
}

func (s ValidationStatus) Valid() bool {
	return validationStatuses[s]
}

func (s ValidationStatus) IsTerminal() bool {
	return terminalStatuses[s]
}

func ValidateTransition(from, to ValidationStatus) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: cannot leave terminal status %q", ErrInvalidTransition, from)
	}
	allowed, ok := validTransitions[from]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	if !allowed[to] {
		return fmt.Errorf("%w: %q → %q", ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidationResult is the per-action state machine. It belongs to exactly one
// TaskAction. RetryCount never exceeds MaxRetries.
type ValidationResult struct {
	Status     ValidationStatus `json:"status"`
	Message    string           `json:"message,omitempty"`
	RetryCount int              `json:"retry_count"`
	MaxRetries int              `json:"max_retries"`
}

func NewValidationResult() ValidationResult {
	return ValidationResult{Status: StatusPending, MaxRetries: DefaultMaxRetries}
}

func (v *ValidationResult) transition(to ValidationStatus, msg string) error {
	if err := ValidateTransition(v.Status, to); err != nil {
		return err
	}
	v.Status = to
	v.Message = msg
	return nil
}

func (v *ValidationResult) Succeed(msg string) error {
	return v.transition(StatusSuccess, msg)
}

func (v *ValidationResult) Fail(msg string) error {
	return v.transition(StatusFailed, msg)
}

// RecordRetry registers a failed attempt. While budget remains it moves to
// retry and increments RetryCount; once RetryCount has reached MaxRetries the
// result settles in failed and ErrRetriesExhausted is returned.
func (v *ValidationResult) RecordRetry(msg string) error {
	if v.Status != StatusPending {
		return fmt.Errorf("%w: retry requires %q, status is %q", ErrInvalidTransition, StatusPending, v.Status)
	}
	if v.RetryCount >= v.MaxRetries {
		v.Status = StatusFailed
		v.Message = msg
		return fmt.Errorf("%w: %d of %d used", ErrRetriesExhausted, v.RetryCount, v.MaxRetries)
	}
	v.RetryCount++
	v.Status = StatusRetry
	v.Message = msg
	return nil
}

// Resume starts the next attempt after a retry.
func (v *ValidationResult) Resume() error {
	return v.transition(StatusPending, "")
}

func (v *ValidationResult) CanRetry() bool {
	return !v.Status.IsTerminal() && v.RetryCount < v.MaxRetries
}

func (v ValidationResult) validate(path string, errs *ValidationErrors) {
	if !v.Status.Valid() {
		errs.Add(path+".status", fmt.Sprintf("unknown status %q", v.Status))
	}
	if v.RetryCount < 0 {
		errs.Add(path+".retry_count", "must not be negative")
	}
	if v.MaxRetries < 0 {
		errs.Add(path+".max_retries", "must not be negative")
	}
	if v.RetryCount > v.MaxRetries {
		errs.Add(path+".retry_count", fmt.Sprintf("%d exceeds max_retries %d", v.RetryCount, v.MaxRetries))
	}
}

// aggregateStatus folds child statuses: success only when every child
// succeeded, failed when any child settled failed, retry when any child is
// retrying, pending otherwise.
func aggregateStatus(children []ValidationStatus) ValidationStatus {
	if len(children) == 0 {
		return StatusPending
	}
	allSuccess := true
	anyRetry := false
	for _, s := range children {
		switch s {
		case StatusFailed:
			return StatusFailed
		case StatusRetry:
			anyRetry = true
			allSuccess = false
		case StatusSuccess:
		default:
			allSuccess = false
		}
	}
	if allSuccess {
		return StatusSuccess
	}
	if anyRetry {
		return StatusRetry
	}
	return StatusPending
}
