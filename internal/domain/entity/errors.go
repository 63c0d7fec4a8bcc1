package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput             = errors.New("invalid input")
	ErrProvider          = errors.New("completion provider failure")
	ErrParse             = errors.New("malformed model output")
	ErrSchema            = errors.New("schema violation")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRetriesExhausted  = errors.New("retries exhausted")
)

// InputError rejects caller input before any collaborator is involved.
type InputError struct {
	Field  string
	Reason string
}

func NewInputError(field, reason string) *InputError {
	return &InputError{Field: field, Reason: reason}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInput }

// ProviderError is raised by a completion collaborator for transport, auth,
// rate-limit or empty-response failures.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// ParseError means the response is not a well-formed envelope.
type ParseError struct {
	Err     error
	Snippet string
}

func (e *ParseError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("parse model output: %v", e.Err)
	}
	return fmt.Sprintf("parse model output: %v (response: %s)", e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

type ValidationError struct {
	FieldPath string
	Message   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldPath, e.Message)
}

// ValidationErrors collects every schema violation found in a document so
// the caller sees all of them at once.
type ValidationErrors struct {
	Errors []ValidationError
}

func (ve *ValidationErrors) Add(fieldPath, message string) {
	ve.Errors = append(ve.Errors, ValidationError{FieldPath: fieldPath, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return ve != nil && len(ve.Errors) > 0
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		msgs = append(msgs, e.Error())
	}
	return "schema violation: " + strings.Join(msgs, "; ")
}

func (ve *ValidationErrors) Is(target error) bool { return target == ErrSchema }

// OrNil returns ve as an error only when it holds violations.
func (ve *ValidationErrors) OrNil() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// PlanValidationError wraps the parse or schema diagnostic of a rejected plan.
type PlanValidationError struct {
	Err error
}

func (e *PlanValidationError) Error() string {
	return fmt.Sprintf("plan validation failed: %v", e.Err)
}

func (e *PlanValidationError) Unwrap() error { return e.Err }

// PlanGenerationError wraps a collaborator failure while generating a plan.
type PlanGenerationError struct {
	Err error
}

func (e *PlanGenerationError) Error() string {
	return fmt.Sprintf("plan generation failed: %v", e.Err)
}

func (e *PlanGenerationError) Unwrap() error { return e.Err }

// StageError records which grounding stage failed for which screenshot.
type StageError struct {
	Stage string
	Index int
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("screenshot %d (%s): stage %s: %v", e.Index, e.Path, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
