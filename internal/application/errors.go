package application

import (
	"errors"
	"fmt"

	"rootforge/internal/domain"
)

// Sentinel errors for common conditions
var (
	ErrNotFound  = errors.New("not found")
	ErrRejected  = errors.New("rejected")
	ErrSynthesis = errors.New("race model synthesis failed")
	ErrParse     = errors.New("parse failure")
	ErrIntegrity = errors.New("integrity violation")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RejectedError is returned before any mutation when a clone cannot start
type RejectedError struct {
	Root   domain.RootInfo
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("cannot clone %s: %s", e.Root, e.Reason)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// ParseError wraps a codec failure for one file
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// SynthesisError wraps a domain synthesis failure
type SynthesisError struct {
	Err *domain.SynthesisError
}

func (e *SynthesisError) Error() string {
	return e.Err.Error()
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

func (e *SynthesisError) Is(target error) bool {
	return target == ErrSynthesis
}

// IntegrityError means a batch touched a file it had no prior state for
type IntegrityError struct {
	Path string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("file %s was modified by the batch but has no recorded previous state", e.Path)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}
