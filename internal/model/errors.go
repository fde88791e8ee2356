package model

import (
	"errors"
	"fmt"
)

// DomainError is the error type returned by dataset, resampling and model code.
// Code is machine-checkable; Module names the package that raised it.
type DomainError struct {
	Code    string
	Message string
	Module  string
}

func (e *DomainError) Error() string {
	return e.Module + ": " + e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// Errorf creates a domain error with a formatted message.
func Errorf(module, code, format string, args ...any) *DomainError {
	return NewDomainError(module, code, fmt.Sprintf(format, args...))
}

// Error codes.
const (
	ErrorCodeInvalidInput = "INVALID_INPUT"
	ErrorCodeNotFitted    = "NOT_FITTED"
	ErrorCodeEmpty        = "EMPTY"
)

// Module names.
const (
	ModuleDataset  = "dataset"
	ModuleExplore  = "explore"
	ModuleSMOTE    = "smote"
	ModuleTree     = "tree"
	ModuleForest   = "forest"
	ModuleLinear   = "linear"
	ModuleMetrics  = "metrics"
	ModuleAnalysis = "analysis"
	ModuleSynth    = "synth"
)

// GetDomainError unwraps err to a DomainError, or returns nil.
func GetDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

func hasCode(err error, code string) bool {
	de := GetDomainError(err)
	return de != nil && de.Code == code
}

// IsInvalidInput reports whether err is an INVALID_INPUT domain error.
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsNotFitted reports whether err is a NOT_FITTED domain error.
func IsNotFitted(err error) bool { return hasCode(err, ErrorCodeNotFitted) }

// IsEmpty reports whether err is an EMPTY domain error.
func IsEmpty(err error) bool { return hasCode(err, ErrorCodeEmpty) }
