// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors
var (
	ErrTradeNotFound      = errors.New("trade not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrStrategyNotFound   = errors.New("strategy not found")
	ErrConfluenceNotFound = errors.New("confluence item not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrTradeAlreadyClosed = errors.New("trade is already closed")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrDatabaseError      = errors.New("database error")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrBrokerNotConnected = errors.New("broker not connected")
	ErrTimeout            = errors.New("operation timed out")
)

// ValidationError represents a validation error on a single field,
// surfaced inline next to the offending input.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ParseError represents a CSV parse failure. It blocks the whole import and
// names the problem: either the missing required columns or the offending row.
type ParseError struct {
	Line           int
	Row            string
	MissingColumns []string
	Message        string
}

func (e *ParseError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("parse error: missing required columns: %s", strings.Join(e.MissingColumns, ", "))
	}
	if e.Row != "" {
		return fmt.Sprintf("parse error at line %d: %s (row: %q)", e.Line, e.Message, e.Row)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewMissingColumnsError creates a ParseError naming absent required columns.
func NewMissingColumnsError(columns []string) *ParseError {
	return &ParseError{MissingColumns: columns}
}

// NewRowError creates a ParseError for a single offending row.
func NewRowError(line int, row, message string) *ParseError {
	return &ParseError{Line: line, Row: row, Message: message}
}

// BrokerError represents an error from the broker integration endpoints.
type BrokerError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *BrokerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("broker error [%s]: %s: %v", e.Endpoint, e.Message, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("broker error [%s]: %s (status %d)", e.Endpoint, e.Message, e.Status)
	}
	return fmt.Sprintf("broker error [%s]: %s", e.Endpoint, e.Message)
}

func (e *BrokerError) Unwrap() error {
	return e.Err
}

// NewBrokerError creates a new BrokerError.
func NewBrokerError(endpoint, message string, status int, err error) *BrokerError {
	return &BrokerError{
		Endpoint: endpoint,
		Status:   status,
		Message:  message,
		Err:      err,
	}
}

// DataError represents a storage-related error.
type DataError struct {
	Entity  string
	ID      string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.Entity, e.ID, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.Entity, e.ID, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(entity, id, message string, err error) *DataError {
	return &DataError{
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
