// Package errors provides custom error types for the GRAO processing pipeline.
// These errors enable programmatic checking of failure kinds so that callers
// can tell soft failures (no match) from run-fatal ones (transport, I/O).
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Sentinel errors for the pipeline.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrNoMatch indicates that the settlement directory returned no record
	// satisfying the matching heuristics. It is a soft failure.
	ErrNoMatch = errors.New("no match")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClassification indicates that a source descriptor carries no date.
	ErrClassification = errors.New("unclassifiable descriptor")

	// ErrTransport indicates a failed network call or a non-success status.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse indicates a response that could not be parsed.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrRetriesExhausted indicates that every attempt of a retry policy failed.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrMissingFile indicates that a required input file does not exist.
	ErrMissingFile = errors.New("missing file")

	// ErrRateLimited indicates that the remote rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NoMatchError is returned by the settlement resolver when none of the
// directory records satisfies the matching rules for a key.
type NoMatchError struct {
	Key        string
	Candidates int
}

// Error implements the error interface.
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no directory match for %s (%d candidates)", e.Key, e.Candidates)
}

// Is implements errors.Is support.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch || target == ErrNotFound
}

// NewNoMatchError creates a new NoMatchError.
func NewNoMatchError(key string, candidates int) *NoMatchError {
	return &NoMatchError{Key: key, Candidates: candidates}
}

// ClassificationError is returned when a descriptor matches no date pattern.
type ClassificationError struct {
	Descriptor string
}

// Error implements the error interface.
func (e *ClassificationError) Error() string {
	return fmt.Sprintf("cannot classify descriptor %q: no month-year or year found", e.Descriptor)
}

// Is implements errors.Is support.
func (e *ClassificationError) Is(target error) bool {
	return target == ErrClassification
}

// NewClassificationError creates a new ClassificationError.
func NewClassificationError(descriptor string) *ClassificationError {
	return &ClassificationError{Descriptor: descriptor}
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a failed call to a remote endpoint: either the request
// did not complete or the server answered with a non-success status.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support. Every APIError is a transport failure.
func (e *APIError) Is(target error) bool {
	if target == ErrTransport {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests && target == ErrRateLimited
}

// NewAPIError creates a new APIError.
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// RetryError is returned when a retry policy gives up. It wraps the error
// of the last attempt.
type RetryError struct {
	Operation string
	Attempts  int
	Err       error
}

// Error implements the error interface.
func (e *RetryError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *RetryError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *RetryError) Is(target error) bool {
	return target == ErrRetriesExhausted || target == ErrTransport
}

// NewRetryError creates a new RetryError.
func NewRetryError(operation string, attempts int, err error) *RetryError {
	return &RetryError{Operation: operation, Attempts: attempts, Err: err}
}

// MissingFileError reports a required input file that does not exist.
type MissingFileError struct {
	Kind string // "sources", "config", ...
	Path string
}

// Error implements the error interface.
func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing %s file: %s", e.Kind, e.Path)
}

// Is implements errors.Is support.
func (e *MissingFileError) Is(target error) bool {
	return target == ErrMissingFile
}

// NewMissingFileError creates a new MissingFileError.
func NewMissingFileError(kind, path string) *MissingFileError {
	return &MissingFileError{Kind: kind, Path: path}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats.
type ParseError struct {
	Format  string // "html", "csv", "yaml", "json", "date"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// MalformedResponseError marks a remote response whose body could not be
// interpreted. It wraps the underlying parse failure.
type MalformedResponseError struct {
	Service string
	Query   string
	Err     error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s for %q: %v", e.Service, e.Query, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// IOError represents an error during I/O operations.
type IOError struct {
	Operation string // "read", "write", "create", "rename", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError.
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations.
type ResourceError struct {
	Operation string // "load", "save", "fetch", "resolve"
	Resource  string // "cache", "period", "settlement"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError.
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNoMatch checks if an error is a soft resolver miss.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsClassification checks if an error is a descriptor classification error.
func IsClassification(err error) bool {
	return errors.Is(err, ErrClassification)
}

// IsTransport checks if an error is a transport failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsMalformedResponse checks if an error is a malformed response.
func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsRetriesExhausted checks if a retry policy gave up.
func IsRetriesExhausted(err error) bool {
	return errors.Is(err, ErrRetriesExhausted)
}

// IsMissingFile checks if an error reports a missing input file.
func IsMissingFile(err error) bool {
	return errors.Is(err, ErrMissingFile)
}

// IsCanceled checks if an error is a cancellation error.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapMalformed wraps a parse failure of a remote response.
func WrapMalformed(service, query string, err error) error {
	if err == nil {
		return nil
	}
	return &MalformedResponseError{Service: service, Query: query, Err: err}
}

// WrapAPI wraps an error as an APIError.
func WrapAPI(service string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
