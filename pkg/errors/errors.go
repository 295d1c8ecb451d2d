package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// UnknownFieldTypeError is returned when a field type is not one of the known kinds
type UnknownFieldTypeError struct {
	Type string
}

func (e *UnknownFieldTypeError) Error() string {
	return fmt.Sprintf("invalid data type '%s'", e.Type)
}

func (e *UnknownFieldTypeError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *UnknownFieldTypeError) Code() string {
	return "UNKNOWN_FIELD_TYPE"
}

// NewUnknownFieldTypeError creates a new UnknownFieldTypeError
func NewUnknownFieldTypeError(typ string) *UnknownFieldTypeError {
	return &UnknownFieldTypeError{Type: typ}
}

// UnknownFieldError represents access to a field a model never declared
type UnknownFieldError struct {
	Model string
	Field string
}

func (e *UnknownFieldError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("invalid field name '%s' on %s", e.Field, e.Model)
	}
	return fmt.Sprintf("invalid field name '%s'", e.Field)
}

func (e *UnknownFieldError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *UnknownFieldError) Code() string {
	return "UNKNOWN_FIELD"
}

// NewUnknownFieldError creates a new UnknownFieldError
func NewUnknownFieldError(model, field string) *UnknownFieldError {
	return &UnknownFieldError{Model: model, Field: field}
}

// InvalidValueError represents a value rejected by its field type validator
type InvalidValueError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *InvalidValueError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid value for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid value for field '%s'", e.Field)
}

func (e *InvalidValueError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *InvalidValueError) Code() string {
	return "INVALID_VALUE"
}

// NewInvalidValueError creates a new InvalidValueError
func NewInvalidValueError(field string, value interface{}, message string) *InvalidValueError {
	return &InvalidValueError{Field: field, Value: value, Message: message}
}

// LockedFieldError represents a write to a locked field
type LockedFieldError struct {
	Field string
}

func (e *LockedFieldError) Error() string {
	return fmt.Sprintf("attempted to modify locked field '%s'", e.Field)
}

func (e *LockedFieldError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *LockedFieldError) Code() string {
	return "LOCKED_FIELD"
}

// NewLockedFieldError creates a new LockedFieldError
func NewLockedFieldError(field string) *LockedFieldError {
	return &LockedFieldError{Field: field}
}

// EmptyParamsError is returned when an operation needs at least one parameter
type EmptyParamsError struct {
	Operation string
}

func (e *EmptyParamsError) Error() string {
	return fmt.Sprintf("error in call to %s: params cannot be empty", e.Operation)
}

func (e *EmptyParamsError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *EmptyParamsError) Code() string {
	return "EMPTY_PARAMS"
}

// NewEmptyParamsError creates a new EmptyParamsError
func NewEmptyParamsError(operation string) *EmptyParamsError {
	return &EmptyParamsError{Operation: operation}
}

// MissingIdentifierError is returned when an update has no id to target
type MissingIdentifierError struct {
	Operation string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("%s must have id set in params", e.Operation)
}

func (e *MissingIdentifierError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *MissingIdentifierError) Code() string {
	return "MISSING_IDENTIFIER"
}

// NewMissingIdentifierError creates a new MissingIdentifierError
func NewMissingIdentifierError(operation string) *MissingIdentifierError {
	return &MissingIdentifierError{Operation: operation}
}

// InconsistentColumnsError represents a batch row whose keys differ from the first row
type InconsistentColumnsError struct {
	Row      int
	Expected []string
	Got      []string
}

func (e *InconsistentColumnsError) Error() string {
	return fmt.Sprintf("row %d has columns [%s], expected [%s]",
		e.Row, strings.Join(e.Got, ", "), strings.Join(e.Expected, ", "))
}

func (e *InconsistentColumnsError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *InconsistentColumnsError) Code() string {
	return "INCONSISTENT_COLUMNS"
}

// NewInconsistentColumnsError creates a new InconsistentColumnsError
func NewInconsistentColumnsError(row int, expected, got []string) *InconsistentColumnsError {
	return &InconsistentColumnsError{Row: row, Expected: expected, Got: got}
}

// MultipleResultsError is returned when a point lookup matches more than one row
type MultipleResultsError struct {
	Operation string
	Count     int
}

func (e *MultipleResultsError) Error() string {
	return fmt.Sprintf("%s yielded multiple results (%d)", e.Operation, e.Count)
}

func (e *MultipleResultsError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *MultipleResultsError) Code() string {
	return "MULTIPLE_RESULTS"
}

// NewMultipleResultsError creates a new MultipleResultsError
func NewMultipleResultsError(operation string, count int) *MultipleResultsError {
	return &MultipleResultsError{Operation: operation, Count: count}
}

// NoResultError is returned when a query that always yields a row yielded none
type NoResultError struct {
	Table string
}

func (e *NoResultError) Error() string {
	return fmt.Sprintf("query on '%s' returned no result", e.Table)
}

func (e *NoResultError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *NoResultError) Code() string {
	return "NO_RESULT"
}

// NewNoResultError creates a new NoResultError
func NewNoResultError(table string) *NoResultError {
	return &NoResultError{Table: table}
}

// InvalidIdentifierError represents a table or column name that cannot be quoted safely
type InvalidIdentifierError struct {
	Identifier string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier '%s'", e.Identifier)
}

func (e *InvalidIdentifierError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *InvalidIdentifierError) Code() string {
	return "INVALID_IDENTIFIER"
}

// NewInvalidIdentifierError creates a new InvalidIdentifierError
func NewInvalidIdentifierError(identifier string) *InvalidIdentifierError {
	return &InvalidIdentifierError{Identifier: identifier}
}

// DatabaseError wraps a driver failure during statement execution.
// DriverCode is the vendor error number or SQLSTATE when the driver exposes one.
type DatabaseError struct {
	Operation  string
	SQL        string
	DriverCode string
	Message    string
	Cause      error
}

func (e *DatabaseError) Error() string {
	if e.DriverCode != "" {
		return fmt.Sprintf("exception during database %s [%s]: %s", e.Operation, e.DriverCode, e.Message)
	}
	return fmt.Sprintf("exception during database %s: %s", e.Operation, e.Message)
}

func (e *DatabaseError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *DatabaseError) Code() string {
	return "DATABASE_ERROR"
}

func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(operation, sql, driverCode string, cause error) *DatabaseError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &DatabaseError{Operation: operation, SQL: sql, DriverCode: driverCode, Message: msg, Cause: cause}
}

// NotFoundError represents a resource that was not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InternalError represents unexpected server errors
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return "INTERNAL_ERROR"
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// Helper functions for error checking

// IsUnknownFieldType checks if an error is an UnknownFieldTypeError
func IsUnknownFieldType(err error) bool {
	var target *UnknownFieldTypeError
	return errors.As(err, &target)
}

// IsUnknownField checks if an error is an UnknownFieldError
func IsUnknownField(err error) bool {
	var target *UnknownFieldError
	return errors.As(err, &target)
}

// IsInvalidValue checks if an error is an InvalidValueError
func IsInvalidValue(err error) bool {
	var target *InvalidValueError
	return errors.As(err, &target)
}

// IsLockedField checks if an error is a LockedFieldError
func IsLockedField(err error) bool {
	var target *LockedFieldError
	return errors.As(err, &target)
}

// IsEmptyParams checks if an error is an EmptyParamsError
func IsEmptyParams(err error) bool {
	var target *EmptyParamsError
	return errors.As(err, &target)
}

// IsMissingIdentifier checks if an error is a MissingIdentifierError
func IsMissingIdentifier(err error) bool {
	var target *MissingIdentifierError
	return errors.As(err, &target)
}

// IsInconsistentColumns checks if an error is an InconsistentColumnsError
func IsInconsistentColumns(err error) bool {
	var target *InconsistentColumnsError
	return errors.As(err, &target)
}

// IsMultipleResults checks if an error is a MultipleResultsError
func IsMultipleResults(err error) bool {
	var target *MultipleResultsError
	return errors.As(err, &target)
}

// IsNoResult checks if an error is a NoResultError
func IsNoResult(err error) bool {
	var target *NoResultError
	return errors.As(err, &target)
}

// IsInvalidIdentifier checks if an error is an InvalidIdentifierError
func IsInvalidIdentifier(err error) bool {
	var target *InvalidIdentifierError
	return errors.As(err, &target)
}

// IsDatabase checks if an error is a DatabaseError
func IsDatabase(err error) bool {
	var target *DatabaseError
	return errors.As(err, &target)
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ToResponse converts an error to an ErrorResponse
func ToResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Code:    GetErrorCode(err),
		Message: err.Error(),
	}

	var cols *InconsistentColumnsError
	if errors.As(err, &cols) {
		resp.Details = map[string]any{"row": cols.Row, "expected": cols.Expected, "got": cols.Got}
	}
	return resp
}
