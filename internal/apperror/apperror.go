// Package apperror defines the domain error taxonomy shared by all services.
// Every failure a service can report carries a stable code, an optional
// violation tag (for hierarchy validation), and structured details (ids,
// quantities, limits) so handlers and clients get precise messages without
// string matching. None of these conditions are transient — callers must not
// retry automatically.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeValidationViolation   = "VALIDATION_VIOLATION"
	CodeNotFound              = "RESOURCE_NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeBusinessRuleViolation = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock     = "INSUFFICIENT_STOCK"
	CodeUnsupported           = "UNSUPPORTED"
)

// Hierarchy validation violation tags (checked in this order, first wins).
const (
	ViolationDuplicateBaseUnit    = "DuplicateBaseUnit"
	ViolationParentNotFound       = "ParentNotFound"
	ViolationCircularReference    = "CircularReference"
	ViolationLevelInconsistent    = "LevelInconsistent"
	ViolationQuantityInconsistent = "QuantityInconsistent"
	ViolationDimensionOverflow    = "DimensionOverflow"
	ViolationDuplicateBarcode     = "DuplicateBarcode"
)

// Business rule violation tags.
const (
	ViolationInvalidStatus        = "InvalidCompositionStatus"
	ViolationExcessiveDisassembly = "ExcessiveDisassemblyQuantity"
	ViolationCompositionExecuted  = "CompositionExecuted"
)

// NotFound tags.
const (
	ViolationNoSuitablePallet = "NoSuitablePallet"
)

// Unsupported tags.
const (
	ViolationCrossProductConversion = "CrossProductConversion"
)

// AppError is the canonical domain error.
type AppError struct {
	Code      string            `json:"code"`
	Violation string            `json:"violation,omitempty"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Err       error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Violation != "" {
		return fmt.Sprintf("%s/%s: %s", e.Code, e.Violation, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail attaches a single structured detail, chaining.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap attaches an underlying cause.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// HTTPStatus maps the error code to the HTTP status the thin handler layer
// should respond with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidationViolation, CodeUnsupported:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeBusinessRuleViolation, CodeInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(code, violation, message string) *AppError {
	return &AppError{Code: code, Violation: violation, Message: message}
}

// Validation returns a hierarchy-structure violation.
func Validation(violation, message string) *AppError {
	return newError(CodeValidationViolation, violation, message)
}

// NotFound reports an unknown entity id.
func NotFound(resource, id string) *AppError {
	return newError(CodeNotFound, "", fmt.Sprintf("%s not found", resource)).WithDetail("id", id)
}

// NoSuitablePallet reports that no available pallet covers the load.
func NoSuitablePallet(aggregateWeightKg string) *AppError {
	return newError(CodeNotFound, ViolationNoSuitablePallet, "no available pallet supports the aggregate weight").
		WithDetail("aggregate_weight_kg", aggregateWeightKg)
}

// Conflict reports a uniqueness or in-use clash.
func Conflict(message string) *AppError {
	return newError(CodeConflict, "", message)
}

// BusinessRule reports an operation attempted in the wrong state or beyond
// its recorded bounds.
func BusinessRule(violation, message string) *AppError {
	return newError(CodeBusinessRuleViolation, violation, message)
}

// InsufficientStock reports an assembly-time shortfall; required and available
// are base-unit quantities.
func InsufficientStock(productID, required, available string) *AppError {
	return newError(CodeInsufficientStock, "", "insufficient stock to assemble composition").
		WithDetail("product_id", productID).
		WithDetail("required_base_units", required).
		WithDetail("available_base_units", available)
}

// Unsupported reports an operation outside the engine's domain, such as
// converting between packaging types of different products.
func Unsupported(violation, message string) *AppError {
	return newError(CodeUnsupported, violation, message)
}

// As extracts an *AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// IsViolation reports whether err is an AppError carrying the given tag.
func IsViolation(err error, violation string) bool {
	appErr, ok := As(err)
	return ok && appErr.Violation == violation
}
