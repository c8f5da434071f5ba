package services

import (
	"errors"
	"fmt"
	"strings"

	"order_service/pkg/platform"

	"gorm.io/gorm"
)

// ValidationError carries every violated constraint of a request, not
// just the first one.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func NewValidationError(errs ...string) *ValidationError {
	return &ValidationError{Errors: errs}
}

// NotFoundError marks a missing order, request or returned order.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ConflictError marks an illegal transition or duplicate request.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// UpstreamError marks a failed awaited call to a sibling service.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// upstreamOrConflict classifies an awaited sibling-service failure: a
// non-zero envelope code is a business refusal worth a 400, anything
// else (network, timeout, bad payload) an upstream failure.
func upstreamOrConflict(op string, err error) error {
	var serviceErr *platform.ServiceError
	if errors.As(err, &serviceErr) {
		return &ConflictError{Message: serviceErr.Message}
	}
	return &UpstreamError{Op: op, Err: err}
}

// notFoundOr maps a gorm record-not-found to the domain message and
// passes other errors through.
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Message: message}
	}
	return err
}
