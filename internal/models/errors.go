package models

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ValidationReason string

const (
	ReasonEmptyBody       ValidationReason = "empty_body"
	ReasonTooLong         ValidationReason = "too_long"
	ReasonSlowMode        ValidationReason = "slow_mode"
	ReasonUploadsDisabled ValidationReason = "uploads_disabled"
	ReasonInvalidArgument ValidationReason = "invalid_argument"
)

// ValidationError rejects an operation before any state is touched.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func NewValidationError(reason ValidationReason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Reason, e.Message)
}

func (e *ValidationError) GRPCStatus() *status.Status {
	if e.Reason == ReasonSlowMode {
		return status.New(codes.ResourceExhausted, e.Error())
	}
	return status.New(codes.InvalidArgument, e.Error())
}

type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) GRPCStatus() *status.Status {
	return status.New(codes.NotFound, e.Error())
}

type PermissionError struct {
	Action string
	UserID string
}

func NewPermissionError(action, userID string) *PermissionError {
	return &PermissionError{Action: action, UserID: userID}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %q is not allowed to %s", e.UserID, e.Action)
}

func (e *PermissionError) GRPCStatus() *status.Status {
	return status.New(codes.PermissionDenied, e.Error())
}

// DeliveryFailure is recovered inside the delivery channel and never returned to callers.
type DeliveryFailure struct {
	Channel string
	Err     error
}

func (e *DeliveryFailure) Error() string {
	return fmt.Sprintf("deliver %s: %v", e.Channel, e.Err)
}

func (e *DeliveryFailure) Unwrap() error {
	return e.Err
}

func (e *DeliveryFailure) GRPCStatus() *status.Status {
	return status.New(codes.Unavailable, e.Error())
}

var ErrBackendUnavailable = errors.New("backend unavailable")

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

// ValidationReasonOf returns the reason of a wrapped ValidationError, or "".
func ValidationReasonOf(err error) ValidationReason {
	var target *ValidationError
	if errors.As(err, &target) {
		return target.Reason
	}
	return ""
}
