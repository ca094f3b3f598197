// Package clinicerr defines the error taxonomy shared by the domain
// services. Every validation failure is detected synchronously, before any
// repository write, so a typed error always means no state was mutated.
package clinicerr

import (
	"errors"
	"fmt"
)

// Sentinels passed through from the storage layer.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// InvalidTimeError reports a temporal invariant violation, such as an
// appointment scheduled in the past or a future date of birth.
type InvalidTimeError struct {
	Field  string
	Reason string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time for %s: %s", e.Field, e.Reason)
}

// RoleMismatchError reports that a referenced identity does not carry the
// role required by its position in the operation. Side names which
// participant was wrong ("patient" or "practitioner").
type RoleMismatchError struct {
	Side string
	Want string
	Got  string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("%s reference must have role %q, got %q", e.Side, e.Want, e.Got)
}

// InvalidRoleError reports a role value outside the known set.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("invalid role %q", e.Role)
}

// InvalidStatusError reports a lifecycle status outside the known set.
// Illegal transitions between known statuses are ErrConflict, not this.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q", e.Status)
}

// InvalidValueError reports a field value outside its allowed range, such
// as a negative experience count.
type InvalidValueError struct {
	Field  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// EmptyFieldError reports a required text field that was empty or blank.
type EmptyFieldError struct {
	Field string
}

func (e *EmptyFieldError) Error() string {
	return fmt.Sprintf("%s cannot be empty", e.Field)
}

// ReferentialProtectionError refuses a profile deletion while dependent
// records still reference it.
type ReferentialProtectionError struct {
	Resource   string
	Dependents int
}

func (e *ReferentialProtectionError) Error() string {
	return fmt.Sprintf("cannot delete %s: %d dependent record(s) reference it", e.Resource, e.Dependents)
}

// PermissionDeniedError reports that the acting role does not satisfy the
// access policy for the attempted operation.
type PermissionDeniedError struct {
	Role      string
	Operation string
	Resource  string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("role %q may not %s %s", e.Role, e.Operation, e.Resource)
}

// NotificationError wraps a delivery failure from the notification
// collaborator. The entity that triggered the notification is unaffected.
type NotificationError struct {
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("reminder delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
