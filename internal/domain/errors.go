package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for callers. Procedures never let raw
// storage errors cross their boundary unmapped.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindUnauthorized    ErrorKind = "unauthorized"
	KindValidation      ErrorKind = "validation"
	KindInvariant       ErrorKind = "invariant_violation"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindInternal        ErrorKind = "internal"
)

// Invariant and denial codes surfaced in Error.Code.
const (
	CodeInsufficientRole  = "insufficient_role"
	CodeNotOwner          = "not_owner"
	CodeMissingGrant      = "missing_grant"
	CodeAdminRequired     = "AdminRequired"
	CodeAdminStillAssigned = "AdminStillAssigned"
	CodeCompanyRequired   = "CompanyRequired"
	CodeDuplicateReport   = "DuplicateReport"
	CodeSoleAdmin         = "SoleAdmin"
	CodePasswordReuse     = "PasswordReuse"
)

// Error is the structured error every procedure returns. FieldErrors are
// addressable by field name so the UI layer can re-render forms; Blocking
// lists the entities preventing a mutation (e.g. companies still assigned
// to an admin being deleted).
type Error struct {
	Kind        ErrorKind           `json:"kind"`
	Code        string              `json:"code"`
	Message     string              `json:"message"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
	Blocking    []string            `json:"blocking,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" && e.Code != string(e.Kind) {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Unauthenticated(msg string) *Error {
	if msg == "" {
		msg = "no valid session"
	}
	return &Error{Kind: KindUnauthenticated, Code: string(KindUnauthenticated), Message: msg}
}

// Unauthorized carries a denial reason code: insufficient_role, not_owner
// or missing_grant.
func Unauthorized(reason, msg string) *Error {
	return &Error{Kind: KindUnauthorized, Code: reason, Message: msg}
}

func Validation(msg string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Code: string(KindValidation), Message: msg, FieldErrors: fields}
}

func Invariant(code, msg string, blocking ...string) *Error {
	return &Error{Kind: KindInvariant, Code: code, Message: msg, Blocking: blocking}
}

func NotFoundErr(resource string) *Error {
	return &Error{Kind: KindNotFound, Code: string(KindNotFound), Message: resource + " not found"}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Code: string(KindConflict), Message: msg + " (retry may succeed)"}
}

// Internal redacts the underlying cause; callers log the full error
// server-side before returning this.
func Internal() *Error {
	return &Error{Kind: KindInternal, Code: string(KindInternal), Message: "internal error"}
}

// KindOf extracts the taxonomy kind of err, or KindInternal for anything
// that is not a *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
