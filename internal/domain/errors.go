package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of these so
// callers can classify failures with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthorization  = errors.New("authorization error")
	ErrAuthentication = errors.New("authentication error")
	ErrPersistence    = errors.New("persistence error")
)

var (
	// ErrNotLoggedIn is returned by gated operations when no session is active.
	ErrNotLoggedIn = fmt.Errorf("%w: not logged in", ErrAuthorization)
	// ErrAdminNotAllowed is returned when the administrator calls a student-only operation.
	ErrAdminNotAllowed = fmt.Errorf("%w: administrator cannot perform this operation", ErrAuthorization)
	// ErrAlreadyLoggedIn is returned by login while a session is active.
	ErrAlreadyLoggedIn = fmt.Errorf("%w: already logged in", ErrAuthorization)
	// ErrSessionChanged is returned when a quiz attempt is finished under a different session than it started in.
	ErrSessionChanged = fmt.Errorf("%w: session changed during quiz attempt", ErrAuthorization)

	// ErrInvalidCredentials indicates no principal matched the username/password pair.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuthentication)
	// ErrPasswordMismatch indicates the current password failed verification.
	ErrPasswordMismatch = fmt.Errorf("%w: current password is incorrect", ErrAuthentication)

	// ErrUnknownCategory indicates the catalog has no such category.
	ErrUnknownCategory = fmt.Errorf("%w: unknown quiz category", ErrValidation)
	// ErrEmptyCategory indicates a category without questions.
	ErrEmptyCategory = fmt.Errorf("%w: quiz category has no questions", ErrValidation)
	// ErrInvalidAnswer indicates a label outside the presented options.
	ErrInvalidAnswer = fmt.Errorf("%w: invalid answer label", ErrValidation)
	// ErrMalformedQuestion indicates catalog content the engine cannot present.
	ErrMalformedQuestion = fmt.Errorf("%w: malformed quiz question", ErrValidation)
	// ErrUnknownField indicates a profile field that cannot be updated.
	ErrUnknownField = fmt.Errorf("%w: unknown profile field", ErrValidation)
	// ErrEmptyPassword indicates a blank replacement password.
	ErrEmptyPassword = fmt.Errorf("%w: password cannot be empty", ErrValidation)
	// ErrAttemptFinished indicates an answer submitted after the last question.
	ErrAttemptFinished = fmt.Errorf("%w: quiz attempt already finished", ErrValidation)
	// ErrAttemptIncomplete indicates Finish was called with questions left.
	ErrAttemptIncomplete = fmt.Errorf("%w: quiz attempt has unanswered questions", ErrValidation)

	// ErrPrincipalNotFound indicates the registration id is not in the identity store.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrStoreNotFound is returned by state stores that have nothing persisted yet.
	ErrStoreNotFound = errors.New("state store not found")
)

// RegistrationReason enumerates why a registration was rejected.
type RegistrationReason string

const (
	ReasonEmptyUsername RegistrationReason = "EMPTY_USERNAME"
	ReasonUsernameTaken RegistrationReason = "USERNAME_TAKEN"
	ReasonEmptyPassword RegistrationReason = "EMPTY_PASSWORD"
)

// RegistrationError is returned by Register without mutating the identity store.
type RegistrationError struct {
	Reason RegistrationReason
}

func (e *RegistrationError) Error() string {
	switch e.Reason {
	case ReasonEmptyUsername:
		return "registration rejected: username cannot be empty"
	case ReasonUsernameTaken:
		return "registration rejected: username already taken or reserved"
	case ReasonEmptyPassword:
		return "registration rejected: password cannot be empty"
	default:
		return "registration rejected: " + string(e.Reason)
	}
}

func (e *RegistrationError) Unwrap() error {
	return ErrValidation
}
