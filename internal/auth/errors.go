package auth

import "errors"

// Code is a stable, machine-readable reason attached to every auth failure.
type Code string

const (
	CodeMissingFields      Code = "missing_fields"
	CodeInvalidEmail       Code = "invalid_email"
	CodeWeakPassword       Code = "weak_password"
	CodePasswordTooLong    Code = "password_too_long"
	CodePasswordMismatch   Code = "password_mismatch"
	CodeInvalidPhone       Code = "invalid_phone"
	CodeEmailTaken         Code = "email_taken"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeAccountDeactivated Code = "account_deactivated"
	CodeNotAuthenticated   Code = "not_authenticated"
	CodeWrongPassword      Code = "wrong_password"
	CodeForbidden          Code = "forbidden"
)

// Failure is a user-facing auth error: a code plus a human-readable
// message. Two failures match under errors.Is when their codes are equal.
type Failure struct {
	Code    Code
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Is reports whether target is a Failure with the same code.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Code == f.Code
}

var (
	ErrMissingFields      = &Failure{CodeMissingFields, "Please complete all required fields."}
	ErrInvalidEmail       = &Failure{CodeInvalidEmail, "Please enter a valid email address."}
	ErrWeakPassword       = &Failure{CodeWeakPassword, "The password must be at least 6 characters long."}
	ErrPasswordTooLong    = &Failure{CodePasswordTooLong, "The password must be at most 72 bytes long."}
	ErrPasswordMismatch   = &Failure{CodePasswordMismatch, "The passwords do not match."}
	ErrInvalidPhone       = &Failure{CodeInvalidPhone, "The phone number must have 10 digits."}
	ErrEmailTaken         = &Failure{CodeEmailTaken, "This email is already registered. Please sign in."}
	ErrInvalidCredentials = &Failure{CodeInvalidCredentials, "Invalid credentials. Check your email and password."}
	ErrAccountDeactivated = &Failure{CodeAccountDeactivated, "This account has been deactivated. Contact support."}
	ErrNotAuthenticated   = &Failure{CodeNotAuthenticated, "You must sign in to continue."}
	ErrWrongPassword      = &Failure{CodeWrongPassword, "The current password is incorrect."}
	ErrForbidden          = &Failure{CodeForbidden, "You do not have permission to access this page."}
)

// ErrorKind returns the failure code of err for log labels, "unexpected"
// for any other error and "" for nil.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return string(f.Code)
	}
	return "unexpected"
}
