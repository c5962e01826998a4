package service

import "chronobus-api/internal/domain"

const (
	msgServerError       = "Server error"
	msgUnexpected        = "An unexpected error occurred."
	msgGoogleAuthFailed  = "Failed to authenticate with Google"
	msgInvalidOrExpired  = "Invalid or expired token."
	msgUserNotFound      = "User not found."
	msgEmailNotFound     = "Email not found."
	msgCredentialsNeeded = "Email and password required."
)

var (
	ErrMissingCredentials    = domain.NewError(domain.KindValidation, msgCredentialsNeeded)
	ErrPasswordTooLong       = domain.NewError(domain.KindValidation, "Password must be at most 72 bytes.")
	ErrEmailTaken            = domain.NewError(domain.KindConflict, "Account already exists with this email.")
	ErrTokenRequired         = domain.NewError(domain.KindValidation, "Token is required.")
	ErrConfirmTokenInvalid   = domain.NewError(domain.KindAuth, msgInvalidOrExpired)
	ErrUserNotFound          = domain.NewError(domain.KindNotFound, msgUserNotFound)
	ErrGoogleTokenMissing    = domain.NewError(domain.KindValidation, "Google token missing")
	ErrGoogleTokenInvalid    = domain.NewError(domain.KindValidation, "Invalid Google token")
	ErrGoogleAuthFailed      = domain.NewError(domain.KindAuth, msgGoogleAuthFailed)
	ErrInvalidCredentials    = domain.NewError(domain.KindAuth, "Invalid email or password.")
	ErrEmailNotConfirmed     = domain.NewError(domain.KindForbidden, "Please confirm your email before logging in.")
	ErrRecoveryEmailMissing  = domain.NewError(domain.KindValidation, "Email required.")
	ErrRecoveryFieldsMissing = domain.NewError(domain.KindValidation, "Email, code or password required.")
	ErrEmailNotFound         = domain.NewError(domain.KindConflict, msgEmailNotFound)
	ErrRecoveryCodeMismatch  = domain.NewError(domain.KindAuth, "Code not correct.")
	ErrRateLimited           = domain.NewError(domain.KindRateLimited, "Too many requests.")
	ErrMissingToken          = domain.NewError(domain.KindAuth, "Missing token")
	ErrSessionInvalid        = domain.NewError(domain.KindAuth, msgInvalidOrExpired)
	ErrNotValidToken         = domain.NewError(domain.KindForbidden, "Not valid token")
	ErrAdminRequired         = domain.NewError(domain.KindForbidden, "Unauthorized")
)

func serverError(err error) error {
	return domain.WrapError(domain.KindServer, msgServerError, err)
}
