package apperrors

/*
Factories for the four error kinds the lifecycle services raise:
validation, authorization, not-found and authentication. Services return
these; the transport layer maps HTTPCode/Code onto the response.
*/

// NewValidationError signals malformed input or a state-invariant
// violation (duplicate application, invalid status, expired edit window).
func NewValidationError(domain, message string) *AppError {
	return New(CodeValidationFailed, domain, message)
}

// NewAuthorizationError signals that the caller lacks ownership or role
// for the attempted action.
func NewAuthorizationError(domain, message string) *AppError {
	return New(CodeForbidden, domain, message)
}

// NewNotFoundError signals that a referenced entity is absent.
func NewNotFoundError(domain, message string) *AppError {
	return New(CodeNotFound, domain, message)
}

// NewAuthenticationError signals a failed or missing credential; raised at
// the token boundary, not by the lifecycle services.
func NewAuthenticationError(domain, message string) *AppError {
	return New(CodeUnauthorized, domain, message)
}

// NewBadRequestError signals an unparseable request body or query string.
func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, "request", message)
}

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
)

// IsValidation reports whether err is a validation AppError.
func IsValidation(err error) bool {
	var appErr *AppError
	return As(err, &appErr) && appErr.Code == CodeValidationFailed
}

// IsAuthorization reports whether err is an authorization AppError.
func IsAuthorization(err error) bool {
	var appErr *AppError
	return As(err, &appErr) && appErr.Code == CodeForbidden
}

// IsNotFound reports whether err is a not-found AppError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return As(err, &appErr) && appErr.Code == CodeNotFound
}
