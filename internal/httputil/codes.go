package httputil

// Machine-readable error codes returned alongside error messages.
// Clients should branch on these, not on the message text.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeFieldsRequired     = "FIELDS_REQUIRED"
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeMissingAuth        = "MISSING_AUTH"
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeInternalError      = "INTERNAL_ERROR"
)
