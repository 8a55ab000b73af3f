package client

import (
	"errors"
	"net/http"

	"todo-planner/internal/validation"
)

// Kind classifies an error by where it originated.
type Kind int

const (
	// KindValidation errors are detected locally and never reach the network.
	KindValidation Kind = iota + 1
	// KindRequest errors are 4xx responses.
	KindRequest
	// KindServer errors are 5xx responses.
	KindServer
	// KindNetwork errors are requests that never completed.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRequest:
		return "request"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error codes shared with the API server.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
	CodeNetwork            = "NETWORK_ERROR"
)

// ErrorBody is the JSON error envelope returned by the API.
type ErrorBody struct {
	Error      string                  `json:"error"`
	Code       string                  `json:"code"`
	StatusCode int                     `json:"statusCode"`
	Details    []validation.FieldError `json:"details,omitempty"`
}

// Error is the typed error returned by every client and store operation.
// Message is always suitable for showing to a user.
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Status  int
	Details []validation.FieldError
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the server rejected the session.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// NotFound reports whether the resource does not exist for this user.
func (e *Error) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// AsError extracts a client error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ValidationError wraps a local validation failure.
func ValidationError(err error) *Error {
	e := &Error{Kind: KindValidation, Code: CodeValidation, Message: err.Error(), Err: err}
	if verrs, ok := validation.AsErrors(err); ok {
		e.Details = verrs
	}
	return e
}

func networkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Code:    CodeNetwork,
		Message: "Network error. Please check your connection.",
		Err:     err,
	}
}

func responseError(status int, body ErrorBody) *Error {
	kind := KindRequest
	if status >= http.StatusInternalServerError {
		kind = KindServer
	}
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	code := body.Code
	if code == "" {
		code = CodeInternal
		if kind == KindRequest {
			code = CodeInvalidInput
		}
	}
	return &Error{Kind: kind, Message: msg, Code: code, Status: status, Details: body.Details}
}
