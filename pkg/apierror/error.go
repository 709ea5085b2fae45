package apierror

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes returned in the envelope.
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeValidation     = "VALIDATION_ERROR"
	CodePlayerNotFound = "PLAYER_NOT_FOUND"
	CodeItemNotFound   = "ITEM_NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeNoOpReward     = "NO_OP_REWARD"
	CodeInternal       = "INTERNAL_ERROR"
)

// Error is an error that knows its HTTP status and wire code.
type Error struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError points at one offending request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New builds an error with an explicit status and code.
func New(status int, code, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{StatusCode: status, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// WithDetails appends field-level details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = append(e.Details, details...)
	return e
}

// ToJSON renders the error inside the {"success":false,"error":...} envelope.
func (e *Error) ToJSON() []byte {
	data, _ := json.Marshal(struct {
		Success bool   `json:"success"`
		Error   *Error `json:"error"`
	}{Error: e})
	return data
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, message)
}

// ValidationError reports rejected input, usually with per-field details.
func ValidationError(message string, details ...FieldError) *Error {
	return New(http.StatusBadRequest, CodeValidation, message).WithDetails(details...)
}

func PlayerNotFound(message string) *Error {
	return New(http.StatusNotFound, CodePlayerNotFound, message)
}

// ItemNotFound is returned when the player does not hold the named item.
func ItemNotFound(message string) *Error {
	return New(http.StatusNotFound, CodeItemNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, CodeConflict, message)
}

// NoOpReward is returned when a reward would change nothing.
func NoOpReward(message string) *Error {
	return New(http.StatusUnprocessableEntity, CodeNoOpReward, message)
}

func InternalError(message string) *Error {
	return New(http.StatusInternalServerError, CodeInternal, message)
}
