package errors

import "fmt"

// Error codes used across the booking core. The HTTP layer maps them to
// status codes; callers switch on Code, never on message text.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeInvalidBudget          = "INVALID_BUDGET"
	CodeInvalidDateRange       = "INVALID_DATE_RANGE"
	CodeMissingRequiredField   = "MISSING_REQUIRED_FIELD"
	CodeIllegalTransition      = "ILLEGAL_TRANSITION"
	CodeTerminalStateMutation  = "TERMINAL_STATE_MUTATION"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeEmptyResolutionNote    = "EMPTY_RESOLUTION_NOTE"
	CodeNotDisputed            = "NOT_DISPUTED"
	CodeStorageUnavailable     = "STORAGE_UNAVAILABLE"
	CodeNotFound               = "NOT_FOUND"
	CodeConflict               = "CONFLICT"
	CodeRequestTimeout         = "REQUEST_TIMEOUT"
	CodeRequestCancelled       = "REQUEST_CANCELLED"
	CodeTooManyRequests        = "TOO_MANY_REQUESTS"
	CodeServiceUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternal               = "INTERNAL_ERROR"
)

// ApplicationError represents a domain-specific error
type ApplicationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// HasCode reports whether err is an ApplicationError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*ApplicationError)
	return ok && appErr.Code == code
}

// Error constructors

func NewValidationError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeValidation, Message: message, Status: 400}
}

func NewInvalidBudgetError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeInvalidBudget, Message: message, Status: 400}
}

func NewInvalidDateRangeError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeInvalidDateRange, Message: message, Status: 400}
}

func NewMissingRequiredFieldError(field string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
		Status:  400,
	}
}

func NewIllegalTransitionError(from, to string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeIllegalTransition,
		Message: fmt.Sprintf("transition from %s to %s is not allowed", from, to),
		Status:  422,
	}
}

func NewTerminalStateMutationError(status string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeTerminalStateMutation,
		Message: fmt.Sprintf("booking in terminal status %s cannot be modified", status),
		Status:  422,
	}
}

func NewConcurrentModificationError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeConcurrentModification, Message: message, Status: 409}
}

func NewEmptyResolutionNoteError() *ApplicationError {
	return &ApplicationError{
		Code:    CodeEmptyResolutionNote,
		Message: "dispute resolution requires a non-empty resolution note",
		Status:  400,
	}
}

func NewNotDisputedError(status string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeNotDisputed,
		Message: fmt.Sprintf("booking is not disputed (current status: %s)", status),
		Status:  422,
	}
}

func NewStorageUnavailableError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeStorageUnavailable, Message: message, Status: 503}
}

func NewNotFoundError(resource string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  404,
	}
}

func NewConflictError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeConflict, Message: message, Status: 409}
}

func NewRequestTimeoutError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeRequestTimeout, Message: message, Status: 408}
}

func NewRequestCancelledError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeRequestCancelled, Message: message, Status: 499}
}

func NewTooManyRequestsError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeTooManyRequests, Message: message, Status: 429}
}

func NewServiceUnavailableError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeServiceUnavailable, Message: message, Status: 503}
}

func NewInternalError(message string) *ApplicationError {
	return &ApplicationError{Code: CodeInternal, Message: message, Status: 500}
}
