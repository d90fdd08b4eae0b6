package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors. Business errors translate to 4xx-equivalent responses
// at the dispatch boundary; infrastructure errors translate to retryable
// 5xx-equivalent responses.
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation             = NewDomainError("VALIDATION_ERROR", "Invalid command input")
	ErrVersionConflict        = NewDomainError("VERSION_CONFLICT", "State was modified concurrently")
	ErrInvalidStateTransition = NewDomainError("INVALID_STATE_TRANSITION", "Operation not allowed in current state")
	ErrInsufficientPoints     = NewDomainError("INSUFFICIENT_POINTS", "Insufficient loyalty points available")
	ErrInsufficientFunds      = NewDomainError("INSUFFICIENT_FUNDS", "Insufficient balance available")
	ErrInsufficientStock      = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrBusy                   = NewDomainError("BUSY", "Actor command queue is full, retry with backoff")
	ErrUnavailable            = NewDomainError("UNAVAILABLE", "Backing store or event fabric unavailable")
	ErrConsistencyFailure     = NewDomainError("CONSISTENCY_FAILURE", "Persisted version diverged, actor quarantined")
	ErrUnauthorized           = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden              = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
)

// IsBusinessError reports whether err is a DomainError that callers should not
// retry blindly (4xx-equivalent). Infrastructure failures are not DomainErrors
// except for the explicit Busy/Unavailable/ConsistencyFailure codes.
func IsBusinessError(err error) bool {
	de, ok := err.(*DomainError)
	if !ok {
		return false
	}
	switch de.Code {
	case "BUSY", "UNAVAILABLE", "CONSISTENCY_FAILURE":
		return false
	}
	return true
}
