package dto

import "net/http"

// Error code constants, format ERR_<CATEGORY>_<DESCRIPTION>
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeCycleInProgress is used when a sync cycle is already running
	ErrCodeCycleInProgress = "ERR_CYCLE_IN_PROGRESS"
	// ErrCodeSourceUnavailable is used when a marketplace source cannot be reached
	ErrCodeSourceUnavailable = "ERR_SOURCE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeCycleInProgress:   http.StatusConflict,
	ErrCodeSourceUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error for unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
