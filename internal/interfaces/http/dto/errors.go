package dto

import (
	"errors"
	"net/http"

	"github.com/dinehub/backend/internal/domain/shared"
)

// domainCodeHTTPStatus maps domain error codes to HTTP status codes. Codes
// not listed here fall back on the business/infrastructure split.
var domainCodeHTTPStatus = map[string]int{
	"NOT_FOUND":                http.StatusNotFound,
	"ALREADY_EXISTS":           http.StatusConflict,
	"VERSION_CONFLICT":         http.StatusConflict,
	"VALIDATION_ERROR":         http.StatusBadRequest,
	"INVALID_STATE_TRANSITION": http.StatusUnprocessableEntity,
	"INSUFFICIENT_POINTS":      http.StatusUnprocessableEntity,
	"INSUFFICIENT_FUNDS":       http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":       http.StatusUnprocessableEntity,
	"UNAUTHORIZED":             http.StatusUnauthorized,
	"FORBIDDEN":                http.StatusForbidden,
	"BUSY":                     http.StatusTooManyRequests,
	"UNAVAILABLE":              http.StatusServiceUnavailable,
	"CONSISTENCY_FAILURE":      http.StatusServiceUnavailable,
}

// HTTPStatusForError maps an error from the dispatch boundary to an HTTP
// status. Unmapped business rejections are 422; everything else is 500.
func HTTPStatusForError(err error) int {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}
	if status, ok := domainCodeHTTPStatus[domainErr.Code]; ok {
		return status
	}
	if shared.IsBusinessError(domainErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// ErrorCodeForError extracts the machine-readable code from an error
func ErrorCodeForError(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}
