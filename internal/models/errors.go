package models

import (
	"errors"
	"fmt"
)

// Error codes surfaced by the places facade
const (
	ErrCodeAPIKeyMissing     = "API_KEY_MISSING"
	ErrCodeNotInitialized    = "NOT_INITIALIZED"
	ErrCodePredictionsFailed = "PREDICTIONS_FAILED"
	ErrCodeDetailsFailed     = "DETAILS_FAILED"
	ErrCodeMappingFailed     = "MAPPING_FAILED"
	ErrCodePlaceNotFound     = "PLACE_NOT_FOUND"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
)

// Error codes reported by platform handlers across the bridge
const (
	PlatformCodeNotInitialized  = "NOT_INITIALIZED"
	PlatformCodeInvalidArgument = "INVALID_ARGUMENT"
	PlatformCodeNotFound        = "NOT_FOUND"
	PlatformCodeRequestDenied   = "REQUEST_DENIED"
	PlatformCodeQuotaExceeded   = "OVER_QUERY_LIMIT"
	PlatformCodeNetwork         = "NETWORK_ERROR"
	PlatformCodeAPI             = "API_ERROR"
	PlatformCodeUnknownMethod   = "UNIMPLEMENTED"
)

// PlatformError is the error half of a bridge reply
type PlatformError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform error %s: %s", e.Code, e.Message)
}

// PlacesError is the typed error delivered to callers of the places facade
type PlacesError struct {
	Code    string
	Message string
	Err     error
}

// NewPlacesError creates a PlacesError wrapping err
func NewPlacesError(code, message string, err error) *PlacesError {
	return &PlacesError{Code: code, Message: message, Err: err}
}

func (e *PlacesError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PlacesError) Unwrap() error {
	return e.Err
}

// Is matches any *PlacesError carrying the same code
func (e *PlacesError) Is(target error) bool {
	var pe *PlacesError
	if errors.As(target, &pe) {
		return pe.Code == e.Code
	}
	return false
}

// ErrorCode returns the PlacesError code carried by err, or "" when err is not one
func ErrorCode(err error) string {
	var pe *PlacesError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
