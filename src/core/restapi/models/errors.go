/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package models

import (
	"fmt"
	"net/http"

	"bpmn-token-engine/src/core/types"
)

// Error codes for API responses
const (
	ErrorCodeInternalError   = "INTERNAL_ERROR"
	ErrorCodeBadRequest      = "BAD_REQUEST"
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeConflict        = "CONFLICT"
	ErrorCodeValidationError = "VALIDATION_ERROR"

	ErrorCodeInstanceNotFound         = "INSTANCE_NOT_FOUND"
	ErrorCodeSubprocessToLinkNotFound = "SUBPROCESS_TO_LINK_NOT_FOUND"
	ErrorCodeTypeMismatch             = "TYPE_MISMATCH"
	ErrorCodeInstantiationFailure     = "INSTANTIATION_FAILURE"
	ErrorCodeScriptDecodingError      = "SCRIPT_DECODING_ERROR"
	ErrorCodeParentIsRoot             = "PARENT_IS_ROOT"
)

// APIError represents API error response
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationError represents validation error details
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Message string      `json:"message"`
}

// NewAPIError creates new API error
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates new API error with details
func NewAPIErrorWithDetails(code, message string, details map[string]interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewValidationError creates validation error
func NewValidationError(message string, errors []ValidationError) *APIError {
	details := map[string]interface{}{
		"validation_errors": errors,
	}
	return &APIError{
		Code:    ErrorCodeValidationError,
		Message: message,
		Details: details,
	}
}

// errorCodeFromKind maps a core ErrorKind onto its API error code.
func errorCodeFromKind(kind types.ErrorKind) string {
	switch kind {
	case types.ErrInstanceNotFound:
		return ErrorCodeInstanceNotFound
	case types.ErrSubprocessToLinkNotFound:
		return ErrorCodeSubprocessToLinkNotFound
	case types.ErrTypeMismatch:
		return ErrorCodeTypeMismatch
	case types.ErrInstantiationFailure:
		return ErrorCodeInstantiationFailure
	case types.ErrScriptDecodingError:
		return ErrorCodeScriptDecodingError
	case types.ErrParentIsRoot:
		return ErrorCodeParentIsRoot
	default:
		return ErrorCodeInternalError
	}
}

// FromCoreError converts a types.CoreError raised by the FMS/EE into an
// APIError the gin handlers can render.
func FromCoreError(err *types.CoreError) *APIError {
	details := map[string]interface{}{}
	if err.Details != "" {
		details["details"] = err.Details
	}
	for k, v := range err.Context {
		details[k] = v
	}
	if len(details) == 0 {
		details = nil
	}
	return NewAPIErrorWithDetails(errorCodeFromKind(err.Kind), err.Message, details)
}

// HTTPStatusFromErrorCode maps error codes to HTTP status codes
func HTTPStatusFromErrorCode(code string) int {
	switch code {
	case ErrorCodeBadRequest, ErrorCodeValidationError, ErrorCodeTypeMismatch:
		return http.StatusBadRequest

	case ErrorCodeNotFound, ErrorCodeInstanceNotFound, ErrorCodeSubprocessToLinkNotFound,
		ErrorCodeParentIsRoot:
		return http.StatusNotFound

	case ErrorCodeConflict:
		return http.StatusConflict

	case ErrorCodeInstantiationFailure, ErrorCodeScriptDecodingError:
		return http.StatusBadGateway

	case ErrorCodeInternalError:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors
func BadRequestError(message string) *APIError {
	return NewAPIError(ErrorCodeBadRequest, message)
}

func NotFoundError(message string) *APIError {
	return NewAPIError(ErrorCodeNotFound, message)
}

func InternalServerError(message string) *APIError {
	return NewAPIError(ErrorCodeInternalError, message)
}

func ConflictError(message string) *APIError {
	return NewAPIError(ErrorCodeConflict, message)
}
