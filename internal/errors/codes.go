package errors

import (
	stderrors "errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Boundary errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"

	// Reference errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidReference Code = "INVALID_REFERENCE"
	CodeInvalidRole      Code = "INVALID_ROLE"
	CodeInactiveTarget   Code = "INACTIVE_TARGET"

	// Workflow state errors
	CodeAlreadyDecided Code = "ALREADY_DECIDED"
	CodeNotAccepted    Code = "NOT_ACCEPTED"
	CodeStatusCorrupt  Code = "WORKFLOW_STATUS_CORRUPT"

	// Validation errors
	CodeInvalidArgument         Code = "INVALID_ARGUMENT"
	CodeWorkflowEmptyTargetID   Code = "WORKFLOW_EMPTY_TARGET_ID"
	CodeWorkflowEmptyVesselRef  Code = "WORKFLOW_EMPTY_VESSEL_REF"
	CodeWorkflowEmptyTitle      Code = "WORKFLOW_EMPTY_TITLE"
	CodeWorkflowInvalidDecision Code = "WORKFLOW_INVALID_DECISION"
	CodeWorkflowEmptyAssignment Code = "WORKFLOW_EMPTY_ASSIGNMENT"
	CodeIdentityInvalidRole     Code = "IDENTITY_INVALID_ROLE"

	// Collaborator errors
	CodeUnavailable Code = "UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes for the API boundary.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound

	// Unprocessable references and bad workflow input
	case CodeInvalidReference,
		CodeInvalidRole,
		CodeInactiveTarget:
		return http.StatusUnprocessableEntity
	case CodeInvalidArgument,
		CodeWorkflowEmptyTargetID,
		CodeWorkflowEmptyVesselRef,
		CodeWorkflowEmptyTitle,
		CodeWorkflowInvalidDecision,
		CodeWorkflowEmptyAssignment,
		CodeIdentityInvalidRole:
		return http.StatusBadRequest

	// State does not allow the operation
	case CodeAlreadyDecided,
		CodeNotAccepted:
		return http.StatusConflict

	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		// Includes CodeStatusCorrupt: persisted data defects surface loudly.
		return http.StatusInternalServerError
	}
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}
