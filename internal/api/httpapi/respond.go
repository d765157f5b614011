package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	apperrors "github.com/harborworks/marinedesk/internal/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	detail := errorDetail{
		Code:    string(code),
		Message: "internal error",
	}
	status := code.HTTPStatus()
	// Internal failure details stay out of response bodies.
	if status < http.StatusInternalServerError {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			detail.Message = appErr.Message
			detail.Metadata = appErr.Metadata
		} else {
			detail.Message = err.Error()
		}
	} else {
		log.Printf("httpapi: %s: %v", code, err)
	}
	writeJSON(w, status, errorBody{Error: detail})
}
