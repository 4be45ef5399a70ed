package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

const (
	msgServerError = "Server error"
	msgNotFound    = "Short URL not found"
)

// ErrorResponse is the body of every error response: {"error": "..."}.
type ErrorResponse struct {
	status  int
	Message string `doc:"Human readable error message" example:"Short URL not found" json:"error"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *ErrorResponse) GetStatus() int {
	return e.status
}

// NewError builds an ErrorResponse, folding any detail errors into the message.
func NewError(status int, msg string, errs ...error) huma.StatusError {
	details := make([]string, 0, len(errs))

	for _, err := range errs {
		if err == nil {
			continue
		}

		var detail *huma.ErrorDetail
		if errors.As(err, &detail) && detail.Location != "" {
			details = append(details, detail.Message+" ("+detail.Location+")")

			continue
		}

		details = append(details, err.Error())
	}

	// The shorten body is the only validated input; its schema errors are client errors.
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}

	if len(details) > 0 {
		msg = msg + ": " + strings.Join(details, "; ")
	}

	return &ErrorResponse{status: status, Message: msg}
}

// NewAPIConfig returns the huma configuration shared by the server and tests.
// Every error is rendered through NewError.
func NewAPIConfig(title, version string) huma.Config {
	huma.NewError = NewError

	config := huma.DefaultConfig(title, version)
	// Drop the $schema link transformer so bodies are exactly the documented shape.
	config.CreateHooks = nil

	return config
}
