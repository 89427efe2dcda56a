package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
)

const (
	NetworkErrorText  = "Network error: unable to reach the server"
	FallbackErrorText = "An unexpected error occurred"
)

// ResponseError is a rejected request: the HTTP status plus whatever message
// the server put in the body.
type ResponseError struct {
	Status     int
	StatusText string
	Data       struct {
		Message string `json:"message"`
	}
}

func (e *ResponseError) Error() string {
	if e.Data.Message != "" {
		return e.Data.Message
	}
	if e.StatusText != "" {
		return e.StatusText
	}
	return http.StatusText(e.Status)
}

// NetworkError means no HTTP response was received at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// Message extracts the one human-readable string the stores record, in
// priority order: server message, HTTP status text, network error text,
// generic fallback.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	var respErr *ResponseError
	if stderrors.As(err, &respErr) {
		if msg := strings.TrimSpace(respErr.Data.Message); msg != "" {
			return msg
		}
		if txt := strings.TrimSpace(respErr.StatusText); txt != "" {
			return txt
		}
		if txt := http.StatusText(respErr.Status); txt != "" {
			return txt
		}
	}

	var netErr *NetworkError
	if stderrors.As(err, &netErr) ||
		stderrors.Is(err, gobreaker.ErrOpenState) ||
		stderrors.Is(err, gobreaker.ErrTooManyRequests) ||
		stderrors.Is(err, context.DeadlineExceeded) {
		return NetworkErrorText
	}

	return FallbackErrorText
}

// AsRequestError converts any request failure into the application taxonomy.
// Validation and other AppErrors pass through untouched.
func AsRequestError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return apperrors.Request(Message(err), err)
}

// serverMessage pulls a message out of an error body. The API is not
// consistent: {"message"}, {"error": "..."} and {"error": {"message"}} all occur.
func serverMessage(body []byte) string {
	var envelope struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	if len(envelope.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Error, &s); err == nil {
		return s
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}
