package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const maxErrorMessageLen = 200

// APIError is any non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == statusCode
}

// StatusCode returns the backend status behind err, or 502 for transport failures.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    errorMessage(statusCode, body),
	}
}

// errorMessage picks the human readable part of an error body. The backend is not
// consistent: it uses "message", "msg" or "error".
func errorMessage(statusCode int, body []byte) string {
	var fields struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &fields); err == nil {
		switch {
		case fields.Message != "":
			return fields.Message
		case fields.Msg != "":
			return fields.Msg
		case fields.Error != "":
			return fields.Error
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" || strings.HasPrefix(text, "<") {
		return http.StatusText(statusCode)
	}
	if len(text) > maxErrorMessageLen {
		text = text[:maxErrorMessageLen]
	}
	return text
}
