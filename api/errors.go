package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/jrsteele09/go-chat-frontend/internal/utils"
)

// DefaultErrorMessage is used when neither the response nor the transport gave a message
const DefaultErrorMessage = "An error occurred"

// AuthError is returned when the backend answers 401. The session tokens have already been
// purged from the local store by the time the caller sees it.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// RequestError is any other failure: transport errors (StatusCode 0) or a non-2xx answer.
type RequestError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err carries an *AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// errorMessage pulls a human readable message out of an error body: "message", then "error",
// then "detail", then the first field error of a validation map.
func errorMessage(statusCode int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if msg, ok := payload[key].(string); ok && msg != "" {
				return msg
			}
		}
		if msg := firstFieldError(payload); msg != "" {
			return msg
		}
	}
	if statusCode != 0 {
		return fmt.Sprintf("Request failed with status code %d", statusCode)
	}
	return DefaultErrorMessage
}

// firstFieldError handles {"email": ["user with this email already exists."]}
func firstFieldError(payload map[string]any) string {
	fields := make([]string, 0, len(payload))
	for k := range payload {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	for _, field := range fields {
		switch v := payload[field].(type) {
		case string:
			if v != "" {
				return field + ": " + v
			}
		case []any:
			if msgs := utils.ToStringSlice(v); len(msgs) > 0 {
				return field + ": " + strings.Join(msgs, " ")
			}
		}
	}
	return ""
}

func transportError(err error) *RequestError {
	msg := err.Error()
	if msg == "" {
		msg = DefaultErrorMessage
	}
	return &RequestError{Message: msg, Err: err}
}

func statusError(resp *http.Response, body []byte) *RequestError {
	return &RequestError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.StatusCode, body),
	}
}
