// Package errors defines common error types used throughout the Khan Academy API wrapper.
//
// Every concrete type matches one of the sentinel values below through errors.Is,
// so callers can branch on the failure class without caring about the concrete type:
//
//	session, err := client.Login(ctx, user, pass)
//	if errors.Is(err, kaerrors.ErrAuthenticationFailed) {
//		// wrong username or password
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel failure classes.
var (
	// ErrInvalidArgument marks a missing or malformed parameter detected before any I/O.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSessionUnavailable marks a failed anonymous session bootstrap.
	ErrSessionUnavailable = errors.New("session unavailable")
	// ErrAuthenticationFailed marks a credential submission that yielded no login cookies.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrNotFound marks a named cookie, comment or resource that is absent.
	ErrNotFound = errors.New("not found")
)

// joinParts joins error message parts with the specified separator.
func joinParts(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Is reports ConfigError as an invalid argument.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidArgument }

// ArgumentError indicates a caller supplied a missing or malformed parameter.
type ArgumentError struct {
	// Field names the offending parameter
	Field string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ArgumentError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid argument %s: %s", e.Field, msg)
	}
	return fmt.Sprintf("invalid argument: %s", msg)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// SessionError indicates the anonymous bootstrap request failed or returned no cookies.
type SessionError struct {
	// URL is the page that was requested
	URL string
	// StatusCode is the HTTP status code (if a response arrived)
	StatusCode int
	// Err contains the underlying transport error if available
	Err error
}

func (e *SessionError) Error() string {
	parts := []string{"session unavailable"}
	if e.URL != "" {
		parts = append(parts, "url "+e.URL)
	}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	} else {
		parts = append(parts, "no cookies returned")
	}
	return parts[0] + ": " + joinParts(parts[1:], ", ")
}

func (e *SessionError) Is(target error) bool { return target == ErrSessionUnavailable }

func (e *SessionError) Unwrap() error {
	return e.Err
}

// AuthenticationError indicates the credential submission reached the server but
// no login cookies came back.
type AuthenticationError struct {
	// StatusCode is the HTTP status code of the login response
	StatusCode int
	// Code is the error code reported by the login mutation (if any)
	Code string
	// Message contains the detailed error message
	Message string
}

func (e *AuthenticationError) Error() string {
	var parts []string
	parts = append(parts, "authentication failed")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}

	if e.Code != "" {
		parts = append(parts, "code "+e.Code)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ": " + joinParts(parts[1:], ", ")
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthenticationFailed }

// NotFoundError indicates a named item is absent. Kind defaults to "cookie".
type NotFoundError struct {
	// Kind describes what was looked up, such as "cookie" or "comment"
	Kind string
	// Name is the key that was looked up
	Name string
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "cookie"
	}
	return fmt.Sprintf("%s %q not found", kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// RequestError indicates a problem with making an API request.
// It always unwraps to the original transport error.
type RequestError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	// Use Message if available, otherwise use Err.Error()
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError indicates a problem parsing the API response.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx response from Khan Academy.
type APIError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// StatusCode is the HTTP status code
	StatusCode int
	// Body is the raw response body, truncated for display
	Body string
}

func (e *APIError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("API request %s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// GraphQLMessage is a single entry of a GraphQL "errors" array.
type GraphQLMessage struct {
	Message    string `json:"message"`
	Extensions struct {
		Code        string `json:"code"`
		ServiceName string `json:"serviceName"`
	} `json:"extensions"`
}

// GraphQLError reports a GraphQL response whose "errors" array was not empty.
type GraphQLError struct {
	// Operation is the GraphQL operation name
	Operation string
	// Messages holds every reported error
	Messages []GraphQLMessage
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if m.Extensions.Code != "" {
			msgs = append(msgs, fmt.Sprintf("%s (%s)", m.Message, m.Extensions.Code))
			continue
		}
		msgs = append(msgs, m.Message)
	}
	if e.Operation != "" {
		return fmt.Sprintf("graphql error in %s: %s", e.Operation, joinParts(msgs, "; "))
	}
	return "graphql error: " + joinParts(msgs, "; ")
}

// Code returns the first non-empty extension code, if any.
func (e *GraphQLError) Code() string {
	for _, m := range e.Messages {
		if m.Extensions.Code != "" {
			return m.Extensions.Code
		}
	}
	return ""
}
