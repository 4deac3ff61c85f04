// Package errors provides typed errors for folio.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode identifies the type of error.
type ErrorCode string

const (
	ErrConfigNotFound    ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigInvalid     ErrorCode = "CONFIG_INVALID"
	ErrRateLimited       ErrorCode = "RATE_LIMITED"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrNetwork           ErrorCode = "NETWORK_ERROR"
	ErrAuthRequired      ErrorCode = "AUTH_REQUIRED"
	ErrMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	ErrCacheUnavailable  ErrorCode = "CACHE_UNAVAILABLE"
	ErrDataUnavailable   ErrorCode = "DATA_UNAVAILABLE"
)

// FolioError represents a typed error with user-friendly hints.
type FolioError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Cause   error
}

func (e *FolioError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *FolioError) Unwrap() error {
	return e.Cause
}

// New creates a new FolioError.
func New(code ErrorCode, message, hint string) *FolioError {
	return &FolioError{
		Code:    code,
		Message: message,
		Hint:    hint,
	}
}

// Wrap creates a new FolioError wrapping an existing error.
func Wrap(code ErrorCode, message, hint string, cause error) *FolioError {
	return &FolioError{
		Code:    code,
		Message: message,
		Hint:    hint,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first FolioError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var fe *FolioError
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ConfigNotFound returns an error for missing config file.
func ConfigNotFound(path string) *FolioError {
	return &FolioError{
		Code:    ErrConfigNotFound,
		Message: fmt.Sprintf("config file not found: %s", path),
		Hint:    "Run `folio init` to create a configuration",
	}
}

// ConfigInvalid returns an error for invalid config.
func ConfigInvalid(reason string) *FolioError {
	return &FolioError{
		Code:    ErrConfigInvalid,
		Message: fmt.Sprintf("invalid config: %s", reason),
		Hint:    "Check your config file at ~/.config/folio/config.yaml",
	}
}

// RateLimited returns an error for an exhausted GitHub rate limit.
// A zero reset time means GitHub did not report one.
func RateLimited(endpoint string, reset time.Time) *FolioError {
	msg := fmt.Sprintf("GitHub rate limit exceeded for %s", endpoint)
	if !reset.IsZero() {
		msg = fmt.Sprintf("%s (resets at %s)", msg, reset.Format(time.Kitchen))
	}
	return &FolioError{
		Code:    ErrRateLimited,
		Message: msg,
		Hint:    "Set FOLIO_GITHUB_TOKEN or run `gh auth login` for a higher limit",
	}
}

// NotFound returns an error for a missing GitHub resource.
func NotFound(resource string) *FolioError {
	return &FolioError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("not found: %s", resource),
		Hint:    "Check that the account handle is spelled correctly",
	}
}

// NetworkError returns an error for transport failures and server-side errors.
func NetworkError(op string, cause error) *FolioError {
	return &FolioError{
		Code:    ErrNetwork,
		Message: fmt.Sprintf("%s failed", op),
		Hint:    "Check your network connection and try again",
		Cause:   cause,
	}
}

// AuthRequired returns an error for calls that need a credential.
func AuthRequired(op string) *FolioError {
	return &FolioError{
		Code:    ErrAuthRequired,
		Message: fmt.Sprintf("%s requires a GitHub token", op),
		Hint:    "Run `gh auth login` or set FOLIO_GITHUB_TOKEN environment variable",
	}
}

// MalformedResponse returns an error for responses that could not be decoded.
func MalformedResponse(op string, cause error) *FolioError {
	return &FolioError{
		Code:    ErrMalformedResponse,
		Message: fmt.Sprintf("unexpected response from %s", op),
		Cause:   cause,
	}
}

// CacheUnavailable returns an error when the backing store cannot be used.
func CacheUnavailable(cause error) *FolioError {
	return &FolioError{
		Code:    ErrCacheUnavailable,
		Message: "cache store unavailable",
		Hint:    "Results will be fetched on every refresh",
		Cause:   cause,
	}
}

// DataUnavailable returns an error when a refresh could not proceed at all.
func DataUnavailable(account string, cause error) *FolioError {
	return &FolioError{
		Code:    ErrDataUnavailable,
		Message: fmt.Sprintf("GitHub data unavailable for %s", account),
		Hint:    "Check your internet connection or try again later",
		Cause:   cause,
	}
}
