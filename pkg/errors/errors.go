package errors

import (
	"fmt"
	"time"
)

// Kind classifies what went wrong during a check
type Kind string

const (
	// KindInvalidURL represents a malformed input URL; no network was attempted
	KindInvalidURL Kind = "invalid_url"
	// KindNavigation represents transport/DNS/TLS failures during page load
	KindNavigation Kind = "navigation"
	// KindTimeout represents a check that produced no decision within its bound
	KindTimeout Kind = "timeout"
	// KindIndeterminate represents a loaded page with no confident verdict
	KindIndeterminate Kind = "indeterminate"
	// KindRenderer represents renderer startup or script-evaluation failures
	KindRenderer Kind = "renderer"
	// KindConfiguration represents configuration errors
	KindConfiguration Kind = "configuration"
)

// CheckError represents a check-specific error
type CheckError struct {
	Kind     Kind
	Retailer string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *CheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Kind, e.Retailer, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Retailer, e.Message)
}

// Unwrap returns the underlying error
func (e *CheckError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if re-invoking the check may succeed
func (e *CheckError) IsRetryable() bool {
	switch e.Kind {
	case KindNavigation, KindTimeout:
		return true
	default:
		return false
	}
}

// New creates a new CheckError
func New(kind Kind, retailer, message string, err error) *CheckError {
	return &CheckError{
		Kind:     kind,
		Retailer: retailer,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewInvalidURL creates a new invalid-URL error
func NewInvalidURL(rawURL string) *CheckError {
	return New(KindInvalidURL, "", fmt.Sprintf("malformed URL %q", rawURL), nil)
}

// NewNavigation creates a new navigation error
func NewNavigation(retailer, message string, err error) *CheckError {
	return New(KindNavigation, retailer, message, err)
}

// NewTimeout creates a new timeout error
func NewTimeout(retailer string, bound time.Duration) *CheckError {
	return New(KindTimeout, retailer, fmt.Sprintf("no decision within %v", bound), nil)
}

// NewIndeterminate creates a new indeterminate error
func NewIndeterminate(retailer, message string) *CheckError {
	return New(KindIndeterminate, retailer, message, nil)
}

// NewRenderer creates a new renderer error
func NewRenderer(retailer, message string, err error) *CheckError {
	return New(KindRenderer, retailer, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CheckError {
	return New(KindConfiguration, "", message, err)
}
