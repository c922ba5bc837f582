package translator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashokgit/Ultimate-Translator-sub000/classify"
	"github.com/ashokgit/Ultimate-Translator-sub000/tokenize"
)

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderErrorKind tags the way a provider call failed.
type ProviderErrorKind string

const (
	KindTimeout           ProviderErrorKind = "timeout"
	KindRateLimited       ProviderErrorKind = "rate_limited"
	KindInvalidCredential ProviderErrorKind = "invalid_credential"
	KindUnavailable       ProviderErrorKind = "unavailable"
)

// ProviderError indicates a translation provider failure.
type ProviderError struct {
	Provider  string
	Kind      ProviderErrorKind
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried

	// RetryAfter is the wait the provider asked for, zero when it gave none.
	RetryAfter time.Duration
}

// NewProviderError builds a ProviderError. Every kind except
// KindInvalidCredential is retryable.
func NewProviderError(provider string, kind ProviderErrorKind, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Kind:      kind,
		Message:   message,
		Cause:     cause,
		Retryable: kind != KindInvalidCredential,
	}
}

func (e *ProviderError) Error() string {
	prefix := "provider error"
	if e.Provider != "" {
		prefix = fmt.Sprintf("provider error (%s, %s)", e.Provider, e.Kind)
	} else if e.Kind != "" {
		prefix = fmt.Sprintf("provider error (%s)", e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AsProviderError converts err into a ProviderError attributed to provider.
// Existing ProviderErrors are returned unchanged; deadline errors become
// KindTimeout and everything else KindUnavailable.
func AsProviderError(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Provider == "" {
			pe.Provider = provider
		}
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewProviderError(provider, KindTimeout, "call timed out", err)
	}
	return NewProviderError(provider, KindUnavailable, "call failed", err)
}

// CacheError indicates a cache operation failure. It aborts a translation
// session.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// NotFoundError reports a referenced document, field, language or record
// that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ClassificationConfigError reports a malformed classification rule. The
// rule is skipped; classification itself never fails.
type ClassificationConfigError = classify.RuleError

// TokenizationMismatchError reports tokens dropped or invented by a
// provider. It triggers the untokenized fallback and is never surfaced.
type TokenizationMismatchError = tokenize.MismatchError
