package translator

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// RetryConfig controls how RetryableProvider retries failed provider calls.
type RetryConfig struct {
	MaxRetries int           // Retries after the first attempt
	BaseDelay  time.Duration // Wait before the first retry, doubled for each further one
	MaxDelay   time.Duration // Upper bound for any single wait, Retry-After hints included

	// RateLimitFactor stretches the wait after a rate_limited failure that
	// came without a Retry-After hint (default 2).
	RateLimitFactor float64

	Logger *slog.Logger // Receives one warning per retry (default: slog.Default())
}

// DefaultRetryConfig returns the retry settings used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		BaseDelay:       1 * time.Second,
		MaxDelay:        30 * time.Second,
		RateLimitFactor: 2,
	}
}

// Backoff returns the wait before retry number attempt (0-based) after a
// call failed with pe. A provider's own Retry-After hint takes precedence.
func (c RetryConfig) Backoff(attempt int, pe *ProviderError) time.Duration {
	var d time.Duration
	switch {
	case pe != nil && pe.RetryAfter > 0:
		d = pe.RetryAfter
	default:
		if attempt > 30 {
			attempt = 30
		}
		d = c.BaseDelay << attempt
		if pe != nil && pe.Kind == KindRateLimited {
			factor := c.RateLimitFactor
			if factor <= 0 {
				factor = 2
			}
			d = time.Duration(float64(d) * factor)
		}
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// IsRetryable reports whether err is a ProviderError marked retryable.
// Any other error, context errors included, is final.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// RetryableProvider retries retryable provider failures with exponential
// backoff. Each field translation gets its own attempts.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
	logger   *slog.Logger
	retries  atomic.Int64
}

// NewRetryableProvider wraps provider.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryableProvider{provider: provider, config: cfg, logger: logger}
}

// Translate implements Provider. On cancellation while backing off it
// returns the context's error.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		out, err := p.provider.Translate(ctx, req)
		if err == nil {
			return out, nil
		}
		if attempt >= p.config.MaxRetries || !IsRetryable(err) {
			return "", err
		}

		var pe *ProviderError
		errors.As(err, &pe)
		delay := p.config.Backoff(attempt, pe)
		p.retries.Add(1)
		p.logger.Warn("retrying provider call",
			"provider", p.Name(),
			"kind", pe.Kind,
			"lang", req.TargetLang,
			"field", req.Context,
			"attempt", attempt+1,
			"max_retries", p.config.MaxRetries,
			"delay", delay,
			"error", err,
		)
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

// Retries returns how many retries have been made so far.
func (p *RetryableProvider) Retries() int64 {
	return p.retries.Load()
}

// Name implements Named.
func (p *RetryableProvider) Name() string {
	return ProviderName(p.provider)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ Provider = (*RetryableProvider)(nil)
