package translator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultCooldown is how long a RateLimitedProvider holds every caller back
// after a rate_limited failure that carried no Retry-After hint.
const DefaultCooldown = 5 * time.Second

// RateLimiter paces provider calls with a token bucket. Pause holds back
// every caller sharing the limiter, so one rate_limited answer slows down
// all fields in flight rather than just the one that saw it.
type RateLimiter struct {
	mu          sync.Mutex
	tokens      float64
	burst       float64
	perSecond   float64
	last        time.Time
	pausedUntil time.Time
}

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	RequestsPerMinute int           // Sustained rate (default 60)
	BurstSize         int           // Calls allowed back to back (default: RequestsPerMinute)
	Cooldown          time.Duration // Pause after an unhinted rate_limited failure (default DefaultCooldown)
	Logger            *slog.Logger
}

// NewRateLimiter returns a limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}
	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}
	return &RateLimiter{
		tokens:    burst,
		burst:     burst,
		perSecond: rpm / 60,
		last:      time.Now(),
	}
}

// Wait blocks until a call may be made or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		d := r.reserve()
		if d == 0 {
			return nil
		}
		if err := sleep(ctx, d); err != nil {
			return err
		}
	}
}

// TryAcquire takes a token if one is available and the limiter is not
// paused.
func (r *RateLimiter) TryAcquire() bool {
	return r.reserve() == 0
}

// reserve takes a token and returns 0, or returns how long to wait before
// trying again.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Before(r.pausedUntil) {
		return r.pausedUntil.Sub(now)
	}
	r.refillLocked(now)
	if r.tokens >= 1 {
		r.tokens--
		return 0
	}
	return max(time.Duration((1-r.tokens)/r.perSecond*float64(time.Second)), time.Millisecond)
}

func (r *RateLimiter) refillLocked(now time.Time) {
	r.tokens = min(r.burst, r.tokens+now.Sub(r.last).Seconds()*r.perSecond)
	r.last = now
}

// Pause holds every caller back for d. Overlapping pauses keep the later
// end time.
func (r *RateLimiter) Pause(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(d); until.After(r.pausedUntil) {
		r.pausedUntil = until
	}
}

// Paused returns the time left in the current pause.
func (r *RateLimiter) Paused() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return max(time.Until(r.pausedUntil), 0)
}

// Available returns the number of tokens in the bucket.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refillLocked(time.Now())
	return r.tokens
}

// RateLimitedProvider paces calls to a provider and pauses all of them when
// the provider reports rate limiting.
type RateLimitedProvider struct {
	provider Provider
	limiter  *RateLimiter
	cooldown time.Duration
	logger   *slog.Logger
}

// NewRateLimitedProvider wraps provider.
func NewRateLimitedProvider(provider Provider, cfg RateLimitConfig) *RateLimitedProvider {
	p := &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(cfg),
		cooldown: cfg.Cooldown,
		logger:   cfg.Logger,
	}
	if p.cooldown <= 0 {
		p.cooldown = DefaultCooldown
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Translate implements Provider. A call whose context ends while waiting
// for its turn fails with a non-retryable KindRateLimited error.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		pe := NewProviderError(p.Name(), KindRateLimited, "rate limit wait cancelled", err)
		pe.Retryable = false
		return "", pe
	}

	out, err := p.provider.Translate(ctx, req)
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Kind == KindRateLimited {
		d := pe.RetryAfter
		if d <= 0 {
			d = p.cooldown
		}
		p.limiter.Pause(d)
		p.logger.Warn("provider rate limited, pausing calls", "provider", p.Name(), "pause", d)
	}
	return out, err
}

// Name implements Named.
func (p *RateLimitedProvider) Name() string {
	return ProviderName(p.provider)
}

// Limiter returns the underlying limiter.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.limiter
}

var _ Provider = (*RateLimitedProvider)(nil)
