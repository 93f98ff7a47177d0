package enrich

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/go-github/v81/github"
)

// ErrBudgetExhausted is returned by Acquire once the per-run request cap is
// spent.
var ErrBudgetExhausted = errors.New("request budget exhausted")

// Budget paces GitHub API calls. It enforces an optional cap on the number of
// requests of one run and waits out the rate-limit window and any
// Retry-After cooldown reported by the API.
type Budget struct {
	mu sync.Mutex

	limit int // 0 means no cap
	used  int

	// remaining is the rate-limit allowance last reported, -1 when unknown.
	remaining int
	reset     time.Time
	cooldown  time.Time

	now    func() time.Time
	notify chan struct{}
}

func NewBudget(limit int) *Budget {
	return &Budget{
		limit:     limit,
		remaining: -1,
		now:       time.Now,
		notify:    make(chan struct{}),
	}
}

// Used returns how many requests were granted.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Acquire blocks until one request may be sent.
func (b *Budget) Acquire(ctx context.Context) error {
	for {
		b.mu.Lock()
		if b.limit > 0 && b.used >= b.limit {
			b.mu.Unlock()
			return ErrBudgetExhausted
		}

		now := b.now()
		var until time.Time
		switch {
		case now.Before(b.cooldown):
			until = b.cooldown
		case b.remaining == 0 && now.Before(b.reset):
			until = b.reset
		}
		if until.IsZero() {
			if b.remaining == 0 {
				// The window has reset; the next response tells the new allowance.
				b.remaining = -1
			}
			if b.remaining > 0 {
				b.remaining--
			}
			b.used++
			b.mu.Unlock()
			return nil
		}

		ch := b.notify
		b.mu.Unlock()
		if err := wait(ctx, until.Sub(now), ch); err != nil {
			return err
		}
	}
}

// Observe records the rate-limit state carried by a response or a rate-limit
// error.
func (b *Budget) Observe(resp *github.Response, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := false
	if resp != nil && resp.Response != nil {
		if resp.Rate.Limit > 0 {
			b.remaining = resp.Rate.Remaining
			b.reset = resp.Rate.Reset.Time
			changed = true
		}
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
			changed = b.coolDownLocked(time.Duration(secs)*time.Second) || changed
		}
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		b.remaining = 0
		b.reset = rateErr.Rate.Reset.Time
		changed = true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.RetryAfter != nil {
		changed = b.coolDownLocked(*abuseErr.RetryAfter) || changed
	}

	if changed {
		close(b.notify)
		b.notify = make(chan struct{})
	}
}

func (b *Budget) coolDownLocked(d time.Duration) bool {
	until := b.now().Add(d)
	if !until.After(b.cooldown) {
		return false
	}
	b.cooldown = until
	return true
}

func wait(ctx context.Context, d time.Duration, notify <-chan struct{}) error {
	if d < 0 {
		d = 0
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-notify:
		return nil
	case <-timer.C:
		return nil
	}
}
