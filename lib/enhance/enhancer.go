package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trailbook/lib/anthropic"
	"trailbook/lib/journal"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("enhance")

// Completer is the generative API capability the enhancer consumes:
// prompt in, completion text out, may fail.
type Completer interface {
	Complete(ctx context.Context, system string, prompt string, maxTokens int) (string, error)
}

type Options struct {
	Mode   Mode
	Cache  *Cache
	Client Completer
	// MinDelay is the minimum wait between API calls. Cache hits
	// never wait. Defaults to one second.
	MinDelay time.Duration
	// MaxAttempts bounds retries per entry and mode. Defaults to 3.
	MaxAttempts int
}

// Stats summarizes one enhancement run.
type Stats struct {
	Entries   int
	CacheHits int
	ApiCalls  int
	Failures  int
}

type Enhancer struct {
	mode        Mode
	cache       *Cache
	client      Completer
	minDelay    time.Duration
	maxAttempts int
	lastCall    time.Time
}

func New(opts Options) *Enhancer {
	if opts.MinDelay == 0 {
		opts.MinDelay = time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	return &Enhancer{
		mode:        opts.Mode,
		cache:       opts.Cache,
		client:      opts.Client,
		minDelay:    opts.MinDelay,
		maxAttempts: opts.MaxAttempts,
	}
}

// Enhance runs the enhancement pass over a journal, in entry order,
// and returns the enhanced copy. A single entry's failure is logged
// and that entry is kept unenhanced; the run only aborts on
// cancellation or when the cache cannot be persisted.
func (en *Enhancer) Enhance(ctx context.Context, j journal.Journal) (journal.Journal, Stats, error) {
	ctx, span := tracer.Start(ctx, "Enhance")
	defer span.End()
	span.SetAttributes(
		attribute.String("mode", string(en.mode)),
		attribute.Int("entries", len(j.Entries)),
	)

	stats := Stats{Entries: len(j.Entries)}
	out := make([]journal.Entry, len(j.Entries))

	for i, entry := range j.Entries {
		for _, mode := range en.mode.baseModes() {
			text, err := en.enhanceOne(ctx, entry, mode, &stats)
			if err != nil {
				if ctx.Err() != nil {
					return journal.Journal{}, stats, ctx.Err()
				}
				var persistErr persistError
				if errors.As(err, &persistErr) {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					return journal.Journal{}, stats, err
				}

				// entry proceeds unenhanced
				stats.Failures++
				slog.WarnContext(
					ctx, "enhancement failed, keeping entry unenhanced",
					"entry", entry.ID(),
					"date", entry.Date.Format("2006-01-02"),
					"mode", mode,
					"err", err,
				)
				continue
			}

			switch mode {
			case ModeContext:
				entry.Context = text
			case ModeFacts:
				entry.Facts = text
			}
		}
		out[i] = entry
	}

	span.SetAttributes(
		attribute.Int("cache_hits", stats.CacheHits),
		attribute.Int("api_calls", stats.ApiCalls),
		attribute.Int("failures", stats.Failures),
	)
	return journal.Journal{Entries: out}, stats, nil
}

type persistError struct {
	err error
}

func (e persistError) Error() string {
	return fmt.Sprintf("persist enhancement cache: %s", e.err)
}

func (e persistError) Unwrap() error {
	return e.err
}

// enhanceOne resolves the supplement text for one entry and mode:
// cache hit, or API call with bounded retries and write-through
// caching on success.
func (en *Enhancer) enhanceOne(ctx context.Context, entry journal.Entry, mode Mode, stats *Stats) (string, error) {
	id := entry.ID()
	if rec, ok := en.cache.Get(id, mode); ok {
		stats.CacheHits++
		return rec.Text, nil
	}

	prompt := promptFor(mode, entry)

	var lastErr error
	for attempt := 0; attempt < en.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoffDelay(attempt)); err != nil {
				return "", err
			}
		}
		if err := en.throttle(ctx); err != nil {
			return "", err
		}

		stats.ApiCalls++
		text, err := en.client.Complete(ctx, systemPrompt, prompt, maxCompletionTokens)
		if err == nil {
			if err := en.cache.Put(id, mode, text); err != nil {
				return "", persistError{err: err}
			}
			return text, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var transient anthropic.TransientError
		if !errors.As(err, &transient) {
			break
		}
		slog.WarnContext(
			ctx, "transient api failure, retrying",
			"entry", id,
			"mode", mode,
			"attempt", attempt+1,
			"err", err,
		)
	}

	return "", lastErr
}

// backoffDelay is exponential (1s, 2s, 4s, ...) with a little random
// jitter so retries do not land in lockstep with the rate limiter.
func backoffDelay(attempt int) time.Duration {
	delay := time.Second << (attempt - 1)
	jitter, err := random.IntRange(0, 250)
	if err == nil {
		delay += time.Duration(jitter) * time.Millisecond
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// throttle enforces the minimum delay between API calls.
func (en *Enhancer) throttle(ctx context.Context) error {
	if !en.lastCall.IsZero() {
		wait := en.minDelay - time.Since(en.lastCall)
		if wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	en.lastCall = time.Now()
	return nil
}
