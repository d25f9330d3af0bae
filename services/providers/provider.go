package providers

import (
	"context"
	"errors"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/circuitbreaker"
	"lyricsync-go/logcolors"
)

// Source is the minimal surface a lyrics provider must implement. Search
// resolves a title into candidates; FetchLyrics downloads the raw payload for
// one candidate's key.
type Source interface {
	Name() string
	Search(ctx context.Context, title string) ([]Candidate, error)
	FetchLyrics(ctx context.Context, key string) (RawLyrics, error)
}

// Adapter wraps a Source with the state the orchestrator needs between calls:
// the duration-filtered candidate list from the last search, a status for
// diagnostics, and a circuit breaker that fast-fails a flapping provider.
type Adapter struct {
	source      Source
	breaker     *circuitbreaker.CircuitBreaker
	toleranceMs int

	mu      sync.Mutex
	status  Status
	results []Candidate
}

// NewAdapter builds an adapter around source. toleranceMs is the maximum
// allowed distance between a candidate's length and the target length; the
// breaker may be nil to disable fast-failing.
func NewAdapter(source Source, breaker *circuitbreaker.CircuitBreaker, toleranceMs int) *Adapter {
	return &Adapter{
		source:      source,
		breaker:     breaker,
		toleranceMs: toleranceMs,
		status:      StatusPending,
	}
}

// Name returns the wrapped source's identifier.
func (a *Adapter) Name() string {
	return a.source.Name()
}

// Status returns the adapter's position in its search/fetch cycle.
func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Results returns a copy of the candidates kept from the last search.
func (a *Adapter) Results() []Candidate {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Candidate, len(a.results))
	copy(out, a.results)
	return out
}

// Reset clears stored candidates and returns the adapter to pending.
func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = StatusPending
	a.results = nil
}

// MarkRejected records that the lyrics fetched from this adapter were
// discarded downstream (too few usable lines).
func (a *Adapter) MarkRejected() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = StatusNoAccept
}

// HasMusicInfo searches the provider for title and keeps every candidate
// whose length falls within the tolerance window around targetLengthMs. A
// non-positive target skips the duration filter entirely (length unknown).
// Returns true when at least one candidate survived.
func (a *Adapter) HasMusicInfo(ctx context.Context, title string, targetLengthMs int) (bool, error) {
	a.setState(StatusLoading, nil)

	if a.breaker != nil && !a.breaker.Allow() {
		a.setState(StatusNotFound, nil)
		return false, NewProviderError(a.Name(), "circuit open",
			errors.Join(ErrProviderUnavailable, circuitbreaker.ErrCircuitOpen))
	}

	candidates, err := a.source.Search(ctx, title)
	if err != nil {
		if a.breaker != nil {
			a.breaker.RecordFailure()
		}
		a.setState(StatusNotFound, nil)
		return false, NewProviderError(a.Name(), "search failed",
			errors.Join(ErrProviderUnavailable, err))
	}
	if a.breaker != nil {
		a.breaker.RecordSuccess()
	}

	kept := candidates
	if targetLengthMs > 0 {
		kept = filterByLength(candidates, targetLengthMs, a.toleranceMs)
		if len(kept) < len(candidates) {
			log.Debugf("%s [%s] %d/%d candidates within %dms of %dms",
				logcolors.LogDurationFilter, a.Name(), len(kept), len(candidates), a.toleranceMs, targetLengthMs)
		}
	}

	if len(kept) == 0 {
		a.setState(StatusNotFound, nil)
		return false, nil
	}

	a.setState(StatusPending, kept)
	return true, nil
}

// LyricsFromResults fetches lyrics for the stored candidates in order and
// returns the first payload that carries any primary text. When every
// candidate fails the adapter lands in StatusNoAccept and
// ErrNoAcceptableResult is returned.
func (a *Adapter) LyricsFromResults(ctx context.Context) (RawLyrics, error) {
	for _, c := range a.Results() {
		if err := ctx.Err(); err != nil {
			return RawLyrics{}, err
		}

		raw, err := a.source.FetchLyrics(ctx, c.Key)
		if err != nil {
			if a.breaker != nil {
				a.breaker.RecordFailure()
			}
			log.Warnf("%s [%s] fetch failed for %q (%s): %v",
				logcolors.LogFallback, a.Name(), c.Title, c.Key, err)
			continue
		}
		if a.breaker != nil {
			a.breaker.RecordSuccess()
		}

		if strings.TrimSpace(raw.Primary) == "" {
			log.Debugf("%s [%s] empty payload for %q, trying next candidate",
				logcolors.LogFallback, a.Name(), c.Title)
			continue
		}
		return raw, nil
	}

	a.setState(StatusNoAccept, nil)
	return RawLyrics{}, NewProviderError(a.Name(), "all candidates exhausted", ErrNoAcceptableResult)
}

// Fetch downloads lyrics for an explicit candidate key, bypassing the stored
// results. Used when a peer pins a specific provider result.
func (a *Adapter) Fetch(ctx context.Context, key string) (RawLyrics, error) {
	if a.breaker != nil && !a.breaker.Allow() {
		return RawLyrics{}, NewProviderError(a.Name(), "circuit open",
			errors.Join(ErrProviderUnavailable, circuitbreaker.ErrCircuitOpen))
	}

	raw, err := a.source.FetchLyrics(ctx, key)
	if err != nil {
		if a.breaker != nil {
			a.breaker.RecordFailure()
		}
		return RawLyrics{}, NewProviderError(a.Name(), "fetch failed",
			errors.Join(ErrProviderUnavailable, err))
	}
	if a.breaker != nil {
		a.breaker.RecordSuccess()
	}
	return raw, nil
}

func (a *Adapter) setState(s Status, results []Candidate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
	a.results = results
}

func filterByLength(candidates []Candidate, targetMs, toleranceMs int) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.LengthMs <= 0 {
			// Provider did not report a length; keep rather than guess.
			kept = append(kept, c)
			continue
		}
		delta := c.LengthMs - targetMs
		if delta < 0 {
			delta = -delta
		}
		if delta <= toleranceMs {
			kept = append(kept, c)
		}
	}
	return kept
}
