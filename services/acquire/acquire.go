package acquire

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
	"lyricsync-go/lyric"
	"lyricsync-go/services/providers"
)

// ErrNoLyricsFound is returned when every provider was tried and none
// produced an acceptable merged lyric.
var ErrNoLyricsFound = errors.New("no lyrics found")

// Result is one successful acquisition: the merged timeline lines plus where
// they came from.
type Result struct {
	Lines    []lyric.Line
	Provider string
}

// Orchestrator walks a fixed, ordered list of provider adapters until one
// yields lyrics that survive merging. Provider failures stay inside this
// package; callers only ever see a Result or ErrNoLyricsFound.
type Orchestrator struct {
	adapters []*providers.Adapter
	minLines int
}

// New builds an orchestrator. minLines is the acceptance floor: a merged
// lyric is kept only when it has strictly more lines than this.
func New(adapters []*providers.Adapter, minLines int) *Orchestrator {
	return &Orchestrator{adapters: adapters, minLines: minLines}
}

// Adapters returns the ordered adapter list.
func (o *Orchestrator) Adapters() []*providers.Adapter {
	return o.adapters
}

// Adapter returns the adapter for a provider name.
func (o *Orchestrator) Adapter(name string) (*providers.Adapter, error) {
	for _, a := range o.adapters {
		if a.Name() == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unknown provider: %s", name)
}

// Acquire tries each provider in order: search with the duration window,
// fetch the surviving candidates, merge, and accept the first result with
// enough lines. targetLengthMs ≤ 0 disables the duration filter.
func (o *Orchestrator) Acquire(ctx context.Context, title string, targetLengthMs int) (Result, error) {
	for _, adapter := range o.adapters {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		found, err := adapter.HasMusicInfo(ctx, title, targetLengthMs)
		if err != nil {
			log.Warnf("%s [%s] search failed for %q: %v", logcolors.LogFallback, adapter.Name(), title, err)
			continue
		}
		if !found {
			log.Debugf("%s [%s] no candidates for %q", logcolors.LogFallback, adapter.Name(), title)
			continue
		}

		raw, err := adapter.LyricsFromResults(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			log.Warnf("%s [%s] no usable payload for %q: %v", logcolors.LogFallback, adapter.Name(), title, err)
			continue
		}

		lines, err := lyric.Merge(raw.Primary, raw.Secondary)
		if err != nil {
			log.Warnf("%s [%s] merge failed for %q: %v", logcolors.LogFallback, adapter.Name(), title, err)
			adapter.MarkRejected()
			continue
		}
		if len(lines) <= o.minLines {
			log.Infof("%s [%s] rejected %q: only %d merged lines", logcolors.LogAcquire, adapter.Name(), title, len(lines))
			adapter.MarkRejected()
			continue
		}

		log.Infof("%s Acquired %q from %s (%d lines)", logcolors.LogSuccess, title, adapter.Name(), len(lines))
		return Result{Lines: lines, Provider: adapter.Name()}, nil
	}

	log.Infof("%s All providers exhausted for %q", logcolors.LogAcquire, title)
	return Result{}, ErrNoLyricsFound
}

// SearchAll runs the search on every provider and returns the candidate
// lists by provider name. Providers that fail or find nothing are omitted.
func (o *Orchestrator) SearchAll(ctx context.Context, title string) map[string][]providers.Candidate {
	out := make(map[string][]providers.Candidate)
	for _, adapter := range o.adapters {
		found, err := adapter.HasMusicInfo(ctx, title, 0)
		if err != nil || !found {
			continue
		}
		out[adapter.Name()] = adapter.Results()
	}
	return out
}

// FetchByKey downloads and merges a pinned provider result, skipping search
// and the acceptance floor: an explicit pick is honored as long as it parses.
func (o *Orchestrator) FetchByKey(ctx context.Context, providerName, key string) (Result, error) {
	adapter, err := o.Adapter(providerName)
	if err != nil {
		return Result{}, err
	}

	raw, err := adapter.Fetch(ctx, key)
	if err != nil {
		return Result{}, err
	}

	lines, err := lyric.Merge(raw.Primary, raw.Secondary)
	if err != nil {
		return Result{}, fmt.Errorf("merge failed: %w", err)
	}
	return Result{Lines: lines, Provider: providerName}, nil
}
