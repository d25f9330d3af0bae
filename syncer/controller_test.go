package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lyricsync-go/cache"
	"lyricsync-go/lyric"
	"lyricsync-go/services/acquire"
	"lyricsync-go/services/providers"
	"lyricsync-go/settings"
	"lyricsync-go/store"
)

// blockingSource is a provider source whose first searches can be held open
// to simulate a slow provider.
type blockingSource struct {
	mu         sync.Mutex
	name       string
	lyrics     map[string]string // search title -> primary LRC
	gate       chan struct{}     // when non-nil, the first blockCalls searches block until closed
	blockCalls int
	searches   []string
	searchErr  error
}

func (b *blockingSource) Name() string { return b.name }

func (b *blockingSource) Search(ctx context.Context, title string) ([]providers.Candidate, error) {
	b.mu.Lock()
	b.searches = append(b.searches, title)
	call := len(b.searches)
	gate := b.gate
	blocked := gate != nil && call <= b.blockCalls
	b.mu.Unlock()

	if blocked {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.searchErr != nil {
		return nil, b.searchErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.lyrics[title]; !ok {
		return nil, nil
	}
	return []providers.Candidate{{Title: title, Key: title}}, nil
}

func (b *blockingSource) FetchLyrics(ctx context.Context, key string) (providers.RawLyrics, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	primary, ok := b.lyrics[key]
	if !ok {
		return providers.RawLyrics{}, errors.New("unknown key")
	}
	return providers.RawLyrics{Primary: primary}, nil
}

func (b *blockingSource) searchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.searches)
}

func (b *blockingSource) searchTitles() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.searches))
	copy(out, b.searches)
	return out
}

type fixedProbe struct{ lengthMs int }

func (p fixedProbe) Measure(ctx context.Context, songID, title string) (int, error) {
	return p.lengthMs, nil
}

// cursorRecorder collects callback invocations from the loop goroutine.
type cursorRecorder struct {
	mu      sync.Mutex
	cursors []int
	titles  []string
}

func (r *cursorRecorder) callbacks() Callbacks {
	return Callbacks{
		OnCursor: func(index int, line lyric.Line) {
			r.mu.Lock()
			r.cursors = append(r.cursors, index)
			r.mu.Unlock()
		},
		OnLyrics: func(title string, lines []lyric.Line) {
			r.mu.Lock()
			r.titles = append(r.titles, title)
			r.mu.Unlock()
		},
	}
}

func (r *cursorRecorder) lastCursor() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.cursors) == 0 {
		return 0, false
	}
	return r.cursors[len(r.cursors)-1], true
}

const testLyric = "[00:01.00]one\n[00:05.00]two\n[00:09.00]three\n[00:13.00]four"

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func newTestController(t *testing.T, src *blockingSource, lyricCache *cache.Cache,
	blacklist *settings.BlacklistSet, rec *cursorRecorder) *Controller {
	t.Helper()
	if lyricCache == nil {
		lyricCache = cache.New(store.NewMemoryStore(), 5000)
	}
	orch := acquire.New([]*providers.Adapter{providers.NewAdapter(src, nil, 5000)}, 2)

	var cbs Callbacks
	if rec != nil {
		cbs = rec.callbacks()
	}
	c := New(orch, lyricCache, fixedProbe{lengthMs: 201000}, blacklist, 30, cbs)
	c.Start()
	t.Cleanup(c.Stop)
	return c
}

func TestSongChangeAcquiresAndSyncs(t *testing.T) {
	src := &blockingSource{name: "fake", lyrics: map[string]string{"Some Song": testLyric}}
	rec := &cursorRecorder{}
	c := newTestController(t, src, nil, nil, rec)

	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 0})

	waitFor(t, "timeline install", func() bool { return c.State() == StateSynced })
	if got := c.CurrentTitle(); got != "Some Song" {
		t.Errorf("Expected current title, got %q", got)
	}
	if lines := c.CurrentLines(); len(lines) != 4 {
		t.Errorf("Expected 4 lines, got %d", len(lines))
	}

	// Mid-song position lands on the right line.
	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 6.0})
	waitFor(t, "cursor at line 1", func() bool {
		idx, ok := rec.lastCursor()
		return ok && idx == 1
	})

	if c.NextInterval() <= 0 {
		t.Errorf("Expected positive next interval, got %v", c.NextInterval())
	}
}

func TestSearchUsesDisplayTitleWithoutMarkers(t *testing.T) {
	// Providers see the original casing with version markers stripped;
	// lowercasing is reserved for cache and blacklist keys.
	src := &blockingSource{name: "fake", lyrics: map[string]string{"Some Song": testLyric}}
	c := newTestController(t, src, nil, nil, nil)

	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song (TV Size)", Seconds: 0})
	waitFor(t, "install", func() bool { return c.State() == StateSynced })

	titles := src.searchTitles()
	if len(titles) != 1 || titles[0] != "Some Song" {
		t.Errorf("Expected provider search for %q, got %v", "Some Song", titles)
	}
	if got := c.CurrentTitle(); got != "Some Song (TV Size)" {
		t.Errorf("Expected display title kept, got %q", got)
	}
}

func TestStaleResultIsDropped(t *testing.T) {
	gate := make(chan struct{})
	src := &blockingSource{
		name:       "fake",
		gate:       gate,
		blockCalls: 1,
		lyrics: map[string]string{
			"Song A": "[00:01.00]aaa\n[00:02.00]aaa\n[00:03.00]aaa\n[00:04.00]aaa",
			"Song B": testLyric,
		},
	}
	c := newTestController(t, src, nil, nil, nil)

	// Song A's acquisition blocks inside the provider search.
	c.HandlePosition(PositionEvent{SongID: "a", Title: "Song A", Seconds: 0})
	waitFor(t, "first search to start", func() bool { return src.searchCount() == 1 })

	// Song B arrives while A is still in flight and completes normally.
	c.HandlePosition(PositionEvent{SongID: "b", Title: "Song B", Seconds: 0})
	waitFor(t, "song B install", func() bool {
		return c.State() == StateSynced && c.CurrentTitle() == "Song B"
	})

	// Release song A's search. Its late result must land dead.
	close(gate)
	time.Sleep(50 * time.Millisecond)

	if got := c.CurrentTitle(); got != "Song B" {
		t.Fatalf("Expected Song B still active, got %q", got)
	}
	lines := c.CurrentLines()
	if len(lines) == 0 || lines[0].Primary != "one" {
		t.Errorf("Expected Song B lyrics to survive, got %+v", lines)
	}
}

func TestBlacklistedTitleNeverSearched(t *testing.T) {
	src := &blockingSource{name: "fake", lyrics: map[string]string{"Skip Me": testLyric}}
	blacklist := settings.NewBlacklistSet([]string{"Skip Me"})
	c := newTestController(t, src, nil, blacklist, nil)

	c.HandlePosition(PositionEvent{SongID: "x", Title: "Skip Me", Seconds: 0})

	waitFor(t, "blacklisted state", func() bool { return c.State() == StateBlacklisted })
	time.Sleep(50 * time.Millisecond) // past the debounce window
	if src.searchCount() != 0 {
		t.Errorf("Expected no provider search for blacklisted title, got %d", src.searchCount())
	}
}

func TestCacheHitByIDSkipsProviders(t *testing.T) {
	lyricCache := cache.New(store.NewMemoryStore(), 5000)
	lyricCache.Put(cache.Entry{
		ID:    "cached-id",
		Title: "Cached Song",
		Lines: []lyric.Line{{Time: 1, Primary: "from cache"}},
	})

	src := &blockingSource{name: "fake"}
	c := newTestController(t, src, lyricCache, nil, nil)

	c.HandlePosition(PositionEvent{SongID: "cached-id", Title: "Cached Song", Seconds: 0})

	waitFor(t, "install from cache", func() bool { return c.State() == StateSynced })
	if lines := c.CurrentLines(); len(lines) != 1 || lines[0].Primary != "from cache" {
		t.Errorf("Expected cached lyrics, got %+v", lines)
	}
	if src.searchCount() != 0 {
		t.Errorf("Expected no provider search on id hit, got %d", src.searchCount())
	}
}

func TestCacheHitByTitleGainsIDKey(t *testing.T) {
	lyricCache := cache.New(store.NewMemoryStore(), 5000)
	lyricCache.Put(cache.Entry{
		Title:    "Known Song",
		LengthMs: 201000,
		Lines:    []lyric.Line{{Time: 1, Primary: "known"}},
	})

	src := &blockingSource{name: "fake"}
	c := newTestController(t, src, lyricCache, nil, nil)

	c.HandlePosition(PositionEvent{SongID: "new-id", Title: "Known Song", Seconds: 0})

	waitFor(t, "install from title hit", func() bool { return c.State() == StateSynced })
	if src.searchCount() != 0 {
		t.Errorf("Expected no provider search on title hit, got %d", src.searchCount())
	}

	// The entry is now reachable by the fresh id.
	waitFor(t, "id key upsert", func() bool {
		_, ok := lyricCache.ByID("new-id")
		return ok
	})
}

func TestRapidSkipsCoalesceIntoOneSearch(t *testing.T) {
	src := &blockingSource{name: "fake", lyrics: map[string]string{"Song C": testLyric}}
	c := newTestController(t, src, nil, nil, nil)

	c.HandlePosition(PositionEvent{SongID: "a", Title: "Song A", Seconds: 0})
	c.HandlePosition(PositionEvent{SongID: "b", Title: "Song B", Seconds: 0})
	c.HandlePosition(PositionEvent{SongID: "c", Title: "Song C", Seconds: 0})

	waitFor(t, "install for final song", func() bool { return c.State() == StateSynced })
	if n := src.searchCount(); n != 1 {
		t.Errorf("Expected rapid skips to coalesce into 1 search, got %d", n)
	}
	if got := c.CurrentTitle(); got != "Song C" {
		t.Errorf("Expected final song active, got %q", got)
	}
}

func TestFailedAcquisitionIsTerminal(t *testing.T) {
	src := &blockingSource{name: "fake", searchErr: errors.New("all down")}
	c := newTestController(t, src, nil, nil, nil)

	c.HandlePosition(PositionEvent{SongID: "x", Title: "No Luck", Seconds: 0})
	waitFor(t, "not-found state", func() bool { return c.State() == StateNotFound })

	before := src.searchCount()
	// Further positions in the same song must not retry.
	c.HandlePosition(PositionEvent{SongID: "x", Title: "No Luck", Seconds: 5})
	c.HandlePosition(PositionEvent{SongID: "x", Title: "No Luck", Seconds: 10})
	time.Sleep(50 * time.Millisecond)
	if src.searchCount() != before {
		t.Errorf("Expected no retry after failure, searches went %d -> %d", before, src.searchCount())
	}
}

func TestPauseGatesSeekOnly(t *testing.T) {
	src := &blockingSource{name: "fake", lyrics: map[string]string{"Some Song": testLyric}}
	rec := &cursorRecorder{}
	c := newTestController(t, src, nil, nil, rec)

	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 0})
	waitFor(t, "install", func() bool { return c.State() == StateSynced })

	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 2.0})
	waitFor(t, "cursor emitted", func() bool {
		_, ok := rec.lastCursor()
		return ok
	})

	// An explicit Pause() holds even while the stream keeps reporting
	// unpaused playback.
	c.Pause()
	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 6.0, Paused: false})
	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 6.5, Paused: false})
	time.Sleep(30 * time.Millisecond)
	if idx, _ := rec.lastCursor(); idx != 0 {
		t.Errorf("Expected cursor frozen at 0 while paused, got %d", idx)
	}

	// Resume snaps to the last reported position.
	c.Resume()
	waitFor(t, "cursor after resume", func() bool {
		idx, ok := rec.lastCursor()
		return ok && idx == 1
	})
}

func TestPlayerReportedPauseGatesSeek(t *testing.T) {
	src := &blockingSource{name: "fake", lyrics: map[string]string{"Some Song": testLyric}}
	rec := &cursorRecorder{}
	c := newTestController(t, src, nil, nil, rec)

	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 2.0})
	waitFor(t, "install", func() bool { return c.State() == StateSynced })
	waitFor(t, "cursor emitted", func() bool {
		_, ok := rec.lastCursor()
		return ok
	})

	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 6.0, Paused: true})
	time.Sleep(30 * time.Millisecond)
	if idx, _ := rec.lastCursor(); idx != 0 {
		t.Errorf("Expected cursor frozen while the player reports paused, got %d", idx)
	}

	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 6.0, Paused: false})
	waitFor(t, "cursor after player resume", func() bool {
		idx, ok := rec.lastCursor()
		return ok && idx == 1
	})
}

func TestApplySourceInstallsAndCaches(t *testing.T) {
	lyricCache := cache.New(store.NewMemoryStore(), 5000)
	src := &blockingSource{name: "fake", lyrics: map[string]string{
		"Some Song": testLyric,
		"alt-key":   "[00:01.00]alternative\n[00:02.00]take",
	}}
	c := newTestController(t, src, lyricCache, nil, nil)

	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 0})
	waitFor(t, "initial install", func() bool { return c.State() == StateSynced })

	if err := c.ApplySource(context.Background(), "fake", "alt-key"); err != nil {
		t.Fatalf("ApplySource failed: %v", err)
	}

	waitFor(t, "pinned lyrics install", func() bool {
		lines := c.CurrentLines()
		return len(lines) == 2 && lines[0].Primary == "alternative"
	})

	// Re-cached under the active identity.
	entry, ok := lyricCache.ByID("id-1")
	if !ok || len(entry.Lines) != 2 {
		t.Errorf("Expected pinned lyrics cached under active id, got %+v (ok=%v)", entry, ok)
	}
}

func TestApplySourceWithoutActiveSong(t *testing.T) {
	src := &blockingSource{name: "fake"}
	c := newTestController(t, src, nil, nil, nil)

	if err := c.ApplySource(context.Background(), "fake", "key"); err == nil {
		t.Error("Expected error without an active song")
	}
}

func TestPlaybackStopClearsState(t *testing.T) {
	src := &blockingSource{name: "fake", lyrics: map[string]string{"Some Song": testLyric}}
	c := newTestController(t, src, nil, nil, nil)

	c.HandlePosition(PositionEvent{SongID: "id-1", Title: "Some Song", Seconds: 0})
	waitFor(t, "install", func() bool { return c.State() == StateSynced })

	c.HandlePosition(PositionEvent{})
	waitFor(t, "idle state", func() bool { return c.State() == StateIdle })
	if lines := c.CurrentLines(); len(lines) != 0 {
		t.Errorf("Expected cleared lines, got %d", len(lines))
	}
	if c.NextInterval() != 0 {
		t.Errorf("Expected 0 interval when idle, got %v", c.NextInterval())
	}
}
