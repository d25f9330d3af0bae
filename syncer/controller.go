package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/cache"
	"lyricsync-go/logcolors"
	"lyricsync-go/lyric"
	"lyricsync-go/services/acquire"
	"lyricsync-go/settings"
	"lyricsync-go/stats"
	"lyricsync-go/utils"
)

// State describes what the controller knows about the current song.
type State int

const (
	StateIdle        State = iota // no song playing
	StateSearching                // acquisition pending or in flight
	StateSynced                   // timeline installed
	StateNotFound                 // every provider failed; terminal until song change
	StateBlacklisted              // title is blacklisted; never searched
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateSynced:
		return "synced"
	case StateNotFound:
		return "not-found"
	case StateBlacklisted:
		return "blacklisted"
	default:
		return "unknown"
	}
}

// PositionEvent is one playback report from the client: where we are in
// which song.
type PositionEvent struct {
	SongID  string
	Title   string
	Seconds float64
	Paused  bool
}

// Callbacks are how the rendering layer observes the controller. Both are
// optional and are invoked from the controller goroutine.
type Callbacks struct {
	// OnCursor fires when the active line changes.
	OnCursor func(index int, line lyric.Line)
	// OnLyrics fires when a new timeline is installed or cleared.
	OnLyrics func(title string, lines []lyric.Line)
}

// Controller drives lyric acquisition and synchronization from playback
// position events. A single goroutine owns all mutable state; slow work
// (probe, providers) runs in helper goroutines that post results back tagged
// with the generation they were started for, so a song change in the
// meantime makes the result land dead.
type Controller struct {
	orch      *acquire.Orchestrator
	cache     *cache.Cache
	probe     LengthProbe
	blacklist *settings.BlacklistSet
	stats     *stats.Stats
	debounce  time.Duration
	callbacks Callbacks

	events chan interface{}
	stop   chan struct{}
	done   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.RWMutex
	snapSongID   string
	snapTitle    string
	snapLines    []lyric.Line
	snapState    State
	snapInterval float64
}

// loop-internal events
type installResult struct {
	gen       uint64
	entry     cache.Entry
	fromCache bool
	err       error
}

type applySourceCmd struct {
	provider string
	key      string
	reply    chan error
}

type pauseCmd struct {
	paused bool
}

// loopState is the mutable state owned by the run goroutine. playerPaused
// mirrors the position stream's Paused flag; uiPaused is the explicit
// Pause()/Resume() command and survives position events until Resume().
type loopState struct {
	gen          uint64
	songID       string
	title        string
	lengthMs     int
	timeline     *lyric.Timeline
	lastPos      float64
	playerPaused bool
	uiPaused     bool
	emittedIdx   int
}

// seekGated reports whether seek application is currently suspended.
func (st *loopState) seekGated() bool {
	return st.uiPaused || st.playerPaused
}

// New builds a controller. probe and blacklist may be nil; debounceMs below
// 1 falls back to 100ms.
func New(orch *acquire.Orchestrator, lyricCache *cache.Cache, probe LengthProbe,
	blacklist *settings.BlacklistSet, debounceMs int, callbacks Callbacks) *Controller {
	if debounceMs < 1 {
		debounceMs = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		orch:      orch,
		cache:     lyricCache,
		probe:     probe,
		blacklist: blacklist,
		stats:     stats.Get(),
		debounce:  time.Duration(debounceMs) * time.Millisecond,
		callbacks: callbacks,
		events:    make(chan interface{}, 64),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the event loop.
func (c *Controller) Start() {
	go c.run()
}

// Stop shuts the loop down and cancels in-flight acquisitions.
func (c *Controller) Stop() {
	c.cancel()
	close(c.stop)
	<-c.done
}

// HandlePosition feeds one playback report into the loop.
func (c *Controller) HandlePosition(ev PositionEvent) {
	c.post(ev)
}

// Pause suspends seek application until Resume, no matter what the position
// stream reports in the meantime. Song-change detection keeps running.
func (c *Controller) Pause() {
	c.post(pauseCmd{paused: true})
}

// Resume re-enables seek application and snaps to the last known position.
func (c *Controller) Resume() {
	c.post(pauseCmd{paused: false})
}

// ApplySource re-fetches lyrics from an explicitly chosen provider result
// and installs them for the active song. Blocks until the fetch finished.
func (c *Controller) ApplySource(ctx context.Context, provider, key string) error {
	cmd := applySourceCmd{provider: provider, key: key, reply: make(chan error, 1)}
	c.post(cmd)
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stop:
		return fmt.Errorf("controller stopped")
	}
}

// CurrentTitle returns the active song title.
func (c *Controller) CurrentTitle() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapTitle
}

// CurrentLines returns the installed timeline lines, nil when none.
func (c *Controller) CurrentLines() []lyric.Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]lyric.Line, len(c.snapLines))
	copy(out, c.snapLines)
	return out
}

// State returns the controller's state for the active song.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapState
}

// NextInterval returns the seconds until the next line is due, 0 without a
// timeline.
func (c *Controller) NextInterval() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapInterval
}

func (c *Controller) post(ev interface{}) {
	select {
	case c.events <- ev:
	case <-c.stop:
	}
}

func (c *Controller) run() {
	defer close(c.done)

	st := loopState{emittedIdx: -1}

	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}
	debounceArmed := false

	disarm := func() {
		if debounceArmed && !debounce.Stop() {
			<-debounce.C
		}
		debounceArmed = false
	}

	for {
		select {
		case <-c.stop:
			disarm()
			return

		case <-debounce.C:
			debounceArmed = false
			c.startAcquisition(&st)

		case e := <-c.events:
			switch ev := e.(type) {
			case PositionEvent:
				c.onPosition(&st, ev, func() {
					disarm()
					debounce.Reset(c.debounce)
					debounceArmed = true
				}, disarm)
			case installResult:
				c.onInstall(&st, ev)
			case applySourceCmd:
				c.onApplySource(&st, ev)
			case pauseCmd:
				c.onPause(&st, ev)
			}
		}
	}
}

func identityKey(songID, title string) string {
	if songID != "" {
		return "id:" + songID
	}
	return "title:" + utils.NormalizeTitle(title)
}

func (c *Controller) onPosition(st *loopState, ev PositionEvent, arm func(), disarm func()) {
	c.stats.RecordPositionEvent()

	if identityKey(ev.SongID, ev.Title) == identityKey(st.songID, st.title) && st.gen > 0 {
		// Same song: apply the seek unless paused.
		st.lastPos = ev.Seconds
		st.playerPaused = ev.Paused
		if st.timeline != nil && !st.seekGated() {
			c.applySeek(st)
		}
		return
	}

	// Song change. An explicit Pause() keeps gating across songs.
	st.gen++
	st.songID = ev.SongID
	st.title = ev.Title
	st.lengthMs = 0
	st.timeline = nil
	st.lastPos = ev.Seconds
	st.playerPaused = ev.Paused
	st.emittedIdx = -1
	disarm()
	c.stats.RecordSongChange()

	if ev.Title == "" && ev.SongID == "" {
		log.Infof("%s Playback stopped", logcolors.LogSync)
		c.setSnapshot(st, StateIdle)
		c.notifyLyrics("", nil)
		return
	}

	log.Infof("%s Song change: %q (id: %s)", logcolors.LogSync, ev.Title, ev.SongID)

	if c.blacklist != nil && c.blacklist.Has(ev.Title) {
		log.Infof("%s %q is blacklisted, skipping acquisition", logcolors.LogBlacklist, ev.Title)
		c.setSnapshot(st, StateBlacklisted)
		c.notifyLyrics(ev.Title, nil)
		return
	}

	if entry, ok := c.cache.ByID(ev.SongID); ok {
		c.stats.RecordCacheHit()
		log.Infof("%s Cache hit by id for %q", logcolors.LogCacheLyrics, ev.Title)
		c.install(st, entry)
		return
	}

	// Debounce before going to the network: rapid skips through a playlist
	// must not fan out into provider calls.
	c.setSnapshot(st, StateSearching)
	c.notifyLyrics(ev.Title, nil)
	arm()
}

// startAcquisition runs the slow path in its own goroutine: probe the track
// length, retry the cache by title, then walk the providers. The result is
// posted back tagged with the generation it was started for.
func (c *Controller) startAcquisition(st *loopState) {
	gen := st.gen
	songID := st.songID
	title := st.title

	go func() {
		lengthMs := 0
		if c.probe != nil {
			n, err := c.probe.Measure(c.ctx, songID, title)
			if err != nil {
				log.Warnf("%s Length unknown for %q: %v", logcolors.LogProbe, title, err)
			} else {
				lengthMs = n
			}
		}

		if entry, ok := c.cache.ByTitle(title, lengthMs); ok {
			c.stats.RecordCacheHit()
			log.Infof("%s Cache hit by title for %q", logcolors.LogCacheLyrics, title)
			c.post(installResult{gen: gen, entry: entry, fromCache: true})
			return
		}
		c.stats.RecordCacheMiss()

		searchTitle := utils.StripVersionInfo(title)
		res, err := c.orch.Acquire(c.ctx, searchTitle, lengthMs)
		if err != nil {
			c.stats.RecordAcquisition("", false)
			c.post(installResult{gen: gen, err: err})
			return
		}
		c.stats.RecordAcquisition(res.Provider, true)

		c.post(installResult{gen: gen, entry: cache.Entry{
			ID:       songID,
			Title:    title,
			LengthMs: lengthMs,
			Provider: res.Provider,
			Lines:    res.Lines,
		}})
	}()
}

func (c *Controller) onInstall(st *loopState, ev installResult) {
	if ev.gen != st.gen {
		c.stats.RecordStaleDrop()
		log.Infof("%s Dropping result for superseded song (gen %d, now %d)",
			logcolors.LogStale, ev.gen, st.gen)
		return
	}

	if ev.err != nil {
		log.Warnf("%s No lyrics for %q: %v", logcolors.LogWarning, st.title, ev.err)
		c.setSnapshot(st, StateNotFound)
		return
	}

	entry := ev.entry
	if ev.fromCache {
		// A title hit under a fresh song id gets re-written so the next play
		// of this id hits directly.
		if st.songID != "" && entry.ID != st.songID {
			entry.ID = st.songID
			c.cache.Put(entry)
		}
	} else {
		c.cache.Put(entry)
	}

	c.install(st, entry)
}

func (c *Controller) install(st *loopState, entry cache.Entry) {
	st.timeline = lyric.NewTimeline(entry.Lines)
	st.lengthMs = entry.LengthMs
	st.emittedIdx = -1

	c.setSnapshot(st, StateSynced)
	c.notifyLyrics(st.title, entry.Lines)

	log.Infof("%s Installed %d lines for %q (provider: %s)",
		logcolors.LogSync, len(entry.Lines), st.title, entry.Provider)

	if !st.seekGated() {
		c.applySeek(st)
	}
}

func (c *Controller) applySeek(st *loopState) {
	idx := st.timeline.Seek(st.lastPos)

	c.mu.Lock()
	c.snapInterval = st.timeline.NextInterval()
	c.mu.Unlock()

	if idx == st.emittedIdx {
		return
	}
	st.emittedIdx = idx

	if c.callbacks.OnCursor != nil {
		if line, ok := st.timeline.Current(); ok {
			c.callbacks.OnCursor(idx, line)
		}
	}
}

func (c *Controller) onApplySource(st *loopState, cmd applySourceCmd) {
	if st.title == "" && st.songID == "" {
		cmd.reply <- fmt.Errorf("no active song")
		return
	}

	gen := st.gen
	songID := st.songID
	title := st.title
	lengthMs := st.lengthMs

	go func() {
		res, err := c.orch.FetchByKey(c.ctx, cmd.provider, cmd.key)
		if err != nil {
			cmd.reply <- err
			return
		}
		cmd.reply <- nil
		c.post(installResult{gen: gen, entry: cache.Entry{
			ID:       songID,
			Title:    title,
			LengthMs: lengthMs,
			Provider: cmd.provider,
			Lines:    res.Lines,
		}})
	}()
}

func (c *Controller) onPause(st *loopState, cmd pauseCmd) {
	if st.uiPaused == cmd.paused {
		return
	}
	st.uiPaused = cmd.paused
	if !st.seekGated() && st.timeline != nil {
		c.applySeek(st)
	}
}

func (c *Controller) setSnapshot(st *loopState, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapSongID = st.songID
	c.snapTitle = st.title
	c.snapState = state
	if st.timeline != nil {
		c.snapLines = st.timeline.Lines()
		c.snapInterval = st.timeline.NextInterval()
	} else {
		c.snapLines = nil
		c.snapInterval = 0
	}
}

func (c *Controller) notifyLyrics(title string, lines []lyric.Line) {
	if c.callbacks.OnLyrics != nil {
		c.callbacks.OnLyrics(title, lines)
	}
}
