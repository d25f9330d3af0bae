package lyric

import "sort"

const (
	// Seeks below this position always reset the cursor to the first line,
	// absorbing playback start/restart jitter without a search.
	seekResetSeconds = 1.5

	// Animation fallback interval when the cursor sits on the last line.
	lastLineIntervalSeconds = 3.0
)

// Timeline owns a merged lyric sequence and a mutable cursor addressing the
// currently active line. The line slice is copied on construction so that two
// songs never alias the same backing array.
type Timeline struct {
	lines  []Line
	cursor int
}

// NewTimeline builds a Timeline over a copy of lines. The cursor starts at 0.
func NewTimeline(lines []Line) *Timeline {
	owned := make([]Line, len(lines))
	copy(owned, lines)
	return &Timeline{lines: owned}
}

// Lines returns a copy of the merged sequence.
func (tl *Timeline) Lines() []Line {
	out := make([]Line, len(tl.lines))
	copy(out, tl.lines)
	return out
}

// Len returns the number of lines.
func (tl *Timeline) Len() int {
	return len(tl.lines)
}

// Cursor returns the index of the active line.
func (tl *Timeline) Cursor() int {
	return tl.cursor
}

// Current returns the active line, or false when the timeline is empty.
func (tl *Timeline) Current() (Line, bool) {
	if len(tl.lines) == 0 {
		return Line{}, false
	}
	return tl.lines[tl.cursor], true
}

// NextInterval reports the gap in seconds between the active line and the
// next one, used by the rendering layer to size scroll animations. The last
// line is open-ended and reports a fixed fallback.
func (tl *Timeline) NextInterval() float64 {
	if len(tl.lines) == 0 {
		return 0
	}
	if tl.cursor >= len(tl.lines)-1 {
		return lastLineIntervalSeconds
	}
	return tl.lines[tl.cursor+1].Time - tl.lines[tl.cursor].Time
}

// Seek moves the cursor to the line whose interval contains seconds and
// returns the new cursor. Repeated or monotonically increasing seeks within
// one line's interval never move the cursor.
//
// The hot path is a playback clock ticking every ~20ms, so forward movement
// by zero, one or two lines is resolved in O(1) from the current cursor;
// anything else (backward seek, large jump) falls back to binary search.
func (tl *Timeline) Seek(seconds float64) int {
	if len(tl.lines) == 0 {
		return tl.cursor
	}

	if seconds < seekResetSeconds {
		tl.cursor = 0
		return tl.cursor
	}

	if tl.lines[tl.cursor].Time <= seconds {
		for i := tl.cursor; i <= tl.cursor+2 && i < len(tl.lines); i++ {
			if tl.lines[i].Time <= seconds && (i+1 >= len(tl.lines) || tl.lines[i+1].Time > seconds) {
				tl.cursor = i
				return tl.cursor
			}
		}
	}

	// Greatest index whose time <= seconds; clamp to the first line when the
	// position precedes every line.
	idx := sort.Search(len(tl.lines), func(i int) bool { return tl.lines[i].Time > seconds }) - 1
	if idx < 0 {
		idx = 0
	}
	tl.cursor = idx
	return tl.cursor
}
