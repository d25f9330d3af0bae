package lyric

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrEmptyInput is returned when the parser is handed a blank blob. Callers
// must treat "provider has nothing" as this condition rather than as a
// zero-length successful parse.
var ErrEmptyInput = errors.New("empty lyrics input")

var (
	// Timestamp tag: [minutes:seconds.fraction]
	timeTagRegex = regexp.MustCompile(`\[(\d+):(\d+\.\d+)\]`)

	// Uploader credit lines like "翻译:xxx" or "by: someone" — a short
	// alphabetic prefix followed by a colon. These are not real lyrics.
	metaTagRegex = regexp.MustCompile(`^[\p{L}]{1,12}\s*[:：]`)
)

// RawLine is a single timed lyric line as produced by Parse. Transient: the
// merger consumes these and owns ordering.
type RawLine struct {
	Time float64
	Text string
}

// Parse splits a raw timed-text blob into (time, text) pairs.
//
// Splitting happens on line boundaries that immediately precede a timestamp
// tag, so a logical line carrying several tags yields one RawLine per tag with
// shared text (the standard multi-timestamp LRC convention). Segments without
// a leading tag (header metadata, stray text) are silently dropped, as are
// lines whose text is empty or looks like an uploader credit.
//
// Output order is unspecified; the merger sorts.
func Parse(raw string) ([]RawLine, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	var lines []RawLine
	for _, segment := range strings.Split(raw, "\n") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		// Collect every leading timestamp tag, then share the remainder
		// across all of them.
		var times []float64
		rest := segment
		for {
			loc := timeTagRegex.FindStringSubmatchIndex(rest)
			if loc == nil || loc[0] != 0 {
				break
			}
			minutes, _ := strconv.ParseFloat(rest[loc[2]:loc[3]], 64)
			seconds, _ := strconv.ParseFloat(rest[loc[4]:loc[5]], 64)
			times = append(times, minutes*60+seconds)
			rest = rest[loc[1]:]
		}

		if len(times) == 0 {
			continue
		}

		text := strings.TrimSpace(rest)
		if text == "" || metaTagRegex.MatchString(text) {
			continue
		}

		for _, t := range times {
			lines = append(lines, RawLine{Time: t, Text: text})
		}
	}

	return lines, nil
}
