package lyric

import (
	"errors"
	"math"
	"sort"
)

// ErrNoLyrics is returned when a merge produces no lines at all.
var ErrNoLyrics = errors.New("no lyrics lines after merge")

// TieToleranceSeconds is the window within which a secondary (translation)
// line is considered simultaneous with a primary line and attached to it
// instead of inserted as its own line.
const TieToleranceSeconds = 0.01

// Line is the merged unit: a primary-language lyric with an optional
// translation. A sequence of Lines is non-decreasing in Time and owned
// exclusively by its containing Timeline.
type Line struct {
	Time      float64 `json:"time"`
	Primary   string  `json:"primary"`
	Secondary string  `json:"secondary,omitempty"`
}

// Merge parses a primary timed-text track and an optional, independently
// timed translation track and folds them onto one time-ordered sequence.
//
// Primary parse failures propagate. A missing or garbled translation degrades
// to primary-only output, never aborts the merge. Translation lines within
// TieToleranceSeconds of a primary line attach to it (first one wins);
// translation lines with no primary counterpart become primary-empty lines
// interleaved at their own timestamp.
func Merge(primaryRaw, secondaryRaw string) ([]Line, error) {
	primary, err := Parse(primaryRaw)
	if err != nil {
		return nil, err
	}

	// Parser output for multi-timestamp groups interleaves, so an explicit
	// stable sort is required before merging.
	sort.SliceStable(primary, func(i, j int) bool { return primary[i].Time < primary[j].Time })

	merged := make([]Line, 0, len(primary))
	for _, p := range primary {
		// A tie inside the tolerance window is one line, not two.
		if n := len(merged); n > 0 && math.Abs(merged[n-1].Time-p.Time) < TieToleranceSeconds {
			continue
		}
		merged = append(merged, Line{Time: p.Time, Primary: p.Text})
	}

	if secondaryRaw != "" {
		secondary, err := Parse(secondaryRaw)
		if err == nil {
			sort.SliceStable(secondary, func(i, j int) bool { return secondary[i].Time < secondary[j].Time })
			merged = mergeSecondary(merged, secondary)
		}
	}

	if len(merged) == 0 {
		return nil, ErrNoLyrics
	}
	return merged, nil
}

// mergeSecondary walks the primary lines once while consuming secondary lines
// in time order. The cursor only moves forward, so a well-formed translation
// track merges in O(n+m); an out-of-order one degrades to locally misordered
// output rather than an error.
func mergeSecondary(merged []Line, secondary []RawLine) []Line {
	n := 0
	for _, sec := range secondary {
		t := sec.Time

		// Skip primary lines that are clearly before this translation line.
		for n < len(merged) && merged[n].Time < t-TieToleranceSeconds {
			n++
		}

		switch {
		case n >= len(merged):
			merged = append(merged, Line{Time: t, Secondary: sec.Text})
		case math.Abs(merged[n].Time-t) < TieToleranceSeconds:
			if merged[n].Secondary == "" {
				merged[n].Secondary = sec.Text
			}
		default:
			// merged[n] starts later than the tolerance window allows:
			// this translation line has no primary counterpart, keep it
			// as its own line before the current primary line.
			merged = append(merged, Line{})
			copy(merged[n+1:], merged[n:])
			merged[n] = Line{Time: t, Secondary: sec.Text}
		}
		n++
	}
	return merged
}
