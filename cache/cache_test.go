package cache

import (
	"testing"

	"lyricsync-go/lyric"
	"lyricsync-go/store"
)

func sampleEntry() Entry {
	return Entry{
		ID:       "song-123",
		Title:    "Some Song",
		LengthMs: 201000,
		Provider: "netease",
		Lines: []lyric.Line{
			{Time: 1, Primary: "one"},
			{Time: 2, Primary: "two", Secondary: "二"},
			{Time: 3, Primary: "three"},
		},
	}
}

func TestPutAndByID(t *testing.T) {
	c := New(store.NewMemoryStore(), 5000)
	c.Put(sampleEntry())

	got, ok := c.ByID("song-123")
	if !ok {
		t.Fatal("Expected hit by ID")
	}
	if got.Title != "Some Song" || len(got.Lines) != 3 {
		t.Errorf("Unexpected entry: %+v", got)
	}
	if got.Lines[1].Secondary != "二" {
		t.Errorf("Secondary track lost in round trip: %+v", got.Lines[1])
	}
}

func TestByID_Miss(t *testing.T) {
	c := New(store.NewMemoryStore(), 5000)
	if _, ok := c.ByID("absent"); ok {
		t.Error("Expected miss")
	}
	if _, ok := c.ByID(""); ok {
		t.Error("Expected miss for empty ID")
	}
}

func TestByTitle_NormalizesLookup(t *testing.T) {
	c := New(store.NewMemoryStore(), 5000)
	c.Put(sampleEntry())

	// Different casing and spacing still hits.
	got, ok := c.ByTitle("  SOME   song ", 201000)
	if !ok {
		t.Fatal("Expected normalized title hit")
	}
	if got.ID != "song-123" {
		t.Errorf("Unexpected entry: %+v", got)
	}
}

func TestByTitle_DurationWindow(t *testing.T) {
	c := New(store.NewMemoryStore(), 5000)
	c.Put(sampleEntry())

	if _, ok := c.ByTitle("Some Song", 204000); !ok {
		t.Error("Expected hit within tolerance")
	}
	if _, ok := c.ByTitle("Some Song", 250000); ok {
		t.Error("Expected rejection outside tolerance")
	}
	// Unknown length on either side skips the check.
	if _, ok := c.ByTitle("Some Song", 0); !ok {
		t.Error("Expected hit when target length is unknown")
	}
}

func TestList(t *testing.T) {
	c := New(store.NewMemoryStore(), 5000)
	c.Put(sampleEntry())

	summaries, err := c.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	// One entry under the id key, one under the title key.
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}
	for _, s := range summaries {
		if s.Title != "Some Song" || s.LineCount != 3 {
			t.Errorf("Unexpected summary: %+v", s)
		}
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := New(store.NewMemoryStore(), 5000)
	c.Put(sampleEntry())

	if err := c.Remove("id:song-123"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := c.ByID("song-123"); ok {
		t.Error("Expected removed entry to be gone")
	}
	// Title key still present until cleared.
	if _, ok := c.ByTitle("Some Song", 201000); !ok {
		t.Error("Expected title key to survive targeted remove")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	summaries, _ := c.List()
	if len(summaries) != 0 {
		t.Errorf("Expected empty cache, got %d entries", len(summaries))
	}

	if err := c.Remove(""); err == nil {
		t.Error("Expected error for empty key")
	}
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	s := store.NewMemoryStore()
	s.Set("id:bad", "{not json")

	c := New(s, 5000)
	if _, ok := c.ByID("bad"); ok {
		t.Error("Expected corrupt entry to read as a miss")
	}
}
