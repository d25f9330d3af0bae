package kugou

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"lyricsync-go/transport"
)

type fakeRequester struct {
	responses map[string]transport.Response
	lastURL   string
}

func (f *fakeRequester) Do(ctx context.Context, req transport.Request) (transport.Response, error) {
	f.lastURL = req.URL
	for substr, resp := range f.responses {
		if strings.Contains(req.URL, substr) {
			return resp, nil
		}
	}
	return transport.Response{Status: http.StatusNotFound}, nil
}

const searchBody = `{
	"status": 200,
	"candidates": [
		{"id": "2", "accesskey": "KEY2", "singer": "Artist", "song": "Word-timed", "duration": 201000, "krctype": 2, "score": 90},
		{"id": "1", "accesskey": "KEY1", "singer": "Artist", "song": "Synced", "duration": 201000, "krctype": 1, "score": 60}
	]
}`

func downloadBody(lrc string) string {
	return fmt.Sprintf(`{"status":200,"fmt":"lrc","content":%q}`,
		base64.StdEncoding.EncodeToString([]byte(lrc)))
}

func TestSearch_PrefersSyncedCandidates(t *testing.T) {
	proxy := &fakeRequester{responses: map[string]transport.Response{
		"krcs.kugou.com/search": {Status: http.StatusOK, Body: searchBody},
	}}
	src := New(proxy)

	candidates, err := src.Search(context.Background(), "Song")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Title != "Synced" {
		t.Errorf("Expected synced candidate first, got %+v", candidates[0])
	}
	if candidates[0].Key != "1:KEY1" {
		t.Errorf("Expected id:accesskey key, got %q", candidates[0].Key)
	}
	if candidates[0].LengthMs != 201000 {
		t.Errorf("Unexpected length: %d", candidates[0].LengthMs)
	}
}

func TestSearch_APIError(t *testing.T) {
	proxy := &fakeRequester{responses: map[string]transport.Response{
		"krcs.kugou.com/search": {Status: http.StatusOK, Body: `{"status":404,"errmsg":"not found","errcode":404}`},
	}}
	src := New(proxy)

	if _, err := src.Search(context.Background(), "Song"); err == nil {
		t.Error("Expected error on non-200 API status")
	}
}

func TestFetchLyrics(t *testing.T) {
	proxy := &fakeRequester{responses: map[string]transport.Response{
		"krcs.kugou.com/download": {Status: http.StatusOK, Body: downloadBody("[00:01.00]Hello")},
	}}
	src := New(proxy)

	raw, err := src.FetchLyrics(context.Background(), "1:KEY1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if raw.Primary != "[00:01.00]Hello" {
		t.Errorf("Unexpected primary: %q", raw.Primary)
	}
	if raw.Secondary != "" {
		t.Errorf("Kugou must not produce a secondary track, got %q", raw.Secondary)
	}
	if !strings.Contains(proxy.lastURL, "id=1") || !strings.Contains(proxy.lastURL, "accesskey=KEY1") {
		t.Errorf("Expected id and accesskey in query string, got %s", proxy.lastURL)
	}
}

func TestFetchLyrics_MalformedKey(t *testing.T) {
	src := New(&fakeRequester{})
	if _, err := src.FetchLyrics(context.Background(), "no-separator"); err == nil {
		t.Error("Expected error for malformed key")
	}
}

func TestFetchLyrics_EmptyContent(t *testing.T) {
	proxy := &fakeRequester{responses: map[string]transport.Response{
		"krcs.kugou.com/download": {Status: http.StatusOK, Body: `{"status":200,"content":""}`},
	}}
	src := New(proxy)

	if _, err := src.FetchLyrics(context.Background(), "1:KEY1"); err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestFetchLyrics_PureMusicPlaceholder(t *testing.T) {
	proxy := &fakeRequester{responses: map[string]transport.Response{
		"krcs.kugou.com/download": {Status: http.StatusOK, Body: downloadBody("[00:00.00]纯音乐，请欣赏")},
	}}
	src := New(proxy)

	raw, err := src.FetchLyrics(context.Background(), "1:KEY1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if raw.Primary != instrumentalText {
		t.Errorf("Expected instrumental placeholder, got %q", raw.Primary)
	}
}

func TestNormalizeLyrics_UnescapesEntities(t *testing.T) {
	got := normalizeLyrics("[00:01.00]Don&apos;t stop")
	if got != "[00:01.00]Don't stop" {
		t.Errorf("Unexpected result: %q", got)
	}
}
