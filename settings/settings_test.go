package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lyricsync-go/transport"
)

func TestBlacklistSet(t *testing.T) {
	b := NewBlacklistSet([]string{"Some Song", "  OTHER   track "})

	if !b.Has("some song") {
		t.Error("Expected normalized match")
	}
	if !b.Has("Other Track") {
		t.Error("Expected case-insensitive match")
	}
	if b.Has("unlisted") {
		t.Error("Unexpected match")
	}

	if !b.Add("New One") {
		t.Error("Expected Add to report insertion")
	}
	if b.Add("new one") {
		t.Error("Expected duplicate Add to report false")
	}
	if !b.Has("NEW ONE") {
		t.Error("Expected added title to match")
	}

	if !b.Remove("new one") {
		t.Error("Expected Remove to report deletion")
	}
	if b.Remove("new one") {
		t.Error("Expected second Remove to report false")
	}

	titles := b.Titles()
	if len(titles) != 2 {
		t.Errorf("Expected 2 titles, got %v", titles)
	}
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/settings" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Settings{
			Blacklist:     []string{"skip me"},
			ShowSecondary: true,
		})
	}))
	defer server.Close()

	client := NewClient(transport.NewHTTPProxy(0, 0), server.URL)
	s, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(s.Blacklist) != 1 || s.Blacklist[0] != "skip me" {
		t.Errorf("Unexpected blacklist: %v", s.Blacklist)
	}
	if !s.ShowSecondary {
		t.Error("Expected ShowSecondary to carry through")
	}
}

func TestClient_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(transport.NewHTTPProxy(0, 0), server.URL)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Error("Expected error on 500")
	}
}

func TestClient_Save(t *testing.T) {
	var got Settings
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(transport.NewHTTPProxy(0, 0), server.URL)
	err := client.Save(context.Background(), Settings{Blacklist: []string{"a", "b"}, OffsetMs: 250})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got.Blacklist) != 2 || got.OffsetMs != 250 {
		t.Errorf("Unexpected saved settings: %+v", got)
	}
}
