package qqmusic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
	"lyricsync-go/transport"
)

const (
	searchURL = "https://c.y.qq.com/soso/fcgi-bin/client_search_cp"
	lyricURL  = "https://c.y.qq.com/lyric/fcgi-bin/fcg_query_lyric_new.fcg"

	// The lyric endpoint rejects requests without a y.qq.com referer.
	refererHeader = "https://y.qq.com/"

	searchLimit = 10
)

// Client talks to the QQ Music web API through the shared proxy.
type Client struct {
	proxy transport.Requester
}

// NewClient creates a QQ Music client.
func NewClient(proxy transport.Requester) *Client {
	return &Client{proxy: proxy}
}

func (c *Client) searchSongs(ctx context.Context, keyword string) ([]songInfo, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("w", keyword)
	params.Set("n", fmt.Sprintf("%d", searchLimit))
	params.Set("p", "1")
	params.Set("cr", "1")

	log.Debugf("%s [QQMusic] Searching: %s", logcolors.LogSearch, keyword)

	resp, err := c.proxy.Do(ctx, transport.Request{
		URL:    searchURL + "?" + params.Encode(),
		Header: map[string]string{"Referer": refererHeader},
	})
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.Status)
	}

	var body searchResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if body.Code != 0 {
		return nil, fmt.Errorf("search API error code %d", body.Code)
	}
	return body.Data.Song.List, nil
}

func (c *Client) fetchLyric(ctx context.Context, songMid string) (primary, secondary string, err error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("songmid", songMid)
	params.Set("g_tk", "5381")
	params.Set("nobase64", "0")

	log.Debugf("%s [QQMusic] Fetching lyrics for mid %s", logcolors.LogLyrics, songMid)

	resp, err := c.proxy.Do(ctx, transport.Request{
		URL:    lyricURL + "?" + params.Encode(),
		Header: map[string]string{"Referer": refererHeader},
	})
	if err != nil {
		return "", "", fmt.Errorf("lyric request failed: %w", err)
	}
	if resp.Status != http.StatusOK {
		return "", "", fmt.Errorf("lyric API returned status %d", resp.Status)
	}

	var body lyricResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return "", "", fmt.Errorf("failed to parse lyric response: %w", err)
	}
	if body.Code != 0 {
		return "", "", fmt.Errorf("lyric API error code %d", body.Code)
	}

	primary, err = decodeTrack(body.Lyric)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode lyric track: %w", err)
	}
	// A broken translation track degrades to primary-only rather than failing.
	secondary, terr := decodeTrack(body.Trans)
	if terr != nil {
		log.Warnf("%s [QQMusic] Bad translation track for %s: %v", logcolors.LogWarning, songMid, terr)
		secondary = ""
	}
	return primary, secondary, nil
}

func decodeTrack(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(decoded), "\ufeff"), nil
}
