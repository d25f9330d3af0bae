package netease

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
	"lyricsync-go/transport"
)

const (
	searchURL = "https://music.163.com/api/search/get/web"
	lyricURL  = "https://music.163.com/api/song/lyric"

	searchLimit = 30
)

// Client talks to the NetEase Cloud Music web API through the shared proxy.
type Client struct {
	proxy  transport.Requester
	cookie string
}

// NewClient creates a NetEase client. cookie may be empty.
func NewClient(proxy transport.Requester, cookie string) *Client {
	return &Client{proxy: proxy, cookie: cookie}
}

func (c *Client) searchSongs(ctx context.Context, keyword string) ([]songInfo, error) {
	params := url.Values{}
	params.Set("csrf_token", "hlpretag")
	params.Set("hlposttag", "")
	params.Set("s", keyword)
	params.Set("type", "1")
	params.Set("limit", fmt.Sprintf("%d", searchLimit))

	log.Debugf("%s [NetEase] Searching: %s", logcolors.LogSearch, keyword)

	resp, err := c.proxy.Do(ctx, transport.Request{
		URL:    searchURL + "?" + params.Encode(),
		Header: c.headers(),
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
	return body.Result.Songs, nil
}

func (c *Client) fetchLyric(ctx context.Context, songID string) (lyricResponse, error) {
	params := url.Values{}
	params.Set("os", "pc")
	params.Set("id", songID)
	params.Set("lv", "-1")
	params.Set("kv", "-1")
	params.Set("tv", "-1")

	log.Debugf("%s [NetEase] Fetching lyrics for ID %s", logcolors.LogLyrics, songID)

	resp, err := c.proxy.Do(ctx, transport.Request{
		URL:    lyricURL + "?" + params.Encode(),
		Header: c.headers(),
	})
	if err != nil {
		return lyricResponse{}, fmt.Errorf("lyric request failed: %w", err)
	}
	if resp.Status != http.StatusOK {
		return lyricResponse{}, fmt.Errorf("lyric API returned status %d", resp.Status)
	}

	var body lyricResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return lyricResponse{}, fmt.Errorf("failed to parse lyric response: %w", err)
	}
	return body, nil
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Referer": "https://music.163.com"}
	if c.cookie != "" {
		h["Cookie"] = c.cookie
	}
	return h
}
