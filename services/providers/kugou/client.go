package kugou

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
	lyricsSearchURL   = "https://krcs.kugou.com/search"
	lyricsDownloadURL = "https://krcs.kugou.com/download"
)

// Client talks to the Kugou krcs API through the shared proxy.
type Client struct {
	proxy transport.Requester
}

// NewClient creates a Kugou client.
func NewClient(proxy transport.Requester) *Client {
	return &Client{proxy: proxy}
}

// searchLyrics searches for lyrics candidates matching keyword.
func (c *Client) searchLyrics(ctx context.Context, keyword string) ([]lyricsCandidate, error) {
	params := url.Values{}
	params.Set("ver", "1")
	params.Set("man", "yes")
	params.Set("client", "mobi")
	params.Set("keyword", keyword)

	log.Debugf("%s [Kugou] Searching lyrics: %s", logcolors.LogSearch, keyword)

	resp, err := c.proxy.Do(ctx, transport.Request{URL: lyricsSearchURL + "?" + params.Encode()})
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
	if body.Status != 200 {
		return nil, fmt.Errorf("search API error: %s (code: %d)", body.ErrMsg, body.ErrCode)
	}
	return body.Candidates, nil
}

// downloadLyrics downloads LRC content by candidate ID and access key.
func (c *Client) downloadLyrics(ctx context.Context, id, accessKey string) (string, error) {
	params := url.Values{}
	params.Set("ver", "1")
	params.Set("client", "pc")
	params.Set("id", id)
	params.Set("accesskey", accessKey)
	params.Set("fmt", "lrc")

	log.Debugf("%s [Kugou] Downloading lyrics ID: %s", logcolors.LogLyrics, id)

	resp, err := c.proxy.Do(ctx, transport.Request{URL: lyricsDownloadURL + "?" + params.Encode()})
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	if resp.Status != http.StatusOK {
		return "", fmt.Errorf("download API returned status %d", resp.Status)
	}

	var body downloadResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return "", fmt.Errorf("failed to parse download response: %w", err)
	}
	if body.Status != 200 {
		return "", fmt.Errorf("download API error: %s (code: %d)", body.Info, body.ErrorCode)
	}
	if body.Content == "" {
		return "", fmt.Errorf("lyrics content is empty")
	}

	lrc, err := decodeBase64Content(body.Content)
	if err != nil {
		return "", fmt.Errorf("failed to decode lyrics content: %w", err)
	}
	return lrc, nil
}
