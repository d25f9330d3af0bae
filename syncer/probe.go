package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
	"lyricsync-go/transport"
)

// LengthProbe measures a song's duration in milliseconds. 0 means unknown.
type LengthProbe interface {
	Measure(ctx context.Context, songID, title string) (int, error)
}

// HTTPProbe asks the local playback client for the current track length. The
// endpoint can be slow while the player is buffering, so every call carries a
// hard timeout; a timeout is reported as an error and the caller falls back
// to the unknown sentinel.
type HTTPProbe struct {
	proxy   transport.Requester
	baseURL string
	timeout time.Duration
}

type lengthResponse struct {
	LengthMs int `json:"lengthMs"`
}

// NewHTTPProbe creates a probe against the client at baseURL.
func NewHTTPProbe(proxy transport.Requester, baseURL string, timeoutMs int) *HTTPProbe {
	if timeoutMs <= 0 {
		timeoutMs = 1000
	}
	return &HTTPProbe{
		proxy:   proxy,
		baseURL: baseURL,
		timeout: time.Duration(timeoutMs) * time.Millisecond,
	}
}

func (p *HTTPProbe) Measure(ctx context.Context, songID, title string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := url.Values{}
	if songID != "" {
		params.Set("id", songID)
	}
	params.Set("title", title)

	resp, err := p.proxy.Do(ctx, transport.Request{URL: p.baseURL + "/api/track/length?" + params.Encode()})
	if err != nil {
		return 0, fmt.Errorf("length probe failed: %w", err)
	}
	if resp.Status != http.StatusOK {
		return 0, fmt.Errorf("length endpoint returned status %d", resp.Status)
	}

	var body lengthResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return 0, fmt.Errorf("failed to parse length response: %w", err)
	}
	if body.LengthMs < 0 {
		return 0, fmt.Errorf("negative track length %d", body.LengthMs)
	}

	log.Debugf("%s Track length for %q: %dms", logcolors.LogProbe, title, body.LengthMs)
	return body.LengthMs, nil
}
