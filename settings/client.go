package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
	"lyricsync-go/transport"
)

// Client reads and writes the Settings document over HTTP.
type Client struct {
	proxy   transport.Requester
	baseURL string
}

// NewClient creates a settings client for the endpoint at baseURL.
func NewClient(proxy transport.Requester, baseURL string) *Client {
	return &Client{proxy: proxy, baseURL: baseURL}
}

// Fetch downloads the current settings.
func (c *Client) Fetch(ctx context.Context) (Settings, error) {
	resp, err := c.proxy.Do(ctx, transport.Request{URL: c.baseURL + "/settings"})
	if err != nil {
		return Settings{}, fmt.Errorf("settings fetch failed: %w", err)
	}
	if resp.Status != http.StatusOK {
		return Settings{}, fmt.Errorf("settings endpoint returned status %d", resp.Status)
	}

	var s Settings
	if err := json.Unmarshal([]byte(resp.Body), &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}

	log.Debugf("%s Fetched settings (%d blacklisted titles)", logcolors.LogSettings, len(s.Blacklist))
	return s, nil
}

// Save uploads the settings document.
func (c *Client) Save(ctx context.Context, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	resp, err := c.proxy.Do(ctx, transport.Request{
		URL:    c.baseURL + "/settings",
		Method: http.MethodPost,
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   string(data),
	})
	if err != nil {
		return fmt.Errorf("settings save failed: %w", err)
	}
	if resp.Status != http.StatusOK && resp.Status != http.StatusNoContent {
		return fmt.Errorf("settings endpoint returned status %d", resp.Status)
	}

	log.Debugf("%s Saved settings", logcolors.LogSettings)
	return nil
}
