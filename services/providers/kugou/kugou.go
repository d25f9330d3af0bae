package kugou

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"lyricsync-go/services/providers"
	"lyricsync-go/transport"
)

// ProviderName is the identifier for the Kugou provider
const ProviderName = "kugou"

// Kugou resolves lyrics through the krcs API. It serves a single LRC track,
// so merged lines never carry a secondary.
type Kugou struct {
	client *Client
}

// New creates a Kugou source using the shared transport proxy.
func New(proxy transport.Requester) *Kugou {
	return &Kugou{client: NewClient(proxy)}
}

// Name returns the provider identifier
func (k *Kugou) Name() string {
	return ProviderName
}

// Search resolves a title into candidates. Synced candidates (krctype 1) are
// ordered first so the fetch loop tries them before word-timed ones.
func (k *Kugou) Search(ctx context.Context, title string) ([]providers.Candidate, error) {
	found, err := k.client.searchLyrics(ctx, title)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].KRCType != found[j].KRCType {
			return found[i].KRCType == 1
		}
		return found[i].Score > found[j].Score
	})

	candidates := make([]providers.Candidate, 0, len(found))
	for _, c := range found {
		candidates = append(candidates, providers.Candidate{
			Title:    c.Song,
			Artist:   c.Singer,
			LengthMs: c.Duration,
			Key:      c.ID + ":" + c.AccessKey,
		})
	}
	return candidates, nil
}

// FetchLyrics downloads the LRC payload for an "id:accesskey" key.
func (k *Kugou) FetchLyrics(ctx context.Context, key string) (providers.RawLyrics, error) {
	id, accessKey, ok := strings.Cut(key, ":")
	if !ok {
		return providers.RawLyrics{}, fmt.Errorf("malformed kugou key: %q", key)
	}

	lrc, err := k.client.downloadLyrics(ctx, id, accessKey)
	if err != nil {
		return providers.RawLyrics{}, err
	}
	return providers.RawLyrics{Primary: normalizeLyrics(lrc)}, nil
}
