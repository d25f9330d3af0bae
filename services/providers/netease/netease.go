package netease

import (
	"context"
	"strconv"

	"lyricsync-go/services/providers"
	"lyricsync-go/transport"
)

// ProviderName is the identifier for the NetEase provider
const ProviderName = "netease"

// NetEase resolves lyrics through the NetEase Cloud Music web API. It is the
// only source here that serves a separate translation track (tlyric), which
// becomes the secondary line after merging.
type NetEase struct {
	client *Client
}

// New creates a NetEase source using the shared transport proxy.
func New(proxy transport.Requester, cookie string) *NetEase {
	return &NetEase{client: NewClient(proxy, cookie)}
}

// Name returns the provider identifier
func (n *NetEase) Name() string {
	return ProviderName
}

// Search resolves a title into candidates keyed by the numeric song ID.
func (n *NetEase) Search(ctx context.Context, title string) ([]providers.Candidate, error) {
	songs, err := n.client.searchSongs(ctx, title)
	if err != nil {
		return nil, err
	}

	candidates := make([]providers.Candidate, 0, len(songs))
	for _, s := range songs {
		artist := ""
		if len(s.Artists) > 0 {
			artist = s.Artists[0].Name
		}
		candidates = append(candidates, providers.Candidate{
			Title:    s.Name,
			Artist:   artist,
			LengthMs: s.Duration,
			Key:      strconv.Itoa(s.ID),
		})
	}
	return candidates, nil
}

// FetchLyrics downloads both tracks for a song ID.
func (n *NetEase) FetchLyrics(ctx context.Context, key string) (providers.RawLyrics, error) {
	body, err := n.client.fetchLyric(ctx, key)
	if err != nil {
		return providers.RawLyrics{}, err
	}
	return providers.RawLyrics{
		Primary:   body.Lrc.Lyric,
		Secondary: body.Tlyric.Lyric,
	}, nil
}
