package qqmusic

import (
	"context"

	"lyricsync-go/services/providers"
	"lyricsync-go/transport"
)

// ProviderName is the identifier for the QQ Music provider
const ProviderName = "qqmusic"

// QQMusic resolves lyrics through the QQ Music soso API. Both tracks come
// back base64-encoded; a translation track is present for many Chinese and
// Japanese releases.
type QQMusic struct {
	client *Client
}

// New creates a QQ Music source using the shared transport proxy.
func New(proxy transport.Requester) *QQMusic {
	return &QQMusic{client: NewClient(proxy)}
}

// Name returns the provider identifier
func (q *QQMusic) Name() string {
	return ProviderName
}

// Search resolves a title into candidates keyed by songmid.
func (q *QQMusic) Search(ctx context.Context, title string) ([]providers.Candidate, error) {
	songs, err := q.client.searchSongs(ctx, title)
	if err != nil {
		return nil, err
	}

	candidates := make([]providers.Candidate, 0, len(songs))
	for _, s := range songs {
		artist := ""
		if len(s.Singer) > 0 {
			artist = s.Singer[0].Name
		}
		candidates = append(candidates, providers.Candidate{
			Title:    s.SongName,
			Artist:   artist,
			LengthMs: s.Interval * 1000,
			Key:      s.SongMid,
		})
	}
	return candidates, nil
}

// FetchLyrics downloads and decodes both tracks for a songmid.
func (q *QQMusic) FetchLyrics(ctx context.Context, key string) (providers.RawLyrics, error) {
	primary, secondary, err := q.client.fetchLyric(ctx, key)
	if err != nil {
		return providers.RawLyrics{}, err
	}
	return providers.RawLyrics{Primary: primary, Secondary: secondary}, nil
}
