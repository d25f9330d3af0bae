package netease

// searchResponse is the shape of the cloud search API reply.
type searchResponse struct {
	Code   int `json:"code"`
	Result struct {
		Songs []songInfo `json:"songs"`
	} `json:"result"`
}

type songInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Duration int `json:"duration"` // milliseconds
}

// lyricResponse carries both tracks: lrc is the original-language LRC text,
// tlyric the translation aligned to the same timestamps.
type lyricResponse struct {
	Code int `json:"code"`
	Lrc  struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
	Tlyric struct {
		Lyric string `json:"lyric"`
	} `json:"tlyric"`
}
