package qqmusic

// searchResponse is the shape of the soso search API reply.
type searchResponse struct {
	Code int `json:"code"`
	Data struct {
		Song struct {
			List []songInfo `json:"list"`
		} `json:"song"`
	} `json:"data"`
}

type songInfo struct {
	SongMid  string `json:"songmid"`
	SongName string `json:"songname"`
	Singer   []struct {
		Name string `json:"name"`
	} `json:"singer"`
	Interval int `json:"interval"` // seconds
}

// lyricResponse carries base64-encoded LRC payloads: lyric is the original
// track, trans the translation.
type lyricResponse struct {
	Code  int    `json:"code"`
	Lyric string `json:"lyric"`
	Trans string `json:"trans"`
}
