package kugou

// searchResponse represents the response from the Kugou lyrics search API
type searchResponse struct {
	Status  int    `json:"status"`
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`

	Candidates []lyricsCandidate `json:"candidates"`
}

// lyricsCandidate represents a lyrics match candidate
type lyricsCandidate struct {
	ID        string `json:"id"`
	AccessKey string `json:"accesskey"`
	Singer    string `json:"singer"`
	Song      string `json:"song"`
	Duration  int    `json:"duration"` // milliseconds
	KRCType   int    `json:"krctype"`  // 1 = synced, 2 = other
	Score     int    `json:"score"`
}

// downloadResponse represents the response from the Kugou lyrics download API
type downloadResponse struct {
	Status    int    `json:"status"`
	Info      string `json:"info"`
	ErrorCode int    `json:"error_code"`
	Fmt       string `json:"fmt"`
	Content   string `json:"content"` // Base64-encoded LRC content
}
