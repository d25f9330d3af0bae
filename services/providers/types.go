package providers

import "errors"

var (
	// ErrProviderUnavailable marks transport-level failures: the provider
	// could not be reached or refused the request. The orchestrator treats
	// it the same as "nothing found" and moves to the next provider.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNoAcceptableResult is returned when every stored candidate failed
	// to yield a usable lyric payload.
	ErrNoAcceptableResult = errors.New("no acceptable result")
)

// Candidate is one search hit: enough identity to judge the match plus the
// provider-specific key needed to fetch its lyrics later.
type Candidate struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	LengthMs int    `json:"lengthMs"`
	Key      string `json:"key"`
}

// RawLyrics is the unparsed payload for one candidate. Primary is the
// original-language LRC text; Secondary is the translation track, empty when
// the provider has none.
type RawLyrics struct {
	Primary   string
	Secondary string
}

// Status tracks where an adapter is in its search/fetch cycle.
type Status int

const (
	StatusPending  Status = iota // idle, or holding candidates ready to fetch
	StatusLoading                // search in flight
	StatusNotFound               // search produced no usable candidates
	StatusNoAccept               // candidates existed but none yielded usable lyrics
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoading:
		return "loading"
	case StatusNotFound:
		return "not-found"
	case StatusNoAccept:
		return "no-accept"
	default:
		return "unknown"
	}
}

// ProviderError wraps a provider failure with its origin for logging.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}
