package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"lyricsync-go/logcolors"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Request describes one outbound call. Method defaults to GET.
type Request struct {
	URL    string
	Method string
	Header map[string]string
	Body   string
}

// Response is the normalized reply every provider client consumes.
type Response struct {
	Status int
	Header http.Header
	Body   string
}

// Requester is the single proxy all provider and probe HTTP flows through.
type Requester interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// HTTPProxy implements Requester on a shared http.Client with an outbound
// rate limiter, so a burst of song changes cannot hammer the providers.
type HTTPProxy struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPProxy builds a proxy limited to ratePerSec requests per second with
// the given burst. A non-positive rate disables limiting.
func NewHTTPProxy(ratePerSec, burst int) *HTTPProxy {
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), burst)
	}
	return &HTTPProxy{
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: limiter,
	}
}

func (p *HTTPProxy) Do(ctx context.Context, req Request) (Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Response{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", userAgent)
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debugf("%s %s %s -> %d (%d bytes, %s)", logcolors.LogHTTP,
		method, req.URL, resp.StatusCode, len(data), time.Since(start).Round(time.Millisecond))

	return Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   string(data),
	}, nil
}
