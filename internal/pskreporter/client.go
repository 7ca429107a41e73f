// Package pskreporter queries the pskreporter.info retrieval API and
// turns reception reports into map markers.
package pskreporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hamview/hamview/internal/mapview"
)

const (
	// DefaultBaseURL is the production retrieval endpoint.
	DefaultBaseURL = "https://retrieve.pskreporter.info/query"

	// DefaultTimeout bounds one query round trip.
	DefaultTimeout = 10 * time.Second

	userAgent = "hamview/1.0 (+https://github.com/hamview/hamview)"

	// jsonpCallback wraps the response body. The server requires the
	// parameter even though we strip the wrapper immediately.
	jsonpCallback = "doNothing"

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 32 << 20
)

var (
	// ErrRequest indicates the HTTP request itself failed.
	ErrRequest = errors.New("pskreporter: request failed")

	// ErrDecode indicates the response body could not be parsed.
	ErrDecode = errors.New("pskreporter: malformed response")

	// ErrRateLimited indicates the server refused the query because
	// this address has queried too often. Retrying immediately only
	// extends the penalty.
	ErrRateLimited = errors.New("pskreporter: rate limited")
)

// rateLimitFragment appears in the server's refusal message.
const rateLimitFragment = "too many queries"

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL points the client at a different retrieval endpoint.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// Client talks to the pskreporter.info retrieval API. A Client is safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a retrieval API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query fetches reception reports for opts and synthesizes markers
// (see BuildMarkers). dropped is the number of reports discarded for
// unparseable locators.
func (c *Client) Query(ctx context.Context, opts QueryOptions, style *Style) (markers []mapview.Marker, dropped int, err error) {
	if err := opts.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrRequest, err)
	}

	reports, err := c.fetch(ctx, opts)
	if err != nil {
		return nil, 0, err
	}

	role := RoleReceiver
	if opts.SentBy {
		role = RoleTransmitter
	}
	markers, dropped = BuildMarkers(reports, role, style, c.logger)
	return markers, dropped, nil
}

// fetch performs the HTTP round trip and unwraps the JSONP body.
func (c *Client) fetch(ctx context.Context, opts QueryOptions) ([]ReceptionReport, error) {
	reqURL := c.baseURL + "?" + buildQuery(opts).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRequest, err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("querying pskreporter", "callsign", opts.Callsign, "sentBy", opts.SentBy,
		"band", opts.Band, "mode", opts.Mode, "last", opts.Last)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrRequest, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRequest, err)
	}

	payload, err := stripJSONP(body)
	if err != nil {
		return nil, err
	}

	var result apiResponse
	if err := json.Unmarshal(payload, &result); err == nil && (result.CurrentSeconds != 0 || result.Reports != nil) {
		for i := range result.Reports {
			result.Reports[i].clamp()
		}
		c.logger.Debug("pskreporter response", "reports", len(result.Reports), "currentSeconds", result.CurrentSeconds)
		return result.Reports, nil
	}

	// Not the success shape. The server signals refusal with a bare
	// message object inside the same JSONP wrapper.
	var apiErr apiError
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Message != "" {
		if strings.Contains(apiErr.Message, rateLimitFragment) {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: server message: %s", ErrDecode, apiErr.Message)
	}

	return nil, fmt.Errorf("%w: unrecognized payload", ErrDecode)
}

// buildQuery assembles the query parameters for opts.
func buildQuery(opts QueryOptions) url.Values {
	q := url.Values{}
	q.Set("rronly", "1")
	q.Set("callback", jsonpCallback)
	q.Set("flowStartSeconds", "-"+strconv.FormatInt(int64(opts.Last.Duration()/time.Second), 10))

	if mode, ok := opts.Mode.Param(); ok {
		q.Set("mode", mode)
	}
	if min, max, ok := opts.Band.FreqRange(); ok {
		q.Set("frange", fmt.Sprintf("%d-%d", min, max))
	}
	if opts.SentBy {
		q.Set("senderCallsign", opts.Callsign)
	} else {
		q.Set("receiverCallsign", opts.Callsign)
	}
	return q
}

// stripJSONP removes the "doNothing(" prefix and ");" suffix around
// the JSON payload.
func stripJSONP(body []byte) ([]byte, error) {
	trimmed := strings.TrimSpace(string(body))
	prefix := jsonpCallback + "("
	if len(trimmed) < len(prefix)+2 || !strings.HasPrefix(trimmed, prefix) || !strings.HasSuffix(trimmed, ");") {
		return nil, fmt.Errorf("%w: not a %s callback payload", ErrDecode, jsonpCallback)
	}
	return []byte(trimmed[len(prefix) : len(trimmed)-2]), nil
}
