// Package callsign resolves callsigns to operator details using the
// public hamdb.org API, with hamqth.com as an authenticated fallback.
package callsign

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultHamDBBase  = "https://api.hamdb.org"
	defaultHamQTHBase = "https://www.hamqth.com/xml.php"

	// program identifier sent to both services
	agent = "hamview"

	// DefaultTimeout bounds one lookup round trip.
	DefaultTimeout = 10 * time.Second

	// hamqthSessionTTL is how long a HamQTH session id is reused. The
	// service expires sessions after an hour.
	hamqthSessionTTL = 45 * time.Minute
)

var (
	// ErrNotFound indicates no service knows the callsign.
	ErrNotFound = errors.New("callsign: not found")

	// ErrLookup indicates the lookup failed for another reason.
	ErrLookup = errors.New("callsign: lookup failed")
)

// Info is what a lookup returns about an operator.
type Info struct {
	Callsign string
	Name     string
	Grid     string
	QTH      string
	State    string
	Country  string
}

// Config carries the optional HamQTH credentials. Without them only
// hamdb.org is consulted, which covers US and Canadian callsigns.
type Config struct {
	HamQTHUsername string `yaml:"hamqthUsername"`
	HamQTHPassword string `yaml:"hamqthPassword"`
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithHamDBBase points the client at a different hamdb endpoint.
func WithHamDBBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.hamdbBase = base
		}
	}
}

// WithHamQTHBase points the client at a different hamqth endpoint.
func WithHamQTHBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.hamqthBase = base
		}
	}
}

// Client looks up callsigns. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	hamdbBase  string
	hamqthBase string

	mu        sync.Mutex
	sessionID string
	sessionAt time.Time
}

// NewClient creates a lookup client.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		hamdbBase:  defaultHamDBBase,
		hamqthBase: defaultHamQTHBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup resolves a callsign. hamdb is consulted first; on a miss the
// client falls back to HamQTH when credentials are configured.
func (c *Client) Lookup(ctx context.Context, callsign string) (*Info, error) {
	callsign = strings.ToUpper(strings.TrimSpace(callsign))
	if callsign == "" {
		return nil, fmt.Errorf("%w: empty callsign", ErrLookup)
	}

	info, err := c.lookupHamDB(ctx, callsign)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, ErrNotFound) {
		c.logger.Warn("hamdb lookup failed", "callsign", callsign, "error", err)
	}

	if c.cfg.HamQTHUsername == "" {
		return nil, err
	}

	info, qthErr := c.lookupHamQTH(ctx, callsign)
	if qthErr != nil {
		c.logger.Warn("hamqth lookup failed", "callsign", callsign, "error", qthErr)
		return nil, qthErr
	}
	return info, nil
}

// hamdbResponse mirrors the hamdb.org JSON envelope.
type hamdbResponse struct {
	HamDB struct {
		Callsign struct {
			Call    string `json:"call"`
			Grid    string `json:"grid"`
			FName   string `json:"fname"`
			Name    string `json:"name"`
			Addr2   string `json:"addr2"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"callsign"`
		Messages struct {
			Status string `json:"status"`
		} `json:"messages"`
	} `json:"hamdb"`
}

func (c *Client) lookupHamDB(ctx context.Context, callsign string) (*Info, error) {
	reqURL := fmt.Sprintf("%s/%s/json/%s", c.hamdbBase, url.PathEscape(callsign), agent)

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp hamdbResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding hamdb response: %s", ErrLookup, err)
	}

	cs := resp.HamDB.Callsign
	if resp.HamDB.Messages.Status == "NOT_FOUND" || cs.Call == "NOT_FOUND" || cs.Call == "" {
		return nil, ErrNotFound
	}

	name := cs.FName
	if cs.Name != "" {
		if name != "" {
			name += " "
		}
		name += cs.Name
	}

	return &Info{
		Callsign: cs.Call,
		Name:     name,
		Grid:     cs.Grid,
		QTH:      cs.Addr2,
		State:    cs.State,
		Country:  cs.Country,
	}, nil
}

// hamqthSession mirrors the HamQTH session envelope.
type hamqthSession struct {
	XMLName xml.Name `xml:"HamQTH"`
	Session struct {
		SessionID string `xml:"session_id"`
		Error     string `xml:"error"`
	} `xml:"session"`
}

// hamqthSearch mirrors the HamQTH search envelope.
type hamqthSearch struct {
	XMLName xml.Name `xml:"HamQTH"`
	Search  struct {
		Callsign string `xml:"callsign"`
		Nick     string `xml:"nick"`
		QTH      string `xml:"qth"`
		Grid     string `xml:"grid"`
		Country  string `xml:"country"`
		USState  string `xml:"us_state"`
	} `xml:"search"`
	Session struct {
		Error string `xml:"error"`
	} `xml:"session"`
}

func (c *Client) lookupHamQTH(ctx context.Context, callsign string) (*Info, error) {
	sessionID, err := c.hamqthSessionID(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("id", sessionID)
	q.Set("callsign", callsign)
	q.Set("prg", agent)

	body, err := c.get(ctx, c.hamqthBase+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp hamqthSearch
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding hamqth response: %s", ErrLookup, err)
	}

	if resp.Session.Error != "" {
		if strings.Contains(strings.ToLower(resp.Session.Error), "not found") {
			return nil, ErrNotFound
		}
		// drop the cached session, it may have expired
		c.mu.Lock()
		c.sessionID = ""
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: hamqth: %s", ErrLookup, resp.Session.Error)
	}
	if resp.Search.Callsign == "" {
		return nil, ErrNotFound
	}

	return &Info{
		Callsign: strings.ToUpper(resp.Search.Callsign),
		Name:     resp.Search.Nick,
		Grid:     resp.Search.Grid,
		QTH:      resp.Search.QTH,
		State:    resp.Search.USState,
		Country:  resp.Search.Country,
	}, nil
}

// hamqthSessionID returns a cached session id or authenticates for a
// fresh one.
func (c *Client) hamqthSessionID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != "" && time.Since(c.sessionAt) < hamqthSessionTTL {
		return c.sessionID, nil
	}

	q := url.Values{}
	q.Set("u", c.cfg.HamQTHUsername)
	q.Set("p", c.cfg.HamQTHPassword)

	body, err := c.get(ctx, c.hamqthBase+"?"+q.Encode())
	if err != nil {
		return "", err
	}

	var resp hamqthSession
	if err := xml.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decoding hamqth session: %s", ErrLookup, err)
	}
	if resp.Session.Error != "" {
		return "", fmt.Errorf("%w: hamqth: %s", ErrLookup, resp.Session.Error)
	}
	if resp.Session.SessionID == "" {
		return "", fmt.Errorf("%w: hamqth returned no session id", ErrLookup)
	}

	c.sessionID = resp.Session.SessionID
	c.sessionAt = time.Now()
	return c.sessionID, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLookup, err)
	}
	req.Header.Set("User-Agent", agent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrLookup, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLookup, err)
	}
	return body, nil
}
