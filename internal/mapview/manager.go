package mapview

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultCacheSize is how many decoded tiles are kept in memory.
	DefaultCacheSize = 256

	// DefaultFetchTimeout bounds one tile download.
	DefaultFetchTimeout = 15 * time.Second

	// failureCooldown is how long a failed tile stays failed before a
	// lookup triggers another fetch.
	failureCooldown = 30 * time.Second

	tileUserAgent = "hamview/1.0 (+https://github.com/hamview/hamview)"

	maxTileBytes = 4 << 20
)

// TileState is the lifecycle state of a tile lookup.
type TileState int

const (
	// TilePending means a fetch is in flight.
	TilePending TileState = iota
	// TileReady means the tile image is available.
	TileReady
	// TileFailed means the last fetch failed and the cooldown has not
	// elapsed yet.
	TileFailed
)

// Tile is the result of a tile lookup.
type Tile struct {
	State TileState
	Image image.Image
}

type cachedTile struct {
	img      image.Image
	failedAt time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger. The default discards everything.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerHTTPClient replaces the HTTP client used for tile
// downloads.
func WithManagerHTTPClient(hc *http.Client) ManagerOption {
	return func(m *Manager) {
		if hc != nil {
			m.client = hc
		}
	}
}

// WithCacheSize sets the decoded-tile cache capacity.
func WithCacheSize(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.cacheSize = n
		}
	}
}

// Manager downloads, decodes and caches map tiles. One Manager is
// shared by every map in the process, so switching tabs or providers
// does not refetch tiles already on hand. Lookups never block:
// a miss starts a background fetch and reports TilePending.
type Manager struct {
	client    *http.Client
	logger    *slog.Logger
	cacheSize int

	mu       sync.Mutex
	cache    *lru.Cache[string, *cachedTile]
	inflight map[string]struct{}
}

// NewManager creates a tile manager.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		client:    &http.Client{Timeout: DefaultFetchTimeout},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		cacheSize: DefaultCacheSize,
		inflight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	cache, err := lru.New[string, *cachedTile](m.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating tile cache: %w", err)
	}
	m.cache = cache
	return m, nil
}

// Get looks up a tile for the given provider. On a miss it starts a
// background fetch, coalescing concurrent requests for the same tile,
// and returns TilePending.
func (m *Manager) Get(ctx context.Context, p Provider, id TileID) Tile {
	key := p.CacheKey() + "|" + id.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.cache.Get(key); ok {
		if entry.img != nil {
			return Tile{State: TileReady, Image: entry.img}
		}
		if time.Since(entry.failedAt) < failureCooldown {
			return Tile{State: TileFailed}
		}
		m.cache.Remove(key)
	}

	if _, ok := m.inflight[key]; ok {
		return Tile{State: TilePending}
	}
	m.inflight[key] = struct{}{}

	// The manager is shared across views, so a download keeps going
	// after its requesting view goes away and still lands in the
	// cache for everyone else. Only the fetch timeout bounds it.
	go m.fetch(context.WithoutCancel(ctx), p, id, key)
	return Tile{State: TilePending}
}

// fetch downloads and decodes one tile, then files the result.
func (m *Manager) fetch(ctx context.Context, p Provider, id TileID, key string) {
	ctx, cancel := context.WithTimeout(ctx, DefaultFetchTimeout)
	defer cancel()

	img, err := m.download(ctx, p, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, key)

	if err != nil {
		m.logger.Warn("tile fetch failed", "tile", id.String(), "error", err)
		m.cache.Add(key, &cachedTile{failedAt: time.Now()})
		return
	}
	m.cache.Add(key, &cachedTile{img: img})
}

func (m *Manager) download(ctx context.Context, p Provider, id TileID) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.TileURL(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", tileUserAgent)
	p.Authorize(req)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding tile: %w", err)
	}
	return img, nil
}
