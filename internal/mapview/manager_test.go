package mapview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// testProvider serves tiles from a test server.
type testProvider struct {
	base string
	key  string
}

func (p testProvider) TileURL(t TileID) string {
	return fmt.Sprintf("%s/%d/%d/%d.png", p.base, t.Zoom, t.X, t.Y)
}

func (p testProvider) Authorize(*http.Request) {}
func (p testProvider) CacheKey() string        { return p.key }
func (p testProvider) Attribution() string     { return "test" }

func tilePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encoding tile: %v", err)
	}
	return buf.Bytes()
}

// waitForTile polls until the tile leaves the pending state.
func waitForTile(t *testing.T, m *Manager, p Provider, id TileID) Tile {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if tile := m.Get(context.Background(), p, id); tile.State != TilePending {
			return tile
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("tile stuck in pending state")
	return Tile{}
}

func TestManagerFetchesAndCaches(t *testing.T) {
	var hits atomic.Int32
	data := tilePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(data)
	}))
	defer srv.Close()

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	p := testProvider{base: srv.URL, key: "test"}
	id := TileID{X: 1, Y: 2, Zoom: 3}

	if tile := m.Get(context.Background(), p, id); tile.State != TilePending {
		t.Fatalf("first lookup state = %v, want pending", tile.State)
	}

	tile := waitForTile(t, m, p, id)
	if tile.State != TileReady {
		t.Fatalf("state = %v, want ready", tile.State)
	}
	if tile.Image == nil {
		t.Fatal("ready tile has no image")
	}

	// cached now, no second request
	m.Get(context.Background(), p, id)
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

// A download started for one view must finish and populate the shared
// cache even after that view's context is gone.
func TestManagerFetchOutlivesCaller(t *testing.T) {
	data := tilePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	p := testProvider{base: srv.URL, key: "test"}
	id := TileID{X: 4, Y: 4, Zoom: 5}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if tile := m.Get(ctx, p, id); tile.State != TilePending {
		t.Fatalf("first lookup state = %v, want pending", tile.State)
	}

	tile := waitForTile(t, m, p, id)
	if tile.State != TileReady {
		t.Fatalf("state = %v, want ready", tile.State)
	}
}

func TestManagerCoalescesConcurrentLookups(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	data := tilePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write(data)
	}))
	defer srv.Close()

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	p := testProvider{base: srv.URL, key: "test"}
	id := TileID{X: 0, Y: 0, Zoom: 1}

	for i := 0; i < 10; i++ {
		if tile := m.Get(context.Background(), p, id); tile.State != TilePending {
			t.Fatalf("lookup %d state = %v, want pending", i, tile.State)
		}
	}
	close(release)

	waitForTile(t, m, p, id)
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestManagerMarksFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	p := testProvider{base: srv.URL, key: "test"}
	tile := waitForTile(t, m, p, TileID{X: 1, Y: 1, Zoom: 1})
	if tile.State != TileFailed {
		t.Fatalf("state = %v, want failed", tile.State)
	}
}

// Tiles are keyed per provider identity, so the same tile id fetched
// through two providers hits both servers.
func TestManagerKeysCachePerProvider(t *testing.T) {
	var hits atomic.Int32
	data := tilePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(data)
	}))
	defer srv.Close()

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	id := TileID{X: 2, Y: 2, Zoom: 2}
	waitForTile(t, m, testProvider{base: srv.URL, key: "one"}, id)
	waitForTile(t, m, testProvider{base: srv.URL, key: "two"}, id)

	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2", got)
	}
}
