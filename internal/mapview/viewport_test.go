package mapview

import (
	"math"
	"testing"

	"github.com/hamview/hamview/internal/geo"
)

func TestTileSizePx(t *testing.T) {
	tests := []struct {
		zoom float64
		want float64
	}{
		{0, 256},
		{0.5, 384},
		{1, 256},
		{2.25, 320},
		{3.999, 255.744 + 256},
	}

	for _, tt := range tests {
		v := &Viewport{Zoom: tt.zoom}
		if got := v.TileSizePx(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("TileSizePx() at zoom %v = %v, want %v", tt.zoom, got, tt.want)
		}
	}
}

func TestPanKeepsOffsetBounded(t *testing.T) {
	v := NewViewport(800, 600)
	v.SetZoom(5)
	v.SetCenterLocation(geo.Coord{Lat: 48.0, Lon: 11.0})

	pans := [][2]float64{
		{-300, -200}, {-300, -200}, {1000, 0}, {0, 1000},
		{-7000, 123}, {13, -4500}, {0.5, 0.5}, {2500, 2500},
	}
	half := v.TileSizePx() / 2
	for _, p := range pans {
		v.Pan(p[0], p[1])
		if math.Abs(v.Offset.X) > half || math.Abs(v.Offset.Y) > half {
			t.Fatalf("offset %+v exceeds half tile %v after pan %v", v.Offset, half, p)
		}
		if !v.Center.InRange() {
			t.Fatalf("center tile %v out of range after pan %v", v.Center, p)
		}
	}
}

func TestPanClampsAtWorldEdge(t *testing.T) {
	v := NewViewport(800, 600)

	// single world tile at zoom 0, nowhere to go
	v.Pan(-100000, -100000)
	if v.Center != (TileID{}) {
		t.Errorf("center = %v, want world tile", v.Center)
	}
	half := v.TileSizePx() / 2
	if v.Offset.X != half || v.Offset.Y != half {
		t.Errorf("offset = %+v, want clamped to %v", v.Offset, half)
	}
}

func TestZoomKeepsCenterLocation(t *testing.T) {
	v := NewViewport(800, 600)
	v.SetZoom(4)
	loc := geo.Coord{Lat: 51.5, Lon: -0.12}
	v.SetCenterLocation(loc)

	for _, delta := range []float64{0.3, 1.0, 2.5, -0.7, -3.1} {
		v.ZoomBy(delta)
		got := v.CenterLocation()
		if math.Abs(got.Lat-loc.Lat) > 1e-6 || math.Abs(got.Lon-loc.Lon) > 1e-6 {
			t.Fatalf("center drifted to %+v after zoom %v, want %+v", got, delta, loc)
		}
	}
}

func TestSetZoomClamps(t *testing.T) {
	v := NewViewport(800, 600)
	v.SetZoom(50)
	if v.Zoom != MaxZoom {
		t.Errorf("zoom = %v, want %v", v.Zoom, float64(MaxZoom))
	}
	v.SetZoom(-3)
	if v.Zoom != 0 {
		t.Errorf("zoom = %v, want 0", v.Zoom)
	}
}

func TestReset(t *testing.T) {
	v := NewViewport(800, 600)
	v.SetZoom(7)
	v.SetCenterLocation(geo.Coord{Lat: -33.9, Lon: 151.2})
	v.Reset()

	if v.Zoom != 0 || v.Center != (TileID{}) || v.Offset != (Point{}) {
		t.Errorf("after reset: zoom=%v center=%v offset=%+v", v.Zoom, v.Center, v.Offset)
	}
}

func TestCenterLocationRoundTrip(t *testing.T) {
	locations := []geo.Coord{
		{Lat: 0, Lon: 0},
		{Lat: 41.71, Lon: -72.72},
		{Lat: -33.87, Lon: 151.21},
		{Lat: 64.13, Lon: -21.9},
	}

	v := NewViewport(1024, 768)
	v.SetZoom(8.5)
	for _, loc := range locations {
		v.SetCenterLocation(loc)
		got := v.CenterLocation()
		if math.Abs(got.Lat-loc.Lat) > 1e-6 || math.Abs(got.Lon-loc.Lon) > 1e-6 {
			t.Errorf("round trip %+v = %+v", loc, got)
		}
	}
}

func TestScreenPosAtCenter(t *testing.T) {
	v := NewViewport(800, 600)
	v.SetZoom(6)
	loc := geo.Coord{Lat: 35.68, Lon: 139.69}
	v.SetCenterLocation(loc)

	pos := v.ScreenPos(loc)
	if math.Abs(pos.X-400) > 1e-6 || math.Abs(pos.Y-300) > 1e-6 {
		t.Errorf("ScreenPos(center) = %+v, want (400, 300)", pos)
	}
}

func TestVisibleTilesWholeWorld(t *testing.T) {
	v := NewViewport(800, 600)
	tiles := v.VisibleTiles()

	if len(tiles) != 1 {
		t.Fatalf("got %d tiles, want 1", len(tiles))
	}
	if _, ok := tiles[TileID{}]; !ok {
		t.Fatalf("world tile missing from %v", tiles)
	}
}

// TestVisibleTilesMatchesBruteForce checks the flood fill against a
// scan over every tile at the zoom level.
func TestVisibleTilesMatchesBruteForce(t *testing.T) {
	v := NewViewport(800, 600)
	v.SetZoom(5)
	v.SetCenterLocation(geo.Coord{Lat: 40.0, Lon: -74.0})
	v.Pan(-37, 81) // push the offset off tile boundaries

	got := v.VisibleTiles()

	view := v.ScreenRect()
	centerRect := v.centerTileRect()
	size := v.TileSizePx()
	n := TilesPerAxis(v.Center.Zoom)

	want := make(map[TileID]bool)
	for x := uint32(0); x < n; x++ {
		for y := uint32(0); y < n; y++ {
			d := Point{
				X: (float64(x) - float64(v.Center.X)) * size,
				Y: (float64(y) - float64(v.Center.Y)) * size,
			}
			if view.Overlaps(centerRect.Translate(d)) {
				want[TileID{X: x, Y: y, Zoom: v.Center.Zoom}] = true
			}
		}
	}

	if len(got) != len(want) {
		t.Errorf("got %d tiles, want %d", len(got), len(want))
	}
	for id := range want {
		if _, ok := got[id]; !ok {
			t.Errorf("missing tile %v", id)
		}
	}
	for id := range got {
		if !want[id] {
			t.Errorf("extra tile %v", id)
		}
	}
}

func TestVisibleTilesCapped(t *testing.T) {
	view := RectFromSize(Point{}, 1e6, 1e6)
	center := TileID{X: 512, Y: 512, Zoom: 11}
	centerRect := RectFromSize(Point{X: 5e5, Y: 5e5}, 256, 256)

	tiles := visibleTiles(view, center, centerRect)
	if len(tiles) > maxVisibleTiles {
		t.Errorf("got %d tiles, cap is %d", len(tiles), maxVisibleTiles)
	}
}
