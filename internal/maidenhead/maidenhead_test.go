package maidenhead

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/hamview/hamview/internal/geo"
)

func TestGridToCoord(t *testing.T) {
	const subHalfLat = 1.0 / 48.0
	const subHalfLon = 1.0 / 24.0

	tests := []struct {
		grid     string
		wantLat  float64
		wantLon  float64
		tol      float64
	}{
		{"FN31pr", 41.729, -72.708, subHalfLon}, // W1AW
		{"fn31PR", 41.729, -72.708, subHalfLon}, // case-insensitive
		{"JN58td", 48.146, 11.608, subHalfLon},  // Munich
		{"FN", 45.0, -70.0, 0.001},              // field center
		{"FN31", 41.5, -73.0, 0.001},            // square center
		{"AA00aa", -90 + subHalfLat, -180 + subHalfLon, 0.001},
		{"RR99xx", 90 - subHalfLat, 180 - subHalfLon, 0.001},
	}

	for _, tc := range tests {
		t.Run(tc.grid, func(t *testing.T) {
			c, err := GridToCoord(tc.grid)
			if err != nil {
				t.Fatalf("GridToCoord(%q): %v", tc.grid, err)
			}
			if math.Abs(c.Lat-tc.wantLat) > tc.tol || math.Abs(c.Lon-tc.wantLon) > tc.tol {
				t.Errorf("GridToCoord(%q) = (%f, %f), want (%f, %f) ± %f",
					tc.grid, c.Lat, c.Lon, tc.wantLat, tc.wantLon, tc.tol)
			}
		})
	}
}

func TestGridToCoordInvalid(t *testing.T) {
	bad := []string{
		"", "F", "FN3", "FN31p", "FN31pr0", "FN31pr00",
		"SN31pr", // field out of range (S > R)
		"FNxxpr", // letters where digits expected
		"FN31yz", // subsquare out of range (y, z > x)
		"12cdef",
		"ÅN31pr", // non-ASCII
	}
	for _, g := range bad {
		if _, err := GridToCoord(g); !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("GridToCoord(%q): got %v, want ErrInvalidGrid", g, err)
		}
	}
}

func TestCoordToGrid(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     string
	}{
		{40.7580, -73.9855, "FN30as"}, // midtown Manhattan
		{41.7148, -72.7273, "FN31pr"}, // Newington CT
		{48.1467, 11.6083, "JN58td"},  // Munich
		{-33.8688, 151.2093, "QF56od"},
		{0, 0, "JJ00aa"},
		{90, 180, "RR99xx"}, // map edge clamps into the last cell
		{-90, -180, "AA00aa"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			got, err := CoordToGrid(geo.Coord{Lat: tc.lat, Lon: tc.lon})
			if err != nil {
				t.Fatalf("CoordToGrid(%f, %f): %v", tc.lat, tc.lon, err)
			}
			if got != tc.want {
				t.Errorf("CoordToGrid(%f, %f) = %q, want %q", tc.lat, tc.lon, got, tc.want)
			}
		})
	}

	if _, err := CoordToGrid(geo.Coord{Lat: 91, Lon: 0}); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("out-of-range coordinate: got %v, want ErrInvalidGrid", err)
	}
}

// TestRoundTrip verifies that converting a canonical 6-character grid
// to a coordinate and back reproduces the grid exactly.
func TestRoundTrip(t *testing.T) {
	fields := "ABCDEFGHIJKLMNOPQR"
	subs := "acfknpsvx" // sample of subsquare letters

	for _, f1 := range fields {
		for _, f2 := range []rune{'A', 'G', 'R'} {
			for _, d := range []byte{'0', '4', '9'} {
				for _, s := range subs {
					grid := string(f1) + string(f2) + string(d) + string(d) + strings.ToLower(string(s)+string(s))
					c, err := GridToCoord(grid)
					if err != nil {
						t.Fatalf("GridToCoord(%q): %v", grid, err)
					}
					back, err := CoordToGrid(c)
					if err != nil {
						t.Fatalf("CoordToGrid(%v): %v", c, err)
					}
					if back != grid {
						t.Fatalf("round trip %q -> (%f, %f) -> %q", grid, c.Lat, c.Lon, back)
					}
				}
			}
		}
	}
}

// TestCenterBias verifies the parsed coordinate sits inside the
// addressed cell, within half a cell of every corner.
func TestCenterBias(t *testing.T) {
	tests := []struct {
		grid               string
		cellLat, cellLon   float64 // cell size in degrees
		origLat, origLon   float64 // south-west corner
	}{
		{"FN", 10, 20, 40, -80},
		{"FN31", 1, 2, 41, -74},
		{"FN31pr", 1.0 / 24.0, 2.0 / 24.0, 41 + 17.0/24.0, -74 + 2*15.0/24.0},
	}
	for _, tc := range tests {
		t.Run(tc.grid, func(t *testing.T) {
			c, err := GridToCoord(tc.grid)
			if err != nil {
				t.Fatalf("GridToCoord(%q): %v", tc.grid, err)
			}
			if c.Lat <= tc.origLat || c.Lat >= tc.origLat+tc.cellLat {
				t.Errorf("lat %f outside cell [%f, %f]", c.Lat, tc.origLat, tc.origLat+tc.cellLat)
			}
			if c.Lon <= tc.origLon || c.Lon >= tc.origLon+tc.cellLon {
				t.Errorf("lon %f outside cell [%f, %f]", c.Lon, tc.origLon, tc.origLon+tc.cellLon)
			}
			// Center bias: equidistant from the cell edges.
			if d := math.Abs((c.Lat - tc.origLat) - tc.cellLat/2); d > 1e-9 {
				t.Errorf("lat not centered, off by %g", d)
			}
			if d := math.Abs((c.Lon - tc.origLon) - tc.cellLon/2); d > 1e-9 {
				t.Errorf("lon not centered, off by %g", d)
			}
		})
	}
}

func TestValid(t *testing.T) {
	if !Valid("FN31pr") || !Valid("fn31") || !Valid("JN") {
		t.Error("expected valid locators to pass")
	}
	if Valid("FN31p") || Valid("ZZ99zz") || Valid("") {
		t.Error("expected invalid locators to fail")
	}
}
