// Package maidenhead converts between Maidenhead locators (grid
// squares) and geographic coordinates.
//
// A locator addresses a rectangular cell with 2, 4 or 6 characters:
// a field (letters A-R, 20°x10°), a square within the field (digits,
// 2°x1°) and a subsquare (letters a-x, 5'x2.5'). Parsing is
// case-insensitive; the canonical form is "FN31pr".
package maidenhead

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hamview/hamview/internal/geo"
)

// ErrInvalidGrid is returned for malformed locators: wrong length,
// non-ASCII input, or characters outside their tier's range.
var ErrInvalidGrid = errors.New("invalid maidenhead locator")

const (
	fieldLonSize  = 20.0
	fieldLatSize  = 10.0
	squareLonSize = 2.0
	squareLatSize = 1.0
	subLonSize    = squareLonSize / 24.0
	subLatSize    = squareLatSize / 24.0
)

// GridToCoord converts a 2-, 4- or 6-character locator to the
// coordinate of the center of the cell it addresses.
func GridToCoord(grid string) (geo.Coord, error) {
	g := strings.ToUpper(strings.TrimSpace(grid))
	if len(g) != 2 && len(g) != 4 && len(g) != 6 {
		return geo.Coord{}, fmt.Errorf("%w: %q has length %d, want 2, 4 or 6", ErrInvalidGrid, grid, len(g))
	}

	f1, f2 := g[0], g[1]
	if f1 < 'A' || f1 > 'R' || f2 < 'A' || f2 > 'R' {
		return geo.Coord{}, fmt.Errorf("%w: %q field characters must be A-R", ErrInvalidGrid, grid)
	}
	lon := float64(f1-'A') * fieldLonSize
	lat := float64(f2-'A') * fieldLatSize

	if len(g) >= 4 {
		d1, d2 := g[2], g[3]
		if d1 < '0' || d1 > '9' || d2 < '0' || d2 > '9' {
			return geo.Coord{}, fmt.Errorf("%w: %q square characters must be 0-9", ErrInvalidGrid, grid)
		}
		lon += float64(d1-'0') * squareLonSize
		lat += float64(d2-'0') * squareLatSize
	}

	if len(g) == 6 {
		s1, s2 := g[4], g[5]
		if s1 < 'A' || s1 > 'X' || s2 < 'A' || s2 > 'X' {
			return geo.Coord{}, fmt.Errorf("%w: %q subsquare characters must be a-x", ErrInvalidGrid, grid)
		}
		lon += float64(s1-'A') * subLonSize
		lat += float64(s2-'A') * subLatSize
	}

	// Bias to the center of the cell at the final precision tier.
	switch len(g) {
	case 2:
		lon += fieldLonSize / 2
		lat += fieldLatSize / 2
	case 4:
		lon += squareLonSize / 2
		lat += squareLatSize / 2
	case 6:
		lon += subLonSize / 2
		lat += subLatSize / 2
	}

	return geo.Coord{Lat: lat - 90, Lon: lon - 180}, nil
}

// CoordToGrid converts a coordinate to the canonical 6-character
// locator of the subsquare containing it. The east and north edges of
// the map (lon=180, lat=90) resolve to the last cell.
func CoordToGrid(c geo.Coord) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("%w: coordinate (%f, %f) out of range", ErrInvalidGrid, c.Lat, c.Lon)
	}

	lon := c.Lon + 180
	lat := c.Lat + 90

	f1 := clampIndex(int(lon/fieldLonSize), 17)
	f2 := clampIndex(int(lat/fieldLatSize), 17)
	lon -= float64(f1) * fieldLonSize
	lat -= float64(f2) * fieldLatSize

	d1 := clampIndex(int(lon/squareLonSize), 9)
	d2 := clampIndex(int(lat/squareLatSize), 9)
	lon -= float64(d1) * squareLonSize
	lat -= float64(d2) * squareLatSize

	s1 := clampIndex(int(lon/subLonSize), 23)
	s2 := clampIndex(int(lat/subLatSize), 23)

	b := make([]byte, 6)
	b[0] = 'A' + byte(f1)
	b[1] = 'A' + byte(f2)
	b[2] = '0' + byte(d1)
	b[3] = '0' + byte(d2)
	b[4] = 'a' + byte(s1)
	b[5] = 'a' + byte(s2)
	return string(b), nil
}

// Valid reports whether the string parses as a locator.
func Valid(grid string) bool {
	_, err := GridToCoord(grid)
	return err == nil
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
