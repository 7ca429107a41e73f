// Package mapview renders a slippy map with overlaid markers into an
// RGBA image. It handles tile addressing, fetching and caching,
// viewport panning and zooming, and marker hit-testing.
package mapview

import (
	"image/color"

	"github.com/hamview/hamview/internal/geo"
)

// Marker is a point of interest drawn on the map.
type Marker interface {
	// ID identifies the marker across refreshes. Hover and selection
	// state is keyed by it.
	ID() uint64

	// Location is the marker's position on the globe.
	Location() geo.Coord

	// Color is the fill color of the marker disc.
	Color() color.NRGBA

	// LineTo returns a paired endpoint to connect with a line while
	// the marker is hovered or selected. ok is false when the marker
	// stands alone.
	LineTo() (geo.Coord, bool)

	// Details returns the lines shown in the detail panel.
	Details() []string
}
