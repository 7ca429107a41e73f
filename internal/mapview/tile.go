package mapview

import "fmt"

// BaseTileSize is the native edge length of a map tile in pixels.
const BaseTileSize = 256

// MaxZoom is the deepest tile zoom level requested from providers.
const MaxZoom = 19

// TileID addresses one map tile in the XYZ scheme.
type TileID struct {
	X, Y uint32
	Zoom uint8
}

// TilesPerAxis returns the tile count along one axis at a zoom level.
func TilesPerAxis(zoom uint8) uint32 { return 1 << zoom }

// InRange reports whether the tile exists at its zoom level.
func (t TileID) InRange() bool {
	n := TilesPerAxis(t.Zoom)
	return t.X < n && t.Y < n
}

// North returns the tile above t. ok is false at the top edge.
func (t TileID) North() (TileID, bool) {
	if t.Y == 0 {
		return TileID{}, false
	}
	return TileID{X: t.X, Y: t.Y - 1, Zoom: t.Zoom}, true
}

// South returns the tile below t. ok is false at the bottom edge.
func (t TileID) South() (TileID, bool) {
	if t.Y+1 >= TilesPerAxis(t.Zoom) {
		return TileID{}, false
	}
	return TileID{X: t.X, Y: t.Y + 1, Zoom: t.Zoom}, true
}

// West returns the tile left of t. ok is false at the west edge.
func (t TileID) West() (TileID, bool) {
	if t.X == 0 {
		return TileID{}, false
	}
	return TileID{X: t.X - 1, Y: t.Y, Zoom: t.Zoom}, true
}

// East returns the tile right of t. ok is false at the east edge.
func (t TileID) East() (TileID, bool) {
	if t.X+1 >= TilesPerAxis(t.Zoom) {
		return TileID{}, false
	}
	return TileID{X: t.X + 1, Y: t.Y, Zoom: t.Zoom}, true
}

func (t TileID) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}
