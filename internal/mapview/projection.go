package mapview

import (
	"math"

	"github.com/hamview/hamview/internal/geo"
)

// maxMercatorLat bounds the Web Mercator projection. Latitudes beyond
// it are clamped so every coordinate lands inside the world square.
const maxMercatorLat = 85.05112878

// project maps a coordinate to global map pixels with the Web Mercator
// projection. tileSize is the effective (fractional-zoom scaled) tile
// edge and zoom the integer tile zoom.
func project(c geo.Coord, zoom uint8, tileSize float64) Point {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, c.Lat))
	phi := lat * math.Pi / 180

	world := float64(TilesPerAxis(zoom)) * tileSize
	x := (c.Lon + 180) / 360 * world
	y := (1 - math.Log(math.Tan(phi)+1/math.Cos(phi))/math.Pi) / 2 * world
	return Point{X: x, Y: y}
}

// unproject is the inverse of project.
func unproject(p Point, zoom uint8, tileSize float64) geo.Coord {
	world := float64(TilesPerAxis(zoom)) * tileSize
	lon := p.X/world*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*p.Y/world))) * 180 / math.Pi
	return geo.Coord{Lat: lat, Lon: lon}
}
