package mapview

import (
	"fmt"
	"net/http"
)

// Provider describes a tile server.
type Provider interface {
	// TileURL returns the URL serving the given tile.
	TileURL(t TileID) string

	// Authorize attaches the provider's credentials to a tile
	// request.
	Authorize(req *http.Request)

	// CacheKey identifies the provider, including its credentials, so
	// cached tiles are never reused across accounts or styles.
	CacheKey() string

	// Attribution is the copyright notice drawn over the map.
	Attribution() string
}

// OpenStreetMap serves tiles from the public openstreetmap.org
// servers. Their usage policy requires an identifying User-Agent,
// which the tile manager sets on every request.
type OpenStreetMap struct{}

func (OpenStreetMap) TileURL(t TileID) string {
	return fmt.Sprintf("https://tile.openstreetmap.org/%d/%d/%d.png", t.Zoom, t.X, t.Y)
}

func (OpenStreetMap) Authorize(*http.Request) {}

func (OpenStreetMap) CacheKey() string { return "osm" }

func (OpenStreetMap) Attribution() string {
	return "© OpenStreetMap contributors"
}

// Mapbox serves raster tiles from the Mapbox static tiles API.
type Mapbox struct {
	// StyleOwner is the account owning the style, e.g. "mapbox".
	StyleOwner string
	// Style is the style id, e.g. "streets-v12".
	Style string
	// AccessToken is the account's public access token.
	AccessToken string
}

func (m Mapbox) TileURL(t TileID) string {
	return fmt.Sprintf(
		"https://api.mapbox.com/styles/v1/%s/%s/tiles/256/%d/%d/%d?access_token=%s",
		m.StyleOwner, m.Style, t.Zoom, t.X, t.Y, m.AccessToken)
}

func (Mapbox) Authorize(*http.Request) {}

func (m Mapbox) CacheKey() string {
	return fmt.Sprintf("mapbox/%s/%s/%s", m.StyleOwner, m.Style, m.AccessToken)
}

func (m Mapbox) Attribution() string {
	return "© Mapbox © OpenStreetMap"
}

// CartoStyle is a CartoCDN basemap style.
type CartoStyle string

const (
	CartoVoyager    CartoStyle = "rastertiles/voyager"
	CartoPositron   CartoStyle = "light_all"
	CartoDarkMatter CartoStyle = "dark_all"
)

// Valid reports whether s is a known CartoCDN style.
func (s CartoStyle) Valid() bool {
	switch s {
	case CartoVoyager, CartoPositron, CartoDarkMatter:
		return true
	}
	return false
}

// CartoCDN serves tiles from the CARTO basemaps CDN, authenticated
// with a bearer token.
type CartoCDN struct {
	Style       CartoStyle
	AccessToken string
}

func (c CartoCDN) TileURL(t TileID) string {
	return fmt.Sprintf("https://basemaps.cartocdn.com/%s/%d/%d/%d.png", c.Style, t.Zoom, t.X, t.Y)
}

func (c CartoCDN) Authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
}

func (c CartoCDN) CacheKey() string {
	return fmt.Sprintf("carto/%s/%s", c.Style, c.AccessToken)
}

func (c CartoCDN) Attribution() string {
	return "© CARTO © OpenStreetMap contributors"
}
