package app

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hamview/hamview/internal/geo"
	"github.com/hamview/hamview/internal/maidenhead"
	"github.com/hamview/hamview/internal/mapview"
	"github.com/hamview/hamview/internal/pskreporter"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"

	ProviderOSM    = "osm"
	ProviderMapbox = "mapbox"
	ProviderCarto  = "carto"
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

// RGBA is a color as it appears in the configuration file.
type RGBA [4]uint8

// NRGBA converts the configured color.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// ReporterConfig configures the reception-report session.
type ReporterConfig struct {
	RefreshRateSeconds int    `yaml:"refreshRateSeconds"`
	AutoRefresh        bool   `yaml:"autoRefresh"`
	DistanceUnit       string `yaml:"distanceUnit"`
	Colors             struct {
		Tx       RGBA `yaml:"tx"`
		Rx       RGBA `yaml:"rx"`
		ReportTx RGBA `yaml:"reportTx"`
		ReportRx RGBA `yaml:"reportRx"`
	} `yaml:"colors"`
}

// MapboxConfig holds Mapbox credentials and style.
type MapboxConfig struct {
	StyleOwner  string `yaml:"styleOwner"`
	Style       string `yaml:"style"`
	AccessToken string `yaml:"accessToken"`
}

// CartoConfig holds CartoCDN credentials and style.
type CartoConfig struct {
	Style       string `yaml:"style"`
	AccessToken string `yaml:"accessToken"`
}

// MapConfig configures the rendered map.
type MapConfig struct {
	Provider   string       `yaml:"provider"`
	Mapbox     MapboxConfig `yaml:"mapbox"`
	Carto      CartoConfig  `yaml:"carto"`
	Width      int          `yaml:"width"`
	Height     int          `yaml:"height"`
	CenterGrid string       `yaml:"centerGrid"`
	Zoom       float64      `yaml:"zoom"`
	FontFile   string       `yaml:"fontFile"`
}

// Config represents the main application configuration
type Config struct {
	Settings Settings                 `yaml:"settings"`
	Query    pskreporter.QueryOptions `yaml:"query"`
	Reporter ReporterConfig           `yaml:"reporter"`
	Map      MapConfig                `yaml:"map"`

	OutputFile string      `yaml:"-"`
	Format     ImageFormat `yaml:"-"`
}

func NewConfig() *Config {
	c := &Config{Format: ImagePNG}
	c.Query = pskreporter.DefaultQueryOptions()
	c.Reporter.RefreshRateSeconds = 60
	c.Reporter.DistanceUnit = string(geo.Kilometers)
	c.Reporter.Colors.Tx = RGBA{0x1e, 0x66, 0xd0, 0xff}
	c.Reporter.Colors.Rx = RGBA{0x1e, 0x66, 0xd0, 0xff}
	c.Reporter.Colors.ReportTx = RGBA{0xd0, 0x2a, 0x2a, 0xff}
	c.Reporter.Colors.ReportRx = RGBA{0xd0, 0x2a, 0x2a, 0xff}
	c.Map.Provider = ProviderOSM
	c.Map.Width = 1280
	c.Map.Height = 800
	return c
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var configFile, imageFormat, callsign string
	flag.StringVar(&configFile, "config", "", "Path to the configuration file")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&callsign, "callsign", "", "Callsign to query, overrides the configuration file")
	flag.Parse()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err = yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if callsign != "" {
		c.Query.Callsign = callsign
	}

	imageFormat = strings.ToLower(imageFormat)

	var err error
	if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else {
		err = c.Validate()
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}

// Validate checks the configuration beyond what the flag parser can.
func (c *Config) Validate() error {
	if err := c.Query.Validate(); err != nil {
		return fmt.Errorf("query: %w", err)
	}

	rate := time.Duration(c.Reporter.RefreshRateSeconds) * time.Second
	if rate < pskreporter.MinRefreshRate || rate > pskreporter.MaxRefreshRate {
		return fmt.Errorf("refresh rate must be between %d and %d seconds",
			int(pskreporter.MinRefreshRate/time.Second), int(pskreporter.MaxRefreshRate/time.Second))
	}

	switch geo.DistanceUnit(c.Reporter.DistanceUnit) {
	case geo.Kilometers, geo.Miles:
	default:
		return fmt.Errorf("invalid distance unit: %s", c.Reporter.DistanceUnit)
	}

	switch c.Map.Provider {
	case ProviderOSM:
	case ProviderMapbox:
		if c.Map.Mapbox.StyleOwner == "" || c.Map.Mapbox.Style == "" || c.Map.Mapbox.AccessToken == "" {
			return errors.New("mapbox provider requires styleOwner, style and accessToken")
		}
	case ProviderCarto:
		if !mapview.CartoStyle(c.Map.Carto.Style).Valid() {
			return fmt.Errorf("invalid carto style: %s", c.Map.Carto.Style)
		}
		if c.Map.Carto.AccessToken == "" {
			return errors.New("carto provider requires an accessToken")
		}
	default:
		return fmt.Errorf("invalid map provider: %s", c.Map.Provider)
	}

	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return errors.New("map width and height must be positive")
	}
	if c.Map.CenterGrid != "" && !maidenhead.Valid(c.Map.CenterGrid) {
		return fmt.Errorf("invalid center grid: %s", c.Map.CenterGrid)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > mapview.MaxZoom {
		return fmt.Errorf("zoom must be between 0 and %d", mapview.MaxZoom)
	}
	return nil
}

// Provider builds the configured tile provider.
func (c *Config) Provider() mapview.Provider {
	switch c.Map.Provider {
	case ProviderMapbox:
		return mapview.Mapbox{
			StyleOwner:  c.Map.Mapbox.StyleOwner,
			Style:       c.Map.Mapbox.Style,
			AccessToken: c.Map.Mapbox.AccessToken,
		}
	case ProviderCarto:
		return mapview.CartoCDN{
			Style:       mapview.CartoStyle(c.Map.Carto.Style),
			AccessToken: c.Map.Carto.AccessToken,
		}
	default:
		return mapview.OpenStreetMap{}
	}
}

// Style builds the marker style from the configured palette.
func (c *Config) Style() *pskreporter.Style {
	return &pskreporter.Style{
		TxColor:       c.Reporter.Colors.Tx.NRGBA(),
		RxColor:       c.Reporter.Colors.Rx.NRGBA(),
		ReportTxColor: c.Reporter.Colors.ReportTx.NRGBA(),
		ReportRxColor: c.Reporter.Colors.ReportRx.NRGBA(),
		Unit:          geo.DistanceUnit(c.Reporter.DistanceUnit),
	}
}

// LogLevel maps the configured level onto slog.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Settings.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
