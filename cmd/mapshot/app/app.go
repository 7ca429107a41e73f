// Package app renders a reception-report map to an image file. It
// queries pskreporter.info for the configured callsign, waits for the
// visible map tiles to arrive and writes the composed frame out.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/hamview/hamview/internal/maidenhead"
	"github.com/hamview/hamview/internal/mapview"
	"github.com/hamview/hamview/internal/pskreporter"
)

const (
	// pollInterval paces the frame loop.
	pollInterval = 100 * time.Millisecond

	// settleTimeout bounds how long we wait for reports and tiles.
	settleTimeout = 90 * time.Second
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	style := config.Style()
	client := pskreporter.NewClient(pskreporter.WithLogger(logger))
	session := pskreporter.NewSession(client, style,
		pskreporter.WithSessionLogger(logger),
		pskreporter.WithRefreshRate(time.Duration(config.Reporter.RefreshRateSeconds)*time.Second),
		pskreporter.WithAutoRefresh(config.Reporter.AutoRefresh),
	)

	manager, err := mapview.NewManager(mapview.WithManagerLogger(logger))
	if err != nil {
		return fmt.Errorf("creating tile manager: %w", err)
	}

	opts := []mapview.EngineOption{mapview.WithEngineLogger(logger)}
	if config.Map.FontFile != "" {
		fontData, err := os.ReadFile(config.Map.FontFile)
		if err != nil {
			return fmt.Errorf("reading font file: %w", err)
		}
		opts = append(opts, mapview.WithFontData(fontData))
	}

	provider := config.Provider()
	engine, err := mapview.NewEngine(provider, manager, config.Map.Width, config.Map.Height, opts...)
	if err != nil {
		return fmt.Errorf("creating map engine: %w", err)
	}

	if config.Map.CenterGrid != "" {
		loc, err := maidenhead.GridToCoord(config.Map.CenterGrid)
		if err != nil {
			return fmt.Errorf("resolving center grid: %w", err)
		}
		engine.Viewport().SetZoom(config.Map.Zoom)
		engine.Viewport().SetCenterLocation(loc)
	}

	if !session.Submit(ctx, config.Query) {
		return errors.New("submitting query")
	}
	logger.Info("querying pskreporter", "callsign", config.Query.Callsign,
		"band", config.Query.Band, "mode", config.Query.Mode, "last", config.Query.Last)

	frame, err := settle(ctx, engine, session, manager, provider, logger)
	if err != nil {
		return err
	}

	return writeImage(config, frame)
}

// settle runs the frame loop until the reports have arrived and every
// visible tile has either loaded or failed, then returns the final
// frame.
func settle(ctx context.Context, engine *mapview.Engine, session *pskreporter.Session,
	manager *mapview.Manager, provider mapview.Provider, logger *slog.Logger) (*image.RGBA, error) {

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(settleTimeout)
	defer deadline.Stop()

	haveReports := false
	var frame *image.RGBA

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			logger.Warn("giving up waiting for tiles, writing what we have")
			return engine.Render(ctx), nil
		case <-ticker.C:
		}

		changed, err := session.Poll(ctx)
		if err != nil {
			if errors.Is(err, pskreporter.ErrRateLimited) {
				return nil, fmt.Errorf("pskreporter asked us to slow down, try again later: %w", err)
			}
			return nil, err
		}
		if changed {
			markers := session.Markers()
			logger.Info("received reception reports", "markers", len(markers))
			engine.SetMarkers(markers)
			haveReports = true
		}

		// drawing also kicks off the tile fetches
		frame = engine.Render(ctx)

		if haveReports && !session.Busy() && tilesSettled(ctx, engine, manager, provider) {
			return frame, nil
		}
	}
}

func tilesSettled(ctx context.Context, engine *mapview.Engine, manager *mapview.Manager, provider mapview.Provider) bool {
	for id := range engine.Viewport().VisibleTiles() {
		if manager.Get(ctx, provider, id).State == mapview.TilePending {
			return false
		}
	}
	return true
}

func writeImage(config *Config, img *image.RGBA) (err error) {
	f, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	switch config.Format {
	case ImageJPEG:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	return nil
}
