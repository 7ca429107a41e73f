// Package app implements the logbook command line tool: contact log
// maintenance and callsign lookups over the shared contact store.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hamview/hamview/internal/callsign"
	"github.com/hamview/hamview/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if config.Command == CmdLookup {
		return runLookup(ctx, config, logger)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	switch config.Command {
	case CmdAdd:
		return runAdd(ctx, config, store, logger)
	case CmdList:
		return runList(ctx, config, store)
	case CmdDelete:
		return runDelete(ctx, config, store, logger)
	}
	return fmt.Errorf("unknown command %q", config.Command)
}

func runAdd(ctx context.Context, config *Config, store storage.Store, logger *slog.Logger) error {
	c := config.Contact

	// fill in operator details from a lookup when available
	if c.Grid == "" || c.Name == "" {
		info, err := newLookupClient(config, logger).Lookup(ctx, c.Callsign)
		switch {
		case err == nil:
			if c.Grid == "" {
				c.Grid = info.Grid
			}
			if c.Name == "" {
				c.Name = info.Name
			}
			if c.QTH == "" {
				c.QTH = info.QTH
			}
		case errors.Is(err, callsign.ErrNotFound):
			logger.Info("callsign not found in lookup services", "callsign", c.Callsign)
		default:
			logger.Warn("callsign lookup failed", "callsign", c.Callsign, "error", err)
		}
	}

	id, err := store.SaveContact(ctx, &c)
	if err != nil {
		return fmt.Errorf("saving contact: %w", err)
	}

	logger.Info("contact logged", "id", id, "callsign", c.Callsign,
		"frequency", humanize.SI(float64(c.Frequency), "Hz"), "mode", c.Mode)
	return nil
}

func runList(ctx context.Context, config *Config, store storage.Store) error {
	dir := storage.Ascending
	if config.Desc {
		dir = storage.Descending
	}

	opts := []storage.ListOption{
		storage.WithSort(config.Sort, dir),
		storage.WithRange(config.Offset, config.Limit),
	}
	if config.Filter != "" {
		opts = append(opts, storage.WithCallsign(config.Filter))
	}

	contacts, err := store.Contacts(ctx, opts...)
	if err != nil {
		return fmt.Errorf("listing contacts: %w", err)
	}

	total, err := store.CountContacts(ctx)
	if err != nil {
		return fmt.Errorf("counting contacts: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCALLSIGN\tGRID\tFREQUENCY\tMODE\tSENT\tRCVD\tNAME")
	for _, c := range contacts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Time.UTC().Format(time.DateTime), c.Callsign, c.Grid,
			humanize.SI(float64(c.Frequency), "Hz"), c.Mode, c.RSTSent, c.RSTRcvd, c.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("%d of %d contacts\n", len(contacts), total)
	return nil
}

func runDelete(ctx context.Context, config *Config, store storage.Store, logger *slog.Logger) error {
	if err := store.DeleteContacts(ctx, config.IDs...); err != nil {
		return fmt.Errorf("deleting contacts: %w", err)
	}
	logger.Info("contacts deleted", "count", len(config.IDs))
	return nil
}

func runLookup(ctx context.Context, config *Config, logger *slog.Logger) error {
	info, err := newLookupClient(config, logger).Lookup(ctx, config.Callsign)
	if errors.Is(err, callsign.ErrNotFound) {
		fmt.Printf("%s: not found\n", config.Callsign)
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up %s: %w", config.Callsign, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Callsign:\t%s\n", info.Callsign)
	fmt.Fprintf(w, "Name:\t%s\n", info.Name)
	fmt.Fprintf(w, "Grid:\t%s\n", info.Grid)
	fmt.Fprintf(w, "QTH:\t%s\n", info.QTH)
	fmt.Fprintf(w, "State:\t%s\n", info.State)
	fmt.Fprintf(w, "Country:\t%s\n", info.Country)
	return w.Flush()
}

func newLookupClient(config *Config, logger *slog.Logger) *callsign.Client {
	return callsign.NewClient(callsign.Config{
		HamQTHUsername: config.HamQTHUsername,
		HamQTHPassword: config.HamQTHPassword,
	}, callsign.WithLogger(logger))
}
