package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hamview/hamview/internal/storage"
)

// Command selects the logbook operation.
type Command string

const (
	CmdAdd    Command = "add"
	CmdList   Command = "list"
	CmdDelete Command = "delete"
	CmdLookup Command = "lookup"
)

// Config represents the logbook invocation.
type Config struct {
	DBPath  string
	Command Command

	// add
	Contact storage.Contact

	// list
	Sort   storage.SortColumn
	Desc   bool
	Offset int
	Limit  int
	Filter string

	// delete
	IDs []int64

	// lookup
	Callsign string

	// HamQTH credentials, from the environment
	HamQTHUsername string
	HamQTHPassword string
}

func NewConfigFromCLI() (*Config, error) {
	c := &Config{
		Sort:           storage.SortByTime,
		Limit:          50,
		HamQTHUsername: os.Getenv("HAMQTH_USERNAME"),
		HamQTHPassword: os.Getenv("HAMQTH_PASSWORD"),
	}

	var (
		doAdd, doList bool
		deleteIDs     string
		sortCol       string
		when          string
		freq          uint64
	)

	flag.StringVar(&c.DBPath, "db", "", "Path to the logbook database file")
	flag.BoolVar(&doAdd, "add", false, "Add a contact")
	flag.BoolVar(&doList, "list", false, "List contacts")
	flag.StringVar(&deleteIDs, "delete", "", "Comma-separated contact IDs to delete")
	flag.StringVar(&c.Callsign, "lookup", "", "Look up a callsign")

	flag.StringVar(&c.Contact.Callsign, "call", "", "Contact callsign")
	flag.StringVar(&c.Contact.Grid, "grid", "", "Contact grid locator")
	flag.StringVar(&when, "time", "", "Contact time, RFC 3339 (default now)")
	flag.Uint64Var(&freq, "freq", 0, "Frequency in Hz")
	flag.StringVar(&c.Contact.Mode, "mode", "", "Mode")
	flag.StringVar(&c.Contact.RSTSent, "rst-sent", "", "RST sent")
	flag.StringVar(&c.Contact.RSTRcvd, "rst-rcvd", "", "RST received")
	flag.StringVar(&c.Contact.Name, "name", "", "Operator name")
	flag.StringVar(&c.Contact.QTH, "qth", "", "Operator QTH")
	flag.StringVar(&c.Contact.Notes, "notes", "", "Notes")

	flag.StringVar(&sortCol, "sort", string(storage.SortByTime), "Sort column. [time, callsign, frequency, mode]")
	flag.BoolVar(&c.Desc, "desc", true, "Sort descending")
	flag.IntVar(&c.Offset, "offset", 0, "Rows to skip")
	flag.IntVar(&c.Limit, "limit", 50, "Maximum rows to return")
	flag.StringVar(&c.Filter, "filter", "", "Only list contacts with this callsign")
	flag.Parse()

	err := c.resolve(doAdd, doList, deleteIDs, sortCol, when, freq)
	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}

func (c *Config) resolve(doAdd, doList bool, deleteIDs, sortCol, when string, freq uint64) error {
	selected := 0
	if doAdd {
		c.Command = CmdAdd
		selected++
	}
	if doList {
		c.Command = CmdList
		selected++
	}
	if deleteIDs != "" {
		c.Command = CmdDelete
		selected++
	}
	if c.Callsign != "" {
		c.Command = CmdLookup
		selected++
	}
	if selected != 1 {
		return errors.New("exactly one of -add, -list, -delete or -lookup is required")
	}

	if c.Command != CmdLookup && c.DBPath == "" {
		return errors.New("db path is required")
	}

	switch c.Command {
	case CmdAdd:
		if c.Contact.Callsign == "" {
			return errors.New("contact callsign is required")
		}
		if freq == 0 {
			return errors.New("frequency is required")
		}
		c.Contact.Frequency = freq

		c.Contact.Time = time.Now().UTC()
		if when != "" {
			t, err := time.Parse(time.RFC3339, when)
			if err != nil {
				return fmt.Errorf("invalid contact time: %w", err)
			}
			c.Contact.Time = t.UTC()
		}

	case CmdList:
		c.Sort = storage.SortColumn(strings.ToLower(sortCol))
		if !c.Sort.Valid() {
			return fmt.Errorf("invalid sort column: %s", sortCol)
		}
		if c.Offset < 0 || c.Limit <= 0 {
			return errors.New("offset must be non-negative and limit positive")
		}

	case CmdDelete:
		for _, part := range strings.Split(deleteIDs, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid contact ID %q", part)
			}
			c.IDs = append(c.IDs, id)
		}
	}
	return nil
}
