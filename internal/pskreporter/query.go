package pskreporter

import (
	"fmt"
	"time"
)

// Band is a band filter for reception-report queries. BandAll omits
// the frequency-range parameter.
type Band string

const (
	BandAll   Band = "All"
	Band2200m Band = "2200m"
	Band630m  Band = "630m"
	Band160m  Band = "160m"
	Band80m   Band = "80m"
	Band60m   Band = "60m"
	Band40m   Band = "40m"
	Band30m   Band = "30m"
	Band20m   Band = "20m"
	Band17m   Band = "17m"
	Band15m   Band = "15m"
	Band12m   Band = "12m"
	Band10m   Band = "10m"
	Band6m    Band = "6m"
	Band2m    Band = "2m"
	Band125cm Band = "1.25m"
	Band70cm  Band = "70cm"
	Band33cm  Band = "33cm"
	Band23cm  Band = "23cm"
	Band2G4   Band = "2.4GHz"
	Band3G4   Band = "3.4GHz"
	Band5G8   Band = "5.8GHz"
	Band10G   Band = "10GHz"
	Band24G   Band = "24GHz"
	Band47G   Band = "47GHz"
	Band76G   Band = "76GHz"
)

// bandRanges maps each band to its frequency range in Hz. Bands
// without an entry (BandAll) have no range and omit the frange
// query parameter.
var bandRanges = map[Band][2]uint64{
	Band2200m: {135_700, 137_800},
	Band630m:  {472_000, 479_000},
	Band160m:  {1_800_000, 2_000_000},
	Band80m:   {3_500_000, 4_000_000},
	Band60m:   {5_330_500, 5_407_800},
	Band40m:   {7_000_000, 7_300_000},
	Band30m:   {10_100_000, 10_150_000},
	Band20m:   {14_000_000, 14_350_000},
	Band17m:   {18_068_000, 18_168_000},
	Band15m:   {21_000_000, 21_450_000},
	Band12m:   {24_890_000, 24_990_000},
	Band10m:   {28_000_000, 29_700_000},
	Band6m:    {50_000_000, 54_000_000},
	Band2m:    {144_000_000, 148_000_000},
	Band125cm: {219_000_000, 225_000_000},
	Band70cm:  {420_000_000, 450_000_000},
	Band33cm:  {902_000_000, 928_000_000},
	Band23cm:  {1_240_000_000, 1_300_000_000},
	Band2G4:   {2_300_000_000, 2_450_000_000},
	Band3G4:   {3_300_000_000, 3_500_000_000},
	Band5G8:   {5_650_000_000, 5_925_000_000},
	Band10G:   {10_000_000_000, 10_500_000_000},
	Band24G:   {24_000_000_000, 24_250_000_000},
	Band47G:   {47_000_000_000, 47_200_000_000},
	Band76G:   {76_000_000_000, 81_000_000_000},
}

// Bands lists every band in display order.
func Bands() []Band {
	return []Band{
		BandAll, Band2200m, Band630m, Band160m, Band80m, Band60m,
		Band40m, Band30m, Band20m, Band17m, Band15m, Band12m, Band10m,
		Band6m, Band2m, Band125cm, Band70cm, Band33cm, Band23cm,
		Band2G4, Band3G4, Band5G8, Band10G, Band24G, Band47G, Band76G,
	}
}

// FreqRange returns the band's frequency range in Hz. ok is false for
// BandAll, which matches every frequency.
func (b Band) FreqRange() (min, max uint64, ok bool) {
	r, ok := bandRanges[b]
	return r[0], r[1], ok
}

// Valid reports whether b is a known band.
func (b Band) Valid() bool {
	if b == BandAll {
		return true
	}
	_, ok := bandRanges[b]
	return ok
}

// Mode is a mode filter for reception-report queries. ModeAll omits
// the mode parameter.
type Mode string

const (
	ModeAll   Mode = "All"
	ModeFT8   Mode = "FT8"
	ModeFT4   Mode = "FT4"
	ModeJS8   Mode = "JS8"
	ModePSK31 Mode = "PSK31"
	ModeWSPR  Mode = "WSPR"
	ModeCW    Mode = "CW"
)

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeAll, ModeFT8, ModeFT4, ModeJS8, ModePSK31, ModeWSPR, ModeCW}
}

// Param returns the wire value for the mode parameter. ok is false for
// ModeAll, which omits the parameter.
func (m Mode) Param() (string, bool) {
	if m == ModeAll {
		return "", false
	}
	return string(m), true
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, known := range Modes() {
		if m == known {
			return true
		}
	}
	return false
}

// Last is the report-age filter: only reports younger than this are
// requested.
type Last string

const (
	Last15Minutes Last = "15m"
	Last30Minutes Last = "30m"
	Last1Hour     Last = "1h"
	Last2Hours    Last = "2h"
	Last3Hours    Last = "3h"
	Last6Hours    Last = "6h"
	Last12Hours   Last = "12h"
	Last24Hours   Last = "24h"
)

var lastDurations = map[Last]time.Duration{
	Last15Minutes: 15 * time.Minute,
	Last30Minutes: 30 * time.Minute,
	Last1Hour:     time.Hour,
	Last2Hours:    2 * time.Hour,
	Last3Hours:    3 * time.Hour,
	Last6Hours:    6 * time.Hour,
	Last12Hours:   12 * time.Hour,
	Last24Hours:   24 * time.Hour,
}

// Lasts lists every report-age option in display order.
func Lasts() []Last {
	return []Last{
		Last15Minutes, Last30Minutes, Last1Hour, Last2Hours,
		Last3Hours, Last6Hours, Last12Hours, Last24Hours,
	}
}

// Duration returns the age limit as a duration. Unknown values fall
// back to the shortest window.
func (l Last) Duration() time.Duration {
	if d, ok := lastDurations[l]; ok {
		return d
	}
	return 15 * time.Minute
}

// Valid reports whether l is a known report-age option.
func (l Last) Valid() bool {
	_, ok := lastDurations[l]
	return ok
}

// QueryOptions describes one reception-report query. The enclosing
// application persists these between runs, hence the serialization
// tags.
type QueryOptions struct {
	// Callsign of the station to query for.
	Callsign string `json:"callsign" yaml:"callsign"`
	// SentBy selects reports of signals sent by Callsign instead of
	// signals received by it.
	SentBy bool `json:"sentBy" yaml:"sentBy"`
	Band   Band `json:"band" yaml:"band"`
	Mode   Mode `json:"mode" yaml:"mode"`
	Last   Last `json:"last" yaml:"last"`
}

// Validate checks the options against the closed enumerations.
func (o QueryOptions) Validate() error {
	if o.Callsign == "" {
		return fmt.Errorf("callsign is required")
	}
	if !o.Band.Valid() {
		return fmt.Errorf("unknown band %q", o.Band)
	}
	if !o.Mode.Valid() {
		return fmt.Errorf("unknown mode %q", o.Mode)
	}
	if !o.Last.Valid() {
		return fmt.Errorf("unknown report age %q", o.Last)
	}
	return nil
}

// DefaultQueryOptions returns the options selected when the tab is
// first opened.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{Band: BandAll, Mode: ModeAll, Last: Last15Minutes}
}
