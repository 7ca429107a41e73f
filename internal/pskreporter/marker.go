package pskreporter

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"

	"github.com/hamview/hamview/internal/geo"
	"github.com/hamview/hamview/internal/maidenhead"
	"github.com/hamview/hamview/internal/mapview"
)

// Role says which side of a reception report the queried station is
// on.
type Role int

const (
	// RoleReceiver anchors a query for signals received by the
	// station.
	RoleReceiver Role = iota

	// RoleTransmitter anchors a query for signals sent by the
	// station.
	RoleTransmitter
)

// Style holds the marker palette and the unit used for distances in
// detail panels. Markers keep a pointer to it, so edits apply on the
// next draw without rebuilding the marker list.
type Style struct {
	TxColor       color.NRGBA
	RxColor       color.NRGBA
	ReportTxColor color.NRGBA
	ReportRxColor color.NRGBA
	Unit          geo.DistanceUnit
}

// DefaultStyle returns the stock palette: blue stations, red reports.
func DefaultStyle() *Style {
	return &Style{
		TxColor:       color.NRGBA{R: 0x1e, G: 0x66, B: 0xd0, A: 0xff},
		RxColor:       color.NRGBA{R: 0x1e, G: 0x66, B: 0xd0, A: 0xff},
		ReportTxColor: color.NRGBA{R: 0xd0, G: 0x2a, B: 0x2a, A: 0xff},
		ReportRxColor: color.NRGBA{R: 0xd0, G: 0x2a, B: 0x2a, A: 0xff},
		Unit:          geo.Kilometers,
	}
}

// Station is the anchor marker for the queried callsign.
type Station struct {
	id       uint64
	loc      geo.Coord
	role     Role
	callsign string
	grid     string
	style    *Style
}

func (s *Station) ID() uint64             { return s.id }
func (s *Station) Location() geo.Coord    { return s.loc }
func (s *Station) LineTo() (geo.Coord, bool) { return geo.Coord{}, false }

func (s *Station) Color() color.NRGBA {
	if s.role == RoleTransmitter {
		return s.style.TxColor
	}
	return s.style.RxColor
}

func (s *Station) Details() []string {
	label := "Receiver"
	if s.role == RoleTransmitter {
		label = "Transmitter"
	}
	return []string{
		fmt.Sprintf("%s: %s", label, s.callsign),
		fmt.Sprintf("Grid: %s", s.grid),
	}
}

// Report is a reception-report marker. It sits at the station on the
// opposite side of the report from the anchor, and draws a line back
// to the anchor's end when hovered.
type Report struct {
	id     uint64
	loc    geo.Coord
	peer   geo.Coord
	role   Role // role of the station this marker sits at
	report ReceptionReport
	style  *Style
}

func (r *Report) ID() uint64                { return r.id }
func (r *Report) Location() geo.Coord       { return r.loc }
func (r *Report) LineTo() (geo.Coord, bool) { return r.peer, true }

func (r *Report) Color() color.NRGBA {
	if r.role == RoleTransmitter {
		return r.style.ReportTxColor
	}
	return r.style.ReportRxColor
}

func (r *Report) Details() []string {
	rep := r.report
	ts := time.Unix(int64(rep.FlowStartSeconds), 0).UTC()
	dist, bearing := geo.DistanceBearing(r.loc, r.peer)
	return []string{
		fmt.Sprintf("TX: %s (%s)", rep.SenderCallsign, rep.SenderLocator),
		fmt.Sprintf("RX: %s (%s)", rep.ReceiverCallsign, rep.ReceiverLocator),
		fmt.Sprintf("Frequency: %s", humanize.SI(float64(rep.Frequency), "Hz")),
		fmt.Sprintf("Mode: %s", rep.Mode),
		fmt.Sprintf("SNR: %d dB", rep.SNR),
		fmt.Sprintf("Time: %s", ts.Format("15:04:05 UTC 2006-01-02")),
		fmt.Sprintf("Distance: %s, bearing %.0f°", r.style.Unit.Format(dist), bearing),
	}
}

// BuildMarkers turns reception reports into markers. anchorRole is the
// queried station's side. The anchor marker is synthesized from the
// first report whose anchor-side locator parses, and is appended after
// the report markers so it draws on top. Reports with unparseable
// locators are dropped and counted, not fatal.
func BuildMarkers(reports []ReceptionReport, anchorRole Role, style *Style, logger *slog.Logger) ([]mapview.Marker, int) {
	if len(reports) == 0 {
		return nil, 0
	}

	markers := make([]mapview.Marker, 0, len(reports)+1)
	var anchor *Station
	dropped := 0

	for _, rep := range reports {
		anchorGrid, reportGrid := rep.ReceiverLocator, rep.SenderLocator
		anchorCall := rep.ReceiverCallsign
		if anchorRole == RoleTransmitter {
			anchorGrid, reportGrid = rep.SenderLocator, rep.ReceiverLocator
			anchorCall = rep.SenderCallsign
		}

		anchorLoc, anchorErr := maidenhead.GridToCoord(anchorGrid)
		if anchor == nil && anchorErr == nil {
			anchor = &Station{
				id:       randomID(),
				loc:      anchorLoc,
				role:     anchorRole,
				callsign: anchorCall,
				grid:     anchorGrid,
				style:    style,
			}
		}

		reportLoc, err := maidenhead.GridToCoord(reportGrid)
		if err != nil {
			logger.Warn("dropping report with unparseable locator",
				"locator", reportGrid, "sender", rep.SenderCallsign, "receiver", rep.ReceiverCallsign)
			dropped++
			continue
		}
		if anchorErr != nil {
			logger.Warn("dropping report with unparseable anchor locator",
				"locator", anchorGrid, "sender", rep.SenderCallsign, "receiver", rep.ReceiverCallsign)
			dropped++
			continue
		}

		reportRole := RoleTransmitter
		if anchorRole == RoleTransmitter {
			reportRole = RoleReceiver
		}
		markers = append(markers, &Report{
			id:     reportID(rep),
			loc:    reportLoc,
			peer:   anchorLoc,
			role:   reportRole,
			report: rep,
			style:  style,
		})
	}

	if anchor != nil {
		markers = append(markers, anchor)
	}
	return markers, dropped
}

// reportID derives a stable identifier from the fields that make a
// report unique. Hover and selection state is keyed by it, so it must
// not change across refreshes for the same report.
func reportID(r ReceptionReport) uint64 {
	d := xxhash.New()
	d.WriteString(r.SenderCallsign)
	d.Write([]byte{0})
	d.WriteString(r.ReceiverCallsign)
	d.Write([]byte{0})

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], r.Frequency)
	d.Write(buf[:])
	binary.BigEndian.PutUint32(buf[:4], uint32(r.SNR))
	d.Write(buf[:4])
	binary.BigEndian.PutUint64(buf[:], r.FlowStartSeconds)
	d.Write(buf[:])

	return d.Sum64()
}

// randomID returns a fresh identifier for markers that have no stable
// identity of their own.
func randomID() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint64(buf[:])
}
