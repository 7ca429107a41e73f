package storage

import "time"

// Contact is one logged QSO.
type Contact struct {
	ID        int64
	Callsign  string
	Grid      string
	Time      time.Time
	Frequency uint64 // Hz
	Mode      string
	RSTSent   string
	RSTRcvd   string
	Name      string
	QTH       string
	Notes     string
}

// SortColumn selects the ordering of contact listings.
type SortColumn string

const (
	SortByTime      SortColumn = "time"
	SortByCallsign  SortColumn = "callsign"
	SortByFrequency SortColumn = "frequency"
	SortByMode      SortColumn = "mode"
)

// Valid reports whether c is a known sort column.
func (c SortColumn) Valid() bool {
	switch c {
	case SortByTime, SortByCallsign, SortByFrequency, SortByMode:
		return true
	}
	return false
}

// column returns the SQL column name. The mapping is fixed so user
// input can never reach the query text.
func (c SortColumn) column() string {
	switch c {
	case SortByCallsign:
		return "callsign"
	case SortByFrequency:
		return "frequency"
	case SortByMode:
		return "mode"
	default:
		return "contact_time"
	}
}

// SortDirection is the ordering direction of contact listings.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

func (d SortDirection) keyword() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}
