package geo

import "fmt"

const (
	Kilometers DistanceUnit = "km"
	Miles      DistanceUnit = "mi"
)

// DistanceUnit is the unit used when presenting distances to the user.
type DistanceUnit string

// FromMeters converts a distance in metres to the unit of u.
// Unknown units are treated as kilometres.
func (u DistanceUnit) FromMeters(meters float64) float64 {
	switch u {
	case Miles:
		return meters * 0.0006213712
	default:
		return meters / 1000.0
	}
}

// Format renders a distance in metres as a human-readable string in the
// unit of u, e.g. "1609.34 km".
func (u DistanceUnit) Format(meters float64) string {
	unit := u
	if unit != Miles {
		unit = Kilometers
	}
	return fmt.Sprintf("%.2f %s", unit.FromMeters(meters), unit)
}
