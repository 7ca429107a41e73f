package geo

import (
	"math"
	"testing"
)

func TestDistanceBearing(t *testing.T) {
	tests := []struct {
		name        string
		from, to    Coord
		wantMeters  float64
		wantBearing float64
		tolMeters   float64
		tolBearing  float64
	}{
		{
			// LINZ reference Vincenty solution (Flinders Peak -> Buninyong)
			name:        "flinders peak to buninyong",
			from:        Coord{Lat: -37.95103342, Lon: 144.42486789},
			to:          Coord{Lat: -37.65282114, Lon: 143.92649553},
			wantMeters:  54972.27,
			wantBearing: 306.868,
			tolMeters:   0.05,
			tolBearing:  0.01,
		},
		{
			name:        "new york to london",
			from:        Coord{Lat: 40.7128, Lon: -74.0060},
			to:          Coord{Lat: 51.5072, Lon: -0.1275},
			wantMeters:  5_570_200,
			wantBearing: 51.2,
			tolMeters:   5_000,
			tolBearing:  0.5,
		},
		{
			name:        "due east on equator",
			from:        Coord{Lat: 0, Lon: 0},
			to:          Coord{Lat: 0, Lon: 1},
			wantMeters:  111_319.49,
			wantBearing: 90,
			tolMeters:   1,
			tolBearing:  0.01,
		},
		{
			name:        "due north",
			from:        Coord{Lat: 10, Lon: 20},
			to:          Coord{Lat: 11, Lon: 20},
			wantMeters:  110_600,
			wantBearing: 0,
			tolMeters:   200,
			tolBearing:  0.01,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meters, bearing := DistanceBearing(tc.from, tc.to)
			if math.Abs(meters-tc.wantMeters) > tc.tolMeters {
				t.Errorf("distance = %.2f m, want %.2f ± %.2f", meters, tc.wantMeters, tc.tolMeters)
			}
			diff := math.Abs(bearing - tc.wantBearing)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > tc.tolBearing {
				t.Errorf("bearing = %.3f°, want %.3f ± %.3f", bearing, tc.wantBearing, tc.tolBearing)
			}
		})
	}
}

func TestDistanceBearingIdentical(t *testing.T) {
	c := Coord{Lat: 41.7, Lon: -72.7}
	meters, bearing := DistanceBearing(c, c)
	if meters != 0 || bearing != 0 {
		t.Errorf("identical points: got (%f, %f), want (0, 0)", meters, bearing)
	}
}

func TestDistanceBearingAntipodal(t *testing.T) {
	// Vincenty does not converge here; the spherical fallback must
	// still produce roughly half the Earth's circumference.
	meters, _ := DistanceBearing(Coord{Lat: 0, Lon: 0}, Coord{Lat: 0.5, Lon: 179.7})
	if meters < 19_000_000 || meters > 20_100_000 {
		t.Errorf("antipodal distance = %.0f m, want ~20,000 km", meters)
	}
}

func TestDistanceUnit(t *testing.T) {
	if got := Kilometers.FromMeters(1500); got != 1.5 {
		t.Errorf("Kilometers.FromMeters(1500) = %f, want 1.5", got)
	}
	if got := Miles.FromMeters(1609.344); math.Abs(got-1.0) > 1e-3 {
		t.Errorf("Miles.FromMeters(1609.344) = %f, want ~1", got)
	}
	if got := DistanceUnit("furlongs").FromMeters(2000); got != 2 {
		t.Errorf("unknown unit should fall back to km, got %f", got)
	}
	if got := Miles.Format(1609.344); got != "1.00 mi" {
		t.Errorf("Miles.Format = %q, want %q", got, "1.00 mi")
	}
}

func TestCoordValid(t *testing.T) {
	valid := []Coord{{0, 0}, {-90, -180}, {90, 180}, {41.7, -72.7}}
	for _, c := range valid {
		if !c.Valid() {
			t.Errorf("Coord %v should be valid", c)
		}
	}
	invalid := []Coord{{91, 0}, {-91, 0}, {0, 181}, {0, -181}}
	for _, c := range invalid {
		if c.Valid() {
			t.Errorf("Coord %v should be invalid", c)
		}
	}
}
