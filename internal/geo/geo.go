// Package geo provides the geographic primitives shared by the codec,
// the marker model and the map engine: decimal-degree coordinates and
// geodesic distance/bearing on the WGS-84 ellipsoid.
package geo

import "math"

// WGS-84 ellipsoid parameters.
const (
	semiMajorAxis = 6378137.0         // a, metres
	flattening    = 1 / 298.257223563 // f
	semiMinorAxis = semiMajorAxis * (1 - flattening)

	convergence   = 1e-12
	maxIterations = 200
)

// Coord is a geographic coordinate in decimal degrees.
// Lat is in [-90, 90], Lon in [-180, 180].
type Coord struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate lies within the geographic range.
func (c Coord) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// DistanceBearing returns the geodesic distance in metres and the
// initial bearing in degrees [0, 360) from a to b, computed with
// Vincenty's inverse formula on the WGS-84 ellipsoid. Near-antipodal
// pairs for which the iteration does not converge fall back to the
// spherical great-circle solution.
func DistanceBearing(a, b Coord) (meters, bearing float64) {
	if a == b {
		return 0, 0
	}

	phi1, phi2 := radians(a.Lat), radians(b.Lat)
	l := radians(b.Lon - a.Lon)

	u1 := math.Atan((1 - flattening) * math.Tan(phi1))
	u2 := math.Atan((1 - flattening) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, sinAlpha, cos2Alpha, cos2SigmaM float64
	converged := false

	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)

		sinSigma = math.Sqrt(
			math.Pow(cosU2*sinLambda, 2) +
				math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0, 0 // coincident points
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		cos2Alpha = 1 - sinAlpha*sinAlpha
		if cos2Alpha == 0 {
			cos2SigmaM = 0 // equatorial line
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cos2Alpha
		}

		c := flattening / 16 * cos2Alpha * (4 + flattening*(4-3*cos2Alpha))
		prev := lambda
		lambda = l + (1-c)*flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < convergence {
			converged = true
			break
		}
	}

	if !converged {
		return sphericalDistanceBearing(a, b)
	}

	u2sq := cos2Alpha * (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) /
		(semiMinorAxis * semiMinorAxis)
	bigA := 1 + u2sq/16384*(4096+u2sq*(-768+u2sq*(320-175*u2sq)))
	bigB := u2sq / 1024 * (256 + u2sq*(-128+u2sq*(74-47*u2sq)))
	deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
		(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	meters = semiMinorAxis * bigA * (sigma - deltaSigma)

	sinLambda, cosLambda := math.Sincos(lambda)
	bearing = degrees(math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda))
	bearing = math.Mod(bearing+360, 360)
	return meters, bearing
}

// sphericalDistanceBearing is the haversine great-circle fallback used
// when Vincenty fails to converge.
func sphericalDistanceBearing(a, b Coord) (meters, bearing float64) {
	const earthRadius = 6371000.0

	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	meters = earthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing = math.Mod(degrees(math.Atan2(y, x))+360, 360)
	return meters, bearing
}
