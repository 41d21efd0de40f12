package coord

import "math"

// Srs enumerates the coordinate-system kinds the core is agnostic to but
// must tag vectors with when asking the host to convert between them.
type Srs int

const (
	Physical Srs = iota
	Navigation
	Public
	Search
	Custom1
	Custom2
)

func (s Srs) String() string {
	switch s {
	case Physical:
		return "physical"
	case Navigation:
		return "navigation"
	case Public:
		return "public"
	case Search:
		return "search"
	case Custom1:
		return "custom1"
	case Custom2:
		return "custom2"
	default:
		return "unknown"
	}
}

// Vec3 is a plain 3-component vector, used instead of a dedicated linear
// algebra type since the core only ever hands these across the Manipulator
// boundary (no vector math is performed on them locally).
type Vec3 struct{ X, Y, Z float64 }

// Manipulator is the external capability the core consults for coordinate
// conversion and geodesic math (spec §6 "Coordinate manipulator"). The core
// never implements SRS conversion itself; WGS84Manipulator below is a
// reference implementation used by tests and the demo harness.
type Manipulator interface {
	// Convert transforms a vector between two SRS kinds.
	Convert(v Vec3, from, to Srs) (Vec3, error)

	// NavGeodesicDirect computes the point `dist` meters from `pos` along
	// `azimuth` degrees (0 = north, measured clockwise), in Navigation SRS.
	NavGeodesicDirect(pos Vec3, azimuthDeg, dist float64) Vec3

	// NavGeodesicInverse computes the geodesic distance and forward/back
	// azimuths between two Navigation-SRS points.
	NavGeodesicInverse(a, b Vec3) (dist, azA, azB float64)
}

// earthMeanRadius is used by the reference Manipulator's spherical geodesic
// math (sufficient accuracy for the 100 m NED basis vectors built in
// camera construction; the host's real geodesic library is expected to use
// a proper ellipsoid).
const earthMeanRadius = 6371008.8

// WGS84Manipulator is a reference Manipulator good enough for tests and the
// demo harness: Navigation is geographic WGS84 (lon,lat,height), Physical is
// an earth-centered cartesian frame, and Public and Search mirror
// Navigation (identity conversions). Custom1/Custom2 fall back to the registered
// Projection set in this package (ForEPSG).
type WGS84Manipulator struct {
	// Custom1EPSG / Custom2EPSG select the Projection used for the
	// corresponding custom SRS kind when Convert is asked to cross them.
	Custom1EPSG, Custom2EPSG int
}

func (m *WGS84Manipulator) Convert(v Vec3, from, to Srs) (Vec3, error) {
	if from == to {
		return v, nil
	}
	nav, err := m.toNavigation(v, from)
	if err != nil {
		return Vec3{}, err
	}
	return m.fromNavigation(nav, to)
}

func (m *WGS84Manipulator) toNavigation(v Vec3, from Srs) (Vec3, error) {
	switch from {
	case Navigation, Public, Search:
		return v, nil
	case Physical:
		lon, lat, h := geocentricToGeodetic(v)
		return Vec3{lon, lat, h}, nil
	case Custom1:
		return m.customToNavigation(v, m.Custom1EPSG)
	case Custom2:
		return m.customToNavigation(v, m.Custom2EPSG)
	default:
		return Vec3{}, errUnsupportedSrs(from)
	}
}

func (m *WGS84Manipulator) fromNavigation(v Vec3, to Srs) (Vec3, error) {
	switch to {
	case Navigation, Public, Search:
		return v, nil
	case Physical:
		return geodeticToGeocentric(v), nil
	case Custom1:
		return m.navigationToCustom(v, m.Custom1EPSG)
	case Custom2:
		return m.navigationToCustom(v, m.Custom2EPSG)
	default:
		return Vec3{}, errUnsupportedSrs(to)
	}
}

func (m *WGS84Manipulator) customToNavigation(v Vec3, epsg int) (Vec3, error) {
	p := ForEPSG(epsg)
	if p == nil {
		return Vec3{}, errUnsupportedEPSG(epsg)
	}
	lon, lat := p.ToWGS84(v.X, v.Y)
	return Vec3{lon, lat, v.Z}, nil
}

func (m *WGS84Manipulator) navigationToCustom(v Vec3, epsg int) (Vec3, error) {
	p := ForEPSG(epsg)
	if p == nil {
		return Vec3{}, errUnsupportedEPSG(epsg)
	}
	x, y := p.FromWGS84(v.X, v.Y)
	return Vec3{x, y, v.Z}, nil
}

// NavGeodesicDirect implements the direct geodesic problem on a sphere of
// radius earthMeanRadius: sufficiently accurate for the short (~100 m)
// offsets camera construction uses to build a local NED basis.
func (m *WGS84Manipulator) NavGeodesicDirect(pos Vec3, azimuthDeg, dist float64) Vec3 {
	lat1 := pos.Y * math.Pi / 180
	lon1 := pos.X * math.Pi / 180
	az := azimuthDeg * math.Pi / 180
	delta := dist / earthMeanRadius

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(az))
	lon2 := lon1 + math.Atan2(
		math.Sin(az)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Vec3{wrap180(lon2 * 180 / math.Pi), lat2 * 180 / math.Pi, pos.Z}
}

// NavGeodesicInverse computes great-circle distance and bearings between
// two geographic points using the haversine/spherical-bearing formulas.
func (m *WGS84Manipulator) NavGeodesicInverse(a, b Vec3) (dist, azA, azB float64) {
	lat1 := a.Y * math.Pi / 180
	lon1 := a.X * math.Pi / 180
	lat2 := b.Y * math.Pi / 180
	lon2 := b.X * math.Pi / 180
	dLon := lon2 - lon1

	sinDLat := math.Sin((lat2 - lat1) / 2)
	sinDLon := math.Sin(dLon / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	dist = earthMeanRadius * c

	azA = math.Mod(math.Atan2(
		math.Sin(dLon)*math.Cos(lat2),
		math.Cos(lat1)*math.Sin(lat2)-math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon),
	)*180/math.Pi+360, 360)
	azB = math.Mod(math.Atan2(
		math.Sin(-dLon)*math.Cos(lat1),
		math.Cos(lat2)*math.Sin(lat1)-math.Sin(lat2)*math.Cos(lat1)*math.Cos(-dLon),
	)*180/math.Pi+360, 360)
	return
}

func wrap180(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// geodeticToGeocentric converts (lon,lat,height) degrees/meters to an
// earth-centered cartesian point on a sphere of earthMeanRadius (the
// reference Manipulator does not model ellipsoidal flattening).
func geodeticToGeocentric(v Vec3) Vec3 {
	lon := v.X * math.Pi / 180
	lat := v.Y * math.Pi / 180
	r := earthMeanRadius + v.Z
	return Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

func geocentricToGeodetic(v Vec3) (lon, lat, height float64) {
	r := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	lon = math.Atan2(v.Y, v.X) * 180 / math.Pi
	if r == 0 {
		return lon, 0, -earthMeanRadius
	}
	lat = math.Asin(v.Z/r) * 180 / math.Pi
	height = r - earthMeanRadius
	return
}
