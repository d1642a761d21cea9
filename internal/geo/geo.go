package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cyborstrike/combatcore/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Recorded positions are stored as EPSG:3857 so SQLite, which has no spatial
// awareness, can still Scan them back out of WKB. Arena metres are laid out
// around the mission anchor: +X east, -Z north, Y is elevation.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// AnchorFromString parses "long,lat" into a GeoAnchor.
func AnchorFromString(coords string) (core.GeoAnchor, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return core.GeoAnchor{}, ErrInvalidCoordinates
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.GeoAnchor{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.GeoAnchor{}, ErrInvalidCoordinates
	}
	if long < -180 || long > 180 || lat < -85 || lat > 85 {
		return core.GeoAnchor{}, ErrInvalidCoordinates
	}
	return core.GeoAnchor{Latitude: lat, Longitude: long}, nil
}

// Coords3857From4326 creates a GPS point from a longitude and latitude
func Coords3857From4326(
	longitude float64,
	latitude float64,
) (
	point geom.Point,
	err error,
) {
	x, y := to3857(longitude, latitude)
	point, err = geom.NewPoint(
		geom.Coordinates{
			XY: geom.XY{X: x, Y: y},
			Z:  0,
		},
	)
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY), fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return point, nil
}

func to3857(longitude, latitude float64) (float64, float64) {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	return x, y
}

// Project places an arena position on the map around anchor and returns the
// point together with its elevation. Non-finite positions are rejected.
func Project(anchor core.GeoAnchor, pos core.Position3D) (geom.Point, float64, error) {
	point, err := geom.NewPoint(geom.Coordinates{XY: projectXY(anchor, pos)})
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY), 0, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return point, pos.Y, nil
}

// ShotTrace builds the line from a shot's origin to the point it reached. A
// shot that went nowhere gives the empty line.
func ShotTrace(anchor core.GeoAnchor, from, to core.Position3D) (geom.LineString, error) {
	a := projectXY(anchor, from)
	b := projectXY(anchor, to)
	if a == b {
		return geom.LineString{}, nil
	}
	seq := geom.NewSequence([]float64{a.X, a.Y, b.X, b.Y}, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return ls, nil
}

func projectXY(anchor core.GeoAnchor, pos core.Position3D) geom.XY {
	x, y := to3857(anchor.Longitude, anchor.Latitude)
	// web mercator stretches ground distance by 1/cos(lat)
	k := 1 / math.Cos(anchor.Latitude*math.Pi/180)
	return geom.XY{X: x + pos.X*k, Y: y - pos.Z*k}
}

// Unproject reverses Project.
func Unproject(anchor core.GeoAnchor, point geom.Point, elev float64) core.Position3D {
	xy, ok := point.XY()
	if !ok {
		return core.Position3D{Y: elev}
	}
	origin := projectXY(anchor, core.Position3D{})
	k := 1 / math.Cos(anchor.Latitude*math.Pi/180)
	return core.Position3D{X: (xy.X - origin.X) / k, Y: elev, Z: -(xy.Y - origin.Y) / k}
}
