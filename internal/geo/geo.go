// Package geo parses waypoint positions from the host's coordinate strings,
// JSON point lists and WKT.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/OCAP2/objectives/pkg/core"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position3DFromString parses a "x,y" or "x,y,z" string, optionally wrapped in
// brackets, into a core.Position3D.
func Position3DFromString(coords string) (core.Position3D, error) {
	coords = strings.Trim(strings.TrimSpace(coords), "[]")
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 || len(coordsSplit) > 3 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	var vals [3]float64
	for i, c := range coordsSplit {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return core.Position3D{}, ErrInvalidCoordinates
		}
		vals[i] = v
	}
	return core.Position3D{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// ParseWaypoints parses one or more waypoint positions. Accepted forms:
//
//	x,y,z                       single point
//	[[x,y,z],...]               JSON point list
//	[[id,x,y,z],...]            JSON point list with owning entity ids
//	POINT Z (x y z)             WKT
//	MULTIPOINT Z ((x y z),...)  WKT
//
// owners is nil unless every point carried an entity id.
func ParseWaypoints(input string) (points []core.Position3D, owners []int, err error) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return nil, nil, ErrInvalidCoordinates
	case strings.HasPrefix(input, "[["):
		return parseJSONPoints(input)
	case isWKT(input):
		points, err = ParseWKT(input)
		return points, nil, err
	}
	p, err := Position3DFromString(input)
	if err != nil {
		return nil, nil, err
	}
	return []core.Position3D{p}, nil, nil
}

func parseJSONPoints(input string) ([]core.Position3D, []int, error) {
	var raw [][]float64
	if err := json.Unmarshal([]byte(input), &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse waypoint JSON: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil, ErrInvalidCoordinates
	}
	withOwners := len(raw[0]) == 4
	points := make([]core.Position3D, 0, len(raw))
	var owners []int
	for i, c := range raw {
		switch {
		case withOwners && len(c) == 4:
			owners = append(owners, int(c[0]))
			points = append(points, core.Position3D{X: c[1], Y: c[2], Z: c[3]})
		case !withOwners && len(c) == 3:
			points = append(points, core.Position3D{X: c[0], Y: c[1], Z: c[2]})
		case !withOwners && len(c) == 2:
			points = append(points, core.Position3D{X: c[0], Y: c[1]})
		default:
			return nil, nil, fmt.Errorf("waypoint %d: %w", i, ErrInvalidCoordinates)
		}
	}
	return points, owners, nil
}

func isWKT(s string) bool {
	u := strings.ToUpper(s)
	return strings.HasPrefix(u, "POINT") || strings.HasPrefix(u, "MULTIPOINT")
}

// ParseWKT reads a POINT or MULTIPOINT geometry. Missing Z values are 0.
func ParseWKT(wkt string) ([]core.Position3D, error) {
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse waypoint WKT: %w", err)
	}
	switch g.Type() {
	case geom.TypePoint:
		pt, ok := g.AsPoint()
		if !ok {
			return nil, ErrInvalidCoordinates
		}
		p, ok := fromPoint(pt)
		if !ok {
			return nil, ErrInvalidCoordinates
		}
		return []core.Position3D{p}, nil
	case geom.TypeMultiPoint:
		mp, ok := g.AsMultiPoint()
		if !ok {
			return nil, ErrInvalidCoordinates
		}
		out := make([]core.Position3D, 0, mp.NumPoints())
		for i := 0; i < mp.NumPoints(); i++ {
			if p, ok := fromPoint(mp.PointN(i)); ok {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil, ErrInvalidCoordinates
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported waypoint geometry %s", g.Type())
}

// ToPoint converts a position to an XYZ point. Non-finite values are rejected.
func ToPoint(p core.Position3D) (geom.Point, error) {
	pt, err := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Y},
		Z:    p.Z,
		Type: geom.DimXYZ,
	})
	if err != nil {
		return geom.Point{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return pt, nil
}

func fromPoint(pt geom.Point) (core.Position3D, bool) {
	c, ok := pt.Coordinates()
	if !ok {
		return core.Position3D{}, false
	}
	return core.Position3D{X: c.X, Y: c.Y, Z: c.Z}, true
}
