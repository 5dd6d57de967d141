package layer

import (
	"github.com/go-spatial/geom"

	"github.com/Sudo-Ivan/arcgis-query/pkg/arcgis"
)

const (
	geometryPoint      = "esriGeometryPoint"
	geometryMultipoint = "esriGeometryMultipoint"
	geometryPolyline   = "esriGeometryPolyline"
	geometryPolygon    = "esriGeometryPolygon"
)

// decodeGeometry turns a raw geometry payload into the typed variant for
// the layer's declared geometry type. A nil geometry with a nil error
// means the payload is incomplete and the feature should be skipped.
func decodeGeometry(geometryType string, raw *arcgis.RawGeometry, mixed bool) (geom.Geometry, error) {
	switch geometryType {
	case geometryPoint:
		if raw.X == nil || raw.Y == nil {
			return nil, nil
		}
		return geom.Point{*raw.X, *raw.Y}, nil

	case geometryMultipoint:
		if len(raw.Points) == 0 {
			return nil, nil
		}
		mp := make(geom.MultiPoint, 0, len(raw.Points))
		for _, p := range raw.Points {
			if len(p) < 2 {
				continue
			}
			// Only the first two components; M and Z are dropped.
			mp = append(mp, [2]float64{p[0], p[1]})
		}
		if len(mp) == 0 {
			return nil, nil
		}
		return mp, nil

	case geometryPolyline:
		if len(raw.CurvePaths) > 0 {
			return nil, &ErrUnsupportedGeometry{Type: geometryType, Reason: "curve segments are not supported"}
		}
		if len(raw.Paths) == 0 {
			return nil, nil
		}
		lines := toTypedLines(raw.Paths)
		if mixed && len(lines) == 1 {
			return geom.LineString(lines[0]), nil
		}
		return geom.MultiLineString(lines), nil

	case geometryPolygon:
		if len(raw.CurveRings) > 0 {
			return nil, &ErrUnsupportedGeometry{Type: geometryType, Reason: "curve rings are not supported"}
		}
		if len(raw.Rings) == 0 {
			return nil, nil
		}
		groups := groupRings(toTypedLines(raw.Rings))
		if mixed && len(groups) == 1 {
			return geom.Polygon(groups[0]), nil
		}
		return geom.MultiPolygon(groups), nil

	default:
		return nil, &ErrUnsupportedGeometry{Type: geometryType, Reason: "unrecognized geometry type"}
	}
}

func toTypedLines(raw [][][]float64) [][][2]float64 {
	lines := make([][][2]float64, 0, len(raw))
	for _, part := range raw {
		line := make([][2]float64, 0, len(part))
		for _, p := range part {
			if len(p) < 2 {
				continue
			}
			line = append(line, [2]float64{p[0], p[1]})
		}
		lines = append(lines, line)
	}
	return lines
}

// signedArea is the shoelace area of a ring. Negative means clockwise,
// the winding the API uses for exterior rings.
func signedArea(ring [][2]float64) float64 {
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

func isExteriorRing(ring [][2]float64) bool {
	return signedArea(ring) < 0
}

func reverseRing(ring [][2]float64) {
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
}

// groupRings normalizes ring winding and partitions the ring sequence
// into polygon groups. When the first ring is not wound as an exterior,
// every ring of the feature is reversed uniformly. A new group starts
// before each exterior ring; hole rings attach to the open group.
func groupRings(rings [][][2]float64) [][][][2]float64 {
	if !isExteriorRing(rings[0]) {
		for _, ring := range rings {
			reverseRing(ring)
		}
	}

	var groups [][][][2]float64
	for _, ring := range rings {
		if isExteriorRing(ring) || len(groups) == 0 {
			groups = append(groups, [][][2]float64{ring})
			continue
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], ring)
	}
	return groups
}
