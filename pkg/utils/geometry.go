package utils

import (
	"fmt"
	"strings"

	"github.com/go-spatial/geom"
)

// GeometryToWKT converts a typed geometry to a WKT string. Returns an
// empty string for nil or unrecognized geometry.
func GeometryToWKT(g geom.Geometry) string {
	switch gg := g.(type) {
	case geom.Point:
		return fmt.Sprintf("POINT (%s)", wktCoord(gg))
	case geom.MultiPoint:
		if len(gg) == 0 {
			return ""
		}
		points := make([]string, len(gg))
		for i, p := range gg {
			points[i] = fmt.Sprintf("(%s)", wktCoord(p))
		}
		return fmt.Sprintf("MULTIPOINT (%s)", strings.Join(points, ", "))
	case geom.LineString:
		if len(gg) == 0 {
			return ""
		}
		return fmt.Sprintf("LINESTRING (%s)", wktLine(gg))
	case geom.MultiLineString:
		if len(gg) == 0 {
			return ""
		}
		lines := make([]string, len(gg))
		for i, line := range gg {
			lines[i] = fmt.Sprintf("(%s)", wktLine(line))
		}
		return fmt.Sprintf("MULTILINESTRING (%s)", strings.Join(lines, ", "))
	case geom.Polygon:
		if len(gg) == 0 {
			return ""
		}
		return fmt.Sprintf("POLYGON (%s)", wktRings(gg))
	case geom.MultiPolygon:
		if len(gg) == 0 {
			return ""
		}
		polys := make([]string, len(gg))
		for i, poly := range gg {
			polys[i] = fmt.Sprintf("(%s)", wktRings(poly))
		}
		return fmt.Sprintf("MULTIPOLYGON (%s)", strings.Join(polys, ", "))
	default:
		return ""
	}
}

func wktCoord(p [2]float64) string {
	return fmt.Sprintf("%.10f %.10f", p[0], p[1])
}

func wktLine(line [][2]float64) string {
	points := make([]string, len(line))
	for i, p := range line {
		points[i] = wktCoord(p)
	}
	return strings.Join(points, ", ")
}

// wktRings closes each ring if needed, per WKT requirements.
func wktRings(rings [][][2]float64) string {
	out := make([]string, 0, len(rings))
	for _, ring := range rings {
		if len(ring) == 0 {
			continue
		}
		points := make([]string, len(ring))
		for i, p := range ring {
			points[i] = wktCoord(p)
		}
		if points[0] != points[len(points)-1] {
			points = append(points, points[0])
		}
		out = append(out, fmt.Sprintf("(%s)", strings.Join(points, ", ")))
	}
	return strings.Join(out, ", ")
}
