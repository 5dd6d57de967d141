// Copyright (c) 2025 Sudo-Ivan
// Licensed under the MIT License

// Package convert turns decoded feature collections into interchange
// formats: GeoJSON, CSV, and plain text.
package convert

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/pkg/errors"

	"github.com/Sudo-Ivan/arcgis-query/pkg/layer"
	"github.com/Sudo-Ivan/arcgis-query/pkg/utils"
)

// ToGeoJSON converts a feature collection to a GeoJSON FeatureCollection.
// The collection's projection, when known, is carried as a named CRS.
func ToGeoJSON(fc *layer.FeatureCollection) (*GeoJSON, error) {
	out := &GeoJSON{
		Type:     "FeatureCollection",
		Name:     fc.Name,
		Features: []GeoJSONFeature{},
	}
	if fc.Projection != "" {
		out.CRS = &CRS{
			Type:       "name",
			Properties: CRSProps{Name: fc.Projection},
		}
	}

	for _, f := range fc.Features {
		geometry, err := GeometryToGeoJSON(f.Geometry)
		if err != nil {
			return nil, err
		}
		out.Features = append(out.Features, GeoJSONFeature{
			Type:       "Feature",
			Properties: f.Attributes,
			Geometry:   geometry,
		})
	}

	return out, nil
}

// GeometryToGeoJSON converts a typed geometry to a GeoJSON geometry object.
func GeometryToGeoJSON(g geom.Geometry) (map[string]interface{}, error) {
	switch gg := g.(type) {
	case geom.Point:
		return geoJSONGeometry("Point", []float64{gg[0], gg[1]}), nil
	case geom.MultiPoint:
		return geoJSONGeometry("MultiPoint", coordsOf(gg)), nil
	case geom.LineString:
		return geoJSONGeometry("LineString", coordsOf(gg)), nil
	case geom.MultiLineString:
		return geoJSONGeometry("MultiLineString", lineCoordsOf(gg)), nil
	case geom.Polygon:
		return geoJSONGeometry("Polygon", lineCoordsOf(gg)), nil
	case geom.MultiPolygon:
		rings := make([][][][]float64, len(gg))
		for i, poly := range gg {
			rings[i] = lineCoordsOf(poly)
		}
		return geoJSONGeometry("MultiPolygon", rings), nil
	default:
		return nil, errors.Errorf("cannot convert geometry %T to GeoJSON", g)
	}
}

func geoJSONGeometry(geometryType string, coordinates interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":        geometryType,
		"coordinates": coordinates,
	}
}

func coordsOf(points [][2]float64) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = []float64{p[0], p[1]}
	}
	return out
}

func lineCoordsOf(lines [][][2]float64) [][][]float64 {
	out := make([][][]float64, len(lines))
	for i, line := range lines {
		out[i] = coordsOf(line)
	}
	return out
}

// FeaturesToCSV converts a feature collection to a CSV string. Columns
// are the sorted union of attribute names, plus a trailing WKT geometry
// column.
func FeaturesToCSV(fc *layer.FeatureCollection) (string, error) {
	if len(fc.Features) == 0 {
		return "", nil
	}

	headerSet := make(map[string]bool)
	for _, f := range fc.Features {
		for k := range f.Attributes {
			headerSet[k] = true
		}
	}

	var headers []string
	for k := range headerSet {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	headers = append(headers, "WKT_Geometry")

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return "", errors.Wrap(err, "write CSV header")
	}

	for _, f := range fc.Features {
		row := make([]string, len(headers))
		for i, header := range headers {
			if header == "WKT_Geometry" {
				row[i] = utils.GeometryToWKT(f.Geometry)
				continue
			}
			if val, ok := f.Attributes[header]; ok && val != nil {
				row[i] = fmt.Sprintf("%v", val)
			}
		}
		if err := w.Write(row); err != nil {
			return "", errors.Wrap(err, "write CSV row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "flush CSV")
	}

	return buf.String(), nil
}

// FeaturesToText converts a feature collection to a human-readable text
// listing with attributes in sorted order and WKT geometry.
func FeaturesToText(fc *layer.FeatureCollection) (string, error) {
	if len(fc.Features) == 0 {
		return "", errors.New("no features to convert to text")
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("Layer: %s\n", fc.Name))
	output.WriteString(fmt.Sprintf("Total Features: %d\n", len(fc.Features)))
	output.WriteString("========================================\n\n")

	for i, f := range fc.Features {
		output.WriteString(fmt.Sprintf("--- Feature %d ---\n", i+1))

		var keys []string
		for k := range f.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		output.WriteString("Attributes:\n")
		for _, k := range keys {
			output.WriteString(fmt.Sprintf("  %s: %v\n", k, f.Attributes[k]))
		}

		output.WriteString("Geometry (WKT):\n")
		wkt := utils.GeometryToWKT(f.Geometry)
		if wkt == "" {
			output.WriteString("  <No Geometry>\n")
		} else {
			output.WriteString(fmt.Sprintf("  %s\n", wkt))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}
