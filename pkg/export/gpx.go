// Copyright (c) 2024 Sudo-Ivan
// Licensed under the MIT License

// Package export provides functions for converting GeoJSON data to various export formats.
package export

import (
	"fmt"
	"strings"

	"github.com/Sudo-Ivan/arcgis-query/pkg/convert"
)

// ConvertGeoJSONToGPX converts a GeoJSON FeatureCollection to a GPX
// string. Points become waypoints; lines and polygon boundaries become
// tracks.
func ConvertGeoJSONToGPX(geoJSON *convert.GeoJSON, layerName string) (string, error) {
	var waypoints strings.Builder
	var tracks strings.Builder

	for _, feature := range geoJSON.Features {
		if feature.Geometry == nil {
			continue
		}

		name := getFeatureName(feature)
		desc := formatProperties(feature.Properties, ", ")

		geometryType, _ := feature.Geometry["type"].(string)
		coordinates := feature.Geometry["coordinates"]

		switch geometryType {
		case "Point":
			coords, ok := coordinates.([]float64)
			if ok && len(coords) >= 2 {
				writeWaypoint(&waypoints, coords, name, desc)
			}
		case "MultiPoint":
			coords, ok := coordinates.([][]float64)
			if ok {
				for _, c := range coords {
					if len(c) >= 2 {
						writeWaypoint(&waypoints, c, name, desc)
					}
				}
			}
		case "LineString":
			coords, ok := coordinates.([][]float64)
			if ok && len(coords) > 0 {
				writeTrack(&tracks, coords, name, desc)
			}
		case "MultiLineString":
			lines, ok := coordinates.([][][]float64)
			if ok {
				for _, line := range lines {
					if len(line) > 0 {
						writeTrack(&tracks, line, name, desc)
					}
				}
			}
		case "Polygon":
			rings, ok := coordinates.([][][]float64)
			if ok && len(rings) > 0 {
				writeTrack(&tracks, rings[0], name+" (Boundary)", desc)
			}
		case "MultiPolygon":
			polys, ok := coordinates.([][][][]float64)
			if ok {
				for _, rings := range polys {
					if len(rings) > 0 && len(rings[0]) > 0 {
						writeTrack(&tracks, rings[0], name+" (Boundary)", desc)
					}
				}
			}
		}
	}

	gpxContent := waypoints.String() + tracks.String()

	gpx := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="arcgis-query"
    xmlns="http://www.topografix.com/GPX/1/1"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xsi:schemaLocation="http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd">
    <metadata>
        <name>%s</name>
    </metadata>%s
</gpx>`, escapeXML(layerName), gpxContent)

	return gpx, nil
}

func writeWaypoint(b *strings.Builder, coords []float64, name, desc string) {
	b.WriteString(fmt.Sprintf(`
    <wpt lat="%.10f" lon="%.10f">
        <name>%s</name>
        <desc>%s</desc>
    </wpt>`, coords[1], coords[0], escapeXML(name), escapeXML(desc)))
}

func writeTrack(b *strings.Builder, coords [][]float64, name, desc string) {
	b.WriteString(fmt.Sprintf(`
    <trk>
        <name>%s</name>
        <desc>%s</desc>
        <trkseg>`, escapeXML(name), escapeXML(desc)))
	for _, c := range coords {
		if len(c) >= 2 {
			b.WriteString(fmt.Sprintf(`<trkpt lat="%.10f" lon="%.10f"></trkpt>`, c[1], c[0]))
		}
	}
	b.WriteString(`
        </trkseg>
    </trk>`)
}
