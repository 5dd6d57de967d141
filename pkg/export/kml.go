package export

import (
	"fmt"
	"strings"

	"github.com/Sudo-Ivan/arcgis-query/pkg/convert"
)

// ConvertGeoJSONToKML converts a GeoJSON FeatureCollection to a KML string.
func ConvertGeoJSONToKML(geoJSON *convert.GeoJSON, layerName string) (string, error) {
	var placemarks strings.Builder
	for _, feature := range geoJSON.Features {
		if feature.Geometry == nil {
			continue
		}

		name := getFeatureName(feature)
		description := formatProperties(feature.Properties)

		geometryString := kmlGeometry(feature.Geometry)
		if geometryString == "" {
			continue
		}

		placemarks.WriteString(fmt.Sprintf(`
        <Placemark>
            <name>%s</name>
            <description><![CDATA[%s]]></description>
            %s
        </Placemark>`, escapeXML(name), description, geometryString))
	}

	kml := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
    <Document>
        <name>%s</name>%s
    </Document>
</kml>`, escapeXML(layerName), placemarks.String())

	return kml, nil
}

// kmlGeometry renders one GeoJSON geometry object as KML. Multi
// geometries become a MultiGeometry of their parts.
func kmlGeometry(geometry map[string]interface{}) string {
	geometryType, _ := geometry["type"].(string)
	coordinates := geometry["coordinates"]

	switch geometryType {
	case "Point":
		coords, ok := coordinates.([]float64)
		if !ok || len(coords) < 2 {
			return ""
		}
		return fmt.Sprintf("<Point><coordinates>%.10f,%.10f,0</coordinates></Point>", coords[0], coords[1])

	case "MultiPoint":
		coords, ok := coordinates.([][]float64)
		if !ok || len(coords) == 0 {
			return ""
		}
		var parts strings.Builder
		for _, c := range coords {
			if len(c) >= 2 {
				parts.WriteString(fmt.Sprintf("<Point><coordinates>%.10f,%.10f,0</coordinates></Point>", c[0], c[1]))
			}
		}
		return fmt.Sprintf("<MultiGeometry>%s</MultiGeometry>", parts.String())

	case "LineString":
		coords, ok := coordinates.([][]float64)
		if !ok || len(coords) == 0 {
			return ""
		}
		return fmt.Sprintf("<LineString><coordinates>%s</coordinates></LineString>", kmlCoordList(coords))

	case "MultiLineString":
		lines, ok := coordinates.([][][]float64)
		if !ok || len(lines) == 0 {
			return ""
		}
		var parts strings.Builder
		for _, line := range lines {
			parts.WriteString(fmt.Sprintf("<LineString><coordinates>%s</coordinates></LineString>", kmlCoordList(line)))
		}
		return fmt.Sprintf("<MultiGeometry>%s</MultiGeometry>", parts.String())

	case "Polygon":
		rings, ok := coordinates.([][][]float64)
		if !ok || len(rings) == 0 {
			return ""
		}
		return kmlPolygon(rings)

	case "MultiPolygon":
		polys, ok := coordinates.([][][][]float64)
		if !ok || len(polys) == 0 {
			return ""
		}
		var parts strings.Builder
		for _, rings := range polys {
			if len(rings) > 0 {
				parts.WriteString(kmlPolygon(rings))
			}
		}
		return fmt.Sprintf("<MultiGeometry>%s</MultiGeometry>", parts.String())

	default:
		return ""
	}
}

func kmlPolygon(rings [][][]float64) string {
	var boundaries strings.Builder
	boundaries.WriteString(fmt.Sprintf("<outerBoundaryIs><LinearRing><coordinates>%s</coordinates></LinearRing></outerBoundaryIs>", kmlCoordList(rings[0])))
	for _, inner := range rings[1:] {
		boundaries.WriteString(fmt.Sprintf("<innerBoundaryIs><LinearRing><coordinates>%s</coordinates></LinearRing></innerBoundaryIs>", kmlCoordList(inner)))
	}
	return fmt.Sprintf("<Polygon>%s</Polygon>", boundaries.String())
}

func kmlCoordList(coords [][]float64) string {
	parts := make([]string, 0, len(coords))
	for _, c := range coords {
		if len(c) >= 2 {
			parts = append(parts, fmt.Sprintf("%.10f,%.10f,0", c[0], c[1]))
		}
	}
	return strings.Join(parts, " ")
}

// getFeatureName extracts a suitable name from a GeoJSON feature's properties.
func getFeatureName(feature convert.GeoJSONFeature) string {
	props := feature.Properties
	for _, key := range []string{"name", "Name", "NAME", "title", "Title", "TITLE", "OBJECTID", "objectid", "FID", "fid"} {
		if val, ok := props[key]; ok && val != nil {
			return fmt.Sprintf("%v", val)
		}
	}
	return "Feature"
}

// formatProperties formats a map of properties into a string.
func formatProperties(props map[string]interface{}, separator ...string) string {
	sep := "<br>"
	if len(separator) > 0 {
		sep = separator[0]
	}
	var parts []string
	for k, v := range props {
		if k == "geometry" {
			continue
		}
		parts = append(parts, fmt.Sprintf("<strong>%s</strong>: %v", escapeXML(k), escapeXML(fmt.Sprintf("%v", v))))
	}
	return strings.Join(parts, sep)
}

// escapeXML escapes XML special characters in a string.
func escapeXML(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
		"/", "&#x2F;",
	).Replace(s)
}
