package layer

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/pkg/errors"

	"github.com/Sudo-Ivan/arcgis-query/pkg/arcgis"
)

const (
	spatialRelIntersects = "esriSpatialRelIntersects"
	fieldTypeOID         = "esriFieldTypeOID"
)

// objectIDField returns the layer's object-id field name, or "" when the
// schema declares none.
func objectIDField(meta *arcgis.LayerMetadata) string {
	if meta.ObjectIDField != "" {
		return meta.ObjectIDField
	}
	for _, f := range meta.Fields {
		if f.Type == fieldTypeOID {
			return f.Name
		}
	}
	return ""
}

// buildFilter constructs the query parameters selecting the matching
// feature set. Priority: polygon intersection, then attribute clauses,
// then an existential default.
func buildFilter(meta *arcgis.LayerMetadata, opts Options) (url.Values, error) {
	params := url.Values{}

	switch {
	case opts.FilterGeometry != nil:
		poly, ok := opts.FilterGeometry.(geom.Polygon)
		if !ok {
			return nil, &ErrGeometryType{Type: geometryTypeName(opts.FilterGeometry)}
		}
		buf, err := json.Marshal(map[string]interface{}{
			"rings": reverseRingOrder(poly),
		})
		if err != nil {
			return nil, errors.Wrap(err, "serialize filter geometry")
		}
		params.Set("geometry", string(buf))
		params.Set("geometryType", geometryPolygon)
		params.Set("spatialRel", spatialRelIntersects)
		params.Set("inSR", "4326")

	case len(opts.Where) == 1:
		params.Set("where", opts.Where[0])

	case len(opts.Where) > 1:
		clauses := make([]string, len(opts.Where))
		for i, w := range opts.Where {
			clauses[i] = "(" + w + ")"
		}
		params.Set("where", strings.Join(clauses, " AND "))

	default:
		if oid := objectIDField(meta); oid != "" {
			params.Set("where", oid+" IS NOT NULL")
		} else {
			params.Set("where", "1=1")
		}
	}

	return params, nil
}

// reverseRingOrder flips each [lat, lon] vertex into the [x, y] ordering
// the service expects.
func reverseRingOrder(poly geom.Polygon) [][][]float64 {
	rings := make([][][]float64, len(poly))
	for i, ring := range poly {
		out := make([][]float64, len(ring))
		for j, pt := range ring {
			out[j] = []float64{pt[1], pt[0]}
		}
		rings[i] = out
	}
	return rings
}

func geometryTypeName(g geom.Geometry) string {
	switch g.(type) {
	case geom.Point:
		return "point"
	case geom.MultiPoint:
		return "multipoint"
	case geom.LineString:
		return "linestring"
	case geom.MultiLineString:
		return "multilinestring"
	case geom.MultiPolygon:
		return "multipolygon"
	default:
		return "unknown geometry"
	}
}

// fetchObjectIDs captures the ordered identifier snapshot for the filter.
func fetchObjectIDs(svc Service, layerPath string, filter url.Values) ([]int64, error) {
	params := url.Values{}
	for k, vs := range filter {
		params[k] = vs
	}
	params.Set("returnIdsOnly", "true")

	var resp arcgis.IDQueryResponse
	if err := svc.GetJSON(layerPath+"/query", params, &resp); err != nil {
		return nil, err
	}
	return resp.ObjectIDs, nil
}
