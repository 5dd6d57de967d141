package arcgis

import "encoding/json"

// APIError is an error payload returned by the ArcGIS REST API inside an
// HTTP 200 response body.
type APIError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return e.Message + ": " + e.Details[0]
	}
	return e.Message
}

// SpatialReference identifies the projection of a service or geometry.
type SpatialReference struct {
	WKID       int    `json:"wkid"`
	LatestWKID int    `json:"latestWkid"`
	WKT        string `json:"wkt"`
}

// ServiceMetadata represents the root metadata of a Feature Server or
// Map Server, including its layer and table catalog.
type ServiceMetadata struct {
	CurrentVersion   json.Number       `json:"currentVersion"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Layers           []LayerRef        `json:"layers"`
	Tables           []LayerRef        `json:"tables"`
	SpatialReference *SpatialReference `json:"spatialReference"`
}

// LayerRef is a catalog entry for a layer or table exposed by a service.
type LayerRef struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	GeometryType string `json:"geometryType"`
}

// LayerMetadata is the full description of a single layer.
type LayerMetadata struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	Description    string        `json:"description"`
	GeometryType   string        `json:"geometryType"`
	Capabilities   string        `json:"capabilities"`
	MaxRecordCount int           `json:"maxRecordCount"`
	ObjectIDField  string        `json:"objectIdField"`
	TypeIDField    string        `json:"typeIdField"`
	Fields         []Field       `json:"fields"`
	Types          []FeatureType `json:"types"`
}

// Field describes one attribute column of a layer.
type Field struct {
	Name   string  `json:"name"`
	Alias  string  `json:"alias"`
	Type   string  `json:"type"`
	Length int     `json:"length"`
	Domain *Domain `json:"domain"`
}

// Domain is a field-level value domain. Only codedValue domains carry a
// code-to-label table; range and inherited domains are ignored.
type Domain struct {
	Type        string       `json:"type"`
	Name        string       `json:"name"`
	CodedValues []CodedValue `json:"codedValues"`
}

// CodedValue maps a stored code to its human-readable label. Codes may be
// numbers or strings depending on the field type.
type CodedValue struct {
	Name string      `json:"name"`
	Code interface{} `json:"code"`
}

// FeatureType is a layer subtype: a discriminator value, its label, and
// the per-field domains that apply while the discriminator holds that value.
type FeatureType struct {
	ID      interface{}        `json:"id"`
	Name    string             `json:"name"`
	Domains map[string]*Domain `json:"domains"`
}

// IDQueryResponse is the response to a returnIdsOnly query.
type IDQueryResponse struct {
	ObjectIDFieldName string  `json:"objectIdFieldName"`
	ObjectIDs         []int64 `json:"objectIds"`
}

// QueryResponse is the response to a feature query.
type QueryResponse struct {
	Features              []RawFeature `json:"features"`
	ExceededTransferLimit bool         `json:"exceededTransferLimit"`
}

// RawFeature is a feature as returned by the service, before attribute
// decoding and geometry typing.
type RawFeature struct {
	Attributes map[string]interface{} `json:"attributes"`
	Geometry   *RawGeometry           `json:"geometry"`
}

// RawGeometry holds every geometry encoding the API can return. Which
// members are populated depends on the layer's geometry type.
type RawGeometry struct {
	X          *float64        `json:"x"`
	Y          *float64        `json:"y"`
	Points     [][]float64     `json:"points"`
	Paths      [][][]float64   `json:"paths"`
	Rings      [][][]float64   `json:"rings"`
	CurvePaths json.RawMessage `json:"curvePaths"`
	CurveRings json.RawMessage `json:"curveRings"`
}

// ItemData represents metadata for an ArcGIS Online item.
type ItemData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Type  string `json:"type"`
	URL   string `json:"url"`
}
