package convert

// GeoJSON represents a GeoJSON FeatureCollection.
type GeoJSON struct {
	Type     string           `json:"type"`
	CRS      *CRS             `json:"crs,omitempty"`
	Name     string           `json:"name,omitempty"`
	Features []GeoJSONFeature `json:"features"`
}

// GeoJSONFeature represents a GeoJSON Feature.
type GeoJSONFeature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   map[string]interface{} `json:"geometry"`
}

// CRS represents a Coordinate Reference System.
type CRS struct {
	Type       string   `json:"type"`
	Properties CRSProps `json:"properties"`
}

// CRSProps represents Coordinate Reference System properties.
type CRSProps struct {
	Name string `json:"name"`
}
