package layer

import "github.com/go-spatial/geom"

// Options configures how a layer is opened and how its features are
// projected and decoded.
type Options struct {
	// Where restricts the feature set with attribute expressions. Multiple
	// clauses are ANDed together.
	Where []string

	// FilterGeometry restricts the feature set to features intersecting a
	// polygon. Vertices are [lat, lon] pairs in WGS84; reprojection into
	// the service's projection is delegated to the service. Takes
	// precedence over Where.
	FilterGeometry geom.Geometry

	// Fields selects the output fields by name or alias. Empty means every
	// field that is not a geometry, date, blob, raster, or XML field.
	Fields []string

	// Launder lowercases output field names and collapses non-word runs
	// into underscores.
	Launder bool

	// TruncateLength caps the length of output field names. Zero disables
	// truncation.
	TruncateLength int

	// Decode translates coded values into their domain labels. Raw values
	// matching a null sentinel decode to nil regardless of this setting.
	Decode bool

	// Mixed yields a single-part geometry when a polyline has exactly one
	// path or a polygon decodes to exactly one ring group. When false the
	// Multi variant is always produced.
	Mixed bool
}

// DefaultOptions returns the default layer options.
func DefaultOptions() Options {
	return Options{
		Decode: true,
		Mixed:  true,
	}
}
