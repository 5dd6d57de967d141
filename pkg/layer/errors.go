package layer

import "fmt"

// ErrLayerNotFound indicates no catalog entry matched the requested layer
// name or id.
type ErrLayerNotFound struct {
	Layer string
}

func (e *ErrLayerNotFound) Error() string {
	return fmt.Sprintf("layer not found: %s", e.Layer)
}

// ErrLayerNotQueryable indicates the layer's capabilities lack a query or
// data token.
type ErrLayerNotQueryable struct {
	Name         string
	Capabilities string
}

func (e *ErrLayerNotQueryable) Error() string {
	return fmt.Sprintf("layer %q does not support queries (capabilities: %s)", e.Name, e.Capabilities)
}

// ErrInvalidFieldName indicates a requested field matched no field name or
// alias in the layer schema.
type ErrInvalidFieldName struct {
	Name string
}

func (e *ErrInvalidFieldName) Error() string {
	return fmt.Sprintf("field %q does not match any field name or alias", e.Name)
}

// ErrLaunderFailed indicates no unique output name fits within the
// configured truncation length.
type ErrLaunderFailed struct {
	Name   string
	Length int
}

func (e *ErrLaunderFailed) Error() string {
	return fmt.Sprintf("cannot derive a unique output name for field %q within %d characters", e.Name, e.Length)
}

// ErrGeometryType indicates a filter geometry of the wrong type.
type ErrGeometryType struct {
	Type string
}

func (e *ErrGeometryType) Error() string {
	return fmt.Sprintf("filter geometry must be a polygon, got %s", e.Type)
}

// ErrUnsupportedGeometry indicates geometry the decoder cannot represent:
// curve segments, or a geometry type it does not recognize.
type ErrUnsupportedGeometry struct {
	Type   string
	Reason string
}

func (e *ErrUnsupportedGeometry) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("unsupported geometry (%s): %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("unsupported geometry: %s", e.Reason)
}
