// Package layer implements a query client for a single feature-service
// layer: it resolves layer metadata, projects and launders attribute
// names, captures the set of matching object ids, and fetches the
// corresponding features in adaptively-sized pages with typed geometry
// and decoded attribute values.
package layer

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Sudo-Ivan/arcgis-query/pkg/arcgis"
)

// Service is the transport boundary the layer client depends on. It is
// implemented by arcgis.Client.
type Service interface {
	// GetJSON performs an authenticated JSON request against a path
	// relative to the service endpoint.
	GetJSON(path string, params url.Values, out interface{}) error
	// Projection reports the service's active spatial reference.
	Projection() string
}

// Layer is a client for one queryable feature layer. The metadata, the
// lookup tables, and the object-id snapshot are resolved once in Open and
// read-only afterwards.
type Layer struct {
	svc       Service
	path      string
	meta      *arcgis.LayerMetadata
	opts      Options
	projector *fieldProjector
	domains   *domainTables
	objectIDs []int64
}

// Open resolves a layer by exact name or numeric id against the service's
// layer catalog, validates that it is queryable, builds the field
// projection and domain tables, and captures the snapshot of object ids
// matching the configured filter.
func Open(svc Service, nameOrID string, opts Options) (*Layer, error) {
	var root arcgis.ServiceMetadata
	if err := svc.GetJSON("", nil, &root); err != nil {
		return nil, errors.Wrap(err, "fetch service catalog")
	}

	ref, found := findLayer(append(root.Layers, root.Tables...), nameOrID)
	if !found {
		return nil, &ErrLayerNotFound{Layer: nameOrID}
	}
	path := strconv.Itoa(ref.ID)

	var meta arcgis.LayerMetadata
	if err := svc.GetJSON(path, nil, &meta); err != nil {
		return nil, errors.Wrapf(err, "fetch metadata for layer %d", ref.ID)
	}
	if !isQueryable(meta.Capabilities) {
		return nil, &ErrLayerNotQueryable{Name: meta.Name, Capabilities: meta.Capabilities}
	}

	projector, err := newFieldProjector(meta.Fields, opts.Fields, opts.Launder, opts.TruncateLength)
	if err != nil {
		return nil, err
	}

	filter, err := buildFilter(&meta, opts)
	if err != nil {
		return nil, err
	}
	ids, err := fetchObjectIDs(svc, path, filter)
	if err != nil {
		return nil, errors.Wrap(err, "fetch object ids")
	}

	return &Layer{
		svc:       svc,
		path:      path,
		meta:      &meta,
		opts:      opts,
		projector: projector,
		domains:   newDomainTables(&meta),
		objectIDs: ids,
	}, nil
}

// findLayer matches a catalog entry by numeric id first, then by exact
// name. A layer literally named after a number is still reachable when no
// id matches.
func findLayer(refs []arcgis.LayerRef, nameOrID string) (arcgis.LayerRef, bool) {
	if id, err := strconv.Atoi(nameOrID); err == nil {
		for _, r := range refs {
			if r.ID == id {
				return r, true
			}
		}
	}
	for _, r := range refs {
		if r.Name == nameOrID {
			return r, true
		}
	}
	return arcgis.LayerRef{}, false
}

// isQueryable reports whether the capabilities string carries a query or
// data token.
func isQueryable(capabilities string) bool {
	for _, token := range strings.Split(capabilities, ",") {
		switch strings.ToLower(strings.TrimSpace(token)) {
		case "query", "data":
			return true
		}
	}
	return false
}

// Name returns the layer's name as reported by the service.
func (l *Layer) Name() string { return l.meta.Name }

// GeometryType returns the layer's declared geometry type.
func (l *Layer) GeometryType() string { return l.meta.GeometryType }

// Count is the total number of object ids matching the filter.
func (l *Layer) Count() int { return len(l.objectIDs) }

// RenameMap returns a copy of the output-name to source-name bijection.
func (l *Layer) RenameMap() map[string]string {
	m := make(map[string]string, len(l.projector.outputs))
	for out, src := range l.projector.outputs {
		m[out] = src
	}
	return m
}

// Features fetches every page and folds the results into one collection.
// The progress callback, when non-nil, is invoked after each page with
// the number of features decoded so far and the total id count.
func (l *Layer) Features(perPage int, progress func(done, total int)) (*FeatureCollection, error) {
	merged := l.newCollection()
	pages := l.Pages(perPage)
	for pages.Next() {
		merged.Features = append(merged.Features, pages.Collection().Features...)
		if progress != nil {
			progress(len(merged.Features), l.Count())
		}
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}
	return merged, nil
}

func (l *Layer) newCollection() *FeatureCollection {
	return &FeatureCollection{
		Projection: l.svc.Projection(),
		Name:       l.meta.Name,
		Features:   []Feature{},
	}
}

// queryFeatures requests one batch of features by object id. Errors from
// here are what trigger page-size back-off.
func (l *Layer) queryFeatures(ids []int64) (*arcgis.QueryResponse, error) {
	params := url.Values{}
	params.Set("objectIds", joinIDs(ids))
	params.Set("outFields", l.projector.outFieldsParam())
	params.Set("returnGeometry", "true")

	var resp arcgis.QueryResponse
	if err := l.svc.GetJSON(l.path+"/query", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// decodeFeature decodes one raw feature. ok is false when the feature
// lacks a usable geometry and should be silently dropped.
func (l *Layer) decodeFeature(raw *arcgis.RawFeature) (Feature, bool, error) {
	if raw.Geometry == nil {
		return Feature{}, false, nil
	}
	g, err := decodeGeometry(l.meta.GeometryType, raw.Geometry, l.opts.Mixed)
	if err != nil {
		return Feature{}, false, err
	}
	if g == nil {
		return Feature{}, false, nil
	}

	typeID := ""
	if l.domains.typeField != "" {
		typeID = codeKey(raw.Attributes[l.domains.typeField])
	}

	attrs := make(map[string]interface{}, len(raw.Attributes))
	for name, value := range raw.Attributes {
		attrs[l.projector.outputName(name)] = l.domains.decode(name, value, typeID, l.opts.Decode)
	}
	return Feature{Geometry: g, Attributes: attrs}, true, nil
}

func joinIDs(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}
