package layer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Sudo-Ivan/arcgis-query/pkg/arcgis"
)

// Field types never selected by default.
var defaultExcludedTypes = map[string]struct{}{
	"esriFieldTypeGeometry": {},
	"esriFieldTypeDate":     {},
	"esriFieldTypeBlob":     {},
	"esriFieldTypeRaster":   {},
	"esriFieldTypeXML":      {},
}

var nonWordRun = regexp.MustCompile(`\W+`)

// launderName sanitizes a field name into an identifier-safe form:
// lowercase, with non-word runs collapsed into underscores.
func launderName(name string) string {
	return nonWordRun.ReplaceAllString(strings.ToLower(name), "_")
}

// resolveField matches a requested name against each field's name and
// alias. Returns the field's source name, or "" when nothing matches.
func resolveField(fields []arcgis.Field, name string) string {
	for _, f := range fields {
		if f.Name == name || f.Alias == name {
			return f.Name
		}
	}
	return ""
}

// fieldProjector holds the resolved output field set and the laundering
// rename map. Immutable once built.
type fieldProjector struct {
	// outFields are the resolved source names to request, in order.
	outFields []string
	// rename maps source field name to output name, over all source fields.
	rename map[string]string
	// outputs is the inverse: output name to source field name.
	outputs map[string]string
}

// newFieldProjector validates the requested field names and computes a
// deterministic, bijective rename map over the full source schema.
func newFieldProjector(fields []arcgis.Field, requested []string, launder bool, truncate int) (*fieldProjector, error) {
	p := &fieldProjector{
		rename:  make(map[string]string, len(fields)),
		outputs: make(map[string]string, len(fields)),
	}

	if len(requested) == 0 {
		for _, f := range fields {
			if _, excluded := defaultExcludedTypes[f.Type]; excluded {
				continue
			}
			p.outFields = append(p.outFields, f.Name)
		}
	} else {
		for _, name := range requested {
			resolved := resolveField(fields, name)
			if resolved == "" {
				return nil, &ErrInvalidFieldName{Name: name}
			}
			p.outFields = append(p.outFields, resolved)
		}
	}

	substitute := func(name string) string {
		s := name
		if launder {
			s = launderName(s)
		}
		if truncate > 0 && len(s) > truncate {
			s = s[:truncate]
		}
		return s
	}

	// Fields whose substitute equals the original reserve their identity
	// before any changed name is assigned.
	var changed []arcgis.Field
	for _, f := range fields {
		if substitute(f.Name) == f.Name {
			p.rename[f.Name] = f.Name
			p.outputs[f.Name] = f.Name
		} else {
			changed = append(changed, f)
		}
	}

	for _, f := range changed {
		base := substitute(f.Name)
		name := base
		for i := 2; ; i++ {
			if _, taken := p.outputs[name]; !taken {
				break
			}
			suffix := "_" + strconv.Itoa(i)
			candidate := base
			if truncate > 0 {
				if truncate <= len(suffix) {
					return nil, &ErrLaunderFailed{Name: f.Name, Length: truncate}
				}
				if len(candidate) > truncate-len(suffix) {
					candidate = candidate[:truncate-len(suffix)]
				}
			}
			name = candidate + suffix
		}
		p.rename[f.Name] = name
		p.outputs[name] = f.Name
	}

	return p, nil
}

// outFieldsParam is the comma-joined outbound query parameter.
func (p *fieldProjector) outFieldsParam() string {
	return strings.Join(p.outFields, ",")
}

// outputName maps a source field name to its output name. Attributes
// outside the schema keep their original key.
func (p *fieldProjector) outputName(source string) string {
	if out, ok := p.rename[source]; ok {
		return out
	}
	return source
}
