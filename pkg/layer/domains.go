package layer

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Sudo-Ivan/arcgis-query/pkg/arcgis"
)

// Raw string values treated as absent regardless of decode settings.
var nullSentinels = map[string]struct{}{
	"null":   {},
	"Null":   {},
	"NULL":   {},
	"<null>": {},
	"<Null>": {},
	"<NULL>": {},
}

const codedValueDomain = "codedValue"

// codeKey normalizes a domain code or raw attribute value into a lookup
// key. JSON numbers arrive as float64; integer codes must not grow a
// fractional suffix.
func codeKey(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case json.Number:
		return n.String()
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", n)
	}
}

// domainTables holds the code-to-label lookup tables for a layer, built
// once at construction and read-only thereafter.
type domainTables struct {
	// field maps field name -> code -> label, from field-level domains.
	field map[string]map[string]string
	// typed maps subtype id -> field name -> code -> label.
	typed map[string]map[string]map[string]string
	// typeLabels maps subtype id -> subtype name.
	typeLabels map[string]string
	// typeField is the resolved source name of the type-discriminator
	// field, or "" when the layer has no usable subtypes.
	typeField string
}

func newDomainTables(meta *arcgis.LayerMetadata) *domainTables {
	t := &domainTables{
		field: make(map[string]map[string]string),
	}

	for _, f := range meta.Fields {
		if f.Domain == nil || f.Domain.Type != codedValueDomain || len(f.Domain.CodedValues) == 0 {
			continue
		}
		m := make(map[string]string, len(f.Domain.CodedValues))
		for _, cv := range f.Domain.CodedValues {
			m[codeKey(cv.Code)] = cv.Name
		}
		t.field[f.Name] = m
	}

	if meta.TypeIDField == "" || len(meta.Types) == 0 {
		return t
	}
	// The discriminator may be declared by alias. If it resolves to no
	// field at all, subtype decoding is skipped entirely.
	typeField := resolveField(meta.Fields, meta.TypeIDField)
	if typeField == "" {
		return t
	}

	t.typeField = typeField
	t.typed = make(map[string]map[string]map[string]string, len(meta.Types))
	t.typeLabels = make(map[string]string, len(meta.Types))
	for _, ft := range meta.Types {
		id := codeKey(ft.ID)
		t.typeLabels[id] = ft.Name
		byField := make(map[string]map[string]string)
		for fieldName, d := range ft.Domains {
			if d == nil || d.Type != codedValueDomain || len(d.CodedValues) == 0 {
				continue
			}
			m := make(map[string]string, len(d.CodedValues))
			for _, cv := range d.CodedValues {
				m[codeKey(cv.Code)] = cv.Name
			}
			if resolved := resolveField(meta.Fields, fieldName); resolved != "" {
				byField[resolved] = m
			} else {
				byField[fieldName] = m
			}
		}
		if len(byField) > 0 {
			t.typed[id] = byField
		}
	}

	return t
}

// decode translates one raw attribute value. field is the source field
// name, typeID the current record's discriminator value key.
func (t *domainTables) decode(field string, raw interface{}, typeID string, decode bool) interface{} {
	if s, ok := raw.(string); ok {
		if _, sentinel := nullSentinels[s]; sentinel {
			return nil
		}
	}
	if !decode {
		return raw
	}

	key := codeKey(raw)
	if t.typeField != "" && field == t.typeField {
		if label, ok := t.typeLabels[key]; ok {
			return label
		}
		return raw
	}
	if typeID != "" {
		if byField, ok := t.typed[typeID]; ok {
			if m, ok := byField[field]; ok {
				if label, ok := m[key]; ok {
					return label
				}
			}
		}
	}
	if m, ok := t.field[field]; ok {
		if label, ok := m[key]; ok {
			return label
		}
	}
	return raw
}
