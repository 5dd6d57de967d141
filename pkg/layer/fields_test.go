package layer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudo-Ivan/arcgis-query/pkg/arcgis"
)

func TestLaunderName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Already clean", "objectid", "objectid"},
		{"Uppercase", "OBJECTID", "objectid"},
		{"Spaces", "State Name", "state_name"},
		{"Punctuation run", "Pop. (2020)", "pop_2020_"},
		{"Mixed separators", "A - B", "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, launderName(tt.input))
		})
	}
}

func TestProjectorResolvesByNameOrAlias(t *testing.T) {
	fields := []arcgis.Field{
		{Name: "STATE_NAME", Alias: "State Name", Type: "esriFieldTypeString"},
		{Name: "POP2020", Alias: "Population (2020)", Type: "esriFieldTypeInteger"},
	}

	p, err := newFieldProjector(fields, []string{"Population (2020)", "STATE_NAME"}, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"POP2020", "STATE_NAME"}, p.outFields)
	assert.Equal(t, "POP2020,STATE_NAME", p.outFieldsParam())
}

func TestProjectorResolutionIndependentOfFieldOrder(t *testing.T) {
	fields := []arcgis.Field{
		{Name: "A", Alias: "Alpha"},
		{Name: "B", Alias: "Beta"},
	}
	reversed := []arcgis.Field{fields[1], fields[0]}

	p1, err := newFieldProjector(fields, []string{"Beta", "Alpha"}, false, 0)
	require.NoError(t, err)
	p2, err := newFieldProjector(reversed, []string{"Beta", "Alpha"}, false, 0)
	require.NoError(t, err)

	assert.Equal(t, p1.outFields, p2.outFields)
}

func TestProjectorUnmatchedFieldFails(t *testing.T) {
	fields := []arcgis.Field{{Name: "A", Alias: "Alpha"}}

	_, err := newFieldProjector(fields, []string{"Gamma"}, false, 0)
	var invalid *ErrInvalidFieldName
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Gamma", invalid.Name)
}

func TestProjectorDefaultFieldsExcludeNonAttributeTypes(t *testing.T) {
	fields := []arcgis.Field{
		{Name: "OBJECTID", Type: fieldTypeOID},
		{Name: "SHAPE", Type: "esriFieldTypeGeometry"},
		{Name: "CREATED", Type: "esriFieldTypeDate"},
		{Name: "PHOTO", Type: "esriFieldTypeBlob"},
		{Name: "SCAN", Type: "esriFieldTypeRaster"},
		{Name: "META", Type: "esriFieldTypeXML"},
		{Name: "NAME", Type: "esriFieldTypeString"},
	}

	p, err := newFieldProjector(fields, nil, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"OBJECTID", "NAME"}, p.outFields)
}

func TestRenameMapIsIdentityWithoutLaundering(t *testing.T) {
	fields := []arcgis.Field{{Name: "OBJECTID"}, {Name: "Name"}}

	p, err := newFieldProjector(fields, nil, false, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"OBJECTID": "OBJECTID", "Name": "Name"}, p.rename)
}

func TestRenameMapCollisionSuffixes(t *testing.T) {
	// "name" keeps its identity; the laundered collisions get suffixes in
	// source order.
	fields := []arcgis.Field{
		{Name: "Name"},
		{Name: "NAME"},
		{Name: "name"},
	}

	p, err := newFieldProjector(fields, nil, true, 0)
	require.NoError(t, err)
	assert.Equal(t, "name", p.rename["name"])
	assert.Equal(t, "name_2", p.rename["Name"])
	assert.Equal(t, "name_3", p.rename["NAME"])
}

func TestRenameMapIsBijective(t *testing.T) {
	fields := []arcgis.Field{
		{Name: "Pipe Diameter"},
		{Name: "Pipe-Diameter"},
		{Name: "PIPE DIAMETER"},
		{Name: "pipe_diameter"},
	}

	p, err := newFieldProjector(fields, nil, true, 0)
	require.NoError(t, err)

	seen := map[string]string{}
	for src, out := range p.rename {
		prev, dup := seen[out]
		require.False(t, dup, "output %q assigned to both %q and %q", out, prev, src)
		seen[out] = src
	}
	assert.Len(t, p.rename, len(fields))
	assert.Equal(t, seen, p.outputs)
}

func TestRenameMapTruncationResuffixes(t *testing.T) {
	fields := []arcgis.Field{
		{Name: "HYDRANT PRESSURE A"},
		{Name: "HYDRANT PRESSURE B"},
	}

	p, err := newFieldProjector(fields, nil, true, 10)
	require.NoError(t, err)
	// Both launder+truncate to "hydrant_pr"; the second re-truncates to
	// leave room for its suffix.
	assert.Equal(t, "hydrant_pr", p.rename["HYDRANT PRESSURE A"])
	assert.Equal(t, "hydrant__2", p.rename["HYDRANT PRESSURE B"])
}

func TestRenameMapTruncationFailure(t *testing.T) {
	fields := []arcgis.Field{
		{Name: "A B"},
		{Name: "A-B"},
	}

	_, err := newFieldProjector(fields, nil, true, 2)
	var failed *ErrLaunderFailed
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, 2, failed.Length)
}

func TestRenameMapDeterminism(t *testing.T) {
	fields := []arcgis.Field{
		{Name: "Zone ID"},
		{Name: "Zone-ID"},
		{Name: "ZONE id"},
		{Name: "zone_id"},
	}

	first, err := newFieldProjector(fields, nil, true, 0)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := newFieldProjector(fields, nil, true, 0)
		require.NoError(t, err)
		assert.Equal(t, first.rename, again.rename)
	}
}
