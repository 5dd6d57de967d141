package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-spatial/geom"

	"github.com/Sudo-Ivan/arcgis-query/pkg/layer"
)

func TestMain(m *testing.M) {
	useColor = false // Disable color output for tests
	os.Exit(m.Run())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
url = "https://example.com/ArcGIS/rest/services/Data/FeatureServer"
token = "secret"
timeout = 60
layer = "Hydrants"
where = ["STATUS = 1", "TYPE = 'fire'"]
fields = ["NAME", "STATUS"]
launder = true
truncate_length = 10
no_decode = true
multi = true
page_size = 250
format = "csv"
output = "/tmp/out"
prefix = "run_"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.URL != "https://example.com/ArcGIS/rest/services/Data/FeatureServer" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.Token != "secret" || cfg.Timeout != 60 || cfg.Layer != "Hydrants" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Where, []string{"STATUS = 1", "TYPE = 'fire'"}) {
		t.Errorf("Where = %v", cfg.Where)
	}
	if !reflect.DeepEqual(cfg.Fields, []string{"NAME", "STATUS"}) {
		t.Errorf("Fields = %v", cfg.Fields)
	}
	if !cfg.Launder || cfg.TruncateLength != 10 || !cfg.NoDecode || !cfg.Multi {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.PageSize != 250 || cfg.Format != "csv" || cfg.Output != "/tmp/out" || cfg.Prefix != "run_" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"Empty", "", nil},
		{"Single", "NAME", []string{"NAME"}},
		{"Multiple", "NAME,STATUS", []string{"NAME", "STATUS"}},
		{"Whitespace Trimmed", " NAME , STATUS ", []string{"NAME", "STATUS"}},
		{"Empty Entries Dropped", "NAME,,STATUS,", []string{"NAME", "STATUS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitList(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitList(%q) = %v; want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain", "Hydrants", "Hydrants"},
		{"Spaces", "Fire Hydrants", "Fire_Hydrants"},
		{"Punctuation", "Parks & Trails (2024)", "Parks_Trails_2024_"},
		{"Kept Characters", "layer-1.v2_final", "layer-1.v2_final"},
		{"Empty", "", "layer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.input); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func testWriteCollection() *layer.FeatureCollection {
	return &layer.FeatureCollection{
		Projection: "EPSG:4326",
		Name:       "Test Layer",
		Features: []layer.Feature{
			{
				Geometry:   geom.Point{-122.0, 37.0},
				Attributes: map[string]interface{}{"OBJECTID": 1, "NAME": "Test Feature"},
			},
		},
	}
}

func TestWriteOutputFormats(t *testing.T) {
	tests := []struct {
		format string
		ext    string
		marker string
	}{
		{"geojson", ".geojson", `"FeatureCollection"`},
		{"json", ".geojson", `"FeatureCollection"`},
		{"csv", ".csv", "WKT_Geometry"},
		{"text", ".txt", "Layer: Test Layer"},
		{"txt", ".txt", "Layer: Test Layer"},
		{"kml", ".kml", "<Placemark>"},
		{"gpx", ".gpx", "<wpt "},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := t.TempDir()
			path, err := writeOutput(testWriteCollection(), tt.format, dir, "test_")
			if err != nil {
				t.Fatalf("writeOutput(%s) failed: %v", tt.format, err)
			}

			want := filepath.Join(dir, "test_Test_Layer"+tt.ext)
			if path != want {
				t.Errorf("output path = %q; want %q", path, want)
			}
			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if !strings.Contains(string(content), tt.marker) {
				t.Errorf("output missing %q", tt.marker)
			}
		})
	}
}

func TestWriteOutputUnsupportedFormat(t *testing.T) {
	if _, err := writeOutput(testWriteCollection(), "shapefile", t.TempDir(), ""); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPrintFunctions(t *testing.T) {
	tests := []struct {
		name     string
		function func(string)
		message  string
	}{
		{"printInfo", printInfo, "Info message"},
		{"printSuccess", printSuccess, "Success message"},
		{"printWarning", printWarning, "Warning message"},
		{"printError", printError, "Error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Color output is disabled in TestMain; these should just print.
			tt.function(tt.message)
		})
	}
}
