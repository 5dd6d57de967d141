// Command arcgis-query fetches features from an ArcGIS feature-service
// layer and exports them to GeoJSON, CSV, text, KML, or GPX.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Sudo-Ivan/arcgis-query/pkg/arcgis"
	"github.com/Sudo-Ivan/arcgis-query/pkg/convert"
	"github.com/Sudo-Ivan/arcgis-query/pkg/export"
	"github.com/Sudo-Ivan/arcgis-query/pkg/layer"
)

// ANSI color codes for console output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

const (
	dirPerm  = 0750
	filePerm = 0600
)

// useColor controls whether colored output is enabled.
var useColor = true

func printError(msg string) {
	if useColor {
		fmt.Fprintf(os.Stderr, "%sError: %s%s\n", colorRed, msg, colorReset)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
}

func printWarning(msg string) {
	if useColor {
		fmt.Printf("%sWarning: %s%s\n", colorYellow, msg, colorReset)
	} else {
		fmt.Printf("Warning: %s\n", msg)
	}
}

func printInfo(msg string) {
	if useColor {
		fmt.Printf("%s%s%s\n", colorCyan, msg, colorReset)
	} else {
		fmt.Println(msg)
	}
}

func printSuccess(msg string) {
	if useColor {
		fmt.Printf("%s%s%s\n", colorGreen, msg, colorReset)
	} else {
		fmt.Println(msg)
	}
}

// Config mirrors the command-line flags in a TOML file. Flags set on the
// command line override file values.
type Config struct {
	URL            string   `toml:"url"`
	Token          string   `toml:"token"`
	Timeout        int      `toml:"timeout"`
	Layer          string   `toml:"layer"`
	Where          []string `toml:"where"`
	Fields         []string `toml:"fields"`
	Launder        bool     `toml:"launder"`
	TruncateLength int      `toml:"truncate_length"`
	NoDecode       bool     `toml:"no_decode"`
	Multi          bool     `toml:"multi"`
	PageSize       int      `toml:"page_size"`
	Format         string   `toml:"format"`
	Output         string   `toml:"output"`
	Prefix         string   `toml:"prefix"`
}

func loadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	urlPtr := flag.String("url", "", "ArcGIS Feature Layer, Feature Server, Map Server, or ArcGIS Online Item URL")
	tokenPtr := flag.String("token", "", "ArcGIS access token")
	timeoutPtr := flag.Int("timeout", 30, "HTTP request timeout in seconds")
	layerPtr := flag.String("layer", "", "Layer name or numeric id (default: from a single-layer URL)")
	listPtr := flag.Bool("list", false, "List the service's layers and exit")
	wherePtr := flag.String("where", "", "Attribute filter expression")
	fieldsPtr := flag.String("fields", "", "Comma-separated output fields (name or alias; default: all non-geometry fields)")
	launderPtr := flag.Bool("launder", false, "Launder output field names (lowercase, non-word runs to underscore)")
	truncatePtr := flag.Int("truncate", 0, "Truncate output field names to this length (0 = no truncation)")
	noDecodePtr := flag.Bool("no-decode", false, "Keep raw coded values instead of domain labels")
	multiPtr := flag.Bool("multi", false, "Always emit Multi* geometries, even for single-part features")
	pageSizePtr := flag.Int("page-size", 0, "Features per request page (0 = layer default, capped at 500)")
	formatPtr := flag.String("format", "geojson", "Output format (geojson, json, csv, text, kml, gpx)")
	outputPtr := flag.String("output", "", "Output directory (default: current directory)")
	prefixPtr := flag.String("prefix", "", "Prefix for output filenames")
	configPtr := flag.String("config", "", "TOML config file (flags override file values)")
	noColorPtr := flag.Bool("no-color", false, "Disable colored output")

	flag.Parse()

	useColor = !*noColorPtr

	cfg := &Config{}
	if *configPtr != "" {
		loaded, err := loadConfig(*configPtr)
		if err != nil {
			printError(fmt.Sprintf("Failed to read config %s: %v", *configPtr, err))
			os.Exit(1)
		}
		cfg = loaded
	}

	// Apply explicit flags over config file values.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["url"] || cfg.URL == "" {
		cfg.URL = *urlPtr
	}
	if set["token"] || cfg.Token == "" {
		cfg.Token = *tokenPtr
	}
	if set["timeout"] || cfg.Timeout == 0 {
		cfg.Timeout = *timeoutPtr
	}
	if set["layer"] || cfg.Layer == "" {
		cfg.Layer = *layerPtr
	}
	if set["where"] {
		cfg.Where = []string{*wherePtr}
	}
	if set["fields"] {
		cfg.Fields = splitList(*fieldsPtr)
	}
	if set["launder"] {
		cfg.Launder = *launderPtr
	}
	if set["truncate"] {
		cfg.TruncateLength = *truncatePtr
	}
	if set["no-decode"] {
		cfg.NoDecode = *noDecodePtr
	}
	if set["multi"] {
		cfg.Multi = *multiPtr
	}
	if set["page-size"] {
		cfg.PageSize = *pageSizePtr
	}
	if set["format"] || cfg.Format == "" {
		cfg.Format = *formatPtr
	}
	if set["output"] {
		cfg.Output = *outputPtr
	}
	if set["prefix"] {
		cfg.Prefix = *prefixPtr
	}

	if cfg.URL == "" {
		printError("URL is required")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(cfg, *listPtr); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

func run(cfg *Config, list bool) error {
	timeout := time.Duration(cfg.Timeout) * time.Second

	inputURL := cfg.URL
	if !arcgis.IsValidHTTPURL(inputURL) {
		inputURL = arcgis.NormalizeArcGISURL(inputURL)
		if !arcgis.IsValidHTTPURL(inputURL) {
			return fmt.Errorf("invalid URL: %s", cfg.URL)
		}
	} else {
		inputURL = arcgis.NormalizeArcGISURL(inputURL)
	}

	if arcgis.IsArcGISOnlineItemURL(inputURL) {
		printInfo("Resolving ArcGIS Online item...")
		resolved, err := arcgis.ResolveItemURL(&http.Client{Timeout: timeout}, inputURL, cfg.Token)
		if err != nil {
			return err
		}
		inputURL = arcgis.NormalizeArcGISURL(resolved)
	}

	// A URL ending in a numeric layer id selects that layer directly.
	serviceURL, layerID := arcgis.SplitLayerURL(inputURL)
	target := cfg.Layer
	if target == "" {
		target = layerID
	}

	client := arcgis.NewClient(serviceURL, cfg.Token, timeout)
	meta, err := client.Connect()
	if err != nil {
		return err
	}

	if list || target == "" {
		printInfo(fmt.Sprintf("Layers at %s:", serviceURL))
		for _, ref := range meta.Layers {
			fmt.Printf("  %3d  %-40s %s\n", ref.ID, ref.Name, ref.GeometryType)
		}
		for _, ref := range meta.Tables {
			fmt.Printf("  %3d  %-40s (table)\n", ref.ID, ref.Name)
		}
		if target == "" && !list {
			printWarning("No layer selected; use -layer or a single-layer URL")
		}
		return nil
	}

	opts := layer.DefaultOptions()
	opts.Where = cfg.Where
	opts.Fields = cfg.Fields
	opts.Launder = cfg.Launder
	opts.TruncateLength = cfg.TruncateLength
	opts.Decode = !cfg.NoDecode
	opts.Mixed = !cfg.Multi

	printInfo(fmt.Sprintf("Opening layer %q...", target))
	l, err := layer.Open(client, target, opts)
	if err != nil {
		return err
	}
	printInfo(fmt.Sprintf("Layer %q: %d matching features", l.Name(), l.Count()))

	fc, err := l.Features(cfg.PageSize, func(done, total int) {
		fmt.Printf("\r  Fetched %d/%d features...", done, total)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	outputDir := cfg.Output
	if outputDir == "" {
		outputDir, _ = os.Getwd()
	}
	path, err := writeOutput(fc, cfg.Format, outputDir, cfg.Prefix)
	if err != nil {
		return err
	}

	printSuccess(fmt.Sprintf("Wrote %d features to %s", len(fc.Features), path))
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeFilename(name string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(name, "_")
	if sanitized == "" {
		return "layer"
	}
	return sanitized
}

// writeOutput serializes the collection in the requested format and
// writes it under outputDir. Returns the written path.
func writeOutput(fc *layer.FeatureCollection, format, outputDir, prefix string) (string, error) {
	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return "", fmt.Errorf("create output directory: %v", err)
	}

	var ext string
	var content []byte

	switch strings.ToLower(format) {
	case "geojson", "json":
		geoJSON, err := convert.ToGeoJSON(fc)
		if err != nil {
			return "", err
		}
		buf, err := json.MarshalIndent(geoJSON, "", "  ")
		if err != nil {
			return "", err
		}
		ext, content = ".geojson", buf

	case "csv":
		csvData, err := convert.FeaturesToCSV(fc)
		if err != nil {
			return "", err
		}
		ext, content = ".csv", []byte(csvData)

	case "text", "txt":
		text, err := convert.FeaturesToText(fc)
		if err != nil {
			return "", err
		}
		ext, content = ".txt", []byte(text)

	case "kml":
		geoJSON, err := convert.ToGeoJSON(fc)
		if err != nil {
			return "", err
		}
		kml, err := export.ConvertGeoJSONToKML(geoJSON, fc.Name)
		if err != nil {
			return "", err
		}
		ext, content = ".kml", []byte(kml)

	case "gpx":
		geoJSON, err := convert.ToGeoJSON(fc)
		if err != nil {
			return "", err
		}
		gpx, err := export.ConvertGeoJSONToGPX(geoJSON, fc.Name)
		if err != nil {
			return "", err
		}
		ext, content = ".gpx", []byte(gpx)

	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}

	path := filepath.Join(outputDir, prefix+sanitizeFilename(fc.Name)+ext)
	if err := os.WriteFile(path, content, filePerm); err != nil {
		return "", fmt.Errorf("write %s: %v", path, err)
	}
	return path, nil
}
