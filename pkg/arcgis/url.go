package arcgis

import (
	"net/url"
	"strings"
)

// IsArcGISOnlineItemURL checks if a URL points to an ArcGIS Online item page.
func IsArcGISOnlineItemURL(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "arcgis.com/home/item.html")
}

// IsValidHTTPURL checks if a URL is a valid HTTP or HTTPS URL.
func IsValidHTTPURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// NormalizeArcGISURL normalizes the casing and trailing slashes of an
// ArcGIS service URL, and ensures a scheme is present.
func NormalizeArcGISURL(rawURL string) string {
	lowerURL := strings.ToLower(rawURL)
	isService := strings.Contains(lowerURL, "/rest/services") || strings.Contains(lowerURL, "/arcgis/rest")
	isItem := strings.Contains(lowerURL, "arcgis.com/home/item.html")

	if !isService && !isItem {
		u, err := url.Parse(rawURL)
		if err == nil && u.Scheme == "" {
			if strings.Contains(rawURL, ".") && !strings.Contains(rawURL, " ") && !strings.HasPrefix(rawURL, "/") {
				return "https://" + rawURL
			}
		}
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if u.Scheme == "" {
		u.Scheme = "https"
	}

	if isService {
		pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, part := range pathParts {
			switch strings.ToLower(part) {
			case "arcgis":
				pathParts[i] = "ArcGIS"
			case "rest":
				pathParts[i] = "rest"
			case "services":
				pathParts[i] = "services"
			case "featureserver":
				pathParts[i] = "FeatureServer"
			case "mapserver":
				pathParts[i] = "MapServer"
			}
		}
		if strings.HasPrefix(u.Path, "/") {
			u.Path = "/" + strings.Join(pathParts, "/")
		} else {
			u.Path = strings.Join(pathParts, "/")
		}

		lowerPathEnd := ""
		if len(pathParts) > 0 {
			lowerPathEnd = strings.ToLower(pathParts[len(pathParts)-1])
		}

		// Base service URLs end with a slash; layer URLs do not.
		isBaseServiceURL := lowerPathEnd == "mapserver" || lowerPathEnd == "featureserver"
		if isBaseServiceURL {
			if !strings.HasSuffix(u.Path, "/") {
				u.Path += "/"
			}
		} else if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
			u.Path = u.Path[:len(u.Path)-1]
		}

		q := u.Query()
		q.Del("f")
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// SplitLayerURL splits a single-layer URL into its service URL and layer
// id. The second return is empty when the URL does not end in a layer id.
func SplitLayerURL(rawURL string) (serviceURL, layerID string) {
	trimmed := strings.TrimRight(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return rawURL, ""
	}
	last := trimmed[idx+1:]
	for _, r := range last {
		if r < '0' || r > '9' {
			return rawURL, ""
		}
	}
	if last == "" {
		return rawURL, ""
	}
	return trimmed[:idx], last
}
