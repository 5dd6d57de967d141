package arcgis

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Client performs authenticated JSON requests against a single ArcGIS
// feature-service endpoint. It implements the Service boundary the layer
// package depends on.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	spatialRef *SpatialReference
}

// NewClient creates a client rooted at the given service URL. The token is
// optional and, when set, is attached to every request.
func NewClient(serviceURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(serviceURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Connect fetches the service root metadata and records the service's
// active spatial reference. It must be called before Projection is useful,
// and doubles as a reachability check.
func (c *Client) Connect() (*ServiceMetadata, error) {
	var meta ServiceMetadata
	if err := c.GetJSON("", nil, &meta); err != nil {
		return nil, errors.Wrap(err, "fetch service metadata")
	}
	c.spatialRef = meta.SpatialReference
	return &meta, nil
}

// Projection reports the service's active spatial reference as an
// EPSG-style identifier, or its WKT when no well-known id is declared.
// Empty until Connect has succeeded.
func (c *Client) Projection() string {
	sr := c.spatialRef
	if sr == nil {
		return ""
	}
	switch {
	case sr.LatestWKID != 0:
		return fmt.Sprintf("EPSG:%d", sr.LatestWKID)
	case sr.WKID != 0:
		return fmt.Sprintf("EPSG:%d", sr.WKID)
	default:
		return sr.WKT
	}
}

// GetJSON issues a GET against a path relative to the service URL and
// decodes the JSON response into out. The f=json and token parameters are
// always attached. An error payload inside a 200 response is surfaced as
// an *APIError.
func (c *Client) GetJSON(path string, params url.Values, out interface{}) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.Wrapf(err, "invalid service URL %q", c.BaseURL)
	}
	if path != "" {
		u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	}

	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Set(key, v)
		}
	}
	q.Set("f", "json")
	if c.Token != "" {
		q.Set("token", c.Token)
	}
	u.RawQuery = q.Encode()

	resp, err := c.HTTPClient.Get(u.String())
	if err != nil {
		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			return errors.Wrapf(err, "request timed out fetching %s", u.Path)
		}
		return errors.Wrapf(err, "fetch %s", u.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("non-OK HTTP status %d from %s", resp.StatusCode, u.Path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read response from %s", u.Path)
	}

	// ArcGIS reports protocol failures as an error object in a 200 body.
	var probe struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return errors.Wrapf(err, "parse JSON from %s", u.Path)
	}
	if probe.Error != nil {
		return probe.Error
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "parse JSON from %s", u.Path)
	}
	return nil
}

var itemIDPattern = regexp.MustCompile(`id=([a-f0-9]+)`)

// ResolveItemURL resolves an ArcGIS Online item page URL to the URL of the
// service backing the item, via the sharing API.
func ResolveItemURL(httpClient *http.Client, itemPageURL, token string) (string, error) {
	matches := itemIDPattern.FindStringSubmatch(itemPageURL)
	if len(matches) < 2 {
		return "", errors.Errorf("could not extract item ID from URL: %s", itemPageURL)
	}
	itemID := matches[1]

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		BaseURL:    fmt.Sprintf("https://www.arcgis.com/sharing/rest/content/items/%s", itemID),
		Token:      token,
		HTTPClient: httpClient,
	}

	var item ItemData
	if err := c.GetJSON("", nil, &item); err != nil {
		return "", errors.Wrap(err, "fetch item metadata")
	}
	if item.URL == "" {
		return "", errors.Errorf("item %s (%s) has no service URL", itemID, item.Type)
	}
	return item.URL, nil
}
