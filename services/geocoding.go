package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"map-action-api/models"
)

// nominatimPlace is one candidate match from the Nominatim search API.
// Coordinates come back as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocoder resolves free-text incident locations through Nominatim.
type Geocoder struct {
	client  *http.Client
	baseURL string
}

// NewGeocoder builds a geocoder against the given Nominatim base URL.
func NewGeocoder(baseURL string) *Geocoder {
	return &Geocoder{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

// Resolve looks up a location label and returns its coordinates. Any
// failure (no candidates, bad status, transport error, unparseable
// coordinates) logs a warning and falls back to the origin sentinel
// with Resolved=false; the analysis request itself never fails here.
// No retries.
func (g *Geocoder) Resolve(ctx context.Context, label string) models.GeocodeResult {
	fallback := models.GeocodeResult{Lat: 0, Lon: 0, Resolved: false}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(label))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Printf("geocoding: building request for %q failed: %v", label, err)
		return fallback
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "map-action-api/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("geocoding: service unreachable, using default coordinates for %q: %v", label, err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("geocoding: service returned %s, using default coordinates for %q", resp.Status, label)
		return fallback
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		log.Printf("geocoding: decoding response for %q failed: %v", label, err)
		return fallback
	}
	if len(places) == 0 {
		log.Printf("geocoding: could not find coordinates for %q, using default coordinates", label)
		return fallback
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		log.Printf("geocoding: unparseable coordinates for %q (%q, %q)", label, places[0].Lat, places[0].Lon)
		return fallback
	}

	return models.GeocodeResult{Lat: lat, Lon: lon, Resolved: true}
}
