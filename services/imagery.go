package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"map-action-api/models"
)

// ImageryCatalog is the Earth-observation query boundary. Implementations
// return every multispectral scene intersecting the area and window whose
// cloudy-pixel fraction does not exceed maxCloudPct.
type ImageryCatalog interface {
	QueryScenes(ctx context.Context, area models.BufferedArea, start, end time.Time, maxCloudPct float64) ([]models.Scene, error)
}

// LandCoverSource is the static land-cover raster boundary. SamplePixels
// draws a fixed-size stratified random sample inside the area and returns
// per-class-code pixel counts. Sampling is probabilistic; repeated calls
// over the same area may differ.
type LandCoverSource interface {
	SamplePixels(ctx context.Context, area models.BufferedArea, numPixels int) (map[int]int, error)
}

// restImageryCatalog talks JSON-over-HTTP to the imagery gateway fronting
// the Sentinel-2 surface-reflectance collection.
type restImageryCatalog struct {
	client  *http.Client
	baseURL string
}

// NewRESTImageryCatalog builds the production ImageryCatalog client.
func NewRESTImageryCatalog(baseURL string) ImageryCatalog {
	return &restImageryCatalog{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: baseURL,
	}
}

type sceneQueryRequest struct {
	Area        models.BufferedArea `json:"area"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	MaxCloudPct float64             `json:"max_cloud_pct"`
}

type sceneQueryResponse struct {
	Scenes []models.Scene `json:"scenes"`
}

func (c *restImageryCatalog) QueryScenes(ctx context.Context, area models.BufferedArea, start, end time.Time, maxCloudPct float64) ([]models.Scene, error) {
	body, err := json.Marshal(sceneQueryRequest{
		Area:        area,
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		MaxCloudPct: maxCloudPct,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal scene query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scenes/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build scene query: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: scene query: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: scene query returned %s", ErrExternalService, resp.Status)
	}

	var decoded sceneQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding scene query response: %v", ErrExternalService, err)
	}
	return decoded.Scenes, nil
}

// restLandCoverSource samples the ESA WorldCover classification raster
// through the same gateway.
type restLandCoverSource struct {
	client  *http.Client
	baseURL string
}

// NewRESTLandCoverSource builds the production LandCoverSource client.
func NewRESTLandCoverSource(baseURL string) LandCoverSource {
	return &restLandCoverSource{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: baseURL,
	}
}

type landCoverSampleRequest struct {
	Area      models.BufferedArea `json:"area"`
	NumPixels int                 `json:"num_pixels"`
}

type landCoverSampleResponse struct {
	// Counts keyed by the raster's numeric class code, JSON strings.
	Counts map[string]int `json:"counts"`
}

func (c *restLandCoverSource) SamplePixels(ctx context.Context, area models.BufferedArea, numPixels int) (map[int]int, error) {
	body, err := json.Marshal(landCoverSampleRequest{Area: area, NumPixels: numPixels})
	if err != nil {
		return nil, fmt.Errorf("marshal land-cover sample: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/landcover/sample", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build land-cover sample: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: land-cover sample: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: land-cover sample returned %s", ErrExternalService, resp.Status)
	}

	var decoded landCoverSampleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding land-cover response: %v", ErrExternalService, err)
	}

	counts := make(map[int]int, len(decoded.Counts))
	for code, count := range decoded.Counts {
		parsed, err := strconv.Atoi(code)
		if err != nil {
			// Keep the pixels; they end up in the unknown bucket.
			parsed = -1
		}
		counts[parsed] += count
	}
	return counts, nil
}
