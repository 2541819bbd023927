package models

import (
	"fmt"
	"time"
)

// BufferRadiusMeters is the fixed radius of the circular analysis zone
// drawn around every incident point.
const BufferRadiusMeters = 500

// IncidentKind identifies the incident categories that get a dedicated
// narrative branch. Anything else falls through to IncidentOther and
// receives the generic summary only.
type IncidentKind int

const (
	IncidentOther IncidentKind = iota
	IncidentDeforestation
	IncidentWaterPollution
)

// French labels used by the mobile app when reporting incidents.
const (
	LabelDeforestation  = "Déforestation"
	LabelWaterPollution = "Pollution de l'eau"
)

// IncidentType pairs the classified kind with the label as reported,
// so unrecognized categories still show up by name in the narrative.
type IncidentType struct {
	Kind  IncidentKind
	Label string
}

// ParseIncidentType classifies a reported incident label. Matching is
// exact on the known French labels.
func ParseIncidentType(label string) IncidentType {
	switch label {
	case LabelDeforestation:
		return IncidentType{Kind: IncidentDeforestation, Label: label}
	case LabelWaterPollution:
		return IncidentType{Kind: IncidentWaterPollution, Label: label}
	default:
		return IncidentType{Kind: IncidentOther, Label: label}
	}
}

func (t IncidentType) String() string {
	return t.Label
}

// AnalysisRequest is one incident-analysis invocation. Coordinates may
// be zero when only a location label is known; the pipeline resolves
// the label in that case.
type AnalysisRequest struct {
	Latitude      float64
	Longitude     float64
	LocationLabel string
	IncidentType  IncidentType
	StartDate     time.Time
	EndDate       time.Time
}

// ParseYYYYMMDD parses the 8-digit date form used by analysis requests.
func ParseYYYYMMDD(s string) (time.Time, error) {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYYMMDD: %v", s, err)
	}
	return t, nil
}

// BufferedArea is the circular zone all spatial queries are bounded to.
// Derived per request, never shared or cached.
type BufferedArea struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	RadiusMeters float64 `json:"radius_m"`
}

// NewBufferedArea builds the fixed-radius zone around an incident point.
func NewBufferedArea(lat, lon float64) BufferedArea {
	return BufferedArea{Lat: lat, Lon: lon, RadiusMeters: BufferRadiusMeters}
}

// IndexPoint is one dated index observation sampled at the incident point.
type IndexPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// IndexTimeSeries is an index time series ordered by ascending date.
// Empty when no cloud-free scene covers the window.
type IndexTimeSeries []IndexPoint

// BandSample carries the three Sentinel-2 reflectance bands the derived
// indices are computed from (B3 green, B4 red, B8 near-infrared).
type BandSample struct {
	Green float64 `json:"green"`
	Red   float64 `json:"red"`
	NIR   float64 `json:"nir"`
}

// Scene is one cloud-filtered satellite pass over the buffered area,
// with reflectances sampled at the incident point and averaged over
// the whole zone.
type Scene struct {
	AcquiredAt time.Time  `json:"acquired_at"`
	CloudCover float64    `json:"cloud_cover"` // cloudy-pixel fraction, percent
	Point      BandSample `json:"point"`
	AreaMean   BandSample `json:"area_mean"`
}

// LandCoverHistogram maps French land-cover class names to sampled
// pixel counts. Keys present depend on what was actually sampled.
type LandCoverHistogram map[string]int

// Total returns the number of pixels sampled across all classes.
func (h LandCoverHistogram) Total() int {
	total := 0
	for _, count := range h {
		total += count
	}
	return total
}

// ChartArtifact is a rendered chart, base64 PNG, ready to embed in a
// JSON response. Placeholder marks a degraded render (empty input or an
// isolated render failure).
type ChartArtifact struct {
	PNGBase64   string `json:"png_base64"`
	ContentType string `json:"content_type"`
	Placeholder bool   `json:"placeholder"`
}

// RawData is the numeric bundle behind the charts and narrative,
// returned verbatim so clients can re-plot or export it.
type RawData struct {
	NDVI      IndexTimeSeries    `json:"ndvi"`
	NDWI      IndexTimeSeries    `json:"ndwi"`
	LandCover LandCoverHistogram `json:"landcover"`
}

// AnalysisResult is the terminal bundle of one pipeline run. Assembled
// once and never mutated.
type AnalysisResult struct {
	Narrative        string        `json:"textual_analysis"`
	LineChart        ChartArtifact `json:"ndvi_ndwi_plot"`
	Heatmap          ChartArtifact `json:"ndvi_heatmap"`
	PieChart         ChartArtifact `json:"landcover_plot"`
	RawData          RawData       `json:"raw_data"`
	NDVIAreaMean     float64       `json:"-"` // NaN when no scene qualified
	NDWIAreaMean     float64       `json:"-"`
	Latitude         float64       `json:"latitude"`
	Longitude        float64       `json:"longitude"`
	LocationResolved bool          `json:"location_resolved"`
}

// GeocodeResult distinguishes a real geocoding hit from the sentinel
// origin fallback, so callers can warn instead of silently analyzing
// the wrong place.
type GeocodeResult struct {
	Lat      float64
	Lon      float64
	Resolved bool
}

// AnalysisReport is a persisted analysis, kept so past incidents can be
// reviewed and exported without re-running the pipeline.
type AnalysisReport struct {
	ID            string             `json:"id"`
	Latitude      float64            `json:"latitude"`
	Longitude     float64            `json:"longitude"`
	LocationLabel string             `json:"location"`
	IncidentType  string             `json:"incident_type"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
	Narrative     string             `json:"textual_analysis"`
	NDVI          IndexTimeSeries    `json:"ndvi"`
	NDWI          IndexTimeSeries    `json:"ndwi"`
	LandCover     LandCoverHistogram `json:"landcover"`
	CreatedAt     time.Time          `json:"created_at"`
}
