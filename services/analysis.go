package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"map-action-api/models"
)

// AnalysisService runs the incident analysis pipeline: geocode, fetch
// the vegetation/water and land-cover signals, render the charts, and
// synthesize the narrative. All state is per request; nothing is shared
// or cached across invocations, so concurrent requests stay isolated.
type AnalysisService struct {
	geocoder  *Geocoder
	extractor *Extractor
	sampler   *LandCoverSampler
}

// NewAnalysisService wires the pipeline from its collaborators.
func NewAnalysisService(geocoder *Geocoder, extractor *Extractor, sampler *LandCoverSampler) *AnalysisService {
	return &AnalysisService{
		geocoder:  geocoder,
		extractor: extractor,
		sampler:   sampler,
	}
}

// AnalyzeIncidentZone turns one analysis request into the full result
// bundle. The two external data fetches are independent and run
// concurrently; both must complete before rendering and narrative
// generation. An imagery or land-cover transport failure aborts the
// request; empty data does not, it flows through as insufficient-data
// markers. Chart render failures are isolated per chart.
func (s *AnalysisService) AnalyzeIncidentZone(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	log.Printf("Analyzing incident zone for %s at %s", req.IncidentType, req.LocationLabel)

	lat, lon := req.Latitude, req.Longitude
	resolved := false
	if lat == 0 && lon == 0 && req.LocationLabel != "" {
		geo := s.geocoder.Resolve(ctx, req.LocationLabel)
		lat, lon, resolved = geo.Lat, geo.Lon, geo.Resolved
	}

	area := models.NewBufferedArea(lat, lon)

	var (
		wg         sync.WaitGroup
		extraction Extraction
		landcover  models.LandCoverHistogram
		extractErr error
		sampleErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		extraction, extractErr = s.extractor.Extract(ctx, area, req.StartDate, req.EndDate)
	}()
	go func() {
		defer wg.Done()
		landcover, sampleErr = s.sampler.Sample(ctx, area)
	}()
	wg.Wait()

	if extractErr != nil {
		return nil, fmt.Errorf("vegetation/water extraction: %w", extractErr)
	}
	if sampleErr != nil {
		return nil, fmt.Errorf("land-cover sampling: %w", sampleErr)
	}
	if landcover == nil {
		landcover = models.LandCoverHistogram{}
	}

	result := &models.AnalysisResult{
		Narrative:        Synthesize(extraction.NDVI, extraction.NDWI, landcover, req.IncidentType),
		LineChart:        renderOrPlaceholder("ndvi_ndwi_plot", func() (models.ChartArtifact, error) { return RenderIndexLineChart(extraction.NDVI, extraction.NDWI) }),
		Heatmap:          renderOrPlaceholder("ndvi_heatmap", func() (models.ChartArtifact, error) { return RenderNDVIHeatmap(extraction.NDVI) }),
		PieChart:         renderOrPlaceholder("landcover_plot", func() (models.ChartArtifact, error) { return RenderLandCoverPie(landcover) }),
		RawData:          models.RawData{NDVI: extraction.NDVI, NDWI: extraction.NDWI, LandCover: landcover},
		NDVIAreaMean:     extraction.NDVIMean,
		NDWIAreaMean:     extraction.NDWIMean,
		Latitude:         lat,
		Longitude:        lon,
		LocationResolved: resolved,
	}
	return result, nil
}

// renderOrPlaceholder isolates a chart render failure to that chart:
// the failed render is logged and replaced by the insufficient-data
// panel so the rest of the bundle still returns.
func renderOrPlaceholder(name string, render func() (models.ChartArtifact, error)) models.ChartArtifact {
	artifact, err := render()
	if err == nil {
		return artifact
	}
	log.Printf("rendering %s failed, substituting placeholder: %v", name, err)
	placeholder, perr := placeholderChart(name)
	if perr != nil {
		// The placeholder panel draws nothing variable; if even that
		// fails the artifact stays empty but flagged.
		return models.ChartArtifact{ContentType: "image/png", Placeholder: true}
	}
	return placeholder
}
