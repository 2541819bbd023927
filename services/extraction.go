package services

import (
	"context"
	"math"
	"sort"
	"time"

	"map-action-api/models"
)

// MaxCloudyPixelPct is the cloud filter applied to every catalog query:
// scenes with a higher cloudy-pixel fraction are excluded from analysis.
const MaxCloudyPixelPct = 20

// Extractor derives the NDVI and NDWI signals from the imagery catalog.
type Extractor struct {
	catalog ImageryCatalog
}

// NewExtractor builds an extractor over the given catalog.
func NewExtractor(catalog ImageryCatalog) *Extractor {
	return &Extractor{catalog: catalog}
}

// Extraction bundles what one extraction run produced. Both series are
// ordered by ascending acquisition date and always have equal length,
// since both indices derive from the same scene list. The area means
// are NaN when no scene qualified.
type Extraction struct {
	NDVI     models.IndexTimeSeries
	NDWI     models.IndexTimeSeries
	NDVIMean float64
	NDWIMean float64
}

// Extract queries the cloud-filtered scene collection for the buffered
// area and window, computes both normalized-difference indices per
// scene, and reduces them to point time series plus area means.
// Zero qualifying scenes is not an error: the series come back empty
// and the means NaN, and downstream stages report insufficient data.
func (e *Extractor) Extract(ctx context.Context, area models.BufferedArea, start, end time.Time) (Extraction, error) {
	out := Extraction{NDVIMean: math.NaN(), NDWIMean: math.NaN()}

	scenes, err := e.catalog.QueryScenes(ctx, area, start, end, MaxCloudyPixelPct)
	if err != nil {
		return out, err
	}
	if len(scenes) == 0 {
		return out, nil
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].AcquiredAt.Before(scenes[j].AcquiredAt)
	})

	var ndviAreaSum, ndwiAreaSum float64
	var areaCount int

	for _, scene := range scenes {
		ndvi := normalizedDifference(scene.Point.NIR, scene.Point.Red)
		ndwi := normalizedDifference(scene.Point.Green, scene.Point.NIR)

		// A scene with no valid pixel coverage at the point is dropped
		// from both series together, so they never desynchronize.
		if !math.IsNaN(ndvi) && !math.IsNaN(ndwi) {
			out.NDVI = append(out.NDVI, models.IndexPoint{Date: scene.AcquiredAt, Value: ndvi})
			out.NDWI = append(out.NDWI, models.IndexPoint{Date: scene.AcquiredAt, Value: ndwi})
		}

		areaNDVI := normalizedDifference(scene.AreaMean.NIR, scene.AreaMean.Red)
		areaNDWI := normalizedDifference(scene.AreaMean.Green, scene.AreaMean.NIR)
		if !math.IsNaN(areaNDVI) && !math.IsNaN(areaNDWI) {
			ndviAreaSum += areaNDVI
			ndwiAreaSum += areaNDWI
			areaCount++
		}
	}

	if areaCount > 0 {
		out.NDVIMean = ndviAreaSum / float64(areaCount)
		out.NDWIMean = ndwiAreaSum / float64(areaCount)
	}
	return out, nil
}

// normalizedDifference is the standard (a-b)/(a+b) band-math form.
// NDVI uses (NIR, Red), NDWI uses (Green, NIR). Returns NaN when the
// denominator vanishes (no valid reflectance).
func normalizedDifference(a, b float64) float64 {
	sum := a + b
	if sum == 0 {
		return math.NaN()
	}
	return (a - b) / sum
}
