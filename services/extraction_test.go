package services

import (
	"context"
	"math"
	"testing"
	"time"

	"map-action-api/models"
)

// stubCatalog serves a canned scene list, recording the query it got.
type stubCatalog struct {
	scenes      []models.Scene
	err         error
	gotMaxCloud float64
}

func (s *stubCatalog) QueryScenes(_ context.Context, _ models.BufferedArea, _, _ time.Time, maxCloudPct float64) ([]models.Scene, error) {
	s.gotMaxCloud = maxCloudPct
	return s.scenes, s.err
}

// sceneWith builds a scene whose point sample yields exactly the given
// NDVI and NDWI values, by inverting the normalized-difference form.
func sceneWith(date time.Time, ndvi, ndwi float64) models.Scene {
	const red = 0.1
	nir := red * (1 + ndvi) / (1 - ndvi)
	green := nir * (1 + ndwi) / (1 - ndwi)
	bands := models.BandSample{Green: green, Red: red, NIR: nir}
	return models.Scene{AcquiredAt: date, CloudCover: 5, Point: bands, AreaMean: bands}
}

func monthlyScenes(n int, ndviStart, ndviEnd, ndwi float64) []models.Scene {
	base := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	scenes := make([]models.Scene, n)
	for i := 0; i < n; i++ {
		ndvi := ndviStart
		if n > 1 {
			ndvi = ndviStart + (ndviEnd-ndviStart)*float64(i)/float64(n-1)
		}
		scenes[i] = sceneWith(base.AddDate(0, i, 0), ndvi, ndwi)
	}
	return scenes
}

func testWindow() (time.Time, time.Time) {
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
}

func TestExtractSeriesOrderedAndPaired(t *testing.T) {
	scenes := monthlyScenes(12, 0.2, 0.6, 0.1)
	// Feed scenes out of order; extraction must sort by acquisition date.
	shuffled := []models.Scene{scenes[5], scenes[0], scenes[11], scenes[3], scenes[8],
		scenes[1], scenes[7], scenes[2], scenes[10], scenes[4], scenes[9], scenes[6]}

	extractor := NewExtractor(&stubCatalog{scenes: shuffled})
	start, end := testWindow()
	got, err := extractor.Extract(context.Background(), models.NewBufferedArea(12.65, -8.0), start, end)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if len(got.NDVI) != 12 || len(got.NDWI) != 12 {
		t.Fatalf("series lengths = %d, %d, want 12, 12", len(got.NDVI), len(got.NDWI))
	}
	for i := 1; i < len(got.NDVI); i++ {
		if got.NDVI[i].Date.Before(got.NDVI[i-1].Date) {
			t.Errorf("NDVI dates not non-decreasing at %d", i)
		}
		if got.NDWI[i].Date.Before(got.NDWI[i-1].Date) {
			t.Errorf("NDWI dates not non-decreasing at %d", i)
		}
	}
	if math.Abs(got.NDVI[0].Value-0.2) > 1e-9 || math.Abs(got.NDVI[11].Value-0.6) > 1e-9 {
		t.Errorf("NDVI endpoints = %v, %v, want 0.2, 0.6", got.NDVI[0].Value, got.NDVI[11].Value)
	}
	for i, p := range got.NDWI {
		if math.Abs(p.Value-0.1) > 1e-9 {
			t.Errorf("NDWI[%d] = %v, want 0.1", i, p.Value)
		}
	}
}

func TestExtractAreaMeans(t *testing.T) {
	extractor := NewExtractor(&stubCatalog{scenes: monthlyScenes(3, 0.2, 0.4, 0.1)})
	start, end := testWindow()
	got, err := extractor.Extract(context.Background(), models.NewBufferedArea(12.65, -8.0), start, end)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if math.Abs(got.NDVIMean-0.3) > 1e-9 {
		t.Errorf("NDVI area mean = %v, want 0.3", got.NDVIMean)
	}
	if math.Abs(got.NDWIMean-0.1) > 1e-9 {
		t.Errorf("NDWI area mean = %v, want 0.1", got.NDWIMean)
	}
}

func TestExtractEmptyCollection(t *testing.T) {
	extractor := NewExtractor(&stubCatalog{})
	start, end := testWindow()
	got, err := extractor.Extract(context.Background(), models.NewBufferedArea(0, 0), start, end)
	if err != nil {
		t.Fatalf("empty collection must not error: %v", err)
	}
	if len(got.NDVI) != 0 || len(got.NDWI) != 0 {
		t.Errorf("series should be empty, got %d, %d", len(got.NDVI), len(got.NDWI))
	}
	if !math.IsNaN(got.NDVIMean) || !math.IsNaN(got.NDWIMean) {
		t.Errorf("means should be NaN with no scenes, got %v, %v", got.NDVIMean, got.NDWIMean)
	}
}

func TestExtractSkipsInvalidSceneFromBothSeries(t *testing.T) {
	scenes := monthlyScenes(3, 0.2, 0.4, 0.1)
	// No reflectance at the point: both indices undefined there.
	scenes[1].Point = models.BandSample{}

	extractor := NewExtractor(&stubCatalog{scenes: scenes})
	start, end := testWindow()
	got, err := extractor.Extract(context.Background(), models.NewBufferedArea(12.65, -8.0), start, end)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(got.NDVI) != len(got.NDWI) {
		t.Fatalf("series desynchronized: %d vs %d", len(got.NDVI), len(got.NDWI))
	}
	if len(got.NDVI) != 2 {
		t.Errorf("series length = %d, want 2 after skipping the invalid scene", len(got.NDVI))
	}
}

func TestExtractAppliesCloudFilter(t *testing.T) {
	catalog := &stubCatalog{}
	extractor := NewExtractor(catalog)
	start, end := testWindow()
	if _, err := extractor.Extract(context.Background(), models.NewBufferedArea(0, 0), start, end); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if catalog.gotMaxCloud != MaxCloudyPixelPct {
		t.Errorf("cloud threshold = %v, want %v", catalog.gotMaxCloud, float64(MaxCloudyPixelPct))
	}
}

func TestExtractPropagatesCatalogFailure(t *testing.T) {
	extractor := NewExtractor(&stubCatalog{err: ErrExternalService})
	start, end := testWindow()
	if _, err := extractor.Extract(context.Background(), models.NewBufferedArea(0, 0), start, end); err == nil {
		t.Fatal("catalog failure must propagate")
	}
}
