package services

import (
	"context"
	"errors"
	"testing"

	"map-action-api/models"
)

type stubLandCover struct {
	counts       map[int]int
	err          error
	gotNumPixels int
}

func (s *stubLandCover) SamplePixels(_ context.Context, _ models.BufferedArea, numPixels int) (map[int]int, error) {
	s.gotNumPixels = numPixels
	return s.counts, s.err
}

func TestSampleRemapsKnownClasses(t *testing.T) {
	source := &stubLandCover{counts: map[int]int{10: 600, 40: 300, 80: 100}}
	sampler := NewLandCoverSampler(source)

	hist, err := sampler.Sample(context.Background(), models.NewBufferedArea(12.65, -8.0))
	if err != nil {
		t.Fatalf("sample: %v", err)
	}

	want := models.LandCoverHistogram{
		"Couverture arborée":     600,
		"Terres cultivées":       300,
		"Plans d'eau permanents": 100,
	}
	for name, count := range want {
		if hist[name] != count {
			t.Errorf("%s = %d, want %d", name, hist[name], count)
		}
	}
	if source.gotNumPixels != LandCoverSampleSize {
		t.Errorf("sample size = %d, want %d", source.gotNumPixels, LandCoverSampleSize)
	}
}

func TestSampleUnknownCodesBucket(t *testing.T) {
	source := &stubLandCover{counts: map[int]int{10: 500, 42: 300, 255: 200}}
	sampler := NewLandCoverSampler(source)

	hist, err := sampler.Sample(context.Background(), models.NewBufferedArea(0, 0))
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if hist[UnknownLandCover] != 500 {
		t.Errorf("unknown bucket = %d, want 500", hist[UnknownLandCover])
	}
}

func TestSampleHistogramSumsToSample(t *testing.T) {
	counts := map[int]int{10: 123, 20: 456, 30: 321, 99: 100}
	sampler := NewLandCoverSampler(&stubLandCover{counts: counts})

	hist, err := sampler.Sample(context.Background(), models.NewBufferedArea(0, 0))
	if err != nil {
		t.Fatalf("sample: %v", err)
	}

	wantTotal := 0
	for _, c := range counts {
		wantTotal += c
	}
	if hist.Total() != wantTotal {
		t.Errorf("histogram total = %d, want %d", hist.Total(), wantTotal)
	}
	for name, count := range hist {
		if count < 0 {
			t.Errorf("negative count for %s: %d", name, count)
		}
	}
}

func TestSampleEmptyResultIsValid(t *testing.T) {
	sampler := NewLandCoverSampler(&stubLandCover{counts: map[int]int{}})
	hist, err := sampler.Sample(context.Background(), models.NewBufferedArea(0, 0))
	if err != nil {
		t.Fatalf("empty sample must not error: %v", err)
	}
	if hist.Total() != 0 {
		t.Errorf("total = %d, want 0", hist.Total())
	}
}

func TestSamplePropagatesSourceFailure(t *testing.T) {
	sampler := NewLandCoverSampler(&stubLandCover{err: ErrExternalService})
	if _, err := sampler.Sample(context.Background(), models.NewBufferedArea(0, 0)); !errors.Is(err, ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}
}
