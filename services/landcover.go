package services

import (
	"context"

	"map-action-api/models"
)

// LandCoverSampleSize is the fixed number of pixels drawn from the
// land-cover raster per analysis.
const LandCoverSampleSize = 1000

// UnknownLandCover is the bucket for raster codes outside the known
// classification table.
const UnknownLandCover = "Inconnu"

// landCoverClasses maps ESA WorldCover class codes to the French class
// names used throughout the narrative and charts.
var landCoverClasses = map[int]string{
	10:  "Couverture arborée",
	20:  "Arbustes",
	30:  "Prairies",
	40:  "Terres cultivées",
	50:  "Zones bâties",
	60:  "Végétation clairsemée/nue",
	70:  "Neige/Glace",
	80:  "Plans d'eau permanents",
	90:  "Zones humides herbacées",
	95:  "Mangroves",
	100: "Mousses/Lichens",
}

// TreeCoverClass is the class the deforestation narrative branch keys on.
const TreeCoverClass = "Couverture arborée"

// LandCoverSampler aggregates raster samples into a named histogram.
type LandCoverSampler struct {
	source LandCoverSource
}

// NewLandCoverSampler builds a sampler over the given raster source.
func NewLandCoverSampler(source LandCoverSource) *LandCoverSampler {
	return &LandCoverSampler{source: source}
}

// Sample draws the fixed-size stratified sample inside the buffered
// area and remaps numeric class codes to named classes; codes outside
// the table accumulate under Inconnu. An empty histogram is a valid
// result (no raster coverage), not an error.
func (s *LandCoverSampler) Sample(ctx context.Context, area models.BufferedArea) (models.LandCoverHistogram, error) {
	counts, err := s.source.SamplePixels(ctx, area, LandCoverSampleSize)
	if err != nil {
		return nil, err
	}

	histogram := make(models.LandCoverHistogram, len(counts))
	for code, count := range counts {
		name, ok := landCoverClasses[code]
		if !ok {
			name = UnknownLandCover
		}
		histogram[name] += count
	}
	return histogram, nil
}
