package services

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"map-action-api/models"
)

// decodeArtifact checks an artifact is a well-formed PNG payload.
func decodeArtifact(t *testing.T, artifact models.ChartArtifact) {
	t.Helper()
	if artifact.ContentType != "image/png" {
		t.Fatalf("content type = %q, want image/png", artifact.ContentType)
	}
	raw, err := base64.StdEncoding.DecodeString(artifact.PNGBase64)
	if err != nil {
		t.Fatalf("artifact is not valid base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("artifact is not a decodable PNG: %v", err)
	}
}

func TestRenderIndexLineChart(t *testing.T) {
	ndvi := seriesOf(0.2, 0.3, 0.4, 0.5, 0.6)
	ndwi := seriesOf(0.1, 0.1, 0.1, 0.1, 0.1)

	artifact, err := RenderIndexLineChart(ndvi, ndwi)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	decodeArtifact(t, artifact)
	if artifact.Placeholder {
		t.Error("populated series should not render a placeholder")
	}
}

func TestRenderIndexLineChartEmptyInput(t *testing.T) {
	artifact, err := RenderIndexLineChart(nil, nil)
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if !artifact.Placeholder {
		t.Error("empty input should render a placeholder")
	}
	decodeArtifact(t, artifact)
}

func TestRenderIndexLineChartSinglePoint(t *testing.T) {
	// One observation cannot form a line; must degrade, not fail.
	artifact, err := RenderIndexLineChart(seriesOf(0.4), seriesOf(0.1))
	if err != nil {
		t.Fatalf("single point must not error: %v", err)
	}
	if !artifact.Placeholder {
		t.Error("single point should render a placeholder")
	}
}

func TestRenderNDVIHeatmap(t *testing.T) {
	artifact, err := RenderNDVIHeatmap(seriesOf(0.2, 0.3, 0.4, 0.5, 0.6, 0.5))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	decodeArtifact(t, artifact)
	if artifact.Placeholder {
		t.Error("populated series should not render a placeholder")
	}
}

func TestRenderNDVIHeatmapConstantSeries(t *testing.T) {
	// Degenerate value range must not divide by zero.
	artifact, err := RenderNDVIHeatmap(seriesOf(0.4, 0.4, 0.4))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	decodeArtifact(t, artifact)
}

func TestRenderNDVIHeatmapEmptyInput(t *testing.T) {
	artifact, err := RenderNDVIHeatmap(nil)
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if !artifact.Placeholder {
		t.Error("empty input should render a placeholder")
	}
	decodeArtifact(t, artifact)
}

func TestRenderLandCoverPie(t *testing.T) {
	hist := models.LandCoverHistogram{
		"Couverture arborée": 500,
		"Prairies":           300,
		"Zones bâties":       150,
		"Inconnu":            50,
	}
	artifact, err := RenderLandCoverPie(hist)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	decodeArtifact(t, artifact)
	if artifact.Placeholder {
		t.Error("populated histogram should not render a placeholder")
	}
}

func TestRenderLandCoverPieDeterministic(t *testing.T) {
	hist := models.LandCoverHistogram{"Prairies": 400, "Arbustes": 400, "Inconnu": 200}
	first, err := RenderLandCoverPie(hist)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := RenderLandCoverPie(hist)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if again.PNGBase64 != first.PNGBase64 {
			t.Fatalf("run %d: pie render not deterministic for identical input", i)
		}
	}
}

func TestRenderLandCoverPieEmptyInput(t *testing.T) {
	artifact, err := RenderLandCoverPie(models.LandCoverHistogram{})
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if !artifact.Placeholder {
		t.Error("empty histogram should render a placeholder")
	}
	decodeArtifact(t, artifact)
}
