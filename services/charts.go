package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fogleman/gg"
	"github.com/wcharczuk/go-chart/v2"

	"map-action-api/models"
)

// French month abbreviations used on chart axes regardless of the
// process locale.
var frenchMonths = map[time.Month]string{
	time.January: "Janv", time.February: "Févr", time.March: "Mars",
	time.April: "Avril", time.May: "Mai", time.June: "Juin",
	time.July: "Juil", time.August: "Août", time.September: "Sept",
	time.October: "Oct", time.November: "Nov", time.December: "Déc",
}

const insufficientDataLabel = "Données insuffisantes"

// RenderIndexLineChart plots both index series over the shared date
// axis: NDVI in green, NDWI in blue, x-axis ticked at 3-month
// intervals. Fewer than two points per series cannot form a line, so
// such input degrades to a placeholder artifact without error.
func RenderIndexLineChart(ndvi, ndwi models.IndexTimeSeries) (models.ChartArtifact, error) {
	if len(ndvi) < 2 || len(ndwi) < 2 {
		return placeholderChart("Séries temporelles du NDVI et du NDWI")
	}

	graph := chart.Chart{
		Title:  "Séries temporelles du NDVI et du NDWI",
		Width:  1200,
		Height: 600,
		XAxis: chart.XAxis{
			Name:  "Date",
			Ticks: quarterlyTicks(ndvi[0].Date, ndvi[len(ndvi)-1].Date),
			TickStyle: chart.Style{
				TextRotationDegrees: 45,
			},
		},
		YAxis: chart.YAxis{
			Name: "Valeur de l'indice",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "NDVI (végétation)",
				XValues: seriesDates(ndvi),
				YValues: seriesValues(ndvi),
				Style: chart.Style{
					StrokeColor: chart.ColorGreen,
					DotColor:    chart.ColorGreen,
					DotWidth:    4,
				},
			},
			chart.TimeSeries{
				Name:    "NDWI (eau)",
				XValues: seriesDates(ndwi),
				YValues: seriesValues(ndwi),
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return models.ChartArtifact{}, fmt.Errorf("%w: line chart: %v", ErrRenderFailed, err)
	}
	return pngArtifact(buf.Bytes(), false), nil
}

// quarterlyTicks builds x-axis ticks every 3 months from the month of
// the first observation through the month after the last one.
func quarterlyTicks(first, last time.Time) []chart.Tick {
	start := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	var ticks []chart.Tick
	for t := start; !t.After(last.AddDate(0, 3, 0)); t = t.AddDate(0, 3, 0) {
		ticks = append(ticks, chart.Tick{
			Value: float64(t.UnixNano()),
			Label: fmt.Sprintf("%s %d", frenchMonths[t.Month()], t.Year()),
		})
	}
	return ticks
}

func seriesDates(series models.IndexTimeSeries) []time.Time {
	dates := make([]time.Time, len(series))
	for i, p := range series {
		dates[i] = p.Date
	}
	return dates
}

func seriesValues(series models.IndexTimeSeries) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}
	return values
}

// RenderNDVIHeatmap pivots the NDVI series into a day-of-month by month
// grid, averaging duplicate (day, month) entries, and renders it as a
// yellow-to-green intensity grid with a color bar. Sparse grids are
// expected with fewer than twelve months of data. Empty input degrades
// to a placeholder.
func RenderNDVIHeatmap(ndvi models.IndexTimeSeries) (models.ChartArtifact, error) {
	if len(ndvi) == 0 {
		return placeholderChart("Carte thermique du NDVI")
	}

	// Pivot: sums[day][month] with day 1..31, month 1..12.
	type cell struct {
		sum   float64
		count int
	}
	grid := map[int]map[time.Month]*cell{}
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range ndvi {
		day := p.Date.Day()
		if grid[day] == nil {
			grid[day] = map[time.Month]*cell{}
		}
		if grid[day][p.Date.Month()] == nil {
			grid[day][p.Date.Month()] = &cell{}
		}
		grid[day][p.Date.Month()].sum += p.Value
		grid[day][p.Date.Month()].count++
	}
	for _, row := range grid {
		for _, c := range row {
			avg := c.sum / float64(c.count)
			minVal = math.Min(minVal, avg)
			maxVal = math.Max(maxVal, avg)
		}
	}

	const (
		width      = 960
		height     = 760
		marginLeft = 70
		marginTop  = 80
		marginBot  = 50
		barWidth   = 24
		barGap     = 30
	)
	plotW := float64(width - marginLeft - barWidth - barGap - 40)
	plotH := float64(height - marginTop - marginBot)
	cellW := plotW / 12
	cellH := plotH / 31

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored("Carte thermique du NDVI", float64(width)/2, 28, 0.5, 0.5)
	dc.DrawStringAnchored("Le NDVI mesure la santé de la végétation", float64(width)/2, 48, 0.5, 0.5)

	// Grid cells
	for day := 1; day <= 31; day++ {
		for m := time.January; m <= time.December; m++ {
			x := float64(marginLeft) + float64(m-1)*cellW
			y := float64(marginTop) + float64(day-1)*cellH
			c, ok := grid[day][m]
			if ok {
				r, g, bl := heatColor(c.sum/float64(c.count), minVal, maxVal)
				dc.SetRGB(r, g, bl)
			} else {
				dc.SetRGB(0.94, 0.94, 0.94)
			}
			dc.DrawRectangle(x, y, cellW-1, cellH-1)
			dc.Fill()
		}
	}

	// Axis labels
	dc.SetRGB(0.1, 0.1, 0.1)
	for m := time.January; m <= time.December; m++ {
		x := float64(marginLeft) + (float64(m-1)+0.5)*cellW
		dc.DrawStringAnchored(frenchMonths[m], x, float64(height-marginBot)+16, 0.5, 0.5)
	}
	for day := 1; day <= 31; day += 2 {
		y := float64(marginTop) + (float64(day-1)+0.5)*cellH
		dc.DrawStringAnchored(fmt.Sprintf("%d", day), float64(marginLeft)-14, y, 0.5, 0.5)
	}
	dc.DrawStringAnchored("Mois", float64(marginLeft)+plotW/2, float64(height)-12, 0.5, 0.5)

	// Color bar
	barX := float64(marginLeft) + plotW + barGap
	for i := 0; i < int(plotH); i++ {
		frac := 1 - float64(i)/plotH
		r, g, bl := heatColor(minVal+frac*(maxVal-minVal), minVal, maxVal)
		dc.SetRGB(r, g, bl)
		dc.DrawRectangle(barX, float64(marginTop)+float64(i), barWidth, 1)
		dc.Fill()
	}
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", maxVal), barX+barWidth+6, float64(marginTop)+6, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", minVal), barX+barWidth+6, float64(marginTop)+plotH-6, 0, 0.5)

	return encodeContext(dc, false)
}

// heatColor maps a value to the yellow-to-green ramp. A degenerate
// range (single value) lands mid-ramp.
func heatColor(v, minVal, maxVal float64) (r, g, b float64) {
	frac := 0.5
	if maxVal > minVal {
		frac = (v - minVal) / (maxVal - minVal)
	}
	// pale yellow (1.0, 1.0, 0.78) -> dark green (0.0, 0.35, 0.13)
	r = 1.0 + frac*(0.0-1.0)
	g = 1.0 + frac*(0.35-1.0)
	b = 0.78 + frac*(0.13-0.78)
	return r, g, b
}

// piePalette cycles across wedges; twelve entries covers the full
// land-cover class table plus the unknown bucket.
var piePalette = [][3]float64{
	{0.22, 0.49, 0.72}, {0.89, 0.47, 0.22}, {0.30, 0.69, 0.29},
	{0.84, 0.15, 0.16}, {0.58, 0.40, 0.74}, {0.55, 0.34, 0.29},
	{0.89, 0.47, 0.76}, {0.50, 0.50, 0.50}, {0.74, 0.74, 0.13},
	{0.09, 0.75, 0.81}, {0.99, 0.75, 0.44}, {0.70, 0.87, 0.54},
}

// RenderLandCoverPie shows the histogram as proportions of the total
// sample. Wedges carry only their percentage; class names live in a
// side legend so many thin slices stay readable. Wedge order is count
// descending, then name, keeping renders deterministic. An empty
// histogram degrades to a placeholder.
func RenderLandCoverPie(landcover models.LandCoverHistogram) (models.ChartArtifact, error) {
	total := landcover.Total()
	if total == 0 {
		return placeholderChart("Distribution de la couverture terrestre")
	}

	names := make([]string, 0, len(landcover))
	for name := range landcover {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if landcover[names[i]] != landcover[names[j]] {
			return landcover[names[i]] > landcover[names[j]]
		}
		return names[i] < names[j]
	})

	const (
		width  = 900
		height = 620
	)
	cx, cy, radius := 280.0, 330.0, 210.0

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored("Distribution de la couverture terrestre (zone tampon)", float64(width)/2, 28, 0.5, 0.5)
	dc.DrawStringAnchored("Répartition des types de surfaces", float64(width)/2, 48, 0.5, 0.5)

	// Wedges, starting at 140 degrees like the reference rendering.
	angle := gg.Radians(140)
	for i, name := range names {
		frac := float64(landcover[name]) / float64(total)
		sweep := frac * 2 * math.Pi
		col := piePalette[i%len(piePalette)]

		dc.SetRGB(col[0], col[1], col[2])
		dc.MoveTo(cx, cy)
		dc.DrawArc(cx, cy, radius, angle, angle+sweep)
		dc.ClosePath()
		dc.Fill()

		// Percentage label at the wedge midpoint.
		mid := angle + sweep/2
		lx := cx + math.Cos(mid)*radius*0.65
		ly := cy + math.Sin(mid)*radius*0.65
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f%%", frac*100), lx, ly, 0.5, 0.5)

		angle += sweep
	}

	// Legend
	legendX, legendY := 560.0, 140.0
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored("Types de couverture terrestre", legendX, legendY-24, 0, 0.5)
	for i, name := range names {
		col := piePalette[i%len(piePalette)]
		y := legendY + float64(i)*26
		dc.SetRGB(col[0], col[1], col[2])
		dc.DrawRectangle(legendX, y-7, 14, 14)
		dc.Fill()
		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawStringAnchored(name, legendX+22, y, 0, 0.5)
	}

	return encodeContext(dc, false)
}

// placeholderChart renders the fixed insufficient-data panel used when
// a chart has nothing to show. Never fails the request.
func placeholderChart(title string) (models.ChartArtifact, error) {
	const (
		width  = 800
		height = 400
	)
	dc := gg.NewContext(width, height)
	dc.SetRGB(0.96, 0.96, 0.96)
	dc.Clear()
	dc.SetRGB(0.35, 0.35, 0.35)
	dc.DrawStringAnchored(title, float64(width)/2, float64(height)/2-14, 0.5, 0.5)
	dc.DrawStringAnchored(insufficientDataLabel, float64(width)/2, float64(height)/2+14, 0.5, 0.5)
	return encodeContext(dc, true)
}

func encodeContext(dc *gg.Context, placeholder bool) (models.ChartArtifact, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return models.ChartArtifact{}, fmt.Errorf("%w: encoding png: %v", ErrRenderFailed, err)
	}
	return pngArtifact(buf.Bytes(), placeholder), nil
}

func pngArtifact(png []byte, placeholder bool) models.ChartArtifact {
	return models.ChartArtifact{
		PNGBase64:   base64.StdEncoding.EncodeToString(png),
		ContentType: "image/png",
		Placeholder: placeholder,
	}
}
