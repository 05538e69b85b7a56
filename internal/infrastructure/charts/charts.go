// Package charts renders the dashboard charts as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/turtacn/riskboard/internal/domain/models"
	"github.com/turtacn/riskboard/pkg/constants"
)

// ContentType is the MIME type of rendered charts.
const ContentType = "image/png"

// Renderer draws charts at a fixed size.
type Renderer struct {
	width  vg.Length
	height vg.Length
}

// NewRenderer creates an 8x5 inch renderer.
func NewRenderer() *Renderer {
	return &Renderer{width: 8 * vg.Inch, height: 5 * vg.Inch}
}

// WithSize returns a renderer drawing at width x height.
func (r *Renderer) WithSize(width, height vg.Length) *Renderer {
	return &Renderer{width: width, height: height}
}

// RiskHistogram draws the distribution of risk scores. Missing scores are skipped.
func (r *Renderer) RiskHistogram(scores []float64, bins int) ([]byte, error) {
	p := newPlot("Risk score distribution", "risk_score", "count")

	values := make(plotter.Values, 0, len(scores))
	for _, v := range scores {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	if len(values) > 0 {
		if bins <= 0 {
			bins = 1
		}
		h, err := plotter.NewHist(values, bins)
		if err != nil {
			return nil, fmt.Errorf("histogram: %w", err)
		}
		h.FillColor = plotutil.Color(0)
		p.Add(h)
	}
	return r.encode(p)
}

// SectorRisk draws average risk per sector as horizontal bars.
func (r *Renderer) SectorRisk(rows []models.SectorRisk) ([]byte, error) {
	p := newPlot("Average risk by sector", "average risk", "")
	if len(rows) == 0 {
		return r.encode(p)
	}

	values := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.AverageRisk
		names[i] = row.Sector
	}
	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, fmt.Errorf("sector bars: %w", err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(1)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(names...)
	return r.encode(p)
}

// ClusterSizes draws the frequency table as vertical bars.
func (r *Renderer) ClusterSizes(freqs []models.ClusterFrequency) ([]byte, error) {
	p := newPlot("Cluster sizes", constants.ColumnCluster, constants.ColumnCount)
	if len(freqs) == 0 {
		return r.encode(p)
	}

	values := make(plotter.Values, len(freqs))
	names := make([]string, len(freqs))
	for i, f := range freqs {
		values[i] = float64(f.Count)
		names[i] = f.Cluster
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("cluster bars: %w", err)
	}
	bars.Color = plotutil.Color(2)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	return r.encode(p)
}

// Projection draws the PCA scatter coloured by cluster label.
func (r *Renderer) Projection(proj *models.Projection) ([]byte, error) {
	p := newPlot("PCA projection of cluster data", "PCA1", "PCA2")
	if proj == nil || len(proj.Points) == 0 {
		return r.encode(p)
	}

	order := make([]string, 0)
	groups := make(map[string]plotter.XYs)
	for _, pt := range proj.Points {
		if _, ok := groups[pt.ClusterLabel]; !ok {
			order = append(order, pt.ClusterLabel)
		}
		groups[pt.ClusterLabel] = append(groups[pt.ClusterLabel], plotter.XY{X: pt.Axis1, Y: pt.Axis2})
	}

	for i, label := range order {
		s, err := plotter.NewScatter(groups[label])
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", label, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add("cluster "+label, s)
	}
	p.Add(plotter.NewGrid())
	return r.encode(p)
}

// RevenueVsRisk draws revenue against risk with one series per sector.
// Point area grows with head count; rows with unknown head count use the smallest size.
func (r *Renderer) RevenueVsRisk(points []models.RevenueRiskPoint) ([]byte, error) {
	p := newPlot("Revenue vs risk (size = employees)", "Revenue (M USD)", "risk_score")
	if len(points) == 0 {
		return r.encode(p)
	}

	maxEmployees := 0.0
	order := make([]string, 0)
	groups := make(map[string][]models.RevenueRiskPoint)
	for _, pt := range points {
		if !math.IsNaN(pt.Employees) {
			maxEmployees = math.Max(maxEmployees, pt.Employees)
		}
		sector := pt.Sector
		if sector == "" {
			sector = "unknown"
		}
		if _, ok := groups[sector]; !ok {
			order = append(order, sector)
		}
		groups[sector] = append(groups[sector], pt)
	}

	for i, sector := range order {
		group := groups[sector]
		xys := make(plotter.XYs, len(group))
		for j, pt := range group {
			xys[j] = plotter.XY{X: pt.Revenue, Y: pt.Risk}
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", sector, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(minPointRadius)
		style := s.GlyphStyle
		s.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			g := style
			g.Radius = vg.Points(pointRadius(group[j].Employees, maxEmployees))
			return g
		}
		p.Add(s)
		p.Legend.Add(sector, s)
	}
	p.Add(plotter.NewGrid())
	return r.encode(p)
}

const (
	minPointRadius = 2.0
	maxPointRadius = 12.0
)

// pointRadius scales by the square root so that area tracks head count.
func pointRadius(employees, maxEmployees float64) float64 {
	if math.IsNaN(employees) || employees <= 0 || maxEmployees <= 0 {
		return minPointRadius
	}
	return minPointRadius + (maxPointRadius-minPointRadius)*math.Sqrt(employees/maxEmployees)
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	return p
}

func (r *Renderer) encode(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, fmt.Errorf("png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}
