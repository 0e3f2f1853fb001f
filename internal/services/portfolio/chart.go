package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/smartfolio-app/smartfolio/internal/models"
)

// RenderAllocationChart renders the portfolio allocation by market value as
// a PNG bar chart. Returns raw PNG bytes.
func RenderAllocationChart(valuation *models.PortfolioValuation) ([]byte, error) {
	if len(valuation.Holdings) == 0 {
		return nil, fmt.Errorf("no holdings to chart")
	}

	bars := make([]chart.Value, 0, len(valuation.Holdings))
	for _, h := range valuation.Holdings {
		if h.MarketValue <= 0 {
			continue
		}
		bars = append(bars, chart.Value{
			Label: h.Ticker,
			Value: h.MarketValue,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
				StrokeColor: drawing.ColorFromHex("2563eb"),
			},
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no holdings with positive market value")
	}

	graph := chart.BarChart{
		Title:  "Portfolio Allocation",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth: 60,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0fk", f/1000)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
