package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/utils"
)

// ErrNoChartData is returned when no entry matches the charted level
var ErrNoChartData = errors.New("no entries to chart")

const (
	chartHeight   = 600
	minChartWidth = 800
	pxPerRole     = 70
)

var (
	bandColor = drawing.ColorFromHex("8fc1e3")
	lowColor  = drawing.ColorFromHex("31708e")
	midColor  = drawing.ColorFromHex("5085a5")
)

// ParseChartFormat maps "png" or "svg" to a go-chart renderer
func ParseChartFormat(format string) (chart.RendererProvider, error) {
	switch strings.ToLower(format) {
	case "png":
		return chart.PNG, nil
	case "svg":
		return chart.SVG, nil
	}
	return nil, fmt.Errorf("unsupported chart format %q (want png or svg)", format)
}

// atLevel keeps one entry per role at the given level, in entry order
func atLevel(entries []Entry, level models.LevelKey) []Entry {
	seen := make(map[models.RoleKey]bool)
	var out []Entry
	for _, e := range entries {
		if e.Result.Level != level || seen[e.Result.Role] {
			continue
		}
		seen[e.Result.Role] = true
		out = append(out, e)
	}
	return out
}

func chartWidth(n int) int {
	if w := n*pxPerRole + 200; w > minChartWidth {
		return w
	}
	return minChartWidth
}

func moneyTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return utils.FormatUSD(f)
	}
	return ""
}

// BarChart renders the mid forecast of every role at one level
func BarChart(w io.Writer, entries []Entry, level models.LevelKey, title, format string) error {
	provider, err := ParseChartFormat(format)
	if err != nil {
		return err
	}
	rows := atLevel(entries, level)
	if len(rows) == 0 {
		return fmt.Errorf("%s level: %w", level, ErrNoChartData)
	}

	var bars []chart.Value
	top := 0.0
	for _, e := range rows {
		bars = append(bars, chart.Value{
			Label: string(e.Result.Role),
			Value: e.Result.FinalMid,
			Style: chart.Style{FillColor: midColor, StrokeColor: midColor},
		})
		top = math.Max(top, e.Result.FinalMid)
	}

	graph := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 50, Bottom: 120}},
		Width:      chartWidth(len(bars)),
		Height:     chartHeight,
		BarWidth:   pxPerRole / 2,
		BarSpacing: pxPerRole / 2,
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: moneyTick,
		},
		Bars: bars,
	}
	return graph.Render(provider, w)
}

// RangeChart renders the low to high band of every role at one level
func RangeChart(w io.Writer, entries []Entry, level models.LevelKey, title, format string) error {
	provider, err := ParseChartFormat(format)
	if err != nil {
		return err
	}
	rows := atLevel(entries, level)
	if len(rows) == 0 {
		return fmt.Errorf("%s level: %w", level, ErrNoChartData)
	}

	xs := make([]float64, len(rows))
	lows := make([]float64, len(rows))
	highs := make([]float64, len(rows))
	ticks := make([]chart.Tick, len(rows))
	top := 0.0
	for i, e := range rows {
		xs[i] = float64(i)
		lows[i] = e.Result.FinalLow
		highs[i] = e.Result.FinalHigh
		ticks[i] = chart.Tick{Value: float64(i), Label: string(e.Result.Role)}
		top = math.Max(top, e.Result.FinalHigh)
	}

	// the high series is filled down to the axis and the low series paints
	// the area under it white, leaving the band between them coloured
	graph := chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Bottom: 20}},
		Width:      chartWidth(len(rows)),
		Height:     chartHeight,
		XAxis: chart.XAxis{
			Range:     &chart.ContinuousRange{Min: -0.5, Max: float64(len(rows)) - 0.5},
			Ticks:     ticks,
			TickStyle: chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: moneyTick,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "high",
				XValues: xs,
				YValues: highs,
				Style:   chart.Style{StrokeColor: bandColor, FillColor: bandColor, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "low",
				XValues: xs,
				YValues: lows,
				Style:   chart.Style{StrokeColor: lowColor, FillColor: drawing.ColorWhite, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(provider, w)
}
