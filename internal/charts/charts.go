package charts

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoData signals that there is nothing to plot yet, so handlers can
// answer with an empty status instead of a broken image.
var ErrNoData = errors.New("no data to chart")

// MoodTrendPNG renders the ordered mood scores as a line chart. At least
// two points are needed to draw a line.
func MoodTrendPNG(scores []float64) ([]byte, error) {
	if len(scores) < 2 {
		return nil, ErrNoData
	}
	xs := make([]float64, len(scores))
	for i := range scores {
		xs[i] = float64(i + 1)
	}

	graph := chart.Chart{
		Title:  "Mood Trend Over Time",
		Width:  800,
		Height: 400,
		XAxis:  chart.XAxis{Name: "Check-in"},
		YAxis: chart.YAxis{
			Name:  "Mood Level",
			Range: &chart.ContinuousRange{Min: -1.5, Max: 1.5},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: scores},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render mood trend: %w", err)
	}
	return buf.Bytes(), nil
}

// EmotionPiePNG renders the emotion distribution as a pie chart. Labels
// are sorted so the output is deterministic for a given distribution.
func EmotionPiePNG(distribution map[string]int) ([]byte, error) {
	labels := make([]string, 0, len(distribution))
	for label, count := range distribution {
		if count > 0 {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return nil, ErrNoData
	}
	sort.Strings(labels)

	values := make([]chart.Value, 0, len(labels))
	for _, label := range labels {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", label, distribution[label]),
			Value: float64(distribution[label]),
		})
	}

	pie := chart.PieChart{
		Title:  "Emotion Distribution",
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render emotion pie: %w", err)
	}
	return buf.Bytes(), nil
}
