package dashboard

import (
	"fmt"
	"math"

	"dining-staff-dashboard/pkg/models"
)

// WorkerType is one of the six fixed staffing categories. Key is the name the
// prediction service uses in PredictionPoint.Workers.
type WorkerType struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// WorkerTypes lists the categories in chart order. The order and colors are
// part of the chart contract.
var WorkerTypes = []WorkerType{
	{Key: "General Purpose Worker", Label: "General Purpose", Color: "#FF6384"},
	{Key: "Cashier", Label: "Cashier", Color: "#36A2EB"},
	{Key: "Chef", Label: "Chef", Color: "#FFCE56"},
	{Key: "Line Workers", Label: "Line Workers", Color: "#4BC0C0"},
	{Key: "Dishwasher", Label: "Dishwasher", Color: "#9966FF"},
	{Key: "Management", Label: "Management", Color: "#FF9F40"},
}

// HoursPerShift is the shift length used to turn hours into a headcount.
const HoursPerShift = 8.0

// Hours returns the predicted hours for wt in p, or 0 when absent.
func (wt WorkerType) Hours(p models.PredictionPoint) float64 {
	if h, ok := p.Workers[wt.Key]; ok {
		return h
	}
	return p.Workers[wt.Label]
}

// EstimateWorkers converts hours into a headcount: max(1, round(hours/8)).
func EstimateWorkers(hours float64) int {
	n := int(math.Round(hours / HoursPerShift))
	if n < 1 {
		return 1
	}
	return n
}

// Chart is a live chart instance owned by one controller.
type Chart interface {
	ID() string
	Destroy()
}

// ChartRenderer is the injected charting capability.
type ChartRenderer interface {
	RenderStacked(chart StackedChart) (Chart, error)
	RenderDoughnut(chart DoughnutChart) (Chart, error)
}

// Dataset is one stacked segment series.
type Dataset struct {
	Label  string    `json:"label"`
	Color  string    `json:"color"`
	Values []float64 `json:"values"`
}

// StackedChart is the primary chart: one bar group per date, one stacked
// segment per worker type, hours on the y axis.
type StackedChart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	XTitle   string    `json:"x_title"`
	YTitle   string    `json:"y_title"`
}

// DoughnutChart is the detail chart for a single date.
type DoughnutChart struct {
	Title      string    `json:"title"`
	Labels     []string  `json:"labels"`
	Values     []float64 `json:"values"`
	Colors     []string  `json:"colors"`
	Headcounts []int     `json:"headcounts"`
	Tooltips   []string  `json:"tooltips"`
}

// BuildStacked binds a series into the stacked bar chart data.
func BuildStacked(series []models.PredictionPoint) StackedChart {
	chart := StackedChart{
		Labels:   make([]string, len(series)),
		Datasets: make([]Dataset, len(WorkerTypes)),
		XTitle:   "Date",
		YTitle:   "Hours",
	}
	for i, p := range series {
		chart.Labels[i] = p.Date
	}
	for i, wt := range WorkerTypes {
		values := make([]float64, len(series))
		for j, p := range series {
			values[j] = wt.Hours(p)
		}
		chart.Datasets[i] = Dataset{Label: wt.Label, Color: wt.Color, Values: values}
	}
	return chart
}

// BuildDoughnut binds one point's worker hours into the detail chart data.
func BuildDoughnut(p models.PredictionPoint) DoughnutChart {
	chart := DoughnutChart{Title: p.Date}
	for _, wt := range WorkerTypes {
		hours := wt.Hours(p)
		n := EstimateWorkers(hours)
		chart.Labels = append(chart.Labels, wt.Label)
		chart.Values = append(chart.Values, hours)
		chart.Colors = append(chart.Colors, wt.Color)
		chart.Headcounts = append(chart.Headcounts, n)
		chart.Tooltips = append(chart.Tooltips, fmt.Sprintf("%s: %.1f hours (~%d workers)", wt.Label, hours, n))
	}
	return chart
}

// WorkerEstimate is a row of the detail breakdown.
type WorkerEstimate struct {
	Type    string  `json:"type"`
	Hours   float64 `json:"hours"`
	Workers int     `json:"workers"`
}

// Breakdown lists the hours and estimated headcount per worker type.
func Breakdown(p models.PredictionPoint) []WorkerEstimate {
	rows := make([]WorkerEstimate, 0, len(WorkerTypes))
	for _, wt := range WorkerTypes {
		h := wt.Hours(p)
		rows = append(rows, WorkerEstimate{Type: wt.Label, Hours: h, Workers: EstimateWorkers(h)})
	}
	return rows
}
