// Package charts provides the chart capabilities injected into the dashboard
// controller: a Chart.js config registry for the web client, an xlsx
// workbook and a terminal renderer.
package charts

import (
	"sync"

	"dining-staff-dashboard/pkg/dashboard"

	"github.com/google/uuid"
)

// ChartJSDataset is a Chart.js dataset.
type ChartJSDataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor"`
}

// ChartJSData is the data block of a Chart.js config.
type ChartJSData struct {
	Labels   []string         `json:"labels"`
	Datasets []ChartJSDataset `json:"datasets"`
}

// ChartJSConfig is a Chart.js chart configuration that the browser passes
// straight to `new Chart(ctx, config)`.
type ChartJSConfig struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Data    ChartJSData    `json:"data"`
	Options map[string]any `json:"options"`
	// Tooltips は関数を JSON に載せられないため、クライアント側で callback から参照する
	Tooltips []string `json:"tooltips,omitempty"`
}

// ChartJS keeps the live chart configs of one session so that the client can
// fetch and draw them. Destroying a chart removes it from the registry.
type ChartJS struct {
	mu     sync.RWMutex
	charts map[string]ChartJSConfig
}

// NewChartJS creates an empty registry.
func NewChartJS() *ChartJS {
	return &ChartJS{charts: make(map[string]ChartJSConfig)}
}

// RenderStacked registers a stacked bar chart.
func (r *ChartJS) RenderStacked(chart dashboard.StackedChart) (dashboard.Chart, error) {
	datasets := make([]ChartJSDataset, 0, len(chart.Datasets))
	for _, ds := range chart.Datasets {
		datasets = append(datasets, ChartJSDataset{
			Label:           ds.Label,
			Data:            append([]float64(nil), ds.Values...),
			BackgroundColor: ds.Color,
		})
	}
	axis := func(title string, beginAtZero bool) map[string]any {
		a := map[string]any{
			"stacked": true,
			"title":   map[string]any{"display": true, "text": title},
		}
		if beginAtZero {
			a["beginAtZero"] = true
		}
		return a
	}
	cfg := ChartJSConfig{
		Type: "bar",
		Data: ChartJSData{Labels: append([]string(nil), chart.Labels...), Datasets: datasets},
		Options: map[string]any{
			"responsive": true,
			"scales": map[string]any{
				"x": axis(chart.XTitle, false),
				"y": axis(chart.YTitle, true),
			},
		},
	}
	return r.register(cfg), nil
}

// RenderDoughnut registers a doughnut chart.
func (r *ChartJS) RenderDoughnut(chart dashboard.DoughnutChart) (dashboard.Chart, error) {
	cfg := ChartJSConfig{
		Type: "doughnut",
		Data: ChartJSData{
			Labels: append([]string(nil), chart.Labels...),
			Datasets: []ChartJSDataset{{
				Data:            append([]float64(nil), chart.Values...),
				BackgroundColor: append([]string(nil), chart.Colors...),
			}},
		},
		Options: map[string]any{
			"responsive": true,
			"plugins": map[string]any{
				"title":  map[string]any{"display": true, "text": chart.Title},
				"legend": map[string]any{"position": "right"},
			},
		},
		Tooltips: append([]string(nil), chart.Tooltips...),
	}
	return r.register(cfg), nil
}

func (r *ChartJS) register(cfg ChartJSConfig) *chartJSInstance {
	cfg.ID = uuid.New().String()
	r.mu.Lock()
	r.charts[cfg.ID] = cfg
	r.mu.Unlock()
	return &chartJSInstance{id: cfg.ID, registry: r}
}

// Get returns the config of a live chart.
func (r *ChartJS) Get(id string) (ChartJSConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.charts[id]
	return cfg, ok
}

// Alive reports how many charts have not been destroyed.
func (r *ChartJS) Alive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.charts)
}

type chartJSInstance struct {
	id       string
	registry *ChartJS
}

func (c *chartJSInstance) ID() string { return c.id }

func (c *chartJSInstance) Destroy() {
	c.registry.mu.Lock()
	delete(c.registry.charts, c.id)
	c.registry.mu.Unlock()
}
