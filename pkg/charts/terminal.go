package charts

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"dining-staff-dashboard/pkg/dashboard"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7c0af")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dddddd"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f7f7f"))
)

// DefaultBarWidth is the width in cells of the longest bar.
const DefaultBarWidth = 48

// Terminal draws charts as coloured text on a writer.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	barWidth int
	alive    int
}

// NewTerminal creates a renderer writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, barWidth: DefaultBarWidth}
}

type terminalChart struct {
	id    string
	owner *Terminal
	once  sync.Once
}

func (c *terminalChart) ID() string { return c.id }

func (c *terminalChart) Destroy() {
	c.once.Do(func() {
		c.owner.mu.Lock()
		c.owner.alive--
		c.owner.mu.Unlock()
	})
}

// Alive reports how many charts have not been destroyed.
func (t *Terminal) Alive() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alive
}

// RenderStacked prints one bar per date, segmented by worker type, followed
// by a legend.
func (t *Terminal) RenderStacked(chart dashboard.StackedChart) (dashboard.Chart, error) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s by %s", chart.YTitle, chart.XTitle)))
	b.WriteString("\n")

	totals := make([]float64, len(chart.Labels))
	maxTotal := 0.0
	for i := range chart.Labels {
		for _, ds := range chart.Datasets {
			if i < len(ds.Values) {
				totals[i] += ds.Values[i]
			}
		}
		maxTotal = math.Max(maxTotal, totals[i])
	}

	for i, label := range chart.Labels {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(" ")
		for _, ds := range chart.Datasets {
			if i >= len(ds.Values) {
				continue
			}
			n := t.cells(ds.Values[i], maxTotal)
			if n == 0 {
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ds.Color)).Render(strings.Repeat("█", n)))
		}
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%.1f", totals[i])))
		b.WriteString("\n")
	}
	if len(chart.Labels) == 0 {
		b.WriteString(mutedStyle.Render("(no predictions)"))
		b.WriteString("\n")
	}

	legend := make([]string, 0, len(chart.Datasets))
	for _, ds := range chart.Datasets {
		legend = append(legend, swatch(ds.Color)+" "+ds.Label)
	}
	b.WriteString(strings.Join(legend, "  "))
	b.WriteString("\n")

	return t.emit(b.String())
}

// RenderDoughnut prints the per-type breakdown of a single date.
func (t *Terminal) RenderDoughnut(chart dashboard.DoughnutChart) (dashboard.Chart, error) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Detail: " + chart.Title))
	b.WriteString("\n")
	total := 0.0
	for _, v := range chart.Values {
		total += v
	}
	for i := range chart.Labels {
		share := 0.0
		if total > 0 {
			share = chart.Values[i] / total * 100
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			swatch(chart.Colors[i]),
			chart.Tooltips[i],
			mutedStyle.Render(fmt.Sprintf("%.0f%%", share)),
		))
	}
	return t.emit(b.String())
}

func (t *Terminal) cells(v, maxTotal float64) int {
	if maxTotal <= 0 || v <= 0 {
		return 0
	}
	return int(math.Round(v / maxTotal * float64(t.barWidth)))
}

func (t *Terminal) emit(s string) (dashboard.Chart, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.out, s); err != nil {
		return nil, fmt.Errorf("グラフの出力に失敗: %w", err)
	}
	t.alive++
	return &terminalChart{id: uuid.New().String(), owner: t}, nil
}

func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}
