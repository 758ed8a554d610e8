package charts

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"dining-staff-dashboard/pkg/dashboard"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	predictionsSheet = "Predictions"
	detailSheet      = "Detail"
)

// Workbook collects the charts drawn by a controller and writes them as an
// xlsx file: the series as a table with a stacked column chart, and the
// detail breakdown with a doughnut chart.
type Workbook struct {
	mu       sync.Mutex
	stacked  *workbookChart
	doughnut *workbookChart
}

// NewWorkbook creates an empty workbook renderer.
func NewWorkbook() *Workbook {
	return &Workbook{}
}

type workbookChart struct {
	id       string
	owner    *Workbook
	stacked  *dashboard.StackedChart
	doughnut *dashboard.DoughnutChart
}

func (c *workbookChart) ID() string { return c.id }

func (c *workbookChart) Destroy() {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	if c.owner.stacked == c {
		c.owner.stacked = nil
	}
	if c.owner.doughnut == c {
		c.owner.doughnut = nil
	}
}

// RenderStacked replaces the series sheet.
func (w *Workbook) RenderStacked(chart dashboard.StackedChart) (dashboard.Chart, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := &workbookChart{id: uuid.New().String(), owner: w, stacked: &chart}
	w.stacked = c
	return c, nil
}

// RenderDoughnut replaces the detail sheet.
func (w *Workbook) RenderDoughnut(chart dashboard.DoughnutChart) (dashboard.Chart, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := &workbookChart{id: uuid.New().String(), owner: w, doughnut: &chart}
	w.doughnut = c
	return c, nil
}

// WriteTo builds the xlsx file from the live charts and writes it to out.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	f, err := w.build()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteTo(out)
}

// SaveAs builds the xlsx file and writes it to path.
func (w *Workbook) SaveAs(path string) error {
	f, err := w.build()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsxファイルの保存に失敗: %w", err)
	}
	return nil
}

func (w *Workbook) build() (*excelize.File, error) {
	w.mu.Lock()
	var (
		stacked  *dashboard.StackedChart
		doughnut *dashboard.DoughnutChart
	)
	if w.stacked != nil {
		stacked = w.stacked.stacked
	}
	if w.doughnut != nil {
		doughnut = w.doughnut.doughnut
	}
	w.mu.Unlock()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", predictionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("シート名の設定に失敗: %w", err)
	}
	if stacked == nil {
		stacked = &dashboard.StackedChart{XTitle: "Date", YTitle: "Hours"}
	}
	if err := writeStackedSheet(f, *stacked); err != nil {
		f.Close()
		return nil, err
	}
	if doughnut != nil {
		if _, err := f.NewSheet(detailSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("詳細シートの作成に失敗: %w", err)
		}
		if err := writeDoughnutSheet(f, *doughnut); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// 1列目に日付、以降は勤務種別ごとの時間
func writeStackedSheet(f *excelize.File, chart dashboard.StackedChart) error {
	header := []any{chart.XTitle}
	for _, ds := range chart.Datasets {
		header = append(header, ds.Label)
	}
	if err := f.SetSheetRow(predictionsSheet, "A1", &header); err != nil {
		return fmt.Errorf("ヘッダー行の書き込みに失敗: %w", err)
	}
	for i, label := range chart.Labels {
		row := []any{label}
		for _, ds := range chart.Datasets {
			var v float64
			if i < len(ds.Values) {
				v = ds.Values[i]
			}
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(predictionsSheet, cell, &row); err != nil {
			return fmt.Errorf("予測行の書き込みに失敗: %w", err)
		}
	}
	if len(chart.Labels) == 0 || len(chart.Datasets) == 0 {
		return nil
	}

	last := len(chart.Labels) + 1
	series := make([]excelize.ChartSeries, 0, len(chart.Datasets))
	for i, ds := range chart.Datasets {
		col, err := excelize.ColumnNumberToName(i + 2)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", predictionsSheet, col),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", predictionsSheet, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", predictionsSheet, col, col, last),
			Fill:       solidFill(ds.Color),
		})
	}
	anchor, err := excelize.CoordinatesToCellName(len(chart.Datasets)+3, 2)
	if err != nil {
		return err
	}
	if err := f.AddChart(predictionsSheet, anchor, &excelize.Chart{
		Type:   excelize.ColStacked,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Staffing Hours by Worker Type"}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.XTitle}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.YTitle}}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}); err != nil {
		return fmt.Errorf("積み上げグラフの追加に失敗: %w", err)
	}
	return nil
}

func writeDoughnutSheet(f *excelize.File, chart dashboard.DoughnutChart) error {
	header := []any{"Worker Type", "Hours", "Workers"}
	if err := f.SetSheetRow(detailSheet, "A1", &header); err != nil {
		return fmt.Errorf("ヘッダー行の書き込みに失敗: %w", err)
	}
	for i, label := range chart.Labels {
		row := []any{label, chart.Values[i], chart.Headcounts[i]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(detailSheet, cell, &row); err != nil {
			return fmt.Errorf("詳細行の書き込みに失敗: %w", err)
		}
	}
	if len(chart.Labels) == 0 {
		return nil
	}

	last := len(chart.Labels) + 1
	if err := f.AddChart(detailSheet, "E2", &excelize.Chart{
		Type: excelize.Doughnut,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", detailSheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", detailSheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", detailSheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: chart.Title}},
		Legend: excelize.ChartLegend{Position: "right"},
	}); err != nil {
		return fmt.Errorf("ドーナツグラフの追加に失敗: %w", err)
	}
	return nil
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(color, "#")}}
}
