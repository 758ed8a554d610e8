// Package dashboard binds staffing predictions from the prediction service
// into a stacked bar chart with a single-date drill-down.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"dining-staff-dashboard/pkg/models"
)

const dateLayout = "2006-01-02"

var (
	// ErrValidation is returned when request parameters are rejected before
	// any network call is made.
	ErrValidation = errors.New("invalid prediction parameters")
	// ErrStale is returned when a response arrived after a newer one had
	// already been applied and was discarded.
	ErrStale = errors.New("stale response discarded")
	// ErrNoBar is returned by SelectBar when no bar group exists at the index.
	ErrNoBar = errors.New("no prediction at index")
)

// Variant selects which flavour of the dashboard is served.
type Variant string

const (
	// Full offers weather and event selectors and today's summary.
	Full Variant = "full"
	// Simple predicts from dates only and shows tomorrow's summary.
	Simple Variant = "simple"
)

// ParseVariant maps a config value to a Variant, defaulting to Full.
func ParseVariant(s string) Variant {
	if Variant(s) == Simple {
		return Simple
	}
	return Full
}

// PredictionService is the remote prediction API.
type PredictionService interface {
	EventOptions(ctx context.Context) ([]string, error)
	WeatherOptions(ctx context.Context) ([]string, error)
	TodaySummary(ctx context.Context) (*models.Summary, error)
	TomorrowSummary(ctx context.Context) (*models.Summary, error)
	BatchPredict(ctx context.Context, req models.BatchPredictRequest) ([]models.PredictionPoint, error)
	SimpleBatchPredict(ctx context.Context, startDate, endDate string) ([]models.PredictionPoint, error)
	DetailedPredict(ctx context.Context, date, event string) (*models.PredictionPoint, error)
}

// Surface is the page the dashboard draws on. Notify is the single blocking
// notification used for every user-facing error.
type Surface interface {
	Notify(message string)
	SetLoading(loading bool)
	Render(v View)
}

// Defaults are the documented default selector values.
type Defaults struct {
	Event     string
	Weather   string
	RangeDays int
}

// DefaultDefaults returns regular_day / sunny and a 7 day range.
func DefaultDefaults() Defaults {
	return Defaults{Event: "regular_day", Weather: "sunny", RangeDays: 7}
}

// Controller owns the prediction parameters, the current series, the
// detail selection and both chart instances.
type Controller struct {
	mu sync.Mutex

	service  PredictionService
	charts   ChartRenderer
	surface  Surface
	variant  Variant
	defaults Defaults
	now      func() time.Time

	eventOptions   []Option
	weatherOptions []Option
	startDate      string
	endDate        string
	weather        string
	event          string
	summary        *models.Summary

	series     []models.PredictionPoint
	primary    Chart
	seriesSeq  uint64 // 発行済みの最新シーケンス
	appliedSeq uint64 // 反映済みの最新シーケンス

	selectedDate string // 空文字は詳細パネルが閉じている状態
	detailEvent  string
	eventDefault string // Initで解決した既定イベント
	detailPoint  *models.PredictionPoint
	detail       Chart
	detailSeq    uint64

	pending int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClock overrides time.Now for the default date range.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithDefaults overrides the default selector values.
func WithDefaults(d Defaults) ControllerOption {
	return func(c *Controller) {
		if d.Event != "" {
			c.defaults.Event = d.Event
		}
		if d.Weather != "" {
			c.defaults.Weather = d.Weather
		}
		if d.RangeDays > 0 {
			c.defaults.RangeDays = d.RangeDays
		}
	}
}

// NewController creates a dashboard. Call Init before use.
func NewController(service PredictionService, charts ChartRenderer, surface Surface, variant Variant, opts ...ControllerOption) *Controller {
	if surface == nil {
		surface = nopSurface{}
	}
	c := &Controller{
		service:  service,
		charts:   charts,
		surface:  surface,
		variant:  variant,
		defaults: DefaultDefaults(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.eventDefault = c.defaults.Event
	c.event = c.eventDefault
	c.weather = c.defaults.Weather
	c.detailEvent = c.eventDefault
	return c
}

// Init loads option vocabularies, sets the default date range and loads the
// summary, in that order. Failures are logged; Init itself never fails.
func (c *Controller) Init(ctx context.Context) {
	events, err := c.service.EventOptions(ctx)
	if err != nil {
		log.Printf("⚠️ [dashboard] イベント選択肢の取得に失敗: %v", err)
		events = []string{c.defaults.Event}
	}

	var weather []string
	if c.variant == Full {
		weather, err = c.service.WeatherOptions(ctx)
		if err != nil {
			log.Printf("⚠️ [dashboard] 天気選択肢の取得に失敗: %v", err)
			weather = []string{c.defaults.Weather}
		}
	}

	c.mu.Lock()
	c.eventOptions = NewOptions(events)
	c.eventDefault = pickDefault(c.eventOptions, c.defaults.Event)
	c.event = c.eventDefault
	c.detailEvent = c.eventDefault
	if c.variant == Full {
		c.weatherOptions = NewOptions(weather)
		c.weather = pickDefault(c.weatherOptions, c.defaults.Weather)
	}
	today := c.now()
	c.startDate = today.Format(dateLayout)
	c.endDate = today.AddDate(0, 0, c.defaults.RangeDays).Format(dateLayout)
	c.render()
	c.mu.Unlock()

	c.LoadSummary(ctx)
}

// LoadSummary fetches today's (Full) or tomorrow's (Simple) summary.
func (c *Controller) LoadSummary(ctx context.Context) {
	var (
		summary *models.Summary
		err     error
	)
	if c.variant == Simple {
		summary, err = c.service.TomorrowSummary(ctx)
	} else {
		summary, err = c.service.TodaySummary(ctx)
	}
	if err != nil {
		log.Printf("⚠️ [dashboard] サマリーの取得に失敗: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = summary
	c.render()
}

func pickDefault(options []Option, def string) string {
	if hasOption(options, def) || len(options) == 0 {
		return def
	}
	return options[0].ID
}

// --- 入力ハンドラー ---

// SetDateRange updates the date inputs. Validation happens on generate.
func (c *Controller) SetDateRange(start, end string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startDate, c.endDate = start, end
	c.render()
}

// SetWeather updates the weather selector (Full variant).
func (c *Controller) SetWeather(weather string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weather = weather
	c.render()
}

// SetEvent updates the main event selector.
func (c *Controller) SetEvent(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.event = event
	c.render()
}

// --- 一括予測 ---

// GeneratePredictions validates the date range and requests predictions for
// it. On success the series is replaced wholesale, the stacked chart rebuilt
// and any open detail view closed.
func (c *Controller) GeneratePredictions(ctx context.Context) error {
	c.mu.Lock()
	start, end := c.startDate, c.endDate
	if err := validateRange(start, end); err != nil {
		c.surface.Notify(userMessage(err))
		c.mu.Unlock()
		return err
	}
	c.seriesSeq++
	seq := c.seriesSeq
	req := models.BatchPredictRequest{StartDate: start, EndDate: end}
	if c.variant == Full {
		req.Weather, req.Event = c.weather, c.event
	}
	c.beginLoading()
	c.mu.Unlock()

	var (
		points []models.PredictionPoint
		err    error
	)
	if c.variant == Simple {
		points, err = c.service.SimpleBatchPredict(ctx, req.StartDate, req.EndDate)
	} else {
		points, err = c.service.BatchPredict(ctx, req)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLoading()

	// 新しい結果が反映済みなら、失敗した応答も通知せずに破棄する
	if seq < c.appliedSeq {
		log.Printf("⚠️ [dashboard] 古い予測レスポンスを破棄 (seq=%d, applied=%d, err=%v)", seq, c.appliedSeq, err)
		return ErrStale
	}
	if err != nil {
		log.Printf("❌ [dashboard] 予測の取得に失敗 (%s〜%s): %v", start, end, err)
		c.surface.Notify("Error generating predictions. Please try again.")
		return fmt.Errorf("予測の取得に失敗: %w", err)
	}
	c.appliedSeq = seq

	c.series = append([]models.PredictionPoint(nil), points...)
	if c.primary != nil {
		c.primary.Destroy()
		c.primary = nil
	}
	chart, err := c.charts.RenderStacked(BuildStacked(c.series))
	if err != nil {
		log.Printf("❌ [dashboard] グラフの描画に失敗: %v", err)
		c.surface.Notify("Error drawing the prediction chart.")
	} else {
		c.primary = chart
	}
	log.Printf("📊 [dashboard] %d日分の予測を反映しました (%s〜%s)", len(c.series), start, end)

	c.closeDetail()
	c.render()
	return err
}

func validateRange(start, end string) error {
	if start == "" || end == "" {
		return fmt.Errorf("%w: please select both start and end dates", ErrValidation)
	}
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return fmt.Errorf("%w: start date must be YYYY-MM-DD", ErrValidation)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return fmt.Errorf("%w: end date must be YYYY-MM-DD", ErrValidation)
	}
	if s.After(e) {
		return fmt.Errorf("%w: start date must be before or equal to end date", ErrValidation)
	}
	return nil
}

func userMessage(err error) string {
	return "Please check your input: " + strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
}

// --- 詳細表示 ---

// SelectBar opens the detail view for the bar group at index.
func (c *Controller) SelectBar(ctx context.Context, index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.series) {
		c.mu.Unlock()
		return fmt.Errorf("%w %d", ErrNoBar, index)
	}
	date := c.series[index].Date
	c.mu.Unlock()
	return c.OpenDetail(ctx, date)
}

// OpenDetail selects date, resets the detail event selector to its default,
// reveals the panel and requests the detailed prediction.
func (c *Controller) OpenDetail(ctx context.Context, date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: detail date must be YYYY-MM-DD", ErrValidation)
	}

	c.mu.Lock()
	c.selectedDate = date
	c.detailEvent = c.eventDefault
	c.detailPoint = nil
	c.destroyDetailChart()
	return c.fetchDetailLocked(ctx)
}

// ChangeDetailEvent re-requests the open date with a different event. It
// never touches the primary series and is a no-op when the panel is closed.
func (c *Controller) ChangeDetailEvent(ctx context.Context, event string) error {
	c.mu.Lock()
	if c.selectedDate == "" {
		c.mu.Unlock()
		return nil
	}
	c.detailEvent = event
	return c.fetchDetailLocked(ctx)
}

// fetchDetailLocked はロックを保持した状態で呼び出し、戻る前に解放する
func (c *Controller) fetchDetailLocked(ctx context.Context) error {
	c.detailSeq++
	seq := c.detailSeq
	date, event := c.selectedDate, c.detailEvent
	c.beginLoading()
	c.render()
	c.mu.Unlock()

	point, err := c.service.DetailedPredict(ctx, date, event)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLoading()

	if seq != c.detailSeq || c.selectedDate != date {
		log.Printf("⚠️ [dashboard] 古い詳細レスポンスを破棄 (%s, seq=%d, err=%v)", date, seq, err)
		c.render()
		return ErrStale
	}
	if err != nil {
		log.Printf("❌ [dashboard] 詳細予測の取得に失敗 (%s, %s): %v", date, event, err)
		c.surface.Notify("Error loading detailed prediction. Please try again.")
		c.render()
		return fmt.Errorf("詳細予測の取得に失敗: %w", err)
	}

	c.detailPoint = point
	c.destroyDetailChart()
	chart, err := c.charts.RenderDoughnut(BuildDoughnut(*point))
	if err != nil {
		log.Printf("❌ [dashboard] 詳細グラフの描画に失敗: %v", err)
		c.surface.Notify("Error drawing the detail chart.")
	} else {
		c.detail = chart
	}
	c.render()
	return err
}

// CloseDetail hides the detail view. Safe to call when already closed.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeDetail()
	c.render()
}

func (c *Controller) closeDetail() {
	c.selectedDate = ""
	c.detailPoint = nil
	c.detailEvent = c.eventDefault
	c.destroyDetailChart()
}

func (c *Controller) destroyDetailChart() {
	if c.detail != nil {
		c.detail.Destroy()
		c.detail = nil
	}
}

// --- 状態参照 ---

// Series returns a copy of the current prediction series.
func (c *Controller) Series() []models.PredictionPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.PredictionPoint(nil), c.series...)
}

// SelectedDate returns the drilled-into date and whether the detail is open.
func (c *Controller) SelectedDate() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedDate, c.selectedDate != ""
}

// DetailEvent returns the detail event selector value.
func (c *Controller) DetailEvent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detailEvent
}

// Variant returns the dashboard flavour.
func (c *Controller) Variant() Variant {
	return c.variant
}

// View returns the current projection.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project()
}

func (c *Controller) beginLoading() {
	c.pending++
	if c.pending == 1 {
		c.surface.SetLoading(true)
	}
}

func (c *Controller) endLoading() {
	if c.pending == 0 {
		return
	}
	c.pending--
	if c.pending == 0 {
		c.surface.SetLoading(false)
	}
}

func (c *Controller) render() {
	c.surface.Render(c.project())
}

type nopSurface struct{}

func (nopSurface) Notify(string)   {}
func (nopSurface) SetLoading(bool) {}
func (nopSurface) Render(View)     {}
