package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dining-staff-dashboard/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu sync.Mutex

	events     []string
	weather    []string
	optionsErr error
	summary    *models.Summary
	summaryErr error

	batch    func(req models.BatchPredictRequest) ([]models.PredictionPoint, error)
	detailed func(date, event string) (*models.PredictionPoint, error)

	calls []string
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeService) EventOptions(ctx context.Context) ([]string, error) {
	f.record("event-options")
	return f.events, f.optionsErr
}

func (f *fakeService) WeatherOptions(ctx context.Context) ([]string, error) {
	f.record("weather-options")
	return f.weather, f.optionsErr
}

func (f *fakeService) TodaySummary(ctx context.Context) (*models.Summary, error) {
	f.record("today-summary")
	return f.summary, f.summaryErr
}

func (f *fakeService) TomorrowSummary(ctx context.Context) (*models.Summary, error) {
	f.record("tomorrow-summary")
	return f.summary, f.summaryErr
}

func (f *fakeService) BatchPredict(ctx context.Context, req models.BatchPredictRequest) ([]models.PredictionPoint, error) {
	f.record("batch-predict")
	return f.batch(req)
}

func (f *fakeService) SimpleBatchPredict(ctx context.Context, start, end string) ([]models.PredictionPoint, error) {
	f.record("simple-batch-predict")
	return f.batch(models.BatchPredictRequest{StartDate: start, EndDate: end})
}

func (f *fakeService) DetailedPredict(ctx context.Context, date, event string) (*models.PredictionPoint, error) {
	f.record("detailed-predict")
	return f.detailed(date, event)
}

type fakeChart struct {
	id        string
	renderer  *fakeRenderer
	destroyed bool
}

func (c *fakeChart) ID() string { return c.id }

func (c *fakeChart) Destroy() {
	c.renderer.mu.Lock()
	defer c.renderer.mu.Unlock()
	if !c.destroyed {
		c.destroyed = true
		c.renderer.alive[c.id[:1]]--
	}
}

type fakeRenderer struct {
	mu       sync.Mutex
	n        int
	alive    map[string]int // "s" = stacked, "d" = doughnut
	stacked  []StackedChart
	doughnut []DoughnutChart
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{alive: map[string]int{}}
}

func (r *fakeRenderer) RenderStacked(chart StackedChart) (Chart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	r.alive["s"]++
	r.stacked = append(r.stacked, chart)
	return &fakeChart{id: fmt.Sprintf("s%d", r.n), renderer: r}, nil
}

func (r *fakeRenderer) RenderDoughnut(chart DoughnutChart) (Chart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	r.alive["d"]++
	r.doughnut = append(r.doughnut, chart)
	return &fakeChart{id: fmt.Sprintf("d%d", r.n), renderer: r}, nil
}

func (r *fakeRenderer) aliveCount(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alive[kind]
}

type recordingSurface struct {
	mu      sync.Mutex
	notices []string
	loading []bool
	last    View
}

func (s *recordingSurface) Notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, message)
}

func (s *recordingSurface) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = append(s.loading, loading)
}

func (s *recordingSurface) Render(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = v
}

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func point(date string, hours ...float64) models.PredictionPoint {
	workers := map[string]float64{}
	for i, h := range hours {
		workers[WorkerTypes[i].Key] = h
	}
	return models.PredictionPoint{Date: date, Workers: workers}
}

func seriesFor(req models.BatchPredictRequest) []models.PredictionPoint {
	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	var out []models.PredictionPoint
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, point(d.Format(dateLayout), 24, 16, 20, 18, 12, 8))
	}
	return out
}

func newFakeService() *fakeService {
	return &fakeService{
		events:  []string{"regular_day", "career_fair", "graduation"},
		weather: []string{"sunny", "rainy"},
		summary: &models.Summary{TotalWorkersNeeded: 14, PeopleExpected: 450, TotalHours: 98},
		batch: func(req models.BatchPredictRequest) ([]models.PredictionPoint, error) {
			return seriesFor(req), nil
		},
		detailed: func(date, event string) (*models.PredictionPoint, error) {
			p := point(date, 30, 20, 25, 22, 14, 9)
			p.Event = event
			return &p, nil
		},
	}
}

func newTestDashboard(t *testing.T, svc *fakeService, variant Variant) (*Controller, *fakeRenderer, *recordingSurface) {
	t.Helper()
	r := newFakeRenderer()
	s := &recordingSurface{}
	c := NewController(svc, r, s, variant, WithClock(func() time.Time { return fixedNow }))
	c.Init(context.Background())
	return c, r, s
}

func TestInitOrderAndDefaults(t *testing.T) {
	svc := newFakeService()
	c, _, s := newTestDashboard(t, svc, Full)

	assert.Equal(t, []string{"event-options", "weather-options", "today-summary"}, svc.calls)

	v := c.View()
	assert.Equal(t, "2025-06-01", v.StartDate)
	assert.Equal(t, "2025-06-08", v.EndDate)
	assert.Equal(t, "regular_day", v.Event)
	assert.Equal(t, "sunny", v.Weather)
	assert.Equal(t, Option{ID: "career_fair", Label: "Career Fair"}, v.EventOptions[1])
	require.NotNil(t, v.Summary)
	assert.Equal(t, 14, v.Summary.TotalWorkersNeeded)
	assert.Equal(t, v, s.last)
}

func TestInitSimpleVariant(t *testing.T) {
	svc := newFakeService()
	c, _, _ := newTestDashboard(t, svc, Simple)

	assert.Equal(t, []string{"event-options", "tomorrow-summary"}, svc.calls)
	v := c.View()
	assert.Empty(t, v.WeatherOptions)
	assert.Empty(t, v.Weather)
}

func TestInitSurvivesBackendFailures(t *testing.T) {
	svc := newFakeService()
	svc.optionsErr = errors.New("down")
	svc.summaryErr = errors.New("down")
	c, _, s := newTestDashboard(t, svc, Full)

	v := c.View()
	assert.Equal(t, []Option{{ID: "regular_day", Label: "Regular Day"}}, v.EventOptions)
	assert.Equal(t, []Option{{ID: "sunny", Label: "Sunny"}}, v.WeatherOptions)
	assert.Nil(t, v.Summary)
	assert.Empty(t, s.notices, "init failures are not blocking notifications")
}

func TestGenerateRejectsReversedRange(t *testing.T) {
	svc := newFakeService()
	c, _, s := newTestDashboard(t, svc, Full)
	before := svc.callCount()

	c.SetDateRange("2025-06-10", "2025-06-05")
	err := c.GeneratePredictions(context.Background())

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, before, svc.callCount(), "no network call")
	assert.Empty(t, s.loading, "loading indicator never shown")
	require.Len(t, s.notices, 1)
	assert.Contains(t, s.notices[0], "start date must be before or equal to end date")
}

func TestGenerateRejectsMissingAndMalformedDates(t *testing.T) {
	svc := newFakeService()
	c, _, _ := newTestDashboard(t, svc, Full)
	before := svc.callCount()

	for _, tc := range [][2]string{{"", "2025-06-05"}, {"2025-06-05", ""}, {"06/05/2025", "2025-06-10"}} {
		c.SetDateRange(tc[0], tc[1])
		assert.ErrorIs(t, c.GeneratePredictions(context.Background()), ErrValidation)
	}
	assert.Equal(t, before, svc.callCount())
}

func TestGenerateBindsSeriesIntoStackedChart(t *testing.T) {
	svc := newFakeService()
	var got models.BatchPredictRequest
	svc.batch = func(req models.BatchPredictRequest) ([]models.PredictionPoint, error) {
		got = req
		pts := seriesFor(req)
		delete(pts[1].Workers, "Chef")
		return pts, nil
	}
	c, r, s := newTestDashboard(t, svc, Full)
	c.SetDateRange("2025-06-05", "2025-06-07")
	c.SetEvent("career_fair")
	c.SetWeather("rainy")

	require.NoError(t, c.GeneratePredictions(context.Background()))

	assert.Equal(t, models.BatchPredictRequest{StartDate: "2025-06-05", EndDate: "2025-06-07", Weather: "rainy", Event: "career_fair"}, got)
	require.Len(t, r.stacked, 1)
	chart := r.stacked[0]
	assert.Equal(t, []string{"2025-06-05", "2025-06-06", "2025-06-07"}, chart.Labels)
	require.Len(t, chart.Datasets, len(WorkerTypes))
	series := c.Series()
	for i, wt := range WorkerTypes {
		assert.Equal(t, wt.Label, chart.Datasets[i].Label)
		assert.Equal(t, wt.Color, chart.Datasets[i].Color)
		require.Len(t, chart.Datasets[i].Values, 3)
		for j, p := range series {
			assert.Equal(t, p.Workers[wt.Key], chart.Datasets[i].Values[j])
		}
	}
	assert.Equal(t, 0.0, chart.Datasets[2].Values[1], "missing worker type is 0")
	assert.Equal(t, []bool{true, false}, s.loading)
	assert.Equal(t, "s1", c.View().PrimaryChartID)
}

func TestGenerateReplacesChartAndClosesDetail(t *testing.T) {
	svc := newFakeService()
	c, r, _ := newTestDashboard(t, svc, Full)
	c.SetDateRange("2025-06-05", "2025-06-06")
	require.NoError(t, c.GeneratePredictions(context.Background()))
	require.NoError(t, c.SelectBar(context.Background(), 1))
	require.Equal(t, 1, r.aliveCount("d"))

	c.SetDateRange("2025-06-10", "2025-06-12")
	require.NoError(t, c.GeneratePredictions(context.Background()))

	assert.Equal(t, 1, r.aliveCount("s"), "previous stacked chart destroyed")
	assert.Equal(t, 0, r.aliveCount("d"), "stale detail chart destroyed")
	_, open := c.SelectedDate()
	assert.False(t, open)
	assert.Len(t, c.Series(), 3)
}

func TestGenerateSimpleVariantOmitsWeatherAndEvent(t *testing.T) {
	svc := newFakeService()
	c, _, _ := newTestDashboard(t, svc, Simple)
	c.SetDateRange("2025-06-05", "2025-06-05")

	require.NoError(t, c.GeneratePredictions(context.Background()))
	assert.Contains(t, svc.calls, "simple-batch-predict")
	assert.NotContains(t, svc.calls, "batch-predict")
}

func TestGenerateNetworkFailureHidesLoadingAndNotifies(t *testing.T) {
	svc := newFakeService()
	svc.batch = func(models.BatchPredictRequest) ([]models.PredictionPoint, error) {
		return nil, errors.New("connection reset")
	}
	c, r, s := newTestDashboard(t, svc, Full)

	err := c.GeneratePredictions(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, []bool{true, false}, s.loading)
	assert.Len(t, s.notices, 1)
	assert.Empty(t, r.stacked)
	assert.False(t, c.View().Loading)
}

func TestOutOfOrderBatchResponsesKeepNewest(t *testing.T) {
	svc := newFakeService()
	release := make(chan struct{})
	started := make(chan struct{})
	svc.batch = func(req models.BatchPredictRequest) ([]models.PredictionPoint, error) {
		if req.StartDate == "2025-06-01" {
			close(started)
			<-release
		}
		return seriesFor(req), nil
	}
	c, r, s := newTestDashboard(t, svc, Full)

	c.SetDateRange("2025-06-01", "2025-06-02")
	slow := make(chan error)
	go func() { slow <- c.GeneratePredictions(context.Background()) }()
	<-started

	c.SetDateRange("2025-06-20", "2025-06-22")
	require.NoError(t, c.GeneratePredictions(context.Background()))
	assert.True(t, c.View().Loading, "slow request still pending")

	close(release)
	assert.ErrorIs(t, <-slow, ErrStale)

	series := c.Series()
	require.Len(t, series, 3)
	assert.Equal(t, "2025-06-20", series[0].Date)
	assert.Equal(t, 1, r.aliveCount("s"))
	assert.Equal(t, []bool{true, false}, s.loading)
}

func TestFailedBatchAfterNewerAppliedIsDiscarded(t *testing.T) {
	svc := newFakeService()
	release := make(chan struct{})
	started := make(chan struct{})
	svc.batch = func(req models.BatchPredictRequest) ([]models.PredictionPoint, error) {
		if req.StartDate == "2025-06-01" {
			close(started)
			<-release
			return nil, errors.New("connection reset")
		}
		return seriesFor(req), nil
	}
	c, r, s := newTestDashboard(t, svc, Full)

	c.SetDateRange("2025-06-01", "2025-06-02")
	slow := make(chan error)
	go func() { slow <- c.GeneratePredictions(context.Background()) }()
	<-started

	c.SetDateRange("2025-06-20", "2025-06-22")
	require.NoError(t, c.GeneratePredictions(context.Background()))

	close(release)
	assert.ErrorIs(t, <-slow, ErrStale)
	assert.Empty(t, s.notices)
	assert.Len(t, c.Series(), 3)
	assert.Equal(t, 1, r.aliveCount("s"))
	assert.False(t, c.View().Loading)
}

func TestDetailOpenCloseReopen(t *testing.T) {
	svc := newFakeService()
	var events []string
	svc.detailed = func(date, event string) (*models.PredictionPoint, error) {
		events = append(events, event)
		p := point(date, 30, 20, 25, 22, 14, 9)
		return &p, nil
	}
	c, r, _ := newTestDashboard(t, svc, Full)

	require.NoError(t, c.OpenDetail(context.Background(), "2025-06-05"))
	require.NoError(t, c.ChangeDetailEvent(context.Background(), "graduation"))
	assert.Equal(t, "graduation", c.DetailEvent())

	c.CloseDetail()
	c.CloseDetail()
	assert.Equal(t, 0, r.aliveCount("d"))
	assert.Equal(t, "regular_day", c.DetailEvent())

	require.NoError(t, c.OpenDetail(context.Background(), "2025-06-06"))
	assert.Equal(t, 1, r.aliveCount("d"), "exactly one detail chart alive")
	assert.Equal(t, "regular_day", c.DetailEvent())
	date, open := c.SelectedDate()
	assert.True(t, open)
	assert.Equal(t, "2025-06-06", date)
	assert.Equal(t, []string{"regular_day", "graduation", "regular_day"}, events)

	v := c.View()
	require.NotNil(t, v.Detail)
	require.NotNil(t, v.Detail.Point)
	assert.Len(t, v.Detail.Breakdown, 6)
	assert.NotEmpty(t, v.Detail.ChartID)
}

func TestChangeDetailEventDoesNotTouchSeries(t *testing.T) {
	svc := newFakeService()
	c, r, _ := newTestDashboard(t, svc, Full)
	c.SetDateRange("2025-06-05", "2025-06-07")
	require.NoError(t, c.GeneratePredictions(context.Background()))
	before := c.Series()

	require.NoError(t, c.SelectBar(context.Background(), 0))
	require.NoError(t, c.ChangeDetailEvent(context.Background(), "career_fair"))

	assert.Equal(t, before, c.Series())
	assert.Len(t, r.stacked, 1)
	assert.Equal(t, 1, r.aliveCount("d"))
	assert.Len(t, r.doughnut, 2)
}

func TestChangeDetailEventWhenClosedIsNoop(t *testing.T) {
	svc := newFakeService()
	c, _, _ := newTestDashboard(t, svc, Full)
	before := svc.callCount()

	require.NoError(t, c.ChangeDetailEvent(context.Background(), "graduation"))
	assert.Equal(t, before, svc.callCount())
}

func TestSelectBarOutOfRange(t *testing.T) {
	c, _, _ := newTestDashboard(t, newFakeService(), Full)
	assert.ErrorIs(t, c.SelectBar(context.Background(), 0), ErrNoBar)
}

func TestSelectBarBackendFailureIsNotOutOfRange(t *testing.T) {
	svc := newFakeService()
	svc.detailed = func(string, string) (*models.PredictionPoint, error) {
		return nil, errors.New("upstream down")
	}
	c, _, s := newTestDashboard(t, svc, Full)
	c.SetDateRange("2025-06-05", "2025-06-06")
	require.NoError(t, c.GeneratePredictions(context.Background()))

	err := c.SelectBar(context.Background(), 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoBar)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Len(t, s.notices, 1)
}

func TestDetailEventResetsToResolvedDefault(t *testing.T) {
	svc := newFakeService()
	svc.events = []string{"career_fair", "graduation"}
	var sent []string
	svc.detailed = func(date, event string) (*models.PredictionPoint, error) {
		sent = append(sent, event)
		p := point(date, 1, 1, 1, 1, 1, 1)
		return &p, nil
	}
	c, _, _ := newTestDashboard(t, svc, Full)
	assert.Equal(t, "career_fair", c.View().Event)

	require.NoError(t, c.OpenDetail(context.Background(), "2025-06-05"))
	require.NoError(t, c.ChangeDetailEvent(context.Background(), "graduation"))
	c.CloseDetail()
	assert.Equal(t, "career_fair", c.DetailEvent())

	require.NoError(t, c.OpenDetail(context.Background(), "2025-06-06"))
	assert.Equal(t, []string{"career_fair", "graduation", "career_fair"}, sent)
}

func TestDetailResponseAfterCloseIsDiscarded(t *testing.T) {
	svc := newFakeService()
	release := make(chan struct{})
	started := make(chan struct{})
	svc.detailed = func(date, event string) (*models.PredictionPoint, error) {
		close(started)
		<-release
		p := point(date, 1, 1, 1, 1, 1, 1)
		return &p, nil
	}
	c, r, _ := newTestDashboard(t, svc, Full)

	done := make(chan error)
	go func() { done <- c.OpenDetail(context.Background(), "2025-06-05") }()
	<-started
	c.CloseDetail()
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Equal(t, 0, r.aliveCount("d"))
	assert.Nil(t, c.View().Detail)
}

func TestFailedDetailAfterCloseIsDiscarded(t *testing.T) {
	svc := newFakeService()
	release := make(chan struct{})
	started := make(chan struct{})
	svc.detailed = func(date, event string) (*models.PredictionPoint, error) {
		close(started)
		<-release
		return nil, errors.New("connection reset")
	}
	c, _, s := newTestDashboard(t, svc, Full)

	done := make(chan error)
	go func() { done <- c.OpenDetail(context.Background(), "2025-06-05") }()
	<-started
	c.CloseDetail()
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Empty(t, s.notices)
	assert.Equal(t, []bool{true, false}, s.loading)
}

func TestFailedDetailSupersededByNewerEventIsDiscarded(t *testing.T) {
	svc := newFakeService()
	release := make(chan struct{})
	started := make(chan struct{})
	svc.detailed = func(date, event string) (*models.PredictionPoint, error) {
		if event == "regular_day" {
			close(started)
			<-release
			return nil, errors.New("connection reset")
		}
		p := point(date, 30, 20, 25, 22, 14, 9)
		p.Event = event
		return &p, nil
	}
	c, r, s := newTestDashboard(t, svc, Full)

	done := make(chan error)
	go func() { done <- c.OpenDetail(context.Background(), "2025-06-05") }()
	<-started
	require.NoError(t, c.ChangeDetailEvent(context.Background(), "graduation"))
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Empty(t, s.notices)
	assert.Equal(t, 1, r.aliveCount("d"))
	v := c.View()
	require.NotNil(t, v.Detail)
	require.NotNil(t, v.Detail.Point)
	assert.Equal(t, "graduation", v.Detail.Point.Event)
}

func TestDetailFailureNotifies(t *testing.T) {
	svc := newFakeService()
	svc.detailed = func(string, string) (*models.PredictionPoint, error) {
		return nil, errors.New("500")
	}
	c, r, s := newTestDashboard(t, svc, Full)

	assert.Error(t, c.OpenDetail(context.Background(), "2025-06-05"))
	assert.Len(t, s.notices, 1)
	assert.Equal(t, []bool{true, false}, s.loading)
	assert.Equal(t, 0, r.aliveCount("d"))
	// パネル自体は開いたまま
	_, open := c.SelectedDate()
	assert.True(t, open)
}
