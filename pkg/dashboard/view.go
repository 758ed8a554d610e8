package dashboard

import "dining-staff-dashboard/pkg/models"

// View is the projection of the dashboard state handed to the surface.
type View struct {
	Variant        Variant                  `json:"variant"`
	StartDate      string                   `json:"start_date"`
	EndDate        string                   `json:"end_date"`
	Weather        string                   `json:"weather,omitempty"`
	Event          string                   `json:"event"`
	WeatherOptions []Option                 `json:"weather_options,omitempty"`
	EventOptions   []Option                 `json:"event_options"`
	Summary        *SummaryView             `json:"summary,omitempty"`
	Loading        bool                     `json:"loading"`
	Labels         []string                 `json:"labels"`
	Series         []models.PredictionPoint `json:"series"`
	PrimaryChartID string                   `json:"primary_chart_id,omitempty"`
	Detail         *DetailView              `json:"detail,omitempty"`
}

// SummaryView is the summary card.
type SummaryView struct {
	Date               string  `json:"date,omitempty"`
	TotalWorkersNeeded int     `json:"total_workers_needed"`
	PeopleExpected     float64 `json:"people_expected"`
	TotalHours         float64 `json:"total_hours"`
	WeatherSource      string  `json:"weather_source,omitempty"`
}

// DetailView is the drill-down panel. Point is nil until the detailed
// prediction has arrived.
type DetailView struct {
	Date      string                  `json:"date"`
	Event     string                  `json:"event"`
	Point     *models.PredictionPoint `json:"point,omitempty"`
	Breakdown []WorkerEstimate        `json:"breakdown,omitempty"`
	ChartID   string                  `json:"chart_id,omitempty"`
}

func (c *Controller) project() View {
	v := View{
		Variant:      c.variant,
		StartDate:    c.startDate,
		EndDate:      c.endDate,
		Event:        c.event,
		EventOptions: append([]Option(nil), c.eventOptions...),
		Loading:      c.pending > 0,
		Labels:       make([]string, len(c.series)),
		Series:       append([]models.PredictionPoint(nil), c.series...),
	}
	if c.variant == Full {
		v.Weather = c.weather
		v.WeatherOptions = append([]Option(nil), c.weatherOptions...)
	}
	for i, p := range c.series {
		v.Labels[i] = p.Date
	}
	if c.primary != nil {
		v.PrimaryChartID = c.primary.ID()
	}
	if c.summary != nil {
		v.Summary = NewSummaryView(c.summary)
	}
	if c.selectedDate != "" {
		d := &DetailView{Date: c.selectedDate, Event: c.detailEvent}
		if c.detailPoint != nil {
			p := *c.detailPoint
			d.Point = &p
			d.Breakdown = Breakdown(p)
		}
		if c.detail != nil {
			d.ChartID = c.detail.ID()
		}
		v.Detail = d
	}
	return v
}

// NewSummaryView builds the summary card from the service response.
func NewSummaryView(s *models.Summary) *SummaryView {
	sv := &SummaryView{
		Date:               s.Date,
		TotalWorkersNeeded: s.TotalWorkersNeeded,
		PeopleExpected:     s.PeopleExpected,
		TotalHours:         s.TotalHours,
	}
	if s.WeatherFromAPI != nil {
		if *s.WeatherFromAPI {
			sv.WeatherSource = "live forecast"
		} else {
			sv.WeatherSource = "default conditions"
		}
	}
	return sv
}
