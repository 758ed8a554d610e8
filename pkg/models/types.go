package models

// ChatRequest POST /api/chat のリクエストボディ
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse POST /api/chat のレスポンス
// agent_available と fallback は返されない場合があるためポインタで保持する
type ChatResponse struct {
	Response       string `json:"response"`
	Error          string `json:"error,omitempty"`
	AgentAvailable *bool  `json:"agent_available,omitempty"`
	Fallback       bool   `json:"fallback,omitempty"`
}

// ChatStatus GET /api/chat/status のレスポンス
type ChatStatus struct {
	AgentAvailable bool `json:"agent_available"`
}

// BatchPredictRequest represents a date-range prediction request.
// Weather and Event are omitted by the simple dashboard.
type BatchPredictRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Weather   string `json:"weather,omitempty"`
	Event     string `json:"event,omitempty"`
}

// DetailedPredictRequest 単日の詳細予測リクエスト
type DetailedPredictRequest struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// PredictionPoint is one day of the prediction series, produced by the
// backend and never computed locally.
type PredictionPoint struct {
	Date                  string             `json:"date"`
	PredictedTransactions float64            `json:"predicted_transactions"`
	TotalPredictedHours   float64            `json:"total_predicted_hours"`
	Workers               map[string]float64 `json:"workers"`
	Weather               string             `json:"weather,omitempty"`
	Event                 string             `json:"event,omitempty"`
	WeatherFromAPI        bool               `json:"weather_from_api,omitempty"`
}

// Summary 今日（または明日）のサマリー
type Summary struct {
	Date               string  `json:"date,omitempty"`
	TotalWorkersNeeded int     `json:"total_workers_needed"`
	PeopleExpected     float64 `json:"people_expected"`
	TotalHours         float64 `json:"total_hours"`
	WeatherFromAPI     *bool   `json:"weather_from_api,omitempty"`
}

// ErrorBody バックエンドが返すエラーレスポンス
type ErrorBody struct {
	Error string `json:"error"`
}
