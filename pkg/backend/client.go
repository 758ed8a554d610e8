package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dining-staff-dashboard/pkg/models"
)

// Client は予測サービスとAIアシスタントのREST APIへのリクエストを管理します。
// 呼び出しはキャンセルされず、タイムアウトも既定では設定しません。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError は2xx以外のステータス、またはerrorフィールドを含むレスポンスを表します。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend error: %s", e.Message)
	}
	return fmt.Sprintf("backend error (status: %d): %s", e.Status, e.Message)
}

// NewClient は新しいクライアントを作成します。timeout が 0 の場合はタイムアウトなし。
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- チャット ---

// ChatStatus GET /api/chat/status
func (c *Client) ChatStatus(ctx context.Context) (*models.ChatStatus, error) {
	var status models.ChatStatus
	if err := c.doRequest(ctx, http.MethodGet, "/api/chat/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Chat POST /api/chat
func (c *Client) Chat(ctx context.Context, message string) (*models.ChatResponse, error) {
	var resp models.ChatResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/chat", models.ChatRequest{Message: message}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearChat POST /api/chat/clear
func (c *Client) ClearChat(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, "/api/chat/clear", nil, nil)
}

// --- ダッシュボード ---

// EventOptions GET /api/event-options
func (c *Client) EventOptions(ctx context.Context) ([]string, error) {
	var options []string
	if err := c.doRequest(ctx, http.MethodGet, "/api/event-options", nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// WeatherOptions GET /api/weather-options
func (c *Client) WeatherOptions(ctx context.Context) ([]string, error) {
	var options []string
	if err := c.doRequest(ctx, http.MethodGet, "/api/weather-options", nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// TodaySummary GET /api/today-summary
func (c *Client) TodaySummary(ctx context.Context) (*models.Summary, error) {
	return c.summary(ctx, "/api/today-summary")
}

// TomorrowSummary GET /api/tomorrow-summary
func (c *Client) TomorrowSummary(ctx context.Context) (*models.Summary, error) {
	return c.summary(ctx, "/api/tomorrow-summary")
}

func (c *Client) summary(ctx context.Context, path string) (*models.Summary, error) {
	var s models.Summary
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// BatchPredict POST /api/batch-predict
func (c *Client) BatchPredict(ctx context.Context, req models.BatchPredictRequest) ([]models.PredictionPoint, error) {
	return c.batch(ctx, "/api/batch-predict", req)
}

// SimpleBatchPredict POST /api/simple-batch-predict (weather/event are not sent)
func (c *Client) SimpleBatchPredict(ctx context.Context, startDate, endDate string) ([]models.PredictionPoint, error) {
	return c.batch(ctx, "/api/simple-batch-predict", models.BatchPredictRequest{StartDate: startDate, EndDate: endDate})
}

func (c *Client) batch(ctx context.Context, path string, req models.BatchPredictRequest) ([]models.PredictionPoint, error) {
	var points []models.PredictionPoint
	if err := c.doRequest(ctx, http.MethodPost, path, req, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// DetailedPredict POST /api/detailed-predict
func (c *Client) DetailedPredict(ctx context.Context, date, event string) (*models.PredictionPoint, error) {
	var point models.PredictionPoint
	req := models.DetailedPredictRequest{Date: date, Event: event}
	if err := c.doRequest(ctx, http.MethodPost, "/api/detailed-predict", req, &point); err != nil {
		return nil, err
	}
	return &point, nil
}

// doRequest はHTTPリクエストの実行と基本的なレスポンス処理を行う共通メソッドです。
// responseData が nil の場合はステータスのみを確認します。
func (c *Client) doRequest(ctx context.Context, method, path string, requestData interface{}, responseData interface{}) error {
	var body io.Reader
	if requestData != nil {
		requestBody, err := json.Marshal(requestData)
		if err != nil {
			return fmt.Errorf("リクエストのJSON化に失敗: %w", err)
		}
		body = bytes.NewBuffer(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	if requestData != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの実行に失敗 (%s %s): %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp models.ErrorBody
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: errorResp.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if responseData == nil {
		return nil
	}

	// 200 でも {"error": "..."} が返ることがある
	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var errorResp models.ErrorBody
		if err := json.Unmarshal(trimmed, &errorResp); err == nil && errorResp.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: errorResp.Error}
		}
	}

	if err := json.Unmarshal(respBody, responseData); err != nil {
		return fmt.Errorf("レスポンスのJSON解析に失敗: %w", err)
	}

	return nil
}
