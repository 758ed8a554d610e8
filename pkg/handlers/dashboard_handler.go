package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"dining-staff-dashboard/pkg/charts"
	"dining-staff-dashboard/pkg/dashboard"
	"dining-staff-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
)

// DashboardHandler は人員予測ダッシュボードの操作を扱うハンドラです。
type DashboardHandler struct{}

// NewDashboardHandler は新しいDashboardHandlerを生成します。
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// ParamsRequest は予測パラメータの更新内容です。省略した項目は変更しません。
type ParamsRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Weather   *string `json:"weather"`
	Event     *string `json:"event"`
}

// DetailRequest は詳細表示を開く日付、または棒グラフのインデックスです。
type DetailRequest struct {
	Date  string `json:"date"`
	Index *int   `json:"index"`
}

// DetailEventRequest は詳細表示のイベント変更です。
type DetailEventRequest struct {
	Event string `json:"event" binding:"required"`
}

func (h *DashboardHandler) respond(c *gin.Context, status int, s *services.Session, extra gin.H) {
	body := sessionEnvelope(s)
	body["dashboard"] = s.Dashboard.View()
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondResult はコントローラーのエラーをHTTPステータスに対応付けます。
func (h *DashboardHandler) respondResult(c *gin.Context, s *services.Session, err error) {
	switch {
	case err == nil:
		h.respond(c, http.StatusOK, s, nil)
	case errors.Is(err, dashboard.ErrValidation), errors.Is(err, dashboard.ErrNoBar):
		h.respond(c, http.StatusBadRequest, s, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, dashboard.ErrStale):
		h.respond(c, http.StatusConflict, s, gin.H{"success": false, "error": err.Error(), "stale": true})
	default:
		h.respond(c, http.StatusBadGateway, s, gin.H{"success": false, "error": err.Error()})
	}
}

// GetDashboard は現在のダッシュボード表示を返します。
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	h.respond(c, http.StatusOK, currentSession(c), nil)
}

// UpdateParams は日付範囲・天気・イベントの入力を反映します。
func (h *DashboardHandler) UpdateParams(c *gin.Context) {
	var req ParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters")
		return
	}
	s := currentSession(c)
	applyParams(s.Dashboard, req)
	h.respond(c, http.StatusOK, s, nil)
}

func applyParams(d *dashboard.Controller, req ParamsRequest) {
	if req.StartDate != nil || req.EndDate != nil {
		v := d.View()
		start, end := v.StartDate, v.EndDate
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		d.SetDateRange(start, end)
	}
	if req.Weather != nil {
		d.SetWeather(*req.Weather)
	}
	if req.Event != nil {
		d.SetEvent(*req.Event)
	}
}

// GeneratePredictions は予測を生成します。ボディにパラメータを含めた場合は先に反映します。
func (h *DashboardHandler) GeneratePredictions(c *gin.Context) {
	var req ParamsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid parameters")
			return
		}
	}
	s := currentSession(c)
	applyParams(s.Dashboard, req)
	h.respondResult(c, s, s.Dashboard.GeneratePredictions(c.Request.Context()))
}

// OpenDetail は選択した日付の詳細表示を開きます。
func (h *DashboardHandler) OpenDetail(c *gin.Context) {
	var req DetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid detail request")
		return
	}
	s := currentSession(c)
	var err error
	switch {
	case req.Index != nil:
		err = s.Dashboard.SelectBar(c.Request.Context(), *req.Index)
	case req.Date != "":
		err = s.Dashboard.OpenDetail(c.Request.Context(), req.Date)
	default:
		badRequest(c, "date or index is required")
		return
	}
	h.respondResult(c, s, err)
}

// ChangeDetailEvent は詳細表示のイベントを変更して再取得します。
func (h *DashboardHandler) ChangeDetailEvent(c *gin.Context) {
	var req DetailEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "event is required")
		return
	}
	s := currentSession(c)
	h.respondResult(c, s, s.Dashboard.ChangeDetailEvent(c.Request.Context(), req.Event))
}

// CloseDetail は詳細表示を閉じます。
func (h *DashboardHandler) CloseDetail(c *gin.Context) {
	s := currentSession(c)
	s.Dashboard.CloseDetail()
	h.respond(c, http.StatusOK, s, nil)
}

// GetChart はブラウザ描画用の Chart.js 設定を返します。
func (h *DashboardHandler) GetChart(c *gin.Context) {
	s := currentSession(c)
	cfg, ok := s.Charts.Get(c.Param("chartID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Chart not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chart": cfg})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportWorkbook は現在の予測系列と詳細をxlsxで出力します。
func (h *DashboardHandler) ExportWorkbook(c *gin.Context) {
	s := currentSession(c)
	view := s.Dashboard.View()
	if len(view.Series) == 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Generate predictions before exporting"})
		return
	}

	wb := charts.NewWorkbook()
	if _, err := wb.RenderStacked(dashboard.BuildStacked(view.Series)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if view.Detail != nil && view.Detail.Point != nil {
		if _, err := wb.RenderDoughnut(dashboard.BuildDoughnut(*view.Detail.Point)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	filename := fmt.Sprintf("staffing_%s_%s.xlsx", view.Series[0].Date, view.Series[len(view.Series)-1].Date)
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if _, err := wb.WriteTo(c.Writer); err != nil {
		log.Printf("❌ [dashboard] xlsxの出力に失敗: %v", err)
	}
}
