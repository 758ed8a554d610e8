package handlers

import (
	"net/http"

	"dining-staff-dashboard/pkg/services"
	"dining-staff-dashboard/pkg/widget"

	"github.com/gin-gonic/gin"
)

// WidgetHandler はチャットウィジェットの操作を扱うハンドラです。
type WidgetHandler struct{}

// NewWidgetHandler は新しいWidgetHandlerを生成します。
func NewWidgetHandler() *WidgetHandler {
	return &WidgetHandler{}
}

// ResizeRequest はリサイズ操作のリクエストボディです。
type ResizeRequest struct {
	Pointer  widget.Point `json:"pointer"`
	Viewport widget.Size  `json:"viewport"`
}

// SendRequest はメッセージ送信のリクエストボディです。
// Message が空の場合は入力欄の内容を送信します。
type SendRequest struct {
	Message string `json:"message"`
}

// InputRequest は入力欄の内容です。
type InputRequest struct {
	Text string `json:"text"`
}

func (h *WidgetHandler) respond(c *gin.Context, s *services.Session, extra gin.H) {
	body := sessionEnvelope(s)
	body["widget"] = s.Widget.View()
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// GetWidget は現在のウィジェット表示を返します。
func (h *WidgetHandler) GetWidget(c *gin.Context) {
	h.respond(c, currentSession(c), nil)
}

// HandleEvent はトグルボタンやキー操作などのUIイベントを適用します。
func (h *WidgetHandler) HandleEvent(c *gin.Context) {
	s := currentSession(c)
	switch c.Param("event") {
	case "toggle":
		s.Widget.Toggle()
	case "open":
		s.Widget.Open()
	case "close":
		s.Widget.Close()
	case "minimize":
		s.Widget.Minimize()
	case "fullscreen":
		s.Widget.ToggleFullscreen()
	case "escape":
		s.Widget.Escape()
	case "click-outside":
		s.Widget.ClickOutside()
	case "reset-size":
		s.Widget.ResetSize()
	default:
		badRequest(c, "Unknown widget event: "+c.Param("event"))
		return
	}
	h.respond(c, s, nil)
}

// StartResize は左端ドラッグを開始します。
func (h *WidgetHandler) StartResize(c *gin.Context) {
	var req ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid resize request")
		return
	}
	if req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		badRequest(c, "Viewport size is required")
		return
	}
	s := currentSession(c)
	started := s.Widget.BeginResize(req.Pointer, req.Viewport)
	h.respond(c, s, gin.H{"resizing": started})
}

// MoveResize はドラッグ中のポインタ移動を適用します。
func (h *WidgetHandler) MoveResize(c *gin.Context) {
	var req ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid resize request")
		return
	}
	s := currentSession(c)
	_, applied := s.Widget.ResizeTo(req.Pointer)
	h.respond(c, s, gin.H{"resizing": applied})
}

// EndResize はドラッグを終了します。
func (h *WidgetHandler) EndResize(c *gin.Context) {
	s := currentSession(c)
	s.Widget.EndResize()
	h.respond(c, s, gin.H{"resizing": false})
}

// SetInput は入力欄の内容を同期します。
func (h *WidgetHandler) SetInput(c *gin.Context) {
	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input request")
		return
	}
	s := currentSession(c)
	s.Widget.SetInput(req.Text)
	h.respond(c, s, nil)
}

// SendMessage はアシスタントにメッセージを送信し、応答を待って返します。
// 通信エラーはボットメッセージとしてログに追加されるため、ここでは常に200を返します。
func (h *WidgetHandler) SendMessage(c *gin.Context) {
	var req SendRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid message request")
			return
		}
	}
	s := currentSession(c)
	var sent bool
	if req.Message == "" {
		sent = s.Widget.SendInput(c.Request.Context())
	} else {
		sent = s.Widget.Send(c.Request.Context(), req.Message)
	}
	h.respond(c, s, gin.H{"sent": sent})
}

// ClearConversation はアシスタント側の会話履歴を消去します。
func (h *WidgetHandler) ClearConversation(c *gin.Context) {
	s := currentSession(c)
	cleared := s.Widget.Clear(c.Request.Context())
	h.respond(c, s, gin.H{"cleared": cleared})
}

// RefreshStatus はアシスタントの稼働状況を再確認します。
func (h *WidgetHandler) RefreshStatus(c *gin.Context) {
	s := currentSession(c)
	status := s.Widget.ProbeStatus(c.Request.Context())
	h.respond(c, s, gin.H{"agent_available": status.Available})
}
