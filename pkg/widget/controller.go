package widget

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"dining-staff-dashboard/pkg/models"
)

// Assistant is the remote AI assistant the widget talks to.
type Assistant interface {
	ChatStatus(ctx context.Context) (*models.ChatStatus, error)
	Chat(ctx context.Context, message string) (*models.ChatResponse, error)
	ClearChat(ctx context.Context) error
}

// Surface receives projections of the controller state. Implementations must
// not call back into the Controller.
type Surface interface {
	Render(v View)
	FocusInput(delay time.Duration)
}

// Copy holds the user-facing text of the widget.
type Copy struct {
	Greeting          string
	StatusAvailable   string
	StatusUnavailable string
	ConnectionFailure string
	FallbackNotice    string
}

// DefaultCopy returns the built-in English copy.
func DefaultCopy() Copy {
	return Copy{
		Greeting:          "Hi! I'm the dining hall assistant. Ask me about staffing, weather or upcoming events.",
		StatusAvailable:   "AI assistant online",
		StatusUnavailable: "AI assistant unavailable - basic mode",
		ConnectionFailure: "Sorry, I'm having trouble connecting right now. Please try again in a moment.",
		FallbackNotice:    "The AI assistant is running in fallback mode, so responses may be limited.",
	}
}

// Controller owns the chat panel's view state, geometry and message log.
// All methods are safe for concurrent use; network calls run without the
// lock held so the panel stays responsive while a reply is pending.
type Controller struct {
	mu sync.Mutex

	assistant Assistant
	surface   Surface
	copy      Copy

	state         ViewState
	geometry      PanelGeometry
	savedGeometry PanelGeometry // 全画面に入る直前のジオメトリ
	drag          *resizeDrag

	messages []Message
	input    string
	isTyping bool
	status   AgentStatus
}

// NewController builds a closed widget with the original geometry and probes
// the assistant status once. It never fails: an unreachable assistant is
// reported as unavailable.
func NewController(ctx context.Context, assistant Assistant, surface Surface, text Copy) *Controller {
	if surface == nil {
		surface = nopSurface{}
	}
	c := &Controller{
		assistant: assistant,
		surface:   surface,
		copy:      text,
		state:     Closed,
		geometry:  OriginalSize,
		messages:  []Message{{Text: text.Greeting, Sender: SenderBot}},
	}
	c.ProbeStatus(ctx)
	return c
}

// State returns the current named state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resizing reports whether a resize drag is in progress.
func (c *Controller) Resizing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drag != nil
}

// Geometry returns the stored panel geometry.
func (c *Controller) Geometry() PanelGeometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geometry
}

// Messages returns a copy of the message log.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Status returns the cached assistant status.
func (c *Controller) Status() AgentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// View returns the current projection.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project()
}

// --- 表示状態の遷移 ---

// Toggle opens a closed panel and closes any other.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed {
		c.open()
	} else {
		c.close()
	}
	c.render()
}

// Open shows the panel; no-op when already showing.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Closed {
		return
	}
	c.open()
	c.render()
}

// Close hides the panel, leaving fullscreen first if needed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed {
		return
	}
	c.close()
	c.render()
}

// Minimize collapses an open panel to its header, or restores a minimized one.
func (c *Controller) Minimize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Closed:
		return
	case Minimized:
		c.state = Open
	case Fullscreen:
		c.exitFullscreen()
		c.state = Minimized
	case Open:
		c.endDrag()
		c.state = Minimized
	}
	c.render()
}

// ToggleFullscreen enters fullscreen from Open or Minimized and leaves it
// from Fullscreen.
func (c *Controller) ToggleFullscreen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Closed:
		return
	case Fullscreen:
		c.exitFullscreen()
	default:
		c.enterFullscreen()
	}
	c.render()
}

// Escape leaves fullscreen first; a second Escape closes the panel.
func (c *Controller) Escape() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Closed:
		return
	case Fullscreen:
		c.exitFullscreen()
	default:
		c.close()
	}
	c.render()
}

// ClickOutside handles a click that landed outside both the panel and the
// toggle button. Fullscreen panels ignore it.
func (c *Controller) ClickOutside() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed || c.state == Fullscreen {
		return
	}
	c.close()
	c.render()
}

// ResetSize restores OriginalSize.
func (c *Controller) ResetSize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDrag()
	c.geometry = OriginalSize
	if c.state == Fullscreen {
		c.savedGeometry = OriginalSize
	}
	c.render()
}

func (c *Controller) open() {
	c.state = Open
	c.surface.FocusInput(FocusDelay)
}

func (c *Controller) close() {
	if c.state == Fullscreen {
		c.exitFullscreen()
	}
	c.endDrag()
	c.state = Closed
}

func (c *Controller) enterFullscreen() {
	c.endDrag()
	c.savedGeometry = c.geometry
	c.state = Fullscreen
}

func (c *Controller) exitFullscreen() {
	c.geometry = c.savedGeometry
	c.state = Open
}

// --- リサイズ ---

// BeginResize starts a left-edge drag. It is ignored unless the panel is
// Open; in particular it never starts while Fullscreen.
func (c *Controller) BeginResize(pointer Point, viewport Size) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Open {
		return false
	}
	c.drag = &resizeDrag{start: pointer, startGeom: c.geometry, viewport: viewport}
	c.render()
	return true
}

// ResizeTo applies a pointer move to the drag in progress and returns the
// clamped geometry. It reports false when no drag is active.
func (c *Controller) ResizeTo(pointer Point) (PanelGeometry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return c.geometry, false
	}
	c.geometry = c.drag.apply(pointer)
	c.render()
	return c.geometry, true
}

// EndResize finishes the drag; later pointer moves no longer change geometry.
func (c *Controller) EndResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return
	}
	c.endDrag()
	c.render()
}

func (c *Controller) endDrag() {
	c.drag = nil
}

// --- メッセージ ---

// SetInput mirrors the text box contents.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// SendInput sends whatever is in the text box.
func (c *Controller) SendInput(ctx context.Context) bool {
	c.mu.Lock()
	text := c.input
	c.mu.Unlock()
	return c.Send(ctx, text)
}

// Send posts text to the assistant. Blank text and sends while another one is
// in flight are ignored and report false. Failures are shown as a bot message
// and never returned.
func (c *Controller) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if text == "" || c.isTyping {
		c.mu.Unlock()
		return false
	}
	c.messages = append(c.messages, Message{Text: text, Sender: SenderUser})
	c.input = ""
	c.isTyping = true
	c.render()
	c.mu.Unlock()

	resp, err := c.assistant.Chat(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isTyping = false

	switch {
	case err != nil:
		log.Printf("❌ [chat] アシスタントへの送信に失敗: %v", err)
		c.appendFailure()
	case strings.TrimSpace(resp.Response) == "":
		log.Printf("⚠️ [chat] アシスタントの応答が空です")
		c.appendFailure()
	default:
		c.messages = append(c.messages, Message{Text: resp.Response, Sender: SenderBot})
		if resp.AgentAvailable != nil {
			c.status.Available = *resp.AgentAvailable
		}
		if resp.Fallback {
			c.messages = append(c.messages, Message{Text: c.copy.FallbackNotice, Sender: SenderSystem})
		}
	}
	c.render()
	return true
}

// Clear asks the assistant to forget the conversation and, on success,
// bulk-clears the log back to the greeting. It is ignored and reports false
// while a send is in flight.
func (c *Controller) Clear(ctx context.Context) bool {
	c.mu.Lock()
	typing := c.isTyping
	c.mu.Unlock()
	if typing {
		log.Printf("⚠️ [chat] 送信中のため会話履歴のクリアを無視しました")
		return false
	}

	err := c.assistant.ClearChat(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.Printf("❌ [chat] 会話履歴のクリアに失敗: %v", err)
		c.appendFailure()
	} else {
		c.messages = []Message{{Text: c.copy.Greeting, Sender: SenderBot}}
	}
	c.render()
	return true
}

// ProbeStatus refreshes AgentStatus from the status endpoint. Errors mark the
// assistant unavailable and are not returned.
func (c *Controller) ProbeStatus(ctx context.Context) AgentStatus {
	available := false
	status, err := c.assistant.ChatStatus(ctx)
	if err != nil {
		log.Printf("⚠️ [chat] ステータス確認に失敗、利用不可として扱います: %v", err)
	} else {
		available = status.AgentAvailable
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Available = available
	c.render()
	return c.status
}

func (c *Controller) appendFailure() {
	c.messages = append(c.messages, Message{Text: c.copy.ConnectionFailure, Sender: SenderBot})
}

func (c *Controller) render() {
	c.surface.Render(c.project())
}

type nopSurface struct{}

func (nopSurface) Render(View)              {}
func (nopSurface) FocusInput(time.Duration) {}
