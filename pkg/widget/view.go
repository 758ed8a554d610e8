package widget

import "fmt"

// View is a pure projection of the controller state for a rendering surface.
type View struct {
	State          string            `json:"state"`
	Visible        bool              `json:"visible"`
	Resizing       bool              `json:"resizing"`
	PanelClasses   []string          `json:"panel_classes"`
	ToggleClasses  []string          `json:"toggle_classes"`
	PanelStyle     map[string]string `json:"panel_style,omitempty"`
	Geometry       PanelGeometry     `json:"geometry"`
	AgentAvailable bool              `json:"agent_available"`
	StatusText     string            `json:"status_text"`
	Typing         bool              `json:"typing"`
	Input          string            `json:"input"`
	Messages       []Message         `json:"messages"`
}

// project はロックを保持した状態で呼び出すこと
func (c *Controller) project() View {
	v := View{
		State:          c.state.String(),
		Visible:        c.state != Closed,
		Resizing:       c.drag != nil,
		Geometry:       c.geometry,
		AgentAvailable: c.status.Available,
		Typing:         c.isTyping,
		Input:          c.input,
		Messages:       append([]Message(nil), c.messages...),
	}

	v.PanelClasses = []string{"chat-panel"}
	switch c.state {
	case Open:
		v.PanelClasses = append(v.PanelClasses, "open")
	case Minimized:
		v.PanelClasses = append(v.PanelClasses, "open", "minimized")
	case Fullscreen:
		v.PanelClasses = append(v.PanelClasses, "open", "fullscreen")
	}
	if v.Resizing {
		v.PanelClasses = append(v.PanelClasses, "resizing")
	}

	v.ToggleClasses = []string{"chat-toggle"}
	if v.Visible {
		v.ToggleClasses = append(v.ToggleClasses, "active")
	}
	if c.status.Available {
		v.StatusText = c.copy.StatusAvailable
	} else {
		v.ToggleClasses = append(v.ToggleClasses, "agent-unavailable")
		v.StatusText = c.copy.StatusUnavailable
	}

	// 全画面時はCSSに任せるためインラインスタイルを出さない
	if c.state != Fullscreen {
		height := c.geometry.Height
		if c.state == Minimized {
			height = MinimizedHeight
		}
		v.PanelStyle = map[string]string{
			"width":  px(c.geometry.Width),
			"height": px(height),
			"right":  px(c.geometry.RightOffset),
		}
	}
	return v
}

func px(v float64) string {
	return fmt.Sprintf("%gpx", v)
}
