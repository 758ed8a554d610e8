// Package widget implements the floating assistant chat panel as a headless
// controller. ViewState is the single source of truth; CSS classes and inline
// geometry are derived from it in View.
package widget

import (
	"math"
	"time"
)

// ViewState is the panel's named state. Exactly one holds at any time.
type ViewState int

const (
	Closed ViewState = iota
	Open
	Minimized
	Fullscreen
)

func (s ViewState) String() string {
	switch s {
	case Open:
		return "open"
	case Minimized:
		return "minimized"
	case Fullscreen:
		return "fullscreen"
	default:
		return "closed"
	}
}

// ParseViewState is the inverse of String; unknown values map to Closed.
func ParseViewState(s string) ViewState {
	switch s {
	case "open":
		return Open
	case "minimized":
		return Minimized
	case "fullscreen":
		return Fullscreen
	default:
		return Closed
	}
}

// パネルサイズの制約
const (
	MinWidth           = 320.0
	MinHeight          = 400.0
	MaxViewportRatio   = 0.9
	MinimizedHeight    = 60.0
	DefaultRightOffset = 20.0
	FocusDelay         = 100 * time.Millisecond
)

// PanelGeometry is the panel's pixel geometry. It survives open/close cycles
// and is only reset by ResetSize.
type PanelGeometry struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	RightOffset float64 `json:"right_offset"`
}

// OriginalSize is the geometry a new panel starts with and ResetSize restores.
var OriginalSize = PanelGeometry{Width: 380, Height: 500, RightOffset: DefaultRightOffset}

// Point is a pointer position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderSystem Sender = "system"
)

// Message is one entry of the append-only chat log.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// AgentStatus is the cached snapshot of the remote assistant's health.
type AgentStatus struct {
	Available bool `json:"available"`
}

// resizeDrag は左端ドラッグ開始時の状態
type resizeDrag struct {
	start     Point
	startGeom PanelGeometry
	viewport  Size
}

// ClampSize limits a panel size to [MinWidth, 0.9·vw] × [MinHeight, 0.9·vh].
// When the viewport is too small for the lower bound, the lower bound wins.
func ClampSize(width, height float64, viewport Size) (float64, float64) {
	maxW := viewport.Width * MaxViewportRatio
	maxH := viewport.Height * MaxViewportRatio
	return math.Max(MinWidth, math.Min(width, maxW)), math.Max(MinHeight, math.Min(height, maxH))
}

// apply computes the geometry for a pointer position relative to the drag
// start. Dragging the left edge leftwards grows the width; dragging down
// grows the height. The right edge stays where it was when the drag began.
func (d *resizeDrag) apply(pointer Point) PanelGeometry {
	dx := pointer.X - d.start.X
	dy := pointer.Y - d.start.Y

	w, h := ClampSize(d.startGeom.Width-dx, d.startGeom.Height+dy, d.viewport)
	return PanelGeometry{
		Width:       w,
		Height:      h,
		// パネルは right で配置しているため、幅が変わってもオフセットは据え置きで右端が固定される
		RightOffset: d.startGeom.RightOffset,
	}
}
