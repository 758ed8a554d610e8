package main

import (
	"fmt"
	"io"

	"dining-staff-dashboard/pkg/dashboard"
	"dining-staff-dashboard/pkg/widget"

	"github.com/charmbracelet/lipgloss"
)

var (
	primary   = lipgloss.Color("#f7c0af")
	secondary = lipgloss.Color("#3ccad7")
	success   = lipgloss.Color("#87bf47")
	errorCol  = lipgloss.Color("#bf5d47")
	muted     = lipgloss.Color("#7f7f7f")

	labelStyle   = lipgloss.NewStyle().Foreground(primary).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(secondary)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success)
	errorStyle   = lipgloss.NewStyle().Foreground(errorCol)
)

// cliSurface はダッシュボードの通知を端末に出力します。
type cliSurface struct {
	out    io.Writer
	errOut io.Writer
}

func (s *cliSurface) Notify(message string) {
	fmt.Fprintln(s.errOut, errorStyle.Render(message))
}

func (s *cliSurface) SetLoading(loading bool) {
	if loading {
		fmt.Fprintln(s.out, mutedStyle.Render("Loading..."))
	}
}

// 描画はチャートレンダラーが担当する
func (s *cliSurface) Render(dashboard.View) {}

func printMessage(out io.Writer, m widget.Message) {
	switch m.Sender {
	case widget.SenderUser:
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("you:"), m.Text)
	case widget.SenderSystem:
		fmt.Fprintln(out, mutedStyle.Render(m.Text))
	default:
		fmt.Fprintf(out, "%s %s\n", valueStyle.Render("assistant:"), m.Text)
	}
}

func printSummaryView(out io.Writer, title string, s *dashboard.SummaryView) {
	header := title
	if s.Date != "" {
		header += " (" + s.Date + ")"
	}
	fmt.Fprintln(out, labelStyle.Render(header))
	fmt.Fprintf(out, "  %s %s\n", mutedStyle.Render("Workers needed:"), valueStyle.Render(fmt.Sprintf("%d", s.TotalWorkersNeeded)))
	fmt.Fprintf(out, "  %s %s\n", mutedStyle.Render("People expected:"), valueStyle.Render(fmt.Sprintf("%.0f", s.PeopleExpected)))
	fmt.Fprintf(out, "  %s %s\n", mutedStyle.Render("Total hours:"), valueStyle.Render(fmt.Sprintf("%.1f", s.TotalHours)))
	if s.WeatherSource != "" {
		fmt.Fprintf(out, "  %s %s\n", mutedStyle.Render("Weather:"), valueStyle.Render(s.WeatherSource))
	}
}
