package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header     string
	Banner     string
	LeftPane   string
	RightPane  string
	Toasts     []ToastData
	StatusLine string
	IsError    bool
	Footer     string
	Width      int
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Border(lipgloss.NormalBorder()).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	lateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var toastStyles = map[string]lipgloss.Style{
	"success": lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("10")).Padding(0, 1),
	"error":   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1),
	"warning": lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("11")).Padding(0, 1),
	"info":    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1),
}

func paneWidth(total int) int {
	if total <= 0 {
		return 58
	}
	w := total/2 - 4
	if w < 30 {
		return 30
	}
	return w
}

func RenderApp(data AppData) string {
	width := paneWidth(data.Width)
	left := panelStyle.Width(width).Render(data.LeftPane)
	row := left
	if strings.TrimSpace(data.RightPane) != "" {
		right := panelStyle.Width(width).Render(data.RightPane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	lines := []string{headerStyle.Render(data.Header)}
	if data.Banner != "" {
		lines = append(lines, bannerStyle.Render(data.Banner))
	}
	lines = append(lines, row)
	if toasts := RenderToasts(data.Toasts); toasts != "" {
		lines = append(lines, toasts)
	}
	if data.StatusLine != "" {
		if data.IsError {
			lines = append(lines, errorStyle.Render(data.StatusLine))
		} else {
			lines = append(lines, statusStyle.Render(data.StatusLine))
		}
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
