package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TaskItemData struct {
	ID        string
	Title     string
	Due       string
	Reminder  string
	Completed bool
	Overdue   bool
}

type TaskPanelData struct {
	Items         []TaskItemData
	SelectedID    string
	Total         int
	Pending       int
	ShowCompleted bool
	Loading       string
}

type ToastData struct {
	Level   string
	Title   string
	Message string
}

type DeliveryData struct {
	Title   string
	Body    string
	Channel string
	State   string
	FiredAt string
}

type PickerData struct {
	TaskTitle string
	Options   []string
}

type ShareData struct {
	ID     string
	Title  string
	Peer   string
	Status string
}

type SharePanelData struct {
	Title string
	Items []ShareData
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
	Markdown string
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	scope := "pending"
	if data.ShowCompleted {
		scope = "all"
	}
	b.WriteString(fmt.Sprintf("tasks (%s): %d total, %d pending\n", scope, data.Total, data.Pending))
	if data.Loading != "" {
		b.WriteString(data.Loading + "\n")
	}
	if len(data.Items) == 0 {
		b.WriteString(mutedStyle.Render("(no tasks)"))
		return b.String()
	}
	for _, item := range data.Items {
		cursor := "  "
		if item.ID == data.SelectedID {
			cursor = cursorStyle.Render("> ")
		}
		check := "[ ]"
		title := item.Title
		if item.Completed {
			check = "[x]"
			title = doneStyle.Render(title)
		}
		due := item.Due
		if item.Overdue && !item.Completed {
			due = lateStyle.Render(due + " late")
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %s", cursor, check, title, mutedStyle.Render(due)))
		if item.Reminder != "" {
			b.WriteString("  " + item.Reminder)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderToasts(toasts []ToastData) string {
	if len(toasts) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style, ok := toastStyles[t.Level]
		if !ok {
			style = toastStyles["info"]
		}
		body := lipgloss.NewStyle().Bold(true).Render(t.Title)
		if t.Message != "" {
			body += "\n" + t.Message
		}
		boxes = append(boxes, style.Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func RenderBanner(visible bool) string {
	if !visible {
		return ""
	}
	return "Enable desktop notifications to get task reminders. [y] enable [n] not now"
}

func RenderPicker(data PickerData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("reminder for: %s\n", data.TaskTitle))
	for i, opt := range data.Options {
		b.WriteString(fmt.Sprintf("[%d] %s\n", i+1, opt))
	}
	b.WriteString("[esc] no reminder")
	return b.String()
}

func RenderDeliveries(items []DeliveryData) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("reminders:\n")
	for _, d := range items {
		body := strings.ReplaceAll(d.Body, "\n", " | ")
		b.WriteString(fmt.Sprintf("- %s %s [%s/%s]\n", d.FiredAt, body, d.Channel, d.State))
	}
	b.WriteString("[m] mark done [s] snooze [a] dismiss")
	return b.String()
}

func RenderSharePanel(data SharePanelData) string {
	var b strings.Builder
	b.WriteString(data.Title + ":\n")
	if len(data.Items) == 0 {
		b.WriteString("(none)")
		return b.String()
	}
	for _, s := range data.Items {
		b.WriteString(fmt.Sprintf("- #%s %s (%s) %s\n", s.ID, s.Title, s.Peer, s.Status))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString("help:\n")
	b.WriteString(strings.Join(data.Bindings, "\n"))
	if data.HelpView != "" {
		b.WriteString("\n" + data.HelpView)
	}
	if md := RenderMarkdown(data.Markdown); md != "" {
		b.WriteString("\n\n" + md)
	}
	return b.String()
}
