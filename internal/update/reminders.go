package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/scheduler"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/views"
)

func waitForExpiryCmd(ch <-chan scheduler.Expiry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		x, ok := <-ch
		if !ok {
			return nil
		}
		return ExpiryMsg{Expiry: x}
	}
}

// Post returns a function that hands f to the program's event loop. It is
// what the native notifier uses to deliver callbacks.
func Post(p *tea.Program) func(func()) {
	return func(f func()) { p.Send(RunMsg{Fn: f}) }
}

// beginPermission runs the platform prompt off the event loop and reports
// back with a PermissionMsg.
func (m Model) beginPermission() (Model, tea.Cmd) {
	prompt, ok := m.Session.BeginPermission()
	if !ok {
		m.Status = StatusBar{Text: "notifications: " + string(m.Session.Permission())}
		return m, nil
	}
	m.Requesting = true
	m.Status = StatusBar{Text: "requesting notification permission"}
	request := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), permissionPromptTimeout)
		defer cancel()
		p, err := prompt(ctx)
		return PermissionMsg{Permission: p, Err: err}
	}
	return m, tea.Batch(m.syncSpinner.Tick, request)
}

func (m Model) deliveryData() []views.DeliveryData {
	var out []views.DeliveryData
	for _, d := range m.Session.Deliveries() {
		if !d.State.IsOpen() {
			continue
		}
		out = append(out, views.DeliveryData{
			Title:   d.Title,
			Body:    d.Body,
			Channel: string(d.Channel),
			State:   string(d.State),
			FiredAt: d.FiredAt.Format("15:04"),
		})
	}
	return out
}
