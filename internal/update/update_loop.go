package update

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/notify"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/views"
)

func (m Model) Init() tea.Cmd {
	load := func() tea.Msg { return LoadMsg{} }
	if m.expiries != nil {
		return tea.Batch(load, waitForExpiryCmd(m.expiries))
	}
	return load
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncSelection()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}
		if _, open := m.Session.Picker(); open {
			return m.handlePickerKey(typed), nil
		}
		return m.handleTaskKey(typed)
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		return m, nil
	case tea.FocusMsg:
		n := m.Session.Activate()
		m.Status = StatusBar{Text: fmt.Sprintf("reminders armed: %d", n)}
		return m, nil
	case ExpiryMsg:
		typed.Expiry.Fire()
		return m, waitForExpiryCmd(m.expiries)
	case RunMsg:
		if typed.Fn != nil {
			typed.Fn()
		}
		return m, nil
	case LoadMsg:
		return m.reload(), nil
	case PermissionMsg:
		m.Requesting = false
		p := m.Session.SettlePermission(typed.Permission, typed.Err)
		m.Status = StatusBar{Text: fmt.Sprintf("notifications: %s", p), IsError: typed.Err != nil}
		return m, nil
	case spinner.TickMsg:
		if m.Requesting {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleTaskKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Palette:
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	case "j", "down":
		m.Cursor++
		m.syncSelection()
	case "k", "up":
		m.Cursor--
		m.syncSelection()
	case " ":
		if task, ok := m.selectedTask(); ok {
			ctx, cancel := m.requestContext()
			_, err := m.Session.Toggle(ctx, task.ID)
			cancel()
			m.setResult("task updated", err)
		}
	case "d":
		if task, ok := m.selectedTask(); ok {
			ctx, cancel := m.requestContext()
			err := m.Session.Remove(ctx, task.ID)
			cancel()
			m.setResult("task deleted", err)
		}
	case "r":
		if task, ok := m.selectedTask(); ok {
			if task.Completed {
				m.Status = StatusBar{Text: "completed tasks cannot get a reminder", IsError: true}
			} else {
				m.Session.OpenPicker(task.ID)
			}
		}
	case "x":
		if task, ok := m.selectedTask(); ok && task.HasReminder() {
			m.setResult("reminder removed", m.Session.RemoveReminder(task.ID))
		}
	case "m":
		m.setResult("task marked done", m.Session.ActOnLatest(notify.MarkDone{}))
	case "s":
		m.setResult("task snoozed", m.Session.ActOnLatest(m.Session.SnoozeAction()))
	case "a":
		m.setResult("reminder dismissed", m.Session.AcknowledgeLatest())
	case "esc":
		switch {
		case m.Shares != nil:
			m.Shares = nil
		case m.HelpVisible:
			m.HelpVisible = false
		default:
			m.Session.DismissToast()
		}
	case "y", "p":
		return m.beginPermission()
	case "n":
		if m.Session.BannerVisible() {
			m.setResult("notification banner dismissed", m.Session.DismissBanner())
		}
	case "c":
		m.ShowCompleted = !m.ShowCompleted
		m.syncSelection()
	case m.Keys.Reload:
		return m.reload(), nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) Model {
	id, _ := m.Session.Picker()
	key := msg.String()
	if key == "esc" {
		m.Session.ClosePicker()
		m.Status = StatusBar{Text: "no reminder set"}
		return m
	}
	if len(key) != 1 || key[0] < '1' || int(key[0]-'0') > len(model.LeadOptions) {
		return m
	}
	lead := model.LeadOptions[key[0]-'1']
	_, err := m.Session.SetReminder(id, lead)
	m.setResult(fmt.Sprintf("reminder set %s", model.DescribeLead(lead)), err)
	return m
}

func (m Model) reload() Model {
	ctx, cancel := m.requestContext()
	defer cancel()
	if err := m.Session.Reload(ctx); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%d task(s) loaded", len(m.Session.Tasks()))}
	m.syncSelection()
	return m
}

// setResult reports the outcome of a session call in the status bar.
func (m *Model) setResult(ok string, err error) {
	if err != nil {
		m.LastError = err
		if errors.Is(err, notify.ErrDeliveryNotFound) {
			m.Status = StatusBar{Text: "no open reminder", IsError: true}
			return
		}
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.Status = StatusBar{Text: ok}
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	return views.RenderApp(views.AppData{
		Header:     m.header(),
		Banner:     views.RenderBanner(m.Session.BannerVisible()),
		LeftPane:   m.renderTaskView(),
		RightPane:  m.renderSidePane(),
		Toasts:     m.toastData(),
		StatusLine: status,
		IsError:    m.Status.IsError,
		Footer:     fmt.Sprintf("keys: j/k move | space done | r remind | x unremind | d delete | c completed | %s cmd | %s reload | %s help | %s quit", m.Keys.Palette, m.Keys.Reload, m.Keys.Help, m.Keys.Quit),
		Width:      m.Width,
	})
}

func (m Model) header() string {
	parts := []string{
		"tarefas",
		fmt.Sprintf("reminders armed: %d", m.Session.PendingCount()),
		fmt.Sprintf("notifications: %s", m.Session.Permission()),
	}
	if m.Requesting {
		parts = append(parts, m.syncSpinner.View()+" waiting for permission")
	}
	return strings.Join(parts, " | ")
}

func (m Model) renderSidePane() string {
	var sections []string
	if id, open := m.Session.Picker(); open {
		sections = append(sections, m.renderPicker(id))
	}
	if p := views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()); p != "" {
		sections = append(sections, p)
	}
	if d := views.RenderDeliveries(m.deliveryData()); d != "" {
		sections = append(sections, d)
	}
	if m.Shares != nil {
		sections = append(sections, m.renderShares())
	}
	if m.HelpVisible {
		sections = append(sections, m.renderHelpView())
	}
	return strings.Join(sections, "\n\n")
}
