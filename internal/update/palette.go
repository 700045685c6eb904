package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/commands"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func errNoSelection() error {
	return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "select a task first"}
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.closePalette()
		return m
	}

	ctx, cancel := m.requestContext()
	defer cancel()

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.TaskArgs) (commands.Result, error) {
			due, err := commands.ParseWhen(a.When, m.now())
			if err != nil {
				return commands.Result{}, err
			}
			task, err := m.Session.Create(ctx, model.Draft{Title: a.Title, DueAt: due})
			if err != nil {
				return commands.Result{}, err
			}
			m.selectTask(task.ID)
			return commands.Result{Message: fmt.Sprintf("task created: %s, pick a reminder with 1-%d", task.Title, len(model.LeadOptions))}, nil
		},
		Edit: func(a commands.TaskArgs) (commands.Result, error) {
			task, ok := m.selectedTask()
			if !ok {
				return commands.Result{}, errNoSelection()
			}
			due, err := commands.ParseWhen(a.When, m.now())
			if err != nil {
				return commands.Result{}, err
			}
			draft := model.DraftOf(task)
			draft.Title = a.Title
			draft.DueAt = due
			if _, err := m.Session.Update(ctx, task.ID, draft); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("task updated: %s", a.Title)}, nil
		},
		Remind: func(a commands.MinutesArgs) (commands.Result, error) {
			task, ok := m.selectedTask()
			if !ok {
				return commands.Result{}, errNoSelection()
			}
			if _, err := m.Session.SetReminder(task.ID, a.Minutes); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("reminder set %s", model.DescribeLead(a.Minutes))}, nil
		},
		Snooze: func(a commands.MinutesArgs) (commands.Result, error) {
			task, ok := m.selectedTask()
			if !ok {
				return commands.Result{}, errNoSelection()
			}
			if _, err := m.Session.Snooze(ctx, task.ID, a.Minutes); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("snoozed %s for %d minutes", task.Title, a.Minutes)}, nil
		},
		Share: func(a commands.ShareArgs) (commands.Result, error) {
			task, ok := m.selectedTask()
			if !ok {
				return commands.Result{}, errNoSelection()
			}
			if err := m.Session.Share(ctx, task.ID, a.Email); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("shared %s with %s", task.Title, a.Email)}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			switch a.Subject {
			case "received", "sent":
				list := m.Session.Received
				title := "shared with me"
				if a.Subject == "sent" {
					list = m.Session.Sent
					title = "shared by me"
				}
				items, err := list(ctx)
				if err != nil {
					return commands.Result{}, err
				}
				m.Shares = &ShareListState{Title: title, Items: items}
				return commands.Result{Message: fmt.Sprintf("%d shared task(s)", len(items))}, nil
			default:
				m.ShowCompleted = a.Subject != "pending"
				m.syncSelection()
				return commands.Result{Message: fmt.Sprintf("showing %s tasks", a.Subject)}, nil
			}
		},
		Respond: func(a commands.RespondArgs) (commands.Result, error) {
			if err := m.Session.Respond(ctx, a.ShareID, a.Accept); err != nil {
				return commands.Result{}, err
			}
			m.Shares = nil
			if a.Accept {
				return commands.Result{Message: fmt.Sprintf("accepted share %s", a.ShareID)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("declined share %s", a.ShareID)}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
	}

	m.closePalette()
	return m
}
