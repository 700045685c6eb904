package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/clock"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/notify"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/scheduler"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/session"
)

const (
	DefaultRequestTimeout   = 10 * time.Second
	permissionPromptTimeout = 2 * time.Minute
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Palette string
	Reload  string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// ShareListState holds the last share listing asked for from the palette.
type ShareListState struct {
	Title string
	Items []model.Share
}

type Options struct {
	Session *session.Session
	Clock   clock.Clock
	// Expiries is the real engine's expiry channel. Nil when the clock runs
	// callbacks itself.
	Expiries       <-chan scheduler.Expiry
	RequestTimeout time.Duration
}

type Model struct {
	Session        *session.Session
	Cursor         int
	SelectedTaskID string
	ShowCompleted  bool
	Shares         *ShareListState
	Palette        CommandPaletteState
	HelpVisible    bool
	Requesting     bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	Width          int

	clock          clock.Clock
	expiries       <-chan scheduler.Expiry
	requestTimeout time.Duration
	commandInput   textinput.Model
	syncSpinner    spinner.Model
	helpModel      help.Model
}

// ExpiryMsg carries a timer that came due on the engine goroutine.
type ExpiryMsg struct {
	Expiry scheduler.Expiry
}

// RunMsg runs Fn on the event loop. Native notification callbacks arrive
// this way.
type RunMsg struct {
	Fn func()
}

type PermissionMsg struct {
	Permission notify.Permission
	Err        error
}

type LoadMsg struct{}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel(opts Options) Model {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	m := Model{
		Session:        opts.Session,
		clock:          opts.Clock,
		expiries:       opts.Expiries,
		requestTimeout: opts.RequestTimeout,
		Keys: GlobalKeyMap{
			Palette: "/",
			Reload:  "R",
			Help:    "?",
			Quit:    "q",
		},
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48
	m.commandInput.Placeholder = "add Pay rent @ tomorrow 09:00"

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m Model) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock.Now()
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.requestTimeout)
}

// visibleTasks hides completed tasks unless ShowCompleted is on.
func (m Model) visibleTasks() []model.Task {
	all := m.Session.Tasks()
	if m.ShowCompleted {
		return all
	}
	out := make([]model.Task, 0, len(all))
	for _, t := range all {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.SelectedTaskID == "" {
		return model.Task{}, false
	}
	return m.Session.Get(m.SelectedTaskID)
}

// syncSelection keeps the cursor inside the visible list and the selected
// id in step with it.
func (m *Model) syncSelection() {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		m.Cursor = 0
		m.SelectedTaskID = ""
		return
	}
	if m.Cursor >= len(tasks) {
		m.Cursor = len(tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.SelectedTaskID = tasks[m.Cursor].ID
}

func (m *Model) selectTask(id string) {
	for i, t := range m.visibleTasks() {
		if t.ID == id {
			m.Cursor = i
			m.SelectedTaskID = id
			return
		}
	}
	m.syncSelection()
}
