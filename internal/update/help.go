package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/views"
)

const paletteHelp = `## Commands

- ` + "`add <title> @ <when>`" + ` create a task
- ` + "`edit <title> @ <when>`" + ` change the selected task
- ` + "`remind <minutes>`" + ` remind before the due time
- ` + "`snooze <minutes>`" + ` push the selected task back
- ` + "`share <email>`" + ` share the selected task
- ` + "`show pending|all|completed|received|sent`" + `
- ` + "`accept <id>`" + ` / ` + "`decline <id>`" + ` answer a share

` + "`<when>`" + ` is ` + "`2006-01-02 15:04`" + `, ` + "`02/01/2006 15:04`" + `, ` + "`today 18:00`" + `, ` + "`tomorrow 09:00`" + ` or ` + "`in 90m`" + `.
`

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.globalBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
		Markdown: paletteHelp,
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "j/k", Action: "move selection"},
		{Key: "space", Action: "complete / reopen task"},
		{Key: "r", Action: "set reminder"},
		{Key: "x", Action: "remove reminder"},
		{Key: "d", Action: "delete task"},
		{Key: "m/s/a", Action: "mark done / snooze / dismiss latest reminder"},
		{Key: "y/n", Action: "enable notifications / hide banner"},
		{Key: "c", Action: "show completed tasks"},
		{Key: "esc", Action: "close panel or toast"},
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: m.Keys.Reload, Action: "reload tasks"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
