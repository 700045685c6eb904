package update

import (
	"fmt"
	"time"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/views"
)

func (m Model) renderTaskView() string {
	now := m.now()
	tasks := m.visibleTasks()
	items := make([]views.TaskItemData, 0, len(tasks))
	for _, t := range tasks {
		item := views.TaskItemData{
			ID:        t.ID,
			Title:     model.Summarize(t.Title, 40),
			Due:       model.FormatDue(t.DueAt),
			Completed: t.Completed,
			Overdue:   t.DueAt.Before(now),
		}
		if fireAt, ok := m.Session.Pending(t.ID); ok {
			item.Reminder = fmt.Sprintf("(remind in %s)", formatUntil(fireAt.Sub(now)))
		}
		items = append(items, item)
	}

	all := m.Session.Tasks()
	pending := 0
	for _, t := range all {
		if !t.Completed {
			pending++
		}
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		Items:         items,
		SelectedID:    m.SelectedTaskID,
		Total:         len(all),
		Pending:       pending,
		ShowCompleted: m.ShowCompleted,
	})
}

func (m Model) renderPicker(id string) string {
	task, _ := m.Session.Get(id)
	opts := make([]string, 0, len(model.LeadOptions))
	for _, lead := range model.LeadOptions {
		opts = append(opts, model.DescribeLead(lead))
	}
	return views.RenderPicker(views.PickerData{TaskTitle: model.Summarize(task.Title, 40), Options: opts})
}

func (m Model) renderShares() string {
	items := make([]views.ShareData, 0, len(m.Shares.Items))
	for _, s := range m.Shares.Items {
		items = append(items, views.ShareData{
			ID:     s.ID,
			Title:  model.Summarize(s.Task.Title, 30),
			Peer:   s.Peer(),
			Status: string(s.Status),
		})
	}
	return views.RenderSharePanel(views.SharePanelData{Title: m.Shares.Title, Items: items})
}

func (m Model) toastData() []views.ToastData {
	active := m.Session.Toasts()
	out := make([]views.ToastData, 0, len(active))
	for _, t := range active {
		out = append(out, views.ToastData{Level: string(t.Level), Title: t.Title, Message: t.Message})
	}
	return out
}

func formatUntil(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd%dh", int(d/(24*time.Hour)), int(d%(24*time.Hour)/time.Hour))
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d/time.Hour), int(d%time.Hour/time.Minute))
	default:
		return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
	}
}
