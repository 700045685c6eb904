// Package session owns one run of the app: the task store, the reminder
// scheduler, the notification dispatcher and the permission gate. All of
// its methods run on the UI event loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/clock"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/notify"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/prefs"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/scheduler"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/store"
)

const (
	DefaultActionTimeout   = 10 * time.Second
	testNotificationLinger = 3 * time.Second
)

var ErrUnknownAction = errors.New("session: unknown notification action")

type Deps struct {
	Clock       clock.Clock
	Persistence store.Persistence
	Token       string
	Platform    notify.Platform
	Native      notify.NativeNotifier
	Chime       notify.Chime
	Prefs       prefs.Store

	ToastDuration time.Duration
	Dispatch      notify.DispatcherConfig
	// ActionTimeout bounds persistence calls made from notification actions.
	ActionTimeout time.Duration
	Logger        *zap.Logger
}

type Session struct {
	clock      clock.Clock
	store      *store.Store
	scheduler  *scheduler.Scheduler
	dispatcher *notify.Dispatcher
	gate       *notify.Gate
	toasts     *notify.Board
	platform   notify.Platform
	logger     *zap.Logger

	actionTimeout time.Duration
	snoozeMinutes int
	picker        string
}

func New(d Deps) *Session {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if d.ActionTimeout <= 0 {
		d.ActionTimeout = DefaultActionTimeout
	}
	if d.Dispatch.SnoozeMinutes <= 0 {
		d.Dispatch.SnoozeMinutes = notify.DefaultSnoozeMinutes
	}

	s := &Session{
		clock:         d.Clock,
		platform:      d.Platform,
		logger:        logger,
		actionTimeout: d.ActionTimeout,
		snoozeMinutes: d.Dispatch.SnoozeMinutes,
	}
	s.store = store.New(d.Persistence, d.Token, d.Clock, logger.Named("store"))
	s.toasts = notify.NewBoard(d.Clock, d.ToastDuration)
	s.gate = notify.NewGate(d.Platform, d.Prefs, logger.Named("permission"))
	s.dispatcher = notify.NewDispatcher(d.Clock, s.gate, d.Native, s.toasts, d.Chime, d.Dispatch, logger.Named("notify"))
	s.dispatcher.SetHandler(s)
	s.scheduler = scheduler.New(d.Clock, s.fire, logger.Named("scheduler"))
	return s
}

// Load fetches the task list and arms the reminders it still carries.
func (s *Session) Load(ctx context.Context) error {
	cmds, err := s.store.Load(ctx)
	s.apply(cmds)
	if err != nil {
		s.toastError("Could not load tasks", err)
		return err
	}
	return nil
}

// Activate re-arms reminders when the session regains focus.
func (s *Session) Activate() int {
	return s.scheduler.RescheduleAll(s.store.Tasks())
}

func (s *Session) Reload(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}
	s.Activate()
	return nil
}

// Create adds a task and opens the reminder picker for it.
func (s *Session) Create(ctx context.Context, draft model.Draft) (model.Task, error) {
	task, cmds, err := s.store.Create(ctx, draft)
	if err != nil {
		return model.Task{}, s.fail("Could not create task", err)
	}
	s.apply(cmds)
	s.picker = task.ID
	s.toasts.Show(notify.LevelSuccess, "Task created!", model.Summarize(task.Title, 40))
	return task, nil
}

func (s *Session) Update(ctx context.Context, id string, draft model.Draft) (model.Task, error) {
	task, cmds, err := s.store.Update(ctx, id, draft)
	if err != nil {
		return model.Task{}, s.fail("Could not update task", err)
	}
	s.apply(cmds)
	s.toasts.Show(notify.LevelSuccess, "Task updated!", model.Summarize(task.Title, 40))
	return task, nil
}

func (s *Session) Remove(ctx context.Context, id string) error {
	cmds, err := s.store.Remove(ctx, id)
	if err != nil {
		return s.fail("Could not delete task", err)
	}
	s.apply(cmds)
	if s.picker == id {
		s.picker = ""
	}
	s.toasts.Show(notify.LevelInfo, "Task deleted", "")
	return nil
}

func (s *Session) Toggle(ctx context.Context, id string) (model.Task, error) {
	task, cmds, err := s.store.ToggleComplete(ctx, id)
	if err != nil {
		return model.Task{}, s.fail("Could not update task", err)
	}
	s.apply(cmds)
	if task.Completed {
		s.toasts.Show(notify.LevelSuccess, "Task completed!", model.Summarize(task.Title, 40))
	} else {
		s.toasts.Show(notify.LevelInfo, "Task reopened", model.Summarize(task.Title, 40))
	}
	return task, nil
}

func (s *Session) Snooze(ctx context.Context, id string, minutes int) (model.Task, error) {
	task, cmds, err := s.store.Snooze(ctx, id, minutes)
	if err != nil {
		return model.Task{}, s.fail("Could not snooze task", err)
	}
	s.apply(cmds)
	s.toasts.Show(notify.LevelInfo, "Task snoozed!", fmt.Sprintf("Snoozed for %d minutes.", minutes))
	return task, nil
}

// SetReminder attaches a reminder lead time to a task. A lead that puts the
// fire time in the past is rejected with a warning and clears the reminder.
func (s *Session) SetReminder(id string, leadMinutes int) (model.Task, error) {
	task, cmds, err := s.store.SetReminder(id, leadMinutes)
	if s.picker == id {
		s.picker = ""
	}
	s.apply(cmds)
	if err != nil {
		if errors.Is(err, model.ErrStaleReminder) {
			return task, err
		}
		return task, s.fail("Could not set reminder", err)
	}
	s.toasts.Show(notify.LevelSuccess, "Reminder set!",
		fmt.Sprintf("You will be reminded %s.", model.DescribeLead(leadMinutes)))
	return task, nil
}

func (s *Session) RemoveReminder(id string) error {
	_, cmds, err := s.store.RemoveReminder(id)
	if err != nil {
		return s.fail("Could not remove reminder", err)
	}
	s.apply(cmds)
	s.toasts.Show(notify.LevelInfo, "Reminder removed", "")
	return nil
}

// HandleAction applies a notification action. It implements notify.ActionHandler.
func (s *Session) HandleAction(taskID string, action notify.Action) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.actionTimeout)
	defer cancel()

	switch a := action.(type) {
	case notify.MarkDone:
		task, ok := s.store.Get(taskID)
		if !ok {
			return store.ErrNotFound
		}
		if task.Completed {
			return nil
		}
		_, err := s.Toggle(ctx, taskID)
		return err
	case notify.Snooze:
		_, err := s.Snooze(ctx, taskID, a.Minutes)
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUnknownAction, action)
	}
}

// ActOnLatest applies action to the most recent open delivery.
func (s *Session) ActOnLatest(action notify.Action) error {
	d, ok := s.dispatcher.Latest()
	if !ok {
		return notify.ErrDeliveryNotFound
	}
	return s.dispatcher.Act(d.ID, action)
}

func (s *Session) SnoozeAction() notify.Action {
	return notify.Snooze{Minutes: s.snoozeMinutes}
}

func (s *Session) fire(taskID string) {
	task, ok := s.store.Get(taskID)
	if !ok || task.Completed {
		s.logger.Info("reminder skipped", zap.String("task_id", taskID), zap.Bool("found", ok))
		return
	}
	s.dispatcher.Dispatch(task)
}

func (s *Session) apply(cmds []store.Command) {
	for _, c := range cmds {
		switch c.Kind {
		case store.CommandSchedule:
			if _, err := s.scheduler.Schedule(c.Task); errors.Is(err, model.ErrStaleReminder) {
				s.warnStale(c.Task.Title)
			}
		case store.CommandCancel:
			s.scheduler.Cancel(c.TaskID)
			if c.Stale {
				title := ""
				if t, ok := s.store.Get(c.TaskID); ok {
					title = t.Title
				}
				s.warnStale(title)
			}
		}
	}
}

func (s *Session) warnStale(title string) {
	msg := "The reminder time has already passed."
	if title != "" {
		msg = fmt.Sprintf("The reminder time for %q has already passed.", model.Summarize(title, 40))
	}
	s.toasts.Show(notify.LevelWarning, "Reminder not set", msg)
}

// fail surfaces err as a toast unless it is a validation error, which the
// caller reports inline.
func (s *Session) fail(title string, err error) error {
	if !errors.Is(err, model.ErrInvalidDraft) {
		s.toastError(title, err)
	}
	return err
}

func (s *Session) toastError(title string, err error) {
	s.logger.Warn(title, zap.Error(err))
	s.toasts.Show(notify.LevelError, title, err.Error())
}
