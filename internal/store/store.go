package store

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/clock"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

// Store is the session's authoritative task list. Mutations are persisted
// first and applied to memory only once the backend accepts them. Reminders
// never reach the backend; they are carried across refreshes by task id.
//
// Store is not safe for concurrent use; it lives on the event loop.
type Store struct {
	persistence Persistence
	token       string
	clock       clock.Clock
	logger      *zap.Logger
	tasks       []model.Task
}

func New(p Persistence, token string, c clock.Clock, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{persistence: p, token: token, clock: c, logger: logger}
}

// Load replaces the task list with the backend's. On failure the list is
// cleared and every reminder is canceled, so nothing fires for stale data.
func (s *Store) Load(ctx context.Context) ([]Command, error) {
	list, err := s.persistence.List(ctx, s.token)
	if err != nil {
		cmds := make([]Command, 0, len(s.tasks))
		for _, t := range s.tasks {
			cmds = append(cmds, cancel(t.ID))
		}
		s.tasks = nil
		s.logger.Error("load tasks failed", zap.String("op", "list"), zap.Error(err))
		return cmds, &PersistenceError{Op: "list", Err: err}
	}

	now := s.clock.Now()
	previous := make(map[string]*model.Reminder, len(s.tasks))
	for _, t := range s.tasks {
		previous[t.ID] = t.Reminder
	}

	next := make([]model.Task, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	var cmds []Command
	for _, t := range list {
		seen[t.ID] = struct{}{}
		carried, c := carryReminder(previous[t.ID], t, now, false)
		next = append(next, carried)
		cmds = append(cmds, c...)
	}
	for _, t := range s.tasks {
		if _, ok := seen[t.ID]; !ok && t.Reminder != nil {
			cmds = append(cmds, cancel(t.ID))
		}
	}
	s.tasks = next
	s.logger.Info("tasks loaded", zap.Int("count", len(next)))
	return cmds, nil
}

func (s *Store) Create(ctx context.Context, draft model.Draft) (model.Task, []Command, error) {
	draft = draft.Normalized()
	if err := draft.Validate(s.clock.Now()); err != nil {
		return model.Task{}, nil, err
	}
	saved, err := s.persistence.Create(ctx, s.token, draft)
	if err != nil {
		s.logger.Error("create task failed", zap.String("op", "create"), zap.Error(err))
		return model.Task{}, nil, &PersistenceError{Op: "create", Err: err}
	}
	saved.Reminder = nil
	s.tasks = append(s.tasks, saved)
	s.logger.Info("task created", zap.String("task_id", saved.ID))
	return saved, nil, nil
}

func (s *Store) Update(ctx context.Context, id string, draft model.Draft) (model.Task, []Command, error) {
	draft = draft.Normalized()
	if err := draft.Validate(s.clock.Now()); err != nil {
		return model.Task{}, nil, err
	}
	return s.save(ctx, "update", id, draft)
}

// ToggleComplete flips completion without revalidating the due time, so
// overdue tasks can still be completed. Completing drops the reminder.
func (s *Store) ToggleComplete(ctx context.Context, id string) (model.Task, []Command, error) {
	current, ok := s.Get(id)
	if !ok {
		return model.Task{}, nil, ErrNotFound
	}
	draft := model.DraftOf(current)
	draft.Completed = !current.Completed
	return s.save(ctx, "toggle", id, draft)
}

// Snooze pushes the due time, and the reminder with it, forward.
func (s *Store) Snooze(ctx context.Context, id string, minutes int) (model.Task, []Command, error) {
	if minutes <= 0 || minutes > model.MaxMinutes {
		return model.Task{}, nil, fmt.Errorf("%w: %d", ErrInvalidSnooze, minutes)
	}
	current, ok := s.Get(id)
	if !ok {
		return model.Task{}, nil, ErrNotFound
	}
	shifted := current.Shifted(time.Duration(minutes) * time.Minute)
	return s.save(ctx, "snooze", id, model.DraftOf(shifted))
}

func (s *Store) save(ctx context.Context, op, id string, draft model.Draft) (model.Task, []Command, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, nil, ErrNotFound
	}
	saved, err := s.persistence.Update(ctx, s.token, id, draft)
	if err != nil {
		s.logger.Error("save task failed", zap.String("op", op), zap.String("task_id", id), zap.Error(err))
		return model.Task{}, nil, &PersistenceError{Op: op, Err: err}
	}
	saved.ID = id
	saved, cmds := carryReminder(s.tasks[idx].Reminder, saved, s.clock.Now(), true)
	s.tasks[idx] = saved
	s.logger.Info("task saved", zap.String("op", op), zap.String("task_id", id))
	return saved, cmds, nil
}

func (s *Store) Remove(ctx context.Context, id string) ([]Command, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	if err := s.persistence.Delete(ctx, s.token, id); err != nil {
		s.logger.Error("delete task failed", zap.String("op", "delete"), zap.String("task_id", id), zap.Error(err))
		return nil, &PersistenceError{Op: "delete", Err: err}
	}
	s.tasks = slices.Delete(s.tasks, idx, idx+1)
	s.logger.Info("task deleted", zap.String("task_id", id))
	return []Command{cancel(id)}, nil
}

// SetReminder replaces the task's reminder. A lead time that puts the fire
// time in the past clears any earlier reminder and reports ErrStaleReminder.
func (s *Store) SetReminder(id string, leadMinutes int) (model.Task, []Command, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, nil, ErrNotFound
	}
	t := s.tasks[idx]
	if t.Completed {
		return t, nil, ErrCompleted
	}
	rem, err := model.NewReminder(t.DueAt, leadMinutes, s.clock.Now())
	switch {
	case err == nil:
		t.Reminder = &rem
		s.tasks[idx] = t
		return t, []Command{schedule(t)}, nil
	case errors.Is(err, model.ErrStaleReminder):
		t.Reminder = nil
		s.tasks[idx] = t
		c := cancel(id)
		c.Stale = true
		return t, []Command{c}, err
	default:
		return t, nil, err
	}
}

func (s *Store) RemoveReminder(id string) (model.Task, []Command, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, nil, ErrNotFound
	}
	s.tasks[idx].Reminder = nil
	return s.tasks[idx], []Command{cancel(id)}, nil
}

func (s *Store) Get(id string) (model.Task, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, false
	}
	return s.tasks[idx], true
}

// Tasks returns a copy of the list ordered by due time.
func (s *Store) Tasks() []model.Task {
	out := slices.Clone(s.tasks)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		if c := a.DueAt.Compare(b.DueAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Store) Len() int { return len(s.tasks) }

func (s *Store) CanShare() bool {
	_, ok := s.persistence.(Sharer)
	return ok
}

func (s *Store) Share(ctx context.Context, id, email string) error {
	sharer, ok := s.persistence.(Sharer)
	if !ok {
		return ErrSharingUnsupported
	}
	if s.indexOf(id) < 0 {
		return ErrNotFound
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if err := sharer.Share(ctx, s.token, id, addr.Address); err != nil {
		return &PersistenceError{Op: "share", Err: err}
	}
	s.logger.Info("task shared", zap.String("task_id", id))
	return nil
}

func (s *Store) Received(ctx context.Context) ([]model.Share, error) {
	sharer, ok := s.persistence.(Sharer)
	if !ok {
		return nil, ErrSharingUnsupported
	}
	out, err := sharer.Received(ctx, s.token)
	if err != nil {
		return nil, &PersistenceError{Op: "received", Err: err}
	}
	return out, nil
}

func (s *Store) Sent(ctx context.Context) ([]model.Share, error) {
	sharer, ok := s.persistence.(Sharer)
	if !ok {
		return nil, ErrSharingUnsupported
	}
	out, err := sharer.Sent(ctx, s.token)
	if err != nil {
		return nil, &PersistenceError{Op: "sent", Err: err}
	}
	return out, nil
}

func (s *Store) Respond(ctx context.Context, shareID string, accept bool) error {
	sharer, ok := s.persistence.(Sharer)
	if !ok {
		return ErrSharingUnsupported
	}
	if err := sharer.Respond(ctx, s.token, shareID, accept); err != nil {
		return &PersistenceError{Op: "respond", Err: err}
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

// carryReminder moves a session reminder onto a fresh copy of its task,
// recomputing the fire time from the new due time. reportStale marks the
// cancel of a reminder that became stale so the caller can warn about it.
func carryReminder(prev *model.Reminder, t model.Task, now time.Time, reportStale bool) (model.Task, []Command) {
	t.Reminder = nil
	if prev == nil {
		return t, nil
	}
	if t.Completed {
		return t, []Command{cancel(t.ID)}
	}
	rem := prev.Recomputed(t.DueAt)
	if rem.IsStale(now) {
		c := cancel(t.ID)
		c.Stale = reportStale
		return t, []Command{c}
	}
	t.Reminder = &rem
	return t, []Command{schedule(t)}
}
