package session

import (
	"context"
	"time"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/notify"
)

func (s *Session) Tasks() []model.Task {
	return s.store.Tasks()
}

func (s *Session) Get(id string) (model.Task, bool) {
	return s.store.Get(id)
}

// Pending reports the armed fire time of a task's reminder.
func (s *Session) Pending(id string) (time.Time, bool) {
	return s.scheduler.Pending(id)
}

func (s *Session) PendingCount() int {
	return s.scheduler.Len()
}

// Picker returns the task waiting for a reminder lead choice.
func (s *Session) Picker() (string, bool) {
	return s.picker, s.picker != ""
}

func (s *Session) OpenPicker(id string) bool {
	if _, ok := s.store.Get(id); !ok {
		return false
	}
	s.picker = id
	return true
}

func (s *Session) ClosePicker() {
	s.picker = ""
}

func (s *Session) Toasts() []notify.Toast {
	return s.toasts.Active()
}

func (s *Session) DismissToast() bool {
	return s.toasts.DismissLatest()
}

func (s *Session) Deliveries() []notify.Delivery {
	return s.dispatcher.Deliveries()
}

func (s *Session) LatestDelivery() (notify.Delivery, bool) {
	return s.dispatcher.Latest()
}

func (s *Session) AcknowledgeLatest() error {
	d, ok := s.dispatcher.Latest()
	if !ok {
		return notify.ErrDeliveryNotFound
	}
	return s.dispatcher.Acknowledge(d.ID)
}

func (s *Session) CanShare() bool {
	return s.store.CanShare()
}

func (s *Session) Share(ctx context.Context, id, email string) error {
	if err := s.store.Share(ctx, id, email); err != nil {
		return s.fail("Could not share task", err)
	}
	s.toasts.Show(notify.LevelSuccess, "Task shared!", "They can accept or decline it.")
	return nil
}

func (s *Session) Received(ctx context.Context) ([]model.Share, error) {
	out, err := s.store.Received(ctx)
	if err != nil {
		return nil, s.fail("Could not load shared tasks", err)
	}
	return out, nil
}

func (s *Session) Sent(ctx context.Context) ([]model.Share, error) {
	out, err := s.store.Sent(ctx)
	if err != nil {
		return nil, s.fail("Could not load shared tasks", err)
	}
	return out, nil
}

func (s *Session) Respond(ctx context.Context, shareID string, accept bool) error {
	if err := s.store.Respond(ctx, shareID, accept); err != nil {
		return s.fail("Could not answer share", err)
	}
	if accept {
		s.toasts.Show(notify.LevelSuccess, "Task accepted", "")
	} else {
		s.toasts.Show(notify.LevelInfo, "Task declined", "")
	}
	return nil
}
