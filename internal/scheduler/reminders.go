package scheduler

import (
	"time"

	"go.uber.org/zap"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/clock"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

type registration struct {
	handle clock.Handle
	fireAt time.Time
	gen    uint64
}

// Scheduler keeps at most one pending timer per task. It is not safe for
// concurrent use; every method and the fire callback run on the session's
// event loop.
type Scheduler struct {
	clock   clock.Clock
	fire    func(taskID string)
	logger  *zap.Logger
	pending map[string]registration
	gen     uint64
}

func New(c clock.Clock, fire func(taskID string), logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fire == nil {
		fire = func(string) {}
	}
	return &Scheduler{
		clock:   c,
		fire:    fire,
		logger:  logger,
		pending: make(map[string]registration),
	}
}

// Schedule arms the task's reminder, releasing any earlier timer first.
// It returns false without error for tasks with no reminder or already
// completed, and model.ErrStaleReminder when the fire time has passed.
func (s *Scheduler) Schedule(task model.Task) (bool, error) {
	if task.Reminder == nil {
		return false, nil
	}
	s.Cancel(task.ID)
	if task.Completed {
		return false, nil
	}

	now := s.clock.Now()
	fireAt := task.Reminder.FireAt
	if task.Reminder.IsStale(now) {
		s.logger.Warn("stale reminder dropped",
			zap.String("task_id", task.ID),
			zap.Time("fire_at", fireAt),
		)
		return false, model.ErrStaleReminder
	}

	s.gen++
	gen := s.gen
	id := task.ID
	handle := s.clock.AfterFunc(fireAt.Sub(now), func() { s.expire(id, gen) })
	s.pending[id] = registration{handle: handle, fireAt: fireAt, gen: gen}
	s.logger.Debug("reminder armed",
		zap.String("task_id", id),
		zap.Time("fire_at", fireAt),
		zap.Duration("delay", fireAt.Sub(now)),
	)
	return true, nil
}

// Cancel releases the task's pending timer. It reports whether one existed.
func (s *Scheduler) Cancel(taskID string) bool {
	reg, ok := s.pending[taskID]
	if !ok {
		return false
	}
	reg.handle.Stop()
	delete(s.pending, taskID)
	s.logger.Debug("reminder canceled", zap.String("task_id", taskID))
	return true
}

// RescheduleAll re-arms every incomplete task whose reminder is still in the
// future and drops registrations for tasks that no longer qualify. It
// returns the number of armed timers.
func (s *Scheduler) RescheduleAll(tasks []model.Task) int {
	keep := make(map[string]bool, len(tasks))
	armed := 0
	now := s.clock.Now()
	for _, task := range tasks {
		if !task.HasReminder() || task.Reminder.IsStale(now) {
			continue
		}
		if ok, _ := s.Schedule(task); ok {
			keep[task.ID] = true
			armed++
		}
	}
	for id := range s.pending {
		if !keep[id] {
			s.Cancel(id)
		}
	}
	s.logger.Info("reminders rescheduled", zap.Int("armed", armed))
	return armed
}

func (s *Scheduler) Pending(taskID string) (time.Time, bool) {
	reg, ok := s.pending[taskID]
	return reg.fireAt, ok
}

func (s *Scheduler) Len() int {
	return len(s.pending)
}

func (s *Scheduler) expire(taskID string, gen uint64) {
	reg, ok := s.pending[taskID]
	if !ok || reg.gen != gen {
		return
	}
	delete(s.pending, taskID)
	s.logger.Info("reminder fired", zap.String("task_id", taskID), zap.Time("fire_at", reg.fireAt))
	s.fire(taskID)
}
