package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

var (
	ErrPersistence        = errors.New("store: persistence failed")
	ErrNotFound           = errors.New("store: task not found")
	ErrSharingUnsupported = errors.New("store: sharing is not supported by this backend")
	ErrInvalidSnooze      = errors.New("store: snooze minutes out of range")
	ErrInvalidEmail       = errors.New("store: invalid email address")
	ErrCompleted          = errors.New("store: task is already completed")
)

// Persistence is the task list owned by a backend. Every call is a single
// attempt; the store never retries.
type Persistence interface {
	List(ctx context.Context, token string) ([]model.Task, error)
	Create(ctx context.Context, token string, draft model.Draft) (model.Task, error)
	Update(ctx context.Context, token string, id string, draft model.Draft) (model.Task, error)
	Delete(ctx context.Context, token string, id string) error
}

// Sharer is implemented by backends that can share tasks between users.
type Sharer interface {
	Share(ctx context.Context, token, taskID, email string) error
	Received(ctx context.Context, token string) ([]model.Share, error)
	Sent(ctx context.Context, token string) ([]model.Share, error)
	Respond(ctx context.Context, token, shareID string, accept bool) error
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

type CommandKind int

const (
	CommandSchedule CommandKind = iota + 1
	CommandCancel
)

func (k CommandKind) String() string {
	switch k {
	case CommandSchedule:
		return "schedule"
	case CommandCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Command tells the scheduler what a mutation implies for a task's timer.
// Stale marks a cancel caused by a reminder whose fire time already passed.
type Command struct {
	Kind   CommandKind
	TaskID string
	Task   model.Task
	Stale  bool
}

func schedule(t model.Task) Command {
	return Command{Kind: CommandSchedule, TaskID: t.ID, Task: t}
}

func cancel(id string) Command {
	return Command{Kind: CommandCancel, TaskID: id}
}
