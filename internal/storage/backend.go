package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

// Backend serves the task store from a local repository. The session token
// is ignored: a local database belongs to one user.
type Backend struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func NewBackend(repo Repository, now func() time.Time) *Backend {
	if now == nil {
		now = time.Now
	}
	return &Backend{repo: repo, now: now, newID: uuid.NewString}
}

func (b *Backend) List(ctx context.Context, _ string) ([]model.Task, error) {
	rows, err := b.repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, toModel(row))
	}
	return out, nil
}

func (b *Backend) Create(ctx context.Context, _ string, d model.Draft) (model.Task, error) {
	row := Task{
		ID:          b.newID(),
		Title:       d.Title,
		Description: d.Description,
		DueAt:       d.DueAt,
		Completed:   d.Completed,
		CreatedAt:   b.now(),
	}
	if err := b.repo.CreateTask(ctx, row); err != nil {
		return model.Task{}, err
	}
	return toModel(row), nil
}

func (b *Backend) Update(ctx context.Context, _ string, id string, d model.Draft) (model.Task, error) {
	row, err := b.repo.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	now := b.now()
	row.Title = d.Title
	row.Description = d.Description
	row.DueAt = d.DueAt
	row.Completed = d.Completed
	row.UpdatedAt = &now
	if err := b.repo.UpdateTask(ctx, row); err != nil {
		return model.Task{}, err
	}
	return toModel(row), nil
}

// Delete treats a missing row as already deleted.
func (b *Backend) Delete(ctx context.Context, _ string, id string) error {
	if err := b.repo.DeleteTask(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func toModel(row Task) model.Task {
	return model.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		DueAt:       row.DueAt,
		Completed:   row.Completed,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
