package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// ErrInvalidDraft matches every FieldError returned by Draft.Validate.
var ErrInvalidDraft = errors.New("model: invalid task draft")

type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("model: %s %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidDraft
}

type Task struct {
	ID          string
	Title       string
	Description string
	DueAt       time.Time
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	Reminder    *Reminder
}

// Draft carries the user-editable fields sent to persistence on create and update.
type Draft struct {
	Title       string
	Description string
	DueAt       time.Time
	Completed   bool
}

func (d Draft) Validate(now time.Time) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return &FieldError{Field: "title", Message: "is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &FieldError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	}
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLength {
		return &FieldError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)}
	}
	if d.DueAt.IsZero() {
		return &FieldError{Field: "due_at", Message: "is required"}
	}
	if !d.DueAt.After(now) {
		return &FieldError{Field: "due_at", Message: "must be in the future"}
	}
	return nil
}

// Normalized trims the title and description.
func (d Draft) Normalized() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	return d
}

// DraftOf returns the persisted fields of t, for mutations that do not come from a form.
func DraftOf(t Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		DueAt:       t.DueAt,
		Completed:   t.Completed,
	}
}

// HasReminder reports whether t carries a reminder that may still need a timer.
func (t Task) HasReminder() bool {
	return t.Reminder != nil && !t.Completed
}

// Shifted moves the due time, and the reminder fire time with it, forward by d.
func (t Task) Shifted(d time.Duration) Task {
	t.DueAt = t.DueAt.Add(d)
	if t.Reminder != nil {
		rem := t.Reminder.Shifted(d)
		t.Reminder = &rem
	}
	return t
}

func FormatDue(t time.Time) string {
	return t.Local().Format("02/01/2006 15:04")
}

func Summarize(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}
