package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDraftValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	draft := Draft{
		Title:       "Pay electricity bill",
		Description: "before the 15th",
		DueAt:       now.Add(time.Hour),
	}
	if err := draft.Validate(now); err != nil {
		t.Fatalf("expected valid draft, got error: %v", err)
	}
}

func TestDraftValidateRejectsMalformedInput(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		draft Draft
		field string
	}{
		{name: "empty title", draft: Draft{Title: "   ", DueAt: now.Add(time.Hour)}, field: "title"},
		{name: "long title", draft: Draft{Title: strings.Repeat("a", MaxTitleLength+1), DueAt: now.Add(time.Hour)}, field: "title"},
		{name: "long description", draft: Draft{Title: "ok", Description: strings.Repeat("d", MaxDescriptionLength+1), DueAt: now.Add(time.Hour)}, field: "description"},
		{name: "missing due", draft: Draft{Title: "ok"}, field: "due_at"},
		{name: "past due", draft: Draft{Title: "ok", DueAt: now.Add(-time.Minute)}, field: "due_at"},
		{name: "due now", draft: Draft{Title: "ok", DueAt: now}, field: "due_at"},
	}
	for _, tc := range cases {
		err := tc.draft.Validate(now)
		if err == nil {
			t.Fatalf("%s: expected error, got nil", tc.name)
		}
		if !errors.Is(err, ErrInvalidDraft) {
			t.Fatalf("%s: expected ErrInvalidDraft, got: %v", tc.name, err)
		}
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) || fieldErr.Field != tc.field {
			t.Fatalf("%s: expected field %q, got: %v", tc.name, tc.field, err)
		}
	}
}

func TestDraftValidateCountsRunesNotBytes(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	draft := Draft{Title: strings.Repeat("ç", MaxTitleLength), DueAt: now.Add(time.Hour)}
	if err := draft.Validate(now); err != nil {
		t.Fatalf("expected %d multibyte runes to be accepted, got: %v", MaxTitleLength, err)
	}
}

func TestTaskShiftedMovesDueAndFireTogether(t *testing.T) {
	due := time.Date(2026, 2, 9, 13, 0, 0, 0, time.UTC)
	task := Task{ID: "task-1", DueAt: due, Reminder: &Reminder{LeadMinutes: 10, FireAt: due.Add(-10 * time.Minute)}}

	shifted := task.Shifted(5 * time.Minute)
	if !shifted.DueAt.Equal(due.Add(5 * time.Minute)) {
		t.Fatalf("unexpected due: %v", shifted.DueAt)
	}
	if !shifted.Reminder.FireAt.Equal(due.Add(-5 * time.Minute)) {
		t.Fatalf("unexpected fire time: %v", shifted.Reminder.FireAt)
	}
	if !task.Reminder.FireAt.Equal(due.Add(-10 * time.Minute)) {
		t.Fatal("expected original task reminder to be untouched")
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize("short", 10); got != "short" {
		t.Fatalf("unexpected summary: %q", got)
	}
	if got := Summarize("a longer sentence", 8); got != "a longer..." {
		t.Fatalf("unexpected summary: %q", got)
	}
}
