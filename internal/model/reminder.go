package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidLead   = errors.New("model: reminder lead time out of range")
	ErrStaleReminder = errors.New("model: reminder time has already passed")
)

// MaxMinutes bounds lead and snooze lengths, ten years.
const MaxMinutes = 10 * 365 * 24 * 60

// LeadOptions are the lead times offered by the reminder picker, in minutes.
var LeadOptions = []int{5, 15, 30, 60, 1440}

type Reminder struct {
	LeadMinutes int
	FireAt      time.Time
}

func NewReminder(due time.Time, leadMinutes int, now time.Time) (Reminder, error) {
	if leadMinutes <= 0 || leadMinutes > MaxMinutes {
		return Reminder{}, fmt.Errorf("%w: %d", ErrInvalidLead, leadMinutes)
	}
	rem := Reminder{
		LeadMinutes: leadMinutes,
		FireAt:      due.Add(-time.Duration(leadMinutes) * time.Minute),
	}
	if !rem.FireAt.After(now) {
		return Reminder{}, ErrStaleReminder
	}
	return rem, nil
}

// Recomputed keeps the lead time and derives the fire time from a new due time.
func (r Reminder) Recomputed(due time.Time) Reminder {
	r.FireAt = due.Add(-time.Duration(r.LeadMinutes) * time.Minute)
	return r
}

func (r Reminder) Shifted(d time.Duration) Reminder {
	r.FireAt = r.FireAt.Add(d)
	return r
}

func (r Reminder) IsStale(now time.Time) bool {
	return !r.FireAt.After(now)
}

func DescribeLead(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d minutes before", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%d hour(s) before", minutes/60)
	default:
		return fmt.Sprintf("%d day(s) before", minutes/1440)
	}
}
