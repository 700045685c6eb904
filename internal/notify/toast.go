package notify

import (
	"time"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/clock"
)

const DefaultToastDuration = 5 * time.Second

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

type Toast struct {
	ID      uint64
	Level   Level
	Title   string
	Message string
	ShownAt time.Time
}

type CloseReason int

const (
	ClosedExpired CloseReason = iota
	ClosedByUser
)

type activeToast struct {
	toast   Toast
	timer   clock.Handle
	onClose func(CloseReason)
}

// Board holds the in-app toasts. Each toast dismisses itself after the
// board's duration unless closed earlier.
type Board struct {
	clock    clock.Clock
	duration time.Duration
	seq      uint64
	active   []*activeToast
}

func NewBoard(c clock.Clock, duration time.Duration) *Board {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &Board{clock: c, duration: duration}
}

func (b *Board) Show(level Level, title, message string) uint64 {
	return b.ShowWith(level, title, message, nil)
}

// ShowWith shows a toast and calls onClose once when it leaves the board.
func (b *Board) ShowWith(level Level, title, message string, onClose func(CloseReason)) uint64 {
	b.seq++
	id := b.seq
	item := &activeToast{
		toast: Toast{
			ID:      id,
			Level:   level,
			Title:   title,
			Message: message,
			ShownAt: b.clock.Now(),
		},
		onClose: onClose,
	}
	item.timer = b.clock.AfterFunc(b.duration, func() { b.remove(id, ClosedExpired) })
	b.active = append(b.active, item)
	return id
}

func (b *Board) Dismiss(id uint64) bool {
	return b.remove(id, ClosedByUser)
}

// DismissLatest closes the newest toast, if any.
func (b *Board) DismissLatest() bool {
	if len(b.active) == 0 {
		return false
	}
	return b.Dismiss(b.active[len(b.active)-1].toast.ID)
}

func (b *Board) Active() []Toast {
	out := make([]Toast, 0, len(b.active))
	for _, item := range b.active {
		out = append(out, item.toast)
	}
	return out
}

func (b *Board) remove(id uint64, reason CloseReason) bool {
	for i, item := range b.active {
		if item.toast.ID != id {
			continue
		}
		b.active = append(b.active[:i], b.active[i+1:]...)
		if reason != ClosedExpired && item.timer != nil {
			item.timer.Stop()
		}
		if item.onClose != nil {
			item.onClose(reason)
		}
		return true
	}
	return false
}
