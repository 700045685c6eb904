package notify

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/clock"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

var (
	ErrDeliveryNotFound = errors.New("notify: delivery not found")
	ErrDeliveryClosed   = errors.New("notify: delivery already closed")
)

const (
	DefaultNativeAutoClose = 10 * time.Second
	DefaultSnoozeMinutes   = 5
	reminderTitle          = "Task reminder"
	maxDeliveries          = 20
)

type Channel string

const (
	ChannelNone   Channel = ""
	ChannelNative Channel = "native"
	ChannelToast  Channel = "toast"
)

type State string

const (
	StateArmed             State = "armed"
	StateFired             State = "fired"
	StateDeliveredNative   State = "delivered_native"
	StateDeliveredFallback State = "delivered_fallback"
	StateAcknowledged      State = "acknowledged"
	StateTimedOut          State = "timed_out"
	StateActioned          State = "actioned"
)

func (s State) IsOpen() bool {
	return s == StateDeliveredNative || s == StateDeliveredFallback
}

type Delivery struct {
	ID       uint64
	TaskID   string
	Title    string
	Body     string
	Channel  Channel
	State    State
	FiredAt  time.Time
	ClosedAt *time.Time
	Action   Action
}

type delivery struct {
	Delivery
	native  NativeHandle
	toastID uint64
}

type DispatcherConfig struct {
	NativeAutoClose time.Duration
	SnoozeMinutes   int
}

// Dispatcher turns a fired reminder into a native notification or, without
// permission, an in-app toast, and routes the user's response back to the
// ActionHandler.
type Dispatcher struct {
	clock      clock.Clock
	gate       *Gate
	native     NativeNotifier
	toasts     *Board
	chime      Chime
	handler    ActionHandler
	cfg        DispatcherConfig
	logger     *zap.Logger
	seq        uint64
	deliveries []*delivery
}

func NewDispatcher(c clock.Clock, gate *Gate, native NativeNotifier, toasts *Board, chime Chime, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if native == nil {
		native = NoopNotifier{}
	}
	if cfg.NativeAutoClose <= 0 {
		cfg.NativeAutoClose = DefaultNativeAutoClose
	}
	if cfg.SnoozeMinutes <= 0 {
		cfg.SnoozeMinutes = DefaultSnoozeMinutes
	}
	return &Dispatcher{
		clock:  c,
		gate:   gate,
		native: native,
		toasts: toasts,
		chime:  chime,
		cfg:    cfg,
		logger: logger,
	}
}

func (d *Dispatcher) SetHandler(h ActionHandler) {
	d.handler = h
}

// Dispatch delivers the reminder for task and returns the delivery record.
func (d *Dispatcher) Dispatch(task model.Task) Delivery {
	d.seq++
	item := &delivery{Delivery: Delivery{
		ID:     d.seq,
		TaskID: task.ID,
		Title:  reminderTitle,
		Body:   fmt.Sprintf("%s\n%s", task.Title, model.FormatDue(task.DueAt)),
		State:  StateArmed,
	}}
	d.track(item)

	item.State = StateFired
	item.FiredAt = d.clock.Now()
	if err := playCue(d.chime); err != nil {
		d.logger.Debug("audio cue failed", zap.Error(err))
	}

	if d.gate != nil && d.gate.Granted() {
		if d.deliverNative(item) {
			return item.Delivery
		}
	}
	d.deliverToast(item)
	return item.Delivery
}

func (d *Dispatcher) deliverNative(item *delivery) bool {
	id := item.ID
	n := Notification{
		Tag:   "task-" + item.TaskID,
		Title: item.Title,
		Body:  item.Body,
		Actions: []ActionButton{
			{Key: "mark-done", Label: "Mark done", Action: MarkDone{}},
			{Key: "snooze", Label: fmt.Sprintf("Snooze %d min", d.cfg.SnoozeMinutes), Action: Snooze{Minutes: d.cfg.SnoozeMinutes}},
		},
		RequireInteraction: true,
	}
	h, err := d.native.Show(n, Callbacks{
		OnAction: func(a Action) {
			if err := d.Act(id, a); err != nil && !errors.Is(err, ErrDeliveryClosed) {
				d.logger.Warn("notification action failed", zap.Uint64("delivery_id", id), zap.Error(err))
			}
		},
		OnClose: func() { _ = d.Acknowledge(id) },
	})
	if err != nil {
		d.logger.Warn("native notification failed, falling back to toast",
			zap.String("task_id", item.TaskID), zap.Error(err))
		return false
	}
	item.native = h
	item.Channel = ChannelNative
	item.State = StateDeliveredNative
	d.logger.Info("reminder delivered", zap.String("task_id", item.TaskID), zap.String("channel", string(ChannelNative)))
	return true
}

func (d *Dispatcher) deliverToast(item *delivery) {
	item.Channel = ChannelToast
	item.State = StateDeliveredFallback
	item.toastID = d.toasts.ShowWith(LevelWarning, item.Title, item.Body, func(reason CloseReason) {
		if reason == ClosedExpired {
			d.close(item, StateTimedOut)
			return
		}
		d.close(item, StateAcknowledged)
	})
	d.logger.Info("reminder delivered", zap.String("task_id", item.TaskID), zap.String("channel", string(ChannelToast)))
}

// Notify shows a native notification outside the reminder flow. Ones that
// do not require interaction close themselves after a bounded delay.
func (d *Dispatcher) Notify(n Notification) error {
	if d.gate == nil || !d.gate.Granted() {
		return ErrUnsupported
	}
	h, err := d.native.Show(n, Callbacks{})
	if err != nil {
		return err
	}
	if !n.RequireInteraction {
		delay := n.CloseAfter
		if delay <= 0 {
			delay = d.cfg.NativeAutoClose
		}
		d.clock.AfterFunc(delay, func() { _ = h.Close() })
	}
	return nil
}

// Act applies a user action to an open delivery.
func (d *Dispatcher) Act(id uint64, action Action) error {
	item := d.find(id)
	if item == nil {
		return ErrDeliveryNotFound
	}
	if !item.State.IsOpen() {
		return ErrDeliveryClosed
	}
	item.Action = action
	d.close(item, StateActioned)
	d.logger.Info("reminder actioned", zap.String("task_id", item.TaskID), zap.Stringer("action", action))
	if d.handler == nil {
		return nil
	}
	return d.handler.HandleAction(item.TaskID, action)
}

// Acknowledge records that the user dismissed the delivery without acting.
func (d *Dispatcher) Acknowledge(id uint64) error {
	item := d.find(id)
	if item == nil {
		return ErrDeliveryNotFound
	}
	if !item.State.IsOpen() {
		return ErrDeliveryClosed
	}
	d.close(item, StateAcknowledged)
	return nil
}

// Latest returns the most recent delivery that can still be acted on.
func (d *Dispatcher) Latest() (Delivery, bool) {
	for i := len(d.deliveries) - 1; i >= 0; i-- {
		if d.deliveries[i].State.IsOpen() {
			return d.deliveries[i].Delivery, true
		}
	}
	return Delivery{}, false
}

func (d *Dispatcher) Deliveries() []Delivery {
	out := make([]Delivery, 0, len(d.deliveries))
	for _, item := range d.deliveries {
		out = append(out, item.Delivery)
	}
	return out
}

func (d *Dispatcher) close(item *delivery, state State) {
	if !item.State.IsOpen() {
		return
	}
	now := d.clock.Now()
	item.State = state
	item.ClosedAt = &now
	switch item.Channel {
	case ChannelNative:
		if item.native != nil {
			_ = item.native.Close()
		}
	case ChannelToast:
		d.toasts.Dismiss(item.toastID)
	}
}

func (d *Dispatcher) find(id uint64) *delivery {
	for _, item := range d.deliveries {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (d *Dispatcher) track(item *delivery) {
	d.deliveries = append(d.deliveries, item)
	if len(d.deliveries) > maxDeliveries {
		d.deliveries = d.deliveries[len(d.deliveries)-maxDeliveries:]
	}
}
