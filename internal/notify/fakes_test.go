package notify

import (
	"context"
	"errors"
	"time"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/clock"
)

var baseTime = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

type fakePlatform struct {
	status   Permission
	answer   Permission
	err      error
	requests int
}

func (p *fakePlatform) QueryPermission() Permission { return p.status }

func (p *fakePlatform) RequestPermission(context.Context) (Permission, error) {
	p.requests++
	return p.answer, p.err
}

type fakeHandle struct {
	closed int
}

func (h *fakeHandle) Close() error {
	h.closed++
	return nil
}

type shown struct {
	n      Notification
	cb     Callbacks
	handle *fakeHandle
}

type fakeNative struct {
	shows []shown
	err   error
}

func (f *fakeNative) Show(n Notification, cb Callbacks) (NativeHandle, error) {
	if f.err != nil {
		return nil, f.err
	}
	h := &fakeHandle{}
	f.shows = append(f.shows, shown{n: n, cb: cb, handle: h})
	return h, nil
}

type countingChime struct {
	plays int
	err   error
	panic bool
}

func (c *countingChime) Play() error {
	c.plays++
	if c.panic {
		panic("audio device gone")
	}
	return c.err
}

type recordedAction struct {
	taskID string
	action Action
}

type actionRecorder struct {
	calls []recordedAction
}

func (r *actionRecorder) HandleAction(taskID string, a Action) error {
	r.calls = append(r.calls, recordedAction{taskID: taskID, action: a})
	return nil
}

var errBoom = errors.New("boom")

func newFakeClock() *clock.Fake {
	return clock.NewFake(baseTime)
}
