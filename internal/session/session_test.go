package session

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/clock"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/notify"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/prefs"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/store"
)

var baseTime = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

var errOffline = errors.New("offline")

type memBackend struct {
	tasks   []model.Task
	seq     int
	err     error
	updates int
}

func (m *memBackend) List(context.Context, string) ([]model.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]model.Task(nil), m.tasks...), nil
}

func (m *memBackend) Create(_ context.Context, _ string, d model.Draft) (model.Task, error) {
	if m.err != nil {
		return model.Task{}, m.err
	}
	m.seq++
	t := model.Task{ID: strconv.Itoa(m.seq), Title: d.Title, Description: d.Description, DueAt: d.DueAt, CreatedAt: baseTime}
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m *memBackend) Update(_ context.Context, _ string, id string, d model.Draft) (model.Task, error) {
	m.updates++
	if m.err != nil {
		return model.Task{}, m.err
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Title, m.tasks[i].DueAt, m.tasks[i].Completed = d.Title, d.DueAt, d.Completed
			return m.tasks[i], nil
		}
	}
	return model.Task{}, errors.New("missing")
}

func (m *memBackend) Delete(_ context.Context, _ string, id string) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakePlatform struct {
	status notify.Permission
	answer notify.Permission
}

func (p *fakePlatform) QueryPermission() notify.Permission { return p.status }

func (p *fakePlatform) RequestPermission(context.Context) (notify.Permission, error) {
	return p.answer, nil
}

type fakeHandle struct{ closed int }

func (h *fakeHandle) Close() error {
	h.closed++
	return nil
}

type shown struct {
	n      notify.Notification
	cb     notify.Callbacks
	handle *fakeHandle
}

type fakeNative struct{ shows []shown }

func (f *fakeNative) Show(n notify.Notification, cb notify.Callbacks) (notify.NativeHandle, error) {
	h := &fakeHandle{}
	f.shows = append(f.shows, shown{n: n, cb: cb, handle: h})
	return h, nil
}

type fixture struct {
	clock    *clock.Fake
	backend  *memBackend
	platform *fakePlatform
	native   *fakeNative
	prefs    *prefs.Memory
	session  *Session
}

func newFixture(t *testing.T, permission notify.Permission) *fixture {
	t.Helper()
	f := &fixture{
		clock:    clock.NewFake(baseTime),
		backend:  &memBackend{},
		platform: &fakePlatform{status: permission},
		native:   &fakeNative{},
		prefs:    &prefs.Memory{},
	}
	f.session = New(Deps{
		Clock:       f.clock,
		Persistence: f.backend,
		Token:       "tok",
		Platform:    f.platform,
		Native:      f.native,
		Chime:       notify.Silent{},
		Prefs:       f.prefs,
	})
	return f
}

// reminderTask creates a task due after due with a reminder lead minutes before.
func (f *fixture) reminderTask(t *testing.T, due time.Duration, lead int) model.Task {
	t.Helper()
	task, err := f.session.Create(context.Background(), model.Draft{Title: "Call the dentist", DueAt: baseTime.Add(due)})
	require.NoError(t, err)
	task, err = f.session.SetReminder(task.ID, lead)
	require.NoError(t, err)
	return task
}

func toastTitles(s *Session) []string {
	var out []string
	for _, toast := range s.Toasts() {
		out = append(out, toast.Title)
	}
	return out
}

func TestReminderFiresExactlyOnceAtFireInstant(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	task := f.reminderTask(t, 10*time.Minute, 5)

	fireAt, ok := f.session.Pending(task.ID)
	require.True(t, ok)
	assert.Equal(t, baseTime.Add(5*time.Minute), fireAt)

	f.clock.Advance(5*time.Minute - time.Millisecond)
	assert.Empty(t, f.session.Deliveries())

	f.clock.Advance(time.Millisecond)
	deliveries := f.session.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, task.ID, deliveries[0].TaskID)
	assert.Equal(t, baseTime.Add(5*time.Minute), deliveries[0].FiredAt)
	assert.Equal(t, notify.ChannelNative, deliveries[0].Channel)
	assert.Zero(t, f.session.PendingCount())

	f.clock.Advance(time.Hour)
	assert.Len(t, f.session.Deliveries(), 1)
	assert.Len(t, f.native.shows, 1)
}

func TestDeniedPermissionFallsBackToToast(t *testing.T) {
	f := newFixture(t, notify.PermissionDefault)
	f.platform.answer = notify.PermissionDenied
	require.True(t, f.session.BannerVisible())
	assert.Equal(t, notify.PermissionDenied, f.session.RequestPermission(context.Background()))
	assert.False(t, f.session.BannerVisible())
	assert.Equal(t, "denied", f.prefs.Prefs.Permission)

	f.reminderTask(t, 10*time.Minute, 5)
	f.clock.Advance(5 * time.Minute)

	deliveries := f.session.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, notify.ChannelToast, deliveries[0].Channel)
	assert.Equal(t, []string{"Task reminder"}, toastTitles(f.session))
	assert.Empty(t, f.native.shows)

	f.clock.Advance(5000 * time.Millisecond)
	assert.Empty(t, f.session.Toasts())
	assert.Equal(t, notify.StateTimedOut, f.session.Deliveries()[0].State)
}

func TestMarkDoneFromNotification(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	task := f.reminderTask(t, 10*time.Minute, 5)
	f.clock.Advance(5 * time.Minute)
	require.Len(t, f.native.shows, 1)

	f.native.shows[0].cb.OnAction(notify.MarkDone{})

	got, ok := f.session.Get(task.ID)
	require.True(t, ok)
	assert.True(t, got.Completed)
	assert.Nil(t, got.Reminder)
	_, pending := f.session.Pending(task.ID)
	assert.False(t, pending)
	assert.Equal(t, notify.StateActioned, f.session.Deliveries()[0].State)
	assert.Equal(t, 1, f.backend.updates)

	// marking an already completed task done does not reopen it
	require.NoError(t, f.session.HandleAction(task.ID, notify.MarkDone{}))
	got, _ = f.session.Get(task.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, 1, f.backend.updates)
}

func TestSnoozeFromNotificationRearms(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	task := f.reminderTask(t, 10*time.Minute, 5)
	oldFire := task.Reminder.FireAt
	f.clock.Advance(5 * time.Minute)

	f.native.shows[0].cb.OnAction(notify.Snooze{Minutes: 5})

	got, _ := f.session.Get(task.ID)
	assert.Equal(t, baseTime.Add(15*time.Minute), got.DueAt)
	fireAt, ok := f.session.Pending(task.ID)
	require.True(t, ok)
	assert.Equal(t, oldFire.Add(5*60000*time.Millisecond), fireAt)
	assert.Contains(t, toastTitles(f.session), "Task snoozed!")

	f.clock.Advance(5 * time.Minute)
	assert.Len(t, f.session.Deliveries(), 2)
}

func TestActOnLatestUsesConfiguredSnooze(t *testing.T) {
	f := newFixture(t, notify.PermissionDenied)
	task := f.reminderTask(t, 10*time.Minute, 5)
	assert.ErrorIs(t, f.session.ActOnLatest(notify.MarkDone{}), notify.ErrDeliveryNotFound)

	f.clock.Advance(5 * time.Minute)
	require.NoError(t, f.session.ActOnLatest(f.session.SnoozeAction()))
	got, _ := f.session.Get(task.ID)
	assert.Equal(t, baseTime.Add(15*time.Minute), got.DueAt)
	assert.ErrorIs(t, f.session.AcknowledgeLatest(), notify.ErrDeliveryNotFound)
}

func TestCompletingWhilePendingPreventsFiring(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	task := f.reminderTask(t, 10*time.Minute, 5)

	_, err := f.session.Toggle(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Zero(t, f.session.PendingCount())

	f.clock.Advance(time.Hour)
	assert.Empty(t, f.session.Deliveries())
}

func TestDeletingWhilePendingPreventsFiring(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	task := f.reminderTask(t, 10*time.Minute, 5)

	require.NoError(t, f.session.Remove(context.Background(), task.ID))
	f.clock.Advance(time.Hour)
	assert.Empty(t, f.session.Deliveries())
}

func TestStaleReminderRejectedWithWarning(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	task, err := f.session.Create(context.Background(), model.Draft{Title: "Soon", DueAt: baseTime.Add(10 * time.Minute)})
	require.NoError(t, err)

	got, err := f.session.SetReminder(task.ID, 15)
	assert.ErrorIs(t, err, model.ErrStaleReminder)
	assert.Nil(t, got.Reminder)
	assert.Zero(t, f.session.PendingCount())
	assert.Contains(t, toastTitles(f.session), "Reminder not set")

	f.clock.Advance(time.Hour)
	assert.Empty(t, f.session.Deliveries())
}

func TestEditMovesReminder(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	task := f.reminderTask(t, 10*time.Minute, 5)

	_, err := f.session.Update(context.Background(), task.ID, model.Draft{Title: "Call the dentist", DueAt: baseTime.Add(time.Hour)})
	require.NoError(t, err)
	fireAt, ok := f.session.Pending(task.ID)
	require.True(t, ok)
	assert.Equal(t, baseTime.Add(55*time.Minute), fireAt)
	assert.Equal(t, 1, f.session.PendingCount())

	f.clock.Advance(10 * time.Minute)
	assert.Empty(t, f.session.Deliveries())
	f.clock.Advance(45 * time.Minute)
	assert.Len(t, f.session.Deliveries(), 1)
}

func TestLoadFailureClearsTasksAndTimers(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	f.reminderTask(t, 10*time.Minute, 5)

	f.backend.err = errOffline
	err := f.session.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.Empty(t, f.session.Tasks())
	assert.Zero(t, f.session.PendingCount())
	assert.Contains(t, toastTitles(f.session), "Could not load tasks")

	f.clock.Advance(time.Hour)
	assert.Empty(t, f.session.Deliveries())
}

func TestReloadKeepsSessionReminders(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	task := f.reminderTask(t, 10*time.Minute, 5)

	require.NoError(t, f.session.Reload(context.Background()))
	fireAt, ok := f.session.Pending(task.ID)
	require.True(t, ok)
	assert.Equal(t, baseTime.Add(5*time.Minute), fireAt)
	assert.Equal(t, 1, f.session.Activate())
	assert.Equal(t, 1, f.session.PendingCount())
}

func TestCreateOpensReminderPicker(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	task, err := f.session.Create(context.Background(), model.Draft{Title: "Pick me", DueAt: baseTime.Add(2 * time.Hour)})
	require.NoError(t, err)

	id, open := f.session.Picker()
	require.True(t, open)
	assert.Equal(t, task.ID, id)

	_, err = f.session.SetReminder(task.ID, 60)
	require.NoError(t, err)
	_, open = f.session.Picker()
	assert.False(t, open)
	assert.Contains(t, toastTitles(f.session), "Reminder set!")
	assert.Equal(t, "You will be reminded 1 hour(s) before.", f.session.Toasts()[len(f.session.Toasts())-1].Message)
}

func TestValidationErrorsAreNotToasted(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	_, err := f.session.Create(context.Background(), model.Draft{Title: "", DueAt: baseTime.Add(time.Hour)})
	assert.ErrorIs(t, err, model.ErrInvalidDraft)
	assert.Empty(t, f.session.Toasts())

	f.backend.err = errOffline
	_, err = f.session.Create(context.Background(), model.Draft{Title: "x", DueAt: baseTime.Add(time.Hour)})
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.Equal(t, []string{"Could not create task"}, toastTitles(f.session))
}

func TestGrantedPermissionSendsTestNotification(t *testing.T) {
	f := newFixture(t, notify.PermissionDefault)
	f.platform.answer = notify.PermissionGranted

	prompt, ok := f.session.BeginPermission()
	require.True(t, ok)
	_, again := f.session.BeginPermission()
	assert.False(t, again, "only one prompt at a time")

	p, err := prompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, notify.PermissionGranted, f.session.SettlePermission(p, nil))
	assert.Contains(t, toastTitles(f.session), "Notifications enabled!")

	require.Len(t, f.native.shows, 1)
	assert.False(t, f.native.shows[0].n.RequireInteraction)
	f.clock.Advance(3 * time.Second)
	assert.Equal(t, 1, f.native.shows[0].handle.closed)
}

func TestPermissionErrorCanBeRetried(t *testing.T) {
	f := newFixture(t, notify.PermissionDefault)
	_, ok := f.session.BeginPermission()
	require.True(t, ok)

	assert.Equal(t, notify.PermissionDefault, f.session.SettlePermission("", errOffline))
	_, ok = f.session.BeginPermission()
	assert.True(t, ok)
}

func TestDismissBannerPersists(t *testing.T) {
	f := newFixture(t, notify.PermissionDefault)
	require.NoError(t, f.session.DismissBanner())
	assert.False(t, f.session.BannerVisible())
	assert.True(t, f.prefs.Prefs.BannerDismissed)
}

func TestUnknownActionRejected(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	assert.ErrorIs(t, f.session.HandleAction("1", nil), ErrUnknownAction)
	assert.ErrorIs(t, f.session.HandleAction("1", notify.MarkDone{}), store.ErrNotFound)
}

func TestSharingUnsupportedOnPlainBackend(t *testing.T) {
	f := newFixture(t, notify.PermissionGranted)
	assert.False(t, f.session.CanShare())
	task := f.reminderTask(t, time.Hour, 5)
	err := f.session.Share(context.Background(), task.ID, "ana@example.com")
	assert.ErrorIs(t, err, store.ErrSharingUnsupported)
}
