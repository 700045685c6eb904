package notify

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecNotifierQueryPermission(t *testing.T) {
	n := NewExecNotifier(nil)
	n.goos = "linux"
	n.lookPath = func(string) (string, error) { return "/usr/bin/notify-send", nil }
	assert.Equal(t, PermissionDefault, n.QueryPermission())

	n.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	assert.Equal(t, PermissionUnsupported, n.QueryPermission())

	n.goos = "windows"
	assert.Equal(t, PermissionUnsupported, n.QueryPermission())
}

func TestExecNotifierRequestPermission(t *testing.T) {
	n := NewExecNotifier(nil)
	n.goos = "linux"

	n.command = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "true")
	}
	got, err := n.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, got)

	n.command = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "false")
	}
	got, err = n.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, got)
}

func TestExecNotifierShowLinuxBuildsActionArgs(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var gotArgs []string
	n := NewExecNotifier(nil)
	n.goos = "linux"
	done := make(chan Action, 1)
	n.command = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotArgs = append([]string{name}, args...)
		return exec.CommandContext(ctx, "sh", "-c", "echo snooze")
	}

	_, err := n.Show(Notification{
		Title: "Task reminder",
		Body:  "Call the dentist",
		Actions: []ActionButton{
			{Key: "mark-done", Label: "Mark done", Action: MarkDone{}},
			{Key: "snooze", Label: "Snooze 5 min", Action: Snooze{Minutes: 5}},
		},
		RequireInteraction: true,
	}, Callbacks{OnAction: func(a Action) { done <- a }})
	require.NoError(t, err)

	assert.Equal(t, Snooze{Minutes: 5}, <-done)
	assert.Contains(t, gotArgs, "--wait")
	assert.Contains(t, gotArgs, "--urgency=critical")
	assert.Contains(t, gotArgs, "--action=mark-done=Mark done")
	assert.Equal(t, "Call the dentist", gotArgs[len(gotArgs)-1])
}

func TestExecNotifierUnsupportedPlatform(t *testing.T) {
	n := NewExecNotifier(nil)
	n.goos = "plan9"
	_, err := n.Show(Notification{Title: "x"}, Callbacks{})
	assert.ErrorIs(t, err, ErrUnsupported)
}
