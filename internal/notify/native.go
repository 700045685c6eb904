package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var ErrUnsupported = errors.New("notify: native notifications unsupported")

type ActionButton struct {
	Key    string
	Label  string
	Action Action
}

type Notification struct {
	Tag                string
	Title              string
	Body               string
	Actions            []ActionButton
	RequireInteraction bool
	// CloseAfter overrides the dispatcher's auto-close delay for
	// notifications that do not require interaction.
	CloseAfter time.Duration
}

// Callbacks are invoked on the session event loop.
type Callbacks struct {
	OnAction func(Action)
	OnClose  func()
}

type NativeHandle interface {
	Close() error
}

type NativeNotifier interface {
	Show(n Notification, cb Callbacks) (NativeHandle, error)
}

// NoopNotifier reports every native notification as unsupported.
type NoopNotifier struct{}

func (NoopNotifier) QueryPermission() Permission { return PermissionUnsupported }

func (NoopNotifier) RequestPermission(context.Context) (Permission, error) {
	return PermissionUnsupported, nil
}

func (NoopNotifier) Show(Notification, Callbacks) (NativeHandle, error) {
	return nil, ErrUnsupported
}

// ExecNotifier drives notify-send on Linux and osascript on macOS. Post
// hands callbacks back to the event loop; it defaults to a direct call.
type ExecNotifier struct {
	Post     func(func())
	AppName  string
	goos     string
	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewExecNotifier(post func(func())) *ExecNotifier {
	return &ExecNotifier{
		Post:     post,
		AppName:  "tarefas",
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
	}
}

func (e *ExecNotifier) binary() string {
	switch e.goos {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func (e *ExecNotifier) QueryPermission() Permission {
	bin := e.binary()
	if bin == "" {
		return PermissionUnsupported
	}
	if _, err := e.lookPath(bin); err != nil {
		return PermissionUnsupported
	}
	return PermissionDefault
}

// RequestPermission probes the notification binary; a working binary grants.
func (e *ExecNotifier) RequestPermission(ctx context.Context) (Permission, error) {
	var cmd *exec.Cmd
	switch e.goos {
	case "linux":
		cmd = e.command(ctx, "notify-send", "--version")
	case "darwin":
		cmd = e.command(ctx, "osascript", "-e", "return")
	default:
		return PermissionUnsupported, nil
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return PermissionDefault, ctx.Err()
		}
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

func (e *ExecNotifier) Show(n Notification, cb Callbacks) (NativeHandle, error) {
	switch e.goos {
	case "linux":
		return e.showLinux(n, cb)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		if err := e.command(context.Background(), "osascript", "-e", script).Run(); err != nil {
			return nil, err
		}
		return closedHandle{}, nil
	default:
		return nil, ErrUnsupported
	}
}

func (e *ExecNotifier) showLinux(n Notification, cb Callbacks) (NativeHandle, error) {
	args := []string{"--app-name=" + e.AppName}
	if n.RequireInteraction {
		args = append(args, "--urgency=critical")
	} else if n.CloseAfter > 0 {
		args = append(args, "--expire-time="+strconv.FormatInt(n.CloseAfter.Milliseconds(), 10))
	}
	if len(n.Actions) > 0 || n.RequireInteraction {
		args = append(args, "--wait")
	}
	for _, btn := range n.Actions {
		args = append(args, "--action="+btn.Key+"="+btn.Label)
	}
	args = append(args, n.Title, n.Body)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := e.command(ctx, "notify-send", args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, err
	}

	h := &execHandle{cancel: cancel}
	go func() {
		_ = cmd.Wait()
		if h.closedByUs() {
			return
		}
		chosen := strings.TrimSpace(stdout.String())
		for _, btn := range n.Actions {
			if btn.Key == chosen && cb.OnAction != nil {
				action := btn.Action
				e.post(func() { cb.OnAction(action) })
				return
			}
		}
		if cb.OnClose != nil {
			e.post(cb.OnClose)
		}
	}()
	return h, nil
}

func (e *ExecNotifier) post(f func()) {
	if e.Post != nil {
		e.Post(f)
		return
	}
	f()
}

type execHandle struct {
	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

func (h *execHandle) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cancel()
	return nil
}

func (h *execHandle) closedByUs() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

type closedHandle struct{}

func (closedHandle) Close() error { return nil }

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
