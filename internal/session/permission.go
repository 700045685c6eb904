package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/notify"
)

// PermissionPrompt is the blocking platform request. It is returned by
// BeginPermission so the UI can run it off the event loop.
type PermissionPrompt func(ctx context.Context) (notify.Permission, error)

// BeginPermission starts a permission request when one is needed. The
// caller runs the prompt and hands the result to SettlePermission.
func (s *Session) BeginPermission() (PermissionPrompt, bool) {
	if s.platform == nil || !s.gate.Begin() {
		return nil, false
	}
	return s.platform.RequestPermission, true
}

// SettlePermission applies a prompt result and tells the user about it.
func (s *Session) SettlePermission(p notify.Permission, err error) notify.Permission {
	if err != nil {
		s.gate.Abort()
		s.toastError("Could not request notification permission", err)
		return s.gate.Status()
	}
	got := s.gate.Settle(p)
	switch got {
	case notify.PermissionGranted:
		s.toasts.Show(notify.LevelSuccess, "Notifications enabled!", "You will be notified about your tasks.")
		if err := s.dispatcher.Notify(notify.Notification{
			Tag:        "permission-test",
			Title:      "Notifications enabled",
			Body:       "Reminders will show up like this.",
			CloseAfter: testNotificationLinger,
		}); err != nil {
			s.logger.Debug("test notification failed", zap.Error(err))
		}
	case notify.PermissionDenied:
		s.toasts.Show(notify.LevelWarning, "Notifications blocked", "Reminders will show inside the app.")
	}
	return got
}

// RequestPermission runs the whole request synchronously.
func (s *Session) RequestPermission(ctx context.Context) notify.Permission {
	prompt, ok := s.BeginPermission()
	if !ok {
		return s.gate.Status()
	}
	p, err := prompt(ctx)
	return s.SettlePermission(p, err)
}

func (s *Session) Permission() notify.Permission {
	return s.gate.Status()
}

func (s *Session) BannerVisible() bool {
	return s.gate.BannerVisible()
}

func (s *Session) DismissBanner() error {
	if err := s.gate.DismissBanner(); err != nil {
		s.toastError("Could not save preference", err)
		return err
	}
	return nil
}
