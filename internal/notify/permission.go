package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/prefs"
)

type Permission string

const (
	PermissionUnsupported Permission = "unsupported"
	PermissionDefault     Permission = "default"
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
)

func (p Permission) IsDecided() bool {
	return p == PermissionGranted || p == PermissionDenied
}

// Platform is the native permission primitive.
type Platform interface {
	QueryPermission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
}

// Gate caches the notification permission for a session and owns the
// dismissible permission banner. Gate is used from the event loop only.
type Gate struct {
	platform   Platform
	store      prefs.Store
	state      prefs.Prefs
	status     Permission
	known      bool
	requesting bool
	logger     *zap.Logger
}

func NewGate(platform Platform, store prefs.Store, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = &prefs.Memory{}
	}
	g := &Gate{platform: platform, store: store, logger: logger}
	state, err := store.Load()
	if err != nil {
		logger.Warn("notification prefs unreadable, using defaults", zap.Error(err))
	}
	g.state = state
	return g
}

func (g *Gate) Status() Permission {
	if g.known {
		return g.status
	}
	status := PermissionUnsupported
	if g.platform != nil {
		status = g.platform.QueryPermission()
	}
	if status == PermissionDefault {
		if saved := Permission(g.state.Permission); saved.IsDecided() {
			status = saved
		}
	}
	g.status = status
	g.known = true
	return status
}

func (g *Gate) Granted() bool {
	return g.Status() == PermissionGranted
}

// Begin reports whether a permission prompt should run now. Only an
// undecided permission is ever prompted, and only one prompt at a time.
func (g *Gate) Begin() bool {
	if g.requesting || g.Status() != PermissionDefault {
		return false
	}
	g.requesting = true
	return true
}

// Settle applies a prompt result. Undecided results leave the status at default.
func (g *Gate) Settle(p Permission) Permission {
	g.requesting = false
	if !p.IsDecided() {
		return g.Status()
	}
	g.status = p
	g.known = true
	g.state.Permission = string(p)
	if err := g.store.Save(g.state); err != nil {
		g.logger.Warn("persist notification permission", zap.Error(err))
	}
	g.logger.Info("notification permission settled", zap.String("permission", string(p)))
	return p
}

// Abort ends a prompt that failed without an answer.
func (g *Gate) Abort() {
	g.requesting = false
}

// Request prompts synchronously. Callers on an event loop should run the
// platform request off the loop between Begin and Settle instead.
func (g *Gate) Request(ctx context.Context) (Permission, error) {
	if !g.Begin() {
		return g.Status(), nil
	}
	p, err := g.platform.RequestPermission(ctx)
	if err != nil {
		g.Abort()
		return g.Status(), err
	}
	return g.Settle(p), nil
}

func (g *Gate) BannerVisible() bool {
	return g.Status() == PermissionDefault && !g.state.BannerDismissed
}

func (g *Gate) DismissBanner() error {
	g.state.BannerDismissed = true
	return g.store.Save(g.state)
}
