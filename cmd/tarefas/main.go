package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/api"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/config"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/logger"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/notify"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/prefs"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/scheduler"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/session"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/storage"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/store"
	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tarefas failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(logger.Config{Level: cfg.Log.Level, Encoding: cfg.Log.Encoding, Path: cfg.Log.Path})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	persistence, token, closeStore, err := openPersistence(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	engine := scheduler.NewEngine(cfg.Scheduler.Buffer)
	engine.Start()
	defer engine.Stop()

	var (
		desktop  *notify.ExecNotifier
		platform notify.Platform       = notify.NoopNotifier{}
		native   notify.NativeNotifier = notify.NoopNotifier{}
		chime    notify.Chime          = notify.Silent{}
	)
	if cfg.Notifications.Desktop {
		desktop = notify.NewExecNotifier(nil)
		platform, native = desktop, desktop
	}
	if cfg.Notifications.Sound {
		chime = notify.Bell{Out: os.Stdout}
	}

	s := session.New(session.Deps{
		Clock:         engine,
		Persistence:   persistence,
		Token:         token,
		Platform:      platform,
		Native:        native,
		Chime:         chime,
		Prefs:         prefs.File{Path: cfg.Storage.PrefsPath},
		ToastDuration: cfg.Notifications.ToastDuration,
		Dispatch: notify.DispatcherConfig{
			NativeAutoClose: cfg.Notifications.NativeAutoClose,
			SnoozeMinutes:   cfg.Notifications.SnoozeMinutes,
		},
		ActionTimeout: cfg.API.Timeout,
		Logger:        log.Named("session"),
	})

	program := tea.NewProgram(update.NewModel(update.Options{
		Session:        s,
		Clock:          engine,
		Expiries:       engine.C(),
		RequestTimeout: cfg.API.Timeout,
	}), tea.WithAltScreen(), tea.WithReportFocus())
	if desktop != nil {
		desktop.Post = update.Post(program)
	}

	log.Info("tarefas starting", zap.Bool("api", cfg.UseAPI()), zap.Bool("desktop", cfg.Notifications.Desktop))
	_, err = program.Run()
	return err
}

// openPersistence picks the REST backend when an API URL is configured and
// the local SQLite file otherwise.
func openPersistence(cfg config.Config, log *zap.Logger) (store.Persistence, string, func(), error) {
	if !cfg.UseAPI() {
		repo, err := storage.OpenSQLite(cfg.Storage.DBPath)
		if err != nil {
			return nil, "", nil, fmt.Errorf("open local storage: %w", err)
		}
		return storage.NewBackend(repo, nil), "", func() { _ = repo.Close() }, nil
	}

	client, err := api.New(api.Config{BaseURL: cfg.API.URL, Timeout: cfg.API.Timeout}, log.Named("api"))
	if err != nil {
		return nil, "", nil, err
	}
	token := cfg.API.Token
	if token == "" && cfg.API.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
		defer cancel()
		token, err = client.Login(ctx, cfg.API.Email, cfg.API.Password)
		if err != nil {
			return nil, "", nil, fmt.Errorf("login: %w", err)
		}
	}
	return client, token, func() {}, nil
}
