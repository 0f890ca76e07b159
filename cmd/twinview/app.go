package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"twinview/internal/config"
	"twinview/internal/decode"
	"twinview/internal/gui"
	"twinview/internal/loader"
	"twinview/internal/logger"
	"twinview/internal/opencv"
	"twinview/internal/raster"
	"twinview/internal/shutdown"
)

const (
	AppName    = "TwinView"
	AppID      = "io.twinview.viewer"
	AppVersion = "1.0.0"
)

type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger
	cfg     config.Config

	runner   *loader.Runner
	shell    *gui.Shell
	shutdown *shutdown.Manager
}

// configureRuntime raises the GC target for large decode buffers unless the
// user set GOGC.
func configureRuntime() {
	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(200)
	}
}

func newDecoder(cfg config.Config, log logger.Logger) *decode.Decoder {
	return decode.New(
		decode.WithLogger(log),
		decode.WithNormalizer(raster.NewNormalizer(cfg.Workers)),
		decode.WithCodec(decode.Scientific, opencv.NewReader(log)),
	)
}

func NewApplication(cfg config.Config) (*Application, error) {
	appLogger := logger.New(cfg.LogFormat, cfg.Level())

	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})
	fyneApp := app.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(1400, 850))
	window.CenterOnScreen()

	appLogger.Info("Application", "starting", map[string]interface{}{
		"version":       AppVersion,
		"go_version":    runtime.Version(),
		"num_cpu":       runtime.NumCPU(),
		"log_level":     cfg.Level().String(),
		"workers":       cfg.Workers,
		"interpolation": cfg.Interpolation,
	})

	manager := shutdown.NewManager(appLogger, shutdown.DefaultTimeout)
	runner := loader.NewRunner(newDecoder(cfg, appLogger), appLogger)

	// Completions that arrive once shutdown has begun are dropped so the
	// runner can drain without a live event loop.
	dispatch := func(fn func()) {
		select {
		case <-manager.Done():
			return
		default:
		}
		fyne.Do(fn)
	}

	shell, err := gui.NewShell(window, gui.Options{
		Starter:       runner,
		Recent:        config.NewRecent(fyneApp.Preferences(), cfg.RecentLimit),
		Logger:        appLogger,
		Dispatch:      dispatch,
		Interpolation: cfg.InterpolationMode(),
		Filter:        cfg.Filter,
		Watch:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("create window content: %w", err)
	}
	window.SetContent(shell.Content())

	manager.Register("loader", runner)
	manager.Register("shell", shutdown.Func(shell.Shutdown))

	return &Application{
		fyneApp:  fyneApp,
		window:   window,
		logger:   appLogger,
		cfg:      cfg,
		runner:   runner,
		shell:    shell,
		shutdown: manager,
	}, nil
}

func (a *Application) openInitialFolders() {
	if a.cfg.LeftDir != "" {
		_ = a.shell.OpenFolder(gui.Left, a.cfg.LeftDir)
	}
	if a.cfg.RightDir != "" {
		_ = a.shell.OpenFolder(gui.Right, a.cfg.RightDir)
	}
}

// Run blocks until the window closes or a termination signal arrives.
func (a *Application) Run() error {
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.window.SetCloseIntercept(func() {
		a.shell.Close()
		a.window.Close()
	})
	a.window.SetMaster()

	a.openInitialFolders()
	a.window.ShowAndRun()

	a.shutdown.Shutdown()
	a.logger.Info("Application", "terminated", nil)
	return nil
}
