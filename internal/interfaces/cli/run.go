package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/term"

	"breakreminder/internal/application/service"
	"breakreminder/internal/infrastructure/alert"
	"breakreminder/internal/infrastructure/database/file"
	"breakreminder/internal/infrastructure/line"
	"breakreminder/internal/infrastructure/metrics"
	"breakreminder/internal/infrastructure/scheduler"
	"breakreminder/internal/infrastructure/telegram"
	"breakreminder/internal/interfaces/api/handler"
	"breakreminder/internal/interfaces/api/router"
	"breakreminder/internal/interfaces/console"
	"breakreminder/internal/pkg/clock"
	"breakreminder/internal/pkg/config"
	appErrors "breakreminder/internal/pkg/errors"
	"breakreminder/internal/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type streams struct {
	in     *os.File
	out    io.Writer
	errOut io.Writer
}

func defaultStreams() streams {
	return streams{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
}

// run wires every component and blocks until the reminder loop stops.
func run(parent context.Context, cfg config.Config, version string, s streams) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Raw mode first: once it is on, everything written to the terminal
	// needs explicit carriage returns.
	out, errOut := s.out, s.errOut
	interactive := cfg.Keyboard && s.in != nil && term.IsTerminal(int(s.in.Fd()))
	if interactive {
		state, err := term.MakeRaw(int(s.in.Fd()))
		if err != nil {
			return fmt.Errorf("%w: failed to put terminal in raw mode: %v", appErrors.ErrStartup, err)
		}
		defer func() { _ = term.Restore(int(s.in.Fd()), state) }()
		out = console.NewCRLFWriter(out)
		errOut = console.NewCRLFWriter(errOut)
	}

	logOut := errOut
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("%w: failed to open log file %s: %v", appErrors.ErrStartup, cfg.LogFile, err)
		}
		defer f.Close()
		logOut = f
	}
	appLog := logger.New(logOut, cfg.LogLevel)
	appLog.Info(fmt.Sprintf("%s %s starting.", programName, version))

	// --- Infrastructure ---
	repo, closeStore, err := openStore(cfg, appLog)
	if err != nil {
		return err
	}
	defer closeStore()
	appLog.Info(fmt.Sprintf("Settings store: %s (%s)", cfg.StorePath, cfg.StoreDriver))

	sinks, err := buildSinks(cfg, out, appLog)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	presenter := console.NewPresenter(out, isTerminal(s.out))
	defer presenter.Close()

	// --- Application Services ---
	settingSvc := service.NewSettingService(repo, appLog)
	settingSvc.Load(ctx)
	reminderSvc := service.NewReminderService(settingSvc, sinks, presenter, collector, clock.New(), appLog)

	cronScheduler := scheduler.NewScheduler(appLog)
	defer cronScheduler.Stop()
	heartbeatSvc := service.NewHeartbeatService(cronScheduler, reminderSvc, appLog)
	if err := heartbeatSvc.Start(cfg.Heartbeat); err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrStartup, err)
	}
	defer heartbeatSvc.Stop()

	// --- Command Surfaces ---
	if cfg.HTTPAddr != "" {
		shutdown, err := startHTTP(cfg.HTTPAddr, reminderSvc, registry, appLog)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	if cfg.Watch && cfg.StoreDriver == config.DriverFile {
		go func() {
			reload := func() { reminderSvc.ReloadSettings(ctx) }
			if err := file.Watch(ctx, cfg.StorePath, file.DefaultDebounce, reload, appLog); err != nil {
				appLog.Warn(fmt.Sprintf("Settings hot reload disabled: %v", err))
			}
		}()
	}

	presenter.Banner(programName, version, cfg.Keyboard)
	if cfg.Keyboard && s.in != nil {
		keyboard := console.NewKeyboard(s.in, reminderSvc, appLog)
		go func() {
			if err := keyboard.Run(ctx); err != nil {
				appLog.Warn(fmt.Sprintf("Keyboard surface stopped: %v", err))
			}
		}()
	}

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		appLog.Debug(fmt.Sprintf("sd_notify ready failed: %v", err))
	}

	err = reminderSvc.Run(ctx)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	appLog.Info("Shutting down.")
	return err
}

// buildSinks assembles the bell and any configured remote sinks. Remote sinks
// are rate limited.
func buildSinks(cfg config.Config, out io.Writer, log logger.Logger) (*alert.Multi, error) {
	sinks := alert.NewMulti()
	sinks.Add("bell", alert.NewBell(out, cfg.Bells))

	if cfg.Line.Enabled() {
		client, err := line.NewClient(cfg.Line.ChannelSecret, cfg.Line.ChannelToken, cfg.Line.UserID, log)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", appErrors.ErrStartup, err)
		}
		sinks.Add("line", alert.NewRateLimited("line", client, cfg.AlertInterval))
	}
	if cfg.Telegram.Enabled() {
		client, err := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.ChatID, "", log)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", appErrors.ErrStartup, err)
		}
		sinks.Add("telegram", alert.NewRateLimited("telegram", client, cfg.AlertInterval))
	}
	log.Info(fmt.Sprintf("Alert sinks: %v", sinks.Names()))
	return sinks, nil
}

// startHTTP binds addr before returning so a bad address is a startup error.
func startHTTP(addr string, reminderSvc service.ReminderService, gatherer prometheus.Gatherer, log logger.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on %s: %v", appErrors.ErrStartup, addr, err)
	}

	echoRouter := router.NewRouter(&router.Config{
		CommandHandler: handler.NewCommandHandler(reminderSvc, log),
		Gatherer:       gatherer,
		Logger:         log,
	})
	apiServer := &http.Server{
		Handler:      echoRouter,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info(fmt.Sprintf("HTTP command surface listening on %s", ln.Addr()))
		if err := apiServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server forced to shutdown", err)
		}
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
