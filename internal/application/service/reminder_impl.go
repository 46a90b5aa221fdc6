package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"breakreminder/internal/application/dto"
	"breakreminder/internal/domain/constant"
	"breakreminder/internal/domain/entity"
	"breakreminder/internal/domain/schedule"
	"breakreminder/internal/pkg/clock"
	appErrors "breakreminder/internal/pkg/errors"
	"breakreminder/internal/pkg/logger"
	"breakreminder/internal/pkg/waiter"
)

type reminderService struct {
	settings  SettingService
	sink      AlertSink
	presenter Presenter
	metrics   MetricsRecorder
	clock     clock.Clock
	waiter    *waiter.Waiter
	log       logger.Logger

	running  atomic.Bool
	quit     chan struct{}
	quitOnce sync.Once

	state       atomic.Int32
	fired       atomic.Uint64
	rescheduled atomic.Uint64
	failures    atomic.Uint64

	mu   sync.Mutex // guards next
	next time.Time
}

// NewReminderService creates the scheduling loop. presenter and metrics may
// be nil.
func NewReminderService(
	settings SettingService,
	sink AlertSink,
	presenter Presenter,
	metrics MetricsRecorder,
	clk clock.Clock,
	log logger.Logger,
) ReminderService {
	if presenter == nil {
		presenter = nopPresenter{}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	s := &reminderService{
		settings:  settings,
		sink:      sink,
		presenter: presenter,
		metrics:   metrics,
		clock:     clk,
		waiter:    waiter.New(clk),
		log:       log,
		quit:      make(chan struct{}),
	}
	s.setState(constant.StateIdle)
	metrics.SetConfiguration(settings.Current())
	return s
}

// Run is the scheduling loop. The wait is its only long suspension; scheduled
// alerts are queued to a delivery goroutine.
func (s *reminderService) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: reminder loop already running", appErrors.ErrStartup)
	}
	defer s.running.Store(false)
	defer s.setState(constant.StateStopped)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.quit:
			cancel()
		case <-runCtx.Done():
		}
	}()

	// Scheduled alerts are delivered off the loop so a slow sink never
	// delays a reschedule or a quit.
	deliveries := make(chan entity.Alert, 1)
	go s.deliverScheduled(runCtx, deliveries)

	s.log.Info("Reminder loop started.")
	for {
		if s.stopping(runCtx) {
			s.log.Info("Reminder loop stopped.")
			return nil
		}

		s.setState(constant.StateComputing)
		cfg := s.settings.Current()
		next := schedule.Next(s.clock.Now(), cfg)
		s.publish(next, cfg)

		s.setState(constant.StateWaiting)
		outcome := s.waiter.Wait(runCtx, next)
		s.log.Debug(fmt.Sprintf("Wait for %s ended: %s", next.Format(time.RFC3339), outcome))

		switch outcome {
		case constant.OutcomeFired:
			s.setState(constant.StateFiring)
			s.enqueue(deliveries, entity.Alert{Source: constant.AlertSourceSchedule, At: next, Config: cfg})
		case constant.OutcomeCancelled:
			s.setState(constant.StateRescheduling)
			s.rescheduled.Add(1)
			s.metrics.Rescheduled()
		case constant.OutcomeStopped:
			s.log.Info("Reminder loop stopped.")
			return nil
		}
	}
}

// PlayNow fires a manual alert with the current configuration.
func (s *reminderService) PlayNow(ctx context.Context) error {
	return s.fire(ctx, entity.Alert{
		Source: constant.AlertSourceManual,
		At:     s.clock.Now(),
		Config: s.settings.Current(),
	})
}

// ChangeFrequency cycles EventsPerHour. A persistence failure is returned,
// but the new value is kept and the loop is still rescheduled.
func (s *reminderService) ChangeFrequency(ctx context.Context) (entity.Configuration, error) {
	cfg, err := s.settings.CycleFrequency(ctx)
	s.reschedule(cfg)
	s.log.Info(fmt.Sprintf("Frequency changed: %s", cfg))
	return cfg, err
}

// ChangeLeadTime cycles LeadTimeMinutes, with the same failure semantics as
// ChangeFrequency.
func (s *reminderService) ChangeLeadTime(ctx context.Context) (entity.Configuration, error) {
	cfg, err := s.settings.CycleLeadTime(ctx)
	s.reschedule(cfg)
	s.log.Info(fmt.Sprintf("Lead time changed: %s", cfg))
	return cfg, err
}

func (s *reminderService) ReloadSettings(ctx context.Context) (entity.Configuration, bool) {
	cfg, changed := s.settings.Reload(ctx)
	if changed {
		s.reschedule(cfg)
	}
	return cfg, changed
}

func (s *reminderService) Quit() {
	s.quitOnce.Do(func() {
		s.log.Info("Quit requested.")
		close(s.quit)
	})
}

func (s *reminderService) Done() <-chan struct{} {
	return s.quit
}

func (s *reminderService) Dispatch(ctx context.Context, cmd constant.Command) (dto.CommandResponse, error) {
	resp := dto.CommandResponse{Command: cmd.String()}
	var (
		cfg entity.Configuration
		err error
	)
	switch cmd {
	case constant.CommandPlayNow:
		cfg = s.settings.Current()
		err = s.PlayNow(ctx)
		resp.Message = "alert played"
	case constant.CommandChangeFrequency:
		cfg, err = s.ChangeFrequency(ctx)
		resp.Message = fmt.Sprintf("%d per hour", cfg.EventsPerHour)
	case constant.CommandChangeLeadTime:
		cfg, err = s.ChangeLeadTime(ctx)
		resp.Message = fmt.Sprintf("%d min lead", cfg.LeadTimeMinutes)
	case constant.CommandQuit:
		cfg = s.settings.Current()
		s.Quit()
		resp.Message = "stopping"
	default:
		return resp, fmt.Errorf("%w: %d", appErrors.ErrUnknownCommand, int(cmd))
	}
	resp.Configuration = dto.ToConfigurationResponse(cfg)
	return resp, err
}

func (s *reminderService) Status() dto.StatusResponse {
	resp := dto.StatusResponse{
		State:         constant.LoopState(s.state.Load()).String(),
		Configuration: dto.ToConfigurationResponse(s.settings.Current()),
		Fired:         s.fired.Load(),
		Rescheduled:   s.rescheduled.Load(),
		AlertFailures: s.failures.Load(),
	}
	s.mu.Lock()
	if !s.next.IsZero() {
		next := s.next
		resp.NextAlert = &next
	}
	s.mu.Unlock()
	return resp
}

// stopping reports whether Quit was called or ctx is done. Checking quit
// directly covers a Quit raised before the watcher goroutine cancels ctx.
func (s *reminderService) stopping(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

func (s *reminderService) publish(next time.Time, cfg entity.Configuration) {
	s.mu.Lock()
	s.next = next
	s.mu.Unlock()
	s.metrics.SetNextAlert(next)
	s.presenter.Display(next, cfg)
	s.log.Debug(fmt.Sprintf("Next alert at %s (%s)", next.Format(time.RFC3339), cfg))
}

func (s *reminderService) reschedule(cfg entity.Configuration) {
	s.metrics.SetConfiguration(cfg)
	if !s.waiter.Reschedule() {
		s.log.Debug("No outstanding wait to reschedule.")
	}
}

// deliverScheduled fires queued alerts one at a time until ctx is done.
func (s *reminderService) deliverScheduled(ctx context.Context, deliveries <-chan entity.Alert) {
	for {
		select {
		case <-ctx.Done():
			return
		case alert := <-deliveries:
			_ = s.fire(ctx, alert)
		}
	}
}

// enqueue hands alert to the delivery goroutine without blocking. If an
// earlier alert is still queued behind a slow sink, alert is dropped and
// counted as a failure.
func (s *reminderService) enqueue(deliveries chan<- entity.Alert, alert entity.Alert) {
	select {
	case deliveries <- alert:
	default:
		s.failures.Add(1)
		s.metrics.AlertFailed(alert.Source)
		s.log.Warn(fmt.Sprintf("Alert at %s dropped: previous delivery still running", alert.At.Format(time.Kitchen)))
	}
}

// fire delivers alert and records the result. Failures are logged and
// counted; they never stop the loop. A rate limited remote sink is only a
// warning.
func (s *reminderService) fire(ctx context.Context, alert entity.Alert) error {
	err := s.deliver(ctx, alert)
	switch {
	case err == nil:
		s.log.Info(fmt.Sprintf("Alert fired (%s) at %s", alert.Source, alert.At.Format(time.Kitchen)))
	case errors.Is(err, appErrors.ErrRateLimited) && !errors.Is(err, appErrors.ErrAlertDelivery):
		s.log.Warn(fmt.Sprintf("Alert fired (%s) with remote sinks rate limited: %v", alert.Source, err))
	default:
		s.failures.Add(1)
		s.metrics.AlertFailed(alert.Source)
		s.log.Error(fmt.Sprintf("Alert delivery failed (%s)", alert.Source), err)
		return err
	}
	s.fired.Add(1)
	s.metrics.AlertFired(alert.Source)
	return nil
}

func (s *reminderService) deliver(ctx context.Context, alert entity.Alert) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: alert sink panicked: %v", appErrors.ErrAlertDelivery, r)
		}
	}()
	return s.sink.Fire(ctx, alert)
}

func (s *reminderService) setState(state constant.LoopState) {
	s.state.Store(int32(state))
	s.metrics.SetState(state)
}
