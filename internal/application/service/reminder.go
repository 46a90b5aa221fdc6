package service

import (
	"context"
	"time"

	"breakreminder/internal/application/dto"
	"breakreminder/internal/domain/constant"
	"breakreminder/internal/domain/entity"
)

// ReminderService runs the scheduling loop and applies commands to it.
// Every method except Run is safe to call from any goroutine.
type ReminderService interface {
	// Run computes the next alert, waits for it and fires, until ctx is done
	// or Quit is called. It returns nil on a clean stop.
	Run(ctx context.Context) error
	// PlayNow fires the alert immediately. The pending wait is left alone.
	PlayNow(ctx context.Context) error
	// ChangeFrequency cycles the events per hour and reschedules.
	ChangeFrequency(ctx context.Context) (entity.Configuration, error)
	// ChangeLeadTime cycles the lead time and reschedules.
	ChangeLeadTime(ctx context.Context) (entity.Configuration, error)
	// ReloadSettings re-reads the store and reschedules if the configuration changed.
	ReloadSettings(ctx context.Context) (entity.Configuration, bool)
	// Quit stops the loop. It may be called more than once, and before Run.
	Quit()
	// Dispatch routes a command tag to the matching operation.
	Dispatch(ctx context.Context, cmd constant.Command) (dto.CommandResponse, error)
	// Status returns a snapshot of the loop.
	Status() dto.StatusResponse
	// Done is closed once Quit has been called.
	Done() <-chan struct{}
}

// Presenter shows the next alert time to the user.
type Presenter interface {
	Display(next time.Time, cfg entity.Configuration)
}

// AlertSink delivers an alert.
type AlertSink interface {
	Fire(ctx context.Context, alert entity.Alert) error
}

// MetricsRecorder receives loop events for instrumentation.
type MetricsRecorder interface {
	SetState(state constant.LoopState)
	SetNextAlert(next time.Time)
	SetConfiguration(cfg entity.Configuration)
	AlertFired(source constant.AlertSource)
	AlertFailed(source constant.AlertSource)
	Rescheduled()
}

type nopPresenter struct{}

func (nopPresenter) Display(time.Time, entity.Configuration) {}

type nopRecorder struct{}

func (nopRecorder) SetState(constant.LoopState)           {}
func (nopRecorder) SetNextAlert(time.Time)                {}
func (nopRecorder) SetConfiguration(entity.Configuration) {}
func (nopRecorder) AlertFired(constant.AlertSource)       {}
func (nopRecorder) AlertFailed(constant.AlertSource)      {}
func (nopRecorder) Rescheduled()                          {}
