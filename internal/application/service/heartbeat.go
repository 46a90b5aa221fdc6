package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"breakreminder/internal/infrastructure/scheduler"
	"breakreminder/internal/pkg/logger"
)

// HeartbeatService periodically logs the loop status so a long silent wait
// is visible in the logs.
type HeartbeatService interface {
	// Start registers the heartbeat under a cron spec. An empty spec disables it.
	Start(spec string) error
	// Beat logs one status line.
	Beat()
	// Stop removes the heartbeat job.
	Stop()
}

type heartbeatService struct {
	cronScheduler *scheduler.Scheduler
	reminders     ReminderService
	log           logger.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	started bool
}

// NewHeartbeatService creates a HeartbeatService reporting on reminders.
func NewHeartbeatService(cronScheduler *scheduler.Scheduler, reminders ReminderService, log logger.Logger) HeartbeatService {
	return &heartbeatService{
		cronScheduler: cronScheduler,
		reminders:     reminders,
		log:           log,
	}
}

func (h *heartbeatService) Start(spec string) error {
	if spec == "" {
		h.log.Debug("Heartbeat disabled.")
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		h.cronScheduler.RemoveJob(h.entryID)
	}
	id, err := h.cronScheduler.AddJob(spec, h.Beat)
	if err != nil {
		return err
	}
	h.entryID = id
	h.started = true
	h.log.Info(fmt.Sprintf("Heartbeat scheduled: %s", spec))
	return nil
}

func (h *heartbeatService) Beat() {
	st := h.reminders.Status()
	next := "none"
	if st.NextAlert != nil {
		next = st.NextAlert.Format(time.Kitchen)
	}
	h.log.Info(fmt.Sprintf("Heartbeat: state=%s next=%s config=%d/hour, %d min lead fired=%d rescheduled=%d failures=%d",
		st.State, next, st.Configuration.EventsPerHour, st.Configuration.LeadTimeMinutes,
		st.Fired, st.Rescheduled, st.AlertFailures))
}

func (h *heartbeatService) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return
	}
	h.cronScheduler.RemoveJob(h.entryID)
	h.started = false
}
