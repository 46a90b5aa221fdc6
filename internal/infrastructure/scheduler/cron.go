package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"breakreminder/internal/pkg/logger"
)

// Scheduler runs housekeeping jobs on cron specs. Specs accept an optional
// seconds field and descriptors such as "@every 30m".
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
	mu   sync.Mutex
}

// NewScheduler creates and starts a cron scheduler.
func NewScheduler(log logger.Logger) *Scheduler {
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithChain(cron.Recover(cronLogger{log: log})),
	)
	c.Start()
	log.Info("Cron scheduler started.")
	return &Scheduler{cron: c, log: log}
}

// AddJob adds cmd under spec and returns its entry id.
func (s *Scheduler) AddJob(spec string, cmd func()) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, cmd)
	if err != nil {
		return 0, fmt.Errorf("failed to add cron job %q: %w", spec, err)
	}
	s.log.Debug(fmt.Sprintf("Added cron job with ID %d, spec: %s", id, spec))
	return id, nil
}

// RemoveJob removes a job by its entry id.
func (s *Scheduler) RemoveJob(id cron.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron.Remove(id)
	s.log.Debug(fmt.Sprintf("Removed cron job with ID %d", id))
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.log.Info("Cron scheduler stopped.")
}

// Entries returns the scheduled entries.
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Entries()
}

// cronLogger adapts logger.Logger to cron.Logger for the Recover wrapper.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(fmt.Sprintf("cron: %s %v", msg, keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(fmt.Sprintf("cron: %s %v", msg, keysAndValues), err)
}
