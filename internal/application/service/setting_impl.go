package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"breakreminder/internal/domain/constant"
	"breakreminder/internal/domain/entity"
	"breakreminder/internal/domain/repository"
	appErrors "breakreminder/internal/pkg/errors"
	"breakreminder/internal/pkg/logger"
)

type settingService struct {
	repo repository.SettingRepository
	log  logger.Logger

	mu  sync.RWMutex
	cfg entity.Configuration
}

// NewSettingService creates a SettingService holding the default
// configuration until Load is called.
func NewSettingService(repo repository.SettingRepository, log logger.Logger) SettingService {
	return &settingService{
		repo: repo,
		log:  log,
		cfg:  entity.DefaultConfiguration(),
	}
}

// Load reads both settings and replaces the in-memory configuration.
func (s *settingService) Load(ctx context.Context) entity.Configuration {
	s.mu.Lock()
	cfg := s.read(ctx)
	s.cfg = cfg
	s.mu.Unlock()
	s.log.Info(fmt.Sprintf("Loaded configuration: %s", cfg))
	return cfg
}

// Current returns a copy of the in-memory configuration.
func (s *settingService) Current() entity.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// CycleFrequency advances EventsPerHour along its cycle.
func (s *settingService) CycleFrequency(ctx context.Context) (entity.Configuration, error) {
	return s.update(ctx, constant.SettingFrequency, func(c entity.Configuration) (entity.Configuration, int) {
		c = c.NextFrequency()
		return c, c.EventsPerHour
	})
}

// CycleLeadTime advances LeadTimeMinutes along its cycle.
func (s *settingService) CycleLeadTime(ctx context.Context) (entity.Configuration, error) {
	return s.update(ctx, constant.SettingLeadTime, func(c entity.Configuration) (entity.Configuration, int) {
		c = c.NextLeadTime()
		return c, c.LeadTimeMinutes
	})
}

// Reload re-reads the store, used when the settings document was edited
// outside the process. The read and the commit share the write lock so a
// concurrent cycle is never overwritten by a stale read.
func (s *settingService) Reload(ctx context.Context) (entity.Configuration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.read(ctx)
	if cfg == s.cfg {
		return cfg, false
	}
	s.log.Info(fmt.Sprintf("Configuration changed in store: %s -> %s", s.cfg, cfg))
	s.cfg = cfg
	return cfg, true
}

// update performs the read-modify-write and the persist under the write lock.
// The new value stays in memory even if persisting it fails.
func (s *settingService) update(
	ctx context.Context,
	key string,
	next func(entity.Configuration) (entity.Configuration, int),
) (entity.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, value := next(s.cfg)
	s.cfg = cfg
	if err := s.repo.Set(ctx, key, strconv.Itoa(value)); err != nil {
		s.log.Error(fmt.Sprintf("Failed to persist %s=%d", key, value), err)
		return cfg, fmt.Errorf("%w: %v", appErrors.ErrStoreOperation, err)
	}
	s.log.Debug(fmt.Sprintf("Persisted %s=%d", key, value))
	return cfg, nil
}

func (s *settingService) read(ctx context.Context) entity.Configuration {
	def := entity.DefaultConfiguration()
	return entity.Configuration{
		EventsPerHour:   s.readInt(ctx, constant.SettingFrequency, def.EventsPerHour, 1),
		LeadTimeMinutes: s.readInt(ctx, constant.SettingLeadTime, def.LeadTimeMinutes, 0),
	}
}

// readInt returns the stored integer for key, or def when it is absent,
// empty, unparsable or below minimum.
func (s *settingService) readInt(ctx context.Context, key string, def, minimum int) int {
	raw, found, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Failed to read %s from store, using default %d: %v", key, def, err))
		return def
	}
	raw = strings.TrimSpace(raw)
	if !found || raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minimum {
		s.log.Warn(fmt.Sprintf("Malformed value %q for %s, using default %d", raw, key, def))
		return def
	}
	return v
}
