package schedule_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakreminder/internal/domain/entity"
	"breakreminder/internal/domain/schedule"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2024, 3, 4, hour, min, sec, 0, time.UTC)
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		cfg  entity.Configuration
		want time.Time
	}{{
		name: "four per hour skips a candidate already past",
		now:  at(10, 7, 0),
		cfg:  entity.Configuration{EventsPerHour: 4, LeadTimeMinutes: 10},
		want: at(10, 20, 0),
	}, {
		name: "exact boundary without lead moves to the next hour",
		now:  at(14, 0, 0),
		cfg:  entity.Configuration{EventsPerHour: 1, LeadTimeMinutes: 0},
		want: at(15, 0, 0),
	}, {
		name: "one per hour with default lead",
		now:  at(9, 12, 30),
		cfg:  entity.Configuration{EventsPerHour: 1, LeadTimeMinutes: 10},
		want: at(9, 50, 0),
	}, {
		name: "one per hour after the lead candidate",
		now:  at(9, 51, 0),
		cfg:  entity.Configuration{EventsPerHour: 1, LeadTimeMinutes: 10},
		want: at(10, 50, 0),
	}, {
		name: "exact candidate resolves to the following one",
		now:  at(9, 50, 0),
		cfg:  entity.Configuration{EventsPerHour: 1, LeadTimeMinutes: 10},
		want: at(10, 50, 0),
	}, {
		name: "two per hour",
		now:  at(9, 26, 0),
		cfg:  entity.Configuration{EventsPerHour: 2, LeadTimeMinutes: 5},
		want: at(9, 55, 0),
	}, {
		name: "three per hour crosses midnight",
		now:  time.Date(2024, 3, 4, 23, 58, 0, 0, time.UTC),
		cfg:  entity.Configuration{EventsPerHour: 3, LeadTimeMinutes: 0},
		want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}, {
		name: "uneven spacing restarts at the top of the hour",
		now:  at(10, 57, 0),
		cfg:  entity.Configuration{EventsPerHour: 7, LeadTimeMinutes: 0},
		want: at(11, 0, 0),
	}, {
		name: "lead at spacing is clamped",
		now:  at(10, 1, 0),
		cfg:  entity.Configuration{EventsPerHour: 4, LeadTimeMinutes: 15},
		want: at(10, 16, 0),
	}, {
		name: "sub-second offsets after a fire",
		now:  at(9, 50, 0).Add(3 * time.Millisecond),
		cfg:  entity.Configuration{EventsPerHour: 1, LeadTimeMinutes: 10},
		want: at(10, 50, 0),
	}}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.Next(tt.now, tt.cfg)
			assert.True(t, tt.want.Equal(got), "wrong next\ngot:  %s\nwant: %s", got, tt.want)
		})
	}
}

func TestNextNeverInThePast(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5000; i++ {
		now := base.Add(time.Duration(rng.Int63n(int64(365 * 24 * time.Hour))))
		cfg := entity.Configuration{
			EventsPerHour:   rng.Intn(8),
			LeadTimeMinutes: rng.Intn(75) - 5,
		}
		got := schedule.Next(now, cfg)
		require.True(t, got.After(now), "Next(%s, %+v) = %s", now, cfg, got)
		require.True(t, got.Sub(now) <= 2*time.Hour, "Next(%s, %+v) = %s is too far", now, cfg, got)
	}
}

func TestNextIsDeterministic(t *testing.T) {
	now := at(13, 37, 12)
	cfg := entity.Configuration{EventsPerHour: 3, LeadTimeMinutes: 5}
	assert.Equal(t, schedule.Next(now, cfg), schedule.Next(now, cfg))
}

func TestNextAlignsToLocalHour(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 4, 10, 7, 0, 0, ist)
	got := schedule.Next(now, entity.Configuration{EventsPerHour: 2, LeadTimeMinutes: 0})
	assert.Equal(t, time.Date(2024, 3, 4, 10, 30, 0, 0, ist), got)
	assert.Equal(t, 30, got.In(ist).Minute())
}

func TestConsecutiveFiresAreSpaced(t *testing.T) {
	cfg := entity.Configuration{EventsPerHour: 4, LeadTimeMinutes: 5}
	times := schedule.Upcoming(schedule.Breaks{Config: cfg}, at(8, 0, 0), 8)
	require.Len(t, times, 8)
	assert.Equal(t, at(8, 10, 0), times[0])
	for i := 1; i < len(times); i++ {
		assert.Equal(t, 15*time.Minute, times[i].Sub(times[i-1]))
	}
}

func TestBreaksIsCronSchedule(t *testing.T) {
	var s cron.Schedule = schedule.Breaks{Config: entity.Configuration{EventsPerHour: 1, LeadTimeMinutes: 0}}
	assert.Equal(t, at(11, 0, 0), s.Next(at(10, 0, 1)))
}

func TestUpcomingAcceptsAnyCronSchedule(t *testing.T) {
	every := cron.ConstantDelaySchedule{Delay: time.Minute}
	got := schedule.Upcoming(every, at(10, 0, 0), 3)
	assert.Equal(t, []time.Time{at(10, 1, 0), at(10, 2, 0), at(10, 3, 0)}, got)
	assert.Empty(t, schedule.Upcoming(every, at(10, 0, 0), 0))
}
