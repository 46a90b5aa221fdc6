// Package schedule computes when the next break alert is due.
//
// Boundaries are spread evenly within each hour: with n events per hour they
// fall on hh:00, hh:00+60/n, ... The alert for a boundary fires the configured
// lead time earlier. Next always returns a time strictly after now, so an
// alert that just fired is never scheduled again for the same instant.
package schedule

import (
	"time"

	"github.com/robfig/cron/v3"

	"breakreminder/internal/domain/entity"
)

// Next returns the first alert time strictly after now for cfg.
//
// A lead time that reaches the spacing between boundaries is clamped to one
// minute less than the spacing. When now sits exactly on an alert time the
// following one is returned.
func Next(now time.Time, cfg entity.Configuration) time.Time {
	spacing := cfg.Spacing()
	lead := cfg.LeadTime()
	if lead >= spacing {
		lead = spacing - time.Minute
	}

	top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	for {
		for offset := time.Duration(0); offset < time.Hour; offset += spacing {
			if at := top.Add(offset - lead); at.After(now) {
				return at
			}
		}
		top = top.Add(time.Hour)
	}
}

// Breaks adapts a Configuration to cron.Schedule.
type Breaks struct {
	Config entity.Configuration
}

var _ cron.Schedule = Breaks{}

// Next implements cron.Schedule.
func (b Breaks) Next(t time.Time) time.Time {
	return Next(t, b.Config)
}

// Upcoming lists the next n activation times of s after from.
func Upcoming(s cron.Schedule, from time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	at := from
	for i := 0; i < n; i++ {
		at = s.Next(at)
		if at.IsZero() {
			break
		}
		out = append(out, at)
	}
	return out
}
