// Package reminder derives reminder occurrences from the item collection and
// keeps the notification platform in line with them.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/bestbefore/internal/expiry"
	"github.com/erazemk/bestbefore/internal/model"
	"github.com/erazemk/bestbefore/internal/notify"
)

// MaxDailyLeadDays caps the number of daily reminders per item.
const MaxDailyLeadDays = 30

// DefaultReminderHour is the local hour reminders fire at.
const DefaultReminderHour = 9

// LeadTimes returns the days-before-expiry at which reminders fire for the
// given policy, largest first. A once policy with zero days fires on the
// expiry day itself.
func LeadTimes(daysBefore int, freq model.Frequency) []int {
	if daysBefore < 0 {
		return nil
	}

	var leads []int
	switch freq {
	case model.FrequencyOnce:
		leads = []int{daysBefore}
	case model.FrequencyDaily:
		for l := min(daysBefore, MaxDailyLeadDays); l >= 1; l-- {
			leads = append(leads, l)
		}
	case model.FrequencyWeekly:
		for l := daysBefore; l > 0; l -= 7 {
			leads = append(leads, l)
		}
	}
	return leads
}

// Occurrence is one reminder to register.
type Occurrence struct {
	ItemID   string
	LeadDays int
	FireAt   time.Time
	Content  notify.Content
}

// Scheduler registers reminder occurrences with a notification platform.
type Scheduler struct {
	Platform   notify.Platform
	Capability *Capability

	// Hour and Location set the wall-clock fire time on the reminder day.
	Hour     int
	Location *time.Location

	Now    func() time.Time
	Logger *slog.Logger
}

// NewScheduler creates a scheduler firing at DefaultReminderHour local time.
func NewScheduler(p notify.Platform, c *Capability) *Scheduler {
	return &Scheduler{
		Platform:   p,
		Capability: c,
		Hour:       DefaultReminderHour,
		Location:   time.Local,
		Now:        time.Now,
		Logger:     slog.Default(),
	}
}

// Plan computes the occurrences for items without touching the platform.
// Items that have expired, have no parseable expiry date or whose every
// reminder day has passed yield nothing.
func (s *Scheduler) Plan(items []model.Item, settings model.NotificationSettings) []Occurrence {
	now := s.Now()
	loc := s.location()
	today := expiry.DateOf(now.In(loc))
	leads := LeadTimes(settings.DaysBeforeExpiry, settings.Frequency)

	var out []Occurrence
	for _, it := range items {
		exp, err := expiry.ParseDate(it.ExpiryDate, loc)
		if err != nil {
			s.logger().Warn("skipping item with invalid expiry date", "item", it.ID, "expiry_date", it.ExpiryDate)
			continue
		}
		days := expiry.DaysBetween(today, exp)
		if days <= 0 {
			continue
		}

		for _, l := range leads {
			if days < l {
				continue
			}
			day := exp.AddDays(-l)
			fireAt := day.At(s.Hour, loc)
			if !fireAt.After(now) {
				continue
			}
			out = append(out, Occurrence{
				ItemID:   it.ID,
				LeadDays: l,
				FireAt:   fireAt,
				Content: notify.Content{
					Title: fmt.Sprintf("%s expires soon!", it.Name),
					Body:  fmt.Sprintf("%s will expire in %s (on %s)", it.Name, pluralDays(l), exp),
					Data:  map[string]string{"itemId": it.ID},
				},
			})
		}
	}
	return out
}

// ScheduleAll cancels every registered occurrence and registers the full set
// for items. It returns the handles per item id. An unsupported platform, or
// one whose cancel-all fails, yields an empty map and marks the capability
// unsupported. A done ctx yields an empty map and leaves the capability
// alone.
func (s *Scheduler) ScheduleAll(ctx context.Context, items []model.Item, settings model.NotificationSettings) model.NotificationIDs {
	ids := model.NotificationIDs{}
	if !s.Capability.Supported() || ctx.Err() != nil {
		return ids
	}

	if err := s.Platform.CancelAll(ctx); err != nil {
		if ctx.Err() == nil {
			s.markUnsupported(err)
		}
		return ids
	}

	for _, occ := range s.Plan(items, settings) {
		handle, err := s.Platform.Schedule(ctx, occ.Content, occ.FireAt)
		if ctx.Err() != nil {
			return model.NotificationIDs{}
		}
		if err != nil {
			if errors.Is(err, notify.ErrUnsupported) {
				s.markUnsupported(err)
				return model.NotificationIDs{}
			}
			s.logger().Warn("failed to schedule reminder", "item", occ.ItemID, "lead_days", occ.LeadDays, "error", err)
			continue
		}
		ids[occ.ItemID] = append(ids[occ.ItemID], handle)
	}
	return ids
}

// CancelAll removes every registered occurrence. Failure with a live ctx
// marks the capability unsupported.
func (s *Scheduler) CancelAll(ctx context.Context) {
	if !s.Capability.Supported() {
		return
	}
	if err := s.Platform.CancelAll(ctx); err != nil && ctx.Err() == nil {
		s.markUnsupported(err)
	}
}

// SendTest registers a single occurrence that fires immediately.
func (s *Scheduler) SendTest(ctx context.Context) (string, error) {
	if !s.Capability.Supported() {
		return "", notify.ErrUnsupported
	}
	handle, err := s.Platform.Schedule(ctx, notify.Content{
		Title: "Test Notification",
		Body:  "This is a test notification from Best Before!",
		Data:  map[string]string{"test": "true"},
	}, time.Time{})
	if err != nil {
		if errors.Is(err, notify.ErrUnsupported) && ctx.Err() == nil {
			s.markUnsupported(err)
		}
		return "", fmt.Errorf("sending test notification: %w", err)
	}
	return handle, nil
}

func (s *Scheduler) markUnsupported(err error) {
	if s.Capability.MarkUnsupported() {
		s.logger().Warn("notifications unsupported", "error", err)
	}
}

func (s *Scheduler) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
