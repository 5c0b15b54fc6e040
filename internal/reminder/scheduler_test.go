package reminder

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/erazemk/bestbefore/internal/model"
	"github.com/erazemk/bestbefore/internal/notify"
)

var testNow = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

func newTestScheduler(p notify.Platform) *Scheduler {
	s := NewScheduler(p, &Capability{})
	s.Location = time.UTC
	s.Now = func() time.Time { return testNow }
	return s
}

func day(offset int) string {
	return testNow.AddDate(0, 0, offset).Format("2006-01-02")
}

func settings(days int, freq model.Frequency) model.NotificationSettings {
	return model.NotificationSettings{Enabled: true, DaysBeforeExpiry: days, Frequency: freq}
}

func fireDays(t *testing.T, scheduled []notify.Scheduled) []string {
	t.Helper()
	var out []string
	for _, s := range scheduled {
		if s.FireAt.Hour() != DefaultReminderHour {
			t.Errorf("occurrence fires at hour %d, want %d", s.FireAt.Hour(), DefaultReminderHour)
		}
		out = append(out, s.FireAt.Format("2006-01-02"))
	}
	return out
}

func TestLeadTimes(t *testing.T) {
	tests := []struct {
		days int
		freq model.Frequency
		want []int
	}{
		{7, model.FrequencyOnce, []int{7}},
		{0, model.FrequencyOnce, []int{0}},
		{3, model.FrequencyDaily, []int{3, 2, 1}},
		{0, model.FrequencyDaily, nil},
		{10, model.FrequencyWeekly, []int{10, 3}},
		{14, model.FrequencyWeekly, []int{14, 7}},
		{7, model.FrequencyWeekly, []int{7}},
		{-1, model.FrequencyOnce, nil},
		{7, model.Frequency("hourly"), nil},
	}

	for _, tt := range tests {
		if got := LeadTimes(tt.days, tt.freq); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("LeadTimes(%d, %s) = %v, want %v", tt.days, tt.freq, got, tt.want)
		}
	}

	if got := LeadTimes(100, model.FrequencyDaily); len(got) != MaxDailyLeadDays || got[0] != MaxDailyLeadDays {
		t.Errorf("expected daily lead times capped at %d, got %d starting at %d", MaxDailyLeadDays, len(got), got[0])
	}
}

func TestScheduleAllOnce(t *testing.T) {
	mem := notify.NewMemory()
	s := newTestScheduler(mem)
	items := []model.Item{{ID: "milk", Name: "Milk", ExpiryDate: day(10)}}

	ids := s.ScheduleAll(context.Background(), items, settings(7, model.FrequencyOnce))

	if len(ids["milk"]) != 1 {
		t.Fatalf("expected 1 handle, got %v", ids)
	}
	got := fireDays(t, mem.Scheduled())
	if !reflect.DeepEqual(got, []string{day(3)}) {
		t.Errorf("expected occurrence on %s, got %v", day(3), got)
	}

	occ := mem.Scheduled()[0]
	if occ.Content.Title != "Milk expires soon!" {
		t.Errorf("unexpected title %q", occ.Content.Title)
	}
	if occ.Content.Data["itemId"] != "milk" {
		t.Errorf("expected item id in payload, got %v", occ.Content.Data)
	}
}

func TestScheduleAllDaily(t *testing.T) {
	mem := notify.NewMemory()
	s := newTestScheduler(mem)
	items := []model.Item{{ID: "milk", Name: "Milk", ExpiryDate: day(10)}}

	ids := s.ScheduleAll(context.Background(), items, settings(7, model.FrequencyDaily))

	if len(ids["milk"]) != 7 {
		t.Fatalf("expected 7 handles, got %d", len(ids["milk"]))
	}
	var want []string
	for d := 3; d <= 9; d++ {
		want = append(want, day(d))
	}
	if got := fireDays(t, mem.Scheduled()); !reflect.DeepEqual(got, want) {
		t.Errorf("fire days = %v, want %v", got, want)
	}
}

func TestScheduleAllWeekly(t *testing.T) {
	mem := notify.NewMemory()
	s := newTestScheduler(mem)
	items := []model.Item{{ID: "milk", Name: "Milk", ExpiryDate: day(10)}}

	s.ScheduleAll(context.Background(), items, settings(10, model.FrequencyWeekly))

	// Lead times 10 and 3.
	want := []string{day(0), day(7)}
	if got := fireDays(t, mem.Scheduled()); !reflect.DeepEqual(got, want) {
		t.Errorf("fire days = %v, want %v", got, want)
	}
}

func TestScheduleAllSkipsExpired(t *testing.T) {
	mem := notify.NewMemory()
	s := newTestScheduler(mem)
	items := []model.Item{
		{ID: "old", Name: "Old", ExpiryDate: day(-1)},
		{ID: "today", Name: "Today", ExpiryDate: day(0)},
		{ID: "bad", Name: "Bad", ExpiryDate: "soon"},
	}

	for _, freq := range []model.Frequency{model.FrequencyOnce, model.FrequencyDaily, model.FrequencyWeekly} {
		ids := s.ScheduleAll(context.Background(), items, settings(7, freq))
		if len(ids) != 0 || len(mem.Scheduled()) != 0 {
			t.Errorf("%s: expected nothing scheduled, got %v", freq, ids)
		}
	}
}

func TestScheduleAllSkipsPastFireTimes(t *testing.T) {
	mem := notify.NewMemory()
	s := newTestScheduler(mem)
	s.Now = func() time.Time { return testNow.Add(2 * time.Hour) } // 10:00, after the reminder hour
	items := []model.Item{{ID: "milk", Name: "Milk", ExpiryDate: day(3)}}

	ids := s.ScheduleAll(context.Background(), items, settings(3, model.FrequencyDaily))

	// Lead 3 would fire today at 09:00, which has passed.
	want := []string{day(1), day(2)}
	if got := fireDays(t, mem.Scheduled()); !reflect.DeepEqual(got, want) {
		t.Errorf("fire days = %v, want %v", got, want)
	}
	if len(ids["milk"]) != 2 {
		t.Errorf("expected 2 handles, got %v", ids)
	}
}

func TestScheduleAllLeadBeyondExpiry(t *testing.T) {
	mem := notify.NewMemory()
	s := newTestScheduler(mem)
	items := []model.Item{{ID: "milk", Name: "Milk", ExpiryDate: day(5)}}

	ids := s.ScheduleAll(context.Background(), items, settings(7, model.FrequencyOnce))
	if len(ids) != 0 {
		t.Errorf("expected no reminder when the window already started, got %v", ids)
	}

	ids = s.ScheduleAll(context.Background(), items, settings(7, model.FrequencyDaily))
	if len(ids["milk"]) != 5 {
		t.Errorf("expected lead times 5..1, got %d handles", len(ids["milk"]))
	}
}

func TestScheduleAllDailyCap(t *testing.T) {
	mem := notify.NewMemory()
	s := newTestScheduler(mem)
	items := []model.Item{{ID: "rice", Name: "Rice", ExpiryDate: day(365)}}

	ids := s.ScheduleAll(context.Background(), items, settings(200, model.FrequencyDaily))
	if n := len(ids["rice"]); n != MaxDailyLeadDays {
		t.Errorf("expected %d occurrences, got %d", MaxDailyLeadDays, n)
	}
}

func TestScheduleAllIdempotent(t *testing.T) {
	mem := notify.NewMemory()
	s := newTestScheduler(mem)
	items := []model.Item{
		{ID: "a", Name: "A", ExpiryDate: day(10)},
		{ID: "b", Name: "B", ExpiryDate: day(20)},
	}
	cfg := settings(14, model.FrequencyWeekly)

	first := s.ScheduleAll(context.Background(), items, cfg)
	second := s.ScheduleAll(context.Background(), items, cfg)

	if len(first) != len(second) {
		t.Fatalf("key count changed: %d vs %d", len(first), len(second))
	}
	for id, handles := range first {
		if len(second[id]) != len(handles) {
			t.Errorf("item %s: %d vs %d occurrences", id, len(handles), len(second[id]))
		}
	}
	if len(mem.Scheduled()) != second.Count() {
		t.Errorf("platform holds %d occurrences, map has %d", len(mem.Scheduled()), second.Count())
	}
}

func TestScheduleAllCancelFailure(t *testing.T) {
	mem := notify.NewMemory()
	mem.FailCancelAll(errors.New("permission denied"))
	s := newTestScheduler(mem)
	items := []model.Item{{ID: "milk", Name: "Milk", ExpiryDate: day(10)}}

	ids := s.ScheduleAll(context.Background(), items, settings(7, model.FrequencyDaily))
	if len(ids) != 0 {
		t.Errorf("expected empty map, got %v", ids)
	}
	if s.Capability.Supported() {
		t.Error("expected capability to be marked unsupported")
	}

	mem.FailCancelAll(nil)
	calls := mem.CancelAllCalls()
	if ids := s.ScheduleAll(context.Background(), items, settings(7, model.FrequencyDaily)); len(ids) != 0 {
		t.Errorf("expected no-op once unsupported, got %v", ids)
	}
	if mem.CancelAllCalls() != calls {
		t.Error("expected no platform calls once unsupported")
	}
}

func TestScheduleAllTransientFailure(t *testing.T) {
	mem := notify.NewMemory()
	target := testNow.AddDate(0, 0, 5)
	mem.FailSchedule(func(_ notify.Content, fireAt time.Time) error {
		if fireAt.Format("2006-01-02") == target.Format("2006-01-02") {
			return errors.New("busy")
		}
		return nil
	})
	s := newTestScheduler(mem)
	items := []model.Item{
		{ID: "milk", Name: "Milk", ExpiryDate: day(10)},
		{ID: "eggs", Name: "Eggs", ExpiryDate: day(12)},
	}

	ids := s.ScheduleAll(context.Background(), items, settings(7, model.FrequencyDaily))

	if len(ids["milk"]) != 6 || len(ids["eggs"]) != 6 {
		t.Errorf("expected one skipped occurrence per item, got milk=%d eggs=%d", len(ids["milk"]), len(ids["eggs"]))
	}
	if !s.Capability.Supported() {
		t.Error("transient failure must not mark the platform unsupported")
	}
}

func TestScheduleAllUnsupportedScheduleError(t *testing.T) {
	mem := notify.NewMemory()
	mem.FailSchedule(func(notify.Content, time.Time) error { return notify.ErrUnsupported })
	s := newTestScheduler(mem)
	items := []model.Item{{ID: "milk", Name: "Milk", ExpiryDate: day(10)}}

	if ids := s.ScheduleAll(context.Background(), items, settings(7, model.FrequencyDaily)); len(ids) != 0 {
		t.Errorf("expected empty map, got %v", ids)
	}
	if s.Capability.Supported() {
		t.Error("expected capability to be marked unsupported")
	}
}

func TestSendTest(t *testing.T) {
	mem := notify.NewMemory()
	s := newTestScheduler(mem)

	if _, err := s.SendTest(context.Background()); err != nil {
		t.Fatalf("SendTest: %v", err)
	}
	got := mem.Scheduled()
	if len(got) != 1 || got[0].Content.Title != "Test Notification" || !got[0].FireAt.IsZero() {
		t.Errorf("unexpected test notification %+v", got)
	}

	s.Capability.MarkUnsupported()
	if _, err := s.SendTest(context.Background()); !errors.Is(err, notify.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestCapabilitySticky(t *testing.T) {
	var c Capability
	if !c.Supported() {
		t.Fatal("expected supported by default")
	}
	if !c.MarkUnsupported() {
		t.Error("first MarkUnsupported should report the transition")
	}
	if c.MarkUnsupported() {
		t.Error("second MarkUnsupported should be a no-op")
	}
	if c.Supported() {
		t.Error("expected unsupported to stick")
	}
}
