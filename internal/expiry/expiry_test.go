package expiry

import (
	"errors"
	"testing"
	"time"

	"github.com/erazemk/bestbefore/internal/model"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		expiry string
		want   int
	}{
		{"2026-05-10", 0},
		{"2026-05-11", 1},
		{"2026-05-09", -1},
		{"2026-05-20", 10},
		{"2026-05-20T00:00:00.000Z", 10},
		{"2026-05-20T23:59:59Z", 10},
		{"2026-05-20T08:00:00+02:00", 10},
		{"2026-06-01T12:00", 22},
		{"2027-05-10", 365},
	}

	for _, tt := range tests {
		got, err := DaysUntil(tt.expiry, now)
		if err != nil {
			t.Errorf("DaysUntil(%q): %v", tt.expiry, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DaysUntil(%q) = %d, want %d", tt.expiry, got, tt.want)
		}
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	expiries := []string{"2026-05-13", "2026-05-13T00:00:01Z", "2026-05-13T23:59:59Z"}
	nows := []time.Time{
		time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 10, 23, 59, 59, 0, time.UTC),
	}

	for _, e := range expiries {
		for _, n := range nows {
			got, err := DaysUntil(e, n)
			if err != nil {
				t.Fatalf("DaysUntil(%q): %v", e, err)
			}
			if got != 3 {
				t.Errorf("DaysUntil(%q, %s) = %d, want 3", e, n.Format(time.RFC3339), got)
			}
		}
	}
}

func TestDaysUntilAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Ljubljana")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// Clocks move forward on 2026-03-29.
	now := time.Date(2026, 3, 28, 23, 30, 0, 0, loc)
	got, err := DaysUntil("2026-03-30", now)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Errorf("expected 2 days across DST change, got %d", got)
	}
}

func TestDaysUntilInvalid(t *testing.T) {
	for _, s := range []string{"", "tomorrow", "2026-13-01", "10/05/2026"} {
		if _, err := DaysUntil(s, time.Now()); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("DaysUntil(%q) error = %v, want ErrInvalidDate", s, err)
		}
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{-5, "Expired"},
		{-1, "Expired"},
		{0, "Expires today"},
		{1, "Expires tomorrow"},
		{2, "Expires in 2 days"},
		{30, "Expires in 30 days"},
	}

	for _, tt := range tests {
		if got := Status(tt.days); got != tt.want {
			t.Errorf("Status(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		days int
		want Severity
	}{
		{-1, SeverityExpired},
		{0, SeverityCritical},
		{3, SeverityCritical},
		{4, SeveritySoon},
		{7, SeveritySoon},
		{8, SeverityOK},
	}

	for _, tt := range tests {
		if got := SeverityOf(tt.days); got != tt.want {
			t.Errorf("SeverityOf(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestSortByUrgency(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	items := []model.Item{
		{ID: "later", ExpiryDate: "2026-06-01"},
		{ID: "broken", ExpiryDate: "not a date"},
		{ID: "expired", ExpiryDate: "2026-05-01"},
		{ID: "today", ExpiryDate: "2026-05-10"},
		{ID: "soon", ExpiryDate: "2026-05-12"},
	}

	SortByUrgency(items, now)

	want := []string{"expired", "today", "soon", "later", "broken"}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, items[i].ID)
		}
	}
}

func TestDateAddDays(t *testing.T) {
	d := Date{Year: 2026, Month: time.February, Day: 27}
	if got := d.AddDays(3).String(); got != "2026-03-02" {
		t.Errorf("expected 2026-03-02, got %s", got)
	}
	if got := d.AddDays(-27).String(); got != "2026-01-31" {
		t.Errorf("expected 2026-01-31, got %s", got)
	}
}

func TestParseDateOffsetUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Ljubljana")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// Picked as March 6 in UTC+1 and stored as a UTC instant.
	got, err := ParseDate("2026-03-05T23:00:00.000Z", loc)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "2026-03-06" {
		t.Errorf("ParseDate in Ljubljana = %s, want 2026-03-06", got)
	}

	if got, _ := ParseDate("2026-03-05T23:00:00.000Z", time.UTC); got.String() != "2026-03-05" {
		t.Errorf("ParseDate in UTC = %s, want 2026-03-05", got)
	}

	// Values without an offset keep the date as written.
	for _, s := range []string{"2026-03-05", "2026-03-05T23:00", "2026-03-05T23:00:00"} {
		if got, _ := ParseDate(s, loc); got.String() != "2026-03-05" {
			t.Errorf("ParseDate(%q) = %s, want 2026-03-05", s, got)
		}
	}

	now := time.Date(2026, 3, 4, 12, 0, 0, 0, loc)
	days, err := DaysUntil("2026-03-05T23:00:00.000Z", now)
	if err != nil {
		t.Fatal(err)
	}
	if days != 2 {
		t.Errorf("DaysUntil = %d, want 2", days)
	}
}
