package model

import "fmt"

// Frequency controls how densely reminders are spread between the start of
// the lead window and the expiry date.
type Frequency string

// Reminder frequencies.
const (
	FrequencyOnce   Frequency = "once"
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// NotificationSettings is the global reminder policy.
type NotificationSettings struct {
	Enabled          bool      `json:"enabled"`
	DaysBeforeExpiry int       `json:"daysBeforeExpiry"`
	Frequency        Frequency `json:"frequency"`
}

// DefaultNotificationSettings returns the policy used before the user changes anything.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled:          false,
		DaysBeforeExpiry: 7,
		Frequency:        FrequencyDaily,
	}
}

// Validate checks the policy fields.
func (s NotificationSettings) Validate() error {
	if s.DaysBeforeExpiry < 0 {
		return fmt.Errorf("days before expiry must not be negative, got %d", s.DaysBeforeExpiry)
	}
	if !s.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", s.Frequency)
	}
	return nil
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	Enabled          *bool      `json:"enabled,omitempty"`
	DaysBeforeExpiry *int       `json:"daysBeforeExpiry,omitempty"`
	Frequency        *Frequency `json:"frequency,omitempty"`
}

// Apply returns s with the non-nil fields of p merged in.
func (p SettingsPatch) Apply(s NotificationSettings) NotificationSettings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.DaysBeforeExpiry != nil {
		s.DaysBeforeExpiry = *p.DaysBeforeExpiry
	}
	if p.Frequency != nil {
		s.Frequency = *p.Frequency
	}
	return s
}

// NotificationIDs maps an item id to the handles currently registered for it.
type NotificationIDs map[string][]string

// Count returns the total number of handles.
func (ids NotificationIDs) Count() int {
	n := 0
	for _, h := range ids {
		n += len(h)
	}
	return n
}

// GeminiConfig holds the image analysis credential.
type GeminiConfig struct {
	APIKey string `json:"apiKey"`
}

// State is the single persisted record.
type State struct {
	Items                []Item               `json:"items"`
	GeminiConfig         *GeminiConfig        `json:"geminiConfig"`
	NotificationSettings NotificationSettings `json:"notificationSettings"`
	NotificationIDs      NotificationIDs      `json:"notificationIds"`
}

// NewState returns an empty state with default settings.
func NewState() *State {
	return &State{
		Items:                []Item{},
		NotificationSettings: DefaultNotificationSettings(),
		NotificationIDs:      NotificationIDs{},
	}
}
