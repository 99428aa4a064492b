package models

import "time"

// FeedbackSettings is persisted as a flat JSON object under a single storage key.
type FeedbackSettings struct {
	Enabled           bool `json:"enabled"`
	SoundEnabled      bool `json:"sound_enabled"`
	VibrationEnabled  bool `json:"vibration_enabled"`
	AnimationsEnabled bool `json:"animations_enabled"`
	ShowTimestamps    bool `json:"show_timestamps"`
	AutoHide          bool `json:"auto_hide"`
	DefaultDurationMs int  `json:"default_duration_ms" validate:"gte=0"`
	MaxNotifications  int  `json:"max_notifications" validate:"gte=1"`
	GroupSimilar      bool `json:"group_similar"`
}

func DefaultFeedbackSettings() FeedbackSettings {
	return FeedbackSettings{
		Enabled:           true,
		SoundEnabled:      true,
		VibrationEnabled:  true,
		AnimationsEnabled: true,
		ShowTimestamps:    true,
		AutoHide:          true,
		DefaultDurationMs: 4000,
		MaxNotifications:  50,
		GroupSimilar:      true,
	}
}

func (s FeedbackSettings) DefaultDuration() time.Duration {
	return time.Duration(s.DefaultDurationMs) * time.Millisecond
}

// FeedbackSettingsPatch carries a partial update; nil fields are left untouched.
type FeedbackSettingsPatch struct {
	Enabled           *bool `json:"enabled,omitempty"`
	SoundEnabled      *bool `json:"sound_enabled,omitempty"`
	VibrationEnabled  *bool `json:"vibration_enabled,omitempty"`
	AnimationsEnabled *bool `json:"animations_enabled,omitempty"`
	ShowTimestamps    *bool `json:"show_timestamps,omitempty"`
	AutoHide          *bool `json:"auto_hide,omitempty"`
	DefaultDurationMs *int  `json:"default_duration_ms,omitempty"`
	MaxNotifications  *int  `json:"max_notifications,omitempty"`
	GroupSimilar      *bool `json:"group_similar,omitempty"`
}

func (s FeedbackSettings) Merge(p FeedbackSettingsPatch) FeedbackSettings {
	mergeValue(&s.Enabled, p.Enabled)
	mergeValue(&s.SoundEnabled, p.SoundEnabled)
	mergeValue(&s.VibrationEnabled, p.VibrationEnabled)
	mergeValue(&s.AnimationsEnabled, p.AnimationsEnabled)
	mergeValue(&s.ShowTimestamps, p.ShowTimestamps)
	mergeValue(&s.AutoHide, p.AutoHide)
	mergeValue(&s.DefaultDurationMs, p.DefaultDurationMs)
	mergeValue(&s.MaxNotifications, p.MaxNotifications)
	mergeValue(&s.GroupSimilar, p.GroupSimilar)
	return s
}

func mergeValue[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
