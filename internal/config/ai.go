package config

// AIMode gates whether AI answers are available at all.
type AIMode string

const (
	AIModeOff       AIMode = "off"
	AIModeOn        AIMode = "on"
	AIModeUnlimited AIMode = "unlimited"
)

// AISettings controls AI availability, rate limits, and provider choice.
// The advisor re-reads these before every rate-limit check, so an admin
// edit takes effect without a restart.
type AISettings struct {
	Mode             AIMode `yaml:"mode"`
	DailyLimitFree   int    `yaml:"daily_limit_free"`
	DailyLimitAdmin  int    `yaml:"daily_limit_admin"`
	CooldownSeconds  int    `yaml:"cooldown_seconds"`
	PrimaryProvider  string `yaml:"primary_provider"` // "anthropic", "openai", or "auto"
	PrimaryModel     string `yaml:"primary_model"`
	FallbackProvider string `yaml:"fallback_provider,omitempty"`
	FallbackModel    string `yaml:"fallback_model,omitempty"`
}

// DefaultAISettings returns the shipped defaults: AI on, 10 free requests
// a day, 30 for admins, no cooldown, Anthropic primary.
func DefaultAISettings() AISettings {
	return AISettings{
		Mode:            AIModeOn,
		DailyLimitFree:  10,
		DailyLimitAdmin: 30,
		CooldownSeconds: 0,
		PrimaryProvider: "anthropic",
		PrimaryModel:    "claude-sonnet-4-20250514",
	}
}

// AISettingsProvider yields the current AI settings. Implementations may
// cache; callers treat each Settings() result as a snapshot.
type AISettingsProvider interface {
	Settings() AISettings
}

// StaticSettings is an AISettingsProvider that always returns the same
// value. Used in tests and for one-shot CLI runs.
type StaticSettings struct {
	Value AISettings
}

// Settings returns the fixed settings value.
func (s StaticSettings) Settings() AISettings {
	return s.Value
}
