package advisor

import (
	"errors"

	"frostadvisor/internal/llm"
)

// User-safe AI failure messages. Raw provider errors carry endpoints
// and account details, so they stay in the logs.
const (
	msgNotConfigured = "AI service configuration issue. Please try again later."
	msgProviderBusy  = "AI request limit reached. Please try again later."
	msgUnavailable   = "Could not reach AI service. Please check your connection."
	msgBadAnswer     = "AI returned an unexpected response format. Please try again."
)

// UserSafeMessage maps an AI-path error to a message fit for the
// player.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return msgNotConfigured
	case errors.Is(err, llm.ErrRateLimited):
		return msgProviderBusy
	case errors.Is(err, llm.ErrInvalidResponse):
		return msgBadAnswer
	default:
		return msgUnavailable
	}
}
