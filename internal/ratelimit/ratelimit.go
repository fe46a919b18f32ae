// Package ratelimit enforces per-user AI request quotas: a daily
// counter that resets at midnight UTC, an optional cooldown between
// requests, and a global on/off/unlimited mode. All mutation of a
// user's rate state is serialized through a per-user mutex, so two
// concurrent requests can never both consume the last remaining slot.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"frostadvisor/internal/config"
	"frostadvisor/internal/logging"
	"frostadvisor/internal/types"
)

// User-facing denial messages. These go straight to the player.
const (
	msgDisabled = "AI features are currently disabled"
	msgLimit    = "Daily limit reached (%d requests). Resets at midnight UTC."
	msgCooldown = "Please wait %d seconds before your next request."
)

// dateLayout is the UTC day key stored in the rate state.
const dateLayout = "2006-01-02"

// UserStore is the persistence the limiter needs.
type UserStore interface {
	GetUser(ctx context.Context, id string) (types.User, error)
	SaveRateState(ctx context.Context, userID string, state types.UserRateState) error
}

// Decision is the outcome of a reservation attempt.
type Decision struct {
	Allowed   bool
	Remaining int // requests left after this one; -1 means unlimited
	Message   string
}

// Limiter reserves AI request slots against the user store.
type Limiter struct {
	store    UserStore
	settings config.AISettingsProvider
	now      func() time.Time

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// New returns a limiter over the given store and settings source.
func New(store UserStore, settings config.AISettingsProvider) *Limiter {
	return &Limiter{
		store:    store,
		settings: settings,
		now:      time.Now,
		users:    make(map[string]*sync.Mutex),
	}
}

func (l *Limiter) userLock(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.users[id]
	if !ok {
		m = &sync.Mutex{}
		l.users[id] = m
	}
	return m
}

// DailyLimit resolves the quota for a user: a per-user override wins,
// then the admin plan, then the free plan.
func DailyLimit(user types.User, settings config.AISettings) int {
	if user.AIDailyLimit != nil {
		return *user.AIDailyLimit
	}
	if user.Role == types.RoleAdmin {
		return settings.DailyLimitAdmin
	}
	return settings.DailyLimitFree
}

// Reserve atomically checks the user's quota and, when allowed, charges
// one request against it. A denied decision carries the user-facing
// message; the error return is for store failures only.
func (l *Limiter) Reserve(ctx context.Context, userID string) (Decision, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	settings := l.settings.Settings()
	if settings.Mode == config.AIModeOff {
		return Decision{Allowed: false, Message: msgDisabled}, nil
	}
	// Unlimited mode bypasses the counter and the cooldown entirely.
	if settings.Mode == config.AIModeUnlimited {
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("load user %s: %w", userID, err)
	}

	now := l.now().UTC()
	state := user.RateState
	today := now.Format(dateLayout)
	if state.AIRequestResetAt != today {
		state.AIRequestsToday = 0
		state.AIRequestResetAt = today
	}

	// An exhausted quota is reported as such even when the cooldown is
	// also running; the limit message tells the player when to come back.
	limit := DailyLimit(user, settings)
	if state.AIRequestsToday >= limit {
		logging.RateLimit("user %s hit daily limit %d", userID, limit)
		return Decision{Allowed: false, Message: fmt.Sprintf(msgLimit, limit)}, nil
	}
	remaining := limit - state.AIRequestsToday - 1

	if settings.CooldownSeconds > 0 && state.LastAIRequestAt != nil {
		elapsed := now.Sub(state.LastAIRequestAt.UTC())
		cooldown := time.Duration(settings.CooldownSeconds) * time.Second
		if elapsed < cooldown {
			wait := int(math.Ceil((cooldown - elapsed).Seconds()))
			return Decision{Allowed: false, Message: fmt.Sprintf(msgCooldown, wait)}, nil
		}
	}

	state.AIRequestsToday++
	state.LastAIRequestAt = &now
	if err := l.store.SaveRateState(ctx, userID, state); err != nil {
		return Decision{}, fmt.Errorf("save rate state for %s: %w", userID, err)
	}

	logging.RateLimitDebug("user %s reserved AI request, remaining=%d", userID, remaining)
	return Decision{Allowed: true, Remaining: remaining}, nil
}

// Refund returns a reserved slot. Used when a request is canceled
// before the provider call is issued; a request that reached the
// provider stays charged whatever its outcome.
func (l *Limiter) Refund(ctx context.Context, userID string) error {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", userID, err)
	}
	state := user.RateState
	if state.AIRequestsToday > 0 {
		state.AIRequestsToday--
	}
	if err := l.store.SaveRateState(ctx, userID, state); err != nil {
		return fmt.Errorf("save rate state for %s: %w", userID, err)
	}
	logging.RateLimitDebug("user %s refunded AI request", userID)
	return nil
}

// Usage reports the user's current quota position without charging.
func (l *Limiter) Usage(ctx context.Context, userID string) (used, limit int, err error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	settings := l.settings.Settings()
	state := user.RateState
	if state.AIRequestResetAt != l.now().UTC().Format(dateLayout) {
		state.AIRequestsToday = 0
	}
	return state.AIRequestsToday, DailyLimit(user, settings), nil
}
