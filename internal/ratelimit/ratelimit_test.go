package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"frostadvisor/internal/config"
	"frostadvisor/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memStore is an in-memory UserStore with the same serialization
// guarantees the SQLite store gives.
type memStore struct {
	mu    sync.Mutex
	users map[string]types.User
}

func newMemStore(users ...types.User) *memStore {
	s := &memStore{users: make(map[string]types.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) GetUser(_ context.Context, id string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return types.User{}, fmt.Errorf("no such user %s", id)
	}
	return u, nil
}

func (s *memStore) SaveRateState(_ context.Context, userID string, state types.UserRateState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	u.RateState = state
	s.users[userID] = u
	return nil
}

func onSettings(free, admin, cooldown int) config.StaticSettings {
	return config.StaticSettings{Value: config.AISettings{
		Mode: config.AIModeOn, DailyLimitFree: free, DailyLimitAdmin: admin, CooldownSeconds: cooldown,
	}}
}

func TestReserveCountsDown(t *testing.T) {
	store := newMemStore(types.User{ID: "u1", Role: types.RoleUser})
	l := New(store, onSettings(3, 30, 0))
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		d, err := l.Reserve(ctx, "u1")
		if err != nil {
			t.Fatalf("Reserve: %v", err)
		}
		if !d.Allowed || d.Remaining != want {
			t.Errorf("decision = %+v, want allowed with remaining %d", d, want)
		}
	}

	d, err := l.Reserve(ctx, "u1")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if d.Allowed {
		t.Error("fourth request should be denied")
	}
	if d.Message != "Daily limit reached (3 requests). Resets at midnight UTC." {
		t.Errorf("message = %q", d.Message)
	}
}

func TestModeOffAndUnlimited(t *testing.T) {
	store := newMemStore(types.User{ID: "u1"})
	ctx := context.Background()

	off := New(store, config.StaticSettings{Value: config.AISettings{Mode: config.AIModeOff}})
	d, err := off.Reserve(ctx, "u1")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if d.Allowed || d.Message != "AI features are currently disabled" {
		t.Errorf("decision = %+v", d)
	}

	unlimited := New(store, config.StaticSettings{Value: config.AISettings{Mode: config.AIModeUnlimited}})
	for i := 0; i < 20; i++ {
		d, err = unlimited.Reserve(ctx, "u1")
		if err != nil {
			t.Fatalf("Reserve: %v", err)
		}
		if !d.Allowed || d.Remaining != -1 {
			t.Fatalf("unlimited decision = %+v", d)
		}
	}
}

func TestUnlimitedSkipsCooldown(t *testing.T) {
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	last := base.Add(-5 * time.Second)
	store := newMemStore(types.User{ID: "u1", RateState: types.UserRateState{
		AIRequestsToday:  500,
		AIRequestResetAt: base.Format(dateLayout),
		LastAIRequestAt:  &last,
	}})
	l := New(store, config.StaticSettings{Value: config.AISettings{
		Mode: config.AIModeUnlimited, DailyLimitFree: 10, CooldownSeconds: 60,
	}})
	l.now = func() time.Time { return base }

	d, err := l.Reserve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !d.Allowed || d.Remaining != -1 {
		t.Errorf("decision = %+v, want unconditional allow in unlimited mode", d)
	}
}

func TestLimitReportedBeforeCooldown(t *testing.T) {
	// Quota exhausted while the cooldown is also running: the limit
	// message wins, it tells the player when to come back.
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	last := base.Add(-5 * time.Second)
	store := newMemStore(types.User{ID: "u1", RateState: types.UserRateState{
		AIRequestsToday:  2,
		AIRequestResetAt: base.Format(dateLayout),
		LastAIRequestAt:  &last,
	}})
	l := New(store, onSettings(2, 30, 60))
	l.now = func() time.Time { return base }

	d, err := l.Reserve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if d.Allowed {
		t.Fatal("request over the limit must be denied")
	}
	if !strings.Contains(d.Message, "Daily limit reached") {
		t.Errorf("message = %q, want the daily limit message", d.Message)
	}
}

func TestCounterResetsAtMidnightUTC(t *testing.T) {
	store := newMemStore(types.User{ID: "u1"})
	l := New(store, onSettings(1, 30, 0))
	ctx := context.Background()

	day1 := time.Date(2026, 8, 24, 23, 50, 0, 0, time.UTC)
	l.now = func() time.Time { return day1 }

	if d, _ := l.Reserve(ctx, "u1"); !d.Allowed {
		t.Fatal("first request should pass")
	}
	if d, _ := l.Reserve(ctx, "u1"); d.Allowed {
		t.Fatal("second request should hit the limit")
	}

	l.now = func() time.Time { return day1.Add(15 * time.Minute) } // past midnight
	if d, _ := l.Reserve(ctx, "u1"); !d.Allowed {
		t.Error("counter should reset on the new UTC day")
	}
}

func TestCooldown(t *testing.T) {
	store := newMemStore(types.User{ID: "u1"})
	l := New(store, onSettings(10, 30, 60))
	ctx := context.Background()

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	if d, _ := l.Reserve(ctx, "u1"); !d.Allowed {
		t.Fatal("first request should pass")
	}

	l.now = func() time.Time { return base.Add(20 * time.Second) }
	d, _ := l.Reserve(ctx, "u1")
	if d.Allowed {
		t.Fatal("request inside cooldown should be denied")
	}
	if d.Message != "Please wait 40 seconds before your next request." {
		t.Errorf("message = %q", d.Message)
	}

	l.now = func() time.Time { return base.Add(61 * time.Second) }
	if d, _ := l.Reserve(ctx, "u1"); !d.Allowed {
		t.Error("request after cooldown should pass")
	}
}

func TestAdminAndOverrideLimits(t *testing.T) {
	five := 5
	settings := onSettings(10, 30, 0).Value

	admin := types.User{ID: "a", Role: types.RoleAdmin}
	if got := DailyLimit(admin, settings); got != 30 {
		t.Errorf("admin limit = %d, want 30", got)
	}
	override := types.User{ID: "o", Role: types.RoleUser, AIDailyLimit: &five}
	if got := DailyLimit(override, settings); got != 5 {
		t.Errorf("override limit = %d, want 5", got)
	}
	plain := types.User{ID: "p", Role: types.RoleUser}
	if got := DailyLimit(plain, settings); got != 10 {
		t.Errorf("free limit = %d, want 10", got)
	}
}

func TestRefundRestoresSlot(t *testing.T) {
	store := newMemStore(types.User{ID: "u1"})
	l := New(store, onSettings(1, 30, 0))
	ctx := context.Background()

	if d, _ := l.Reserve(ctx, "u1"); !d.Allowed {
		t.Fatal("first request should pass")
	}
	if err := l.Refund(ctx, "u1"); err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if d, _ := l.Reserve(ctx, "u1"); !d.Allowed {
		t.Error("refunded slot should be reservable again")
	}
}

func TestConcurrentReserveAtLastSlot(t *testing.T) {
	// One slot left; two simultaneous requests; exactly one may pass.
	store := newMemStore(types.User{
		ID: "u1",
		RateState: types.UserRateState{
			AIRequestsToday:  9,
			AIRequestResetAt: time.Now().UTC().Format("2006-01-02"),
		},
	})
	l := New(store, onSettings(10, 30, 0))

	var wg sync.WaitGroup
	results := make([]Decision, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := l.Reserve(context.Background(), "u1")
			if err != nil {
				t.Errorf("Reserve: %v", err)
				return
			}
			results[i] = d
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, d := range results {
		if d.Allowed {
			allowed++
		} else if !strings.Contains(d.Message, "Daily limit reached") {
			t.Errorf("denial message = %q", d.Message)
		}
	}
	if allowed != 1 {
		t.Errorf("allowed = %d, want exactly 1", allowed)
	}
}

func TestUsageDoesNotCharge(t *testing.T) {
	store := newMemStore(types.User{ID: "u1"})
	l := New(store, onSettings(10, 30, 0))
	ctx := context.Background()

	l.Reserve(ctx, "u1")
	for i := 0; i < 3; i++ {
		used, limit, err := l.Usage(ctx, "u1")
		if err != nil {
			t.Fatalf("Usage: %v", err)
		}
		if used != 1 || limit != 10 {
			t.Errorf("usage = %d/%d, want 1/10", used, limit)
		}
	}
}
