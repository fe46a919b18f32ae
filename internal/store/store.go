// Package store is the SQLite repository for users, profiles, rosters,
// chief gear, and the conversation log. One writer at a time; reads
// share a lock. Roster and priority details are stored as JSON blobs so
// schema churn stays in Go types.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"frostadvisor/internal/logging"
	"frostadvisor/internal/types"
)

// Store manages the advisor database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open creates or opens the database at path. ":memory:" opens an
// in-memory database for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and
	// serializes writers for file databases.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("opened database at %s", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL DEFAULT 'user',
		ai_daily_limit INTEGER,
		ai_requests_today INTEGER NOT NULL DEFAULT 0,
		last_ai_request_at DATETIME,
		ai_request_reset_at TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		server_age_days INTEGER NOT NULL,
		furnace_level INTEGER NOT NULL,
		furnace_fc_level TEXT,
		spending_profile TEXT NOT NULL,
		alliance_role TEXT NOT NULL,
		priorities_json TEXT NOT NULL,
		is_farm_account INTEGER NOT NULL DEFAULT 0,
		linked_main_profile_id TEXT,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);
	CREATE INDEX IF NOT EXISTS idx_profiles_user ON profiles(user_id);

	CREATE TABLE IF NOT EXISTS owned_heroes (
		profile_id TEXT NOT NULL,
		name TEXT NOT NULL,
		data_json TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (profile_id, name),
		FOREIGN KEY (profile_id) REFERENCES profiles(id)
	);

	CREATE TABLE IF NOT EXISTS chief_gear (
		profile_id TEXT PRIMARY KEY,
		data_json TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (profile_id) REFERENCES profiles(id)
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		profile_snapshot TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		source TEXT NOT NULL,
		provider TEXT,
		model TEXT,
		tokens_in INTEGER NOT NULL DEFAULT 0,
		tokens_out INTEGER NOT NULL DEFAULT 0,
		response_time_ms INTEGER NOT NULL DEFAULT 0,
		thread_id TEXT,
		created_at DATETIME NOT NULL,
		rating INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id);
	CREATE INDEX IF NOT EXISTS idx_conversations_created ON conversations(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

// CreateUser inserts a user. Existing IDs are left untouched.
func (s *Store) CreateUser(ctx context.Context, user types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := user.Role
	if role == "" {
		role = types.RoleUser
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO users (id, role, ai_daily_limit, created_at)
		VALUES (?, ?, ?, ?)`,
		user.ID, string(role), user.AIDailyLimit, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.ID, err)
	}
	return nil
}

// GetUser loads a user with their rate state.
func (s *Store) GetUser(ctx context.Context, id string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		user    types.User
		role    string
		limit   sql.NullInt64
		last    sql.NullTime
		resetAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, role, ai_daily_limit, ai_requests_today, last_ai_request_at, ai_request_reset_at
		FROM users WHERE id = ?`, id).
		Scan(&user.ID, &role, &limit, &user.RateState.AIRequestsToday, &last, &resetAt)
	if err == sql.ErrNoRows {
		return types.User{}, fmt.Errorf("user %s not found", id)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("get user %s: %w", id, err)
	}

	user.Role = types.UserRole(role)
	if limit.Valid {
		v := int(limit.Int64)
		user.AIDailyLimit = &v
	}
	if last.Valid {
		t := last.Time.UTC()
		user.RateState.LastAIRequestAt = &t
	}
	user.RateState.AIRequestResetAt = resetAt
	return user, nil
}

// SaveRateState persists a user's AI usage counters.
func (s *Store) SaveRateState(ctx context.Context, userID string, state types.UserRateState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET ai_requests_today = ?, last_ai_request_at = ?, ai_request_reset_at = ?
		WHERE id = ?`,
		state.AIRequestsToday, state.LastAIRequestAt, state.AIRequestResetAt, userID)
	if err != nil {
		return fmt.Errorf("save rate state for %s: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

// SetUserLimit sets or clears a per-user daily limit override.
func (s *Store) SetUserLimit(ctx context.Context, userID string, limit *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET ai_daily_limit = ? WHERE id = ?`, limit, userID)
	if err != nil {
		return fmt.Errorf("set limit for %s: %w", userID, err)
	}
	return nil
}

// =============================================================================
// PROFILES
// =============================================================================

// SaveProfile upserts a profile.
func (s *Store) SaveProfile(ctx context.Context, userID string, p types.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	priorities, err := json.Marshal(p.Priorities)
	if err != nil {
		return fmt.Errorf("marshal priorities: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, user_id, server_age_days, furnace_level, furnace_fc_level,
			spending_profile, alliance_role, priorities_json, is_farm_account,
			linked_main_profile_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			server_age_days = excluded.server_age_days,
			furnace_level = excluded.furnace_level,
			furnace_fc_level = excluded.furnace_fc_level,
			spending_profile = excluded.spending_profile,
			alliance_role = excluded.alliance_role,
			priorities_json = excluded.priorities_json,
			is_farm_account = excluded.is_farm_account,
			linked_main_profile_id = excluded.linked_main_profile_id,
			updated_at = excluded.updated_at`,
		p.ID, userID, p.ServerAgeDays, p.FurnaceLevel, p.FurnaceFcLevel,
		string(p.SpendingProfile), string(p.AllianceRole), string(priorities),
		p.IsFarmAccount, p.LinkedMainProfileID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.ID, err)
	}
	return nil
}

// GetProfile loads a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (types.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p          types.Profile
		spending   string
		role       string
		priorities string
		fcLevel    sql.NullString
		linked     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, server_age_days, furnace_level, furnace_fc_level, spending_profile,
			alliance_role, priorities_json, is_farm_account, linked_main_profile_id
		FROM profiles WHERE id = ?`, id).
		Scan(&p.ID, &p.ServerAgeDays, &p.FurnaceLevel, &fcLevel, &spending,
			&role, &priorities, &p.IsFarmAccount, &linked)
	if err == sql.ErrNoRows {
		return types.Profile{}, fmt.Errorf("profile %s not found", id)
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("get profile %s: %w", id, err)
	}

	p.FurnaceFcLevel = fcLevel.String
	p.LinkedMainProfileID = linked.String
	p.SpendingProfile = types.SpendingProfile(spending)
	p.AllianceRole = types.AllianceRole(role)
	if err := json.Unmarshal([]byte(priorities), &p.Priorities); err != nil {
		return types.Profile{}, fmt.Errorf("decode priorities for %s: %w", id, err)
	}
	return p, nil
}

// =============================================================================
// ROSTER / CHIEF GEAR
// =============================================================================

// SaveOwnedHeroes replaces the full roster for a profile.
func (s *Store) SaveOwnedHeroes(ctx context.Context, profileID string, heroes []types.OwnedHero) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM owned_heroes WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	for i, h := range heroes {
		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("marshal hero %s: %w", h.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO owned_heroes (profile_id, name, data_json, position)
			VALUES (?, ?, ?, ?)`, profileID, h.Name, string(data), i); err != nil {
			return fmt.Errorf("insert hero %s: %w", h.Name, err)
		}
	}
	return tx.Commit()
}

// GetOwnedHeroes loads a profile's roster in insertion order.
func (s *Store) GetOwnedHeroes(ctx context.Context, profileID string) ([]types.OwnedHero, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT data_json FROM owned_heroes WHERE profile_id = ? ORDER BY position`, profileID)
	if err != nil {
		return nil, fmt.Errorf("get roster for %s: %w", profileID, err)
	}
	defer rows.Close()

	var heroes []types.OwnedHero
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var h types.OwnedHero
		if err := json.Unmarshal([]byte(data), &h); err != nil {
			return nil, fmt.Errorf("decode hero: %w", err)
		}
		heroes = append(heroes, h)
	}
	return heroes, rows.Err()
}

// SaveChiefGear upserts a profile's chief gear snapshot.
func (s *Store) SaveChiefGear(ctx context.Context, profileID string, gear types.ChiefGear) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(gear)
	if err != nil {
		return fmt.Errorf("marshal chief gear: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chief_gear (profile_id, data_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			data_json = excluded.data_json,
			updated_at = excluded.updated_at`,
		profileID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save chief gear for %s: %w", profileID, err)
	}
	return nil
}

// GetChiefGear loads a profile's chief gear. A missing row returns the
// zero value: no gear recorded yet.
func (s *Store) GetChiefGear(ctx context.Context, profileID string) (types.ChiefGear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data_json FROM chief_gear WHERE profile_id = ?`, profileID).Scan(&data)
	if err == sql.ErrNoRows {
		return types.ChiefGear{}, nil
	}
	if err != nil {
		return types.ChiefGear{}, fmt.Errorf("get chief gear for %s: %w", profileID, err)
	}

	var gear types.ChiefGear
	if err := json.Unmarshal([]byte(data), &gear); err != nil {
		return types.ChiefGear{}, fmt.Errorf("decode chief gear: %w", err)
	}
	return gear, nil
}
