package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"frostadvisor/internal/logging"
	"frostadvisor/internal/types"
)

// ConversationStats aggregates the conversation log for one user, or
// for everyone when the user filter is empty.
type ConversationStats struct {
	Total          int            `json:"total"`
	BySource       map[string]int `json:"by_source"`
	TokensIn       int            `json:"tokens_in"`
	TokensOut      int            `json:"tokens_out"`
	AvgResponseMs  float64        `json:"avg_response_ms"`
	RatedCount     int            `json:"rated_count"`
	AvgRating      float64        `json:"avg_rating"`
	FirstMessageAt time.Time      `json:"first_message_at"`
	LastMessageAt  time.Time      `json:"last_message_at"`
}

// AppendConversation writes one exchange to the log. Records are never
// updated afterward except for the rating column.
func (s *Store) AppendConversation(ctx context.Context, rec types.ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, profile_snapshot, question, answer, source,
			provider, model, tokens_in, tokens_out, response_time_ms, thread_id, created_at, rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.ProfileSnapshot, rec.Question, rec.Answer, string(rec.Source),
		rec.Provider, rec.Model, rec.TokensIn, rec.TokensOut, rec.ResponseTimeMs,
		rec.ThreadID, rec.CreatedAt, rec.Rating)
	if err != nil {
		return fmt.Errorf("append conversation %s: %w", rec.ID, err)
	}
	logging.StoreDebug("logged conversation %s source=%s", rec.ID, rec.Source)
	return nil
}

// RateConversation sets the 1-5 rating on a logged exchange.
func (s *Store) RateConversation(ctx context.Context, id string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %d out of range 1-5", rating)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET rating = ? WHERE id = ?`, rating, id)
	if err != nil {
		return fmt.Errorf("rate conversation %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s not found", id)
	}
	return nil
}

// RecentConversations returns a user's latest exchanges, newest first.
func (s *Store) RecentConversations(ctx context.Context, userID string, limit int) ([]types.ConversationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, profile_snapshot, question, answer, source, provider, model,
			tokens_in, tokens_out, response_time_ms, thread_id, created_at, rating
		FROM conversations WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent conversations for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []types.ConversationRecord
	for rows.Next() {
		var (
			rec      types.ConversationRecord
			source   string
			provider sql.NullString
			model    sql.NullString
			thread   sql.NullString
			rating   sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ProfileSnapshot, &rec.Question,
			&rec.Answer, &source, &provider, &model, &rec.TokensIn, &rec.TokensOut,
			&rec.ResponseTimeMs, &thread, &rec.CreatedAt, &rating); err != nil {
			return nil, err
		}
		rec.Source = types.Source(source)
		rec.Provider = provider.String
		rec.Model = model.String
		rec.ThreadID = thread.String
		if rating.Valid {
			v := int(rating.Int64)
			rec.Rating = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Stats aggregates the conversation log. userID == "" aggregates all
// users.
func (s *Store) Stats(ctx context.Context, userID string) (ConversationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := ""
	args := []interface{}{}
	if userID != "" {
		where = " WHERE user_id = ?"
		args = append(args, userID)
	}

	stats := ConversationStats{BySource: make(map[string]int)}

	var (
		first sql.NullTime
		last  sql.NullTime
		avgMs sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(tokens_in), 0), COALESCE(SUM(tokens_out), 0),
			AVG(response_time_ms), MIN(created_at), MAX(created_at)
		FROM conversations`+where, args...).
		Scan(&stats.Total, &stats.TokensIn, &stats.TokensOut, &avgMs, &first, &last)
	if err != nil {
		return ConversationStats{}, fmt.Errorf("conversation stats: %w", err)
	}
	stats.AvgResponseMs = avgMs.Float64
	stats.FirstMessageAt = first.Time
	stats.LastMessageAt = last.Time

	rows, err := s.db.QueryContext(ctx,
		`SELECT source, COUNT(*) FROM conversations`+where+` GROUP BY source`, args...)
	if err != nil {
		return ConversationStats{}, fmt.Errorf("conversation stats by source: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return ConversationStats{}, err
		}
		stats.BySource[source] = n
	}
	if err := rows.Err(); err != nil {
		return ConversationStats{}, err
	}

	ratingWhere := " WHERE rating IS NOT NULL"
	if where != "" {
		ratingWhere = where + " AND rating IS NOT NULL"
	}
	var avgRating sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(rating), AVG(rating) FROM conversations`+ratingWhere, args...).
		Scan(&stats.RatedCount, &avgRating)
	if err != nil {
		return ConversationStats{}, fmt.Errorf("conversation rating stats: %w", err)
	}
	stats.AvgRating = avgRating.Float64

	return stats, nil
}
