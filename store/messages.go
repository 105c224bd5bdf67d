package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// LatestPerUser returns one summary per distinct user_id, most recently
// active conversation first. The window function ranks each user's messages
// by created_at then id, so every projected field comes from the single
// winning row and ties resolve to the highest id.
func (s *Store) LatestPerUser(ctx context.Context) ([]ConversationSummary, error) {
	const query = `
        SELECT user_id, message, direction, created_at
        FROM (
            SELECT user_id, message, direction, created_at,
                   ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY created_at DESC, id DESC) AS rn
            FROM messages
        ) latest
        WHERE rn = 1
        ORDER BY created_at DESC, user_id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("list conversations", err)
	}
	defer rows.Close()

	summaries := make([]ConversationSummary, 0)
	for rows.Next() {
		var sum ConversationSummary
		if err := rows.Scan(&sum.UserID, &sum.LastMessage, &sum.LastDirection, &sum.LastMessageTime); err != nil {
			return nil, classify("list conversations", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list conversations", err)
	}
	return summaries, nil
}

// MessagesForUser returns the full thread for one user in reading order,
// oldest first. A user with no messages yields an empty slice.
func (s *Store) MessagesForUser(ctx context.Context, userID string) ([]Message, error) {
	const query = `
        SELECT id, user_id, direction, message, created_at
        FROM messages
        WHERE user_id = ?
        ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, classify("load thread", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// SearchMessages returns the newest messages whose text contains the query
// as a literal case-insensitive substring, at most limit rows. LIKE
// wildcards in the query are escaped so they match themselves.
func (s *Store) SearchMessages(ctx context.Context, query string, limit int) ([]Message, error) {
	const stmt = `
        SELECT id, user_id, direction, message, created_at
        FROM messages
        WHERE LOWER(message) LIKE LOWER(?) ESCAPE '\\'
        ORDER BY created_at DESC, id DESC
        LIMIT ?`

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, stmt, pattern, limit)
	if err != nil {
		return nil, classify("search messages", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Totals computes the five scalar aggregates in one round trip. The
// [dayStart, dayEnd) window selects today's messages.
func (s *Store) Totals(ctx context.Context, dayStart, dayEnd time.Time) (Stats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(DISTINCT user_id),
               COALESCE(SUM(direction = 'in'), 0),
               COALESCE(SUM(direction = 'out'), 0),
               COALESCE(SUM(created_at >= ? AND created_at < ?), 0)
        FROM messages`

	var stats Stats
	err := s.db.QueryRowContext(ctx, query, dayStart, dayEnd).Scan(
		&stats.TotalMessages,
		&stats.TotalUsers,
		&stats.IncomingMessages,
		&stats.OutgoingMessages,
		&stats.TodayMessages,
	)
	if err != nil {
		return Stats{}, classify("compute stats", err)
	}
	return stats, nil
}

// DailyCounts groups messages in [start, end) by calendar day. Only days
// with at least one message produce a row.
func (s *Store) DailyCounts(ctx context.Context, start, end time.Time) ([]DayCount, error) {
	const query = `
        SELECT DATE_FORMAT(created_at, '%Y-%m-%d'),
               COUNT(*),
               COALESCE(SUM(direction = 'in'), 0),
               COALESCE(SUM(direction = 'out'), 0)
        FROM messages
        WHERE created_at >= ? AND created_at < ?
        GROUP BY DATE_FORMAT(created_at, '%Y-%m-%d')
        ORDER BY 1 ASC`

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, classify("compute daily counts", err)
	}
	defer rows.Close()

	counts := make([]DayCount, 0)
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count, &dc.Incoming, &dc.Outgoing); err != nil {
			return nil, classify("compute daily counts", err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("compute daily counts", err)
	}
	return counts, nil
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	messages := make([]Message, 0)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Direction, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, classify("scan message", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("scan message", err)
	}
	return messages, nil
}

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
