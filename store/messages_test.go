package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Store{db: db}, mock
}

func TestLatestPerUser(t *testing.T) {
	s, mock := newTestStore(t)

	first := time.Date(2024, 3, 10, 10, 5, 0, 0, time.UTC)
	second := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ROW_NUMBER\(\) OVER \(PARTITION BY user_id ORDER BY created_at DESC, id DESC\)`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "message", "direction", "created_at"}).
			AddRow("alice", "hello", "out", first).
			AddRow("bob", "hi", "in", second))

	summaries, err := s.LatestPerUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, []ConversationSummary{
		{UserID: "alice", LastMessage: "hello", LastDirection: "out", LastMessageTime: first},
		{UserID: "bob", LastMessage: "hi", LastDirection: "in", LastMessageTime: second},
	}, summaries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestPerUserEmptyStore(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`WHERE rn = 1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "message", "direction", "created_at"}))

	summaries, err := s.LatestPerUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summaries)
	require.Empty(t, summaries)
}

func TestMessagesForUser(t *testing.T) {
	s, mock := newTestStore(t)

	early := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	late := time.Date(2024, 3, 10, 10, 5, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY created_at ASC, id ASC`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "direction", "message", "created_at"}).
			AddRow(int64(1), "alice", "in", "hi", early).
			AddRow(int64(2), "alice", "out", "hello", late))

	messages, err := s.MessagesForUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "hi", messages[0].Message)
	require.Equal(t, "hello", messages[1].Message)
	require.True(t, !messages[1].CreatedAt.Before(messages[0].CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessagesForUserUnknown(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`WHERE user_id = \?`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "direction", "message", "created_at"}))

	messages, err := s.MessagesForUser(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, messages)
	require.Empty(t, messages)
}

func TestSearchMessages(t *testing.T) {
	s, mock := newTestStore(t)

	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC\s+LIMIT \?`).
		WithArgs("%hello%", 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "direction", "message", "created_at"}).
			AddRow(int64(3), "alice", "out", "hello there", created))

	messages, err := s.SearchMessages(context.Background(), "hello", 100)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Contains(t, messages[0].Message, "hello")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchMessagesEscapesWildcards(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`LIKE LOWER\(\?\) ESCAPE`).
		WithArgs(`%50\%\_off\\%`, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "direction", "message", "created_at"}))

	_, err := s.SearchMessages(context.Background(), `50%_off\`, 100)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTotals(t *testing.T) {
	s, mock := newTestStore(t)

	dayStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	mock.ExpectQuery(`COUNT\(DISTINCT user_id\)`).
		WithArgs(dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows([]string{"total", "users", "incoming", "outgoing", "today"}).
			AddRow(int64(4), int64(2), int64(3), int64(1), int64(2)))

	stats, err := s.Totals(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Equal(t, Stats{
		TotalMessages:    4,
		TotalUsers:       2,
		IncomingMessages: 3,
		OutgoingMessages: 1,
		TodayMessages:    2,
	}, stats)
	require.Equal(t, stats.TotalMessages, stats.IncomingMessages+stats.OutgoingMessages)
}

func TestTotalsEmptyStore(t *testing.T) {
	s, mock := newTestStore(t)

	dayStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	mock.ExpectQuery(`COALESCE`).
		WithArgs(dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows([]string{"total", "users", "incoming", "outgoing", "today"}).
			AddRow(int64(0), int64(0), int64(0), int64(0), int64(0)))

	stats, err := s.Totals(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Equal(t, Stats{}, stats)
}

func TestDailyCounts(t *testing.T) {
	s, mock := newTestStore(t)

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`GROUP BY DATE_FORMAT\(created_at, '%Y-%m-%d'\)`).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count", "incoming", "outgoing"}).
			AddRow("2024-03-04", int64(3), int64(2), int64(1)).
			AddRow("2024-03-10", int64(5), int64(1), int64(4)))

	counts, err := s.DailyCounts(context.Background(), start, end)
	require.NoError(t, err)
	require.Equal(t, []DayCount{
		{Day: "2024-03-04", Count: 3, Incoming: 2, Outgoing: 1},
		{Day: "2024-03-10", Count: 5, Incoming: 1, Outgoing: 4},
	}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"percent", "100%", `100\%`},
		{"underscore", "a_b", `a\_b`},
		{"backslash", `a\b`, `a\\b`},
		{"mixed", `%_\`, `\%\_\\`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, escapeLike(tc.in))
		})
	}
}
