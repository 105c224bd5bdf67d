package store

import "time"

// Direction values stored in the messages table.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Message is one row of the append-only message log.
type Message struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Direction string    `json:"direction"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationSummary is the most recent message of one user's conversation.
// All fields come from the same winning row.
type ConversationSummary struct {
	UserID          string    `json:"user_id"`
	LastMessage     string    `json:"last_message"`
	LastDirection   string    `json:"last_direction"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// Stats is a point-in-time aggregate over the whole log.
type Stats struct {
	TotalMessages    int64 `json:"totalMessages"`
	TotalUsers       int64 `json:"totalUsers"`
	IncomingMessages int64 `json:"incomingMessages"`
	OutgoingMessages int64 `json:"outgoingMessages"`
	TodayMessages    int64 `json:"todayMessages"`
}

// DayCount is one day's message totals as grouped by the store. Days with no
// messages produce no row; the engine fills the gaps.
type DayCount struct {
	Day      string
	Count    int64
	Incoming int64
	Outgoing int64
}
