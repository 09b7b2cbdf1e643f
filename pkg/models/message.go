package models

import "time"

// Message types for WebSocket communication
const (
	MessageTypeAnnouncement = "announcement"
	MessageTypeSubscribe    = "subscribe"
	MessageTypeUnsubscribe  = "unsubscribe"
	MessageTypeHeartbeat    = "heartbeat"
	MessageTypeError        = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// AnnouncementUpdate is the broadcast payload for one announcement
type AnnouncementUpdate struct {
	LeagueKey    string       `json:"league_key"`
	Text         string       `json:"text"`
	Announcement Announcement `json:"announcement"`
}

// SubscriptionFilter represents client subscription preferences
type SubscriptionFilter struct {
	Games []string `json:"games,omitempty"` // Filter by game IDs
	Kinds []string `json:"kinds,omitempty"` // Filter by announcement kind
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	ClientID         string    `json:"client_id"`
	ConnectedAt      time.Time `json:"connected_at"`
	MessagesSent     int64     `json:"messages_sent"`
	MessagesReceived int64     `json:"messages_received"`
	LastMessageAt    time.Time `json:"last_message_at"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
