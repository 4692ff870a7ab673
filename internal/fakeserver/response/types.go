package response

import "github.com/mcoot/sovereign-client/internal/model"

// OK is the bare success acknowledgment
type OK struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// TokenOnly is the minimal register response
type TokenOnly struct {
	Token string `json:"token"`
}

// Health reports the server identity
type Health struct {
	OK      bool   `json:"ok"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// AnsiMap carries the pre-rendered galaxy map
type AnsiMap struct {
	Map string `json:"map"`
}

// MessageList is the inbox and sent listing
type MessageList struct {
	Messages []model.Message `json:"messages"`
}

// UnreadCount is the server-computed unread inbox count
type UnreadCount struct {
	Unread int `json:"unread"`
}

// MarkRead reports how many messages changed state
type MarkRead struct {
	OK      bool `json:"ok"`
	Updated int  `json:"updated"`
}

// Sent acknowledges a delivered message
type Sent struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
