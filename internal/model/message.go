package model

import "time"

// MessageKind classifies a direct message
type MessageKind string

const (
	MessageKindUser      MessageKind = "USER"
	MessageKindSystem    MessageKind = "SYSTEM"
	MessageKindBugReport MessageKind = "BUG_REPORT"
)

// Message is a server-owned direct message
type Message struct {
	ID               int64        `json:"id"`
	Kind             MessageKind  `json:"kind"`
	From             string       `json:"from"`
	To               string       `json:"to"`
	Subject          string       `json:"subject"`
	Body             string       `json:"body"`
	CreatedAt        time.Time    `json:"created_at"`
	ReadAt           *time.Time   `json:"read_at,omitempty"`
	RelatedMessageID *int64       `json:"related_message_id,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
}

// Unread reports whether the message lacks a read timestamp
func (m Message) Unread() bool {
	return m.ReadAt == nil
}

// Attachment is the metadata of a file attached to a message
type Attachment struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
}
