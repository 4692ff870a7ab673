package model

import "time"

// LogEntry is one line of the pilot's activity log
type LogEntry struct {
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}

// Key identifies an entry for de-duplication across responses
func (l LogEntry) Key() string {
	return l.At.UTC().Format(time.RFC3339Nano) + "|" + l.Kind + "|" + l.Message
}

// Snapshot is the state-bearing part of a server response. Nil fields were
// absent from the response.
type Snapshot struct {
	State  *PlayerState `json:"state,omitempty"`
	Sector *SectorView  `json:"sector,omitempty"`
	Logs   []LogEntry   `json:"logs,omitempty"`
}

// CommandResponse is the body returned by the command endpoint
type CommandResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Snapshot
}

// AuthResponse is the body returned by login and register
type AuthResponse struct {
	Token string `json:"token"`
	Snapshot
}
