// Package reconcile holds the client's copy of server-authoritative state.
//
// Every state-bearing response is applied as a unit: PlayerState and
// SectorView are swapped wholesale under one lock, so readers never see
// fields from two different responses. Logs are the exception; they
// accumulate, newest first, and are never dropped here.
package reconcile

import (
	"sync"

	"github.com/mcoot/sovereign-client/internal/model"
)

// DefaultDisplayLimit is how many log lines a front-end shows by default
const DefaultDisplayLimit = 50

// Applied reports what a single Apply changed
type Applied struct {
	State    *model.PlayerState `json:"state,omitempty"`
	Sector   *model.SectorView  `json:"sector,omitempty"`
	Appended []model.LogEntry   `json:"appended"`
}

// View is the reconciled client state
type View struct {
	mu      sync.RWMutex
	state   *model.PlayerState
	sector  *model.SectorView
	logs    []model.LogEntry
	seen    map[string]struct{}
	message string
}

// New creates an empty View
func New() *View {
	return &View{seen: make(map[string]struct{})}
}

// Apply merges a command response. Present state and sector replace the held
// values, absent ones leave them alone. Log entries not already held are
// prepended in the order the server sent them (most recent first).
func (v *View) Apply(snap model.Snapshot) Applied {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.apply(snap)
}

// ApplyCommand applies a command response and records its message
func (v *View) ApplyCommand(resp model.CommandResponse) Applied {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = resp.Message
	return v.apply(resp.Snapshot)
}

// apply must be called with mu held
func (v *View) apply(snap model.Snapshot) Applied {
	applied := v.replaceEntities(snap)

	var fresh []model.LogEntry
	for _, entry := range snap.Logs {
		key := entry.Key()
		if _, ok := v.seen[key]; ok {
			continue
		}
		v.seen[key] = struct{}{}
		fresh = append(fresh, entry)
	}
	if len(fresh) > 0 {
		logs := make([]model.LogEntry, 0, len(fresh)+len(v.logs))
		logs = append(logs, fresh...)
		v.logs = append(logs, v.logs...)
	}
	applied.Appended = fresh
	return applied
}

// Refresh applies a full state fetch. A present log list replaces the held
// log rather than being merged into it.
func (v *View) Refresh(snap model.Snapshot) Applied {
	v.mu.Lock()
	defer v.mu.Unlock()

	applied := v.replaceEntities(snap)
	if snap.Logs != nil {
		v.logs = append([]model.LogEntry(nil), snap.Logs...)
		v.seen = make(map[string]struct{}, len(snap.Logs))
		for _, entry := range snap.Logs {
			v.seen[entry.Key()] = struct{}{}
		}
		applied.Appended = append([]model.LogEntry(nil), snap.Logs...)
	}
	return applied
}

// replaceEntities must be called with mu held
func (v *View) replaceEntities(snap model.Snapshot) Applied {
	var applied Applied
	if snap.State != nil {
		state := *snap.State
		v.state = &state
		applied.State = copyState(v.state)
	}
	if snap.Sector != nil {
		v.sector = copySector(snap.Sector)
		applied.Sector = copySector(v.sector)
	}
	return applied
}

// Reset discards everything held
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = nil
	v.sector = nil
	v.logs = nil
	v.seen = make(map[string]struct{})
	v.message = ""
}

// State returns a copy of the held PlayerState
func (v *View) State() (model.PlayerState, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.state == nil {
		return model.PlayerState{}, false
	}
	return *v.state, true
}

// Sector returns a copy of the held SectorView
func (v *View) Sector() (model.SectorView, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.sector == nil {
		return model.SectorView{}, false
	}
	return *copySector(v.sector), true
}

// Logs returns the whole held log, most recent first
func (v *View) Logs() []model.LogEntry {
	return v.RecentLogs(0)
}

// RecentLogs returns at most n entries, most recent first. n <= 0 means all.
func (v *View) RecentLogs(n int) []model.LogEntry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if n <= 0 || n > len(v.logs) {
		n = len(v.logs)
	}
	return append([]model.LogEntry(nil), v.logs[:n]...)
}

// LastMessage is the message of the last applied command response
func (v *View) LastMessage() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.message
}

// Snapshot returns a consistent copy of everything held
func (v *View) Snapshot() model.Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return model.Snapshot{
		State:  copyState(v.state),
		Sector: copySector(v.sector),
		Logs:   append([]model.LogEntry(nil), v.logs...),
	}
}

func copyState(s *model.PlayerState) *model.PlayerState {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func copySector(s *model.SectorView) *model.SectorView {
	if s == nil {
		return nil
	}
	c := *s
	c.Warps = append([]int(nil), s.Warps...)
	if s.Port != nil {
		p := *s.Port
		c.Port = &p
	}
	if s.Planet != nil {
		p := *s.Planet
		c.Planet = &p
	}
	if s.Event != nil {
		e := *s.Event
		c.Event = &e
	}
	return &c
}
