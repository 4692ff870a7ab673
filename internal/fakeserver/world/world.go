// Package world is the in-memory game state behind the reference server.
// It owns players, sectors, logs and direct messages and decides every
// game outcome; the client never computes any of this itself.
package world

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/sovereign-client/internal/dependencies/clock"
	"github.com/mcoot/sovereign-client/internal/dependencies/random"
	"github.com/mcoot/sovereign-client/internal/model"
)

// Errors
var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrPlayerExists    = errors.New("player already exists")
	ErrMessageNotFound = errors.New("message not found")
	ErrSectorNotFound  = errors.New("sector not found")
)

// RecentLogLimit is how many log entries each response carries
const RecentLogLimit = 20

// Config controls universe generation and starting values
type Config struct {
	Sectors         int
	StartingCredits int64
	StartingTurns   int
	CargoMax        int
	SeasonName      string
}

// DefaultConfig returns the standard starting universe
func DefaultConfig() Config {
	return Config{
		Sectors:         12,
		StartingCredits: 1000,
		StartingTurns:   100,
		CargoMax:        50,
		SeasonName:      "Genesis",
	}
}

// World is safe for concurrent use; every operation runs under one lock
// so each response is a consistent snapshot.
type World struct {
	clock  clock.Clock
	random random.Random
	cfg    Config

	mu         sync.Mutex
	players    map[string]*model.PlayerState
	byUsername map[string]string
	sectors    map[int]*sector
	logs       map[string][]model.LogEntry
	corps      map[string]*corp

	messages      []*storedMessage
	nextMessageID int64
	nextAttachID  int64
}

// New creates a World and generates its universe
func New(clk clock.Clock, rnd random.Random, cfg Config) *World {
	def := DefaultConfig()
	if cfg.Sectors < 3 {
		cfg.Sectors = def.Sectors
	}
	if cfg.StartingCredits == 0 {
		cfg.StartingCredits = def.StartingCredits
	}
	if cfg.StartingTurns == 0 {
		cfg.StartingTurns = def.StartingTurns
	}
	if cfg.CargoMax == 0 {
		cfg.CargoMax = def.CargoMax
	}
	if cfg.SeasonName == "" {
		cfg.SeasonName = def.SeasonName
	}

	w := &World{
		clock:         clk,
		random:        rnd,
		cfg:           cfg,
		players:       make(map[string]*model.PlayerState),
		byUsername:    make(map[string]string),
		logs:          make(map[string][]model.LogEntry),
		corps:         make(map[string]*corp),
		nextMessageID: 1,
		nextAttachID:  1,
	}
	w.sectors = generateUniverse(rnd, cfg.Sectors)
	return w
}

// AddPlayer creates the pilot for a freshly registered account
func (w *World) AddPlayer(playerID, userID, username string) (model.PlayerState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.players[playerID]; exists {
		return model.PlayerState{}, ErrPlayerExists
	}

	p := &model.PlayerState{
		ID:          playerID,
		UserID:      userID,
		Username:    username,
		Level:       1,
		NextLevelXP: xpForLevel(2),
		Rank:        rankForLevel(1),
		Credits:     w.cfg.StartingCredits,
		Turns:       w.cfg.StartingTurns,
		TurnsMax:    w.cfg.StartingTurns,
		SectorID:    1,
		CargoMax:    w.cfg.CargoMax,
		SeasonID:    1,
		SeasonName:  w.cfg.SeasonName,
	}
	w.players[playerID] = p
	w.byUsername[strings.ToLower(username)] = playerID
	w.addLog(playerID, "SYSTEM", "Welcome aboard, "+username+". You start in sector 1.")
	return *p, nil
}

// SetAdmin mirrors the account's admin flag onto the pilot
func (w *World) SetAdmin(playerID string, admin bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.IsAdmin = admin
	return nil
}

// SetMustChangePassword mirrors the account's forced-change flag
func (w *World) SetMustChangePassword(playerID string, must bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.MustChangePassword = must
	return nil
}

// Snapshot returns the pilot's state, current sector and recent logs
func (w *World) Snapshot(playerID string) (model.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[playerID]
	if !ok {
		return model.Snapshot{}, ErrPlayerNotFound
	}
	return w.snapshot(p), nil
}

// snapshot must be called with mu held
func (w *World) snapshot(p *model.PlayerState) model.Snapshot {
	state := *p
	snap := model.Snapshot{
		State: &state,
		Logs:  w.recentLogs(p.ID, RecentLogLimit),
	}
	if s, ok := w.sectors[p.SectorID]; ok {
		view := s.view(w.clock.Now())
		snap.Sector = &view
	}
	return snap
}

// SetSectorEvent places an event in a sector (admin and test hook)
func (w *World) SetSectorEvent(sectorID int, ev *model.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sectors[sectorID]
	if !ok {
		return ErrSectorNotFound
	}
	if ev != nil {
		ev.SectorID = sectorID
	}
	s.event = ev
	return nil
}

// RenderMap draws the warp graph as plain text lines
func (w *World) RenderMap() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]int, 0, len(w.sectors))
	for id := range w.sectors {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		s := w.sectors[id]
		b.WriteString(s.mapLine())
		b.WriteByte('\n')
	}
	return b.String()
}

func (w *World) addLog(playerID, kind, msg string) {
	if msg == "" {
		return
	}
	w.logs[playerID] = append(w.logs[playerID], model.LogEntry{
		At:      w.clock.Now(),
		Kind:    kind,
		Message: msg,
	})
}

// recentLogs returns up to limit entries, most recent first
func (w *World) recentLogs(playerID string, limit int) []model.LogEntry {
	all := w.logs[playerID]
	out := make([]model.LogEntry, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out
}

func (w *World) playerByUsername(username string) (*model.PlayerState, bool) {
	id, ok := w.byUsername[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, false
	}
	p, ok := w.players[id]
	return p, ok
}

// SyncAccount copies the account flags the auth service owns onto the pilot
func (w *World) SyncAccount(playerID string, admin, mustChangePassword bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.IsAdmin = admin
	p.MustChangePassword = mustChangePassword
	return nil
}
