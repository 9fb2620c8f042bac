package session

import (
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session: not found")

// DefaultPlayer names sessions created without a player.
const DefaultPlayer = "anonymous"

// listenerBuffer is the number of snapshots queued per subscriber.
const listenerBuffer = 16

// Recorder persists finished games. *storage.Store satisfies it.
type Recorder interface {
	SaveResult(storage.Result) (int64, error)
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID        string       `json:"id"`
	Player    string       `json:"player"`
	Grid      t2048.Grid   `json:"grid"`
	Score     int          `json:"score"`
	Won       bool         `json:"won"`
	Over      bool         `json:"over"`
	Status    t2048.Status `json:"status"`
	Moves     int          `json:"moves"`
	MaxTile   int          `json:"max_tile"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type entry struct {
	id        string
	player    string
	state     t2048.GameState
	rnd       t2048.RandomSource
	moves     int
	recorded  bool
	createdAt time.Time
	updatedAt time.Time
	listeners map[int]chan Snapshot
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		ID:        e.id,
		Player:    e.player,
		Grid:      e.state.Grid,
		Score:     e.state.Score,
		Won:       e.state.Won,
		Over:      e.state.Over,
		Status:    e.state.Status(),
		Moves:     e.moves,
		MaxTile:   t2048.MaxTile(e.state.Grid),
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
}

func (e *entry) result(now time.Time) storage.Result {
	return storage.Result{
		SessionID: e.id,
		Player:    e.player,
		Score:     e.state.Score,
		MaxTile:   t2048.MaxTile(e.state.Grid),
		Won:       e.state.Won,
		Moves:     e.moves,
		CreatedAt: now,
	}
}

// publish delivers snap to every listener, dropping it for full buffers.
func (e *entry) publish(snap Snapshot) {
	for _, ch := range e.listeners {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Manager owns all live sessions.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*entry
	created   int64
	nextSub   int
	newSource func(n int64) t2048.RandomSource
	recorder  Recorder
	logger    *log.Logger
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithSeed makes games reproducible: the n-th session created uses seed+n.
func WithSeed(seed int64) Option {
	return func(m *Manager) {
		m.newSource = func(n int64) t2048.RandomSource {
			return t2048.SeededSource(seed + n)
		}
	}
}

// WithRecorder stores finished games.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions:  make(map[string]*entry),
		newSource: func(int64) t2048.RandomSource { return t2048.DefaultSource() },
		logger:    log.New(io.Discard),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new game for player.
func (m *Manager) Create(player string) Snapshot {
	if player == "" {
		player = DefaultPlayer
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	rnd := m.newSource(m.created)
	m.created++

	e := &entry{
		id:        uuid.NewString(),
		player:    player,
		state:     t2048.NewGame(rnd),
		rnd:       rnd,
		createdAt: now,
		updatedAt: now,
		listeners: make(map[int]chan Snapshot),
	}
	m.sessions[e.id] = e

	m.logger.Debug("session created", "id", e.id, "player", player)
	return e.snapshot()
}

// Get returns the current snapshot of a session.
func (m *Manager) Get(id string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.sessions[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return e.snapshot(), nil
}

// List returns all sessions ordered by creation time.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, e.snapshot())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Move applies dir to a session. The bool reports whether the grid changed;
// rejected moves (including any move on a finished game) leave the session untouched.
func (m *Manager) Move(id string, dir t2048.Direction) (Snapshot, bool, error) {
	m.mu.Lock()

	e, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return Snapshot{}, false, ErrNotFound
	}

	next := t2048.Move(e.state, dir, e.rnd)
	if next == e.state {
		snap := e.snapshot()
		m.mu.Unlock()
		return snap, false, nil
	}

	now := m.now()
	e.state = next
	e.moves++
	e.updatedAt = now

	var pending *storage.Result
	if next.Over && !e.recorded {
		e.recorded = true
		r := e.result(now)
		pending = &r
	}

	snap := e.snapshot()
	e.publish(snap)
	m.mu.Unlock()

	if next.Over {
		m.logger.Info("game over", "id", id, "player", e.player, "score", snap.Score, "max_tile", snap.MaxTile)
	}
	m.record(pending)
	return snap, true, nil
}

// Restart replaces a session's game with a fresh one, keeping its ID.
func (m *Manager) Restart(id string) (Snapshot, error) {
	m.mu.Lock()

	e, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return Snapshot{}, ErrNotFound
	}

	now := m.now()
	pending := m.abandon(e, now)

	e.state = t2048.NewGame(e.rnd)
	e.moves = 0
	e.recorded = false
	e.updatedAt = now

	snap := e.snapshot()
	e.publish(snap)
	m.mu.Unlock()

	m.logger.Debug("session restarted", "id", id)
	m.record(pending)
	return snap, nil
}

// Delete removes a session and closes its subscriptions.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()

	e, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}

	pending := m.abandon(e, m.now())
	delete(m.sessions, id)
	for sub, ch := range e.listeners {
		close(ch)
		delete(e.listeners, sub)
	}
	m.mu.Unlock()

	m.logger.Debug("session deleted", "id", id)
	m.record(pending)
	return nil
}

// Subscribe streams snapshots of a session. The current snapshot is queued
// first; later updates are dropped for a listener whose buffer is full.
// The channel is closed by cancel or when the session is deleted.
func (m *Manager) Subscribe(id string) (<-chan Snapshot, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, nil, ErrNotFound
	}

	sub := m.nextSub
	m.nextSub++
	ch := make(chan Snapshot, listenerBuffer)
	ch <- e.snapshot()
	e.listeners[sub] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := e.listeners[sub]; ok {
				close(c)
				delete(e.listeners, sub)
			}
		})
	}
	return ch, cancel, nil
}

// abandon marks an unfinished scoring game as recorded and returns its result.
// Callers hold m.mu.
func (m *Manager) abandon(e *entry, now time.Time) *storage.Result {
	if e.recorded || e.state.Score == 0 {
		return nil
	}
	e.recorded = true
	r := e.result(now)
	return &r
}

func (m *Manager) record(r *storage.Result) {
	if r == nil || m.recorder == nil {
		return
	}
	if _, err := m.recorder.SaveResult(*r); err != nil {
		m.logger.Error("failed to record result", "id", r.SessionID, "err", err)
	}
}
