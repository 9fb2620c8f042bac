package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/storage"
)

type fakeRecorder struct {
	mu      sync.Mutex
	results []storage.Result
	err     error
}

func (f *fakeRecorder) SaveResult(r storage.Result) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.results = append(f.results, r)
	return int64(len(f.results)), nil
}

func (f *fakeRecorder) saved() []storage.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.Result(nil), f.results...)
}

// sequence returns a source that cycles through vals.
func sequence(vals ...float64) t2048.RandomSource {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

// setState replaces a session's game, bypassing the rules.
func setState(t *testing.T, m *Manager, id string, s t2048.GameState) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	require.True(t, ok)
	e.state = s
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at = at.Add(time.Second)
		return at
	}
}

// nearlyLocked moves right into a locked board when the spawn lands a 4 at (0,0).
var nearlyLocked = t2048.Grid{
	{2, 4, 8, 0},
	{8, 16, 32, 64},
	{16, 32, 64, 128},
	{32, 64, 128, 256},
}

func TestCreate(t *testing.T) {
	m := NewManager(WithClock(fixedClock()))

	snap := m.Create("alice")
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "alice", snap.Player)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.Moves)
	assert.Equal(t, t2048.StatusPlaying, snap.Status)
	assert.Len(t, t2048.EmptyCells(snap.Grid), t2048.Size*t2048.Size-2)
	assert.Equal(t, snap.CreatedAt, snap.UpdatedAt)

	anon := m.Create("")
	assert.Equal(t, DefaultPlayer, anon.Player)
	assert.NotEqual(t, snap.ID, anon.ID)
	assert.Equal(t, 2, m.Count())
}

func TestGetUnknown(t *testing.T) {
	m := NewManager()
	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = m.Move("missing", t2048.DirLeft)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Restart("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.Delete("missing"), ErrNotFound)

	_, _, err = m.Subscribe("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrderedByCreation(t *testing.T) {
	m := NewManager(WithClock(fixedClock()))
	first := m.Create("a")
	second := m.Create("b")
	third := m.Create("c")

	list := m.List()
	require.Len(t, list, 3)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, third.ID, list[2].ID)
}

func TestSeededSessionsAreReproducible(t *testing.T) {
	a := NewManager(WithSeed(7))
	b := NewManager(WithSeed(7))

	sa := a.Create("x")
	sb := b.Create("y")
	assert.Equal(t, sa.Grid, sb.Grid)

	for _, dir := range []t2048.Direction{t2048.DirLeft, t2048.DirUp, t2048.DirRight, t2048.DirDown} {
		na, movedA, err := a.Move(sa.ID, dir)
		require.NoError(t, err)
		nb, movedB, err := b.Move(sb.ID, dir)
		require.NoError(t, err)
		assert.Equal(t, movedA, movedB)
		assert.Equal(t, na.Grid, nb.Grid)
	}
}

func TestMoveAcceptedAndRejected(t *testing.T) {
	m := NewManager(WithClock(fixedClock()))
	snap := m.Create("p")
	m.sessions[snap.ID].rnd = sequence(0.0, 0.05)

	setState(t, m, snap.ID, t2048.GameState{Grid: t2048.Grid{{2, 4, 8, 16}}})

	rejected, moved, err := m.Move(snap.ID, t2048.DirLeft)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 0, rejected.Moves)
	assert.Equal(t, snap.UpdatedAt, rejected.UpdatedAt)

	accepted, moved, err := m.Move(snap.ID, t2048.DirDown)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 1, accepted.Moves)
	assert.True(t, accepted.UpdatedAt.After(snap.UpdatedAt))
	assert.Equal(t, [t2048.Size]int{2, 4, 8, 16}, accepted.Grid[3])
	assert.Equal(t, 2, accepted.Grid[0][0])
}

func TestGameOverRecordedOnce(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewManager(WithRecorder(rec))
	snap := m.Create("bob")
	m.sessions[snap.ID].rnd = sequence(0.0, 0.95)
	setState(t, m, snap.ID, t2048.GameState{Grid: nearlyLocked, Score: 500})

	over, moved, err := m.Move(snap.ID, t2048.DirRight)
	require.NoError(t, err)
	require.True(t, moved)
	assert.True(t, over.Over)
	assert.Equal(t, t2048.StatusOver, over.Status)

	_, moved, err = m.Move(snap.ID, t2048.DirLeft)
	require.NoError(t, err)
	assert.False(t, moved)

	require.NoError(t, m.Delete(snap.ID))

	saved := rec.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, snap.ID, saved[0].SessionID)
	assert.Equal(t, "bob", saved[0].Player)
	assert.Equal(t, 500, saved[0].Score)
	assert.Equal(t, 256, saved[0].MaxTile)
	assert.Equal(t, 1, saved[0].Moves)
	assert.False(t, saved[0].Won)
}

func TestRestartRecordsUnfinishedGame(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewManager(WithRecorder(rec))
	snap := m.Create("carol")
	setState(t, m, snap.ID, t2048.GameState{Grid: t2048.Grid{{2048}}, Score: 20000, Won: true})

	fresh, err := m.Restart(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, fresh.ID)
	assert.Equal(t, 0, fresh.Score)
	assert.Equal(t, 0, fresh.Moves)
	assert.False(t, fresh.Won)

	saved := rec.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, 20000, saved[0].Score)
	assert.True(t, saved[0].Won)

	// A fresh game with no score is not recorded.
	_, err = m.Restart(snap.ID)
	require.NoError(t, err)
	require.NoError(t, m.Delete(snap.ID))
	assert.Len(t, rec.saved(), 1)
}

func TestRecorderErrorIsNotReturned(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	m := NewManager(WithRecorder(rec))
	snap := m.Create("d")
	setState(t, m, snap.ID, t2048.GameState{Grid: t2048.Grid{{4}}, Score: 4})

	assert.NoError(t, m.Delete(snap.ID))
}

func TestSubscribe(t *testing.T) {
	m := NewManager()
	snap := m.Create("e")
	m.sessions[snap.ID].rnd = sequence(0.0, 0.05)
	setState(t, m, snap.ID, t2048.GameState{Grid: t2048.Grid{{2, 2}}})

	updates, cancel, err := m.Subscribe(snap.ID)
	require.NoError(t, err)
	defer cancel()

	first := <-updates
	assert.Equal(t, t2048.Grid{{2, 2}}, first.Grid)

	moved, ok, err := m.Move(snap.ID, t2048.DirLeft)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, moved, <-updates)

	// Rejected moves are not broadcast.
	_, ok, err = m.Move(snap.ID, t2048.DirLeft)
	require.NoError(t, err)
	require.False(t, ok)
	select {
	case s := <-updates:
		t.Fatalf("unexpected update %+v", s)
	default:
	}

	restarted, err := m.Restart(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, restarted, <-updates)
}

func TestSubscribeClosedOnCancelAndDelete(t *testing.T) {
	m := NewManager()
	snap := m.Create("f")

	a, cancelA, err := m.Subscribe(snap.ID)
	require.NoError(t, err)
	b, cancelB, err := m.Subscribe(snap.ID)
	require.NoError(t, err)
	<-a
	<-b

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)

	require.NoError(t, m.Delete(snap.ID))
	_, open = <-b
	assert.False(t, open)
	cancelB()
}

func TestSlowSubscriberDropsUpdates(t *testing.T) {
	m := NewManager()
	snap := m.Create("g")

	updates, cancel, err := m.Subscribe(snap.ID)
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < listenerBuffer*2; i++ {
		_, err := m.Restart(snap.ID)
		require.NoError(t, err)
	}
	assert.Len(t, updates, listenerBuffer)
}

func TestConcurrentMoves(t *testing.T) {
	m := NewManager(WithSeed(1))
	snap := m.Create("h")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(dir t2048.Direction) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, _, err := m.Move(snap.ID, dir); err != nil {
					t.Error(err)
					return
				}
			}
		}(t2048.Directions[i%len(t2048.Directions)])
	}
	wg.Wait()

	final, err := m.Get(snap.ID)
	require.NoError(t, err)
	// Merges conserve mass; each accepted move spawns a 2 or a 4.
	sum := t2048.Sum(final.Grid)
	assert.GreaterOrEqual(t, sum, 4+2*final.Moves)
	assert.LessOrEqual(t, sum, 8+4*final.Moves)
}
