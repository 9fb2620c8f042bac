package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/tui-2048/internal/storage"
)

func TestScoreboardEmpty(t *testing.T) {
	s := NewScoreboard()
	s.Load(nil)

	assert.Equal(t, 0, s.Len())
	assert.Contains(t, s.View(), "No scores recorded yet.")
}

func TestScoreboardRows(t *testing.T) {
	when := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{top: []storage.Result{
		{Player: "carol", Score: 2400, MaxTile: 256, CreatedAt: when},
		{Player: "a-very-long-player-name", Score: 800, MaxTile: 64, CreatedAt: when},
	}}

	s := NewScoreboard()
	s.Load(store)

	assert.Equal(t, 2, s.Len())
	view := s.View()
	assert.Contains(t, view, "HIGH SCORES")
	assert.Contains(t, view, "carol")
	assert.Contains(t, view, "2400")
	assert.Contains(t, view, "a-very-long-p.")
}

func TestScoreboardError(t *testing.T) {
	s := NewScoreboard()
	s.Load(&fakeStore{topErr: errors.New("database is locked")})

	assert.Equal(t, 0, s.Len())
	assert.Contains(t, s.View(), "Could not load scores")
	assert.Contains(t, s.View(), "database is locked")
}

func TestScoreboardReload(t *testing.T) {
	store := &fakeStore{top: []storage.Result{{Player: "dave", Score: 10}}}
	s := NewScoreboard()
	s.Load(store)
	assert.Equal(t, 1, s.Len())

	store.top = nil
	s.Load(store)
	assert.Equal(t, 0, s.Len())
	assert.Contains(t, s.View(), "No scores recorded yet.")
}
