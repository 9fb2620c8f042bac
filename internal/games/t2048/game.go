package t2048

// Status is the coarse state of a game.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won" // reached WinTile, moves still accepted
	StatusOver    Status = "over"
)

// GameState is the whole state of one game. The driver owns it; every
// function in this package returns a fresh value instead of modifying one.
type GameState struct {
	Grid  Grid
	Score int
	Won   bool // sticky once set
	Over  bool // no move changes the grid
}

// Status reports the state-machine position of the game.
func (s GameState) Status() Status {
	switch {
	case s.Over:
		return StatusOver
	case s.Won:
		return StatusWon
	default:
		return StatusPlaying
	}
}

// NewGame starts a game with two tiles on an empty grid.
// A nil source falls back to DefaultSource.
func NewGame(rnd RandomSource) GameState {
	if rnd == nil {
		rnd = DefaultSource()
	}

	var g Grid
	g = SpawnTile(g, rnd)
	g = SpawnTile(g, rnd)

	return GameState{
		Grid:  g,
		Won:   HasWon(g),
		Over:  !CanMove(g),
		Score: 0,
	}
}

// Move applies dir to the game. A move that changes nothing returns the
// state untouched: no score, no spawn, no flag updates.
func Move(s GameState, dir Direction, rnd RandomSource) GameState {
	res := ApplyMove(s.Grid, dir)
	if !res.Moved {
		return s
	}

	spawned := SpawnTile(res.Grid, rnd)
	return GameState{
		Grid:  spawned,
		Score: s.Score + res.ScoreDelta,
		Won:   s.Won || HasWon(spawned),
		Over:  !CanMove(spawned),
	}
}
