// Package session keeps many concurrent 2048 games in memory for the network
// drivers (HTTP API, WebSocket and MCP).
//
// Each session owns one t2048.GameState and its own random source. The
// Manager is safe for concurrent use; all operations on a session are
// serialised by the manager lock, so two moves on the same session never
// interleave.
//
// Finished games are handed to a Recorder exactly once: when a move ends the
// game, or when a session with a non-zero score is restarted or deleted
// before it ended.
//
// Usage:
//
//	manager := session.NewManager(session.WithRecorder(store), session.WithLogger(logger))
//
//	snap := manager.Create("alice")
//	snap, moved, err := manager.Move(snap.ID, t2048.DirLeft)
//
//	updates, cancel, err := manager.Subscribe(snap.ID)
//	defer cancel()
package session
