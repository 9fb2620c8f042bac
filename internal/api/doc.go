// Package api serves 2048 sessions over HTTP.
//
// Endpoints:
//
//   - GET    /api/health                 liveness probe
//   - POST   /api/sessions               start a game ({"player": "..."} optional)
//   - GET    /api/sessions               list live games
//   - GET    /api/sessions/{id}          current snapshot
//   - DELETE /api/sessions/{id}          end a game
//   - POST   /api/sessions/{id}/move     {"direction": "left"} -> {"session": ..., "moved": bool}
//   - POST   /api/sessions/{id}/restart  fresh board, same ID
//   - GET    /api/sessions/{id}/ws       WebSocket stream of snapshots
//   - GET    /api/scores?limit=&player=  best finished games
//
// Errors are returned as {"error": "message"}.
package api
