// Package websocket pushes simulation updates to browser clients.
//
// A central Hub owns every connection. Registration, removal and broadcast
// all run on the hub's own goroutine, so the subscriber table needs no lock.
// Each client has a read pump that only keeps the connection alive and a
// write pump that drains its send buffer.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"session_id": "ab12", "event": "tick", "state": {...}, "data": {...}}
//
// Events are state_update, tick, finished and reset. Clients never send
// commands over the socket; they use the REST API.
//
// Session Integration:
//
// Clients pick a session with a query parameter (/ws?session=ab12). Session
// IDs are matched case-insensitively.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastEvent(sessionID, websocket.EventTick, state, nil)
package websocket
