// Package session keeps the running simulations of the server in memory.
//
// Manager is the registry. Each Session owns one engine.Simulation built from
// a track config, along with its creation and last access times. Nothing is
// written to disk; a restart starts from an empty registry.
//
// Session IDs are case-insensitive. When the caller does not pick one, the
// manager generates a random 4-character hex ID that is not in use.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", track)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	removed := manager.CleanupExpiredSessions(time.Hour)
//
// The manager guards its map with an RWMutex. It does not serialise access to
// a single simulation; the service layer does that.
package session
