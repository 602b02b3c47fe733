// Package session provides session management for Note Hunt.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Session ID generation
//   - Optional persistence to JSON files or SQLite
//
// Core Types:
//
// Manager implements service.SessionManager. Each session owns its own game
// engine; the manager only guards the session map, so engine access must be
// serialized by the caller (the game service does this).
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand, widened when the short
// space collides. Caller-chosen IDs may use letters, digits, dashes and
// underscores. Lookups are case-insensitive.
//
// Persistence:
//
// FilePersistence writes one <id>.json per session. SQLitePersistence stores
// the same document in a sessions table together with progress columns. Both
// reference the configuration by ID and rebuild the engine from the stored
// state, including the seed that placed the notes.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("data/sessions.db", configMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
package session
