// Package session provides session management for the Interstellar Mission.
//
// Each session owns a mission engine for one universe, the search options it
// resolves with, and the playback cursor over the last result. Sessions use
// 4-character hex IDs by default and are looked up case-insensitively.
//
// Persistence:
//
// FilePersistence stores one JSON document per session holding the config
// ID, search options, the last finished search result and the playback
// cursor. Loading rebuilds the engine from the universe named by the config
// ID, so results are never re-solved on restart. Searches still running
// when the process stops are not persisted.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	manager := session.NewManagerWithPersistence(persistence, logger)
//	_ = manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "classic", universe, engine.DefaultSearchOptions())
//	sess, err = manager.Get(sess.ID)
//
// Expired sessions are dropped from memory by CleanupExpiredSessions; their
// files remain and are reloaded on the next Get.
package session
