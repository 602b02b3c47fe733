// Package service provides the business logic layer for Note Hunt.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration lookup for new sessions
//   - Moves, popup dismissal and carousel control
//   - The per-frame Tick used by the real-time runner
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and persistence.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and the
// game engine. Engines are not safe for concurrent use, so every call that
// touches one holds the service lock, and every state handed back to a caller
// is a snapshot.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewEmbeddedManager(assets.Configs())
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Settled moves run the slide to completion before returning
//	result, err := gameService.Move(ctx, info.ID, "right", true)
//
// Errors:
//
// Lookups fail with ErrSessionNotFound or ErrConfigNotFound, wrapped with the
// identifier; callers match them with errors.Is.
package service
