// Package error provides structured error handling for Dramatica.
//
// Package: error
// Title: Dramatica Error Handling
// Description: Structured errors with codes, severities, details and an
//              optional cause. Codes map to categories and HTTP status codes
//              so the HTTP and gRPC adapters can report language errors
//              (lexical, syntax, semantic, runtime) consistently.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-16 v0.2.0: Scene language codes, dropped localization metadata
//
// Usage:
//
//	import mdwerror "github.com/msto63/dramatica/foundation/core/error"
//
//	err := mdwerror.New("invalid or expired session").
//		WithCode(mdwerror.CodeSessionNotFound).
//		WithDetail("session_id", id)
//
//	if mdwerror.HasCode(err, mdwerror.CodeSessionNotFound) {
//		// report 404
//	}
package error
