// Package cli provides the interactive streamdesk command-line client.
//
// It wires configuration, the local state database, the authenticated API
// client and the application services into a REPL. Typical flow: restore
// the stored session, log in if needed, browse the catalog and upload
// movies with live progress.
//
// Key features:
//   - Register / Login / Logout / WhoAmI
//   - Browse, search, show and delete movies; list genres, casts and assets
//   - Upload a movie file with a progress bar (plain lines when stdout is
//     not a terminal)
//   - Transparent access-token refresh; a rejected refresh drops back to
//     the login prompt
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
