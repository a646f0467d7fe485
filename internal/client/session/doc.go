// Package session owns the credential pair of the running client.
//
// A Session is created once at startup, loaded from a Store, and injected
// into whatever issues authenticated requests. It is replaced wholesale on
// login or refresh and cleared on logout or when a refresh fails for good;
// OnCleared hooks let the UI react (the CLI drops back to its login prompt).
//
// Sessions are safe for concurrent use.
package session
