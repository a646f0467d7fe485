// Package common contains shared constants and sentinel errors used across
// streamdesk components.
package common

// AuthorizationHeaderName carries the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is prepended to the access token in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName tags every outbound API request for backend log correlation.
const RequestIDHeaderName = "X-Request-ID"

// CredentialKey is the single metadata entry the credential pair is persisted under.
const CredentialKey = "credential"

// CredentialSavedAtKey records when the credential entry was last written.
const CredentialSavedAtKey = "credential_saved_at"
