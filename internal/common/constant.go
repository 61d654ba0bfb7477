// Package common contains shared constants and sentinel errors used across
// notesync components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName carries "Bearer <token>" on HTTP requests.
const AuthorizationHeaderName = "Authorization"
