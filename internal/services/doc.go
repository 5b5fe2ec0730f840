// Package services implements the external playlist-fetch collaborators.
//
// Each provider (YouTube Data API v3, Spotify Web API) maps its raw response
// shapes into the organizer's models and paginates via opaque continuation
// tokens. Requests are rate limited per provider. Remote-fetch failures
// propagate to the caller; only the persistence layer swallows errors.
package services
