package ports

import "context"

// TokenProvider supplies a bearer token for the music service.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}
