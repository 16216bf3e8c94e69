package ports

import "context"

// SecretResolver looks up a named secret. Implementations fall back to the
// process environment when their remote store is unavailable.
type SecretResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}
