package shared

import "context"

// IdempotencyStore guards a request key for a scope (endpoint + caller) while its first attempt is live.
type IdempotencyStore interface {
	// Reserve returns false when the key is already held
	Reserve(ctx context.Context, scope, key string) (bool, error)
	// Release frees a key whose request failed so the client may retry it
	Release(ctx context.Context, scope, key string) error
}
