package app

import "context"

// StateCache sits in front of the polled game-state reads. Get fills
// dest from the cache or runs load and stores its JSON-encoded result;
// Invalidate drops keys after lifecycle mutations so pollers see the
// transition on their next request.
type StateCache interface {
	GetState(ctx context.Context, key string, dest interface{}, load func(ctx context.Context) (interface{}, error)) error
	Invalidate(ctx context.Context, keys ...string) error
}
