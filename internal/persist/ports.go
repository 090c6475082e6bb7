package persist

import "context"

// Ports for key-value storage backends.
type (
	// KV is a key-value string store. Get reports ok=false for an absent key.
	KV interface {
		Get(ctx context.Context, key string) (value string, ok bool, err error)
		Set(ctx context.Context, key, value string) error
	}

	// Lister is implemented by backends that can enumerate their keys.
	Lister interface {
		Keys(ctx context.Context) ([]string, error)
	}

	// Pinger is implemented by backends that can check their own health.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
