package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether a facility index has been built.
type IndexChecker interface {
	Exists(ctx context.Context) (bool, error)
}
