package health

import "context"

// DBPinger checks spatial store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}
