package health

import "context"

// StorePinger checks result store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}
