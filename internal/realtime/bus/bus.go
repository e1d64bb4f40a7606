// Package bus relays realtime messages between server replicas.
package bus

import (
	"context"

	"github.com/yungbote/situacio-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	// StartForwarder delivers every message published by any replica to onMsg until
	// ctx is done.
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
