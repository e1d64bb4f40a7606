package realtime

import (
	"context"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

// Broker carries messages between server replicas.
type Broker interface {
	Publish(ctx context.Context, msg Message) error
}

// Publisher sends export status to a session's listeners, through the broker when one
// is configured so listeners on other replicas see it too.
type Publisher struct {
	log    *logger.Logger
	hub    *Hub
	broker Broker
}

var _ export.Publisher = (*Publisher)(nil)

func NewPublisher(log *logger.Logger, hub *Hub, broker Broker) *Publisher {
	return &Publisher{log: log.With("service", "RealtimePublisher"), hub: hub, broker: broker}
}

func (p *Publisher) PublishStatus(ctx context.Context, sessionID string, ev export.StatusEvent) {
	p.Publish(ctx, Message{Channel: SessionChannel(sessionID), Event: EventExportStatus, Data: ev})
}

func (p *Publisher) Publish(ctx context.Context, msg Message) {
	if p.broker != nil {
		err := p.broker.Publish(ctx, msg)
		if err == nil {
			return
		}
		p.log.Warn("broker publish failed; delivering locally", "channel", msg.Channel, "error", err)
	}
	p.hub.Broadcast(msg)
}
