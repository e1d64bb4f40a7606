package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

// Event names the kind of message on the stream.
type Event string

const (
	EventExportStatus Event = "ExportStatus"
	EventUnitChanged  Event = "UnitChanged"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// SessionChannel is the channel every listener of one session subscribes to.
func SessionChannel(sessionID string) string {
	return "session:" + sessionID
}

type Client struct {
	ID       uuid.UUID
	Channels map[string]bool
	Outbound chan Message
	done     chan struct{}
	log      *logger.Logger
}
