package ws

import (
	"time"

	"github.com/google/uuid"
)

// ConnInfo carries per-connection identity used for logging and events.
type ConnInfo struct {
	ConnID      string
	UserID      int64
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnID() string {
	return uuid.NewString()
}
