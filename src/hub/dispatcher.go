package hub

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatify/backend/src/types"
)

// Dispatcher fans an event out to every live connection in a chat room.
// Delivery is best-effort: a connection whose send fails is pruned from
// the registry and closed, and the broadcast continues with the rest.
type Dispatcher struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher bound to the given registry.
func NewDispatcher(reg *Registry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Broadcast delivers evt to every current member of the room except
// exclude (pass nil to reach everyone). Sends run against a snapshot,
// without any registry lock held, so a stalled client cannot block
// admission or removal. Broadcasting to an unknown or empty room is a
// no-op. Errors never propagate to the caller.
func (d *Dispatcher) Broadcast(chatID uuid.UUID, evt types.Event, exclude *Client) {
	for _, c := range d.registry.Snapshot(chatID) {
		if c == exclude {
			continue
		}
		if err := c.Send(evt); err != nil {
			d.logger.Warn().
				Err(err).
				Str("client_id", c.ID).
				Str("chat_id", chatID.String()).
				Str("event_type", evt.Type).
				Msg("send failed, pruning connection")
			d.registry.Remove(chatID, c)
			c.Close()
		}
	}
}

// Notify is the producer-facing entry point: REST handlers call it
// after a state change commits. Fire-and-forget.
func (d *Dispatcher) Notify(chatID uuid.UUID, evt types.Event) {
	d.Broadcast(chatID, evt, nil)
}
