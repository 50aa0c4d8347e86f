package interfaces

import "param-server/src/models"

// -----------------------------------------------------------------------------
// IEventSink receives one event per finished exchange. Publish must not block.
// -----------------------------------------------------------------------------

type IEventSink interface {
	Publish(event models.MServedEvent)
}
