package mq

import (
	"context"
	"encoding/json"
	"log"

	"roadsafe/models"
	"roadsafe/rdx"
)

const eventChannel = "roadsafe-events"

// Emit publishes an entity-change event to Redis. Failures are logged
// and never surfaced to the request path.
func Emit(ctx context.Context, eventName string, content models.Index) {
	data, err := json.Marshal(content)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event content: %v", err)
		return
	}

	if err := rdx.Conn.Publish(context.Background(), eventChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s event: %v", eventName, err)
	}
}
