package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const eventsChannel = "project_events"

// StatusEvent is pushed to a developer's dashboard whenever the status of a
// project belonging to one of their students changes.
type StatusEvent struct {
	Type      string    `json:"type"`
	ProjectID uuid.UUID `json:"project_id"`
	Title     string    `json:"title"`
	StudentID uuid.UUID `json:"student_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
}

type statusEnvelope struct {
	DeveloperID uuid.UUID   `json:"developer_id"`
	Event       StatusEvent `json:"event"`
}

// EventBus routes status events to the developers that own them. With a
// Redis client attached, events go through pub/sub so every instance's hub
// sees them; without one they reach only the local hub.
type EventBus struct {
	Hub *Hub
	RDB *redis.Client
}

func NewEventBus(hub *Hub, rdb *redis.Client) *EventBus {
	return &EventBus{Hub: hub, RDB: rdb}
}

// PublishStatus is best effort: delivery failures are logged, never
// surfaced to the request that triggered the event.
func (b *EventBus) PublishStatus(ctx context.Context, developerID uuid.UUID, ev StatusEvent) {
	if b == nil || b.Hub == nil {
		return
	}
	ev.Type = "project_status"

	if b.RDB == nil {
		b.Hub.SendToUser(developerID, ev)
		return
	}

	payload, err := json.Marshal(statusEnvelope{DeveloperID: developerID, Event: ev})
	if err != nil {
		log.Printf("realtime: marshal status event: %v", err)
		return
	}
	if err := b.RDB.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		log.Printf("realtime: publish status event: %v", err)
	}
}

// RunSubscriber re-broadcasts events published by any instance to the local
// hub. Blocks until ctx is done; run it in its own goroutine.
func (b *EventBus) RunSubscriber(ctx context.Context) {
	if b.RDB == nil {
		return
	}

	sub := b.RDB.Subscribe(ctx, eventsChannel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var env statusEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("realtime: bad event payload: %v", err)
				continue
			}
			b.Hub.SendToUser(env.DeveloperID, env.Event)
		}
	}
}
