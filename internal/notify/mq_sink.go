package notify

import (
	"encoding/json"
	"log"
)

// Publisher publishes a message body under a routing key.
type Publisher interface {
	Publish(routingKey string, body []byte) error
}

// MQSink publishes notifications to a message broker as JSON.
type MQSink struct {
	publisher  Publisher
	routingKey string
}

// NewMQSink creates an MQSink publishing under routingKey.
func NewMQSink(publisher Publisher, routingKey string) *MQSink {
	return &MQSink{
		publisher:  publisher,
		routingKey: routingKey,
	}
}

// Notify publishes the event. Failures are logged and dropped.
func (s *MQSink) Notify(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal notification: %v", err)
		return
	}
	if err := s.publisher.Publish(s.routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s/%s notification: %v", event.Collection, event.Action, err)
	}
}
