package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/interviewer/pkg/helpers"
	"github.com/pkg/errors"
)

// DefaultTopic is the topic interview events are published on.
const DefaultTopic = "interview"

type EventType string

const (
	EventTypeQuestionsGenerated EventType = "questions-generated"
	EventTypeMessageAppended    EventType = "message-appended"
	EventTypeMessageSkipped     EventType = "message-skipped"
	EventTypeFeedbackAdded      EventType = "feedback-added"
	EventTypeNotice             EventType = "notice"
	EventTypeError              EventType = "error"
)

// Event describes one step of an interview run.
type Event struct {
	Type      EventType `json:"type"`
	PersonaID int       `json:"persona_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Category  string    `json:"category,omitempty"`
	Role      string    `json:"role,omitempty"`
	Content   string    `json:"content,omitempty"`
	Items     []string  `json:"items,omitempty"`
	Error     string    `json:"error,omitempty"`

	// CorrelationID is filled from message metadata when decoding.
	CorrelationID string `json:"-"`
}

func NewEventFromJson(b []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, errors.Wrap(err, "could not decode event")
	}
	if e.Type == "" {
		return nil, errors.New("event has no type")
	}
	return &e, nil
}

// NewEventFromMessage decodes a watermill message published by Publish.
func NewEventFromMessage(msg *message.Message) (*Event, error) {
	e, err := NewEventFromJson(msg.Payload)
	if err != nil {
		return nil, err
	}
	e.CorrelationID = msg.Metadata.Get(helpers.CorrelationIDMetadataKey)
	return e, nil
}

// Publish sends e on topic. A nil publisher drops the event.
func Publish(ctx context.Context, publisher message.Publisher, topic string, e *Event) error {
	if publisher == nil {
		return nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "could not encode event")
	}
	msg := message.NewMessage(watermill.NewUUID(), b)
	msg.SetContext(ctx)
	if err := publisher.Publish(topic, msg); err != nil {
		return errors.Wrapf(err, "could not publish %s event", e.Type)
	}
	return nil
}
