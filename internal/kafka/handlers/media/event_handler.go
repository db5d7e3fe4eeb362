package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/aliskhannn/media-editor/internal/model"
)

var ErrMalformedEvent = errors.New("malformed media event")

// service records media events.
type service interface {
	RecordEvent(ctx context.Context, e model.MediaEvent) error
}

// EventHandler stores media events consumed from Kafka in the audit log.
type EventHandler struct {
	service service
}

// NewEventHandler creates a new handler with the given service.
func NewEventHandler(s service) *EventHandler {
	return &EventHandler{service: s}
}

// Handle decodes the message and records the event.
func (h *EventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var e model.MediaEvent
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	if e.ID == uuid.Nil || e.Type == "" {
		return fmt.Errorf("%w: missing id or type", ErrMalformedEvent)
	}

	if err := h.service.RecordEvent(ctx, e); err != nil {
		return fmt.Errorf("record event %s: %w", e.ID, err)
	}

	return nil
}
