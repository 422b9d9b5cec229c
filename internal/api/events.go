package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/portled/internal/api/models"
	"github.com/smazurov/portled/internal/events"
)

// EventsInput narrows the stream to some LEDs.
type EventsInput struct {
	LedIDs []int `query:"led_id" doc:"Only stream events of these LEDs (comma separated); all LEDs when omitted"`
}

// registerSSERoutes registers the LED event stream.
func (s *Server) registerSSERoutes() {
	if s.eventBus == nil {
		s.logger.Debug("Event bus not available, skipping SSE routes")
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of LED state requests, changes and errors, optionally limited to some LEDs",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"connected":           models.ConnectedEvent{},
		"led-state-requested": events.LedStateRequestedEvent{},
		"led-state-changed":   events.LedStateChangedEvent{},
		"led-error":           events.LedErrorEvent{},
	}, func(ctx context.Context, input *EventsInput, send sse.Sender) {
		eventCh := make(chan events.LedEvent, 32)
		stop := s.eventBus.Stream(eventCh, events.LedFilter(input.LedIDs))
		defer stop()

		if err := send.Data(models.ConnectedEvent{
			Message:   "SSE connection established",
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
