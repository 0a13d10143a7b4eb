package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/infra/notify"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/websocket"
)

// HubSink broadcasts every event to the room of its auction.
type HubSink struct {
	hub *websocket.Hub
}

var _ notify.Sink = (*HubSink)(nil)

func NewHubSink(hub *websocket.Hub) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) Name() string { return "websocket" }

func (s *HubSink) Deliver(_ context.Context, event domain.Event) error {
	data, err := json.Marshal(ServerEventMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerEvent},
		Payload:     event,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	if !s.hub.BroadcastToRoom(event.AuctionID.String(), data) {
		return fmt.Errorf("broadcast %s event for auction %s: hub queue full", event.Type, event.AuctionID)
	}
	return nil
}
