package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventAuctionStarted   EventType = "auction_started"
	EventAuctionEnded     EventType = "auction_ended"
	EventAuctionCancelled EventType = "auction_cancelled"
	EventBidPlaced        EventType = "bid_placed"
	EventOutbid           EventType = "outbid"
	EventEndingSoon       EventType = "ending_soon"
)

// Event is a committed lifecycle or bid change. For outbid events BidderID is the bidder who lost
// the lead and Amount is the new leading amount.
type Event struct {
	Type           EventType        `json:"event_type"`
	AuctionID      uuid.UUID        `json:"auction_id"`
	ProductID      uuid.UUID        `json:"product_id"`
	PreviousStatus AuctionStatus    `json:"previous_status,omitempty"`
	NewStatus      AuctionStatus    `json:"new_status,omitempty"`
	Outcome        Outcome          `json:"outcome,omitempty"`
	WinnerID       *uuid.UUID       `json:"winner_id,omitempty"`
	BidID          *uuid.UUID       `json:"bid_id,omitempty"`
	BidderID       *uuid.UUID       `json:"bidder_id,omitempty"`
	BidderName     string           `json:"bidder_name,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	EndTime        *time.Time       `json:"end_time,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// Emitter forwards committed events to delivery systems. Implementations must not block the caller
// on slow I/O.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}

func StatusEvent(t EventType, a *Auction, previous AuctionStatus, at time.Time) Event {
	return Event{
		Type:           t,
		AuctionID:      a.ID,
		ProductID:      a.ProductID,
		PreviousStatus: previous,
		NewStatus:      a.Status,
		Outcome:        a.Outcome,
		WinnerID:       a.WinnerID,
		OccurredAt:     at,
	}
}
