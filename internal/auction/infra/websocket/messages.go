package websocket

import (
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MessageType defines ws type message
type MessageType string

const (
	MessageTypeClientBid         MessageType = "client_bid"          // client msg to make a bid
	MessageTypeServerBidAccepted MessageType = "server_bid_accepted" // server msg acknowledging the sender's bid
	MessageTypeServerError       MessageType = "server_error"        // server msg indicating error
	MessageTypeServerEvent       MessageType = "server_event"        // server msg carrying an auction event
)

// BaseMessage is base struct for all the WS messages, Type tells how to decode the rest
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is the bid a client submits to the room it joined
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		AuctionID uuid.UUID       `json:"auction_id" validate:"required"`
		BidderID  uuid.UUID       `json:"bidder_id" validate:"required"`
		Amount    decimal.Decimal `json:"amount"`
	} `json:"payload"`
}

type ServerBidAcceptedMessage struct {
	BaseMessage
	Payload struct {
		BidID     uuid.UUID       `json:"bid_id"`
		AuctionID uuid.UUID       `json:"auction_id"`
		BidderID  uuid.UUID       `json:"bidder_id"`
		Amount    decimal.Decimal `json:"amount"`
		CreatedAt time.Time       `json:"created_at"`
	} `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error         string           `json:"error"`
		Code          domain.Kind      `json:"code"`
		MinimumAmount *decimal.Decimal `json:"minimum_amount,omitempty"`
	} `json:"payload"`
}

// ServerEventMessage wraps a committed domain event for every client of the auction's room
type ServerEventMessage struct {
	BaseMessage
	Payload domain.Event `json:"payload"`
}
