package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BidStatus string

const (
	BidActive   BidStatus = "ACTIVE"
	BidOutbid   BidStatus = "OUTBID"
	BidWinning  BidStatus = "WINNING"
	BidRejected BidStatus = "REJECTED"
)

// Bid is an entry of the auction's append-only ledger.
// Seq breaks ties between bids created within the same instant.
type Bid struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	Status    BidStatus
	Seq       int64
	CreatedAt time.Time
}

// NewBid creates an ACTIVE bid, Seq is assigned by the ledger on append.
func NewBid(id, auctionID, bidderID uuid.UUID, amount decimal.Decimal, createdAt time.Time) *Bid {
	return &Bid{
		ID:        id,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Status:    BidActive,
		CreatedAt: createdAt,
	}
}

// Standing reports whether the bid still competes for the win.
func (b *Bid) Standing() bool {
	return b.Status == BidActive || b.Status == BidWinning
}

// Outranks reports whether b beats other: higher amount, then earlier creation, then ledger order.
func (b *Bid) Outranks(other *Bid) bool {
	if c := b.Amount.Cmp(other.Amount); c != 0 {
		return c > 0
	}
	if !b.CreatedAt.Equal(other.CreatedAt) {
		return b.CreatedAt.Before(other.CreatedAt)
	}
	return b.Seq < other.Seq
}

// Highest returns the best standing bid of bids, nil if none stands.
func Highest(bids []*Bid) *Bid {
	var best *Bid
	for _, b := range bids {
		if !b.Standing() {
			continue
		}
		if best == nil || b.Outranks(best) {
			best = b
		}
	}
	return best
}
