package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidatedBid is the accepted outcome of BidValidator.Validate. AuctionVersion pins the auction
// state the decision was made against, the ledger refuses the commit if it moved.
type ValidatedBid struct {
	AuctionID      uuid.UUID
	BidderID       uuid.UUID
	Amount         decimal.Decimal
	AuctionVersion int64
	ValidatedAt    time.Time
}

// BidValidator decides whether a bid may enter an auction. It has no side effects.
type BidValidator struct {
	clock Clock
}

func NewBidValidator(clock Clock) *BidValidator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BidValidator{clock: clock}
}

// Validate runs the checks in order, the first failing check decides the error:
//  1. auction is ACTIVE and the clock is within [StartTime, EndTime)
//  2. the bidder is not the seller
//  3. amount > CurrentBid and amount >= CurrentBid + BidIncrement
//  4. amount is a valid positive monetary value
func (v *BidValidator) Validate(a *Auction, bidderID uuid.UUID, amount decimal.Decimal) (*ValidatedBid, error) {
	now := v.clock.Now()

	if a == nil || !a.AcceptingBids(now) {
		if a == nil {
			return nil, ErrAuctionNotActive
		}
		return nil, fmt.Errorf("%w: status %s", ErrAuctionNotActive, a.Status)
	}
	if bidderID == a.SellerID {
		return nil, ErrSelfBidForbidden
	}
	if !amount.GreaterThan(a.CurrentBid) || amount.LessThan(a.CurrentBid.Add(a.BidIncrement)) {
		return nil, &BidTooLowError{Current: a.CurrentBid, Minimum: a.MinimumNextBid()}
	}
	if err := CheckAmount(amount, false); err != nil {
		return nil, err
	}

	return &ValidatedBid{
		AuctionID:      a.ID,
		BidderID:       bidderID,
		Amount:         amount,
		AuctionVersion: a.Version,
		ValidatedAt:    now,
	}, nil
}
