package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BidStatusChange is one bid status rewrite applied during finalization.
type BidStatusChange struct {
	BidID  uuid.UUID
	Status BidStatus
}

// Settlement is the finalization decision for an ACTIVE auction. The store applies it atomically
// with the ENDED transition, guarded by ExpectedVersion.
type Settlement struct {
	AuctionID       uuid.UUID
	ExpectedVersion int64
	Outcome         Outcome
	WinnerID        *uuid.UUID
	WinningBidID    *uuid.UUID
	Changes         []BidStatusChange
	EndedAt         time.Time
}

// Settle decides how an ACTIVE auction closes given its ledger.
// The highest standing bid (ties by earliest creation) wins when it meets the reserve price and
// settles to WINNING, every other ACTIVE bid settles to OUTBID. A highest bid under the reserve
// settles to REJECTED and the auction ends without a winner.
func (a *Auction) Settle(bids []*Bid, now time.Time) (*Settlement, error) {
	if a.Status != StatusActive {
		return nil, fmt.Errorf("%w: status %s", ErrAuctionNotActive, a.Status)
	}

	s := &Settlement{
		AuctionID:       a.ID,
		ExpectedVersion: a.Version,
		EndedAt:         now,
	}

	top := Highest(bids)
	switch {
	case top == nil:
		s.Outcome = OutcomeNoBids
	case !a.ReserveMet(top.Amount):
		s.Outcome = OutcomeReserveNotMet
		s.Changes = append(s.Changes, BidStatusChange{BidID: top.ID, Status: BidRejected})
	default:
		s.Outcome = OutcomeSold
		winner, bidID := top.BidderID, top.ID
		s.WinnerID = &winner
		s.WinningBidID = &bidID
		s.Changes = append(s.Changes, BidStatusChange{BidID: top.ID, Status: BidWinning})
	}

	for _, b := range bids {
		if top != nil && b.ID == top.ID {
			continue
		}
		if b.Status == BidActive {
			s.Changes = append(s.Changes, BidStatusChange{BidID: b.ID, Status: BidOutbid})
		}
	}
	return s, nil
}

// Apply moves a to the ENDED state described by s. Stores call it after the version check passed.
func (a *Auction) Apply(s *Settlement) {
	a.Status = StatusEnded
	a.Outcome = s.Outcome
	a.WinnerID = s.WinnerID
	ended := s.EndedAt
	a.EndedAt = &ended
	a.UpdatedAt = s.EndedAt
	a.Version++
}
