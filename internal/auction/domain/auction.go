package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionStatus represents the lifecycle state of an auction.
type AuctionStatus string

const (
	StatusScheduled AuctionStatus = "SCHEDULED"
	StatusActive    AuctionStatus = "ACTIVE"
	StatusEnded     AuctionStatus = "ENDED"
	StatusCancelled AuctionStatus = "CANCELLED"
)

var transitions = map[AuctionStatus][]AuctionStatus{
	StatusScheduled: {StatusActive, StatusCancelled},
	StatusActive:    {StatusEnded, StatusCancelled},
}

// CanTransitionTo reports whether s -> to is a legal edge of the state machine.
func (s AuctionStatus) CanTransitionTo(to AuctionStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s AuctionStatus) IsTerminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

type AuctionType string

const (
	TypeEnglish   AuctionType = "ENGLISH"
	TypeDutch     AuctionType = "DUTCH"
	TypeSealedBid AuctionType = "SEALED_BID"
)

func (t AuctionType) Valid() bool {
	return t == TypeEnglish || t == TypeDutch || t == TypeSealedBid
}

// Outcome is how an ENDED auction closed.
type Outcome string

const (
	OutcomeSold          Outcome = "SOLD"
	OutcomeNoBids        Outcome = "NO_BIDS"
	OutcomeReserveNotMet Outcome = "RESERVE_NOT_MET"
)

// Auction is the aggregate root, it owns its bid ledger.
// Version is incremented by the store on every write and guards optimistic commits.
type Auction struct {
	ID                   uuid.UUID
	ProductID            uuid.UUID
	SellerID             uuid.UUID
	Type                 AuctionType
	StartingPrice        decimal.Decimal
	ReservePrice         *decimal.Decimal
	CurrentBid           decimal.Decimal
	BidIncrement         decimal.Decimal
	StartTime            time.Time
	EndTime              time.Time
	Status               AuctionStatus
	Outcome              Outcome
	WinnerID             *uuid.UUID
	BidCount             int
	Version              int64
	EndingSoonNotifiedAt *time.Time
	EndedAt              *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewAuctionParams are the caller supplied fields of a new auction.
type NewAuctionParams struct {
	ProductID     uuid.UUID
	SellerID      uuid.UUID
	Type          AuctionType
	StartingPrice decimal.Decimal
	ReservePrice  *decimal.Decimal
	BidIncrement  decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
}

// NewAuction validates p and builds a SCHEDULED auction whose current bid is the starting price.
// grace is how far in the past StartTime may lie relative to now.
func NewAuction(id uuid.UUID, p NewAuctionParams, now time.Time, grace time.Duration) (*Auction, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown auction type %q", ErrInvalidInput, p.Type)
	}
	if p.Type != TypeEnglish {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAuctionType, p.Type)
	}
	if err := CheckAmount(p.StartingPrice, true); err != nil {
		return nil, fmt.Errorf("starting price: %w", err)
	}
	if err := CheckAmount(p.BidIncrement, true); err != nil {
		return nil, fmt.Errorf("bid increment: %w", err)
	}
	if p.ReservePrice != nil {
		if err := CheckAmount(*p.ReservePrice, true); err != nil {
			return nil, fmt.Errorf("reserve price: %w", err)
		}
	}
	if !p.EndTime.After(p.StartTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrInvalidTimeWindow)
	}
	if p.StartTime.Before(now.Add(-grace)) {
		return nil, fmt.Errorf("%w: start time is in the past", ErrInvalidTimeWindow)
	}

	var reserve *decimal.Decimal
	if p.ReservePrice != nil {
		r := *p.ReservePrice
		reserve = &r
	}
	return &Auction{
		ID:            id,
		ProductID:     p.ProductID,
		SellerID:      p.SellerID,
		Type:          p.Type,
		StartingPrice: p.StartingPrice,
		ReservePrice:  reserve,
		CurrentBid:    p.StartingPrice,
		BidIncrement:  p.BidIncrement,
		StartTime:     p.StartTime.UTC(),
		EndTime:       p.EndTime.UTC(),
		Status:        StatusScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MinimumNextBid is the smallest amount the validator accepts as the next bid.
func (a *Auction) MinimumNextBid() decimal.Decimal {
	next := a.CurrentBid.Add(a.BidIncrement)
	if floor := a.CurrentBid.Add(minimumUnit); next.LessThan(floor) {
		return floor
	}
	return next
}

// AcceptingBids reports whether the auction is ACTIVE and now falls within [StartTime, EndTime).
func (a *Auction) AcceptingBids(now time.Time) bool {
	return a.Status == StatusActive && !now.Before(a.StartTime) && now.Before(a.EndTime)
}

// DueToStart reports whether the sweeper should promote the auction to ACTIVE.
func (a *Auction) DueToStart(now time.Time) bool {
	return a.Status == StatusScheduled && !now.Before(a.StartTime)
}

// DueToEnd reports whether the sweeper should finalize the auction.
func (a *Auction) DueToEnd(now time.Time) bool {
	return a.Status == StatusActive && !now.Before(a.EndTime)
}

// ReserveMet reports whether amount satisfies the reserve price, auctions without one always do.
func (a *Auction) ReserveMet(amount decimal.Decimal) bool {
	return a.ReservePrice == nil || !amount.LessThan(*a.ReservePrice)
}

// ManagedBy reports whether userID may end or cancel the auction.
func (a *Auction) ManagedBy(userID uuid.UUID, isAdmin bool) bool {
	return isAdmin || a.SellerID == userID
}

// CheckTransition validates the edge from the auction's status to `to`.
func (a *Auction) CheckTransition(to AuctionStatus) error {
	if !a.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	return nil
}

// CheckCancellable applies the cancellation policy: only SCHEDULED or ACTIVE auctions without bids.
func (a *Auction) CheckCancellable() error {
	if err := a.CheckTransition(StatusCancelled); err != nil {
		return err
	}
	if a.BidCount > 0 {
		return fmt.Errorf("%w: %d bids placed", ErrCancelWithBids, a.BidCount)
	}
	return nil
}

// Clone returns a deep copy, stores hand out clones so callers never share state.
func (a *Auction) Clone() *Auction {
	c := *a
	if a.ReservePrice != nil {
		r := *a.ReservePrice
		c.ReservePrice = &r
	}
	if a.WinnerID != nil {
		w := *a.WinnerID
		c.WinnerID = &w
	}
	if a.EndingSoonNotifiedAt != nil {
		t := *a.EndingSoonNotifiedAt
		c.EndingSoonNotifiedAt = &t
	}
	if a.EndedAt != nil {
		t := *a.EndedAt
		c.EndedAt = &t
	}
	return &c
}
