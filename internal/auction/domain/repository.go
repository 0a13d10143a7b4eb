package domain

import (
	"context"
	"time"

	productdomain "github.com/cristianortiz/auctionlifecycle/internal/product/domain"
	userdomain "github.com/cristianortiz/auctionlifecycle/internal/user/domain"
	"github.com/google/uuid"
)

// StatusChange is a guarded status write: it only applies when the stored auction still has
// ExpectedVersion and status From.
type StatusChange struct {
	AuctionID       uuid.UUID
	ExpectedVersion int64
	From            AuctionStatus
	To              AuctionStatus
	At              time.Time
}

// AuctionRepository persists auctions. Every write increments Version and fails with ErrRaceLost
// when the expected version is stale.
type AuctionRepository interface {
	Create(ctx context.Context, a *Auction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	ListDueToStart(ctx context.Context, now time.Time) ([]*Auction, error)
	ListDueToEnd(ctx context.Context, now time.Time) ([]*Auction, error)
	// ListEndingSoon returns ACTIVE auctions ending in (now, now+lookahead] not yet notified.
	ListEndingSoon(ctx context.Context, now time.Time, lookahead time.Duration) ([]*Auction, error)
	ChangeStatus(ctx context.Context, change StatusChange) (*Auction, error)
	Settle(ctx context.Context, s *Settlement) (*Auction, error)
	// MarkEndingSoonNotified sets the ending-soon marker once and bumps Version, it reports false
	// when already set.
	MarkEndingSoonNotified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

// BidCommit appends a validated bid. The ledger re-checks the auction at commit time.
type BidCommit struct {
	Bid             *Bid
	ExpectedVersion int64
	At              time.Time
}

// BidAppended is the committed result of BidLedger.Append.
type BidAppended struct {
	Bid     *Bid
	Auction *Auction
	// Outbid is the previous leading bid, now OUTBID. Nil for the first bid.
	Outbid *Bid
}

// BidLedger is the append-only record of bids per auction.
type BidLedger interface {
	// Append inserts the bid, flips the previous ACTIVE bid to OUTBID and raises the auction's
	// CurrentBid and BidCount in one atomic unit.
	Append(ctx context.Context, c BidCommit) (*BidAppended, error)
	// CurrentHighest returns the highest ACTIVE or WINNING bid, nil when there is none.
	CurrentHighest(ctx context.Context, auctionID uuid.UUID) (*Bid, error)
	// Ledger returns every bid in creation then insertion order.
	Ledger(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
	// ListByAmount returns a page ordered by amount desc then creation asc.
	ListByAmount(ctx context.Context, auctionID uuid.UUID, offset, limit int) ([]*Bid, error)
}

type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*productdomain.Product, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error)
}
