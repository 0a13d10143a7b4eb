package application

import (
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// CreateAuctionDTO is the input of CreateAuctionUseCase. The seller is read from the product.
type CreateAuctionDTO struct {
	ProductID     uuid.UUID
	Type          domain.AuctionType
	StartingPrice decimal.Decimal
	ReservePrice  *decimal.Decimal
	BidIncrement  decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
}

// PlaceBidDTO is the input of PlaceBidUseCase.
type PlaceBidDTO struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
}

// ManageAuctionDTO identifies an owner or admin action on an auction.
type ManageAuctionDTO struct {
	AuctionID   uuid.UUID
	RequesterID uuid.UUID
}

// ListBidsDTO selects one page of the amount-ordered bid view. Zero Page or Limit take defaults.
type ListBidsDTO struct {
	AuctionID uuid.UUID
	Page      int
	Limit     int
}

// WithDefaults fills a zero Page or Limit with DefaultPage and DefaultLimit.
func (q ListBidsDTO) WithDefaults() ListBidsDTO {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	return q
}

// AuctionStateDTO is the read model of one auction.
type AuctionStateDTO struct {
	Auction        *domain.Auction
	HighestBid     *domain.Bid
	MinimumNextBid decimal.Decimal
}
