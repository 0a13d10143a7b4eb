package http

import (
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/application"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs
type CreateAuctionRequest struct {
	ProductID     uuid.UUID        `json:"product_id" validate:"required"`
	AuctionType   string           `json:"auction_type" validate:"required"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	ReservePrice  *decimal.Decimal `json:"reserve_price"`
	BidIncrement  decimal.Decimal  `json:"bid_increment"`
	StartTime     time.Time        `json:"start_time" validate:"required"`
	EndTime       time.Time        `json:"end_time" validate:"required"`
}

type PlaceBidRequest struct {
	BidderID uuid.UUID       `json:"bidder_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type ManageAuctionRequest struct {
	RequesterID uuid.UUID `json:"requester_id" validate:"required"`
}

// Response DTOs
type AuctionResponse struct {
	ID                   uuid.UUID        `json:"id"`
	ProductID            uuid.UUID        `json:"product_id"`
	SellerID             uuid.UUID        `json:"seller_id"`
	AuctionType          string           `json:"auction_type"`
	StartingPrice        decimal.Decimal  `json:"starting_price"`
	ReservePrice         *decimal.Decimal `json:"reserve_price,omitempty"`
	CurrentBid           decimal.Decimal  `json:"current_bid"`
	BidIncrement         decimal.Decimal  `json:"bid_increment"`
	StartTime            time.Time        `json:"start_time"`
	EndTime              time.Time        `json:"end_time"`
	Status               string           `json:"status"`
	Outcome              string           `json:"outcome,omitempty"`
	WinnerID             *uuid.UUID       `json:"winner_id,omitempty"`
	BidCount             int              `json:"bid_count"`
	Version              int64            `json:"version"`
	EndingSoonNotifiedAt *time.Time       `json:"ending_soon_notified_at,omitempty"`
	EndedAt              *time.Time       `json:"ended_at,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

type BidResponse struct {
	BidID     uuid.UUID       `json:"bid_id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

type AuctionStateResponse struct {
	Auction        AuctionResponse `json:"auction"`
	HighestBid     *BidResponse    `json:"highest_bid"`
	MinimumNextBid decimal.Decimal `json:"minimum_next_bid"`
}

type BidPageResponse struct {
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Bids  []BidResponse `json:"bids"`
}

type ErrorResponse struct {
	Error         string           `json:"error"`
	Code          domain.Kind      `json:"code"`
	MinimumAmount *decimal.Decimal `json:"minimum_amount,omitempty"`
	Fields        any              `json:"fields,omitempty"`
}

func (r CreateAuctionRequest) toDTO() application.CreateAuctionDTO {
	return application.CreateAuctionDTO{
		ProductID:     r.ProductID,
		Type:          domain.AuctionType(r.AuctionType),
		StartingPrice: r.StartingPrice,
		ReservePrice:  r.ReservePrice,
		BidIncrement:  r.BidIncrement,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
	}
}

func toAuctionResponse(a *domain.Auction) AuctionResponse {
	return AuctionResponse{
		ID:                   a.ID,
		ProductID:            a.ProductID,
		SellerID:             a.SellerID,
		AuctionType:          string(a.Type),
		StartingPrice:        a.StartingPrice,
		ReservePrice:         a.ReservePrice,
		CurrentBid:           a.CurrentBid,
		BidIncrement:         a.BidIncrement,
		StartTime:            a.StartTime,
		EndTime:              a.EndTime,
		Status:               string(a.Status),
		Outcome:              string(a.Outcome),
		WinnerID:             a.WinnerID,
		BidCount:             a.BidCount,
		Version:              a.Version,
		EndingSoonNotifiedAt: a.EndingSoonNotifiedAt,
		EndedAt:              a.EndedAt,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func toBidResponse(b *domain.Bid) BidResponse {
	return BidResponse{
		BidID:     b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

func toStateResponse(s *application.AuctionStateDTO) AuctionStateResponse {
	out := AuctionStateResponse{
		Auction:        toAuctionResponse(s.Auction),
		MinimumNextBid: s.MinimumNextBid,
	}
	if s.HighestBid != nil {
		top := toBidResponse(s.HighestBid)
		out.HighestBid = &top
	}
	return out
}
