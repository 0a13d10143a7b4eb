package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	userdomain "github.com/cristianortiz/auctionlifecycle/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceBidUseCase validates and commits a bid while the auction's lock is held.
type PlaceBidUseCase struct {
	core      *auctionCore
	validator *domain.BidValidator
}

func NewPlaceBidUseCase(core *auctionCore) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		core:      core,
		validator: domain.NewBidValidator(core.clock),
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	fields := []zap.Field{
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.String("amount", cmd.Amount.String()),
	}
	log.Info("Executing PlaceBidUseCase", fields...)

	bidder, err := uc.core.users.GetByID(ctx, cmd.BidderID)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			err = domain.ErrBidderNotFound
		}
		logFailure("PlaceBidUseCase: bidder lookup failed", err, fields...)
		return nil, fmt.Errorf("place bid: bidder %s: %w", cmd.BidderID, err)
	}

	var placed *domain.BidAppended
	err = uc.core.mutate(ctx, "PlaceBidUseCase", cmd.AuctionID,
		func(ctx context.Context, a *domain.Auction, _ time.Time) ([]domain.Event, error) {
			v, err := uc.validator.Validate(a, cmd.BidderID, cmd.Amount)
			if err != nil {
				return nil, err
			}
			bid := domain.NewBid(uuid.New(), v.AuctionID, v.BidderID, v.Amount, v.ValidatedAt)
			res, err := uc.core.ledger.Append(ctx, domain.BidCommit{
				Bid:             bid,
				ExpectedVersion: v.AuctionVersion,
				At:              v.ValidatedAt,
			})
			if err != nil {
				return nil, err
			}
			placed = res
			return bidEvents(res, bidder), nil
		})
	if err != nil {
		logFailure("PlaceBidUseCase: bid rejected", err, fields...)
		return nil, fmt.Errorf("place bid on auction %s: %w", cmd.AuctionID, err)
	}

	log.Info("PlaceBidUseCase: bid accepted",
		zap.String("auctionID", placed.Auction.ID.String()),
		zap.String("bidID", placed.Bid.ID.String()),
		zap.String("amount", placed.Bid.Amount.String()),
		zap.Int("bidCount", placed.Auction.BidCount),
	)
	return placed.Bid, nil
}

// bidEvents builds bid_placed and, when a previous leader lost the lead, outbid.
func bidEvents(res *domain.BidAppended, bidder *userdomain.User) []domain.Event {
	bidID, bidderID, amount := res.Bid.ID, res.Bid.BidderID, res.Bid.Amount
	events := []domain.Event{{
		Type:       domain.EventBidPlaced,
		AuctionID:  res.Auction.ID,
		ProductID:  res.Auction.ProductID,
		BidID:      &bidID,
		BidderID:   &bidderID,
		BidderName: bidder.DisplayName,
		Amount:     &amount,
		OccurredAt: res.Bid.CreatedAt,
	}}
	if res.Outbid != nil {
		lostID, lostBidder := res.Outbid.ID, res.Outbid.BidderID
		events = append(events, domain.Event{
			Type:       domain.EventOutbid,
			AuctionID:  res.Auction.ID,
			ProductID:  res.Auction.ProductID,
			BidID:      &lostID,
			BidderID:   &lostBidder,
			Amount:     &amount,
			OccurredAt: res.Bid.CreatedAt,
		})
	}
	return events
}
