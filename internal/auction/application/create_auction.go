package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	productdomain "github.com/cristianortiz/auctionlifecycle/internal/product/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAuctionUseCase schedules a new auction for a product that has none yet.
type CreateAuctionUseCase struct {
	core  *auctionCore
	grace time.Duration
}

func NewCreateAuctionUseCase(core *auctionCore, grace time.Duration) *CreateAuctionUseCase {
	return &CreateAuctionUseCase{core: core, grace: grace}
}

func (uc *CreateAuctionUseCase) Execute(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error) {
	log.Info("Executing CreateAuctionUseCase",
		zap.String("productID", cmd.ProductID.String()),
		zap.String("type", string(cmd.Type)),
	)

	product, err := uc.core.products.GetByID(ctx, cmd.ProductID)
	if err != nil {
		if errors.Is(err, productdomain.ErrProductNotFound) {
			err = domain.ErrProductNotFound
		}
		logFailure("CreateAuctionUseCase: product lookup failed", err, zap.String("productID", cmd.ProductID.String()))
		return nil, fmt.Errorf("create auction: product %s: %w", cmd.ProductID, err)
	}

	a, err := domain.NewAuction(uuid.New(), domain.NewAuctionParams{
		ProductID:     product.ID,
		SellerID:      product.SellerID,
		Type:          cmd.Type,
		StartingPrice: cmd.StartingPrice,
		ReservePrice:  cmd.ReservePrice,
		BidIncrement:  cmd.BidIncrement,
		StartTime:     cmd.StartTime,
		EndTime:       cmd.EndTime,
	}, uc.core.clock.Now(), uc.grace)
	if err != nil {
		log.Warn("CreateAuctionUseCase: invalid auction", zap.String("productID", cmd.ProductID.String()), zap.Error(err))
		return nil, fmt.Errorf("create auction: %w", err)
	}

	if err := uc.core.auctions.Create(ctx, a); err != nil {
		logFailure("CreateAuctionUseCase: failed to store auction", err, zap.String("productID", cmd.ProductID.String()))
		return nil, fmt.Errorf("create auction: %w", err)
	}

	log.Info("CreateAuctionUseCase: auction scheduled",
		zap.String("auctionID", a.ID.String()),
		zap.Time("startTime", a.StartTime),
		zap.Time("endTime", a.EndTime),
	)
	return a, nil
}
