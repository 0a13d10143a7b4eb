package application

import (
	"context"
	"fmt"
	"math"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
)

// GetAuctionStateUseCase reads an auction with its highest bid. It takes no lock and never
// caches, each call reads the store.
type GetAuctionStateUseCase struct {
	core *auctionCore
}

func NewGetAuctionStateUseCase(core *auctionCore) *GetAuctionStateUseCase {
	return &GetAuctionStateUseCase{core: core}
}

func (uc *GetAuctionStateUseCase) Execute(ctx context.Context, id uuid.UUID) (*AuctionStateDTO, error) {
	a, err := uc.core.auctions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get auction state %s: %w", id, err)
	}
	top, err := uc.core.ledger.CurrentHighest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get auction state %s: %w", id, err)
	}
	return &AuctionStateDTO{
		Auction:        a,
		HighestBid:     top,
		MinimumNextBid: a.MinimumNextBid(),
	}, nil
}

// ListBidsUseCase pages through bids ordered by amount desc then creation asc.
type ListBidsUseCase struct {
	core *auctionCore
}

func NewListBidsUseCase(core *auctionCore) *ListBidsUseCase {
	return &ListBidsUseCase{core: core}
}

func (uc *ListBidsUseCase) Execute(ctx context.Context, q ListBidsDTO) ([]*domain.Bid, error) {
	q = q.WithDefaults()
	page, limit := q.Page, q.Limit
	if page < 1 || limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("%w: page must be >= 1 and limit within [1, %d]", domain.ErrInvalidInput, MaxLimit)
	}
	// (page-1)*limit must fit in an int
	if page > math.MaxInt/limit {
		return nil, fmt.Errorf("%w: page %d is out of range", domain.ErrInvalidInput, page)
	}

	if _, err := uc.core.auctions.GetByID(ctx, q.AuctionID); err != nil {
		return nil, fmt.Errorf("list bids of auction %s: %w", q.AuctionID, err)
	}
	bids, err := uc.core.ledger.ListByAmount(ctx, q.AuctionID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list bids of auction %s: %w", q.AuctionID, err)
	}
	return bids, nil
}

// CurrentHighestUseCase returns the highest standing bid, nil when the auction has none.
type CurrentHighestUseCase struct {
	core *auctionCore
}

func NewCurrentHighestUseCase(core *auctionCore) *CurrentHighestUseCase {
	return &CurrentHighestUseCase{core: core}
}

func (uc *CurrentHighestUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	if _, err := uc.core.auctions.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("current highest bid of auction %s: %w", id, err)
	}
	top, err := uc.core.ledger.CurrentHighest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("current highest bid of auction %s: %w", id, err)
	}
	return top, nil
}
