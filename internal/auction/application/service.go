package application

import (
	"context"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/service_mock.go -package=mocks github.com/cristianortiz/auctionlifecycle/internal/auction/application AuctionService

// AuctionService exposes the auction use cases to the infra layer (http, websocket).
type AuctionService interface {
	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error)
	// PlaceBid validates and commits a bid, the error carries the minimum amount when it was too low
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error)
	EndAuctionNow(ctx context.Context, cmd ManageAuctionDTO) (*domain.Auction, error)
	CancelAuction(ctx context.Context, cmd ManageAuctionDTO) (*domain.Auction, error)
	GetAuctionState(ctx context.Context, id uuid.UUID) (*AuctionStateDTO, error)
	ListBids(ctx context.Context, q ListBidsDTO) ([]*domain.Bid, error)
	CurrentHighest(ctx context.Context, id uuid.UUID) (*domain.Bid, error)
}

// Dependencies are the ports Service is built from. Emitter and Clock are optional.
type Dependencies struct {
	Auctions domain.AuctionRepository
	Ledger   domain.BidLedger
	Products domain.ProductReader
	Users    domain.UserReader
	Emitter  domain.Emitter
	Clock    domain.Clock
}

type Config struct {
	// StartGrace is how far in the past a new auction's start time may lie.
	StartGrace time.Duration
}

// Service implements AuctionService and the lifecycle operations driven by the scheduler.
type Service struct {
	core *auctionCore

	createAuctionUC    *CreateAuctionUseCase
	placeBidUC         *PlaceBidUseCase
	endAuctionNowUC    *EndAuctionNowUseCase
	cancelAuctionUC    *CancelAuctionUseCase
	getAuctionStateUC  *GetAuctionStateUseCase
	listBidsUC         *ListBidsUseCase
	currentHighestUC   *CurrentHighestUseCase
	activateAuctionUC  *ActivateAuctionUseCase
	finalizeAuctionUC  *FinalizeAuctionUseCase
	notifyEndingSoonUC *NotifyEndingSoonUseCase
}

var _ AuctionService = (*Service)(nil)

func NewService(deps Dependencies, cfg Config) *Service {
	if deps.Emitter == nil {
		deps.Emitter = domain.NopEmitter{}
	}
	if deps.Clock == nil {
		deps.Clock = domain.SystemClock{}
	}
	core := &auctionCore{
		auctions: deps.Auctions,
		ledger:   deps.Ledger,
		products: deps.Products,
		users:    deps.Users,
		emitter:  deps.Emitter,
		clock:    deps.Clock,
		locks:    newKeyedLocker(),
	}
	return &Service{
		core:               core,
		createAuctionUC:    NewCreateAuctionUseCase(core, cfg.StartGrace),
		placeBidUC:         NewPlaceBidUseCase(core),
		endAuctionNowUC:    NewEndAuctionNowUseCase(core),
		cancelAuctionUC:    NewCancelAuctionUseCase(core),
		getAuctionStateUC:  NewGetAuctionStateUseCase(core),
		listBidsUC:         NewListBidsUseCase(core),
		currentHighestUC:   NewCurrentHighestUseCase(core),
		activateAuctionUC:  NewActivateAuctionUseCase(core),
		finalizeAuctionUC:  NewFinalizeAuctionUseCase(core),
		notifyEndingSoonUC: NewNotifyEndingSoonUseCase(core),
	}
}

func (s *Service) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error) {
	return s.createAuctionUC.Execute(ctx, cmd)
}

func (s *Service) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	return s.placeBidUC.Execute(ctx, cmd)
}

func (s *Service) EndAuctionNow(ctx context.Context, cmd ManageAuctionDTO) (*domain.Auction, error) {
	return s.endAuctionNowUC.Execute(ctx, cmd)
}

func (s *Service) CancelAuction(ctx context.Context, cmd ManageAuctionDTO) (*domain.Auction, error) {
	return s.cancelAuctionUC.Execute(ctx, cmd)
}

func (s *Service) GetAuctionState(ctx context.Context, id uuid.UUID) (*AuctionStateDTO, error) {
	return s.getAuctionStateUC.Execute(ctx, id)
}

func (s *Service) ListBids(ctx context.Context, q ListBidsDTO) ([]*domain.Bid, error) {
	return s.listBidsUC.Execute(ctx, q)
}

func (s *Service) CurrentHighest(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	return s.currentHighestUC.Execute(ctx, id)
}

// ActivateAuction promotes a due SCHEDULED auction, it reports false when there was nothing to do.
func (s *Service) ActivateAuction(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.activateAuctionUC.Execute(ctx, id)
}

// FinalizeAuction ends a due ACTIVE auction, it reports false when there was nothing to do.
func (s *Service) FinalizeAuction(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.finalizeAuctionUC.Execute(ctx, id)
}

func (s *Service) NotifyEndingSoon(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.notifyEndingSoonUC.Execute(ctx, id)
}

func (s *Service) ListDueToStart(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	return s.core.auctions.ListDueToStart(ctx, now)
}

func (s *Service) ListDueToEnd(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	return s.core.auctions.ListDueToEnd(ctx, now)
}

func (s *Service) ListEndingSoon(ctx context.Context, now time.Time, lookahead time.Duration) ([]*domain.Auction, error) {
	return s.core.auctions.ListEndingSoon(ctx, now, lookahead)
}
