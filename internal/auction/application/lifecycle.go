package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivateAuctionUseCase promotes a due SCHEDULED auction to ACTIVE. Only the sweeper calls it.
type ActivateAuctionUseCase struct {
	core *auctionCore
}

func NewActivateAuctionUseCase(core *auctionCore) *ActivateAuctionUseCase {
	return &ActivateAuctionUseCase{core: core}
}

// Execute reports whether the auction was activated. Auctions not due, or no longer SCHEDULED,
// are left alone.
func (uc *ActivateAuctionUseCase) Execute(ctx context.Context, id uuid.UUID) (bool, error) {
	var started bool
	err := uc.core.mutate(ctx, "ActivateAuctionUseCase", id,
		func(ctx context.Context, a *domain.Auction, now time.Time) ([]domain.Event, error) {
			started = false
			if !a.DueToStart(now) {
				return nil, nil
			}
			active, err := uc.core.auctions.ChangeStatus(ctx, domain.StatusChange{
				AuctionID:       a.ID,
				ExpectedVersion: a.Version,
				From:            domain.StatusScheduled,
				To:              domain.StatusActive,
				At:              now,
			})
			if err != nil {
				return nil, err
			}
			started = true
			log.Info("auction activated", zap.String("auctionID", a.ID.String()))
			return []domain.Event{domain.StatusEvent(domain.EventAuctionStarted, active, domain.StatusScheduled, now)}, nil
		})
	if err != nil {
		return false, fmt.Errorf("activate auction %s: %w", id, err)
	}
	return started, nil
}

// FinalizeAuctionUseCase ends a due ACTIVE auction and settles its winner.
// Re-running it on an ENDED auction is a no-op since the status is checked under the lock.
type FinalizeAuctionUseCase struct {
	core *auctionCore
}

func NewFinalizeAuctionUseCase(core *auctionCore) *FinalizeAuctionUseCase {
	return &FinalizeAuctionUseCase{core: core}
}

func (uc *FinalizeAuctionUseCase) Execute(ctx context.Context, id uuid.UUID) (bool, error) {
	var ended bool
	err := uc.core.mutate(ctx, "FinalizeAuctionUseCase", id,
		func(ctx context.Context, a *domain.Auction, now time.Time) ([]domain.Event, error) {
			ended = false
			if !a.DueToEnd(now) {
				return nil, nil
			}
			_, event, err := uc.core.finalize(ctx, a, now)
			if err != nil {
				return nil, err
			}
			ended = true
			return []domain.Event{event}, nil
		})
	if err != nil {
		return false, fmt.Errorf("finalize auction %s: %w", id, err)
	}
	return ended, nil
}

// EndAuctionNowUseCase lets the seller or an admin close an ACTIVE auction early. It runs the same
// finalization as the timer.
type EndAuctionNowUseCase struct {
	core *auctionCore
}

func NewEndAuctionNowUseCase(core *auctionCore) *EndAuctionNowUseCase {
	return &EndAuctionNowUseCase{core: core}
}

func (uc *EndAuctionNowUseCase) Execute(ctx context.Context, cmd ManageAuctionDTO) (*domain.Auction, error) {
	fields := []zap.Field{
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("requesterID", cmd.RequesterID.String()),
	}
	log.Info("Executing EndAuctionNowUseCase", fields...)

	requester, err := uc.core.manager(ctx, cmd.RequesterID)
	if err != nil {
		logFailure("EndAuctionNowUseCase: requester rejected", err, fields...)
		return nil, fmt.Errorf("end auction %s: %w", cmd.AuctionID, err)
	}

	var ended *domain.Auction
	err = uc.core.mutate(ctx, "EndAuctionNowUseCase", cmd.AuctionID,
		func(ctx context.Context, a *domain.Auction, now time.Time) ([]domain.Event, error) {
			if !a.ManagedBy(requester.ID, requester.IsAdmin) {
				return nil, domain.ErrNotAuthorized
			}
			if a.Status != domain.StatusActive {
				return nil, fmt.Errorf("%w: status %s", domain.ErrAuctionNotActive, a.Status)
			}
			result, event, err := uc.core.finalize(ctx, a, now)
			if err != nil {
				return nil, err
			}
			ended = result
			return []domain.Event{event}, nil
		})
	if err != nil {
		logFailure("EndAuctionNowUseCase: end rejected", err, fields...)
		return nil, fmt.Errorf("end auction %s: %w", cmd.AuctionID, err)
	}
	return ended, nil
}

// CancelAuctionUseCase cancels a SCHEDULED or ACTIVE auction that has no bids.
type CancelAuctionUseCase struct {
	core *auctionCore
}

func NewCancelAuctionUseCase(core *auctionCore) *CancelAuctionUseCase {
	return &CancelAuctionUseCase{core: core}
}

func (uc *CancelAuctionUseCase) Execute(ctx context.Context, cmd ManageAuctionDTO) (*domain.Auction, error) {
	fields := []zap.Field{
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("requesterID", cmd.RequesterID.String()),
	}
	log.Info("Executing CancelAuctionUseCase", fields...)

	requester, err := uc.core.manager(ctx, cmd.RequesterID)
	if err != nil {
		logFailure("CancelAuctionUseCase: requester rejected", err, fields...)
		return nil, fmt.Errorf("cancel auction %s: %w", cmd.AuctionID, err)
	}

	var cancelled *domain.Auction
	err = uc.core.mutate(ctx, "CancelAuctionUseCase", cmd.AuctionID,
		func(ctx context.Context, a *domain.Auction, now time.Time) ([]domain.Event, error) {
			if !a.ManagedBy(requester.ID, requester.IsAdmin) {
				return nil, domain.ErrNotAuthorized
			}
			if err := a.CheckCancellable(); err != nil {
				return nil, err
			}
			previous := a.Status
			result, err := uc.core.auctions.ChangeStatus(ctx, domain.StatusChange{
				AuctionID:       a.ID,
				ExpectedVersion: a.Version,
				From:            previous,
				To:              domain.StatusCancelled,
				At:              now,
			})
			if err != nil {
				return nil, err
			}
			cancelled = result
			return []domain.Event{domain.StatusEvent(domain.EventAuctionCancelled, result, previous, now)}, nil
		})
	if err != nil {
		logFailure("CancelAuctionUseCase: cancel rejected", err, fields...)
		return nil, fmt.Errorf("cancel auction %s: %w", cmd.AuctionID, err)
	}
	log.Info("CancelAuctionUseCase: auction cancelled", fields...)
	return cancelled, nil
}

// NotifyEndingSoonUseCase emits ending_soon at most once per auction. The marker on the auction
// row decides which caller wins.
type NotifyEndingSoonUseCase struct {
	core *auctionCore
}

func NewNotifyEndingSoonUseCase(core *auctionCore) *NotifyEndingSoonUseCase {
	return &NotifyEndingSoonUseCase{core: core}
}

func (uc *NotifyEndingSoonUseCase) Execute(ctx context.Context, id uuid.UUID) (bool, error) {
	var notified bool
	err := uc.core.mutate(ctx, "NotifyEndingSoonUseCase", id,
		func(ctx context.Context, a *domain.Auction, now time.Time) ([]domain.Event, error) {
			notified = false
			if a.Status != domain.StatusActive || !now.Before(a.EndTime) || a.EndingSoonNotifiedAt != nil {
				return nil, nil
			}
			marked, err := uc.core.auctions.MarkEndingSoonNotified(ctx, a.ID, now)
			if err != nil || !marked {
				return nil, err
			}
			notified = true
			end := a.EndTime
			event := domain.StatusEvent(domain.EventEndingSoon, a, "", now)
			event.EndTime = &end
			amount := a.CurrentBid
			event.Amount = &amount
			return []domain.Event{event}, nil
		})
	if err != nil {
		return false, fmt.Errorf("notify auction %s ending soon: %w", id, err)
	}
	return notified, nil
}
