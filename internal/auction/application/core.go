package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/logger"
	userdomain "github.com/cristianortiz/auctionlifecycle/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// maxAttempts bounds how often a mutation runs when the store reports a lost race.
const maxAttempts = 2

// auctionCore holds what every use case shares: the stores and the per-auction lock.
type auctionCore struct {
	auctions domain.AuctionRepository
	ledger   domain.BidLedger
	products domain.ProductReader
	users    domain.UserReader
	emitter  domain.Emitter
	clock    domain.Clock
	locks    *keyedLocker
}

// mutation runs with the auction's lock held against state read after the lock was taken. It
// returns the events to publish once its write committed.
type mutation func(ctx context.Context, a *domain.Auction, now time.Time) ([]domain.Event, error)

// mutate applies fn to auction id, retrying once on domain.ErrRaceLost. Events are emitted after
// the lock is released and only when fn succeeded.
func (c *auctionCore) mutate(ctx context.Context, op string, id uuid.UUID, fn mutation) error {
	var events []domain.Event
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		events, err = c.mutateOnce(ctx, id, fn)
		if !errors.Is(err, domain.ErrRaceLost) || attempt == maxAttempts {
			break
		}
		log.Warn(op+": race lost, retrying with fresh state",
			zap.String("auctionID", id.String()),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return err
	}

	emitCtx := context.WithoutCancel(ctx)
	for _, e := range events {
		c.emitter.Emit(emitCtx, e)
	}
	return nil
}

func (c *auctionCore) mutateOnce(ctx context.Context, id uuid.UUID, fn mutation) ([]domain.Event, error) {
	unlock, err := c.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	a, err := c.auctions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return fn(ctx, a, c.clock.Now())
}

// finalize settles an ACTIVE auction against its full ledger. Callers hold the auction's lock.
func (c *auctionCore) finalize(ctx context.Context, a *domain.Auction, now time.Time) (*domain.Auction, domain.Event, error) {
	bids, err := c.ledger.Ledger(ctx, a.ID)
	if err != nil {
		return nil, domain.Event{}, fmt.Errorf("load ledger: %w", err)
	}
	settlement, err := a.Settle(bids, now)
	if err != nil {
		return nil, domain.Event{}, err
	}
	ended, err := c.auctions.Settle(ctx, settlement)
	if err != nil {
		return nil, domain.Event{}, err
	}

	event := domain.StatusEvent(domain.EventAuctionEnded, ended, domain.StatusActive, now)
	if settlement.WinningBidID != nil {
		bidID := *settlement.WinningBidID
		amount := ended.CurrentBid
		event.BidID = &bidID
		event.Amount = &amount
	}
	log.Info("auction finalized",
		zap.String("auctionID", ended.ID.String()),
		zap.String("outcome", string(ended.Outcome)),
		zap.Int("bidCount", ended.BidCount),
	)
	return ended, event, nil
}

// manager loads the requester of an owner/admin action. Unknown requesters are not authorized.
func (c *auctionCore) manager(ctx context.Context, requesterID uuid.UUID) (*userdomain.User, error) {
	u, err := c.users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown requester %s", domain.ErrNotAuthorized, requesterID)
		}
		return nil, fmt.Errorf("load requester %s: %w", requesterID, err)
	}
	return u, nil
}

// logFailure logs err at Warn for expected rejections and at Error for everything else.
func logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if domain.KindOf(err) == domain.KindInternal {
		log.Error(msg, fields...)
		return
	}
	log.Warn(msg, fields...)
}
