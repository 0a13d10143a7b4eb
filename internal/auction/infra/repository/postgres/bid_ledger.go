package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Append commits a validated bid. The guarded UPDATE re-checks version, status, end time and the
// committed current bid while holding the auction row lock.
func (s *Store) Append(ctx context.Context, c domain.BidCommit) (*domain.BidAppended, error) {
	res := &domain.BidAppended{}
	err := s.withTx(ctx, "append bid", func(tx pgx.Tx) error {
		query := `
            UPDATE auctions
            SET current_bid = $3, bid_count = bid_count + 1, version = version + 1, updated_at = $4
            WHERE id = $1 AND version = $2 AND status = 'ACTIVE' AND start_time <= $4 AND end_time > $4 AND current_bid < $3
            RETURNING ` + auctionColumns

		a, err := scanAuction(tx.QueryRow(ctx, query, c.Bid.AuctionID, c.ExpectedVersion, c.Bid.Amount, c.At))
		if errors.Is(err, pgx.ErrNoRows) {
			return explainAppendMiss(ctx, tx, c)
		}
		if err != nil {
			return err
		}
		res.Auction = a

		rows, err := tx.Query(ctx, `
            UPDATE bids SET status = 'OUTBID'
            WHERE auction_id = $1 AND status = 'ACTIVE'
            RETURNING `+bidColumns, a.ID)
		if err != nil {
			return fmt.Errorf("outbid previous: %w", err)
		}
		previous, err := scanBids(rows)
		if err != nil {
			return fmt.Errorf("outbid previous: %w", err)
		}
		for _, b := range previous {
			if res.Outbid == nil || b.Outranks(res.Outbid) {
				res.Outbid = b
			}
		}

		bid := *c.Bid
		bid.Status = domain.BidActive
		err = tx.QueryRow(ctx, `
            INSERT INTO bids (id, auction_id, bidder_id, amount, status, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING seq`,
			bid.ID, bid.AuctionID, bid.BidderID, bid.Amount, bid.Status, bid.CreatedAt,
		).Scan(&bid.Seq)
		if err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}
		res.Bid = &bid
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append bid to auction %s: %w", c.Bid.AuctionID, err)
	}
	return res, nil
}

func explainAppendMiss(ctx context.Context, tx pgx.Tx, c domain.BidCommit) error {
	if err := explainMiss(ctx, tx, c.Bid.AuctionID, c.ExpectedVersion); err != nil {
		return err
	}
	a, err := scanAuction(tx.QueryRow(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, c.Bid.AuctionID))
	if err != nil {
		return err
	}
	if !a.AcceptingBids(c.At) {
		return fmt.Errorf("%w: status %s", domain.ErrAuctionNotActive, a.Status)
	}
	return &domain.BidTooLowError{Current: a.CurrentBid, Minimum: a.MinimumNextBid()}
}

func (s *Store) CurrentHighest(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids
        WHERE auction_id = $1 AND status IN ('ACTIVE', 'WINNING')
        ORDER BY amount DESC, created_at ASC, seq ASC
        LIMIT 1`

	b, err := scanBid(s.pool.QueryRow(ctx, query, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("current highest bid of auction %s: %w", auctionID, err)
	}
	return b, nil
}

func (s *Store) Ledger(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids
        WHERE auction_id = $1
        ORDER BY created_at ASC, seq ASC`
	rows, err := s.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("ledger of auction %s: %w", auctionID, err)
	}
	return scanBids(rows)
}

func (s *Store) ListByAmount(ctx context.Context, auctionID uuid.UUID, offset, limit int) ([]*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids
        WHERE auction_id = $1
        ORDER BY amount DESC, created_at ASC, seq ASC
        OFFSET $2 LIMIT $3`
	rows, err := s.pool.Query(ctx, query, auctionID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list bids of auction %s: %w", auctionID, err)
	}
	return scanBids(rows)
}
