package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (s *Store) Create(ctx context.Context, a *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, product_id, seller_id, auction_type, starting_price, reserve_price,
            current_bid, bid_increment, start_time, end_time, status, bid_count, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, 1, $12, $12)
    `
	var reserve decimal.NullDecimal
	if a.ReservePrice != nil {
		reserve = decimal.NewNullDecimal(*a.ReservePrice)
	}

	_, err := s.pool.Exec(ctx, query,
		a.ID,
		a.ProductID,
		a.SellerID,
		a.Type,
		a.StartingPrice,
		reserve,
		a.CurrentBid,
		a.BidIncrement,
		a.StartTime,
		a.EndTime,
		a.Status,
		a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create auction for product %s: %w", a.ProductID, domain.ErrProductAlreadyHasAuction)
		}
		return fmt.Errorf("create auction %s: %w", a.ID, err)
	}
	a.Version = 1
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	a, err := scanAuction(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("get auction %s: %w", id, err)
	}
	return a, nil
}

func (s *Store) ListDueToStart(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions
        WHERE status = $1 AND start_time <= $2
        ORDER BY start_time`
	rows, err := s.pool.Query(ctx, query, domain.StatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("list auctions due to start: %w", err)
	}
	return scanAuctions(rows)
}

func (s *Store) ListDueToEnd(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions
        WHERE status = $1 AND end_time <= $2
        ORDER BY end_time`
	rows, err := s.pool.Query(ctx, query, domain.StatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("list auctions due to end: %w", err)
	}
	return scanAuctions(rows)
}

func (s *Store) ListEndingSoon(ctx context.Context, now time.Time, lookahead time.Duration) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions
        WHERE status = $1 AND ending_soon_notified_at IS NULL AND end_time > $2 AND end_time <= $3
        ORDER BY end_time`
	rows, err := s.pool.Query(ctx, query, domain.StatusActive, now, now.Add(lookahead))
	if err != nil {
		return nil, fmt.Errorf("list auctions ending soon: %w", err)
	}
	return scanAuctions(rows)
}

func (s *Store) ChangeStatus(ctx context.Context, c domain.StatusChange) (*domain.Auction, error) {
	if !c.From.CanTransitionTo(c.To) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, c.From, c.To)
	}
	query := `
        UPDATE auctions SET status = $4, version = version + 1, updated_at = $5
        WHERE id = $1 AND version = $2 AND status = $3
        RETURNING ` + auctionColumns

	a, err := scanAuction(s.pool.QueryRow(ctx, query, c.AuctionID, c.ExpectedVersion, c.From, c.To, c.At))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("change auction %s status: %w", c.AuctionID, err)
	}
	if missErr := explainMiss(ctx, s.pool, c.AuctionID, c.ExpectedVersion); missErr != nil {
		return nil, missErr
	}
	return nil, fmt.Errorf("%w: auction %s is not %s", domain.ErrInvalidTransition, c.AuctionID, c.From)
}

func (s *Store) Settle(ctx context.Context, st *domain.Settlement) (*domain.Auction, error) {
	var ended *domain.Auction
	err := s.withTx(ctx, "settle auction", func(tx pgx.Tx) error {
		query := `
            UPDATE auctions
            SET status = $3, outcome = $4, winner_id = $5, ended_at = $6, updated_at = $6, version = version + 1
            WHERE id = $1 AND version = $2 AND status = 'ACTIVE'
            RETURNING ` + auctionColumns

		a, err := scanAuction(tx.QueryRow(ctx, query,
			st.AuctionID, st.ExpectedVersion, domain.StatusEnded, st.Outcome, st.WinnerID, st.EndedAt))
		if errors.Is(err, pgx.ErrNoRows) {
			if missErr := explainMiss(ctx, tx, st.AuctionID, st.ExpectedVersion); missErr != nil {
				return missErr
			}
			return domain.ErrAuctionNotActive
		}
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, ch := range st.Changes {
			batch.Queue(`UPDATE bids SET status = $3 WHERE id = $1 AND auction_id = $2`, ch.BidID, st.AuctionID, ch.Status)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("settle bids: %w", err)
			}
		}
		ended = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settle auction %s: %w", st.AuctionID, err)
	}
	return ended, nil
}

func (s *Store) MarkEndingSoonNotified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE auctions SET ending_soon_notified_at = $2, updated_at = $2, version = version + 1
         WHERE id = $1 AND ending_soon_notified_at IS NULL`,
		id, at)
	if err != nil {
		return false, fmt.Errorf("mark auction %s ending soon: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}
