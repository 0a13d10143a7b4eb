package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const uniqueViolation = "23505"

// Store implements domain.AuctionRepository and domain.BidLedger on postgres.
// Every auction write is a conditional UPDATE on (id, version), the row lock it takes serializes
// concurrent writers across processes and a stale version surfaces as domain.ErrRaceLost.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// withTx runs fn inside a transaction, committing when fn returns nil and rolling back otherwise.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Warn("postgres: rollback failed", zap.String("op", op), zap.Error(rbErr))
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("%s: failed to commit transaction: %w", op, commitErr)
		}
	}()

	return fn(tx)
}

const auctionColumns = `id, product_id, seller_id, auction_type, starting_price, reserve_price, current_bid,
	bid_increment, start_time, end_time, status, outcome, winner_id, bid_count, version,
	ending_soon_notified_at, ended_at, created_at, updated_at`

const bidColumns = `id, auction_id, bidder_id, amount, status, seq, created_at`

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	a := &domain.Auction{}
	var reserve decimal.NullDecimal
	var outcome *string

	err := row.Scan(
		&a.ID,
		&a.ProductID,
		&a.SellerID,
		&a.Type,
		&a.StartingPrice,
		&reserve,
		&a.CurrentBid,
		&a.BidIncrement,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&outcome,
		&a.WinnerID,
		&a.BidCount,
		&a.Version,
		&a.EndingSoonNotifiedAt,
		&a.EndedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reserve.Valid {
		r := reserve.Decimal
		a.ReservePrice = &r
	}
	if outcome != nil {
		a.Outcome = domain.Outcome(*outcome)
	}
	return a, nil
}

func scanAuctions(rows pgx.Rows) ([]*domain.Auction, error) {
	defer rows.Close()

	var out []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanBid(row pgx.Row) (*domain.Bid, error) {
	b := &domain.Bid{}
	err := row.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Status, &b.Seq, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBids(rows pgx.Rows) ([]*domain.Bid, error) {
	defer rows.Close()

	out := []*domain.Bid{}
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// explainMiss turns a conditional UPDATE that matched no row into a domain error.
func explainMiss(ctx context.Context, q querier, id uuid.UUID, expectedVersion int64) error {
	var version int64
	var status domain.AuctionStatus
	err := q.QueryRow(ctx, `SELECT version, status FROM auctions WHERE id = $1`, id).Scan(&version, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAuctionNotFound
	}
	if err != nil {
		return err
	}
	if version != expectedVersion {
		return fmt.Errorf("auction %s at version %d, expected %d: %w", id, version, expectedVersion, domain.ErrRaceLost)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
