package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newAuction(t *testing.T, s *Store, status domain.AuctionStatus) *domain.Auction {
	t.Helper()
	a := &domain.Auction{
		ID:            uuid.New(),
		ProductID:     uuid.New(),
		SellerID:      uuid.New(),
		Type:          domain.TypeEnglish,
		StartingPrice: decimal.NewFromInt(100),
		CurrentBid:    decimal.NewFromInt(100),
		BidIncrement:  decimal.NewFromInt(10),
		StartTime:     t0,
		EndTime:       t0.Add(time.Hour),
		Status:        status,
	}
	require.NoError(t, s.Create(context.Background(), a))
	return a
}

func commit(auctionID uuid.UUID, amount int64, version int64, at time.Time) domain.BidCommit {
	return domain.BidCommit{
		Bid:             domain.NewBid(uuid.New(), auctionID, uuid.New(), decimal.NewFromInt(amount), at),
		ExpectedVersion: version,
		At:              at,
	}
}

func TestStore_CreateRejectsSecondAuctionForProduct(t *testing.T) {
	s := NewStore()
	a := newAuction(t, s, domain.StatusScheduled)
	require.Equal(t, int64(1), a.Version)

	dup := a.Clone()
	dup.ID = uuid.New()
	err := s.Create(context.Background(), dup)
	require.ErrorIs(t, err, domain.ErrProductAlreadyHasAuction)
}

func TestStore_GetByIDReturnsCopies(t *testing.T) {
	s := NewStore()
	a := newAuction(t, s, domain.StatusActive)

	got, err := s.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	got.CurrentBid = decimal.NewFromInt(9999)

	again, err := s.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.True(t, again.CurrentBid.Equal(decimal.NewFromInt(100)))

	_, err = s.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestStore_AppendOutbidsPrevious(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := newAuction(t, s, domain.StatusActive)

	first, err := s.Append(ctx, commit(a.ID, 110, 1, t0.Add(time.Minute)))
	require.NoError(t, err)
	require.Nil(t, first.Outbid)
	require.Equal(t, int64(2), first.Auction.Version)
	require.Equal(t, 1, first.Auction.BidCount)

	second, err := s.Append(ctx, commit(a.ID, 120, 2, t0.Add(2*time.Minute)))
	require.NoError(t, err)
	require.NotNil(t, second.Outbid)
	require.Equal(t, first.Bid.ID, second.Outbid.ID)
	require.Equal(t, domain.BidOutbid, second.Outbid.Status)
	require.True(t, second.Auction.CurrentBid.Equal(decimal.NewFromInt(120)))
	require.Equal(t, 2, second.Auction.BidCount)

	ledger, err := s.Ledger(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	require.Equal(t, domain.BidOutbid, ledger[0].Status)
	require.Equal(t, domain.BidActive, ledger[1].Status)
	require.Less(t, ledger[0].Seq, ledger[1].Seq)

	top, err := s.CurrentHighest(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, second.Bid.ID, top.ID)
}

func TestStore_AppendRechecksAtCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := newAuction(t, s, domain.StatusActive)

	_, err := s.Append(ctx, commit(a.ID, 110, 1, t0.Add(time.Minute)))
	require.NoError(t, err)

	// stale version: another writer committed in between
	_, err = s.Append(ctx, commit(a.ID, 150, 1, t0.Add(time.Minute)))
	require.ErrorIs(t, err, domain.ErrRaceLost)

	// window closed by the time of commit
	_, err = s.Append(ctx, commit(a.ID, 150, 2, t0.Add(time.Hour)))
	require.ErrorIs(t, err, domain.ErrAuctionNotActive)

	// not above the committed current bid
	_, err = s.Append(ctx, commit(a.ID, 110, 2, t0.Add(time.Minute)))
	require.ErrorIs(t, err, domain.ErrBidTooLow)

	_, err = s.Append(ctx, commit(uuid.New(), 150, 1, t0))
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestStore_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := newAuction(t, s, domain.StatusScheduled)

	got, err := s.ChangeStatus(ctx, domain.StatusChange{
		AuctionID: a.ID, ExpectedVersion: 1, From: domain.StatusScheduled, To: domain.StatusActive, At: t0,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, got.Status)
	require.Equal(t, int64(2), got.Version)

	_, err = s.ChangeStatus(ctx, domain.StatusChange{
		AuctionID: a.ID, ExpectedVersion: 1, From: domain.StatusScheduled, To: domain.StatusActive, At: t0,
	})
	require.ErrorIs(t, err, domain.ErrRaceLost)

	_, err = s.ChangeStatus(ctx, domain.StatusChange{
		AuctionID: a.ID, ExpectedVersion: 2, From: domain.StatusActive, To: domain.StatusScheduled, At: t0,
	})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStore_SettleAppliesChanges(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := newAuction(t, s, domain.StatusActive)

	_, err := s.Append(ctx, commit(a.ID, 110, 1, t0.Add(time.Minute)))
	require.NoError(t, err)
	win, err := s.Append(ctx, commit(a.ID, 130, 2, t0.Add(2*time.Minute)))
	require.NoError(t, err)

	fresh, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	bids, err := s.Ledger(ctx, a.ID)
	require.NoError(t, err)
	st, err := fresh.Settle(bids, t0.Add(time.Hour))
	require.NoError(t, err)

	ended, err := s.Settle(ctx, st)
	require.NoError(t, err)
	require.Equal(t, domain.StatusEnded, ended.Status)
	require.Equal(t, win.Bid.BidderID, *ended.WinnerID)

	top, err := s.CurrentHighest(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BidWinning, top.Status)

	_, err = s.Settle(ctx, st)
	require.ErrorIs(t, err, domain.ErrRaceLost)
}

func TestStore_Lists(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	scheduled := newAuction(t, s, domain.StatusScheduled)
	active := newAuction(t, s, domain.StatusActive)
	_ = newAuction(t, s, domain.StatusEnded)

	due, err := s.ListDueToStart(ctx, t0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, scheduled.ID, due[0].ID)

	due, err = s.ListDueToStart(ctx, t0.Add(-time.Second))
	require.NoError(t, err)
	require.Empty(t, due)

	ending, err := s.ListDueToEnd(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, ending, 1)
	require.Equal(t, active.ID, ending[0].ID)

	soon, err := s.ListEndingSoon(ctx, t0.Add(30*time.Minute), time.Hour)
	require.NoError(t, err)
	require.Len(t, soon, 1)

	soon, err = s.ListEndingSoon(ctx, t0, 10*time.Minute)
	require.NoError(t, err)
	require.Empty(t, soon)
}

func TestStore_MarkEndingSoonOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := newAuction(t, s, domain.StatusActive)

	first, err := s.MarkEndingSoonNotified(ctx, a.ID, t0)
	require.NoError(t, err)
	require.True(t, first)
	marked, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.Version+1, marked.Version)

	second, err := s.MarkEndingSoonNotified(ctx, a.ID, t0)
	require.NoError(t, err)
	require.False(t, second)
	unchanged, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, marked.Version, unchanged.Version)

	soon, err := s.ListEndingSoon(ctx, t0.Add(30*time.Minute), time.Hour)
	require.NoError(t, err)
	require.Empty(t, soon)
}

func TestStore_ListByAmount(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := newAuction(t, s, domain.StatusActive)

	for i, amount := range []int64{110, 120, 150} {
		_, err := s.Append(ctx, commit(a.ID, amount, int64(i+1), t0.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	page, err := s.ListByAmount(ctx, a.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "150", page[0].Amount.String())
	require.Equal(t, "120", page[1].Amount.String())

	page, err = s.ListByAmount(ctx, a.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "110", page[0].Amount.String())

	page, err = s.ListByAmount(ctx, a.ID, 10, 2)
	require.NoError(t, err)
	require.Empty(t, page)

	_, err = s.ListByAmount(ctx, a.ID, -9223372036854775616, 100)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	page, err = s.ListByAmount(ctx, a.ID, 1, math.MaxInt)
	require.NoError(t, err)
	require.Len(t, page, 2)
}
