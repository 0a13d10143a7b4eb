package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/application"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/infra/repository/memory"
	productdomain "github.com/cristianortiz/auctionlifecycle/internal/product/domain"
	productmemory "github.com/cristianortiz/auctionlifecycle/internal/product/infra/repository/memory"
	userdomain "github.com/cristianortiz/auctionlifecycle/internal/user/domain"
	usermemory "github.com/cristianortiz/auctionlifecycle/internal/user/infra/repository/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type movingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movingClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type eventLog struct {
	mu     sync.Mutex
	counts map[domain.EventType]map[uuid.UUID]int
}

func (l *eventLog) Emit(_ context.Context, e domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[e.Type] == nil {
		l.counts[e.Type] = map[uuid.UUID]int{}
	}
	l.counts[e.Type][e.AuctionID]++
}

func (l *eventLog) count(t domain.EventType, id uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[t][id]
}

func TestSweep_BackToBackSweepsNeverDuplicateEvents(t *testing.T) {
	ctx := context.Background()
	clock := &movingClock{now: t0}
	events := &eventLog{counts: map[domain.EventType]map[uuid.UUID]int{}}
	store := memory.NewStore()
	seller := userdomain.User{ID: uuid.New(), DisplayName: "seller"}
	bidder := userdomain.User{ID: uuid.New(), DisplayName: "bidder"}
	products := productmemory.NewProductRepository()

	svc := application.NewService(application.Dependencies{
		Auctions: store,
		Ledger:   store,
		Products: products,
		Users:    usermemory.NewUserRepository(seller, bidder),
		Emitter:  events,
		Clock:    clock,
	}, application.Config{StartGrace: time.Minute})

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		p := productdomain.Product{ID: uuid.New(), SellerID: seller.ID}
		products.Add(p)
		a, err := svc.CreateAuction(ctx, application.CreateAuctionDTO{
			ProductID:     p.ID,
			Type:          domain.TypeEnglish,
			StartingPrice: decimal.NewFromInt(100),
			BidIncrement:  decimal.NewFromInt(10),
			StartTime:     t0.Add(time.Minute),
			EndTime:       t0.Add(time.Hour),
		})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	s := New(svc, clock, Config{ItemTimeout: time.Second, Concurrency: 3, Lookahead: time.Hour})

	clock.Set(t0.Add(time.Minute))
	first, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, first.Started)
	second, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, SweepReport{}, second)

	_, err = svc.PlaceBid(ctx, application.PlaceBidDTO{AuctionID: ids[0], BidderID: bidder.ID, Amount: decimal.NewFromInt(110)})
	require.NoError(t, err)

	soon, err := s.SweepEndingSoon(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, soon.Notified)
	soon, err = s.SweepEndingSoon(ctx)
	require.NoError(t, err)
	require.Zero(t, soon.Notified)

	clock.Set(t0.Add(time.Hour))
	var wg sync.WaitGroup
	reports := make([]SweepReport, 2)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], _ = s.SweepOnce(ctx)
		}(i)
	}
	wg.Wait()
	last, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, reports[0].Ended+reports[1].Ended+last.Ended)

	for _, id := range ids {
		require.Equal(t, 1, events.count(domain.EventAuctionStarted, id))
		require.Equal(t, 1, events.count(domain.EventAuctionEnded, id))
		require.Equal(t, 1, events.count(domain.EventEndingSoon, id))
	}
	won, err := store.GetByID(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeSold, won.Outcome)
	require.Equal(t, bidder.ID, *won.WinnerID)
}

func TestSweep_ExpiredWindowStartsAndEndsInOneSweep(t *testing.T) {
	ctx := context.Background()
	clock := &movingClock{now: t0}
	events := &eventLog{counts: map[domain.EventType]map[uuid.UUID]int{}}
	store := memory.NewStore()
	seller := userdomain.User{ID: uuid.New()}
	products := productmemory.NewProductRepository()
	p := productdomain.Product{ID: uuid.New(), SellerID: seller.ID}
	products.Add(p)

	svc := application.NewService(application.Dependencies{
		Auctions: store,
		Ledger:   store,
		Products: products,
		Users:    usermemory.NewUserRepository(seller),
		Emitter:  events,
		Clock:    clock,
	}, application.Config{})

	a, err := svc.CreateAuction(ctx, application.CreateAuctionDTO{
		ProductID:     p.ID,
		Type:          domain.TypeEnglish,
		StartingPrice: decimal.NewFromInt(1),
		BidIncrement:  decimal.NewFromInt(1),
		StartTime:     t0.Add(time.Minute),
		EndTime:       t0.Add(2 * time.Minute),
	})
	require.NoError(t, err)

	clock.Set(t0.Add(time.Hour))
	report, err := New(svc, clock, Config{}).SweepOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, SweepReport{Started: 1, Ended: 1}, report)

	got, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusEnded, got.Status)
	require.Equal(t, domain.OutcomeNoBids, got.Outcome)
}
