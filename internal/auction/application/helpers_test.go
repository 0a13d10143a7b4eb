package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

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

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingEmitter) Emit(_ context.Context, e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) ofType(t domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// flakyLedger loses the race on the first n appends, as a writer in another process would.
type flakyLedger struct {
	*memory.Store
	failures atomic.Int32
}

func (f *flakyLedger) Append(ctx context.Context, c domain.BidCommit) (*domain.BidAppended, error) {
	if f.failures.Add(-1) >= 0 {
		return nil, domain.ErrRaceLost
	}
	return f.Store.Append(ctx, c)
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	clock    *fakeClock
	emitter  *recordingEmitter
	users    *usermemory.UserRepository
	products *productmemory.ProductRepository
	seller   userdomain.User
	admin    userdomain.User
	bidders  []userdomain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLedger(t, nil)
}

// newFixtureWithLedger builds a Service on memory stores. wrap, when set, decorates the ledger.
func newFixtureWithLedger(t *testing.T, wrap func(*memory.Store) domain.BidLedger) *fixture {
	t.Helper()
	f := &fixture{
		store:   memory.NewStore(),
		clock:   &fakeClock{now: t0},
		emitter: &recordingEmitter{},
		seller:  userdomain.User{ID: uuid.New(), DisplayName: "seller"},
		admin:   userdomain.User{ID: uuid.New(), DisplayName: "admin", IsAdmin: true},
	}
	f.users = usermemory.NewUserRepository(f.seller, f.admin)
	for i := 0; i < 4; i++ {
		b := userdomain.User{ID: uuid.New(), DisplayName: "bidder"}
		f.bidders = append(f.bidders, b)
		f.users.Add(b)
	}
	f.products = productmemory.NewProductRepository()

	var ledger domain.BidLedger = f.store
	if wrap != nil {
		ledger = wrap(f.store)
	}
	f.svc = NewService(Dependencies{
		Auctions: f.store,
		Ledger:   ledger,
		Products: f.products,
		Users:    f.users,
		Emitter:  f.emitter,
		Clock:    f.clock,
	}, Config{StartGrace: time.Minute})
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// scheduled creates an auction starting at t0+1m and ending one hour later, starting price 100,
// increment 10.
func (f *fixture) scheduled(t *testing.T, reserve *decimal.Decimal) *domain.Auction {
	t.Helper()
	product := productdomain.Product{ID: uuid.New(), SellerID: f.seller.ID, Title: "lamp"}
	f.products.Add(product)

	a, err := f.svc.CreateAuction(context.Background(), CreateAuctionDTO{
		ProductID:     product.ID,
		Type:          domain.TypeEnglish,
		StartingPrice: dec("100"),
		ReservePrice:  reserve,
		BidIncrement:  dec("10"),
		StartTime:     t0.Add(time.Minute),
		EndTime:       t0.Add(time.Minute + time.Hour),
	})
	require.NoError(t, err)
	return a
}

// active creates an auction and lets the clock reach its start so it gets activated.
func (f *fixture) active(t *testing.T, reserve *decimal.Decimal) *domain.Auction {
	t.Helper()
	a := f.scheduled(t, reserve)
	f.clock.Set(a.StartTime)
	started, err := f.svc.ActivateAuction(context.Background(), a.ID)
	require.NoError(t, err)
	require.True(t, started)
	return a
}

func (f *fixture) bid(auctionID uuid.UUID, bidder userdomain.User, amount string) (*domain.Bid, error) {
	return f.svc.PlaceBid(context.Background(), PlaceBidDTO{
		AuctionID: auctionID,
		BidderID:  bidder.ID,
		Amount:    dec(amount),
	})
}

func (f *fixture) state(t *testing.T, id uuid.UUID) *domain.Auction {
	t.Helper()
	a, err := f.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}
