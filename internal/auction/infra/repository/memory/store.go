package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/google/uuid"
)

// Store is an in-memory domain.AuctionRepository and domain.BidLedger.
// It applies the same version and status guards as the postgres store so the engine behaves the
// same on both.
type Store struct {
	mu        sync.RWMutex
	auctions  map[uuid.UUID]*domain.Auction
	byProduct map[uuid.UUID]uuid.UUID
	bids      map[uuid.UUID][]*domain.Bid
	seq       int64
}

func NewStore() *Store {
	return &Store{
		auctions:  make(map[uuid.UUID]*domain.Auction),
		byProduct: make(map[uuid.UUID]uuid.UUID),
		bids:      make(map[uuid.UUID][]*domain.Bid),
	}
}

func (s *Store) Create(_ context.Context, a *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byProduct[a.ProductID]; ok {
		return fmt.Errorf("create auction for product %s: %w", a.ProductID, domain.ErrProductAlreadyHasAuction)
	}
	if _, ok := s.auctions[a.ID]; ok {
		return fmt.Errorf("create auction %s: duplicate id", a.ID)
	}
	stored := a.Clone()
	stored.Version = 1
	s.auctions[a.ID] = stored
	s.byProduct[a.ProductID] = a.ID
	a.Version = stored.Version
	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	return a.Clone(), nil
}

func (s *Store) ListDueToStart(_ context.Context, now time.Time) ([]*domain.Auction, error) {
	return s.list(func(a *domain.Auction) bool { return a.DueToStart(now) },
		func(a *domain.Auction) time.Time { return a.StartTime }), nil
}

func (s *Store) ListDueToEnd(_ context.Context, now time.Time) ([]*domain.Auction, error) {
	return s.list(func(a *domain.Auction) bool { return a.DueToEnd(now) },
		func(a *domain.Auction) time.Time { return a.EndTime }), nil
}

func (s *Store) ListEndingSoon(_ context.Context, now time.Time, lookahead time.Duration) ([]*domain.Auction, error) {
	horizon := now.Add(lookahead)
	return s.list(func(a *domain.Auction) bool {
		return a.Status == domain.StatusActive &&
			a.EndingSoonNotifiedAt == nil &&
			a.EndTime.After(now) && !a.EndTime.After(horizon)
	}, func(a *domain.Auction) time.Time { return a.EndTime }), nil
}

func (s *Store) list(match func(*domain.Auction) bool, key func(*domain.Auction) time.Time) []*domain.Auction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Auction
	for _, a := range s.auctions {
		if match(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]).Before(key(out[j])) })
	return out
}

func (s *Store) ChangeStatus(_ context.Context, c domain.StatusChange) (*domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.guard(c.AuctionID, c.ExpectedVersion)
	if err != nil {
		return nil, err
	}
	if a.Status != c.From || !c.From.CanTransitionTo(c.To) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, a.Status, c.To)
	}
	a.Status = c.To
	a.UpdatedAt = c.At
	a.Version++
	return a.Clone(), nil
}

func (s *Store) Settle(_ context.Context, st *domain.Settlement) (*domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.guard(st.AuctionID, st.ExpectedVersion)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.StatusActive {
		return nil, fmt.Errorf("%w: status %s", domain.ErrAuctionNotActive, a.Status)
	}

	byID := make(map[uuid.UUID]*domain.Bid, len(s.bids[a.ID]))
	for _, b := range s.bids[a.ID] {
		byID[b.ID] = b
	}
	for _, ch := range st.Changes {
		b, ok := byID[ch.BidID]
		if !ok {
			return nil, fmt.Errorf("settle auction %s: bid %s not in ledger", a.ID, ch.BidID)
		}
		b.Status = ch.Status
	}
	a.Apply(st)
	return a.Clone(), nil
}

func (s *Store) MarkEndingSoonNotified(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[id]
	if !ok {
		return false, domain.ErrAuctionNotFound
	}
	if a.EndingSoonNotifiedAt != nil {
		return false, nil
	}
	t := at
	a.EndingSoonNotifiedAt = &t
	a.UpdatedAt = at
	a.Version++
	return true, nil
}

func (s *Store) Append(_ context.Context, c domain.BidCommit) (*domain.BidAppended, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.guard(c.Bid.AuctionID, c.ExpectedVersion)
	if err != nil {
		return nil, err
	}
	if !a.AcceptingBids(c.At) {
		return nil, fmt.Errorf("%w: status %s", domain.ErrAuctionNotActive, a.Status)
	}
	if !c.Bid.Amount.GreaterThan(a.CurrentBid) {
		return nil, &domain.BidTooLowError{Current: a.CurrentBid, Minimum: a.MinimumNextBid()}
	}

	var outbid *domain.Bid
	for _, b := range s.bids[a.ID] {
		if b.Status != domain.BidActive {
			continue
		}
		b.Status = domain.BidOutbid
		if outbid == nil || b.Outranks(outbid) {
			outbid = b
		}
	}

	s.seq++
	stored := *c.Bid
	stored.Seq = s.seq
	stored.Status = domain.BidActive
	s.bids[a.ID] = append(s.bids[a.ID], &stored)

	a.CurrentBid = stored.Amount
	a.BidCount++
	a.UpdatedAt = c.At
	a.Version++

	res := &domain.BidAppended{Bid: cloneBid(&stored), Auction: a.Clone()}
	if outbid != nil {
		res.Outbid = cloneBid(outbid)
	}
	return res, nil
}

func (s *Store) CurrentHighest(_ context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if top := domain.Highest(s.bids[auctionID]); top != nil {
		return cloneBid(top), nil
	}
	return nil, nil
}

func (s *Store) Ledger(_ context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Bid, 0, len(s.bids[auctionID]))
	for _, b := range s.bids[auctionID] {
		out = append(out, cloneBid(b))
	}
	return out, nil
}

func (s *Store) ListByAmount(ctx context.Context, auctionID uuid.UUID, offset, limit int) ([]*domain.Bid, error) {
	bids, _ := s.Ledger(ctx, auctionID)
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Outranks(bids[j]) })

	if offset < 0 || limit < 1 {
		return nil, fmt.Errorf("%w: offset %d limit %d", domain.ErrInvalidInput, offset, limit)
	}
	if offset >= len(bids) {
		return []*domain.Bid{}, nil
	}
	end := offset + limit
	if end > len(bids) || end < offset {
		end = len(bids)
	}
	return bids[offset:end], nil
}

// guard returns the stored auction when it exists and still has the expected version.
// Callers must hold s.mu.
func (s *Store) guard(id uuid.UUID, expectedVersion int64) (*domain.Auction, error) {
	a, ok := s.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	if a.Version != expectedVersion {
		return nil, fmt.Errorf("auction %s at version %d, expected %d: %w", id, a.Version, expectedVersion, domain.ErrRaceLost)
	}
	return a, nil
}

func cloneBid(b *domain.Bid) *domain.Bid {
	c := *b
	return &c
}
