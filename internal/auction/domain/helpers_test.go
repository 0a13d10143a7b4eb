package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var (
	t0     = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seller = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	bidder = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// activeAuction returns an auction open for one hour from t0 with currentBid=100, increment=10.
func activeAuction() *Auction {
	return &Auction{
		ID:            uuid.New(),
		ProductID:     uuid.New(),
		SellerID:      seller,
		Type:          TypeEnglish,
		StartingPrice: dec("100"),
		CurrentBid:    dec("100"),
		BidIncrement:  dec("10"),
		StartTime:     t0,
		EndTime:       t0.Add(time.Hour),
		Status:        StatusActive,
		Version:       3,
	}
}
