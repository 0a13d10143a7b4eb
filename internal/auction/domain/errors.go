package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrAuctionNotFound          = errors.New("auction not found")
	ErrAuctionNotActive         = errors.New("auction is not active")
	ErrSelfBidForbidden         = errors.New("seller cannot bid on their own auction")
	ErrBidTooLow                = errors.New("bid amount is too low")
	ErrInvalidAmount            = errors.New("invalid monetary amount")
	ErrProductNotFound          = errors.New("product not found")
	ErrProductAlreadyHasAuction = errors.New("product already has an auction")
	ErrInvalidTimeWindow        = errors.New("invalid auction time window")
	ErrNotAuthorized            = errors.New("requester is not authorized for this auction")
	ErrRaceLost                 = errors.New("auction was modified concurrently")
	ErrCancelWithBids           = errors.New("auction cannot be cancelled once bids exist")
	ErrUnsupportedAuctionType   = errors.New("auction type is not supported")
	ErrBidderNotFound           = errors.New("bidder not found")
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidTransition        = errors.New("invalid auction status transition")
)

// BidTooLowError tells the caller which amount would have been accepted.
type BidTooLowError struct {
	Current decimal.Decimal
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%s: minimum bid is %s", ErrBidTooLow, e.Minimum.StringFixed(2))
}

func (e *BidTooLowError) Unwrap() error { return ErrBidTooLow }

// Kind groups errors by how a caller should react to them.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindStateConflict Kind = "state_conflict"
	KindNotAuthorized Kind = "not_authorized"
	KindNotFound      Kind = "not_found"
	KindRaceLost      Kind = "race_lost"
	KindInternal      Kind = "internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrRaceLost, KindRaceLost},
	{ErrAuctionNotFound, KindNotFound},
	{ErrProductNotFound, KindNotFound},
	{ErrBidderNotFound, KindNotFound},
	{ErrNotAuthorized, KindNotAuthorized},
	{ErrSelfBidForbidden, KindNotAuthorized},
	{ErrAuctionNotActive, KindStateConflict},
	{ErrProductAlreadyHasAuction, KindStateConflict},
	{ErrCancelWithBids, KindStateConflict},
	{ErrInvalidTransition, KindStateConflict},
	{ErrBidTooLow, KindValidation},
	{ErrInvalidAmount, KindValidation},
	{ErrInvalidTimeWindow, KindValidation},
	{ErrUnsupportedAuctionType, KindValidation},
	{ErrInvalidInput, KindValidation},
}

// KindOf classifies err, anything unknown is KindInternal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// MinimumBid extracts the minimum acceptable amount carried by a BidTooLowError.
func MinimumBid(err error) (decimal.Decimal, bool) {
	var tooLow *BidTooLowError
	if errors.As(err, &tooLow) {
		return tooLow.Minimum, true
	}
	return decimal.Zero, false
}
