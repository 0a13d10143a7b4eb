package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/application"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/application/mocks"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/scheduler"
	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubSweeper struct {
	report scheduler.SweepReport
	err    error
}

func (s stubSweeper) SweepOnce(context.Context) (scheduler.SweepReport, error) {
	return s.report, s.err
}

func newApp(t *testing.T, sweeper Sweeper) (*fiber.App, *mocks.MockAuctionService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAuctionService(ctrl)
	app := fiber.New()
	NewAuctionHandler(svc, sweeper).RegisterRoutes(app)
	return app, svc
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func sampleAuction() *domain.Auction {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Auction{
		ID:            uuid.New(),
		ProductID:     uuid.New(),
		SellerID:      uuid.New(),
		Type:          domain.TypeEnglish,
		StartingPrice: decimal.NewFromInt(100),
		CurrentBid:    decimal.NewFromInt(100),
		BidIncrement:  decimal.NewFromInt(10),
		StartTime:     now,
		EndTime:       now.Add(time.Hour),
		Status:        domain.StatusScheduled,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCreateAuction(t *testing.T) {
	app, svc := newApp(t, nil)
	a := sampleAuction()
	body := fmt.Sprintf(`{"product_id":%q,"auction_type":"ENGLISH","starting_price":"100","bid_increment":"10","start_time":%q,"end_time":%q}`,
		a.ProductID, a.StartTime.Format(time.RFC3339), a.EndTime.Format(time.RFC3339))

	var got application.CreateAuctionDTO
	svc.EXPECT().CreateAuction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd application.CreateAuctionDTO) (*domain.Auction, error) {
			got = cmd
			return a, nil
		})

	status, out := do(t, app, "POST", "/api/auctions", body)
	require.Equal(t, fiber.StatusCreated, status)
	require.Equal(t, a.ProductID, got.ProductID)
	require.Equal(t, domain.TypeEnglish, got.Type)
	require.True(t, got.StartingPrice.Equal(decimal.NewFromInt(100)))
	require.Nil(t, got.ReservePrice)
	require.True(t, got.StartTime.Equal(a.StartTime))
	require.Equal(t, a.ID.String(), out["id"])
	require.Equal(t, "SCHEDULED", out["status"])
	require.Equal(t, "100", out["current_bid"])
}

func TestCreateAuction_RequestErrors(t *testing.T) {
	app, svc := newApp(t, nil)

	status, out := do(t, app, "POST", "/api/auctions", "{")
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, string(domain.KindValidation), out["code"])

	status, out = do(t, app, "POST", "/api/auctions", `{"auction_type":"ENGLISH"}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)
	require.NotEmpty(t, out["fields"])

	a := sampleAuction()
	body := fmt.Sprintf(`{"product_id":%q,"auction_type":"DUTCH","starting_price":"100","bid_increment":"10","start_time":%q,"end_time":%q}`,
		a.ProductID, a.StartTime.Format(time.RFC3339), a.EndTime.Format(time.RFC3339))
	svc.EXPECT().CreateAuction(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("create auction: %w", domain.ErrUnsupportedAuctionType))
	status, out = do(t, app, "POST", "/api/auctions", body)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)
	require.Equal(t, string(domain.KindValidation), out["code"])
}

func TestGetAuction(t *testing.T) {
	app, svc := newApp(t, nil)
	a := sampleAuction()
	top := &domain.Bid{ID: uuid.New(), AuctionID: a.ID, BidderID: uuid.New(), Amount: decimal.NewFromInt(120), Status: domain.BidActive}
	svc.EXPECT().GetAuctionState(gomock.Any(), a.ID).Return(&application.AuctionStateDTO{
		Auction:        a,
		HighestBid:     top,
		MinimumNextBid: decimal.NewFromInt(130),
	}, nil)

	status, out := do(t, app, "GET", "/api/auctions/"+a.ID.String(), "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "130", out["minimum_next_bid"])
	require.Equal(t, top.ID.String(), out["highest_bid"].(map[string]any)["bid_id"])

	status, _ = do(t, app, "GET", "/api/auctions/nope", "")
	require.Equal(t, fiber.StatusBadRequest, status)

	missing := uuid.New()
	svc.EXPECT().GetAuctionState(gomock.Any(), missing).Return(nil, domain.ErrAuctionNotFound)
	status, out = do(t, app, "GET", "/api/auctions/"+missing.String(), "")
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, string(domain.KindNotFound), out["code"])
}

func TestPlaceBid_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    domain.Kind
		minimum string
	}{
		{"too low", &domain.BidTooLowError{Current: decimal.NewFromInt(100), Minimum: decimal.NewFromInt(110)}, fiber.StatusUnprocessableEntity, domain.KindValidation, "110"},
		{"not active", domain.ErrAuctionNotActive, fiber.StatusConflict, domain.KindStateConflict, ""},
		{"self bid", domain.ErrSelfBidForbidden, fiber.StatusForbidden, domain.KindNotAuthorized, ""},
		{"unknown bidder", domain.ErrBidderNotFound, fiber.StatusNotFound, domain.KindNotFound, ""},
		{"race lost", domain.ErrRaceLost, fiber.StatusConflict, domain.KindRaceLost, ""},
		{"internal", fmt.Errorf("connection reset"), fiber.StatusInternalServerError, domain.KindInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, svc := newApp(t, nil)
			id := uuid.New()
			svc.EXPECT().PlaceBid(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("place bid: %w", tt.err))

			status, out := do(t, app, "POST", "/api/auctions/"+id.String()+"/bids",
				fmt.Sprintf(`{"bidder_id":%q,"amount":"105"}`, uuid.New()))
			require.Equal(t, tt.status, status)
			require.Equal(t, string(tt.code), out["code"])
			if tt.minimum != "" {
				require.Equal(t, tt.minimum, out["minimum_amount"])
			} else {
				require.NotContains(t, out, "minimum_amount")
			}
			if tt.code == domain.KindInternal {
				require.Equal(t, "internal error", out["error"])
			}
		})
	}
}

func TestPlaceBid_Created(t *testing.T) {
	app, svc := newApp(t, nil)
	auctionID, bidderID := uuid.New(), uuid.New()
	svc.EXPECT().PlaceBid(gomock.Any(), application.PlaceBidDTO{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    decimal.RequireFromString("125.50"),
	}).Return(&domain.Bid{ID: uuid.New(), AuctionID: auctionID, BidderID: bidderID, Amount: decimal.RequireFromString("125.5"), Status: domain.BidActive}, nil)

	status, out := do(t, app, "POST", "/api/auctions/"+auctionID.String()+"/bids",
		fmt.Sprintf(`{"bidder_id":%q,"amount":"125.50"}`, bidderID))
	require.Equal(t, fiber.StatusCreated, status)
	require.Equal(t, "ACTIVE", out["status"])
	require.Equal(t, "125.5", out["amount"])
}

func TestListBids(t *testing.T) {
	app, svc := newApp(t, nil)
	id := uuid.New()
	svc.EXPECT().ListBids(gomock.Any(), application.ListBidsDTO{AuctionID: id, Page: 2, Limit: 5}).
		Return([]*domain.Bid{{ID: uuid.New(), AuctionID: id, Amount: decimal.NewFromInt(150)}}, nil)

	status, out := do(t, app, "GET", "/api/auctions/"+id.String()+"/bids?page=2&limit=5", "")
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 2, out["page"])
	require.Len(t, out["bids"], 1)

	svc.EXPECT().ListBids(gomock.Any(), application.ListBidsDTO{AuctionID: id, Page: 1, Limit: 20}).Return(nil, nil)
	status, out = do(t, app, "GET", "/api/auctions/"+id.String()+"/bids?page=0", "")
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 1, out["page"])
	require.EqualValues(t, 20, out["limit"])
	require.Empty(t, out["bids"])

	svc.EXPECT().ListBids(gomock.Any(), application.ListBidsDTO{AuctionID: id, Page: 1, Limit: 500}).
		Return(nil, fmt.Errorf("%w: limit must be between 1 and 100", domain.ErrInvalidInput))
	status, _ = do(t, app, "GET", "/api/auctions/"+id.String()+"/bids?limit=500", "")
	require.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestCurrentHighest(t *testing.T) {
	app, svc := newApp(t, nil)
	id := uuid.New()
	svc.EXPECT().CurrentHighest(gomock.Any(), id).Return(nil, nil)
	status, out := do(t, app, "GET", "/api/auctions/"+id.String()+"/highest", "")
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, errNoBids.Error(), out["error"])

	bid := &domain.Bid{ID: uuid.New(), AuctionID: id, Amount: decimal.NewFromInt(200)}
	svc.EXPECT().CurrentHighest(gomock.Any(), id).Return(bid, nil)
	status, out = do(t, app, "GET", "/api/auctions/"+id.String()+"/highest", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, bid.ID.String(), out["bid_id"])
}

func TestManageRoutes(t *testing.T) {
	app, svc := newApp(t, nil)
	a := sampleAuction()
	requester := uuid.New()
	body := fmt.Sprintf(`{"requester_id":%q}`, requester)

	ended := *a
	ended.Status = domain.StatusEnded
	ended.Outcome = domain.OutcomeNoBids
	svc.EXPECT().EndAuctionNow(gomock.Any(), application.ManageAuctionDTO{AuctionID: a.ID, RequesterID: requester}).Return(&ended, nil)
	status, out := do(t, app, "POST", "/api/auctions/"+a.ID.String()+"/end", body)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "ENDED", out["status"])

	svc.EXPECT().CancelAuction(gomock.Any(), application.ManageAuctionDTO{AuctionID: a.ID, RequesterID: requester}).
		Return(nil, domain.ErrNotAuthorized)
	status, out = do(t, app, "POST", "/api/auctions/"+a.ID.String()+"/cancel", body)
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, string(domain.KindNotAuthorized), out["code"])

	status, _ = do(t, app, "POST", "/api/auctions/"+a.ID.String()+"/cancel", `{}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestSweep(t *testing.T) {
	app, _ := newApp(t, stubSweeper{report: scheduler.SweepReport{Started: 2, Ended: 1}})
	status, out := do(t, app, "POST", "/api/admin/sweep", "")
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 2, out["started"])
	require.EqualValues(t, 1, out["ended"])

	app, _ = newApp(t, stubSweeper{err: scheduler.ErrSweepInProgress})
	status, out = do(t, app, "POST", "/api/admin/sweep", "")
	require.Equal(t, fiber.StatusConflict, status)
	require.Equal(t, string(domain.KindStateConflict), out["code"])
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, fiber.StatusUnprocessableEntity, StatusFor(domain.KindValidation))
	require.Equal(t, fiber.StatusConflict, StatusFor(domain.KindRaceLost))
	require.Equal(t, fiber.StatusInternalServerError, StatusFor("unknown"))
}
