package http

import (
	"context"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/application"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/scheduler"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/logger"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Sweeper runs one scheduler sweep on demand.
type Sweeper interface {
	SweepOnce(ctx context.Context) (scheduler.SweepReport, error)
}

// AuctionHandler serves the REST surface of the auction module.
type AuctionHandler struct {
	auctionService application.AuctionService
	sweeper        Sweeper
}

func NewAuctionHandler(auctionService application.AuctionService, sweeper Sweeper) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
		sweeper:        sweeper,
	}
}

// RegisterRoutes mounts the handlers under /api.
func (h *AuctionHandler) RegisterRoutes(router fiber.Router) {
	api := router.Group("/api")

	auctions := api.Group("/auctions")
	auctions.Post("/", h.CreateAuction)
	auctions.Get("/:id", h.GetAuction)
	auctions.Post("/:id/bids", h.PlaceBid)
	auctions.Get("/:id/bids", h.ListBids)
	auctions.Get("/:id/highest", h.CurrentHighest)
	auctions.Post("/:id/end", h.EndAuction)
	auctions.Post("/:id/cancel", h.CancelAuction)

	api.Post("/admin/sweep", h.Sweep)
}

func (h *AuctionHandler) CreateAuction(c *fiber.Ctx) error {
	var req CreateAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, errInvalidBody)
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		return respondInvalid(c, err)
	}

	auction, err := h.auctionService.CreateAuction(c.UserContext(), req.toDTO())
	if err != nil {
		return respondError(c, err)
	}
	log.Info("auction created",
		zap.String("auctionID", auction.ID.String()),
		zap.String("productID", auction.ProductID.String()),
	)
	return c.Status(fiber.StatusCreated).JSON(toAuctionResponse(auction))
}

func (h *AuctionHandler) GetAuction(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return respondBadRequest(c, err)
	}
	state, err := h.auctionService.GetAuctionState(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStateResponse(state))
}

func (h *AuctionHandler) PlaceBid(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return respondBadRequest(c, err)
	}
	var req PlaceBidRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, errInvalidBody)
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		return respondInvalid(c, err)
	}

	bid, err := h.auctionService.PlaceBid(c.UserContext(), application.PlaceBidDTO{
		AuctionID: id,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBidResponse(bid))
}

func (h *AuctionHandler) ListBids(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return respondBadRequest(c, err)
	}
	q := application.ListBidsDTO{
		AuctionID: id,
		Page:      c.QueryInt("page"),
		Limit:     c.QueryInt("limit"),
	}.WithDefaults()
	bids, err := h.auctionService.ListBids(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}

	out := BidPageResponse{Page: q.Page, Limit: q.Limit, Bids: make([]BidResponse, 0, len(bids))}
	for _, b := range bids {
		out.Bids = append(out.Bids, toBidResponse(b))
	}
	return c.JSON(out)
}

func (h *AuctionHandler) CurrentHighest(c *fiber.Ctx) error {
	id, err := auctionID(c)
	if err != nil {
		return respondBadRequest(c, err)
	}
	bid, err := h.auctionService.CurrentHighest(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if bid == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: errNoBids.Error(), Code: domain.KindNotFound})
	}
	return c.JSON(toBidResponse(bid))
}

func (h *AuctionHandler) EndAuction(c *fiber.Ctx) error {
	return h.manage(c, h.auctionService.EndAuctionNow)
}

func (h *AuctionHandler) CancelAuction(c *fiber.Ctx) error {
	return h.manage(c, h.auctionService.CancelAuction)
}

func (h *AuctionHandler) manage(c *fiber.Ctx, action func(context.Context, application.ManageAuctionDTO) (*domain.Auction, error)) error {
	id, err := auctionID(c)
	if err != nil {
		return respondBadRequest(c, err)
	}
	var req ManageAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, errInvalidBody)
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		return respondInvalid(c, err)
	}

	auction, err := action(c.UserContext(), application.ManageAuctionDTO{AuctionID: id, RequesterID: req.RequesterID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toAuctionResponse(auction))
}

// Sweep triggers one scheduler pass, 409 while another one is running.
func (h *AuctionHandler) Sweep(c *fiber.Ctx) error {
	report, err := h.sweeper.SweepOnce(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

func auctionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errInvalidAuctionID
	}
	return id, nil
}
