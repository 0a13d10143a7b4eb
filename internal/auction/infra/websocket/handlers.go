package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/application"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/logger"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/validator"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const roomSizeTimeout = 500 * time.Millisecond

// AuctionWSHandler handles the ws inbound msgs of the auction module and acks them to the sender.
// Room broadcasts are not sent from here, they come from HubSink once events are committed.
type AuctionWSHandler struct {
	auctionService application.AuctionService
	hub            *websocket.Hub
}

func NewAuctionWSHandler(auctionService application.AuctionService, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		auctionService: auctionService,
		hub:            hub,
	}
}

// RegisterRoutes mounts the auction rooms at /ws/auctions/:id.
func (h *AuctionWSHandler) RegisterRoutes(ctx context.Context, router fiber.Router) {
	router.Get("/ws/auctions/:id", h.checkAuction, h.hub.Handler(ctx, "id"))
}

// checkAuction refuses to open a room for an unknown auction.
func (h *AuctionWSHandler) checkAuction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid auction id")
	}
	if _, err := h.auctionService.GetAuctionState(c.UserContext(), id); err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, domain.ErrAuctionNotFound.Error())
		}
		return err
	}
	sizeCtx, cancel := context.WithTimeout(c.UserContext(), roomSizeTimeout)
	defer cancel()
	if watchers, err := h.hub.RoomSize(sizeCtx, id.String()); err == nil {
		log.Debug("client joining auction room",
			zap.String("auctionID", id.String()),
			zap.Int("watchers", watchers),
		)
	}
	return c.Next()
}

// ListenForMessages consumes the hub's inbound channel until ctx is done, one goroutine per message.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("AuctionWSHandler started listening for inbound messages from hub")
	for {
		select {
		case <-ctx.Done():
			log.Info("AuctionWSHandler stopped listening for inbound messages from hub")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, "invalid message format", domain.KindValidation, nil)
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientBid:
		h.handleClientBidMessage(ctx, client, data)
	default:
		h.sendErrorToClient(client, "unknown message type", domain.KindValidation, nil)
	}
}

func (h *AuctionWSHandler) handleClientBidMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var bidMsg ClientBidMessage
	if err := json.Unmarshal(data, &bidMsg); err != nil {
		h.sendErrorToClient(client, "invalid bid message format", domain.KindValidation, nil)
		return
	}
	if err := validator.GetValidator().Struct(bidMsg.Payload); err != nil {
		h.sendErrorToClient(client, "auction_id and bidder_id are required", domain.KindValidation, nil)
		return
	}
	if bidMsg.Payload.AuctionID.String() != client.Room {
		h.sendErrorToClient(client, "auction id does not match the joined room", domain.KindValidation, nil)
		return
	}

	bid, err := h.auctionService.PlaceBid(ctx, application.PlaceBidDTO{
		AuctionID: bidMsg.Payload.AuctionID,
		BidderID:  bidMsg.Payload.BidderID,
		Amount:    bidMsg.Payload.Amount,
	})
	if err != nil {
		var minimum *decimal.Decimal
		if m, ok := domain.MinimumBid(err); ok {
			minimum = &m
		}
		h.sendErrorToClient(client, err.Error(), domain.KindOf(err), minimum)
		return
	}

	ack := ServerBidAcceptedMessage{BaseMessage: BaseMessage{Type: MessageTypeServerBidAccepted}}
	ack.Payload.BidID = bid.ID
	ack.Payload.AuctionID = bid.AuctionID
	ack.Payload.BidderID = bid.BidderID
	ack.Payload.Amount = bid.Amount
	ack.Payload.CreatedAt = bid.CreatedAt
	h.send(client, ack)
}

func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, message string, code domain.Kind, minimum *decimal.Decimal) {
	errMsg := ServerErrorMessage{BaseMessage: BaseMessage{Type: MessageTypeServerError}}
	errMsg.Payload.Error = message
	errMsg.Payload.Code = code
	errMsg.Payload.MinimumAmount = minimum
	h.send(client, errMsg)
}

func (h *AuctionWSHandler) send(client *websocket.Client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal ws message", zap.Error(err))
		return
	}
	if !h.hub.SendToClient(client, data) {
		log.Warn("could not queue ws message for client", zap.String("clientID", client.ID))
	}
}
