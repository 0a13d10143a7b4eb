package http

import (
	"errors"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"github.com/cristianortiz/auctionlifecycle/internal/auction/scheduler"
	"github.com/cristianortiz/auctionlifecycle/internal/shared/validator"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	errInvalidBody      = errors.New("invalid request body")
	errInvalidAuctionID = errors.New("invalid auction id")
	errNoBids           = errors.New("auction has no bids")
)

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:    fiber.StatusUnprocessableEntity,
	domain.KindStateConflict: fiber.StatusConflict,
	domain.KindNotAuthorized: fiber.StatusForbidden,
	domain.KindNotFound:      fiber.StatusNotFound,
	domain.KindRaceLost:      fiber.StatusConflict,
	domain.KindInternal:      fiber.StatusInternalServerError,
}

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(kind domain.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as an ErrorResponse. Internal errors are logged and masked.
func respondError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	body := ErrorResponse{Error: err.Error(), Code: kind}

	switch {
	case errors.Is(err, scheduler.ErrSweepInProgress):
		body.Code = domain.KindStateConflict
		return c.Status(fiber.StatusConflict).JSON(body)
	case kind == domain.KindInternal:
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		body.Error = "internal error"
	}
	if m, ok := domain.MinimumBid(err); ok {
		body.MinimumAmount = &m
	}
	return c.Status(StatusFor(kind)).JSON(body)
}

// respondBadRequest answers a request that could not be decoded at all.
func respondBadRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: err.Error(),
		Code:  domain.KindValidation,
	})
}

// respondInvalid answers a decoded request that failed its struct tags.
func respondInvalid(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Error:  "request validation failed",
		Code:   domain.KindValidation,
		Fields: validator.Issues(err),
	})
}
