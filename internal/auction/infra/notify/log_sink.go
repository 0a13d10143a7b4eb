package notify

import (
	"context"

	"github.com/cristianortiz/auctionlifecycle/internal/auction/domain"
	"go.uber.org/zap"
)

// LogSink writes every event as a structured log line.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, e domain.Event) error {
	fields := []zap.Field{
		zap.String("eventType", string(e.Type)),
		zap.String("auctionID", e.AuctionID.String()),
		zap.String("productID", e.ProductID.String()),
		zap.Time("occurredAt", e.OccurredAt),
	}
	if e.NewStatus != "" {
		fields = append(fields, zap.String("previousStatus", string(e.PreviousStatus)), zap.String("status", string(e.NewStatus)))
	}
	if e.Outcome != "" {
		fields = append(fields, zap.String("outcome", string(e.Outcome)))
	}
	if e.WinnerID != nil {
		fields = append(fields, zap.String("winnerID", e.WinnerID.String()))
	}
	if e.BidderID != nil {
		fields = append(fields, zap.String("bidderID", e.BidderID.String()))
	}
	if e.Amount != nil {
		fields = append(fields, zap.String("amount", e.Amount.String()))
	}
	s.logger.Info("auction event", fields...)
	return nil
}
