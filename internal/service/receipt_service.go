package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/coinbox/coinbox-mod-sales/internal/config"
	"github.com/coinbox/coinbox-mod-sales/internal/events"
)

// ReceiptService turns closed tickets into receipts for downstream consumers:
// it logs the settlement and publishes the receipt JSON on a Redis channel
// the printing/presentation side subscribes to.
type ReceiptService struct {
	dispatcher events.Dispatcher
	publisher  *redis.Client
	logger     *zap.Logger
	cfg        config.SalesConfig
}

// NewReceiptService creates the service.
func NewReceiptService(dispatcher events.Dispatcher, publisher *redis.Client, logger *zap.Logger, cfg config.SalesConfig) *ReceiptService {
	return &ReceiptService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (s *ReceiptService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventTicketClosed, s.handleTicketClosed)
	s.dispatcher.Subscribe(events.EventTicketCancelled, s.handleTicketCancelled)
}

func (s *ReceiptService) handleTicketClosed(ctx context.Context, event events.Event) error {
	s.logger.Info("TicketClosed",
		zap.String("ticket_id", event.TicketID),
		zap.String("session_id", event.SessionID))

	if s.publisher == nil || s.cfg.ReceiptChannel == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, s.cfg.ReceiptChannel, payload).Err(); err != nil {
		s.logger.Warn("receipt publish failed", zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
	return nil
}

func (s *ReceiptService) handleTicketCancelled(ctx context.Context, event events.Event) error {
	s.logger.Info("TicketCancelled",
		zap.String("ticket_id", event.TicketID),
		zap.String("session_id", event.SessionID))
	return nil
}
