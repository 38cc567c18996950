package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/internal/events"
	"github.com/alonebown/crewdesk/internal/observability"
)

// NotificationService delivers lifecycle notices to the initiating party.
// Delivery failures (user blocked the bot, left the platform) are logged and
// counted, never surfaced as transition errors.
type NotificationService struct {
	dispatcher events.Dispatcher
	messenger  chat.Messenger
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, messenger chat.Messenger, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		messenger:  messenger,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleClosed)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	var text string
	switch payload.NewStatus {
	case domain.TicketStatusAccepted:
		text = fmt.Sprintf(
			"Your ticket with ID %s has been accepted. Moderator that will review your ticket - %s. Please provide more information if you want.",
			event.TicketID, payload.Moderator)
	case domain.TicketStatusRejected:
		text = fmt.Sprintf("Your ticket with ID %s has been rejected.", event.TicketID)
	default:
		return nil
	}
	n.deliver(ctx, event, text)
	return nil
}

func (n *NotificationService) handleClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok || !payload.Explicit {
		return nil
	}
	n.deliver(ctx, event, fmt.Sprintf("Your ticket with ID %s has been closed.", event.TicketID))
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event, text string) {
	if err := n.messenger.SendDirect(ctx, event.Author.ID, text); err != nil {
		n.logger.Warn("could not deliver direct message",
			zap.String("ticket_id", event.TicketID),
			zap.Int64("user_id", event.Author.ID),
			zap.Error(err))
		n.metrics.RecordNotification("failed")
		return
	}
	n.metrics.RecordNotification("delivered")
}
