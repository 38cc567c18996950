package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/internal/events"
	"github.com/alonebown/crewdesk/internal/observability"
)

func newNotificationHarness(messenger *fakeMessenger) (events.Dispatcher, *observability.Metrics) {
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	NewNotificationService(dispatcher, messenger, metrics, zap.NewNop()).RegisterHandlers()
	return dispatcher, metrics
}

func publishStatusChange(t *testing.T, dispatcher events.Dispatcher, status domain.TicketStatus, moderator string) {
	t.Helper()
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: "t-1",
		Author:   domain.Identity{ID: 7, Name: "bob"},
		Payload: events.TicketStatusChangedPayload{
			NewStatus:  status,
			ActionedBy: "mod",
			Moderator:  moderator,
		},
	}))
}

func TestAcceptanceNoticeDelivered(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher, metrics := newNotificationHarness(messenger)

	publishStatusChange(t, dispatcher, domain.TicketStatusAccepted, "mod")

	assert.Equal(t, []string{
		"Your ticket with ID t-1 has been accepted. Moderator that will review your ticket - mod. Please provide more information if you want.",
	}, messenger.directTexts(7))
	assert.Equal(t, int64(1), metrics.Snapshot()["notifications"]["delivered"])
}

func TestRejectionNoticeDelivered(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher, _ := newNotificationHarness(messenger)

	publishStatusChange(t, dispatcher, domain.TicketStatusRejected, "")

	assert.Equal(t, []string{"Your ticket with ID t-1 has been rejected."}, messenger.directTexts(7))
}

func TestCloseNoticeOnlyForExplicitClosure(t *testing.T) {
	messenger := newFakeMessenger()
	dispatcher, _ := newNotificationHarness(messenger)
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: "t-1",
		Author:   domain.Identity{ID: 7, Name: "bob"},
		Payload:  events.TicketClosedPayload{Explicit: false},
	}))
	assert.Empty(t, messenger.directTexts(7))

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: "t-1",
		Author:   domain.Identity{ID: 7, Name: "bob"},
		Payload:  events.TicketClosedPayload{Explicit: true, ClosedBy: "mod"},
	}))
	assert.Equal(t, []string{"Your ticket with ID t-1 has been closed."}, messenger.directTexts(7))
}

func TestDeliveryFailureCountedNotFatal(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.directErr = errors.New("bot was blocked by the user")
	dispatcher, metrics := newNotificationHarness(messenger)

	publishStatusChange(t, dispatcher, domain.TicketStatusRejected, "")

	assert.Empty(t, messenger.directTexts(7))
	counters := metrics.Snapshot()["notifications"]
	assert.Equal(t, int64(1), counters["failed"])
	assert.Zero(t, counters["delivered"])
}
