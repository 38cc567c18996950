package events

import (
	"time"

	"github.com/alonebown/crewdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketMessageAdded  EventType = "ticket_message_added"
	EventTicketClosed        EventType = "ticket_closed"
)

// Event represents a lifecycle event emitted by the state machine.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	TicketID  string          `json:"ticket_id"`
	Author    domain.Identity `json:"author"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	MessageCount int `json:"message_count"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	NewStatus  domain.TicketStatus `json:"new_status"`
	ActionedBy string              `json:"actioned_by"`
	Moderator  string              `json:"moderator,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Moderator string `json:"moderator"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	Author      string `json:"author"`
	BodyPreview string `json:"body_preview"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Explicit bool   `json:"explicit"`
	ClosedBy string `json:"closed_by,omitempty"`
}
