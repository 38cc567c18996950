package domain

import "time"

// TicketStatus enumerates moderation outcomes for a ticket.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "Pending"
	TicketStatusAccepted TicketStatus = "Accepted"
	TicketStatusRejected TicketStatus = "Rejected"
)

// Actioned reports whether a moderator already accepted or rejected.
func (s TicketStatus) Actioned() bool {
	return s == TicketStatusAccepted || s == TicketStatusRejected
}

// OpenState tracks whether a ticket still accepts follow-ups. It is an
// independent axis from TicketStatus: an accepted ticket stays open until it
// is closed explicitly or by inactivity.
type OpenState string

const (
	TicketOpen   OpenState = "Open"
	TicketClosed OpenState = "Closed"
)

// Identity names a chat user together with their stable platform id.
type Identity struct {
	ID   int64
	Name string
}

// Message is one entry of a ticket conversation. Attachments hold the
// original URLs; downloaded copies live in the attachment store.
type Message struct {
	Author      string   `json:"author"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

// Ticket is the aggregate for a support request opened via direct message.
type Ticket struct {
	ID         string
	Author     Identity
	CreatedAt  time.Time
	Messages   []Message
	Status     TicketStatus
	ActionedBy string
	Moderator  string
	Open       OpenState
}

// Summary is the ledger-backed listing projection used by the admin panel.
type Summary struct {
	ID         string
	AuthorName string
	CreatedAt  string
	Status     TicketStatus
	Open       OpenState
}
