package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/pkg/util"
)

// Ledger columns, 1-based. The status block (status, actioned_by, open_state,
// moderator) is rewritten in place on transitions; everything else is
// append-only.
const (
	colID = iota + 1
	colAuthor
	colCreatedAt
	colMessages
	colStatus
	colActionedBy
	colOpenState
	colModerator

	ledgerWidth = colModerator
)

// TimestampLayout is the civil-time format used in both backends.
const TimestampLayout = "2006-01-02 15:04:05"

// TicketRepository is the durable record store for tickets: one ledger row
// and one JSON document per ticket, joined by id.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	AppendMessage(ctx context.Context, id string, msg domain.Message) error
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, actionedBy string, open domain.OpenState, moderator string) error
	Find(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, offset, limit int) ([]domain.Summary, error)
}

type ticketRepository struct {
	ledger Ledger
	docs   *DocumentStore
	loc    *time.Location
	logger *zap.Logger
}

// NewTicketRepository combines the ledger and document backends. Writes go
// ledger first, then document; a partial failure is logged and surfaced but
// never rolled back.
func NewTicketRepository(ledger Ledger, docs *DocumentStore, loc *time.Location, logger *zap.Logger) TicketRepository {
	return &ticketRepository{ledger: ledger, docs: docs, loc: loc, logger: logger}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	createdAt := ticket.CreatedAt.In(r.loc).Format(TimestampLayout)

	contents := make([]string, 0, len(ticket.Messages))
	for _, msg := range ticket.Messages {
		contents = append(contents, msg.Content)
	}
	row := []string{
		ticket.ID,
		ticket.Author.Name,
		createdAt,
		strings.Join(contents, "\n"),
		string(ticket.Status),
		ticket.ActionedBy,
		string(ticket.Open),
		ticket.Moderator,
	}
	if err := r.ledger.AppendRow(ctx, row); err != nil {
		return util.NewStorageError("ledger", err)
	}

	doc := &TicketDocument{
		TicketID:   ticket.ID,
		Author:     ticket.Author.Name,
		UserID:     ticket.Author.ID,
		CreatedAt:  createdAt,
		Messages:   ticket.Messages,
		Status:     ticket.Status,
		ActionedBy: ticket.ActionedBy,
		Moderator:  ticket.Moderator,
		Closed:     ticket.Open,
	}
	if err := r.docs.Write(doc); err != nil {
		// Ledger row exists without a document; surfaced, not rolled back.
		r.logger.Warn("ledger updated without document",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *ticketRepository) AppendMessage(ctx context.Context, id string, msg domain.Message) error {
	doc, err := r.docs.Read(id)
	if err != nil {
		return err
	}
	doc.Messages = append(doc.Messages, msg)
	return r.docs.Write(doc)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, actionedBy string, open domain.OpenState, moderator string) error {
	row, err := r.ledger.FindRow(ctx, colID, id)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return util.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return util.NewStorageError("ledger", err)
	}
	cells := []string{string(status), actionedBy, string(open), moderator}
	if err := r.ledger.UpdateCells(ctx, row, colStatus, cells); err != nil {
		return util.NewStorageError("ledger", err)
	}

	doc, err := r.docs.Read(id)
	if err != nil {
		r.logger.Warn("ledger updated without document",
			zap.String("ticket_id", id), zap.Error(err))
		return err
	}
	doc.Status = status
	doc.ActionedBy = actionedBy
	doc.Moderator = moderator
	doc.Closed = open
	return r.docs.Write(doc)
}

func (r *ticketRepository) Find(ctx context.Context, id string) (*domain.Ticket, error) {
	doc, err := r.docs.Read(id)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.ParseInLocation(TimestampLayout, doc.CreatedAt, r.loc)
	if err != nil {
		return nil, util.NewCorruptRecord(id, err)
	}
	return &domain.Ticket{
		ID:         doc.TicketID,
		Author:     domain.Identity{ID: doc.UserID, Name: doc.Author},
		CreatedAt:  createdAt,
		Messages:   doc.Messages,
		Status:     doc.Status,
		ActionedBy: doc.ActionedBy,
		Moderator:  doc.Moderator,
		Open:       doc.Closed,
	}, nil
}

func (r *ticketRepository) List(ctx context.Context, offset, limit int) ([]domain.Summary, error) {
	rows, err := r.ledger.ReadRows(ctx, offset, limit)
	if err != nil {
		return nil, util.NewStorageError("ledger", err)
	}
	summaries := make([]domain.Summary, 0, len(rows))
	for _, row := range rows {
		if len(row) < ledgerWidth || row[colID-1] == "" {
			continue
		}
		summaries = append(summaries, domain.Summary{
			ID:         row[colID-1],
			AuthorName: row[colAuthor-1],
			CreatedAt:  row[colCreatedAt-1],
			Status:     domain.TicketStatus(row[colStatus-1]),
			Open:       domain.OpenState(row[colOpenState-1]),
		})
	}
	return summaries, nil
}
