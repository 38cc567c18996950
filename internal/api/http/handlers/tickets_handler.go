package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/internal/service"
)

// TicketsHandler exposes a read-only view of open tickets for operators who
// prefer HTTP over the chat panel.
type TicketsHandler struct {
	browser *service.BrowserService
}

// NewTicketsHandler returns a new handler instance.
func NewTicketsHandler(browser *service.BrowserService) *TicketsHandler {
	return &TicketsHandler{browser: browser}
}

// List returns one page of open tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	pageIndex := c.QueryInt("page", 0)
	page, err := h.browser.Page(c.UserContext(), pageIndex)
	if err != nil {
		return err
	}

	items := make([]fiber.Map, 0, len(page.Items))
	for _, summary := range page.Items {
		items = append(items, fiber.Map{
			"id":         summary.ID,
			"author":     summary.AuthorName,
			"created_at": summary.CreatedAt,
			"status":     summary.Status,
			"open_state": summary.Open,
		})
	}
	return c.JSON(fiber.Map{
		"page":     page.Index,
		"has_prev": page.HasPrev,
		"has_next": page.HasNext,
		"items":    items,
	})
}

// Detail returns the full record for one ticket.
func (h *TicketsHandler) Detail(c *fiber.Ctx) error {
	ticket, err := h.browser.Detail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"ticket_id":   ticket.ID,
		"author":      ticket.Author.Name,
		"user_id":     ticket.Author.ID,
		"created_at":  ticket.CreatedAt,
		"messages":    ticket.Messages,
		"status":      ticket.Status,
		"actioned_by": ticket.ActionedBy,
		"moderator":   ticket.Moderator,
		"closed":      ticket.Open == domain.TicketClosed,
	})
}
