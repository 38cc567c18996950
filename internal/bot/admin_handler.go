package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/internal/repository"
	"github.com/alonebown/crewdesk/internal/service"
	"github.com/alonebown/crewdesk/pkg/util"
)

func (r *Router) handlePanel(ctx context.Context, cmd chat.Command) {
	if !r.requireAdministrator(ctx, cmd) {
		return
	}
	page, err := r.browser.Page(ctx, 0)
	if err != nil {
		r.reply(ctx, cmd.ChatID, util.ToDomainError(err).Message)
		return
	}
	text, rows := r.renderPanel(page)
	if _, err := r.messenger.SendWithButtons(ctx, cmd.ChatID, text, rows); err != nil {
		r.logger.Warn("panel send failed", zap.Error(err))
	}
}

func (r *Router) handlePageFlip(ctx context.Context, cb chat.Callback, args []string) {
	pageIndex := 0
	if len(args) > 0 {
		if parsed, err := strconv.Atoi(args[0]); err == nil {
			pageIndex = parsed
		}
	}
	page, err := r.browser.Page(ctx, pageIndex)
	if err != nil {
		r.answer(ctx, cb, util.ToDomainError(err).Message)
		return
	}
	text, rows := r.renderPanel(page)
	if err := r.messenger.EditButtons(ctx, cb.ChatID, cb.MessageID, text, rows); err != nil {
		r.logger.Warn("panel edit failed", zap.Error(err))
	}
	r.answer(ctx, cb, "")
}

func (r *Router) handleDetailCommand(ctx context.Context, cmd chat.Command) {
	if !r.requireAdministrator(ctx, cmd) {
		return
	}
	id := strings.TrimSpace(cmd.Args)
	if id == "" {
		r.reply(ctx, cmd.ChatID, "Usage: /aticket <ticket id>")
		return
	}
	if err := r.sendDetail(ctx, cmd.ChatID, id); err != nil {
		r.reply(ctx, cmd.ChatID, util.ToDomainError(err).Message)
	}
}

// handleNote arms a wait for the moderator's next message in this chat and
// appends it to the ticket. The wait can last the full collection timeout, so
// it runs off the update loop.
func (r *Router) handleNote(ctx context.Context, cb chat.Callback, ticketID string) {
	r.answer(ctx, cb, "Please provide the answer to the latest message below.")
	go func() {
		waitCtx := context.WithoutCancel(ctx)
		if err := r.lifecycle.RecordConversation(waitCtx, ticketID, cb.From, cb.ChatID); err != nil {
			r.reply(waitCtx, cb.ChatID, util.ToDomainError(err).Message)
			return
		}
		r.reply(waitCtx, cb.ChatID, "Message and attachments collected successfully.")
	}()
}

func (r *Router) sendDetail(ctx context.Context, chatID int64, id string) error {
	ticket, err := r.browser.Detail(ctx, id)
	if err != nil {
		return err
	}
	rows := [][]chat.Button{{
		{Label: "Record a conversation", Data: service.EncodeCallback(service.ActionNote, ticket.ID)},
		{Label: "Close", Data: service.EncodeCallback(service.ActionClose, ticket.ID)},
	}}
	if _, err := r.messenger.SendWithButtons(ctx, chatID, renderDetail(ticket), rows); err != nil {
		return util.NewInternalError(err)
	}
	return nil
}

func (r *Router) renderPanel(page service.Page) (string, [][]chat.Button) {
	var b strings.Builder
	fmt.Fprintf(&b, "Open tickets, page %d\n", page.Index+1)
	if len(page.Items) == 0 {
		b.WriteString("\nNo open tickets.")
	}

	var rows [][]chat.Button
	for _, summary := range page.Items {
		fmt.Fprintf(&b, "\n%s\n%s at %s, %s\n", summary.ID, summary.AuthorName, summary.CreatedAt, summary.Status)
		rows = append(rows, []chat.Button{{
			Label: "Ticket " + shortID(summary.ID),
			Data:  service.EncodeCallback(service.ActionDetail, summary.ID),
		}})
	}

	var nav []chat.Button
	if page.HasPrev {
		nav = append(nav, chat.Button{
			Label: "Previous",
			Data:  service.EncodeCallback(service.ActionPage, strconv.Itoa(page.Index-1)),
		})
	}
	if page.HasNext {
		nav = append(nav, chat.Button{
			Label: "Next",
			Data:  service.EncodeCallback(service.ActionPage, strconv.Itoa(page.Index+1)),
		})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return b.String(), rows
}

func renderDetail(ticket *domain.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket %s\n", ticket.ID)
	fmt.Fprintf(&b, "Author: %s (%d)\n", ticket.Author.Name, ticket.Author.ID)
	fmt.Fprintf(&b, "Created: %s\n", ticket.CreatedAt.Format(repository.TimestampLayout))
	fmt.Fprintf(&b, "Status: %s, %s\n", ticket.Status, ticket.Open)
	if ticket.Moderator != "" {
		fmt.Fprintf(&b, "Moderator: %s\n", ticket.Moderator)
	}
	b.WriteString("\n")
	for _, msg := range ticket.Messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Author, msg.Content)
		for _, url := range msg.Attachments {
			fmt.Fprintf(&b, "  %s\n", url)
		}
	}
	return b.String()
}
