// Package bot routes slash commands and button callbacks to the services.
// It is the user-facing boundary: every domain error is turned into a short
// reply here and nothing propagates as process-fatal.
package bot

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/internal/config"
	"github.com/alonebown/crewdesk/internal/observability"
	"github.com/alonebown/crewdesk/internal/service"
	"github.com/alonebown/crewdesk/pkg/util"
)

// Router implements chat.Handler over the bot's services.
type Router struct {
	cfg        config.BotConfig
	lifecycle  *service.LifecycleService
	assignment *service.AssignmentService
	browser    *service.BrowserService
	roster     *service.RosterService
	messenger  chat.Messenger
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// RouterDependencies bundles collaborators for the router.
type RouterDependencies struct {
	Lifecycle  *service.LifecycleService
	Assignment *service.AssignmentService
	Browser    *service.BrowserService
	Roster     *service.RosterService
	Messenger  chat.Messenger
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewRouter constructs the router.
func NewRouter(cfg config.BotConfig, deps RouterDependencies) *Router {
	return &Router{
		cfg:        cfg,
		lifecycle:  deps.Lifecycle,
		assignment: deps.Assignment,
		browser:    deps.Browser,
		roster:     deps.Roster,
		messenger:  deps.Messenger,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// HandleCommand dispatches a slash command.
func (r *Router) HandleCommand(ctx context.Context, cmd chat.Command) {
	r.metrics.RecordCommand(cmd.Name)

	switch cmd.Name {
	case "ticket":
		r.handleTicket(ctx, cmd)
	case "ticketpanel":
		r.handlePanel(ctx, cmd)
	case "aticket":
		r.handleDetailCommand(ctx, cmd)
	case "rollin":
		r.handleRollIn(ctx, cmd)
	case "stats":
		r.handleStats(ctx, cmd)
	case "start", "help":
		r.reply(ctx, cmd.ChatID, "Use /ticket in a direct message to open a support ticket.")
	}
}

// HandleMessage forwards private messages to the collection waiting on them.
func (r *Router) HandleMessage(ctx context.Context, msg chat.Message) {
	r.lifecycle.DeliverMessage(ctx, msg)
}

// HandleCallback dispatches a button press.
func (r *Router) HandleCallback(ctx context.Context, cb chat.Callback) {
	action, args, ok := service.DecodeCallback(cb.Data)
	if !ok || len(args) == 0 && action != service.ActionPage {
		r.answer(ctx, cb, "")
		return
	}

	switch action {
	case service.ActionAccept:
		r.answer(ctx, cb, r.outcome(r.lifecycle.Accept(ctx, args[0], cb.From, ""), "Ticket is accepted."))
	case service.ActionReject:
		r.answer(ctx, cb, r.outcome(r.lifecycle.Reject(ctx, args[0], cb.From), "Ticket is rejected."))
	case service.ActionSelect:
		if len(args) < 2 {
			r.answer(ctx, cb, "")
			return
		}
		moderatorID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			r.answer(ctx, cb, "")
			return
		}
		r.answer(ctx, cb, r.outcome(r.lifecycle.SelectModerator(ctx, args[0], cb.From, moderatorID), "Ticket is accepted."))
	case service.ActionClose:
		r.answer(ctx, cb, r.outcome(r.lifecycle.Close(ctx, args[0], cb.From), "This ticket is closed."))
	case service.ActionNote:
		r.handleNote(ctx, cb, args[0])
	case service.ActionPage:
		r.handlePageFlip(ctx, cb, args)
	case service.ActionDetail:
		r.answer(ctx, cb, "")
		if err := r.sendDetail(ctx, cb.ChatID, args[0]); err != nil {
			r.reply(ctx, cb.ChatID, util.ToDomainError(err).Message)
		}
	default:
		r.answer(ctx, cb, "")
	}
}

func (r *Router) handleTicket(ctx context.Context, cmd chat.Command) {
	if !cmd.Private {
		r.reply(ctx, cmd.ChatID, "Please open a ticket via direct message.")
		return
	}
	if err := r.lifecycle.OpenTicket(ctx, cmd.From); err != nil {
		r.reply(ctx, cmd.ChatID, util.ToDomainError(err).Message)
	}
}

func (r *Router) requireAdministrator(ctx context.Context, cmd chat.Command) bool {
	ok, err := r.assignment.IsAdministrator(ctx, r.cfg.ReviewChatID, cmd.From.ID)
	if err != nil {
		r.logger.Warn("administrator check failed", zap.Error(err))
	}
	if !ok {
		r.reply(ctx, cmd.ChatID, "You do not have the right to use the command.")
		return false
	}
	return true
}

// outcome maps a transition result to the short notice shown to the actor.
func (r *Router) outcome(err error, success string) string {
	if err == nil {
		return success
	}
	return util.ToDomainError(err).Message
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) {
	if err := r.messenger.Send(ctx, chatID, text); err != nil {
		r.logger.Warn("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) answer(ctx context.Context, cb chat.Callback, text string) {
	if err := r.messenger.AnswerCallback(ctx, cb.ID, text); err != nil {
		r.logger.Warn("callback answer failed", zap.Error(err))
	}
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
