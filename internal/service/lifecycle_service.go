package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/internal/config"
	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/internal/events"
	"github.com/alonebown/crewdesk/internal/observability"
	"github.com/alonebown/crewdesk/internal/persistence"
	"github.com/alonebown/crewdesk/internal/repository"
	"github.com/alonebown/crewdesk/pkg/util"
)

// LifecycleService owns the ticket state machine. One goroutine runs per
// ticket session; every event for a ticket (author messages, moderator
// actions) flows through that goroutine's channels, so no two events for the
// same ticket are processed concurrently.
type LifecycleService struct {
	cfg         config.BotConfig
	tickets     repository.TicketRepository
	attachments repository.AttachmentRepository
	assignment  *AssignmentService
	messenger   chat.Messenger
	downloader  chat.Downloader
	dispatcher  events.Dispatcher
	guard       *persistence.Redis
	metrics     *observability.Metrics
	logger      *zap.Logger

	mu        sync.Mutex
	receiving map[int64]*session
	byTicket  map[string]*session
	waiters   map[waiterKey]chan chat.Message
	noteWaits map[string]chan struct{}
}

// LifecycleDependencies bundles collaborators for the state machine.
type LifecycleDependencies struct {
	Tickets     repository.TicketRepository
	Attachments repository.AttachmentRepository
	Assignment  *AssignmentService
	Messenger   chat.Messenger
	Downloader  chat.Downloader
	Dispatcher  events.Dispatcher
	Guard       *persistence.Redis
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewLifecycleService constructs the service.
func NewLifecycleService(cfg config.BotConfig, deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		cfg:         cfg,
		tickets:     deps.Tickets,
		attachments: deps.Attachments,
		assignment:  deps.Assignment,
		messenger:   deps.Messenger,
		downloader:  deps.Downloader,
		dispatcher:  deps.Dispatcher,
		guard:       deps.Guard,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		receiving:   make(map[int64]*session),
		byTicket:    make(map[string]*session),
		waiters:     make(map[waiterKey]chan chat.Message),
		noteWaits:   make(map[string]chan struct{}),
	}
}

type waiterKey struct {
	chatID int64
	userID int64
}

type moderatorAction struct {
	kind      string
	actor     domain.Identity
	moderator string
	reply     chan error
}

type session struct {
	ticketID   string
	author     domain.Identity
	msgCh      chan chat.Message
	actionCh   chan moderatorAction
	done       chan struct{}
	cancel     context.CancelFunc
	reviewMsg  int
	reviewText string

	// Owned by the session goroutine after start.
	status     domain.TicketStatus
	actionedBy string
	moderator  string
}

// OpenTicket starts message collection for the author's new ticket. The
// caller must have verified the command arrived in a private chat.
func (s *LifecycleService) OpenTicket(ctx context.Context, author chat.User) error {
	s.mu.Lock()
	_, busy := s.receiving[author.ID]
	s.mu.Unlock()
	if busy {
		return util.NewDomainError("COLLECTION_IN_PROGRESS", "a ticket collection is already in progress", http.StatusConflict, nil)
	}

	timeout := s.cfg.CollectTimeout()
	acquired, err := s.guard.AcquireGuard(ctx, guardKey(author.ID), 4*timeout)
	if err != nil {
		s.logger.Warn("collection guard unavailable", zap.Error(err))
	} else if !acquired {
		return util.NewDomainError("COLLECTION_IN_PROGRESS", "a ticket collection is already in progress", http.StatusConflict, nil)
	}

	if err := s.messenger.SendDirect(ctx, author.ID, "Please describe your issue."); err != nil {
		_ = s.guard.ReleaseGuard(ctx, guardKey(author.ID))
		return util.NewInternalError(err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess := &session{
		ticketID: uuid.NewString(),
		author:   domain.Identity{ID: author.ID, Name: author.Name},
		msgCh:    make(chan chat.Message, 16),
		actionCh: make(chan moderatorAction, 4),
		done:     make(chan struct{}),
		cancel:   cancel,
		status:   domain.TicketStatusPending,
	}
	s.mu.Lock()
	s.receiving[author.ID] = sess
	s.mu.Unlock()

	go s.run(runCtx, sess)
	return nil
}

// DeliverMessage routes an incoming private message to the session or waiter
// expecting it. It reports whether the message was consumed.
func (s *LifecycleService) DeliverMessage(ctx context.Context, msg chat.Message) bool {
	s.mu.Lock()
	if waiter, ok := s.waiters[waiterKey{chatID: msg.ChatID, userID: msg.From.ID}]; ok {
		s.mu.Unlock()
		select {
		case waiter <- msg:
		default:
		}
		return true
	}
	sess := s.receiving[msg.From.ID]
	s.mu.Unlock()

	if sess == nil || !msg.Private {
		return false
	}
	select {
	case sess.msgCh <- msg:
	default:
		s.logger.Warn("dropping message, session backlog full",
			zap.String("ticket_id", sess.ticketID))
	}
	return true
}

// Accept drives the accept transition. moderator may name a selected
// reviewer; empty means the acting moderator reviews the ticket themselves.
func (s *LifecycleService) Accept(ctx context.Context, ticketID string, actor chat.User, moderator string) error {
	act := moderatorAction{
		kind:      ActionAccept,
		actor:     domain.Identity{ID: actor.ID, Name: actor.Name},
		moderator: moderator,
		reply:     make(chan error, 1),
	}
	if handled, err := s.sendAction(ctx, ticketID, act); handled {
		return err
	}
	return s.acceptDetached(ctx, ticketID, actor, moderator)
}

// Reject drives the reject transition; terminal, implies closure.
func (s *LifecycleService) Reject(ctx context.Context, ticketID string, actor chat.User) error {
	act := moderatorAction{
		kind:  ActionReject,
		actor: domain.Identity{ID: actor.ID, Name: actor.Name},
		reply: make(chan error, 1),
	}
	if handled, err := s.sendAction(ctx, ticketID, act); handled {
		return err
	}
	return s.rejectDetached(ctx, ticketID, actor)
}

// SelectModerator binds a selection-affordance pick to the accept transition.
func (s *LifecycleService) SelectModerator(ctx context.Context, ticketID string, actor chat.User, moderatorID int64) error {
	moderator, err := s.assignment.CandidateByID(ctx, s.cfg.ReviewChatID, moderatorID)
	if err != nil {
		return err
	}
	if err := s.Accept(ctx, ticketID, actor, moderator.Name); err != nil {
		return err
	}
	s.publish(ctx, events.EventTicketAssigned, ticketID, domain.Identity{}, events.TicketAssignedPayload{
		Moderator: moderator.Name,
	})
	return nil
}

// Close marks the ticket closed, rewriting the ledger's status cells, and
// cancels any in-flight wait for the ticket.
func (s *LifecycleService) Close(ctx context.Context, ticketID string, actor chat.User) error {
	act := moderatorAction{
		kind:  ActionClose,
		actor: domain.Identity{ID: actor.ID, Name: actor.Name},
		reply: make(chan error, 1),
	}
	if handled, err := s.sendAction(ctx, ticketID, act); handled {
		return err
	}
	return s.closeDetached(ctx, ticketID, actor)
}

// RecordConversation waits for the moderator's next message in the admin
// chat and appends it to the ticket. Used by the detail view. The wait is
// cancelled if the ticket is closed or rejected while it is armed.
func (s *LifecycleService) RecordConversation(ctx context.Context, ticketID string, moderator chat.User, chatID int64) error {
	if _, err := s.tickets.Find(ctx, ticketID); err != nil {
		return err
	}
	cancelCh := s.armNoteWait(ticketID)
	defer s.disarmNoteWait(ticketID, cancelCh)

	msg, ok := s.awaitMessage(ctx, chatID, moderator.ID, cancelCh)
	if !ok {
		return util.NewDomainError("TIMEOUT", "no response received", http.StatusRequestTimeout, nil)
	}
	recorded := s.ingest(ctx, ticketID, msg)
	if err := s.tickets.AppendMessage(ctx, ticketID, recorded); err != nil {
		return err
	}
	s.publish(ctx, events.EventTicketMessageAdded, ticketID, domain.Identity{}, events.TicketMessageAddedPayload{
		Author:      recorded.Author,
		BodyPreview: preview(recorded.Content, 120),
	})
	return nil
}

func (s *LifecycleService) run(ctx context.Context, sess *session) {
	defer s.teardown(sess)

	msgs, alive := s.collect(ctx, sess)
	s.clearReceiving(sess.author.ID)
	if !alive {
		return
	}
	if len(msgs) == 0 {
		s.notifyAuthor(ctx, sess, "No messages received. Ticket closed.")
		return
	}

	ticket := &domain.Ticket{
		ID:        sess.ticketID,
		Author:    sess.author,
		CreatedAt: time.Now(),
		Messages:  msgs,
		Status:    domain.TicketStatusPending,
		Open:      domain.TicketOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("ticket creation failed", zap.String("ticket_id", sess.ticketID), zap.Error(err))
		s.notifyAuthor(ctx, sess, "Failed to submit your ticket, please try again later.")
		return
	}
	s.metrics.RecordTransition("created")
	s.publish(ctx, events.EventTicketCreated, sess.ticketID, sess.author, events.TicketCreatedPayload{
		MessageCount: len(msgs),
	})

	s.mu.Lock()
	s.byTicket[sess.ticketID] = sess
	s.mu.Unlock()

	s.postReview(ctx, sess, ticket)
	s.notifyAuthor(ctx, sess, "Your ticket has been submitted.")

	s.review(ctx, sess)
}

// collect runs the initial collection phase: a deadline-bounded receive,
// re-armed on every message.
func (s *LifecycleService) collect(ctx context.Context, sess *session) ([]domain.Message, bool) {
	timeout := s.cfg.CollectTimeout()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var msgs []domain.Message
	for {
		select {
		case m := <-sess.msgCh:
			msgs = append(msgs, s.ingest(ctx, sess.ticketID, m))
			resetTimer(timer, timeout)
		case <-timer.C:
			return msgs, true
		case <-ctx.Done():
			return msgs, false
		}
	}
}

// review waits for a moderator action; there is no deadline on review.
func (s *LifecycleService) review(ctx context.Context, sess *session) {
	for {
		select {
		case act := <-sess.actionCh:
			switch act.kind {
			case ActionAccept:
				if sess.status.Actioned() {
					act.reply <- util.NewAlreadyActioned(strings.ToLower(string(sess.status)))
					continue
				}
				moderator := act.moderator
				if moderator == "" {
					moderator = act.actor.Name
				}
				err := s.tickets.UpdateStatus(ctx, sess.ticketID, domain.TicketStatusAccepted, act.actor.Name, domain.TicketOpen, moderator)
				// In-memory state advances even when persistence failed;
				// the error is surfaced to the acting moderator.
				sess.status = domain.TicketStatusAccepted
				sess.actionedBy = act.actor.Name
				sess.moderator = moderator
				act.reply <- err
				s.metrics.RecordTransition("accepted")
				s.publish(ctx, events.EventTicketStatusChanged, sess.ticketID, sess.author, events.TicketStatusChangedPayload{
					NewStatus:  domain.TicketStatusAccepted,
					ActionedBy: act.actor.Name,
					Moderator:  moderator,
				})
				s.updateReview(ctx, sess, fmt.Sprintf("Accepted by %s.", act.actor.Name))
				s.followups(ctx, sess)
				return
			case ActionReject:
				if sess.status.Actioned() {
					act.reply <- util.NewAlreadyActioned(strings.ToLower(string(sess.status)))
					continue
				}
				err := s.tickets.UpdateStatus(ctx, sess.ticketID, domain.TicketStatusRejected, act.actor.Name, domain.TicketClosed, "None")
				sess.status = domain.TicketStatusRejected
				sess.actionedBy = act.actor.Name
				act.reply <- err
				s.cancelNoteWait(sess.ticketID)
				s.metrics.RecordTransition("rejected")
				s.publish(ctx, events.EventTicketStatusChanged, sess.ticketID, sess.author, events.TicketStatusChangedPayload{
					NewStatus:  domain.TicketStatusRejected,
					ActionedBy: act.actor.Name,
				})
				s.updateReview(ctx, sess, fmt.Sprintf("Rejected by %s.", act.actor.Name))
				return
			case ActionClose:
				err := s.tickets.UpdateStatus(ctx, sess.ticketID, sess.status, sess.actionedBy, domain.TicketClosed, sess.moderator)
				act.reply <- err
				s.cancelNoteWait(sess.ticketID)
				s.metrics.RecordTransition("closed")
				s.publish(ctx, events.EventTicketClosed, sess.ticketID, sess.author, events.TicketClosedPayload{
					Explicit: true,
					ClosedBy: act.actor.Name,
				})
				return
			default:
				act.reply <- util.NewInternalError(fmt.Errorf("unknown action %q", act.kind))
			}
		case <-ctx.Done():
			return
		}
	}
}

// followups collects additional author messages after acceptance until the
// inactivity timeout or an explicit close.
func (s *LifecycleService) followups(ctx context.Context, sess *session) {
	s.setReceiving(sess.author.ID, sess)
	defer s.clearReceiving(sess.author.ID)

	timeout := s.cfg.CollectTimeout()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case m := <-sess.msgCh:
			recorded := s.ingest(ctx, sess.ticketID, m)
			if err := s.tickets.AppendMessage(ctx, sess.ticketID, recorded); err != nil {
				s.logger.Error("follow-up append failed",
					zap.String("ticket_id", sess.ticketID), zap.Error(err))
			} else {
				s.publish(ctx, events.EventTicketMessageAdded, sess.ticketID, sess.author, events.TicketMessageAddedPayload{
					Author:      recorded.Author,
					BodyPreview: preview(recorded.Content, 120),
				})
			}
			resetTimer(timer, timeout)
		case act := <-sess.actionCh:
			if act.kind == ActionClose {
				err := s.tickets.UpdateStatus(ctx, sess.ticketID, sess.status, sess.actionedBy, domain.TicketClosed, sess.moderator)
				act.reply <- err
				s.cancelNoteWait(sess.ticketID)
				s.metrics.RecordTransition("closed")
				s.publish(ctx, events.EventTicketClosed, sess.ticketID, sess.author, events.TicketClosedPayload{
					Explicit: true,
					ClosedBy: act.actor.Name,
				})
				return
			}
			act.reply <- util.NewAlreadyActioned(strings.ToLower(string(sess.status)))
		case <-timer.C:
			// Implicit closure: collection ends, the ledger keeps its
			// current status until a moderator closes explicitly.
			s.notifyAuthor(ctx, sess, "No more messages received. You will be informed about the result of the investigation.")
			s.metrics.RecordTransition("collection_ended")
			s.publish(ctx, events.EventTicketClosed, sess.ticketID, sess.author, events.TicketClosedPayload{
				Explicit: false,
			})
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *LifecycleService) postReview(ctx context.Context, sess *session, ticket *domain.Ticket) {
	contents := make([]string, 0, len(ticket.Messages))
	for _, msg := range ticket.Messages {
		contents = append(contents, msg.Content)
	}
	text := fmt.Sprintf("Ticket ID: %s\nAuthor: %s (%d)\n\n%s",
		ticket.ID, ticket.Author.Name, ticket.Author.ID, strings.Join(contents, "\n"))

	rows := [][]chat.Button{{
		{Label: "Accept", Data: EncodeCallback(ActionAccept, ticket.ID)},
		{Label: "Reject", Data: EncodeCallback(ActionReject, ticket.ID)},
	}}

	candidates, err := s.assignment.ResolveCandidates(ctx, s.cfg.ReviewChatID)
	if err != nil {
		// Candidate resolution failures abort the selection affordance but
		// never the review itself; moderators are told why.
		domainErr := util.ToDomainError(err)
		s.logger.Warn("moderator selection unavailable",
			zap.String("ticket_id", ticket.ID), zap.String("code", domainErr.Code), zap.Error(err))
		if sendErr := s.messenger.Send(ctx, s.cfg.ReviewChatID, "Moderator selection unavailable: "+domainErr.Message); sendErr != nil {
			s.logger.Warn("review chat unreachable", zap.Error(sendErr))
		}
	} else {
		for _, moderator := range candidates {
			rows = append(rows, []chat.Button{{
				Label: moderator.Name,
				Data:  EncodeCallback(ActionSelect, ticket.ID, strconv.FormatInt(moderator.ID, 10)),
			}})
		}
	}

	messageID, err := s.messenger.SendWithButtons(ctx, s.cfg.ReviewChatID, text, rows)
	if err != nil {
		s.logger.Error("posting review affordance failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	sess.reviewMsg = messageID
	sess.reviewText = text
}

func (s *LifecycleService) updateReview(ctx context.Context, sess *session, note string) {
	if sess.reviewMsg == 0 {
		return
	}
	if err := s.messenger.EditButtons(ctx, s.cfg.ReviewChatID, sess.reviewMsg, sess.reviewText+"\n\n"+note, nil); err != nil {
		s.logger.Warn("review message edit failed",
			zap.String("ticket_id", sess.ticketID), zap.Error(err))
	}
}

// ingest converts an incoming message, recording every attachment by URL and
// downloading image attachments into the attachment store.
func (s *LifecycleService) ingest(ctx context.Context, ticketID string, m chat.Message) domain.Message {
	urls := make([]string, 0, len(m.Attachments))
	for _, att := range m.Attachments {
		urls = append(urls, att.URL)
		if s.downloader == nil || !strings.HasPrefix(att.ContentType, "image/") {
			continue
		}
		data, err := s.downloader.Download(ctx, att.URL)
		if err != nil {
			s.logger.Warn("attachment download failed",
				zap.String("ticket_id", ticketID), zap.String("url", att.URL), zap.Error(err))
			continue
		}
		if _, err := s.attachments.Save(ctx, ticketID, att.FileName, data); err != nil {
			s.logger.Warn("attachment save failed",
				zap.String("ticket_id", ticketID), zap.Error(err))
		}
	}
	return domain.Message{Author: m.From.Name, Content: m.Text, Attachments: urls}
}

// sendAction delivers an action to the live session for the ticket. The
// second return carries the session's answer when handled is true.
func (s *LifecycleService) sendAction(ctx context.Context, ticketID string, act moderatorAction) (bool, error) {
	s.mu.Lock()
	sess := s.byTicket[ticketID]
	s.mu.Unlock()
	if sess == nil {
		return false, nil
	}

	select {
	case sess.actionCh <- act:
	case <-sess.done:
		return false, nil
	case <-ctx.Done():
		return true, ctx.Err()
	}

	select {
	case err := <-act.reply:
		return true, err
	case <-sess.done:
		// The session exited between queueing and reply; fall back to the
		// detached path, which re-checks the stored status.
		select {
		case err := <-act.reply:
			return true, err
		default:
			return false, nil
		}
	case <-ctx.Done():
		return true, ctx.Err()
	}
}

func (s *LifecycleService) acceptDetached(ctx context.Context, ticketID string, actor chat.User, moderator string) error {
	ticket, err := s.tickets.Find(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status.Actioned() {
		return util.NewAlreadyActioned(strings.ToLower(string(ticket.Status)))
	}
	if moderator == "" {
		moderator = actor.Name
	}
	if err := s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusAccepted, actor.Name, domain.TicketOpen, moderator); err != nil {
		return err
	}
	s.metrics.RecordTransition("accepted")
	s.publish(ctx, events.EventTicketStatusChanged, ticketID, ticket.Author, events.TicketStatusChangedPayload{
		NewStatus:  domain.TicketStatusAccepted,
		ActionedBy: actor.Name,
		Moderator:  moderator,
	})
	return nil
}

func (s *LifecycleService) rejectDetached(ctx context.Context, ticketID string, actor chat.User) error {
	ticket, err := s.tickets.Find(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status.Actioned() {
		return util.NewAlreadyActioned(strings.ToLower(string(ticket.Status)))
	}
	if err := s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusRejected, actor.Name, domain.TicketClosed, "None"); err != nil {
		return err
	}
	s.cancelNoteWait(ticketID)
	s.metrics.RecordTransition("rejected")
	s.publish(ctx, events.EventTicketStatusChanged, ticketID, ticket.Author, events.TicketStatusChangedPayload{
		NewStatus:  domain.TicketStatusRejected,
		ActionedBy: actor.Name,
	})
	return nil
}

func (s *LifecycleService) closeDetached(ctx context.Context, ticketID string, actor chat.User) error {
	ticket, err := s.tickets.Find(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.UpdateStatus(ctx, ticketID, ticket.Status, ticket.ActionedBy, domain.TicketClosed, ticket.Moderator); err != nil {
		return err
	}
	s.cancelNoteWait(ticketID)
	s.metrics.RecordTransition("closed")
	s.publish(ctx, events.EventTicketClosed, ticketID, ticket.Author, events.TicketClosedPayload{
		Explicit: true,
		ClosedBy: actor.Name,
	})
	return nil
}

func (s *LifecycleService) awaitMessage(ctx context.Context, chatID, userID int64, cancel <-chan struct{}) (chat.Message, bool) {
	key := waiterKey{chatID: chatID, userID: userID}
	ch := make(chan chat.Message, 1)

	s.mu.Lock()
	s.waiters[key] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.waiters, key)
		s.mu.Unlock()
	}()

	timer := time.NewTimer(s.cfg.CollectTimeout())
	defer timer.Stop()
	select {
	case msg := <-ch:
		return msg, true
	case <-timer.C:
		return chat.Message{}, false
	case <-cancel:
		return chat.Message{}, false
	case <-ctx.Done():
		return chat.Message{}, false
	}
}

// armNoteWait registers a cancellable wait for the ticket, displacing any
// previous one.
func (s *LifecycleService) armNoteWait(ticketID string) chan struct{} {
	ch := make(chan struct{})
	s.mu.Lock()
	if prev, ok := s.noteWaits[ticketID]; ok {
		close(prev)
	}
	s.noteWaits[ticketID] = ch
	s.mu.Unlock()
	return ch
}

func (s *LifecycleService) disarmNoteWait(ticketID string, ch chan struct{}) {
	s.mu.Lock()
	if current, ok := s.noteWaits[ticketID]; ok && current == ch {
		delete(s.noteWaits, ticketID)
	}
	s.mu.Unlock()
}

func (s *LifecycleService) cancelNoteWait(ticketID string) {
	s.mu.Lock()
	if ch, ok := s.noteWaits[ticketID]; ok {
		close(ch)
		delete(s.noteWaits, ticketID)
	}
	s.mu.Unlock()
}

func (s *LifecycleService) notifyAuthor(ctx context.Context, sess *session, text string) {
	if err := s.messenger.SendDirect(ctx, sess.author.ID, text); err != nil {
		s.logger.Warn("could not deliver direct message",
			zap.String("ticket_id", sess.ticketID), zap.Error(err))
	}
}

func (s *LifecycleService) publish(ctx context.Context, eventType events.EventType, ticketID string, author domain.Identity, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Author:    author,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func (s *LifecycleService) setReceiving(authorID int64, sess *session) {
	s.mu.Lock()
	s.receiving[authorID] = sess
	s.mu.Unlock()
}

func (s *LifecycleService) clearReceiving(authorID int64) {
	s.mu.Lock()
	delete(s.receiving, authorID)
	s.mu.Unlock()
}

func (s *LifecycleService) teardown(sess *session) {
	close(sess.done)
	sess.cancel()
	s.mu.Lock()
	delete(s.byTicket, sess.ticketID)
	if current, ok := s.receiving[sess.author.ID]; ok && current == sess {
		delete(s.receiving, sess.author.ID)
	}
	s.mu.Unlock()
	_ = s.guard.ReleaseGuard(context.Background(), guardKey(sess.author.ID))
}

func guardKey(userID int64) string {
	return fmt.Sprintf("ticket:collect:%d", userID)
}

func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
