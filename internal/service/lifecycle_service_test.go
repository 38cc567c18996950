package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/internal/config"
	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/internal/events"
	"github.com/alonebown/crewdesk/internal/observability"
	"github.com/alonebown/crewdesk/internal/repository"
	"github.com/alonebown/crewdesk/pkg/util"
)

const reviewChatID int64 = 100

func newLifecycleHarness(t *testing.T) (*LifecycleService, *fakeMessenger, repository.TicketRepository) {
	t.Helper()
	cfg := config.BotConfig{
		ReviewChatID:          reviewChatID,
		ModeratorRoleTitle:    "Moderator",
		CollectTimeoutSeconds: 1,
		SelectCapacity:        25,
		Timezone:              "UTC",
	}
	repo := repository.NewTicketRepository(
		repository.NewMemoryLedger(), repository.NewDocumentStore(t.TempDir()), time.UTC, zap.NewNop())
	messenger := newFakeMessenger()
	dir := &fakeDirectory{members: []chat.Member{member(9, "mod", "Moderator")}}
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	NewNotificationService(dispatcher, messenger, metrics, zap.NewNop()).RegisterHandlers()

	svc := NewLifecycleService(cfg, LifecycleDependencies{
		Tickets:     repo,
		Attachments: repository.NewAttachmentRepository(t.TempDir()),
		Assignment:  NewAssignmentService(dir, cfg.ModeratorRoleTitle, cfg.SelectCapacity),
		Messenger:   messenger,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      zap.NewNop(),
	})
	return svc, messenger, repo
}

// submitTicket opens a collection, feeds it messages and waits for the review
// affordance to appear, returning the created ticket's id.
func submitTicket(t *testing.T, svc *LifecycleService, messenger *fakeMessenger, author chat.User, texts ...string) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.OpenTicket(ctx, author))
	for _, text := range texts {
		consumed := svc.DeliverMessage(ctx, chat.Message{
			From: author, ChatID: author.ID, Text: text, Private: true,
		})
		require.True(t, consumed)
	}

	var post buttonPost
	require.Eventually(t, func() bool {
		p, ok := messenger.lastPost()
		if ok && p.chatID == reviewChatID {
			post = p
			return true
		}
		return false
	}, 5*time.Second, 25*time.Millisecond, "review affordance never posted")

	require.NotEmpty(t, post.rows)
	action, args, ok := DecodeCallback(post.rows[0][0].Data)
	require.True(t, ok)
	require.Equal(t, ActionAccept, action)
	require.NotEmpty(t, args)
	return args[0]
}

func TestTicketSubmittedAfterInactivity(t *testing.T) {
	svc, messenger, repo := newLifecycleHarness(t)
	author := chat.User{ID: 7, Name: "bob"}

	ticketID := submitTicket(t, svc, messenger, author, "hello", "it broke")

	found, err := repo.Find(context.Background(), ticketID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, found.Status)
	assert.Equal(t, domain.TicketOpen, found.Open)
	require.Len(t, found.Messages, 2)
	assert.Equal(t, "hello", found.Messages[0].Content)

	assert.Contains(t, messenger.directTexts(author.ID), "Your ticket has been submitted.")
}

func TestAcceptThenClose(t *testing.T) {
	svc, messenger, repo := newLifecycleHarness(t)
	ctx := context.Background()
	author := chat.User{ID: 7, Name: "bob"}
	moderator := chat.User{ID: 9, Name: "mod"}

	ticketID := submitTicket(t, svc, messenger, author, "hello")

	require.NoError(t, svc.Accept(ctx, ticketID, moderator, ""))
	found, err := repo.Find(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAccepted, found.Status)
	assert.Equal(t, domain.TicketOpen, found.Open)
	assert.Equal(t, "mod", found.Moderator)

	err = svc.Accept(ctx, ticketID, moderator, "")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "ALREADY_ACTIONED"))

	require.NoError(t, svc.Close(ctx, ticketID, moderator))
	found, err = repo.Find(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAccepted, found.Status)
	assert.Equal(t, domain.TicketClosed, found.Open)
}

func TestRejectClosesTicket(t *testing.T) {
	svc, messenger, repo := newLifecycleHarness(t)
	ctx := context.Background()
	author := chat.User{ID: 7, Name: "bob"}
	moderator := chat.User{ID: 9, Name: "mod"}

	ticketID := submitTicket(t, svc, messenger, author, "hello")

	require.NoError(t, svc.Reject(ctx, ticketID, moderator))
	found, err := repo.Find(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusRejected, found.Status)
	assert.Equal(t, domain.TicketClosed, found.Open)
	assert.Equal(t, "None", found.Moderator)

	err = svc.Accept(ctx, ticketID, moderator, "")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "ALREADY_ACTIONED"))
}

func TestRejectNoticeReachesAuthor(t *testing.T) {
	svc, messenger, _ := newLifecycleHarness(t)
	ctx := context.Background()
	author := chat.User{ID: 7, Name: "bob"}
	moderator := chat.User{ID: 9, Name: "mod"}

	ticketID := submitTicket(t, svc, messenger, author, "hello")

	require.NoError(t, svc.Reject(ctx, ticketID, moderator))
	assert.Contains(t, messenger.directTexts(author.ID),
		fmt.Sprintf("Your ticket with ID %s has been rejected.", ticketID))
}

func TestIngestRecordsUrlsAndDownloadsImages(t *testing.T) {
	svc, _, _ := newLifecycleHarness(t)
	attachDir := t.TempDir()
	downloader := &fakeDownloader{data: []byte("png-bytes")}
	svc.attachments = repository.NewAttachmentRepository(attachDir)
	svc.downloader = downloader

	imageURL := "https://files.example/shot.png"
	textURL := "https://files.example/trace.txt"
	recorded := svc.ingest(context.Background(), "t-9", chat.Message{
		From: chat.User{ID: 7, Name: "bob"},
		Text: "see attached",
		Attachments: []chat.Attachment{
			{URL: imageURL, FileName: "shot.png", ContentType: "image/png"},
			{URL: textURL, FileName: "trace.txt", ContentType: "text/plain"},
		},
	})

	assert.Equal(t, []string{imageURL, textURL}, recorded.Attachments)
	assert.Equal(t, []string{imageURL}, downloader.urls())

	data, err := os.ReadFile(filepath.Join(attachDir, "t-9", "shot.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	_, err = os.Stat(filepath.Join(attachDir, "t-9", "trace.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestOpenTicketRejectsParallelCollection(t *testing.T) {
	svc, _, _ := newLifecycleHarness(t)
	ctx := context.Background()
	author := chat.User{ID: 7, Name: "bob"}

	require.NoError(t, svc.OpenTicket(ctx, author))
	err := svc.OpenTicket(ctx, author)
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "COLLECTION_IN_PROGRESS"))
}

func TestEmptyCollectionCreatesNothing(t *testing.T) {
	svc, messenger, repo := newLifecycleHarness(t)
	ctx := context.Background()
	author := chat.User{ID: 7, Name: "bob"}

	require.NoError(t, svc.OpenTicket(ctx, author))

	require.Eventually(t, func() bool {
		for _, text := range messenger.directTexts(author.ID) {
			if text == "No messages received. Ticket closed." {
				return true
			}
		}
		return false
	}, 5*time.Second, 25*time.Millisecond)

	summaries, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestCloseCancelsRecordConversationWait(t *testing.T) {
	svc, _, repo := newLifecycleHarness(t)
	ctx := context.Background()
	moderator := chat.User{ID: 9, Name: "mod"}

	require.NoError(t, repo.Create(ctx, &domain.Ticket{
		ID:        "t-1",
		Author:    domain.Identity{ID: 7, Name: "bob"},
		CreatedAt: time.Now(),
		Messages:  []domain.Message{{Author: "bob", Content: "hello"}},
		Status:    domain.TicketStatusAccepted,
		Open:      domain.TicketOpen,
	}))

	done := make(chan error, 1)
	go func() {
		done <- svc.RecordConversation(ctx, "t-1", moderator, reviewChatID)
	}()

	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		_, armed := svc.noteWaits["t-1"]
		return armed
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, svc.Close(ctx, "t-1", moderator))

	err := <-done
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "TIMEOUT"))
}

func TestRecordConversationAppendsModeratorMessage(t *testing.T) {
	svc, _, repo := newLifecycleHarness(t)
	ctx := context.Background()
	moderator := chat.User{ID: 9, Name: "mod"}

	require.NoError(t, repo.Create(ctx, &domain.Ticket{
		ID:        "t-1",
		Author:    domain.Identity{ID: 7, Name: "bob"},
		CreatedAt: time.Now(),
		Messages:  []domain.Message{{Author: "bob", Content: "hello"}},
		Status:    domain.TicketStatusAccepted,
		Open:      domain.TicketOpen,
	}))

	done := make(chan error, 1)
	go func() {
		done <- svc.RecordConversation(ctx, "t-1", moderator, reviewChatID)
	}()

	require.Eventually(t, func() bool {
		return svc.DeliverMessage(ctx, chat.Message{
			From: moderator, ChatID: reviewChatID, Text: "we are on it",
		})
	}, 5*time.Second, 25*time.Millisecond)

	require.NoError(t, <-done)

	found, err := repo.Find(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, found.Messages, 2)
	assert.Equal(t, "mod", found.Messages[1].Author)
	assert.Equal(t, "we are on it", found.Messages[1].Content)
}
