package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/internal/repository"
)

func seededRepo(t *testing.T, total, closed int) repository.TicketRepository {
	t.Helper()
	repo := repository.NewTicketRepository(
		repository.NewMemoryLedger(), repository.NewDocumentStore(t.TempDir()), time.UTC, zap.NewNop())
	ctx := context.Background()
	for i := 0; i < total; i++ {
		id := fmt.Sprintf("t-%02d", i)
		require.NoError(t, repo.Create(ctx, &domain.Ticket{
			ID:        id,
			Author:    domain.Identity{ID: int64(i), Name: "user"},
			CreatedAt: time.Now(),
			Messages:  []domain.Message{{Author: "user", Content: "issue"}},
			Status:    domain.TicketStatusPending,
			Open:      domain.TicketOpen,
		}))
		if i < closed {
			require.NoError(t, repo.UpdateStatus(ctx, id, domain.TicketStatusRejected, "mod", domain.TicketClosed, "None"))
		}
	}
	return repo
}

func TestPaginateWindows(t *testing.T) {
	items := make([]domain.Summary, 23)
	for i := range items {
		items[i] = domain.Summary{ID: fmt.Sprintf("t-%02d", i)}
	}

	first := Paginate(items, 0, 10)
	assert.Len(t, first.Items, 10)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)
	assert.Equal(t, "t-00", first.Items[0].ID)

	last := Paginate(items, 2, 10)
	assert.Len(t, last.Items, 3)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)
	assert.Equal(t, "t-22", last.Items[2].ID)
}

func TestPaginateClampsIndex(t *testing.T) {
	items := []domain.Summary{{ID: "a"}, {ID: "b"}}

	beyond := Paginate(items, 9, 10)
	assert.Equal(t, 0, beyond.Index)
	assert.Len(t, beyond.Items, 2)

	negative := Paginate(items, -4, 10)
	assert.Equal(t, 0, negative.Index)
}

func TestPaginateEmpty(t *testing.T) {
	page := Paginate(nil, 0, 10)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasPrev)
	assert.False(t, page.HasNext)
}

func TestOpenTicketsSkipsClosed(t *testing.T) {
	svc := NewBrowserService(seededRepo(t, 8, 3), 10)

	open, err := svc.OpenTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 5)
	for _, summary := range open {
		assert.Equal(t, domain.TicketOpen, summary.Open)
	}
}

func TestPageWalksFullLedger(t *testing.T) {
	svc := NewBrowserService(seededRepo(t, 23, 0), 10)

	page, err := svc.Page(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)
}
