package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/pkg/util"
)

func TestDocumentStoreRoundTrip(t *testing.T) {
	store := NewDocumentStore(t.TempDir())

	doc := &TicketDocument{
		TicketID:  "abc-123",
		Author:    "alice",
		UserID:    42,
		CreatedAt: "2024-05-01 10:30:00",
		Messages: []domain.Message{
			{Author: "alice", Content: "first", Attachments: []string{"https://example.com/a.png"}},
		},
		Status: domain.TicketStatusPending,
		Closed: domain.TicketOpen,
	}
	require.NoError(t, store.Write(doc))

	loaded, err := store.Read("abc-123")
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	loaded.Messages = append(loaded.Messages, domain.Message{Author: "alice", Content: "second"})
	require.NoError(t, store.Write(loaded))

	again, err := store.Read("abc-123")
	require.NoError(t, err)
	require.Len(t, again.Messages, 2)
	assert.Equal(t, "first", again.Messages[0].Content)
	assert.Equal(t, "second", again.Messages[1].Content)
}

func TestDocumentStoreMissing(t *testing.T) {
	store := NewDocumentStore(t.TempDir())

	_, err := store.Read("nope")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "NOT_FOUND"))
}

func TestDocumentStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewDocumentStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, err := store.Read("bad")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "CORRUPT_RECORD"))
}
