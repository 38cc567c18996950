package repository

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/pkg/util"
)

// TicketDocument is the per-ticket JSON file, rewritten wholesale on every
// update. Field names match the ledger so a human can diff the two backends.
type TicketDocument struct {
	TicketID   string              `json:"ticket_id"`
	Author     string              `json:"author"`
	UserID     int64               `json:"user_id"`
	CreatedAt  string              `json:"created_at"`
	Messages   []domain.Message    `json:"messages"`
	Status     domain.TicketStatus `json:"status"`
	ActionedBy string              `json:"actioned_by"`
	Moderator  string              `json:"moderator"`
	Closed     domain.OpenState    `json:"closed"`
}

// DocumentStore keeps one JSON document per ticket under a directory.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates the store rooted at dir.
func NewDocumentStore(dir string) *DocumentStore {
	return &DocumentStore{dir: dir}
}

// Write replaces the document for doc.TicketID.
func (s *DocumentStore) Write(doc *TicketDocument) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return util.NewStorageError("document", err)
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return util.NewStorageError("document", err)
	}
	if err := os.WriteFile(s.path(doc.TicketID), data, 0o644); err != nil {
		return util.NewStorageError("document", err)
	}
	return nil
}

// Read loads the document for a ticket id.
func (s *DocumentStore) Read(id string) (*TicketDocument, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, util.NewStorageError("document", err)
	}
	var doc TicketDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, util.NewCorruptRecord(id, err)
	}
	return &doc, nil
}

func (s *DocumentStore) path(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".json")
}
