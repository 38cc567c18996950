package repository

import (
	"context"
	"os"
	"path/filepath"

	"github.com/alonebown/crewdesk/pkg/util"
)

// AttachmentRepository stores downloaded attachment files per ticket.
type AttachmentRepository interface {
	Save(ctx context.Context, ticketID, fileName string, data []byte) (string, error)
	List(ctx context.Context, ticketID string) ([]string, error)
}

type fileAttachmentRepository struct {
	dir string
}

// NewAttachmentRepository creates the file-backed store rooted at dir.
func NewAttachmentRepository(dir string) AttachmentRepository {
	return &fileAttachmentRepository{dir: dir}
}

func (r *fileAttachmentRepository) Save(ctx context.Context, ticketID, fileName string, data []byte) (string, error) {
	ticketDir := filepath.Join(r.dir, filepath.Base(ticketID))
	if err := os.MkdirAll(ticketDir, 0o755); err != nil {
		return "", util.NewStorageError("attachments", err)
	}
	path := filepath.Join(ticketDir, filepath.Base(fileName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", util.NewStorageError("attachments", err)
	}
	return path, nil
}

func (r *fileAttachmentRepository) List(ctx context.Context, ticketID string) ([]string, error) {
	ticketDir := filepath.Join(r.dir, filepath.Base(ticketID))
	entries, err := os.ReadDir(ticketDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, util.NewStorageError("attachments", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, filepath.Join(ticketDir, entry.Name()))
		}
	}
	return names, nil
}
