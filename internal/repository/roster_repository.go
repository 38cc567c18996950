package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/pkg/util"
)

// Roster columns, 1-based.
const (
	rosterColUserID = iota + 1
	rosterColUserName
	rosterColNickname
	rosterColRole

	rosterWidth = rosterColRole
)

// RosterRepository persists team roster entries in their own worksheet.
type RosterRepository interface {
	Append(ctx context.Context, entry *domain.RosterEntry) error
	FindByUserID(ctx context.Context, userID int64) (*domain.RosterEntry, error)
}

type rosterRepository struct {
	ledger Ledger
}

// NewRosterRepository binds the roster to a ledger worksheet.
func NewRosterRepository(ledger Ledger) RosterRepository {
	return &rosterRepository{ledger: ledger}
}

func (r *rosterRepository) Append(ctx context.Context, entry *domain.RosterEntry) error {
	row := []string{
		strconv.FormatInt(entry.UserID, 10),
		entry.UserName,
		entry.GameNickname,
		entry.Role,
	}
	if err := r.ledger.AppendRow(ctx, row); err != nil {
		return util.NewStorageError("ledger", err)
	}
	return nil
}

func (r *rosterRepository) FindByUserID(ctx context.Context, userID int64) (*domain.RosterEntry, error) {
	key := strconv.FormatInt(userID, 10)
	rowIndex, err := r.ledger.FindRow(ctx, rosterColUserID, key)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return nil, util.NewNotFound("roster entry", map[string]any{"user_id": userID})
		}
		return nil, util.NewStorageError("ledger", err)
	}
	row, err := r.ledger.Row(ctx, rowIndex)
	if err != nil {
		return nil, util.NewStorageError("ledger", err)
	}
	entry := &domain.RosterEntry{UserID: userID}
	if len(row) >= rosterWidth {
		entry.UserName = row[rosterColUserName-1]
		entry.GameNickname = row[rosterColNickname-1]
		entry.Role = row[rosterColRole-1]
	}
	return entry, nil
}
