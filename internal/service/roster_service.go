package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/internal/repository"
	"github.com/alonebown/crewdesk/pkg/util"
)

// RosterService handles team roster registration and lookups.
type RosterService struct {
	roster       repository.RosterRepository
	directory    chat.Directory
	reviewChatID int64
	privileged   []string
}

// NewRosterService creates the service. privileged lists the role titles
// allowed to use roster commands; empty means any review chat administrator.
func NewRosterService(roster repository.RosterRepository, directory chat.Directory, reviewChatID int64, privileged []string) *RosterService {
	return &RosterService{
		roster:       roster,
		directory:    directory,
		reviewChatID: reviewChatID,
		privileged:   privileged,
	}
}

// RollIn registers the actor into the roster. Duplicate registrations are
// rejected without touching the sheet.
func (s *RosterService) RollIn(ctx context.Context, actor chat.User, nickname string) (*domain.RosterEntry, error) {
	role, err := s.requireRole(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, util.NewDomainError("VALIDATION_FAILED", "a game nickname is required", http.StatusBadRequest, nil)
	}

	if _, err := s.roster.FindByUserID(ctx, actor.ID); err == nil {
		return nil, util.NewDomainError("ALREADY_ENLISTED", "you are already enlisted", http.StatusConflict, nil)
	} else if !util.IsCode(err, "NOT_FOUND") {
		return nil, err
	}

	entry := &domain.RosterEntry{
		UserID:       actor.ID,
		UserName:     actor.Name,
		GameNickname: nickname,
		Role:         role,
	}
	if err := s.roster.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Stats returns the actor's roster entry.
func (s *RosterService) Stats(ctx context.Context, actor chat.User) (*domain.RosterEntry, error) {
	if _, err := s.requireRole(ctx, actor.ID); err != nil {
		return nil, err
	}
	return s.roster.FindByUserID(ctx, actor.ID)
}

func (s *RosterService) requireRole(ctx context.Context, userID int64) (string, error) {
	members, err := s.directory.Members(ctx, s.reviewChatID)
	if err != nil {
		return "", util.NewInternalError(err)
	}
	for _, member := range members {
		if member.User.ID != userID {
			continue
		}
		if len(s.privileged) == 0 {
			return member.RoleTitle, nil
		}
		for _, role := range s.privileged {
			if member.RoleTitle == role {
				return role, nil
			}
		}
		break
	}
	return "", util.NewPermissionDenied("you do not have the right to use the command")
}
