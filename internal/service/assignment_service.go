package service

import (
	"context"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/pkg/util"
)

// AssignmentService resolves the moderator candidate set for the review chat
// and binds selections to tickets.
type AssignmentService struct {
	directory chat.Directory
	roleTitle string
	capacity  int
}

// NewAssignmentService creates the service. An empty roleTitle means every
// administrator of the review chat qualifies.
func NewAssignmentService(directory chat.Directory, roleTitle string, capacity int) *AssignmentService {
	if capacity <= 0 {
		capacity = 25
	}
	return &AssignmentService{directory: directory, roleTitle: roleTitle, capacity: capacity}
}

// ResolveCandidates recomputes the candidate set from the review chat's
// membership. The set must fit the selection affordance: 1 to capacity
// members inclusive.
func (s *AssignmentService) ResolveCandidates(ctx context.Context, chatID int64) ([]domain.Moderator, error) {
	members, err := s.directory.Members(ctx, chatID)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	candidates := make([]domain.Moderator, 0, len(members))
	for _, member := range members {
		if s.roleTitle != "" && member.RoleTitle != s.roleTitle {
			continue
		}
		candidates = append(candidates, domain.Moderator{
			Identity:  domain.Identity{ID: member.User.ID, Name: member.User.Name},
			RoleTitle: member.RoleTitle,
		})
	}
	if len(candidates) == 0 {
		return nil, util.NewNoCandidates()
	}
	if len(candidates) > s.capacity {
		return nil, util.NewTooManyCandidates(len(candidates), s.capacity)
	}
	return candidates, nil
}

// CandidateByID re-resolves the candidate set and returns the member with
// the given user id, guarding stale selection callbacks.
func (s *AssignmentService) CandidateByID(ctx context.Context, chatID, userID int64) (*domain.Moderator, error) {
	candidates, err := s.ResolveCandidates(ctx, chatID)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].ID == userID {
			return &candidates[i], nil
		}
	}
	return nil, util.NewNotFound("moderator", map[string]any{"user_id": userID})
}

// IsAdministrator reports whether the user administers the given chat. Used
// as the permission gate for the admin panel commands.
func (s *AssignmentService) IsAdministrator(ctx context.Context, chatID, userID int64) (bool, error) {
	members, err := s.directory.Members(ctx, chatID)
	if err != nil {
		return false, util.NewInternalError(err)
	}
	for _, member := range members {
		if member.User.ID == userID && member.IsAdmin {
			return true, nil
		}
	}
	return false, nil
}
