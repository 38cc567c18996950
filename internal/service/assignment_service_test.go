package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/pkg/util"
)

func member(id int64, name, title string) chat.Member {
	return chat.Member{User: chat.User{ID: id, Name: name}, RoleTitle: title, IsAdmin: true}
}

func TestResolveCandidatesFiltersByRole(t *testing.T) {
	dir := &fakeDirectory{members: []chat.Member{
		member(1, "ann", "Moderator"),
		member(2, "ben", "Founder"),
		member(3, "cay", "Moderator"),
	}}
	svc := NewAssignmentService(dir, "Moderator", 25)

	candidates, err := svc.ResolveCandidates(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "ann", candidates[0].Name)
	assert.Equal(t, "cay", candidates[1].Name)
}

func TestResolveCandidatesEmptyTitleTakesEveryAdmin(t *testing.T) {
	dir := &fakeDirectory{members: []chat.Member{
		member(1, "ann", "Moderator"),
		member(2, "ben", ""),
	}}
	svc := NewAssignmentService(dir, "", 25)

	candidates, err := svc.ResolveCandidates(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestResolveCandidatesNone(t *testing.T) {
	svc := NewAssignmentService(&fakeDirectory{}, "Moderator", 25)

	_, err := svc.ResolveCandidates(context.Background(), 100)
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "NO_CANDIDATES"))
}

func TestResolveCandidatesOverCapacity(t *testing.T) {
	members := make([]chat.Member, 0, 26)
	for i := 0; i < 26; i++ {
		members = append(members, member(int64(i+1), fmt.Sprintf("mod%d", i), "Moderator"))
	}
	svc := NewAssignmentService(&fakeDirectory{members: members}, "Moderator", 25)

	_, err := svc.ResolveCandidates(context.Background(), 100)
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "TOO_MANY_CANDIDATES"))
}

func TestCandidateByIDStaleSelection(t *testing.T) {
	dir := &fakeDirectory{members: []chat.Member{member(1, "ann", "Moderator")}}
	svc := NewAssignmentService(dir, "Moderator", 25)

	found, err := svc.CandidateByID(context.Background(), 100, 1)
	require.NoError(t, err)
	assert.Equal(t, "ann", found.Name)

	_, err = svc.CandidateByID(context.Background(), 100, 99)
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "NOT_FOUND"))
}

func TestIsAdministrator(t *testing.T) {
	dir := &fakeDirectory{members: []chat.Member{member(1, "ann", "Moderator")}}
	svc := NewAssignmentService(dir, "", 25)

	ok, err := svc.IsAdministrator(context.Background(), 100, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsAdministrator(context.Background(), 100, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}
