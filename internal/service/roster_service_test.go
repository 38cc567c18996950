package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/internal/repository"
	"github.com/alonebown/crewdesk/pkg/util"
)

func newRosterService(dir *fakeDirectory, privileged []string) *RosterService {
	return NewRosterService(repository.NewRosterRepository(repository.NewMemoryLedger()), dir, 100, privileged)
}

func TestRollInAndStats(t *testing.T) {
	dir := &fakeDirectory{members: []chat.Member{member(7, "bob", "Officer")}}
	svc := newRosterService(dir, nil)

	entry, err := svc.RollIn(context.Background(), chat.User{ID: 7, Name: "bob"}, "DarkSlayer")
	require.NoError(t, err)
	assert.Equal(t, "DarkSlayer", entry.GameNickname)
	assert.Equal(t, "Officer", entry.Role)

	stats, err := svc.Stats(context.Background(), chat.User{ID: 7, Name: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", stats.UserName)
	assert.Equal(t, "DarkSlayer", stats.GameNickname)
}

func TestRollInDuplicate(t *testing.T) {
	dir := &fakeDirectory{members: []chat.Member{member(7, "bob", "Officer")}}
	svc := newRosterService(dir, nil)

	_, err := svc.RollIn(context.Background(), chat.User{ID: 7, Name: "bob"}, "DarkSlayer")
	require.NoError(t, err)

	_, err = svc.RollIn(context.Background(), chat.User{ID: 7, Name: "bob"}, "OtherName")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "ALREADY_ENLISTED"))
}

func TestRollInRequiresRole(t *testing.T) {
	dir := &fakeDirectory{members: []chat.Member{member(7, "bob", "Recruit")}}
	svc := newRosterService(dir, []string{"Officer", "Founder"})

	_, err := svc.RollIn(context.Background(), chat.User{ID: 7, Name: "bob"}, "DarkSlayer")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "PERMISSION_DENIED"))

	_, err = svc.RollIn(context.Background(), chat.User{ID: 99, Name: "eve"}, "Sneaky")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "PERMISSION_DENIED"))
}

func TestRollInValidatesNickname(t *testing.T) {
	dir := &fakeDirectory{members: []chat.Member{member(7, "bob", "Officer")}}
	svc := newRosterService(dir, nil)

	_, err := svc.RollIn(context.Background(), chat.User{ID: 7, Name: "bob"}, "   ")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
}
