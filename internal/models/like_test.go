package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOpposite(t *testing.T) {
	assert.Equal(t, RoleWHV, RoleEmployer.Opposite())
	assert.Equal(t, RoleEmployer, RoleWHV.Opposite())
	assert.Equal(t, Role(""), Role("admin").Opposite())

	r, ok := ParseRole(" Employer ")
	assert.True(t, ok)
	assert.Equal(t, RoleEmployer, r)

	_, ok = ParseRole("recruiter")
	assert.False(t, ok)
}

func TestLikeKeyReverse(t *testing.T) {
	k := LikeKey{LikerID: 1, LikerRole: RoleEmployer, LikedUserID: 2, JobPostID: 9}

	rev := k.Reverse()
	assert.Equal(t, LikeKey{LikerID: 2, LikerRole: RoleWHV, LikedUserID: 1, JobPostID: 9}, rev)
	assert.Equal(t, k, rev.Reverse())
}

func TestDeriveLikeState(t *testing.T) {
	tests := []struct {
		name      string
		liked     bool
		likedBack bool
		want      LikeState
	}{
		{"neither", false, false, LikeStateUnliked},
		{"only counterpart", false, true, LikeStateUnliked},
		{"only actor", true, false, LikeStateLiked},
		{"both", true, true, LikeStateMutual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveLikeState(tt.liked, tt.likedBack))
		})
	}
}

func TestLikeEventInvolves(t *testing.T) {
	ins := LikeEvent{Type: LikeEventInsert, New: &Like{LikerID: 1, LikedUserID: 2, JobPostID: 5}}
	del := LikeEvent{Type: LikeEventDelete, Old: &Like{LikerID: 2, LikedUserID: 1, JobPostID: 5}}

	assert.True(t, ins.Involves(1, 2, 5))
	assert.True(t, ins.Involves(2, 1, 5))
	assert.True(t, del.Involves(1, 2, 5))
	assert.False(t, ins.Involves(1, 2, 0))
	assert.False(t, ins.Involves(1, 3, 5))
	assert.False(t, LikeEvent{Type: LikeEventDelete}.Involves(1, 2, 5))
}
