package models

import "time"

// Like is a directed expression of interest from one user to another,
// optionally in the context of a job post. JobPostID 0 means "no job".
// The (liker, liker role, liked user, job) tuple is unique.
type Like struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LikerID     uint      `gorm:"not null;uniqueIndex:idx_like_tuple,priority:1" json:"liker_id"`
	LikerRole   Role      `gorm:"type:varchar(16);not null;uniqueIndex:idx_like_tuple,priority:2" json:"liker_role"`
	LikedUserID uint      `gorm:"not null;uniqueIndex:idx_like_tuple,priority:3;index" json:"liked_user_id"`
	JobPostID   uint      `gorm:"not null;uniqueIndex:idx_like_tuple,priority:4" json:"job_post_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Key returns the identity tuple of the like.
func (l *Like) Key() LikeKey {
	return LikeKey{
		LikerID:     l.LikerID,
		LikerRole:   l.LikerRole,
		LikedUserID: l.LikedUserID,
		JobPostID:   l.JobPostID,
	}
}

// LikeKey identifies a like row.
type LikeKey struct {
	LikerID     uint `json:"liker_id"`
	LikerRole   Role `json:"liker_role"`
	LikedUserID uint `json:"liked_user_id"`
	JobPostID   uint `json:"job_post_id,omitempty"`
}

// Reverse returns the key of the reciprocal like: the target liking the liker back
// on the same job.
func (k LikeKey) Reverse() LikeKey {
	return LikeKey{
		LikerID:     k.LikedUserID,
		LikerRole:   k.LikerRole.Opposite(),
		LikedUserID: k.LikerID,
		JobPostID:   k.JobPostID,
	}
}

// LikeState is the relationship between an actor and a counterpart for one job context.
type LikeState string

const (
	LikeStateUnliked LikeState = "unliked"
	LikeStateLiked   LikeState = "liked"
	LikeStateMutual  LikeState = "mutual"
)

// DeriveLikeState computes the state from the two directional lookups.
// A reverse like alone leaves the actor Unliked.
func DeriveLikeState(liked, likedBack bool) LikeState {
	switch {
	case liked && likedBack:
		return LikeStateMutual
	case liked:
		return LikeStateLiked
	default:
		return LikeStateUnliked
	}
}

// LikeEventType mirrors the row-level change kinds of the like store.
type LikeEventType string

const (
	LikeEventInsert LikeEventType = "INSERT"
	LikeEventDelete LikeEventType = "DELETE"
)

// LikeEvent is one change-feed record. New is set for inserts, Old for deletes.
type LikeEvent struct {
	Type LikeEventType `json:"event_type"`
	New  *Like         `json:"new,omitempty"`
	Old  *Like         `json:"old,omitempty"`
}

// Row returns whichever side of the event carries the affected like.
func (e LikeEvent) Row() *Like {
	if e.New != nil {
		return e.New
	}
	return e.Old
}

// Involves reports whether the event touches a like between a and b in either
// direction on the given job.
func (e LikeEvent) Involves(a, b, jobPostID uint) bool {
	row := e.Row()
	if row == nil || row.JobPostID != jobPostID {
		return false
	}
	return (row.LikerID == a && row.LikedUserID == b) || (row.LikerID == b && row.LikedUserID == a)
}

// LikeResult is returned by like and unlike operations.
type LikeResult struct {
	Changed bool      `json:"changed"`
	State   LikeState `json:"state"`
	Mutual  bool      `json:"mutual"`
	// Key is the like the write resolved to.
	Key LikeKey `json:"-"`
}

// Match is a derived read model: both sides like each other on the same job.
type Match struct {
	CounterpartID   uint      `json:"counterpart_id"`
	CounterpartRole Role      `json:"counterpart_role"`
	CounterpartName string    `json:"counterpart_name"`
	JobPostID       uint      `json:"job_post_id,omitempty"`
	JobTitle        string    `json:"job_title,omitempty"`
	MatchedAt       time.Time `json:"matched_at"`
}
