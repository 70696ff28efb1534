package service

import (
	"fmt"

	"whvmatch/internal/models"
)

// Heart icon variants.
const (
	HeartOutline = "outline"
	HeartFilled  = "filled"
)

// Button labels.
const (
	LabelLike   = "Heart to Match"
	LabelUnlike = "Unlike"
)

// Notice is a modal or banner shown alongside the like button.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// LikeView is what a client renders for one like relationship.
type LikeView struct {
	State        models.LikeState `json:"state"`
	Label        string           `json:"label"`
	Heart        string           `json:"heart"`
	Confirmation *Notice          `json:"confirmation,omitempty"`
	Match        *Notice          `json:"match,omitempty"`
}

// Present maps a state transition to its view. It holds no state of its own.
func Present(prev, next models.LikeState, counterpartName string) LikeView {
	v := LikeView{State: next, Label: LabelUnlike, Heart: HeartFilled}
	if next == models.LikeStateUnliked {
		v.Label = LabelLike
		v.Heart = HeartOutline
		return v
	}

	name := counterpartName
	if name == "" {
		name = "them"
	}
	if prev == models.LikeStateUnliked && next == models.LikeStateLiked {
		v.Confirmation = &Notice{
			Title:   "Like sent",
			Message: fmt.Sprintf("You liked %s. We'll let you know if they like you back.", name),
		}
	}
	if next == models.LikeStateMutual {
		v.Match = &Notice{
			Title:   "It's a Match",
			Message: fmt.Sprintf("You and %s liked each other.", name),
		}
	}
	return v
}
