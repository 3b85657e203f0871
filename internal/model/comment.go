package model

import "time"

// Comment is a user's remark on a video.
//
// VideoID is a plain string association. Nothing checks that the video
// exists, and deleting a video or channel leaves its comments in place.
type Comment struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	AuthorID  string       `json:"author"`
	Author    *UserSummary `json:"authorInfo,omitempty"`
	VideoID   string       `json:"videoId"`
	LikeCount int          `json:"likeCount"`
	Likes     []string     `json:"likes"`
	IsEdited  bool         `json:"isEdited"`
	EditedAt  *time.Time   `json:"editedAt,omitempty"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CommentLike is the outcome of a comment like toggle.
type CommentLike struct {
	IsLiked   bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}
