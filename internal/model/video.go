package model

import "time"

const (
	DefaultThumbnailURL = "https://via.placeholder.com/1280x720?text=Video+Thumbnail"
	DefaultDuration     = "0:00"
)

// Video is the metadata record for an externally hosted video.
//
// VideoURL, ChannelID and UploaderID never change after creation.
// LikeCount, DislikeCount and CommentCount are computed from the reaction
// and comment tables; Likes, Dislikes and Comments are only populated when a
// single video is fetched by ID.
type Video struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	VideoURL     string          `json:"videoUrl"`
	ThumbnailURL string          `json:"thumbnailUrl"`
	Duration     string          `json:"duration"`
	Views        int64           `json:"views"`
	ChannelID    string          `json:"channel"`
	Channel      *ChannelSummary `json:"channelInfo,omitempty"`
	UploaderID   string          `json:"uploader"`
	Uploader     *UserSummary    `json:"uploaderInfo,omitempty"`
	Category     Category        `json:"category"`
	Tags         []string        `json:"tags"`
	IsPublic     bool            `json:"isPublic"`
	IsActive     bool            `json:"isActive"`

	LikeCount    int `json:"likeCount"`
	DislikeCount int `json:"dislikeCount"`
	CommentCount int `json:"commentCount"`

	Likes    []string `json:"likes,omitempty"`
	Dislikes []string `json:"dislikes,omitempty"`
	Comments []string `json:"comments,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reaction is a user's stance on a video. A user holds at most one.
type Reaction string

const (
	ReactionNone    Reaction = ""
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// ReactionState is the outcome of a like or dislike toggle.
type ReactionState struct {
	Reaction     Reaction `json:"-"`
	LikeCount    int      `json:"likeCount"`
	DislikeCount int      `json:"dislikeCount"`
}
