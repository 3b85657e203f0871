package model

import "time"

const (
	DefaultChannelAvatar = "https://via.placeholder.com/150x150?text=Channel"
	DefaultChannelBanner = "https://via.placeholder.com/1280x720?text=Channel+Banner"
)

// Channel is a user-owned collection of videos.
//
// SubscriberCount, VideoCount and TotalViews are computed from the
// subscription and video tables on every read. Subscribers and Videos are
// only populated when a single channel is fetched by ID.
type Channel struct {
	ID          string       `json:"id"`
	ChannelName string       `json:"channelName"`
	Handle      string       `json:"handle"`
	Description string       `json:"description"`
	OwnerID     string       `json:"owner"`
	Owner       *UserSummary `json:"ownerInfo,omitempty"`
	Avatar      string       `json:"avatar"`
	Banner      string       `json:"banner"`
	Category    Category     `json:"category"`
	IsVerified  bool         `json:"isVerified"`
	IsActive    bool         `json:"isActive"`

	SubscriberCount int   `json:"subscriberCount"`
	VideoCount      int   `json:"videoCount"`
	TotalViews      int64 `json:"totalViews"`

	Subscribers []string `json:"subscribers,omitempty"`
	Videos      []string `json:"videos,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChannelSummary is the channel view embedded in video responses.
type ChannelSummary struct {
	ID              string `json:"id"`
	ChannelName     string `json:"channelName"`
	Handle          string `json:"handle"`
	Avatar          string `json:"avatar"`
	SubscriberCount int    `json:"subscriberCount"`
}

// Subscription is the result of a subscribe toggle.
type Subscription struct {
	IsSubscribed    bool `json:"isSubscribed"`
	SubscriberCount int  `json:"subscriberCount"`
}
