// Package model defines the data structures used throughout the application.
package model

import "time"

const DefaultUserAvatar = "https://via.placeholder.com/150x150?text=User"

// User represents a registered account.
//
// Channels, LikedVideos, DislikedVideos and SubscribedChannels are not stored
// on the user row. The repository fills them from the ownership and
// relationship tables when a single user is loaded, so they can never drift
// from the Channel and Video side of the same relationship.
//
// GitHubID is nil for accounts created with email and password.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	GitHubID     *int64    `json:"githubId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Channels           []string `json:"channels"`
	LikedVideos        []string `json:"likedVideos"`
	DislikedVideos     []string `json:"dislikedVideos"`
	SubscribedChannels []string `json:"subscribedChannels"`
}

// UserSummary is the trimmed author/owner/uploader view embedded in other
// entities' responses.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
