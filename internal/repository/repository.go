package repository

import (
	"context"

	"github.com/sakif/videohub/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// ChannelFilter narrows a channel listing. Search is a case-insensitive
// substring matched against name, description and handle.
type ChannelFilter struct {
	ListOptions
	Search string
}

// VideoFilter narrows a video listing. Only public, active videos are ever
// listed. An empty Category means every category.
type VideoFilter struct {
	ListOptions
	ChannelID string
	Category  string
	Search    string
	Sort      string
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpsertGitHub(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
}

type ChannelRepository interface {
	Create(ctx context.Context, channel *model.Channel) error
	GetByID(ctx context.Context, id string) (*model.Channel, error)
	HandleTaken(ctx context.Context, handle string) (bool, error)
	OwnerHasName(ctx context.Context, ownerID, channelName string) (bool, error)
	List(ctx context.Context, filter ChannelFilter) ([]model.Channel, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Channel, error)
	Update(ctx context.Context, channel *model.Channel) error
	Delete(ctx context.Context, id string) (int, error)
	ToggleSubscription(ctx context.Context, channelID, userID string) (*model.Subscription, error)
}

type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	GetByID(ctx context.Context, id string) (*model.Video, error)
	IncrementViews(ctx context.Context, id string) error
	List(ctx context.Context, filter VideoFilter) ([]model.Video, int, error)
	Trending(ctx context.Context, limit int) ([]model.Video, error)
	Update(ctx context.Context, video *model.Video) error
	Delete(ctx context.Context, id string) error
	ToggleReaction(ctx context.Context, videoID, userID string, r model.Reaction) (*model.ReactionState, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByVideo(ctx context.Context, videoID string) ([]model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, commentID, userID string) (*model.CommentLike, error)
}
