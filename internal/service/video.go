package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/metrics"
	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/repository"
)

// CategoryAll in a listing query means no category filter.
const CategoryAll = "All"

// VideoService handles uploads, reads (with view counting), edits and
// reactions.
type VideoService struct {
	videos   repository.VideoRepository
	channels repository.ChannelRepository
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewVideoService(
	videos repository.VideoRepository,
	channels repository.ChannelRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *VideoService {
	return &VideoService{videos: videos, channels: channels, metrics: m, logger: logger}
}

// VideoInput is the body of an upload request. Tags is a comma-separated
// list. IsPublic defaults to true when nil.
type VideoInput struct {
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Duration     string
	ChannelID    string
	Category     string
	Tags         string
	IsPublic     *bool
}

// VideoUpdate carries the mutable video fields; nil means unchanged.
// videoUrl, channel and uploader cannot be changed.
type VideoUpdate struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
	Category     *string
	Tags         *string
}

// VideoQuery filters a video listing.
type VideoQuery struct {
	Search   string
	Category string
	Sort     string
	PageRequest
}

// SplitTags turns "go, web,,  sqlite " into [go web sqlite].
func SplitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Create uploads a video to a channel the uploader owns.
func (s *VideoService) Create(ctx context.Context, uploaderID string, in VideoInput) (*model.Video, error) {
	title, err := textField("title", "Title", in.Title, true, MaxVideoTitleLength)
	if err != nil {
		return nil, err
	}
	description, err := textField("description", "Description", in.Description, false, MaxVideoDescriptionLength)
	if err != nil {
		return nil, err
	}
	videoURL, err := textField("videoUrl", "Video URL", in.VideoURL, true, 0)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if !model.ValidCategory(category) {
		return nil, apperror.ValidationFailed("category", "Please select a valid category")
	}
	channelID := strings.TrimSpace(in.ChannelID)
	if channelID == "" {
		return nil, apperror.ValidationFailed("channelId", "Channel is required")
	}

	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.OwnerID != uploaderID {
		return nil, apperror.Forbidden("Not authorized to upload to this channel")
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}

	video := &model.Video{
		Title:        title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: orDefault(in.ThumbnailURL, model.DefaultThumbnailURL),
		Duration:     orDefault(in.Duration, model.DefaultDuration),
		ChannelID:    channel.ID,
		UploaderID:   uploaderID,
		Category:     model.Category(category),
		Tags:         SplitTags(in.Tags),
		IsPublic:     isPublic,
		IsActive:     true,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("service/video: creating video: %w", err)
	}

	s.metrics.VideoEvent("created")
	s.logger.Info("video uploaded",
		slog.String("videoID", video.ID),
		slog.String("channelID", channel.ID),
		slog.String("uploaderID", uploaderID),
	)

	return s.videos.GetByID(ctx, video.ID)
}

// Get returns a video and counts the read as a view. Every call counts;
// there is no per-viewer deduplication.
func (s *VideoService) Get(ctx context.Context, id string) (*model.Video, error) {
	if err := s.videos.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	s.metrics.VideoViewed()
	return s.videos.GetByID(ctx, id)
}

// List returns public, active videos matching q.
func (s *VideoService) List(ctx context.Context, q VideoQuery) (*Page[model.Video], error) {
	page := q.PageRequest.normalize()
	category := strings.TrimSpace(q.Category)
	if category == CategoryAll {
		category = ""
	}

	videos, total, err := s.videos.List(ctx, repository.VideoFilter{
		ListOptions: page.options(),
		Category:    category,
		Search:      strings.TrimSpace(q.Search),
		Sort:        q.Sort,
	})
	if err != nil {
		return nil, fmt.Errorf("service/video: listing videos: %w", err)
	}
	return newPage(videos, total, page), nil
}

// ListByChannel returns a channel's public, active videos, newest first.
func (s *VideoService) ListByChannel(ctx context.Context, channelID string, page PageRequest) (*Page[model.Video], error) {
	if _, err := s.channels.GetByID(ctx, channelID); err != nil {
		return nil, err
	}

	page = page.normalize()
	videos, total, err := s.videos.List(ctx, repository.VideoFilter{
		ListOptions: page.options(),
		ChannelID:   channelID,
	})
	if err != nil {
		return nil, fmt.Errorf("service/video: listing videos of channel %s: %w", channelID, err)
	}
	return newPage(videos, total, page), nil
}

// Trending returns the TrendingLimit most viewed videos of all time.
func (s *VideoService) Trending(ctx context.Context) ([]model.Video, error) {
	videos, err := s.videos.Trending(ctx, TrendingLimit)
	if err != nil {
		return nil, fmt.Errorf("service/video: listing trending videos: %w", err)
	}
	return videos, nil
}

// Update applies in to a video userID uploaded.
func (s *VideoService) Update(ctx context.Context, userID, id string, in VideoUpdate) (*model.Video, error) {
	video, err := s.owned(ctx, userID, id, "Not authorized to update this video")
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if video.Title, err = textField("title", "Title", *in.Title, true, MaxVideoTitleLength); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		if video.Description, err = textField("description", "Description", *in.Description, false, MaxVideoDescriptionLength); err != nil {
			return nil, err
		}
	}
	if in.ThumbnailURL != nil {
		video.ThumbnailURL = orDefault(*in.ThumbnailURL, model.DefaultThumbnailURL)
	}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if !model.ValidCategory(c) {
			return nil, apperror.ValidationFailed("category", "Please select a valid category")
		}
		video.Category = model.Category(c)
	}
	if in.Tags != nil {
		video.Tags = SplitTags(*in.Tags)
	}

	if err := s.videos.Update(ctx, video); err != nil {
		return nil, fmt.Errorf("service/video: updating video %s: %w", id, err)
	}

	s.metrics.VideoEvent("updated")
	s.logger.Info("video updated", slog.String("videoID", id))

	return s.videos.GetByID(ctx, id)
}

// Delete removes a video userID uploaded. Its comments are kept.
func (s *VideoService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id, "Not authorized to delete this video"); err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/video: deleting video %s: %w", id, err)
	}

	s.metrics.VideoEvent("deleted")
	s.logger.Info("video deleted", slog.String("videoID", id))
	return nil
}

// Like toggles userID's like on the video. Liking a disliked video
// replaces the dislike in the same call.
func (s *VideoService) Like(ctx context.Context, userID, id string) (*model.ReactionState, error) {
	return s.react(ctx, userID, id, model.ReactionLike)
}

// Dislike is the mirror image of Like.
func (s *VideoService) Dislike(ctx context.Context, userID, id string) (*model.ReactionState, error) {
	return s.react(ctx, userID, id, model.ReactionDislike)
}

func (s *VideoService) react(ctx context.Context, userID, id string, r model.Reaction) (*model.ReactionState, error) {
	state, err := s.videos.ToggleReaction(ctx, id, userID, r)
	if err != nil {
		return nil, err
	}

	s.metrics.Reaction(string(r), string(state.Reaction))
	s.logger.Debug("reaction toggled",
		slog.String("videoID", id),
		slog.String("userID", userID),
		slog.String("reaction", string(state.Reaction)),
	)
	return state, nil
}

func (s *VideoService) owned(ctx context.Context, userID, id, denied string) (*model.Video, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.UploaderID != userID {
		return nil, apperror.Forbidden(denied)
	}
	return video, nil
}
