package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/metrics"
	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/repository"
)

// CommentService manages comments. A comment's videoId is an opaque
// string; the video is never looked up.
type CommentService struct {
	comments repository.CommentRepository
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, m *metrics.Metrics, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, metrics: m, logger: logger}
}

// Create posts a comment by authorID on videoID.
func (s *CommentService) Create(ctx context.Context, authorID, videoID, text string) (*model.Comment, error) {
	text, err := textField("text", "Comment text", text, true, MaxCommentLength)
	if err != nil {
		return nil, err
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, apperror.ValidationFailed("videoId", "Video ID is required")
	}

	comment := &model.Comment{Text: text, AuthorID: authorID, VideoID: videoID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/comment: creating comment: %w", err)
	}

	s.metrics.CommentEvent("created")
	s.logger.Info("comment added",
		slog.String("commentID", comment.ID),
		slog.String("videoID", videoID),
		slog.String("authorID", authorID),
	)

	return s.comments.GetByID(ctx, comment.ID)
}

// ListByVideo returns the active comments on videoID, newest first. An
// unknown videoID simply has no comments.
func (s *CommentService) ListByVideo(ctx context.Context, videoID string) ([]model.Comment, error) {
	comments, err := s.comments.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("service/comment: listing comments of video %s: %w", videoID, err)
	}
	return comments, nil
}

// Update replaces the text of a comment userID wrote and marks it edited.
func (s *CommentService) Update(ctx context.Context, userID, id, text string) (*model.Comment, error) {
	comment, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if comment.Text, err = textField("text", "Comment text", text, true, MaxCommentLength); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment.IsEdited = true
	comment.EditedAt = &now

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/comment: updating comment %s: %w", id, err)
	}

	s.metrics.CommentEvent("edited")
	s.logger.Info("comment edited", slog.String("commentID", id))

	return s.comments.GetByID(ctx, id)
}

// Delete removes a comment userID wrote.
func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/comment: deleting comment %s: %w", id, err)
	}

	s.metrics.CommentEvent("deleted")
	s.logger.Info("comment deleted", slog.String("commentID", id))
	return nil
}

// ToggleLike likes the comment for userID, or removes the like.
func (s *CommentService) ToggleLike(ctx context.Context, userID, id string) (*model.CommentLike, error) {
	like, err := s.comments.ToggleLike(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	s.metrics.CommentEvent("like_toggled")
	return like, nil
}

func (s *CommentService) owned(ctx context.Context, userID, id string) (*model.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, apperror.Forbidden("Not authorized")
	}
	return comment, nil
}
