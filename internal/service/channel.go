package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/metrics"
	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/repository"
)

// ChannelService enforces channel ownership and handle uniqueness.
type ChannelService struct {
	channels repository.ChannelRepository
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewChannelService(channels repository.ChannelRepository, m *metrics.Metrics, logger *slog.Logger) *ChannelService {
	return &ChannelService{channels: channels, metrics: m, logger: logger}
}

// ChannelInput is the body of a channel create request. Empty optional
// fields fall back to defaults.
type ChannelInput struct {
	ChannelName string
	Handle      string
	Description string
	Category    string
	Avatar      string
	Banner      string
}

// ChannelUpdate carries the mutable channel fields; nil means unchanged.
// Handles never change, so there is no Handle field.
type ChannelUpdate struct {
	ChannelName *string
	Description *string
	Category    *string
	Avatar      *string
	Banner      *string
}

// DeriveHandle lowercases s, keeps only ASCII letters and digits, and cuts
// the result to MaxHandleLength. "My Tech Channel!" becomes "mytechchannel".
func DeriveHandle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == MaxHandleLength {
				break
			}
		}
	}
	return b.String()
}

// Create registers a new channel owned by ownerID.
//
// The handle is derived from the channel name when none is given; a given
// handle goes through the same normalisation. Creation fails with a
// validation error when the handle is taken by any channel (ignoring case)
// or when the owner already has a channel with this exact name.
func (s *ChannelService) Create(ctx context.Context, ownerID string, in ChannelInput) (*model.Channel, error) {
	name, err := textField("channelName", "Channel name", in.ChannelName, true, MaxChannelNameLength)
	if err != nil {
		return nil, err
	}
	description, err := textField("description", "Description", in.Description, false, MaxChannelDescriptionLength)
	if err != nil {
		return nil, err
	}

	category := model.CategoryEntertainment
	if c := strings.TrimSpace(in.Category); c != "" {
		if !model.ValidCategory(c) {
			return nil, apperror.ValidationFailed("category", fmt.Sprintf("%q is not a valid category", c))
		}
		category = model.Category(c)
	}

	source := in.Handle
	if strings.TrimSpace(source) == "" {
		source = name
	}
	handle := DeriveHandle(source)
	if handle == "" {
		return nil, apperror.ValidationFailed("handle", "Handle must contain at least one letter or digit")
	}

	taken, err := s.channels.HandleTaken(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("service/channel: checking handle: %w", err)
	}
	if taken {
		return nil, apperror.ValidationFailed("handle", "Handle already taken. Please choose a different handle.")
	}

	dup, err := s.channels.OwnerHasName(ctx, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("service/channel: checking channel name: %w", err)
	}
	if dup {
		return nil, apperror.ValidationFailed("channelName", "You already have a channel with this name")
	}

	channel := &model.Channel{
		ChannelName: name,
		Handle:      handle,
		Description: description,
		OwnerID:     ownerID,
		Avatar:      orDefault(in.Avatar, model.DefaultChannelAvatar),
		Banner:      orDefault(in.Banner, model.DefaultChannelBanner),
		Category:    category,
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("service/channel: creating channel: %w", err)
	}

	s.metrics.ChannelEvent("created")
	s.logger.Info("channel created",
		slog.String("channelID", channel.ID),
		slog.String("handle", channel.Handle),
		slog.String("ownerID", ownerID),
	)

	return s.channels.GetByID(ctx, channel.ID)
}

// Get returns a channel with its subscriber and video ID lists.
func (s *ChannelService) Get(ctx context.Context, id string) (*model.Channel, error) {
	return s.channels.GetByID(ctx, id)
}

// List returns active channels, most subscribed first, optionally filtered
// by a case-insensitive substring of name, description or handle.
func (s *ChannelService) List(ctx context.Context, search string, page PageRequest) (*Page[model.Channel], error) {
	page = page.normalize()
	channels, total, err := s.channels.List(ctx, repository.ChannelFilter{
		ListOptions: page.options(),
		Search:      strings.TrimSpace(search),
	})
	if err != nil {
		return nil, fmt.Errorf("service/channel: listing channels: %w", err)
	}
	return newPage(channels, total, page), nil
}

// Mine returns every channel userID owns, newest first.
func (s *ChannelService) Mine(ctx context.Context, userID string) ([]model.Channel, error) {
	channels, err := s.channels.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/channel: listing channels of %s: %w", userID, err)
	}
	return channels, nil
}

// Update applies in to a channel userID owns.
func (s *ChannelService) Update(ctx context.Context, userID, id string, in ChannelUpdate) (*model.Channel, error) {
	channel, err := s.owned(ctx, userID, id, "Not authorized to update this channel")
	if err != nil {
		return nil, err
	}

	if in.ChannelName != nil {
		name, err := textField("channelName", "Channel name", *in.ChannelName, true, MaxChannelNameLength)
		if err != nil {
			return nil, err
		}
		if name != channel.ChannelName {
			dup, err := s.channels.OwnerHasName(ctx, userID, name)
			if err != nil {
				return nil, fmt.Errorf("service/channel: checking channel name: %w", err)
			}
			if dup {
				return nil, apperror.ValidationFailed("channelName", "You already have a channel with this name")
			}
		}
		channel.ChannelName = name
	}
	if in.Description != nil {
		if channel.Description, err = textField("description", "Description", *in.Description, false, MaxChannelDescriptionLength); err != nil {
			return nil, err
		}
	}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if !model.ValidCategory(c) {
			return nil, apperror.ValidationFailed("category", fmt.Sprintf("%q is not a valid category", c))
		}
		channel.Category = model.Category(c)
	}
	if in.Avatar != nil {
		channel.Avatar = orDefault(*in.Avatar, model.DefaultChannelAvatar)
	}
	if in.Banner != nil {
		channel.Banner = orDefault(*in.Banner, model.DefaultChannelBanner)
	}

	if err := s.channels.Update(ctx, channel); err != nil {
		return nil, fmt.Errorf("service/channel: updating channel %s: %w", id, err)
	}

	s.metrics.ChannelEvent("updated")
	s.logger.Info("channel updated", slog.String("channelID", id))

	return s.channels.GetByID(ctx, id)
}

// Delete removes a channel userID owns together with all of its videos.
func (s *ChannelService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id, "Not authorized to delete this channel"); err != nil {
		return err
	}

	videos, err := s.channels.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service/channel: deleting channel %s: %w", id, err)
	}

	s.metrics.ChannelEvent("deleted")
	s.logger.Info("channel deleted",
		slog.String("channelID", id),
		slog.Int("videosDeleted", videos),
	)
	return nil
}

// ToggleSubscription subscribes userID to the channel or, if already
// subscribed, unsubscribes. Owners cannot subscribe to their own channel.
func (s *ChannelService) ToggleSubscription(ctx context.Context, userID, id string) (*model.Subscription, error) {
	channel, err := s.channels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if channel.OwnerID == userID {
		return nil, apperror.InvalidOperation("Cannot subscribe to your own channel")
	}

	sub, err := s.channels.ToggleSubscription(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("service/channel: toggling subscription: %w", err)
	}

	s.metrics.Subscription(sub.IsSubscribed)
	s.logger.Info("subscription toggled",
		slog.String("channelID", id),
		slog.String("userID", userID),
		slog.Bool("subscribed", sub.IsSubscribed),
	)
	return sub, nil
}

func (s *ChannelService) owned(ctx context.Context, userID, id, denied string) (*model.Channel, error) {
	channel, err := s.channels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if channel.OwnerID != userID {
		return nil, apperror.Forbidden(denied)
	}
	return channel, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
