package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/repository"
)

var _ repository.ChannelRepository = (*ChannelDB)(nil)

// ChannelDB is the channels store.
type ChannelDB struct {
	db *DB
}

// channelSelect reads a channel with its owner summary and derived counters.
const channelSelect = `
	SELECT c.id, c.channel_name, c.handle, c.description, c.owner_id, u.username, u.avatar,
	       c.avatar, c.banner, c.category, c.is_verified, c.is_active,
	       (SELECT COUNT(*) FROM channel_subscriptions s WHERE s.channel_id = c.id) AS subscriber_count,
	       (SELECT COUNT(*) FROM videos v WHERE v.channel_id = c.id) AS video_count,
	       (SELECT COALESCE(SUM(v.views), 0) FROM videos v WHERE v.channel_id = c.id) AS total_views,
	       c.created_at, c.updated_at
	FROM channels c
	JOIN users u ON u.id = c.owner_id`

func scanChannel(s scanner) (*model.Channel, error) {
	var c model.Channel
	var owner model.UserSummary
	var category string
	if err := s.Scan(
		&c.ID, &c.ChannelName, &c.Handle, &c.Description, &c.OwnerID, &owner.Username, &owner.Avatar,
		&c.Avatar, &c.Banner, &category, &c.IsVerified, &c.IsActive,
		&c.SubscriberCount, &c.VideoCount, &c.TotalViews,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	owner.ID = c.OwnerID
	c.Owner = &owner
	c.Category = model.Category(category)
	return &c, nil
}

func collectChannels(rows *sql.Rows, capacity int) ([]model.Channel, error) {
	defer rows.Close()

	channels := make([]model.Channel, 0, capacity)
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning channel row: %w", err)
		}
		channels = append(channels, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating channels: %w", err)
	}
	return channels, nil
}

// Create inserts a new channel. The owner's channel list is derived from
// channels.owner_id, so nothing else needs writing.
// A handle collision that slips past the service's pre-check is still
// reported as a validation error.
func (c *ChannelDB) Create(ctx context.Context, channel *model.Channel) error {
	now := time.Now().UTC()
	channel.ID = xid.New().String()
	channel.IsActive = true
	channel.CreatedAt = now
	channel.UpdatedAt = now

	_, err := c.db.conn.ExecContext(ctx,
		`INSERT INTO channels (id, channel_name, handle, description, owner_id, avatar, banner,
		                       category, is_verified, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		channel.ID,
		channel.ChannelName,
		channel.Handle,
		channel.Description,
		channel.OwnerID,
		channel.Avatar,
		channel.Banner,
		string(channel.Category),
		channel.IsVerified,
		channel.IsActive,
		channel.CreatedAt,
		channel.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ValidationFailed("handle", "Handle already taken. Please choose a different handle.")
		}
		return fmt.Errorf("sqlite: creating channel: %w", err)
	}

	return nil
}

// GetByID retrieves a channel with its subscriber and video ID lists.
func (c *ChannelDB) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	channel, err := scanChannel(c.db.conn.QueryRowContext(ctx, channelSelect+` WHERE c.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("channel", id)
		}
		return nil, fmt.Errorf("sqlite: getting channel %s: %w", id, err)
	}

	channel.Subscribers, err = queryIDs(ctx, c.db.conn,
		`SELECT user_id FROM channel_subscriptions WHERE channel_id = ? ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading subscribers of channel %s: %w", id, err)
	}

	channel.Videos, err = queryIDs(ctx, c.db.conn,
		`SELECT id FROM videos WHERE channel_id = ? ORDER BY created_at DESC, rowid DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading videos of channel %s: %w", id, err)
	}

	return channel, nil
}

// HandleTaken reports whether any channel already uses handle, ignoring case.
func (c *ChannelDB) HandleTaken(ctx context.Context, handle string) (bool, error) {
	var n int
	err := c.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM channels WHERE handle = ? COLLATE NOCASE`, handle,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking handle %q: %w", handle, err)
	}
	return n > 0, nil
}

// OwnerHasName reports whether ownerID already owns a channel called channelName.
func (c *ChannelDB) OwnerHasName(ctx context.Context, ownerID, channelName string) (bool, error) {
	var n int
	err := c.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM channels WHERE owner_id = ? AND channel_name = ?`, ownerID, channelName,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking channel name for owner %s: %w", ownerID, err)
	}
	return n > 0, nil
}

// List returns one page of active channels, most subscribed first, together
// with the number of channels matching the filter.
func (c *ChannelDB) List(ctx context.Context, filter repository.ChannelFilter) ([]model.Channel, int, error) {
	limit, offset := clampList(filter.ListOptions)

	where := ` WHERE c.is_active = 1`
	var args []any
	if filter.Search != "" {
		p := likePattern(filter.Search)
		where += ` AND (c.channel_name LIKE ? ESCAPE '\' OR c.description LIKE ? ESCAPE '\' OR c.handle LIKE ? ESCAPE '\')`
		args = append(args, p, p, p)
	}

	var total int
	if err := c.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM channels c`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting channels: %w", err)
	}

	rows, err := c.db.conn.QueryContext(ctx,
		channelSelect+where+` ORDER BY subscriber_count DESC, c.created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing channels: %w", err)
	}

	channels, err := collectChannels(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return channels, total, nil
}

// ListByOwner returns every channel ownerID owns, newest first, including
// inactive ones.
func (c *ChannelDB) ListByOwner(ctx context.Context, ownerID string) ([]model.Channel, error) {
	rows, err := c.db.conn.QueryContext(ctx,
		channelSelect+` WHERE c.owner_id = ? ORDER BY c.created_at DESC, c.rowid DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing channels of owner %s: %w", ownerID, err)
	}
	return collectChannels(rows, 4)
}

// Update saves the mutable channel fields. handle, owner_id and the
// derived counters are never written here.
func (c *ChannelDB) Update(ctx context.Context, channel *model.Channel) error {
	channel.UpdatedAt = time.Now().UTC()

	result, err := c.db.conn.ExecContext(ctx,
		`UPDATE channels
		 SET channel_name = ?, description = ?, category = ?, avatar = ?, banner = ?, updated_at = ?
		 WHERE id = ?`,
		channel.ChannelName,
		channel.Description,
		string(channel.Category),
		channel.Avatar,
		channel.Banner,
		channel.UpdatedAt,
		channel.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating channel %s: %w", channel.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("channel", channel.ID)
	}
	return nil
}

// Delete removes a channel and everything that hangs off it, in one
// transaction and in this order: the channel's videos (their reactions
// cascade), its subscriptions, then the channel row. The owner's channel
// list is derived, so it loses the entry in the same commit.
//
// Comments are keyed by a free-form video ID and are left in place.
//
// Returns the number of videos deleted.
func (c *ChannelDB) Delete(ctx context.Context, id string) (int, error) {
	var deletedVideos int64

	err := c.db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE channel_id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting videos of channel %s: %w", id, err)
		}
		if deletedVideos, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM channel_subscriptions WHERE channel_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting subscriptions of channel %s: %w", id, err)
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting channel %s: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("channel", id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int(deletedVideos), nil
}

// ToggleSubscription subscribes userID to the channel, or unsubscribes if
// already subscribed. The membership change and the count returned to the
// caller come from the same transaction.
func (c *ChannelDB) ToggleSubscription(ctx context.Context, channelID, userID string) (*model.Subscription, error) {
	var sub model.Subscription

	err := c.db.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM channels WHERE id = ?`, channelID).Scan(&one)
		if err == sql.ErrNoRows {
			return apperror.NotFound("channel", channelID)
		}
		if err != nil {
			return fmt.Errorf("sqlite: checking channel %s: %w", channelID, err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM channel_subscriptions WHERE channel_id = ? AND user_id = ?`, channelID, userID)
		if err != nil {
			return fmt.Errorf("sqlite: removing subscription: %w", err)
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}

		if removed == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO channel_subscriptions (channel_id, user_id, created_at) VALUES (?, ?, ?)`,
				channelID, userID, time.Now().UTC(),
			); err != nil {
				return fmt.Errorf("sqlite: adding subscription: %w", err)
			}
		}
		sub.IsSubscribed = removed == 0

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM channel_subscriptions WHERE channel_id = ?`, channelID,
		).Scan(&sub.SubscriberCount); err != nil {
			return fmt.Errorf("sqlite: counting subscribers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &sub, nil
}
