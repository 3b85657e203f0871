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

var _ repository.VideoRepository = (*VideoDB)(nil)

// VideoDB is the videos store.
type VideoDB struct {
	db *DB
}

// videoSelect reads a video with channel and uploader summaries and the
// counters derived from reactions and comments.
const videoSelect = `
	SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.duration, v.views,
	       v.channel_id, c.channel_name, c.handle, c.avatar,
	       (SELECT COUNT(*) FROM channel_subscriptions s WHERE s.channel_id = c.id),
	       v.uploader_id, u.username, u.avatar,
	       v.category, v.tags, v.is_public, v.is_active,
	       (SELECT COUNT(*) FROM video_reactions r WHERE r.video_id = v.id AND r.kind = 'like') AS like_count,
	       (SELECT COUNT(*) FROM video_reactions r WHERE r.video_id = v.id AND r.kind = 'dislike') AS dislike_count,
	       (SELECT COUNT(*) FROM comments m WHERE m.video_id = v.id AND m.is_active = 1) AS comment_count,
	       v.created_at, v.updated_at
	FROM videos v
	JOIN channels c ON c.id = v.channel_id
	JOIN users u ON u.id = v.uploader_id`

// videoSorts maps the accepted sort keys to ORDER BY clauses. Anything not
// listed falls back to newest first.
var videoSorts = map[string]string{
	"-createdAt": "v.created_at DESC, v.rowid DESC",
	"createdAt":  "v.created_at ASC, v.rowid ASC",
	"-views":     "v.views DESC, v.created_at DESC",
	"views":      "v.views ASC, v.created_at DESC",
	"-likeCount": "like_count DESC, v.created_at DESC",
	"title":      "v.title ASC",
}

func scanVideo(s scanner) (*model.Video, error) {
	var v model.Video
	var ch model.ChannelSummary
	var up model.UserSummary
	var category, tags string
	if err := s.Scan(
		&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL, &v.Duration, &v.Views,
		&v.ChannelID, &ch.ChannelName, &ch.Handle, &ch.Avatar, &ch.SubscriberCount,
		&v.UploaderID, &up.Username, &up.Avatar,
		&category, &tags, &v.IsPublic, &v.IsActive,
		&v.LikeCount, &v.DislikeCount, &v.CommentCount,
		&v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ch.ID = v.ChannelID
	up.ID = v.UploaderID
	v.Channel = &ch
	v.Uploader = &up
	v.Category = model.Category(category)
	decoded, err := decodeTags(tags)
	if err != nil {
		return nil, err
	}
	v.Tags = decoded
	return &v, nil
}

func collectVideos(rows *sql.Rows, capacity int) ([]model.Video, error) {
	defer rows.Close()

	videos := make([]model.Video, 0, capacity)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning video row: %w", err)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating videos: %w", err)
	}
	return videos, nil
}

// Create inserts a new video. The channel's video list and videoCount are
// derived from videos.channel_id, so the insert alone attaches it.
func (v *VideoDB) Create(ctx context.Context, video *model.Video) error {
	now := time.Now().UTC()
	video.ID = xid.New().String()
	video.CreatedAt = now
	video.UpdatedAt = now

	tags, err := encodeTags(video.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: creating video: %w", err)
	}

	_, err = v.db.conn.ExecContext(ctx,
		`INSERT INTO videos (id, title, description, video_url, thumbnail_url, duration, views,
		                     channel_id, uploader_id, category, tags, is_public, is_active,
		                     created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID,
		video.Title,
		video.Description,
		video.VideoURL,
		video.ThumbnailURL,
		video.Duration,
		video.Views,
		video.ChannelID,
		video.UploaderID,
		string(video.Category),
		tags,
		video.IsPublic,
		video.IsActive,
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating video: %w", err)
	}
	return nil
}

// GetByID retrieves a video with its like, dislike and comment ID lists.
// It does not touch the view counter; see IncrementViews.
func (v *VideoDB) GetByID(ctx context.Context, id string) (*model.Video, error) {
	video, err := scanVideo(v.db.conn.QueryRowContext(ctx, videoSelect+` WHERE v.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("video", id)
		}
		return nil, fmt.Errorf("sqlite: getting video %s: %w", id, err)
	}

	video.Likes, err = queryIDs(ctx, v.db.conn,
		`SELECT user_id FROM video_reactions WHERE video_id = ? AND kind = 'like' ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading likes of video %s: %w", id, err)
	}

	video.Dislikes, err = queryIDs(ctx, v.db.conn,
		`SELECT user_id FROM video_reactions WHERE video_id = ? AND kind = 'dislike' ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading dislikes of video %s: %w", id, err)
	}

	video.Comments, err = queryIDs(ctx, v.db.conn,
		`SELECT id FROM comments WHERE video_id = ? AND is_active = 1 ORDER BY created_at DESC, rowid DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading comments of video %s: %w", id, err)
	}

	return video, nil
}

// IncrementViews adds one view in a single UPDATE, so concurrent readers
// never lose an increment.
func (v *VideoDB) IncrementViews(ctx context.Context, id string) error {
	result, err := v.db.conn.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing views of video %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("video", id)
	}
	return nil
}

// List returns one page of public, active videos and the number matching
// the filter.
func (v *VideoDB) List(ctx context.Context, filter repository.VideoFilter) ([]model.Video, int, error) {
	limit, offset := clampList(filter.ListOptions)

	where := ` WHERE v.is_public = 1 AND v.is_active = 1`
	var args []any
	if filter.ChannelID != "" {
		where += ` AND v.channel_id = ?`
		args = append(args, filter.ChannelID)
	}
	if filter.Category != "" {
		where += ` AND v.category = ?`
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		// Tags are matched per element; the raw JSON text carries escapes and punctuation.
		where += ` AND (v.title LIKE ? ESCAPE '\' OR v.description LIKE ? ESCAPE '\'` +
			` OR EXISTS (SELECT 1 FROM json_each(v.tags) j WHERE j.value LIKE ? ESCAPE '\'))`
		args = append(args, p, p, p)
	}

	var total int
	if err := v.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM videos v`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting videos: %w", err)
	}

	order, ok := videoSorts[filter.Sort]
	if !ok {
		order = videoSorts["-createdAt"]
	}

	rows, err := v.db.conn.QueryContext(ctx,
		videoSelect+where+` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing videos: %w", err)
	}

	videos, err := collectVideos(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// Trending returns the most viewed public, active videos of all time, ties
// broken by like count.
func (v *VideoDB) Trending(ctx context.Context, limit int) ([]model.Video, error) {
	rows, err := v.db.conn.QueryContext(ctx,
		videoSelect+` WHERE v.is_public = 1 AND v.is_active = 1
		 ORDER BY v.views DESC, like_count DESC, v.created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing trending videos: %w", err)
	}
	return collectVideos(rows, limit)
}

// Update saves the mutable video fields. video_url, channel_id and
// uploader_id are never written after creation.
func (v *VideoDB) Update(ctx context.Context, video *model.Video) error {
	video.UpdatedAt = time.Now().UTC()

	tags, err := encodeTags(video.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: updating video %s: %w", video.ID, err)
	}

	result, err := v.db.conn.ExecContext(ctx,
		`UPDATE videos
		 SET title = ?, description = ?, thumbnail_url = ?, category = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		video.Title,
		video.Description,
		video.ThumbnailURL,
		string(video.Category),
		tags,
		video.UpdatedAt,
		video.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating video %s: %w", video.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("video", video.ID)
	}
	return nil
}

// Delete removes a video and its reactions. Removing the row is what
// detaches it from its channel's video list and videoCount. Comments stay.
func (v *VideoDB) Delete(ctx context.Context, id string) error {
	return v.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM video_reactions WHERE video_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting reactions of video %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting video %s: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("video", id)
		}
		return nil
	})
}

// ToggleReaction applies a like or dislike from userID.
//
// The user's current reaction decides the outcome:
//
//	current == r  → reaction removed (unlike / un-dislike)
//	otherwise     → reaction set to r, replacing the opposite one if present
//
// Because (video_id, user_id) is the primary key, switching from dislike to
// like is a single row update: there is no moment where the user is in both
// sets or in neither.
func (v *VideoDB) ToggleReaction(ctx context.Context, videoID, userID string, r model.Reaction) (*model.ReactionState, error) {
	if r != model.ReactionLike && r != model.ReactionDislike {
		return nil, fmt.Errorf("sqlite: unknown reaction %q", r)
	}

	state := &model.ReactionState{}

	err := v.db.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM videos WHERE id = ?`, videoID).Scan(&one)
		if err == sql.ErrNoRows {
			return apperror.NotFound("video", videoID)
		}
		if err != nil {
			return fmt.Errorf("sqlite: checking video %s: %w", videoID, err)
		}

		var current string
		err = tx.QueryRowContext(ctx,
			`SELECT kind FROM video_reactions WHERE video_id = ? AND user_id = ?`, videoID, userID,
		).Scan(&current)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("sqlite: reading reaction: %w", err)
		}

		if model.Reaction(current) == r {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM video_reactions WHERE video_id = ? AND user_id = ?`, videoID, userID,
			); err != nil {
				return fmt.Errorf("sqlite: removing reaction: %w", err)
			}
			state.Reaction = model.ReactionNone
		} else {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO video_reactions (video_id, user_id, kind, created_at) VALUES (?, ?, ?, ?)
				 ON CONFLICT (video_id, user_id) DO UPDATE SET kind = excluded.kind, created_at = excluded.created_at`,
				videoID, userID, string(r), time.Now().UTC(),
			); err != nil {
				return fmt.Errorf("sqlite: setting reaction: %w", err)
			}
			state.Reaction = r
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT
			   (SELECT COUNT(*) FROM video_reactions WHERE video_id = ? AND kind = 'like'),
			   (SELECT COUNT(*) FROM video_reactions WHERE video_id = ? AND kind = 'dislike')`,
			videoID, videoID,
		).Scan(&state.LikeCount, &state.DislikeCount); err != nil {
			return fmt.Errorf("sqlite: counting reactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}
