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

var _ repository.CommentRepository = (*CommentDB)(nil)

// CommentDB is the comments store.
type CommentDB struct {
	db *DB
}

const commentSelect = `
	SELECT m.id, m.text, m.author_id, u.username, u.avatar, m.video_id,
	       (SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = m.id),
	       m.is_edited, m.edited_at, m.is_active, m.created_at, m.updated_at
	FROM comments m
	JOIN users u ON u.id = m.author_id`

func scanComment(s scanner) (*model.Comment, error) {
	var c model.Comment
	var author model.UserSummary
	var editedAt sql.NullTime
	if err := s.Scan(
		&c.ID, &c.Text, &c.AuthorID, &author.Username, &author.Avatar, &c.VideoID,
		&c.LikeCount, &c.IsEdited, &editedAt, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	author.ID = c.AuthorID
	c.Author = &author
	if editedAt.Valid {
		t := editedAt.Time
		c.EditedAt = &t
	}
	c.Likes = []string{}
	return &c, nil
}

// Create inserts a new comment. VideoID is stored as given; nothing checks
// that such a video exists.
func (c *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	now := time.Now().UTC()
	comment.ID = xid.New().String()
	comment.IsActive = true
	comment.CreatedAt = now
	comment.UpdatedAt = now
	comment.Likes = []string{}

	_, err := c.db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, text, author_id, video_id, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Text,
		comment.AuthorID,
		comment.VideoID,
		comment.IsActive,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment with its like list.
func (c *CommentDB) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	comment, err := scanComment(c.db.conn.QueryRowContext(ctx, commentSelect+` WHERE m.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	comment.Likes, err = queryIDs(ctx, c.db.conn,
		`SELECT user_id FROM comment_likes WHERE comment_id = ? ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading likes of comment %s: %w", id, err)
	}
	return comment, nil
}

// ListByVideo returns the active comments attached to videoID, newest first.
func (c *CommentDB) ListByVideo(ctx context.Context, videoID string) ([]model.Comment, error) {
	rows, err := c.db.conn.QueryContext(ctx,
		commentSelect+` WHERE m.video_id = ? AND m.is_active != 0 ORDER BY m.created_at DESC, m.rowid DESC`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of video %s: %w", videoID, err)
	}

	comments := []model.Comment{}
	index := map[string]int{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		index[comment.ID] = len(comments)
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	rows.Close()

	// Second pass for the like lists, after the first cursor is released:
	// the pool only has one connection.
	likeRows, err := c.db.conn.QueryContext(ctx,
		`SELECT l.comment_id, l.user_id
		 FROM comment_likes l
		 JOIN comments m ON m.id = l.comment_id
		 WHERE m.video_id = ?
		 ORDER BY l.created_at`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading comment likes of video %s: %w", videoID, err)
	}
	defer likeRows.Close()

	for likeRows.Next() {
		var commentID, userID string
		if err := likeRows.Scan(&commentID, &userID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment like: %w", err)
		}
		if i, ok := index[commentID]; ok {
			comments[i].Likes = append(comments[i].Likes, userID)
		}
	}
	if err := likeRows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comment likes: %w", err)
	}

	return comments, nil
}

// Update saves the text and edit markers of a comment.
func (c *CommentDB) Update(ctx context.Context, comment *model.Comment) error {
	comment.UpdatedAt = time.Now().UTC()

	var editedAt any
	if comment.EditedAt != nil {
		editedAt = comment.EditedAt.UTC()
	}

	result, err := c.db.conn.ExecContext(ctx,
		`UPDATE comments SET text = ?, is_edited = ?, edited_at = ?, updated_at = ? WHERE id = ?`,
		comment.Text,
		comment.IsEdited,
		editedAt,
		comment.UpdatedAt,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", comment.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", comment.ID)
	}
	return nil
}

// Delete removes a comment and its likes.
func (c *CommentDB) Delete(ctx context.Context, id string) error {
	return c.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comment_likes WHERE comment_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting likes of comment %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("comment", id)
		}
		return nil
	})
}

// ToggleLike adds userID to the comment's likes, or removes it if present.
// likeCount is a COUNT over the same table, so it cannot go below zero.
func (c *CommentDB) ToggleLike(ctx context.Context, commentID, userID string) (*model.CommentLike, error) {
	var like model.CommentLike

	err := c.db.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM comments WHERE id = ?`, commentID).Scan(&one)
		if err == sql.ErrNoRows {
			return apperror.NotFound("comment", commentID)
		}
		if err != nil {
			return fmt.Errorf("sqlite: checking comment %s: %w", commentID, err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM comment_likes WHERE comment_id = ? AND user_id = ?`, commentID, userID)
		if err != nil {
			return fmt.Errorf("sqlite: removing comment like: %w", err)
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}

		if removed == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO comment_likes (comment_id, user_id, created_at) VALUES (?, ?, ?)`,
				commentID, userID, time.Now().UTC(),
			); err != nil {
				return fmt.Errorf("sqlite: adding comment like: %w", err)
			}
		}
		like.IsLiked = removed == 0

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM comment_likes WHERE comment_id = ?`, commentID,
		).Scan(&like.LikeCount); err != nil {
			return fmt.Errorf("sqlite: counting comment likes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &like, nil
}
