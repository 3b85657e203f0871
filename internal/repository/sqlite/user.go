package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users store.
type UserDB struct {
	db *DB
}

const userColumns = `id, username, email, password_hash, avatar, github_id, created_at, updated_at`

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	var githubID sql.NullInt64
	if err := s.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar,
		&githubID, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if githubID.Valid {
		id := githubID.Int64
		u.GitHubID = &id
	}
	return &u, nil
}

// uniqueUserError turns a UNIQUE failure on users into a validation error
// naming the clashing field.
func uniqueUserError(err error) error {
	if strings.Contains(err.Error(), "users.email") {
		return apperror.ValidationFailed("email", "email is already registered")
	}
	return apperror.ValidationFailed("username", "username is already taken")
}

// Create inserts a new user, filling in ID and timestamps.
// A duplicate username or email is reported as a validation error.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	var githubID any
	if user.GitHubID != nil {
		githubID = *user.GitHubID
	}

	_, err := u.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, avatar, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Avatar,
		githubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return uniqueUserError(err)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	user.Channels = []string{}
	user.LikedVideos = []string{}
	user.DislikedVideos = []string{}
	user.SubscribedChannels = []string{}
	return nil
}

// GetByID retrieves a user with every back-reference list filled in from
// the ownership and relationship tables.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	if err := u.loadReferences(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserDB) loadReferences(ctx context.Context, user *model.User) error {
	var err error

	user.Channels, err = queryIDs(ctx, u.db.conn,
		`SELECT id FROM channels WHERE owner_id = ? ORDER BY created_at, rowid`, user.ID)
	if err != nil {
		return fmt.Errorf("sqlite: loading channels of user %s: %w", user.ID, err)
	}

	user.LikedVideos, err = queryIDs(ctx, u.db.conn,
		`SELECT video_id FROM video_reactions WHERE user_id = ? AND kind = 'like' ORDER BY created_at`, user.ID)
	if err != nil {
		return fmt.Errorf("sqlite: loading liked videos of user %s: %w", user.ID, err)
	}

	user.DislikedVideos, err = queryIDs(ctx, u.db.conn,
		`SELECT video_id FROM video_reactions WHERE user_id = ? AND kind = 'dislike' ORDER BY created_at`, user.ID)
	if err != nil {
		return fmt.Errorf("sqlite: loading disliked videos of user %s: %w", user.ID, err)
	}

	user.SubscribedChannels, err = queryIDs(ctx, u.db.conn,
		`SELECT channel_id FROM channel_subscriptions WHERE user_id = ? ORDER BY created_at`, user.ID)
	if err != nil {
		return fmt.Errorf("sqlite: loading subscriptions of user %s: %w", user.ID, err)
	}

	return nil
}

// GetByEmail looks a user up for login. Back-references are not loaded.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

// Exists reports whether a user row with this ID is present. The auth
// middleware calls it on every authenticated request.
func (u *UserDB) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := u.db.conn.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user %s: %w", id, err)
	}
	return true, nil
}

// UpsertGitHub inserts or refreshes a user keyed by GitHub ID.
//
// An existing account keeps its ID and username; only the avatar is
// refreshed. A new account takes the GitHub login as username, with the
// first characters of its own ID appended if that name is already taken.
func (u *UserDB) UpsertGitHub(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return fmt.Errorf("sqlite: upserting GitHub user without a GitHub ID")
	}

	existing, err := scanUser(u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, *user.GitHubID,
	))
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", *user.GitHubID, err)
	}

	if existing != nil {
		existing.Avatar = user.Avatar
		existing.UpdatedAt = time.Now().UTC()
		if _, err := u.db.conn.ExecContext(ctx,
			`UPDATE users SET avatar = ?, updated_at = ? WHERE id = ?`,
			existing.Avatar, existing.UpdatedAt, existing.ID,
		); err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", existing.ID, err)
		}
		*user = *existing
		return nil
	}

	err = u.Create(ctx, user)
	if err != nil && isValidationOn(err, "username") {
		user.Username = user.Username + "-" + xid.New().String()[:6]
		err = u.Create(ctx, user)
	}
	return err
}

// Update saves username, email and avatar.
func (u *UserDB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := u.db.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, avatar = ?, updated_at = ? WHERE id = ?`,
		user.Username,
		user.Email,
		user.Avatar,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return uniqueUserError(err)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

func isValidationOn(err error, field string) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) && appErr.Field == field
}
