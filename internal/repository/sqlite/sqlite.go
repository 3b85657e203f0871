// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// RELATIONSHIPS AS TABLES:
// Every "many" side of a relationship lives in its own table instead of an
// array embedded in a parent row:
//
//	channel_subscriptions (channel_id, user_id)        → Channel.subscribers, User.subscribedChannels
//	video_reactions       (video_id, user_id, kind)    → Video.likes/dislikes, User.likedVideos/dislikedVideos
//	comment_likes         (comment_id, user_id)        → Comment.likes
//
// Counters such as subscriberCount or likeCount are COUNT(*) subqueries over
// those tables, so they always equal the size of the set they describe.
// A toggle is one INSERT or DELETE inside a transaction. There is no second
// document to keep in sync.
//
// The (video_id, user_id) primary key on video_reactions means a user has
// at most one reaction per video, so a video's likes and dislikes can never
// overlap.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/videohub/internal/repository"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and hands out one store per entity.
type DB struct {
	conn *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/videohub.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
//
// The pool is capped at a single connection. SQLite serialises writers
// anyway, every ":memory:" connection would otherwise be a separate empty
// database, and PRAGMA foreign_keys is per connection.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Needed for ON DELETE CASCADE from channels → videos → reactions.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// SQL exposes the underlying pool for connection statistics.
func (db *DB) SQL() *sql.DB {
	return db.conn
}

func (db *DB) Users() *UserDB       { return &UserDB{db: db} }
func (db *DB) Channels() *ChannelDB { return &ChannelDB{db: db} }
func (db *DB) Videos() *VideoDB     { return &VideoDB{db: db} }
func (db *DB) Comments() *CommentDB { return &CommentDB{db: db} }

// Reset deletes every row from every table. Used by the seeder.
func (db *DB) Reset(ctx context.Context) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{
			"comment_likes", "comments", "video_reactions", "videos",
			"channel_subscriptions", "channels", "users",
		} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("sqlite: clearing %s: %w", table, err)
			}
		}
		return nil
	})
}

// withTx runs fn inside a transaction, committing if fn returns nil and
// rolling back otherwise. Inside fn every statement must go through tx: the
// pool has one connection, so touching db.conn would block forever.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE COLLATE NOCASE,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL DEFAULT '',
			avatar        TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// handle is stored lowercased; NOCASE keeps the UNIQUE check
	// case-insensitive even if a mixed-case value slips through.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS channels (
			id           TEXT PRIMARY KEY,
			channel_name TEXT NOT NULL,
			handle       TEXT NOT NULL UNIQUE COLLATE NOCASE,
			description  TEXT NOT NULL DEFAULT '',
			owner_id     TEXT NOT NULL REFERENCES users(id),
			avatar       TEXT NOT NULL DEFAULT '',
			banner       TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL,
			is_verified  INTEGER NOT NULL DEFAULT 0,
			is_active    INTEGER NOT NULL DEFAULT 1,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_channels_owner_id ON channels(owner_id);

		CREATE TABLE IF NOT EXISTS channel_subscriptions (
			channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (channel_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_channel_subscriptions_user_id ON channel_subscriptions(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating channel tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS videos (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			video_url     TEXT NOT NULL,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			duration      TEXT NOT NULL DEFAULT '0:00',
			views         INTEGER NOT NULL DEFAULT 0,
			channel_id    TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
			uploader_id   TEXT NOT NULL REFERENCES users(id),
			category      TEXT NOT NULL,
			tags          TEXT NOT NULL DEFAULT '[]',
			is_public     INTEGER NOT NULL DEFAULT 1,
			is_active     INTEGER NOT NULL DEFAULT 1,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_videos_channel_id ON videos(channel_id);
		CREATE INDEX IF NOT EXISTS idx_videos_views ON videos(views);
		CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at);
		CREATE INDEX IF NOT EXISTS idx_videos_category ON videos(category);

		CREATE TABLE IF NOT EXISTS video_reactions (
			video_id   TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			kind       TEXT NOT NULL CHECK (kind IN ('like', 'dislike')),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (video_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_video_reactions_user_id ON video_reactions(user_id, kind);
	`)
	if err != nil {
		return fmt.Errorf("creating video tables: %w", err)
	}

	// comments.video_id is deliberately not a foreign key: comments may
	// reference videos that do not (or no longer) exist.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			text       TEXT NOT NULL,
			author_id  TEXT NOT NULL REFERENCES users(id),
			video_id   TEXT NOT NULL,
			is_edited  INTEGER NOT NULL DEFAULT 0,
			edited_at  DATETIME,
			is_active  INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_video_id ON comments(video_id, created_at);

		CREATE TABLE IF NOT EXISTS comment_likes (
			comment_id TEXT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (comment_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating comment tables: %w", err)
	}

	return nil
}

// queryIDs runs a single-column query and collects the strings it returns.
func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// likePattern wraps s for a substring LIKE match, escaping LIKE wildcards.
// SQLite's LIKE is case-insensitive for ASCII, which is what search needs.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	return tags, nil
}

// clampList applies the default and maximum page size.
func clampList(opts repository.ListOptions) (limit, offset int) {
	limit, offset = opts.Limit, opts.Offset
	if limit <= 0 {
		limit = 12
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
