// Command seed wipes the database and fills it with demo users, channels,
// videos and the relationships between them.
//
//	go run ./cmd/seed                 # uses DB_PATH or data/videohub.db
//	go run ./cmd/seed -db /tmp/v.db
//
// Every seeded account has the password "password123".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sakif/videohub/internal/auth"
	"github.com/sakif/videohub/internal/model"
	sqliteRepo "github.com/sakif/videohub/internal/repository/sqlite"
)

const seedPassword = "password123"

type seedUser struct {
	username, email, avatar string
}

type seedChannel struct {
	owner                     int
	name, handle, description string
	category                  model.Category
}

type seedVideo struct {
	channel                          int
	title, description, file, length string
	views                            int64
	category                         model.Category
	tags                             []string
}

const sampleBase = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/"

var (
	users = []seedUser{
		{"codemaster", "codemaster@example.com", "https://i.pravatar.cc/150?img=1"},
		{"devtips", "devtips@example.com", "https://i.pravatar.cc/150?img=2"},
		{"fullstackacademy", "fullstack@example.com", "https://i.pravatar.cc/150?img=3"},
	}

	channels = []seedChannel{
		{0, "CodeMaster", "codemaster", "Learn programming with practical examples and real-world projects.", model.CategoryTechnology},
		{1, "DevTips", "devtips", "Web development tutorials and tips for modern developers.", model.CategoryEducation},
		{2, "FullStack Academy", "fullstackacademy", "Complete courses on full-stack development and programming.", model.CategoryTechnology},
	}

	videos = []seedVideo{
		{0, "Learn React in 15 Minutes - Complete Beginner Guide",
			"A comprehensive guide to getting started with React. Learn components, state, props, and more.",
			"BigBuckBunny", "15:30", 152000, model.CategoryTechnology, []string{"react", "javascript", "tutorial", "beginners"}},
		{1, "MongoDB Crash Course - Build 5 Projects",
			"Master document databases by building 5 real-world projects.",
			"ElephantsDream", "1:35:20", 79000, model.CategoryEducation, []string{"mongodb", "database", "nodejs", "projects"}},
		{2, "What Is GraphQL? - Database Query Language Explained",
			"Understanding GraphQL and how it differs from REST APIs.",
			"ForBiggerBlazes", "38:20", 112000, model.CategoryTechnology, []string{"graphql", "api", "database", "web development"}},
		{0, "CSS Grid vs Flexbox - Complete Guide",
			"When to use CSS Grid vs Flexbox, with practical examples of both layout systems.",
			"ForBiggerEscapes", "28:30", 68000, model.CategoryEducation, []string{"css", "grid", "flexbox", "layout", "design"}},
		{1, "Go Concurrency Patterns in Practice",
			"Goroutines, channels and the context package, applied to a real HTTP service.",
			"ForBiggerFun", "42:10", 54000, model.CategoryTechnology, []string{"go", "concurrency", "backend"}},
		{2, "SQL Joins Visualised",
			"Inner, left and full joins explained with diagrams and a sample schema.",
			"ForBiggerJoyrides", "19:45", 33000, model.CategoryEducation, []string{"sql", "database", "beginners"}},
	}

	// subscriber user index → channel index
	subscriptions = [][2]int{{1, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}}

	// user index → video index
	likes    = [][2]int{{1, 0}, {2, 0}, {0, 1}, {0, 2}, {1, 2}, {2, 4}}
	dislikes = [][2]int{{2, 3}}

	comments = []struct {
		author, video int
		text          string
	}{
		{1, 0, "Great explanation of hooks, thanks!"},
		{2, 0, "Could you do a follow-up on state management?"},
		{0, 1, "The aggregation section was really helpful."},
		{1, 2, "Finally understood resolvers."},
		{0, 4, "The worker pool example is exactly what I needed."},
	}
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("failed to read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defaultPath := os.Getenv("DB_PATH")
	if defaultPath == "" {
		defaultPath = "data/videohub.db"
	}
	dbPath := flag.String("db", defaultPath, "path to the SQLite database")
	flag.Parse()

	if err := run(context.Background(), *dbPath, logger); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, dbPath string, logger *slog.Logger) error {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("clearing existing data", slog.String("database", dbPath))
	if err := db.Reset(ctx); err != nil {
		return err
	}

	hash, err := auth.NewPasswordService().Hash(seedPassword)
	if err != nil {
		return err
	}

	userIDs := make([]string, len(users))
	for i, u := range users {
		user := &model.User{Username: u.username, Email: u.email, PasswordHash: hash, Avatar: u.avatar}
		if err := db.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("user %s: %w", u.username, err)
		}
		userIDs[i] = user.ID
	}
	logger.Info("created users", slog.Int("count", len(userIDs)))

	channelIDs := make([]string, len(channels))
	for i, c := range channels {
		channel := &model.Channel{
			ChannelName: c.name,
			Handle:      c.handle,
			Description: c.description,
			OwnerID:     userIDs[c.owner],
			Avatar:      users[c.owner].avatar,
			Banner:      model.DefaultChannelBanner,
			Category:    c.category,
		}
		if err := db.Channels().Create(ctx, channel); err != nil {
			return fmt.Errorf("channel %s: %w", c.handle, err)
		}
		channelIDs[i] = channel.ID
	}
	logger.Info("created channels", slog.Int("count", len(channelIDs)))

	videoIDs := make([]string, len(videos))
	for i, v := range videos {
		video := &model.Video{
			Title:        v.title,
			Description:  v.description,
			VideoURL:     sampleBase + v.file + ".mp4",
			ThumbnailURL: sampleBase + "images/" + v.file + ".jpg",
			Duration:     v.length,
			Views:        v.views,
			ChannelID:    channelIDs[v.channel],
			UploaderID:   userIDs[channels[v.channel].owner],
			Category:     v.category,
			Tags:         v.tags,
			IsPublic:     true,
			IsActive:     true,
		}
		if err := db.Videos().Create(ctx, video); err != nil {
			return fmt.Errorf("video %q: %w", v.title, err)
		}
		videoIDs[i] = video.ID
	}
	logger.Info("created videos", slog.Int("count", len(videoIDs)))

	for _, s := range subscriptions {
		if _, err := db.Channels().ToggleSubscription(ctx, channelIDs[s[1]], userIDs[s[0]]); err != nil {
			return fmt.Errorf("subscription: %w", err)
		}
	}
	for _, l := range likes {
		if _, err := db.Videos().ToggleReaction(ctx, videoIDs[l[1]], userIDs[l[0]], model.ReactionLike); err != nil {
			return fmt.Errorf("like: %w", err)
		}
	}
	for _, d := range dislikes {
		if _, err := db.Videos().ToggleReaction(ctx, videoIDs[d[1]], userIDs[d[0]], model.ReactionDislike); err != nil {
			return fmt.Errorf("dislike: %w", err)
		}
	}
	for _, c := range comments {
		comment := &model.Comment{Text: c.text, AuthorID: userIDs[c.author], VideoID: videoIDs[c.video]}
		if err := db.Comments().Create(ctx, comment); err != nil {
			return fmt.Errorf("comment: %w", err)
		}
	}
	logger.Info("created relationships",
		slog.Int("subscriptions", len(subscriptions)),
		slog.Int("reactions", len(likes)+len(dislikes)),
		slog.Int("comments", len(comments)),
	)

	logger.Info("seeding complete", slog.String("password", seedPassword))
	return nil
}
