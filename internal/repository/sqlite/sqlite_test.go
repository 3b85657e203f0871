package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/repository"
)

// Every test gets its own ":memory:" database. With the pool capped at one
// connection, that database lives exactly as long as the *DB.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestChannel(t *testing.T, db *DB, owner *model.User, name, handle string) *model.Channel {
	t.Helper()
	channel := &model.Channel{
		ChannelName: name,
		Handle:      handle,
		OwnerID:     owner.ID,
		Avatar:      model.DefaultChannelAvatar,
		Banner:      model.DefaultChannelBanner,
		Category:    model.CategoryTechnology,
	}
	if err := db.Channels().Create(context.Background(), channel); err != nil {
		t.Fatalf("failed to create test channel: %v", err)
	}
	return channel
}

func createTestVideo(t *testing.T, db *DB, channel *model.Channel, title string) *model.Video {
	t.Helper()
	video := &model.Video{
		Title:        title,
		Description:  "about " + title,
		VideoURL:     "https://example.com/" + title + ".mp4",
		ThumbnailURL: model.DefaultThumbnailURL,
		Duration:     model.DefaultDuration,
		ChannelID:    channel.ID,
		UploaderID:   channel.OwnerID,
		Category:     model.CategoryTechnology,
		Tags:         []string{"go"},
		IsPublic:     true,
		IsActive:     true,
	}
	if err := db.Videos().Create(context.Background(), video); err != nil {
		t.Fatalf("failed to create test video: %v", err)
	}
	return video
}

func createTestComment(t *testing.T, db *DB, author *model.User, videoID, text string) *model.Comment {
	t.Helper()
	comment := &model.Comment{Text: text, AuthorID: author.ID, VideoID: videoID}
	if err := db.Comments().Create(context.Background(), comment); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return comment
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}

func TestReset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	channel := createTestChannel(t, db, user, "Alice", "alice")
	createTestVideo(t, db, channel, "intro")

	if err := db.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	exists, err := db.Users().Exists(ctx, user.ID)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("user still exists after Reset()")
	}

	_, total, err := db.Videos().List(ctx, repository.VideoFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"go", "%go%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\`, `%c:\\%`},
	}
	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeTags(t *testing.T) {
	got, err := decodeTags("")
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("decodeTags(\"\") = %v, %v; want empty slice", got, err)
	}
	got, err = decodeTags(`["r&d","go"]`)
	if err != nil || len(got) != 2 || got[0] != "r&d" {
		t.Errorf("decodeTags() = %v, %v; want [r&d go]", got, err)
	}
	if _, err := decodeTags("not json"); err == nil {
		t.Error("decodeTags(\"not json\") error = nil, want decode error")
	}

	raw, err := encodeTags(nil)
	if err != nil {
		t.Fatalf("encodeTags() error = %v", err)
	}
	if raw != "[]" {
		t.Errorf("encodeTags(nil) = %q, want %q", raw, "[]")
	}
}
