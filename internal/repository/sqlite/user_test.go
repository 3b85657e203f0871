package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hash",
		Avatar:       "https://example.com/avatar.png",
	}

	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
	if user.Channels == nil || user.SubscribedChannels == nil {
		t.Error("Create() left back-reference lists nil")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "first")

	err := db.Users().Create(context.Background(), &model.User{
		Username: "second",
		Email:    "FIRST@example.com",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}
	if !isValidationOn(err, "email") {
		t.Errorf("Create() error field is not email: %v", err)
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "taken")

	err := db.Users().Create(context.Background(), &model.User{
		Username: "Taken",
		Email:    "other@example.com",
	})
	if !isValidationOn(err, "username") {
		t.Errorf("Create() error = %v, want validation error on username", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID_LoadsReferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	channel := createTestChannel(t, db, bob, "Bob Builds", "bobbuilds")
	liked := createTestVideo(t, db, channel, "liked")
	disliked := createTestVideo(t, db, channel, "disliked")

	if _, err := db.Channels().ToggleSubscription(ctx, channel.ID, alice.ID); err != nil {
		t.Fatalf("ToggleSubscription() error = %v", err)
	}
	if _, err := db.Videos().ToggleReaction(ctx, liked.ID, alice.ID, model.ReactionLike); err != nil {
		t.Fatalf("ToggleReaction() error = %v", err)
	}
	if _, err := db.Videos().ToggleReaction(ctx, disliked.ID, alice.ID, model.ReactionDislike); err != nil {
		t.Fatalf("ToggleReaction() error = %v", err)
	}

	found, err := db.Users().GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(found.SubscribedChannels) != 1 || found.SubscribedChannels[0] != channel.ID {
		t.Errorf("SubscribedChannels = %v, want [%s]", found.SubscribedChannels, channel.ID)
	}
	if len(found.LikedVideos) != 1 || found.LikedVideos[0] != liked.ID {
		t.Errorf("LikedVideos = %v, want [%s]", found.LikedVideos, liked.ID)
	}
	if len(found.DislikedVideos) != 1 || found.DislikedVideos[0] != disliked.ID {
		t.Errorf("DislikedVideos = %v, want [%s]", found.DislikedVideos, disliked.ID)
	}

	owner, err := db.Users().GetByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(owner.Channels) != 1 || owner.Channels[0] != channel.ID {
		t.Errorf("Channels = %v, want [%s]", owner.Channels, channel.ID)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "carol")

	found, err := db.Users().GetByEmail(context.Background(), "CAROL@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, "hash")
	}
}

func TestUserExists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "dave")

	ok, err := db.Users().Exists(ctx, user.ID)
	if err != nil || !ok {
		t.Errorf("Exists(%s) = %v, %v; want true, nil", user.ID, ok, err)
	}
	ok, err = db.Users().Exists(ctx, "missing")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v; want false, nil", ok, err)
	}
}

// =========================================================================
// GITHUB UPSERT TESTS
// =========================================================================

func TestUserUpsertGitHub(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ghID := int64(4242)

	first := &model.User{Username: "octo", Email: "octo@users.noreply.github.com", Avatar: "a1", GitHubID: &ghID}
	if err := db.Users().UpsertGitHub(ctx, first); err != nil {
		t.Fatalf("UpsertGitHub() error = %v", err)
	}

	again := &model.User{Username: "octo-renamed", Email: "x@example.com", Avatar: "a2", GitHubID: &ghID}
	if err := db.Users().UpsertGitHub(ctx, again); err != nil {
		t.Fatalf("UpsertGitHub() second call error = %v", err)
	}

	if again.ID != first.ID {
		t.Errorf("ID = %q, want existing %q", again.ID, first.ID)
	}
	if again.Username != "octo" {
		t.Errorf("Username = %q, want %q", again.Username, "octo")
	}
	if again.Avatar != "a2" {
		t.Errorf("Avatar = %q, want %q", again.Avatar, "a2")
	}
}

func TestUserUpsertGitHub_UsernameClash(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "octo")
	ghID := int64(7)

	user := &model.User{Username: "octo", Email: "octo@users.noreply.github.com", GitHubID: &ghID}
	if err := db.Users().UpsertGitHub(context.Background(), user); err != nil {
		t.Fatalf("UpsertGitHub() error = %v", err)
	}
	if user.Username == "octo" {
		t.Error("UpsertGitHub() kept a username that was already taken")
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUserUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "erin")

	user.Username = "erin2"
	user.Avatar = "new.png"
	if err := db.Users().Update(ctx, user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Username != "erin2" || found.Avatar != "new.png" {
		t.Errorf("got username %q avatar %q, want erin2 new.png", found.Username, found.Avatar)
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Users().Update(context.Background(), &model.User{ID: "ghost", Username: "ghost", Email: "g@example.com"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}
