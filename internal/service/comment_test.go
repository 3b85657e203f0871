package service

import (
	"context"
	"strings"
	"testing"

	"github.com/sakif/videohub/internal/apperror"
)

func TestCommentCreate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ctx := context.Background()

	// The video is not looked up.
	c, err := env.comments.Create(ctx, alice.ID, "any-video", "  nice video  ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Text != "nice video" || c.AuthorID != alice.ID || c.VideoID != "any-video" {
		t.Errorf("got %+v", c)
	}
	if c.Author == nil || c.Author.Username != "alice" {
		t.Errorf("Author = %+v", c.Author)
	}

	_, err = env.comments.Create(ctx, alice.ID, "v", "")
	assertErrIs(t, err, apperror.ErrValidation)
	_, err = env.comments.Create(ctx, alice.ID, "v", strings.Repeat("x", MaxCommentLength+1))
	assertErrIs(t, err, apperror.ErrValidation)
	_, err = env.comments.Create(ctx, alice.ID, " ", "hello")
	assertErrIs(t, err, apperror.ErrValidation)
}

func TestCommentListByVideo(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ctx := context.Background()

	for _, text := range []string{"first", "second"} {
		if _, err := env.comments.Create(ctx, alice.ID, "v1", text); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := env.comments.Create(ctx, alice.ID, "v2", "elsewhere"); err != nil {
		t.Fatal(err)
	}

	comments, err := env.comments.ListByVideo(ctx, "v1")
	if err != nil {
		t.Fatalf("ListByVideo() error = %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "second" {
		t.Errorf("ListByVideo() = %+v, want newest first", comments)
	}

	none, err := env.comments.ListByVideo(ctx, "nothing")
	if err != nil {
		t.Fatalf("ListByVideo() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListByVideo(unknown) returned %d comments", len(none))
	}
}

func TestCommentUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	ctx := context.Background()

	c, err := env.comments.Create(ctx, alice.ID, "v1", "original")
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.comments.Update(ctx, bob.ID, c.ID, "hijacked")
	assertErrIs(t, err, apperror.ErrForbidden)

	updated, err := env.comments.Update(ctx, alice.ID, c.ID, "edited")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Text != "edited" || !updated.IsEdited || updated.EditedAt == nil {
		t.Errorf("got %+v", updated)
	}

	_, err = env.comments.Update(ctx, alice.ID, c.ID, "   ")
	assertErrIs(t, err, apperror.ErrValidation)

	assertErrIs(t, env.comments.Delete(ctx, bob.ID, c.ID), apperror.ErrForbidden)
	if err := env.comments.Delete(ctx, alice.ID, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertErrIs(t, env.comments.Delete(ctx, alice.ID, c.ID), apperror.ErrNotFound)
}

func TestCommentToggleLike(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	ctx := context.Background()

	c, err := env.comments.Create(ctx, alice.ID, "v1", "hello")
	if err != nil {
		t.Fatal(err)
	}

	like, err := env.comments.ToggleLike(ctx, bob.ID, c.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !like.IsLiked || like.LikeCount != 1 {
		t.Errorf("first toggle = %+v", like)
	}

	like, err = env.comments.ToggleLike(ctx, bob.ID, c.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if like.IsLiked || like.LikeCount != 0 {
		t.Errorf("second toggle = %+v", like)
	}

	_, err = env.comments.ToggleLike(ctx, bob.ID, "missing")
	assertErrIs(t, err, apperror.ErrNotFound)
}

func TestCommentsSurviveVideoDeletion(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ch := env.channel(t, alice, "Tech")
	v := env.video(t, alice, ch, "intro")
	ctx := context.Background()

	if _, err := env.comments.Create(ctx, alice.ID, v.ID, "still here"); err != nil {
		t.Fatal(err)
	}
	if err := env.videos.Delete(ctx, alice.ID, v.ID); err != nil {
		t.Fatal(err)
	}

	comments, err := env.comments.ListByVideo(ctx, v.ID)
	if err != nil {
		t.Fatalf("ListByVideo() error = %v", err)
	}
	if len(comments) != 1 {
		t.Errorf("ListByVideo() = %d comments after video deletion, want 1", len(comments))
	}
}
