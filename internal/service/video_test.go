package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/model"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"go", []string{"go"}},
		{"go, web,,  sqlite ", []string{"go", "web", "sqlite"}},
		{" , ,", []string{}},
	}
	for _, tt := range tests {
		if got := SplitTags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitTags(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestVideoCreate(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ch := env.channel(t, alice, "Tech")

	v := env.video(t, alice, ch, "intro")

	if v.UploaderID != alice.ID || v.ChannelID != ch.ID {
		t.Errorf("uploader/channel = %q/%q", v.UploaderID, v.ChannelID)
	}
	if !reflect.DeepEqual(v.Tags, []string{"go", "web"}) {
		t.Errorf("Tags = %v", v.Tags)
	}
	if !v.IsPublic || !v.IsActive {
		t.Errorf("IsPublic = %v, IsActive = %v; want both true", v.IsPublic, v.IsActive)
	}
	if v.ThumbnailURL != model.DefaultThumbnailURL || v.Duration != model.DefaultDuration {
		t.Errorf("defaults not applied: %q %q", v.ThumbnailURL, v.Duration)
	}
	if v.Channel == nil || v.Channel.Handle != "tech" {
		t.Errorf("Channel summary = %+v", v.Channel)
	}
}

func TestVideoCreate_Rejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	ch := env.channel(t, alice, "Tech")
	ctx := context.Background()

	valid := VideoInput{Title: "t", VideoURL: "u", ChannelID: ch.ID, Category: "Technology"}

	tests := []struct {
		name     string
		uploader string
		mutate   func(*VideoInput)
		want     error
	}{
		{"missing title", alice.ID, func(in *VideoInput) { in.Title = "" }, apperror.ErrValidation},
		{"missing url", alice.ID, func(in *VideoInput) { in.VideoURL = " " }, apperror.ErrValidation},
		{"bad category", alice.ID, func(in *VideoInput) { in.Category = "All" }, apperror.ErrValidation},
		{"missing channel", alice.ID, func(in *VideoInput) { in.ChannelID = "" }, apperror.ErrValidation},
		{"unknown channel", alice.ID, func(in *VideoInput) { in.ChannelID = "missing" }, apperror.ErrNotFound},
		{"not the owner", bob.ID, func(*VideoInput) {}, apperror.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := env.videos.Create(ctx, tt.uploader, in)
			assertErrIs(t, err, tt.want)
		})
	}
}

func TestVideoGet_CountsViews(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ch := env.channel(t, alice, "Tech")
	v := env.video(t, alice, ch, "intro")
	ctx := context.Background()

	if _, err := env.videos.Get(ctx, v.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got, err := env.videos.Get(ctx, v.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Views != 2 {
		t.Errorf("Views = %d, want 2", got.Views)
	}

	channel, err := env.channels.Get(ctx, ch.ID)
	if err != nil {
		t.Fatalf("channels.Get() error = %v", err)
	}
	if channel.TotalViews != 2 {
		t.Errorf("TotalViews = %d, want 2", channel.TotalViews)
	}

	_, err = env.videos.Get(ctx, "missing")
	assertErrIs(t, err, apperror.ErrNotFound)
}

func TestVideoList(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ch := env.channel(t, alice, "Tech")
	env.video(t, alice, ch, "golang basics")
	env.video(t, alice, ch, "rust basics")
	ctx := context.Background()

	private := false
	if _, err := env.videos.Create(ctx, alice.ID, VideoInput{
		Title: "hidden", VideoURL: "u", ChannelID: ch.ID, Category: "Music", IsPublic: &private,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name string
		q    VideoQuery
		want int
	}{
		{"all", VideoQuery{Category: CategoryAll}, 2},
		{"no category", VideoQuery{}, 2},
		{"category", VideoQuery{Category: "Technology"}, 2},
		{"other category", VideoQuery{Category: "Music"}, 0},
		{"search", VideoQuery{Search: "GOLANG"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.videos.List(ctx, tt.q)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if page.Total != tt.want || len(page.Items) != tt.want {
				t.Errorf("Total = %d, Items = %d, want %d", page.Total, len(page.Items), tt.want)
			}
			if page.Page != 1 || page.Limit != DefaultPageLimit {
				t.Errorf("Page = %d, Limit = %d", page.Page, page.Limit)
			}
		})
	}
}

func TestVideoListByChannel(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ch := env.channel(t, alice, "Tech")
	other := env.channel(t, alice, "Music")
	env.video(t, alice, ch, "one")
	env.video(t, alice, other, "two")
	ctx := context.Background()

	page, err := env.videos.ListByChannel(ctx, ch.ID, PageRequest{})
	if err != nil {
		t.Fatalf("ListByChannel() error = %v", err)
	}
	if page.Total != 1 || page.Items[0].Title != "one" {
		t.Errorf("ListByChannel() = %d items, first %q", page.Total, page.Items[0].Title)
	}

	_, err = env.videos.ListByChannel(ctx, "missing", PageRequest{})
	assertErrIs(t, err, apperror.ErrNotFound)
}

func TestVideoTrending(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ch := env.channel(t, alice, "Tech")
	quiet := env.video(t, alice, ch, "quiet")
	popular := env.video(t, alice, ch, "popular")
	ctx := context.Background()

	for range 3 {
		if _, err := env.videos.Get(ctx, popular.ID); err != nil {
			t.Fatal(err)
		}
	}

	videos, err := env.videos.Trending(ctx)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if len(videos) != 2 || videos[0].ID != popular.ID || videos[1].ID != quiet.ID {
		t.Errorf("Trending() order wrong: %+v", videos)
	}
}

func TestVideoUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	ch := env.channel(t, alice, "Tech")
	v := env.video(t, alice, ch, "intro")
	ctx := context.Background()

	title := "intro v2"
	tags := "a,b"
	updated, err := env.videos.Update(ctx, alice.ID, v.ID, VideoUpdate{Title: &title, Tags: &tags})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != title || !reflect.DeepEqual(updated.Tags, []string{"a", "b"}) {
		t.Errorf("got %q %v", updated.Title, updated.Tags)
	}
	if updated.VideoURL != v.VideoURL {
		t.Errorf("VideoURL changed to %q", updated.VideoURL)
	}

	badCategory := "Cooking"
	_, err = env.videos.Update(ctx, alice.ID, v.ID, VideoUpdate{Category: &badCategory})
	assertErrIs(t, err, apperror.ErrValidation)

	_, err = env.videos.Update(ctx, bob.ID, v.ID, VideoUpdate{Title: &title})
	assertErrIs(t, err, apperror.ErrForbidden)
	assertErrIs(t, env.videos.Delete(ctx, bob.ID, v.ID), apperror.ErrForbidden)

	if err := env.videos.Delete(ctx, alice.ID, v.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err = env.videos.Get(ctx, v.ID)
	assertErrIs(t, err, apperror.ErrNotFound)
}

func TestVideoReactions(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	ch := env.channel(t, alice, "Tech")
	v := env.video(t, alice, ch, "intro")
	ctx := context.Background()

	steps := []struct {
		name            string
		toggle          func(context.Context, string, string) (*model.ReactionState, error)
		want            model.Reaction
		likes, dislikes int
	}{
		{"like", env.videos.Like, model.ReactionLike, 1, 0},
		{"dislike replaces like", env.videos.Dislike, model.ReactionDislike, 0, 1},
		{"dislike again clears", env.videos.Dislike, model.ReactionNone, 0, 0},
		{"like again", env.videos.Like, model.ReactionLike, 1, 0},
	}
	for _, step := range steps {
		state, err := step.toggle(ctx, bob.ID, v.ID)
		if err != nil {
			t.Fatalf("%s: error = %v", step.name, err)
		}
		if state.Reaction != step.want || state.LikeCount != step.likes || state.DislikeCount != step.dislikes {
			t.Errorf("%s: got %+v, want %q %d/%d", step.name, state, step.want, step.likes, step.dislikes)
		}
	}

	if got := env.user(t, bob.ID).LikedVideos; len(got) != 1 || got[0] != v.ID {
		t.Errorf("user.LikedVideos = %v", got)
	}

	_, err := env.videos.Like(ctx, bob.ID, "missing")
	assertErrIs(t, err, apperror.ErrNotFound)
}
