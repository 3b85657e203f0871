package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/service"
)

// VideoHandler serves /api/videos.
type VideoHandler struct {
	videos *service.VideoService
	logger *slog.Logger
}

func NewVideoHandler(videos *service.VideoService, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, logger: logger}
}

// Tags arrive as one comma-separated string, as typed into the upload form.
type videoRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	VideoURL     string `json:"videoUrl" validate:"required"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Duration     string `json:"duration"`
	ChannelID    string `json:"channelId" validate:"required"`
	Category     string `json:"category" validate:"required,category"`
	Tags         string `json:"tags"`
	IsPublic     *bool  `json:"isPublic"`
}

type videoUpdateRequest struct {
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Category     *string `json:"category" validate:"omitempty,category"`
	Tags         *string `json:"tags"`
}

// LikeResponse and DislikeResponse are the data of a reaction toggle.
type LikeResponse struct {
	IsLiked      bool `json:"isLiked"`
	LikeCount    int  `json:"likeCount"`
	DislikeCount int  `json:"dislikeCount"`
}

type DislikeResponse struct {
	IsDisliked   bool `json:"isDisliked"`
	LikeCount    int  `json:"likeCount"`
	DislikeCount int  `json:"dislikeCount"`
}

// HandleList lists public videos.
//
// HTTP: GET /api/videos?search=go&category=Technology&sort=-views&page=1&limit=12
//
// category=All is the same as no category. Unknown sort keys fall back to
// newest first.
func (h *VideoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.videos.List(r.Context(), service.VideoQuery{
		Search:      q.Get("search"),
		Category:    q.Get("category"),
		Sort:        q.Get("sort"),
		PageRequest: pageRequest(r),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writePage(w, page)
}

// HandleTrending returns the most viewed videos.
//
// HTTP: GET /api/videos/trending
func (h *VideoHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.Trending(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeList(w, videos)
}

// HandleGet returns one video and counts a view.
//
// HTTP: GET /api/videos/{id}
func (h *VideoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	video, err := h.videos.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", video)
}

// HandleCreate uploads video metadata to a channel the caller owns.
//
// HTTP: POST /api/videos
func (h *VideoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req videoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	video, err := h.videos.Create(r.Context(), userID, service.VideoInput{
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		ChannelID:    req.ChannelID,
		Category:     req.Category,
		Tags:         req.Tags,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, "Video uploaded successfully", video)
}

// HandleUpdate edits a video the caller uploaded.
//
// HTTP: PUT /api/videos/{id}
func (h *VideoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req videoUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	video, err := h.videos.Update(r.Context(), userID, chi.URLParam(r, "id"), service.VideoUpdate{
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		Category:     req.Category,
		Tags:         req.Tags,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Video updated successfully", video)
}

// HandleDelete removes a video the caller uploaded.
//
// HTTP: DELETE /api/videos/{id}
func (h *VideoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.videos.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Video deleted successfully", nil)
}

// HandleLike toggles the caller's like.
//
// HTTP: POST /api/videos/{id}/like
func (h *VideoHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.videos.Like(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	liked := state.Reaction == model.ReactionLike
	message := "Video unliked"
	if liked {
		message = "Video liked"
	}
	writeData(w, http.StatusOK, message, LikeResponse{
		IsLiked:      liked,
		LikeCount:    state.LikeCount,
		DislikeCount: state.DislikeCount,
	})
}

// HandleDislike toggles the caller's dislike.
//
// HTTP: POST /api/videos/{id}/dislike
func (h *VideoHandler) HandleDislike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.videos.Dislike(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	disliked := state.Reaction == model.ReactionDislike
	message := "Dislike removed"
	if disliked {
		message = "Video disliked"
	}
	writeData(w, http.StatusOK, message, DislikeResponse{
		IsDisliked:   disliked,
		LikeCount:    state.LikeCount,
		DislikeCount: state.DislikeCount,
	})
}
