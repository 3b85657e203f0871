package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/videohub/internal/service"
)

// CommentHandler serves /api/comments.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentRequest struct {
	Text    string `json:"text" validate:"required,max=1000"`
	VideoID string `json:"videoId" validate:"required"`
}

type commentUpdateRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// HandleListByVideo returns a video's comments, newest first.
//
// HTTP: GET /api/comments/video/{videoId}
func (h *CommentHandler) HandleListByVideo(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByVideo(r.Context(), chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeList(w, comments)
}

// HandleCreate posts a comment.
//
// HTTP: POST /api/comments
// REQUEST BODY: {"text": "great video", "videoId": "..."}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), userID, req.VideoID, req.Text)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, "Comment added successfully", comment)
}

// HandleUpdate edits a comment the caller wrote.
//
// HTTP: PUT /api/comments/{id}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req commentUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), userID, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Comment updated successfully", comment)
}

// HandleDelete removes a comment the caller wrote.
//
// HTTP: DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.comments.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Comment deleted successfully", nil)
}

// HandleLike toggles the caller's like on a comment.
//
// HTTP: POST /api/comments/{id}/like
func (h *CommentHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	like, err := h.comments.ToggleLike(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	message := "Comment unliked"
	if like.IsLiked {
		message = "Comment liked"
	}
	writeData(w, http.StatusOK, message, like)
}
