package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/videohub/internal/service"
)

// ChannelHandler serves /api/channels.
type ChannelHandler struct {
	channels *service.ChannelService
	videos   *service.VideoService
	logger   *slog.Logger
}

func NewChannelHandler(channels *service.ChannelService, videos *service.VideoService, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{channels: channels, videos: videos, logger: logger}
}

type channelRequest struct {
	ChannelName string `json:"channelName" validate:"required,max=100"`
	Handle      string `json:"handle"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category" validate:"omitempty,category"`
	Avatar      string `json:"avatar"`
	Banner      string `json:"banner"`
}

// A handle in an update body is accepted and ignored.
type channelUpdateRequest struct {
	ChannelName *string `json:"channelName" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Category    *string `json:"category" validate:"omitempty,category"`
	Avatar      *string `json:"avatar"`
	Banner      *string `json:"banner"`
}

// HandleList returns active channels, most subscribed first.
//
// HTTP: GET /api/channels?search=tech&page=1&limit=12
func (h *ChannelHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.channels.List(r.Context(), r.URL.Query().Get("search"), pageRequest(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writePage(w, page)
}

// HandleMine returns the caller's channels.
//
// HTTP: GET /api/channels/my-channels
func (h *ChannelHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	channels, err := h.channels.Mine(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeList(w, channels)
}

// HandleGet returns one channel with its subscriber and video id lists.
//
// HTTP: GET /api/channels/{id}
func (h *ChannelHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channels.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", channel)
}

// HandleCreate creates a channel owned by the caller.
//
// HTTP: POST /api/channels
// REQUEST BODY: {"channelName": "Tech", "handle": "tech", "category": "Technology"}
func (h *ChannelHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req channelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	channel, err := h.channels.Create(r.Context(), userID, service.ChannelInput{
		ChannelName: req.ChannelName,
		Handle:      req.Handle,
		Description: req.Description,
		Category:    req.Category,
		Avatar:      req.Avatar,
		Banner:      req.Banner,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, "Channel created successfully", channel)
}

// HandleUpdate edits a channel the caller owns.
//
// HTTP: PUT /api/channels/{id}
func (h *ChannelHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req channelUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	channel, err := h.channels.Update(r.Context(), userID, chi.URLParam(r, "id"), service.ChannelUpdate{
		ChannelName: req.ChannelName,
		Description: req.Description,
		Category:    req.Category,
		Avatar:      req.Avatar,
		Banner:      req.Banner,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Channel updated successfully", channel)
}

// HandleDelete removes a channel the caller owns and all of its videos.
//
// HTTP: DELETE /api/channels/{id}
func (h *ChannelHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.channels.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Channel and all associated videos deleted successfully", nil)
}

// HandleSubscribe toggles the caller's subscription.
//
// HTTP: POST /api/channels/{id}/subscribe
// RESPONSE: {"success": true, "message": "...", "data": {"isSubscribed": true, "subscriberCount": 3}}
func (h *ChannelHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	sub, err := h.channels.ToggleSubscription(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	message := "Unsubscribed successfully"
	if sub.IsSubscribed {
		message = "Subscribed successfully"
	}
	writeData(w, http.StatusOK, message, sub)
}

// HandleVideos lists a channel's public videos, newest first.
//
// HTTP: GET /api/channels/{id}/videos?page=1&limit=12
func (h *ChannelHandler) HandleVideos(w http.ResponseWriter, r *http.Request) {
	page, err := h.videos.ListByChannel(r.Context(), chi.URLParam(r, "id"), pageRequest(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writePage(w, page)
}
