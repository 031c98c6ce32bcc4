package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

// VideoHandler serves exercise demonstration videos.
type VideoHandler struct {
	videoService service.VideoService
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videoService service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// --- Request Structs ---

type RequestUploadRequest struct {
	ExerciseName string `json:"exerciseName" binding:"required"`
	ContentType  string `json:"contentType" binding:"required"`
	Description  string `json:"description"`
}

type ConfirmUploadRequest struct {
	Size     int64 `json:"size" binding:"required,min=1"`
	Duration int   `json:"duration" binding:"omitempty,min=0"`
}

type ThumbnailUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// RequestUpload reserves a video slot for an exercise and returns a
// presigned upload URL.
func (h *VideoHandler) RequestUpload(c *gin.Context) {
	var req RequestUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from context")
		return
	}

	ticket, err := h.videoService.RequestUpload(c.Request.Context(), user.ID, req.ExerciseName, req.ContentType, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrVideoAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to prepare upload")
		}
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// ConfirmUpload activates a video after its bytes landed in storage.
func (h *VideoHandler) ConfirmUpload(c *gin.Context) {
	videoID, err := pathObjectID(c, "videoId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID")
		return
	}

	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	video, err := h.videoService.ConfirmUpload(c.Request.Context(), videoID, req.Size, req.Duration)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm upload")
		}
		return
	}
	c.JSON(http.StatusOK, video)
}

// RequestThumbnailUpload returns a presigned upload URL for a video's
// poster image.
func (h *VideoHandler) RequestThumbnailUpload(c *gin.Context) {
	videoID, err := pathObjectID(c, "videoId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID")
		return
	}

	var req ThumbnailUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ticket, err := h.videoService.RequestThumbnailUpload(c.Request.Context(), videoID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrUnsupportedThumbnail):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to prepare thumbnail upload")
		}
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// GetStream returns a presigned streaming URL for an exercise's video.
func (h *VideoHandler) GetStream(c *gin.Context) {
	exerciseName := c.Param("exerciseName")

	stream, err := h.videoService.GetStreamByExerciseName(c.Request.Context(), exerciseName)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load video")
		}
		return
	}
	c.JSON(http.StatusOK, stream)
}

// ListVideos returns the active videos.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	videos, err := h.videoService.ListActive(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list videos")
		return
	}
	if videos == nil {
		videos = []domain.ExerciseVideo{}
	}
	c.JSON(http.StatusOK, videos)
}

// DeleteVideo removes a video's metadata and stored bytes.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID, err := pathObjectID(c, "videoId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID")
		return
	}

	if err := h.videoService.DeleteVideo(c.Request.Context(), videoID); err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete video")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "video deleted"})
}
