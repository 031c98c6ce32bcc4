package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"
	"fitcoach/coach-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrVideoNotFound        = errors.New("exercise video not found")
	ErrVideoAlreadyExists   = errors.New("a video already exists for this exercise")
	ErrUnsupportedThumbnail = errors.New("unsupported thumbnail content type")
)

// VideoUploadTicket pairs the presigned upload URL with the metadata record
// created for it. The client PUTs the bytes directly to object storage.
type VideoUploadTicket struct {
	Video     *domain.ExerciseVideo `json:"video"`
	UploadURL string                `json:"uploadUrl"`
}

// VideoStream is a playable reference to a stored video.
type VideoStream struct {
	Video        *domain.ExerciseVideo `json:"video"`
	StreamURL    string                `json:"streamUrl"`
	ThumbnailURL string                `json:"thumbnailUrl,omitempty"`
}

// VideoService manages exercise demonstration videos, one per exercise
// name, with the bytes held in object storage.
type VideoService interface {
	RequestUpload(ctx context.Context, uploadedBy primitive.ObjectID, exerciseName, contentType, description string) (*VideoUploadTicket, error)
	ConfirmUpload(ctx context.Context, videoID primitive.ObjectID, size int64, duration int) (*domain.ExerciseVideo, error)
	RequestThumbnailUpload(ctx context.Context, videoID primitive.ObjectID, contentType string) (*VideoUploadTicket, error)
	GetStreamByExerciseName(ctx context.Context, exerciseName string) (*VideoStream, error)
	ListActive(ctx context.Context) ([]domain.ExerciseVideo, error)
	DeleteVideo(ctx context.Context, videoID primitive.ObjectID) error
}

type videoService struct {
	videoRepo repository.VideoRepository
	files     storage.FileStorage
	urlExpiry time.Duration
}

// NewVideoService creates a new instance of videoService.
func NewVideoService(videoRepo repository.VideoRepository, files storage.FileStorage) VideoService {
	return &videoService{
		videoRepo: videoRepo,
		files:     files,
		urlExpiry: storage.DefaultPresignedURLExpiry,
	}
}

// RequestUpload reserves the exercise name, creates the metadata record and
// hands back a presigned PUT URL.
func (s *videoService) RequestUpload(ctx context.Context, uploadedBy primitive.ObjectID, exerciseName, contentType, description string) (*VideoUploadTicket, error) {
	if exerciseName == "" || contentType == "" {
		return nil, errors.New("exercise name and content type are required")
	}

	objectKey := fmt.Sprintf("videos/%s%s", uuid.NewString(), extensionFor(contentType))

	video := &domain.ExerciseVideo{
		ExerciseName: exerciseName,
		ObjectKey:    objectKey,
		ContentType:  contentType,
		Description:  description,
		UploadedBy:   &uploadedBy,
		IsActive:     false, // flipped on upload confirmation
	}

	videoID, err := s.videoRepo.Create(ctx, video)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrVideoAlreadyExists
		}
		return nil, err
	}
	video.ID = videoID

	uploadURL, err := s.files.GeneratePresignedUploadURL(ctx, objectKey, contentType, s.urlExpiry)
	if err != nil {
		return nil, err
	}

	return &VideoUploadTicket{Video: video, UploadURL: uploadURL}, nil
}

// ConfirmUpload activates the video after the client finished the PUT.
func (s *videoService) ConfirmUpload(ctx context.Context, videoID primitive.ObjectID, size int64, duration int) (*domain.ExerciseVideo, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	video.Size = size
	video.Duration = duration
	video.IsActive = true

	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// RequestThumbnailUpload reserves a poster image object for an existing
// video, records its key and hands back a presigned PUT URL. Re-requesting
// replaces the previous thumbnail.
func (s *videoService) RequestThumbnailUpload(ctx context.Context, videoID primitive.ObjectID, contentType string) (*VideoUploadTicket, error) {
	ext := thumbnailExtensionFor(contentType)
	if ext == "" {
		return nil, ErrUnsupportedThumbnail
	}

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	previousKey := video.ThumbnailKey
	video.ThumbnailKey = fmt.Sprintf("videos/thumbs/%s%s", uuid.NewString(), ext)
	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, err
	}
	if previousKey != "" {
		_ = s.files.DeleteObject(ctx, previousKey)
	}

	uploadURL, err := s.files.GeneratePresignedUploadURL(ctx, video.ThumbnailKey, contentType, s.urlExpiry)
	if err != nil {
		return nil, err
	}
	return &VideoUploadTicket{Video: video, UploadURL: uploadURL}, nil
}

// GetStreamByExerciseName resolves an exercise name to presigned GET URLs.
func (s *videoService) GetStreamByExerciseName(ctx context.Context, exerciseName string) (*VideoStream, error) {
	video, err := s.videoRepo.GetByExerciseName(ctx, exerciseName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	if !video.IsActive {
		return nil, ErrVideoNotFound
	}

	streamURL, err := s.files.GeneratePresignedDownloadURL(ctx, video.ObjectKey, s.urlExpiry)
	if err != nil {
		return nil, err
	}

	stream := &VideoStream{Video: video, StreamURL: streamURL}
	if video.ThumbnailKey != "" {
		thumbURL, err := s.files.GeneratePresignedDownloadURL(ctx, video.ThumbnailKey, s.urlExpiry)
		if err == nil {
			stream.ThumbnailURL = thumbURL
		}
	}
	return stream, nil
}

// ListActive lists the active video catalog.
func (s *videoService) ListActive(ctx context.Context) ([]domain.ExerciseVideo, error) {
	return s.videoRepo.GetActive(ctx)
}

// DeleteVideo removes the metadata and the stored objects.
func (s *videoService) DeleteVideo(ctx context.Context, videoID primitive.ObjectID) error {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	if err := s.videoRepo.Delete(ctx, videoID); err != nil {
		return err
	}

	if err := s.files.DeleteObject(ctx, video.ObjectKey); err != nil {
		return err
	}
	if video.ThumbnailKey != "" {
		return s.files.DeleteObject(ctx, video.ThumbnailKey)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	case "video/webm":
		return ".webm"
	default:
		return ""
	}
}

func thumbnailExtensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
