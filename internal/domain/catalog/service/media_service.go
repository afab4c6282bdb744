package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"wellness_shop/internal/domain/catalog/model"
	"wellness_shop/internal/domain/catalog/repository"
	"wellness_shop/internal/pkg/realtime"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var youtubeID = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// YouTubeThumbnail 从 YouTube 链接推导封面，非 YouTube 链接返回空
func YouTubeThumbnail(videoURL string) string {
	m := youtubeID.FindStringSubmatch(videoURL)
	if len(m) < 2 {
		return ""
	}
	return "https://img.youtube.com/vi/" + m[1] + "/hqdefault.jpg"
}

type ImageInput struct {
	Key         string `json:"key" binding:"required"`
	URL         string `json:"url" binding:"required"`
	AltText     string `json:"altText"`
	Description string `json:"description"`
}

func (in *ImageInput) check() error {
	fields := map[string]string{}
	in.Key = strings.TrimSpace(in.Key)
	in.URL = strings.TrimSpace(in.URL)
	if in.Key == "" {
		fields["key"] = "La clé est requise"
	}
	if in.URL == "" {
		fields["url"] = "L'URL est requise"
	}
	return invalid(fields)
}

type VideoInput struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	VideoURL     string `json:"videoUrl" binding:"required"`
	ThumbnailURL string `json:"thumbnailUrl"`
	IsActive     *bool  `json:"isActive"`
	DisplayOrder *int   `json:"displayOrder"`
}

func (in *VideoInput) check() error {
	fields := map[string]string{}
	in.Title = strings.TrimSpace(in.Title)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	if in.Title == "" {
		fields["title"] = "Le titre est requis"
	}
	if in.VideoURL == "" {
		fields["videoUrl"] = "L'URL de la vidéo est requise"
	}
	if in.DisplayOrder != nil && *in.DisplayOrder < 0 {
		fields["displayOrder"] = "L'ordre d'affichage doit être positif"
	}
	return invalid(fields)
}

func (in *VideoInput) apply(v *model.Video) {
	v.Title = in.Title
	v.Description = in.Description
	v.VideoURL = in.VideoURL
	v.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	if v.ThumbnailURL == "" {
		v.ThumbnailURL = YouTubeThumbnail(v.VideoURL)
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
	if in.DisplayOrder != nil {
		v.DisplayOrder = *in.DisplayOrder
	}
}

// VideoFile 管理后台上传的视频文件
type VideoFile struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type MediaSettings struct {
	VideoBucket string
	VideoRule   uploader.Rule
}

type MediaService interface {
	ListImages(ctx context.Context) ([]model.Image, error)
	GetImage(ctx context.Context, key string) (*model.Image, error)
	CreateImage(ctx context.Context, in ImageInput) (*model.Image, error)
	UpdateImage(ctx context.Context, id string, in ImageInput) (*model.Image, error)
	DeleteImage(ctx context.Context, id string) error

	ListVideos(ctx context.Context, activeOnly bool) ([]model.Video, error)
	CreateVideo(ctx context.Context, in VideoInput) (*model.Video, error)
	UpdateVideo(ctx context.Context, id string, in VideoInput) (*model.Video, error)
	SetVideoActive(ctx context.Context, id string, active bool) error
	DeleteVideo(ctx context.Context, id string) error
	// UploadVideo 上传视频文件并返回公开 URL，记录需要再调用 CreateVideo
	UploadVideo(ctx context.Context, file VideoFile) (string, error)
}

type mediaService struct {
	images    repository.ImageRepository
	videos    repository.VideoRepository
	uploader  uploader.Uploader
	publisher realtime.Publisher
	metrics   *metrics.MetricsCollector
	settings  MediaSettings
	now       func() time.Time
}

func NewMediaService(images repository.ImageRepository, videos repository.VideoRepository, up uploader.Uploader, publisher realtime.Publisher, m *metrics.MetricsCollector, settings MediaSettings) MediaService {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &mediaService{
		images:    images,
		videos:    videos,
		uploader:  up,
		publisher: publisher,
		metrics:   m,
		settings:  settings,
		now:       time.Now,
	}
}

func (s *mediaService) ListImages(ctx context.Context) ([]model.Image, error) {
	images, err := s.images.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	if images == nil {
		images = []model.Image{}
	}
	return images, nil
}

func (s *mediaService) GetImage(ctx context.Context, key string) (*model.Image, error) {
	image, err := s.images.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return image, nil
}

func (s *mediaService) CreateImage(ctx context.Context, in ImageInput) (*model.Image, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	image := &model.Image{Key: in.Key, URL: in.URL, AltText: in.AltText, Description: in.Description}
	if err := s.images.Create(ctx, image); err != nil {
		return nil, mapWriteError(err, "create image")
	}

	publish(ctx, s.publisher, realtime.NewEvent(realtime.TableImages, realtime.ActionInsert, image.ID, nil))
	return image, nil
}

func (s *mediaService) UpdateImage(ctx context.Context, id string, in ImageInput) (*model.Image, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	if !validID(id) {
		return nil, ErrImageNotFound
	}
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("get image: %w", err)
	}

	image.Key = in.Key
	image.URL = in.URL
	image.AltText = in.AltText
	image.Description = in.Description
	if err := s.images.Update(ctx, image); err != nil {
		return nil, mapWriteError(err, "update image")
	}

	publish(ctx, s.publisher, realtime.NewEvent(realtime.TableImages, realtime.ActionUpdate, image.ID, nil))
	return image, nil
}

func (s *mediaService) DeleteImage(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrImageNotFound
	}
	ok, err := s.images.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if !ok {
		return ErrImageNotFound
	}
	publish(ctx, s.publisher, realtime.NewEvent(realtime.TableImages, realtime.ActionDelete, id, nil))
	return nil
}

func (s *mediaService) ListVideos(ctx context.Context, activeOnly bool) ([]model.Video, error) {
	videos, err := s.videos.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if videos == nil {
		videos = []model.Video{}
	}
	return videos, nil
}

// CreateVideo 未指定 display_order 时排在最后
func (s *mediaService) CreateVideo(ctx context.Context, in VideoInput) (*model.Video, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	video := &model.Video{IsActive: true}
	if in.DisplayOrder == nil {
		count, err := s.videos.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count videos: %w", err)
		}
		video.DisplayOrder = int(count)
	}
	in.apply(video)

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, mapWriteError(err, "create video")
	}

	publish(ctx, s.publisher, realtime.NewEvent(realtime.TableVideos, realtime.ActionInsert, video.ID, nil))
	return video, nil
}

func (s *mediaService) UpdateVideo(ctx context.Context, id string, in VideoInput) (*model.Video, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	if !validID(id) {
		return nil, ErrVideoNotFound
	}
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("get video: %w", err)
	}

	in.apply(video)
	if err := s.videos.Update(ctx, video); err != nil {
		return nil, mapWriteError(err, "update video")
	}

	publish(ctx, s.publisher, realtime.NewEvent(realtime.TableVideos, realtime.ActionUpdate, video.ID, nil))
	return video, nil
}

func (s *mediaService) SetVideoActive(ctx context.Context, id string, active bool) error {
	if !validID(id) {
		return ErrVideoNotFound
	}
	ok, err := s.videos.SetActive(ctx, id, active)
	if err != nil {
		return fmt.Errorf("toggle video: %w", err)
	}
	if !ok {
		return ErrVideoNotFound
	}
	publish(ctx, s.publisher, realtime.NewEvent(realtime.TableVideos, realtime.ActionUpdate, id, nil))
	return nil
}

func (s *mediaService) DeleteVideo(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrVideoNotFound
	}
	ok, err := s.videos.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if !ok {
		return ErrVideoNotFound
	}
	publish(ctx, s.publisher, realtime.NewEvent(realtime.TableVideos, realtime.ActionDelete, id, nil))
	return nil
}

func (s *mediaService) UploadVideo(ctx context.Context, file VideoFile) (string, error) {
	rule := s.settings.VideoRule
	if err := rule.CheckSize(file.Size); err != nil {
		return "", err
	}
	contentType, body, err := rule.Inspect(file.Reader, file.ContentType)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%d%s", s.now().UnixMilli(), uploader.Extension(file.Filename, contentType))
	url, err := s.uploader.Upload(ctx, s.settings.VideoBucket, objectName, body, contentType)
	if err != nil {
		logger.Log.Error("video upload failed", zap.String("object", objectName), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.metrics.RecordUpload(s.settings.VideoBucket, file.Size)
	logger.Log.Info("video uploaded", zap.String("url", url), zap.Int64("size", file.Size))
	return url, nil
}
