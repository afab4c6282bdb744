package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"wellness_shop/internal/domain/catalog/model"
	"wellness_shop/internal/pkg/realtime"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	promoID = "5a0f3c2e-8b7d-4e6f-9a1b-2c3d4e5f6a7b"
	imageID = "7c1e2d3f-4a5b-4c6d-8e7f-9a0b1c2d3e4f"
	videoID = "2f3e4d5c-6b7a-4980-a1b2-c3d4e5f6a7b8"
)

// MockPromotionRepository is a mock of PromotionRepository
type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) Create(ctx context.Context, promo *model.Promotion) error {
	args := m.Called(ctx, promo)
	if args.Error(0) == nil {
		promo.ID = promoID
	}
	return args.Error(0)
}

func (m *MockPromotionRepository) Update(ctx context.Context, promo *model.Promotion) error {
	return m.Called(ctx, promo).Error(0)
}

func (m *MockPromotionRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromotionRepository) GetByID(ctx context.Context, id string) (*model.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) List(ctx context.Context) ([]model.Promotion, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) ListEnabled(ctx context.Context) ([]model.Promotion, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	args := m.Called(ctx, id, active)
	return args.Bool(0), args.Error(1)
}

// MockVideoRepository is a mock of VideoRepository
type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Create(ctx context.Context, video *model.Video) error {
	return m.Called(ctx, video).Error(0)
}

func (m *MockVideoRepository) Update(ctx context.Context, video *model.Video) error {
	return m.Called(ctx, video).Error(0)
}

func (m *MockVideoRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockVideoRepository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

func (m *MockVideoRepository) List(ctx context.Context, activeOnly bool) ([]model.Video, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]model.Video), args.Error(1)
}

func (m *MockVideoRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	args := m.Called(ctx, id, active)
	return args.Bool(0), args.Error(1)
}

func (m *MockVideoRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockImageRepository is a mock of ImageRepository
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, image *model.Image) error {
	return m.Called(ctx, image).Error(0)
}

func (m *MockImageRepository) Update(ctx context.Context, image *model.Image) error {
	return m.Called(ctx, image).Error(0)
}

func (m *MockImageRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockImageRepository) GetByID(ctx context.Context, id string) (*model.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockImageRepository) GetByKey(ctx context.Context, key string) (*model.Image, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockImageRepository) List(ctx context.Context) ([]model.Image, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Image), args.Error(1)
}

// MockUploader is a mock of uploader.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, bucket, objectName string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, bucket, objectName, r, contentType)
	return args.String(0), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) last() realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newPromotionService(repo *MockPromotionRepository, pub *recordingPublisher) *promotionService {
	s := NewPromotionService(repo, cache.NewMemoryCache(), pub, nil).(*promotionService)
	s.now = func() time.Time { return fixedNow }
	return s
}

func ptr[T any](v T) *T { return &v }

func TestListActivePromotions(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPromotionRepository)
	s := newPromotionService(repo, &recordingPublisher{})

	expired := fixedNow.Add(-time.Hour)
	repo.On("ListEnabled", ctx).Return([]model.Promotion{
		{Title: "Tabaski", IsActive: true},
		{Title: "Ramadan", IsActive: true, EndDate: &expired},
	}, nil).Once()

	first, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Tabaski", first[0].Title)

	// 第二次读缓存
	second, err := s.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "ListEnabled", 1)
}

func TestPromotionChangeInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPromotionRepository)
	pub := &recordingPublisher{}
	s := newPromotionService(repo, pub)

	repo.On("ListEnabled", ctx).Return([]model.Promotion{{Title: "Tabaski", IsActive: true}}, nil).Twice()
	repo.On("SetActive", ctx, promoID, false).Return(true, nil)

	_, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetActive(ctx, promoID, false))
	_, err = s.ListActive(ctx)
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "ListEnabled", 2)
	evt := pub.last()
	assert.Equal(t, realtime.TablePromotions, evt.Table)
	assert.Equal(t, realtime.ActionUpdate, evt.Action)
	assert.Equal(t, promoID, evt.ID)
}

func TestCreatePromotion(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes code and publishes insert", func(t *testing.T) {
		repo := new(MockPromotionRepository)
		pub := &recordingPublisher{}
		s := newPromotionService(repo, pub)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Promotion")).Return(nil)

		promo, err := s.Create(ctx, PromotionInput{Title: " Tabaski ", PromoCode: " tabaski ", PromoPrice: ptr(int64(19900))})
		require.NoError(t, err)
		assert.Equal(t, "Tabaski", promo.Title)
		assert.Equal(t, "TABASKI", *promo.PromoCode)
		assert.True(t, promo.IsActive)
		assert.Equal(t, realtime.ActionInsert, pub.last().Action)
	})

	t.Run("rejects bad discount and window", func(t *testing.T) {
		repo := new(MockPromotionRepository)
		s := newPromotionService(repo, &recordingPublisher{})

		start := fixedNow
		end := fixedNow.Add(-24 * time.Hour)
		_, err := s.Create(ctx, PromotionInput{Title: "Promo", DiscountPercentage: ptr(120), StartDate: &start, EndDate: &end})

		var inv *InvalidInputError
		require.ErrorAs(t, err, &inv)
		assert.Contains(t, inv.Fields, "discountPercentage")
		assert.Contains(t, inv.Fields, "endDate")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate code", func(t *testing.T) {
		repo := new(MockPromotionRepository)
		s := newPromotionService(repo, &recordingPublisher{})
		repo.On("Create", ctx, mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := s.Create(ctx, PromotionInput{Title: "Promo", PromoCode: "DUP"})
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})
}

func TestDeleteMissingPromotion(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPromotionRepository)
	pub := &recordingPublisher{}
	s := newPromotionService(repo, pub)
	repo.On("Delete", ctx, promoID).Return(false, nil)

	assert.ErrorIs(t, s.Delete(ctx, promoID), ErrPromotionNotFound)
	assert.Empty(t, pub.events)
}

func TestMalformedCatalogIDs(t *testing.T) {
	ctx := context.Background()
	promos := new(MockPromotionRepository)
	ps := newPromotionService(promos, &recordingPublisher{})

	_, err := ps.Update(ctx, "abc", PromotionInput{Title: "Tabaski"})
	assert.ErrorIs(t, err, ErrPromotionNotFound)
	assert.ErrorIs(t, ps.SetActive(ctx, "abc", true), ErrPromotionNotFound)
	assert.ErrorIs(t, ps.Delete(ctx, "abc"), ErrPromotionNotFound)

	images := new(MockImageRepository)
	videos := new(MockVideoRepository)
	ms := newMediaService(images, videos, new(MockUploader), &recordingPublisher{})

	_, err = ms.UpdateImage(ctx, "abc", ImageInput{Key: "hero", URL: "https://cdn.example.com/hero.jpg"})
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.ErrorIs(t, ms.DeleteImage(ctx, "abc"), ErrImageNotFound)
	_, err = ms.UpdateVideo(ctx, "abc", VideoInput{Title: "Avis", VideoURL: "https://youtu.be/dQw4w9WgXcQ"})
	assert.ErrorIs(t, err, ErrVideoNotFound)
	assert.ErrorIs(t, ms.SetVideoActive(ctx, "abc", false), ErrVideoNotFound)
	assert.ErrorIs(t, ms.DeleteVideo(ctx, "abc"), ErrVideoNotFound)

	promos.AssertExpectations(t)
	images.AssertExpectations(t)
	videos.AssertExpectations(t)
}

func TestPromoTermsCachedUntilChange(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPromotionRepository)
	s := newPromotionService(repo, &recordingPublisher{})

	repo.On("GetByCode", ctx, "TABASKI").
		Return(&model.Promotion{IsActive: true, DiscountPercentage: ptr(10)}, nil).Twice()
	repo.On("SetActive", ctx, promoID, true).Return(true, nil)

	for i := 0; i < 3; i++ {
		terms, err := s.PromoTerms(ctx, "TABASKI")
		require.NoError(t, err)
		assert.Equal(t, 10, terms.DiscountPercentage)
	}
	repo.AssertNumberOfCalls(t, "GetByCode", 1)

	require.NoError(t, s.SetActive(ctx, promoID, true))
	_, err := s.PromoTerms(ctx, "TABASKI")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetByCode", 2)
}

func TestPromoTerms(t *testing.T) {
	ctx := context.Background()

	t.Run("active promo price", func(t *testing.T) {
		repo := new(MockPromotionRepository)
		s := newPromotionService(repo, &recordingPublisher{})
		repo.On("GetByCode", ctx, "TABASKI").Return(&model.Promotion{IsActive: true, PromoPrice: ptr(int64(19900))}, nil)

		terms, err := s.PromoTerms(ctx, "tabaski")
		require.NoError(t, err)
		require.NotNil(t, terms)
		assert.Equal(t, int64(19900), *terms.PromoPrice)
	})

	t.Run("discount percentage", func(t *testing.T) {
		repo := new(MockPromotionRepository)
		s := newPromotionService(repo, &recordingPublisher{})
		repo.On("GetByCode", ctx, "MOINS10").Return(&model.Promotion{IsActive: true, DiscountPercentage: ptr(10)}, nil)

		terms, err := s.PromoTerms(ctx, "MOINS10")
		require.NoError(t, err)
		assert.Equal(t, 10, terms.DiscountPercentage)
		assert.Nil(t, terms.PromoPrice)
	})

	t.Run("unknown code", func(t *testing.T) {
		repo := new(MockPromotionRepository)
		s := newPromotionService(repo, &recordingPublisher{})
		repo.On("GetByCode", ctx, "NOPE").Return(nil, gorm.ErrRecordNotFound)

		terms, err := s.PromoTerms(ctx, "NOPE")
		assert.NoError(t, err)
		assert.Nil(t, terms)
	})

	t.Run("disabled promotion", func(t *testing.T) {
		repo := new(MockPromotionRepository)
		s := newPromotionService(repo, &recordingPublisher{})
		repo.On("GetByCode", ctx, "OLD").Return(&model.Promotion{IsActive: false, DiscountPercentage: ptr(50)}, nil)

		terms, err := s.PromoTerms(ctx, "OLD")
		assert.NoError(t, err)
		assert.Nil(t, terms)
	})

	t.Run("database error", func(t *testing.T) {
		repo := new(MockPromotionRepository)
		s := newPromotionService(repo, &recordingPublisher{})
		repo.On("GetByCode", ctx, "X").Return(nil, errors.New("connection reset"))

		_, err := s.PromoTerms(ctx, "X")
		assert.Error(t, err)
	})
}

func TestYouTubeThumbnail(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":     "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		"https://youtu.be/dQw4w9WgXcQ":                    "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		"https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0": "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		"https://cdn.example.com/videos/temoignage.mp4":   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, YouTubeThumbnail(in), in)
	}
}

func newMediaService(images *MockImageRepository, videos *MockVideoRepository, up *MockUploader, pub *recordingPublisher) *mediaService {
	s := NewMediaService(images, videos, up, pub, nil, MediaSettings{
		VideoBucket: "videos",
		VideoRule:   uploader.VideoRule(1 << 20),
	}).(*mediaService)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestCreateVideo(t *testing.T) {
	ctx := context.Background()
	videos := new(MockVideoRepository)
	pub := &recordingPublisher{}
	s := newMediaService(new(MockImageRepository), videos, new(MockUploader), pub)

	videos.On("Count", ctx).Return(int64(3), nil)
	videos.On("Create", ctx, mock.AnythingOfType("*model.Video")).Return(nil)

	video, err := s.CreateVideo(ctx, VideoInput{Title: "Témoignage", VideoURL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.Equal(t, 3, video.DisplayOrder)
	assert.True(t, video.IsActive)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg", video.ThumbnailURL)
	assert.Equal(t, realtime.TableVideos, pub.last().Table)
}

func TestUpdateVideoKeepsExplicitThumbnail(t *testing.T) {
	ctx := context.Background()
	videos := new(MockVideoRepository)
	s := newMediaService(new(MockImageRepository), videos, new(MockUploader), &recordingPublisher{})

	videos.On("GetByID", ctx, videoID).Return(&model.Video{Title: "Old", IsActive: true, DisplayOrder: 2}, nil)
	videos.On("Update", ctx, mock.AnythingOfType("*model.Video")).Return(nil)

	video, err := s.UpdateVideo(ctx, videoID, VideoInput{
		Title:        "Nouveau",
		VideoURL:     "https://youtu.be/dQw4w9WgXcQ",
		ThumbnailURL: "https://cdn.example.com/thumb.jpg",
		IsActive:     ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/thumb.jpg", video.ThumbnailURL)
	assert.False(t, video.IsActive)
	assert.Equal(t, 2, video.DisplayOrder)
}

func TestUploadVideo(t *testing.T) {
	ctx := context.Background()
	mp4 := append([]byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"), bytes.Repeat([]byte{0}, 64)...)

	t.Run("accepted", func(t *testing.T) {
		up := new(MockUploader)
		s := newMediaService(new(MockImageRepository), new(MockVideoRepository), up, &recordingPublisher{})
		up.On("Upload", ctx, "videos", mock.MatchedBy(func(name string) bool {
			return strings.HasSuffix(name, ".mp4")
		}), mock.Anything, "video/mp4").Return("https://cdn.example.com/videos/1.mp4", nil)

		url, err := s.UploadVideo(ctx, VideoFile{Filename: "clip.mp4", Size: int64(len(mp4)), ContentType: "video/mp4", Reader: bytes.NewReader(mp4)})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/videos/1.mp4", url)
	})

	t.Run("too large", func(t *testing.T) {
		up := new(MockUploader)
		s := newMediaService(new(MockImageRepository), new(MockVideoRepository), up, &recordingPublisher{})

		_, err := s.UploadVideo(ctx, VideoFile{Filename: "big.mp4", Size: 2 << 20, Reader: bytes.NewReader(mp4)})
		assert.ErrorIs(t, err, uploader.ErrFileTooLarge)
		up.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not a video", func(t *testing.T) {
		up := new(MockUploader)
		s := newMediaService(new(MockImageRepository), new(MockVideoRepository), up, &recordingPublisher{})

		body := []byte("just some notes")
		_, err := s.UploadVideo(ctx, VideoFile{Filename: "notes.mp4", Size: int64(len(body)), ContentType: "video/mp4", Reader: bytes.NewReader(body)})
		assert.ErrorIs(t, err, uploader.ErrFileType)
	})

	t.Run("storage failure", func(t *testing.T) {
		up := new(MockUploader)
		s := newMediaService(new(MockImageRepository), new(MockVideoRepository), up, &recordingPublisher{})
		up.On("Upload", ctx, "videos", mock.Anything, mock.Anything, "video/mp4").Return("", errors.New("timeout"))

		_, err := s.UploadVideo(ctx, VideoFile{Filename: "clip.mp4", Size: int64(len(mp4)), Reader: bytes.NewReader(mp4)})
		assert.ErrorIs(t, err, ErrUploadFailed)
	})
}

func TestImageLifecycle(t *testing.T) {
	ctx := context.Background()
	images := new(MockImageRepository)
	pub := &recordingPublisher{}
	s := newMediaService(images, new(MockVideoRepository), new(MockUploader), pub)

	images.On("GetByKey", ctx, "hero").Return(nil, gorm.ErrRecordNotFound)
	_, err := s.GetImage(ctx, "hero")
	assert.ErrorIs(t, err, ErrImageNotFound)

	_, err = s.CreateImage(ctx, ImageInput{Key: " ", URL: "https://cdn.example.com/hero.jpg"})
	var inv *InvalidInputError
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Fields, "key")

	images.On("Create", ctx, mock.AnythingOfType("*model.Image")).Return(nil)
	image, err := s.CreateImage(ctx, ImageInput{Key: "hero", URL: "https://cdn.example.com/hero.jpg", AltText: "Coffret"})
	require.NoError(t, err)
	assert.Equal(t, "hero", image.Key)
	assert.Equal(t, realtime.TableImages, pub.last().Table)

	images.On("Delete", ctx, imageID).Return(false, nil)
	assert.ErrorIs(t, s.DeleteImage(ctx, imageID), ErrImageNotFound)
}
