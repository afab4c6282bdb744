package handler

import (
	"errors"
	"net/http"

	"wellness_shop/internal/domain/catalog/service"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

const multipartOverhead = 1 << 20

type MediaHandler struct {
	service       service.MediaService
	videoMaxBytes int64
}

func NewMediaHandler(service service.MediaService, videoMaxBytes int64) *MediaHandler {
	return &MediaHandler{service: service, videoMaxBytes: videoMaxBytes}
}

// ListImages 图片列表
// @Summary 页面图片
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Image}
// @Router /images [get]
func (h *MediaHandler) ListImages(c *gin.Context) {
	images, err := h.service.ListImages(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, images)
}

// GetImage 按 key 取图片
// @Summary 按 key 取图片
// @Tags Catalog
// @Produce json
// @Param key path string true "Image key"
// @Success 200 {object} response.Response{data=model.Image}
// @Failure 404 {object} response.Response
// @Router /images/{key} [get]
func (h *MediaHandler) GetImage(c *gin.Context) {
	image, err := h.service.GetImage(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, image)
}

// CreateImage
// @Summary 新建图片
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ImageInput true "Image"
// @Success 200 {object} response.Response{data=model.Image}
// @Failure 409 {object} response.Response
// @Router /admin/images [post]
func (h *MediaHandler) CreateImage(c *gin.Context) {
	var input service.ImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Requête invalide")
		return
	}

	image, err := h.service.CreateImage(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, image)
}

// UpdateImage
// @Summary 修改图片
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Image ID"
// @Param body body service.ImageInput true "Image"
// @Success 200 {object} response.Response{data=model.Image}
// @Router /admin/images/{id} [put]
func (h *MediaHandler) UpdateImage(c *gin.Context) {
	var input service.ImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Requête invalide")
		return
	}

	image, err := h.service.UpdateImage(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, image)
}

// DeleteImage
// @Summary 删除图片
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Image ID"
// @Success 200 {object} response.Response
// @Router /admin/images/{id} [delete]
func (h *MediaHandler) DeleteImage(c *gin.Context) {
	if err := h.service.DeleteImage(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListActiveVideos 前台视频
// @Summary 已启用的视频（按 display_order）
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Video}
// @Router /videos [get]
func (h *MediaHandler) ListActiveVideos(c *gin.Context) {
	videos, err := h.service.ListVideos(c.Request.Context(), true)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, videos)
}

// ListVideos 后台全部视频
// @Summary 全部视频
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Video}
// @Router /admin/videos [get]
func (h *MediaHandler) ListVideos(c *gin.Context) {
	videos, err := h.service.ListVideos(c.Request.Context(), false)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, videos)
}

// CreateVideo
// @Summary 新建视频
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.VideoInput true "Video"
// @Success 200 {object} response.Response{data=model.Video}
// @Router /admin/videos [post]
func (h *MediaHandler) CreateVideo(c *gin.Context) {
	var input service.VideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Requête invalide")
		return
	}

	video, err := h.service.CreateVideo(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, video)
}

// UpdateVideo
// @Summary 修改视频
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Param body body service.VideoInput true "Video"
// @Success 200 {object} response.Response{data=model.Video}
// @Router /admin/videos/{id} [put]
func (h *MediaHandler) UpdateVideo(c *gin.Context) {
	var input service.VideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Requête invalide")
		return
	}

	video, err := h.service.UpdateVideo(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, video)
}

// SetVideoActive
// @Summary 启用或停用视频
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Param body body ToggleInput true "Active flag"
// @Success 200 {object} response.Response
// @Router /admin/videos/{id}/active [patch]
func (h *MediaHandler) SetVideoActive(c *gin.Context) {
	var input ToggleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "isActive is required")
		return
	}

	if err := h.service.SetVideoActive(c.Request.Context(), c.Param("id"), *input.IsActive); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteVideo
// @Summary 删除视频
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Success 200 {object} response.Response
// @Router /admin/videos/{id} [delete]
func (h *MediaHandler) DeleteVideo(c *gin.Context) {
	if err := h.service.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// UploadVideo 上传视频文件
// @Summary 上传视频（最大 50MB）
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Video file"
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 400 {object} response.Response
// @Router /admin/videos/upload [post]
func (h *MediaHandler) UploadVideo(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.videoMaxBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, uploader.ErrFileTooLarge)
			return
		}
		response.Error(c, http.StatusBadRequest, response.ErrFileType, "Aucun fichier sélectionné")
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	url, err := h.service.UploadVideo(c.Request.Context(), service.VideoFile{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}
