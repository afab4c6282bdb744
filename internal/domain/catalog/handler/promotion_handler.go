package handler

import (
	"net/http"

	"wellness_shop/internal/domain/catalog/service"
	"wellness_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

type PromotionHandler struct {
	service service.PromotionService
}

func NewPromotionHandler(service service.PromotionService) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// ListActive 前台促销
// @Summary 当前有效的促销（最新在前）
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response{data=[]model.Promotion}
// @Router /promotions/active [get]
func (h *PromotionHandler) ListActive(c *gin.Context) {
	promos, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, promos)
}

// List 后台促销列表
// @Summary 全部促销
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Promotion}
// @Router /admin/promotions [get]
func (h *PromotionHandler) List(c *gin.Context) {
	promos, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, promos)
}

// Create 新建促销
// @Summary 新建促销
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.PromotionInput true "Promotion"
// @Success 200 {object} response.Response{data=model.Promotion}
// @Failure 400 {object} response.Response
// @Router /admin/promotions [post]
func (h *PromotionHandler) Create(c *gin.Context) {
	var input service.PromotionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Requête invalide")
		return
	}

	promo, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, promo)
}

// Update 修改促销
// @Summary 修改促销
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promotion ID"
// @Param body body service.PromotionInput true "Promotion"
// @Success 200 {object} response.Response{data=model.Promotion}
// @Router /admin/promotions/{id} [put]
func (h *PromotionHandler) Update(c *gin.Context) {
	var input service.PromotionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Requête invalide")
		return
	}

	promo, err := h.service.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, promo)
}

// SetActive 启用/停用促销
// @Summary 启用或停用促销
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promotion ID"
// @Param body body ToggleInput true "Active flag"
// @Success 200 {object} response.Response
// @Router /admin/promotions/{id}/active [patch]
func (h *PromotionHandler) SetActive(c *gin.Context) {
	var input ToggleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "isActive is required")
		return
	}

	if err := h.service.SetActive(c.Request.Context(), c.Param("id"), *input.IsActive); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// Delete 删除促销
// @Summary 删除促销
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promotion ID"
// @Success 200 {object} response.Response
// @Router /admin/promotions/{id} [delete]
func (h *PromotionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}
