package handler

import (
	"net/http"

	"wellness_shop/internal/domain/order/model"
	"wellness_shop/internal/domain/order/service"
	"wellness_shop/pkg/response"
	"wellness_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminOrderHandler 后台订单审核
type AdminOrderHandler struct {
	service service.OrderService
}

func NewAdminOrderHandler(service service.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{service: service}
}

// UpdateStatusInput 携带客户端看到的版本号
type UpdateStatusInput struct {
	Status  model.Status `json:"status" binding:"required"`
	Version int          `json:"version" binding:"required,min=1"`
}

// ListOrders 订单列表
// @Summary 订单列表（最新在前）
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /admin/orders [get]
func (h *AdminOrderHandler) ListOrders(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid pagination")
		return
	}

	result, err := h.service.ListOrders(c.Request.Context(), c.Query("status"), p)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// Summary 按状态统计
// @Summary 各状态订单数
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.OrderSummary}
// @Router /admin/orders/summary [get]
func (h *AdminOrderHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, summary)
}

// GetOrder 订单详情
// @Summary 订单详情
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Router /admin/orders/{id} [get]
func (h *AdminOrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateStatus 修改订单状态
// @Summary 修改订单状态（乐观锁）
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param body body UpdateStatusInput true "Target status and expected version"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 409 {object} response.Response
// @Router /admin/orders/{id}/status [put]
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "status and version are required")
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status, input.Version)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, order)
}
