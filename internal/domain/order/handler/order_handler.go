package handler

import (
	"errors"
	"net/http"

	"wellness_shop/internal/domain/order/service"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/pkg/response"

	"github.com/gin-gonic/gin"
)

// 表单之外额外允许的 multipart 开销
const multipartOverhead = 1 << 20

// OrderHandler 店铺前台订单接口
type OrderHandler struct {
	service       service.OrderService
	proofMaxBytes int64
}

func NewOrderHandler(service service.OrderService, proofMaxBytes int64) *OrderHandler {
	return &OrderHandler{service: service, proofMaxBytes: proofMaxBytes}
}

// CreateOrder 提交订单
// @Summary 提交订单
// @Tags Orders
// @Accept json
// @Produce json
// @Param body body service.CreateOrderInput true "Order form"
// @Success 200 {object} response.Response{data=service.CreateOrderResult}
// @Failure 400 {object} response.Response
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Requête invalide")
		return
	}

	result, err := h.service.CreateOrder(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// GetInstructions 支付指引
// @Summary 获取订单支付指引
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response{data=presenter.Instructions}
// @Failure 404 {object} response.Response
// @Router /orders/{id}/instructions [get]
func (h *OrderHandler) GetInstructions(c *gin.Context) {
	instructions, err := h.service.GetInstructions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, instructions)
}

// UploadProof 上传支付凭证
// @Summary 上传支付凭证（图片或 PDF，最大 5MB）
// @Tags Orders
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Order ID"
// @Param file formData file true "Capture d'écran ou PDF"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /orders/{id}/proof [post]
func (h *OrderHandler) UploadProof(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.proofMaxBytes+multipartOverhead)

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

	order, err := h.service.AttachProof(c.Request.Context(), c.Param("id"), service.ProofFile{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, order)
}
