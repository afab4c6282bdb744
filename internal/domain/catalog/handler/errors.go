package handler

import (
	"errors"
	"net/http"

	"wellness_shop/internal/domain/catalog/service"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func writeError(c *gin.Context, err error) {
	var inv *service.InvalidInputError
	switch {
	case errors.As(err, &inv):
		response.ErrorWithData(c, http.StatusBadRequest, response.ErrCatalogInvalid, "Formulaire invalide", inv.Fields)
	case errors.Is(err, service.ErrPromotionNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCatalogNotFound, "Promotion introuvable")
	case errors.Is(err, service.ErrImageNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCatalogNotFound, "Image introuvable")
	case errors.Is(err, service.ErrVideoNotFound):
		response.Error(c, http.StatusNotFound, response.ErrCatalogNotFound, "Vidéo introuvable")
	case errors.Is(err, service.ErrDuplicateKey):
		response.Error(c, http.StatusConflict, response.ErrCatalogDuplicate, "Cette clé existe déjà")
	case errors.Is(err, uploader.ErrFileTooLarge):
		response.Error(c, http.StatusBadRequest, response.ErrFileTooLarge, "Fichier trop volumineux. La taille maximum est de 50 MB")
	case errors.Is(err, uploader.ErrFileType), errors.Is(err, uploader.ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, response.ErrFileType, "Veuillez sélectionner un fichier vidéo")
	case errors.Is(err, service.ErrUploadFailed):
		response.Error(c, http.StatusBadGateway, response.ErrUploadFailed, "Une erreur est survenue lors de l'envoi. Veuillez réessayer.")
	default:
		logger.Log.Error("catalog request failed",
			zap.String("path", c.FullPath()),
			zap.String("trace_id", c.GetString("traceID")),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, response.MsgRetry)
	}
}

// ToggleInput 启用/停用
type ToggleInput struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
