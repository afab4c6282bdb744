package handler

import (
	"errors"
	"net/http"

	"wellness_shop/internal/domain/order/service"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError 把服务层错误映射为 HTTP 状态和业务码
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithData(c, http.StatusBadRequest, response.ErrOrderInvalid, "Formulaire invalide", verr.Fields)
	case errors.Is(err, service.ErrPromoInvalid):
		response.Error(c, http.StatusBadRequest, response.ErrPromoInvalid, "Code promo invalide ou expiré")
	case errors.Is(err, service.ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Statut inconnu")
	case errors.Is(err, service.ErrOrderNotFound):
		response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Commande introuvable")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, response.ErrInvalidTransition, "Changement de statut non autorisé")
	case errors.Is(err, service.ErrVersionConflict):
		response.Error(c, http.StatusConflict, response.ErrVersionConflict,
			"La commande a été modifiée entre-temps. Actualisez la liste puis réessayez.")
	case errors.Is(err, uploader.ErrFileTooLarge):
		response.Error(c, http.StatusBadRequest, response.ErrFileTooLarge, "Fichier trop volumineux. La taille maximum est de 5 MB")
	case errors.Is(err, uploader.ErrFileType), errors.Is(err, uploader.ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, response.ErrFileType, "Veuillez sélectionner une capture d'écran ou un PDF")
	case errors.Is(err, service.ErrUploadFailed):
		response.Error(c, http.StatusBadGateway, response.ErrUploadFailed, "Une erreur est survenue lors de l'envoi. Veuillez réessayer.")
	default:
		logger.Log.Error("order request failed",
			zap.String("path", c.FullPath()),
			zap.String("trace_id", c.GetString("traceID")),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, response.MsgRetry)
	}
}
