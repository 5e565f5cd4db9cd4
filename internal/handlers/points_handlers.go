package handlers

import (
	"errors"
	"net/http"

	"aguipuntos_backend/internal/services"
	"aguipuntos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PointsHandler holds the points service.
type PointsHandler struct {
	pointsService services.PointsService
}

// NewPointsHandler creates a new PointsHandler.
func NewPointsHandler(ps services.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: ps}
}

type loadPointsRequest struct {
	DNI             string `json:"dni" binding:"required"`
	PuntosAgregados int    `json:"puntosAgregados" binding:"required"`
	Operations      *int   `json:"operations"`
}

type redeemCustomRequest struct {
	DNI            string `json:"dni" binding:"required"`
	PointsToRedeem int    `json:"pointsToRedeem" binding:"required"`
	Note           string `json:"note"`
}

type redeemPrizeRequest struct {
	DNI      string `json:"dni" binding:"required"`
	PremioID int64  `json:"premioId" binding:"required"`
	Note     string `json:"note"`
}

// respondPointsError maps balance-mutation errors to HTTP responses.
func respondPointsError(c *gin.Context, err error) {
	var insufficient *services.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusConflict, gin.H{
			"error":         "Saldo insuficiente",
			"currentPoints": insufficient.CurrentPoints,
		})
		return
	}
	if errors.Is(err, services.ErrCustomerNotFound) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cliente no encontrado.", err.Error()))
	} else if errors.Is(err, services.ErrPrizeNotFound) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Premio no encontrado.", err.Error()))
	} else if errors.Is(err, services.ErrValidation) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	} else {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to apply points operation.", "Internal error"))
	}
}

// LoadPoints handles accrediting points to a customer.
func (h *PointsHandler) LoadPoints(c *gin.Context) {
	var req loadPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "LoadPoints: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.pointsService.LoadPoints(req.DNI, req.PuntosAgregados, req.Operations, actingUserFromContext(c))
	if err != nil {
		utils.LogError(err, "LoadPoints: Error from pointsService.LoadPoints")
		respondPointsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Puntos cargados",
		"puntosNuevos":  result.NewBalance,
		"transactionId": result.TransactionID,
	})
}

// RedeemCustom handles redeeming an arbitrary number of points.
func (h *PointsHandler) RedeemCustom(c *gin.Context) {
	var req redeemCustomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RedeemCustom: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.pointsService.RedeemCustom(req.DNI, req.PointsToRedeem, req.Note, actingUserFromContext(c))
	if err != nil {
		utils.LogError(err, "RedeemCustom: Error from pointsService.RedeemCustom")
		respondPointsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Canje registrado",
		"currentPoints": result.PreviousBalance,
		"newPoints":     result.NewBalance,
		"transactionId": result.TransactionID,
	})
}

// RedeemPrize handles redeeming a catalog prize.
func (h *PointsHandler) RedeemPrize(c *gin.Context) {
	var req redeemPrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RedeemPrize: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.pointsService.RedeemPrize(req.DNI, req.PremioID, req.Note, actingUserFromContext(c))
	if err != nil {
		utils.LogError(err, "RedeemPrize: Error from pointsService.RedeemPrize")
		respondPointsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Canje registrado",
		"currentPoints": result.PreviousBalance,
		"newPoints":     result.NewBalance,
		"transactionId": result.TransactionID,
	})
}
