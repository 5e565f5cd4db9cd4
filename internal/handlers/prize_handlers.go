package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/services"
	"aguipuntos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PrizeHandler holds the prize service.
type PrizeHandler struct {
	prizeService services.PrizeService
}

// NewPrizeHandler creates a new PrizeHandler.
func NewPrizeHandler(ps services.PrizeService) *PrizeHandler {
	return &PrizeHandler{prizeService: ps}
}

// GetPrizes handles listing the prize catalog.
func (h *PrizeHandler) GetPrizes(c *gin.Context) {
	prizes, err := h.prizeService.GetPrizes()
	if err != nil {
		utils.LogError(err, "GetPrizes: Error from prizeService.GetPrizes")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch prizes.", "Internal error"))
		return
	}
	if prizes == nil {
		prizes = []models.Prize{}
	}
	c.JSON(http.StatusOK, prizes)
}

// CreatePrize handles adding a prize to the catalog.
func (h *PrizeHandler) CreatePrize(c *gin.Context) {
	var req services.SavePrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreatePrize: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	prize, err := h.prizeService.CreatePrize(req)
	if err != nil {
		utils.LogError(err, "CreatePrize: Error from prizeService.CreatePrize")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create prize.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, prize)
}

// UpdatePrize handles editing a catalog prize.
func (h *PrizeHandler) UpdatePrize(c *gin.Context) {
	idStr := c.Param("id")
	prizeID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid prize ID format.", err.Error()))
		return
	}

	var req services.SavePrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdatePrize: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	prize, err := h.prizeService.UpdatePrize(prizeID, req)
	if err != nil {
		utils.LogError(err, "UpdatePrize: Error from prizeService.UpdatePrize for ID "+idStr)
		if errors.Is(err, services.ErrPrizeNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Premio no encontrado.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update prize.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, prize)
}

// DeletePrize handles removing a catalog prize.
func (h *PrizeHandler) DeletePrize(c *gin.Context) {
	idStr := c.Param("id")
	prizeID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid prize ID format.", err.Error()))
		return
	}

	err = h.prizeService.DeletePrize(prizeID)
	if err != nil {
		utils.LogError(err, "DeletePrize: Error from prizeService.DeletePrize for ID "+idStr)
		if errors.Is(err, services.ErrPrizeNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Premio no encontrado.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete prize.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Premio eliminado"})
}
