package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"aguipuntos_backend/internal/services"
	"aguipuntos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TransactionHandler holds the void service.
type TransactionHandler struct {
	voidService services.VoidService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(vs services.VoidService) *TransactionHandler {
	return &TransactionHandler{voidService: vs}
}

type voidTransactionRequest struct {
	Reason string `json:"reason"`
}

// VoidTransaction reverses a LOAD by booking a compensating ADJUST entry.
func (h *TransactionHandler) VoidTransaction(c *gin.Context) {
	idStr := c.Param("id")
	transactionID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid transaction ID format.", err.Error()))
		return
	}

	// Reason is optional; an empty or missing body is fine.
	var req voidTransactionRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.voidService.VoidLoad(transactionID, req.Reason, actingUserFromContext(c))
	if err != nil {
		utils.LogError(err, "VoidTransaction: Error from voidService.VoidLoad for ID "+idStr)
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transacción no encontrada.", err.Error()))
		} else if errors.Is(err, services.ErrAlreadyVoided) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "La transacción ya fue anulada.", err.Error()))
		} else if errors.Is(err, services.ErrInvalidVoidTarget) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Solo se pueden anular cargas de puntos.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to void transaction.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":                  true,
		"originalId":          result.OriginalID,
		"adjustTransactionId": result.AdjustTransactionID,
		"customerId":          result.CustomerID,
		"deltaPoints":         result.DeltaPoints,
		"newPoints":           result.NewPoints,
	})
}
