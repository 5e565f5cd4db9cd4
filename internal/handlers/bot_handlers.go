package handlers

import (
	"errors"
	"net/http"

	"aguipuntos_backend/internal/bot"
	"aguipuntos_backend/internal/services"
	"aguipuntos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BotHandler holds the Telegram bot service.
type BotHandler struct {
	botService services.BotService
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(bs services.BotService) *BotHandler {
	return &BotHandler{botService: bs}
}

// Webhook receives Telegram updates. A /start message registers the chat for
// daily summaries. Always answers 200 so Telegram does not retry forever.
func (h *BotHandler) Webhook(c *gin.Context) {
	var update bot.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.LogError(err, "Webhook: Failed to bind Telegram update")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if !bot.IsStartCommand(update) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	chatID := bot.ChatIDFromUpdate(update)
	chats, err := h.botService.RegisterChat(chatID)
	if err != nil {
		utils.LogError(err, "Webhook: Error from botService.RegisterChat for chat "+chatID)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	utils.LogInfo("Telegram chat registered", map[string]interface{}{"chat_id": chatID, "registered": len(chats)})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SendDailySummary builds today's digest (or the requested window) and
// broadcasts it to all registered chats.
func (h *BotHandler) SendDailySummary(c *gin.Context) {
	opts, err := reportOptionsFromQuery(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid userId format.", err.Error()))
		return
	}

	summary, err := h.botService.SendDailySummary(opts)
	if err != nil {
		utils.LogError(err, "SendDailySummary: Error from botService.SendDailySummary")
		if errors.Is(err, services.ErrBotNotConfigured) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "El bot de Telegram no está configurado.", err.Error()))
		} else if errors.Is(err, services.ErrMissingChatID) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "No hay chats registrados.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to send daily summary.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "summary": summary})
}
