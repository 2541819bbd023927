package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"map-action-api/services"
)

type chatRequestBody struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
	Context   string `json:"context"`
}

// Chat forwards a follow-up question about an incident to the language
// model, with the incident context and the stored session history. A
// missing session id starts a new session.
// POST /api/chat
func (h *Handler) Chat(c *gin.Context) {
	var body chatRequestBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt requis"})
		return
	}

	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = services.NewSessionID()
	}

	response := h.ChatSvc.Reply(c.Request.Context(), sessionID, body.Prompt, body.Context)

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"session_id": sessionID,
		"response":   response,
	})
}

// ChatHistory returns the stored messages of one chat session.
// GET /api/chat/:session_id/history
func (h *Handler) ChatHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	messages, err := h.Sessions.History(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("loading chat history failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lecture de l'historique impossible"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"session_id": sessionID,
		"data":       messages,
	})
}
