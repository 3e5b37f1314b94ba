package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/visora-labs/visora-relay/internal/http/middleware"
	"github.com/visora-labs/visora-relay/internal/push"
)

// PushHandler serves web push subscription management and broadcasts.
type PushHandler struct {
	service *push.Service
}

// NewPushHandler constructs a PushHandler.
func NewPushHandler(service *push.Service) *PushHandler {
	return &PushHandler{service: service}
}

// Subscribe stores or refreshes the caller's push subscription.
func (h *PushHandler) Subscribe(c *gin.Context) {
	var sub push.Subscription
	if errBind := c.ShouldBindJSON(&sub); errBind != nil || strings.TrimSpace(sub.Endpoint) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription endpoint is required"})
		return
	}

	var userID *string
	if id := c.GetString(middleware.ContextUserID); id != "" {
		userID = &id
	}
	if errSubscribe := h.service.Subscribe(c.Request.Context(), sub, userID); errSubscribe != nil {
		log.WithError(errSubscribe).Error("push subscribe failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Unsubscribe removes a push subscription by endpoint.
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var body struct {
		Endpoint string `json:"endpoint"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil || strings.TrimSpace(body.Endpoint) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription endpoint is required"})
		return
	}
	if errUnsubscribe := h.service.Unsubscribe(c.Request.Context(), body.Endpoint); errUnsubscribe != nil {
		log.WithError(errUnsubscribe).Error("push unsubscribe failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Send broadcasts a notification to every stored subscription.
func (h *PushHandler) Send(c *gin.Context) {
	var notification push.Notification
	if errBind := c.ShouldBindJSON(&notification); errBind != nil || strings.TrimSpace(notification.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	sent, errBroadcast := h.service.Broadcast(c.Request.Context(), notification)
	if errBroadcast != nil {
		log.WithError(errBroadcast).Error("push broadcast failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sent": sent})
}
