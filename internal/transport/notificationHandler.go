package transport

import (
	"net/http"

	"github.com/eventmind/eventmind/internal/service"
	"github.com/eventmind/eventmind/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	subscriptionService service.SubscriptionService
}

func NewNotificationHandler(subscriptionService service.SubscriptionService) *NotificationHandler {
	return &NotificationHandler{subscriptionService: subscriptionService}
}

func (h *NotificationHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req service.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription object"})
		return
	}

	if err := h.subscriptionService.Subscribe(c.Request.Context(), userID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "subscription added"})
}

func (h *NotificationHandler) Unsubscribe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req service.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription object"})
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), userID, req.Endpoint); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subscription removed"})
}

func (h *NotificationHandler) VAPIDPublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"public_key": h.subscriptionService.VAPIDPublicKey()})
}
