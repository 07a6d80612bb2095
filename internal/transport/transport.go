package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventmind/eventmind/internal/entity"
	"github.com/eventmind/eventmind/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(
	authHandler *AuthHandler,
	eventHandler *EventHandler,
	notificationHandler *NotificationHandler,
	authRequired gin.HandlerFunc,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30 * time.Second))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/profile", authRequired, authHandler.Profile)
		}

		events := api.Group("/events", authRequired)
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("", eventHandler.GetEvents)
			events.PATCH("/:eventId", eventHandler.UpdateEvent)
			events.DELETE("/:eventId", eventHandler.DeleteEvent)
		}

		notifications := api.Group("/notifications", authRequired)
		{
			notifications.POST("/subscribe", notificationHandler.Subscribe)
			notifications.DELETE("/subscribe", notificationHandler.Unsubscribe)
			notifications.GET("/vapid-public-key", notificationHandler.VAPIDPublicKey)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// respondError maps service errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, entity.ErrSubscriptionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrUserAlreadyExists),
		errors.Is(err, entity.ErrInvalidCredentials),
		errors.Is(err, entity.ErrInvalidTimeSpan),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, entity.ErrInvalidSubscription),
		errors.Is(err, entity.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrEventConflict):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrUnauthorized):
		status = http.StatusUnauthorized
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
