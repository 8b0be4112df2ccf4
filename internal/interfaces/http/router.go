// Package http wires the gin router for the admin API.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/interfaces/http/handlers"
	"subcycle/internal/interfaces/http/middleware"
	"subcycle/internal/shared/logger"
)

// NewRouter builds the admin API router.
func NewRouter(subscriptionHandler *handlers.SubscriptionHandler, log logger.Interface) *gin.Engine {
	registerValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.POST("", subscriptionHandler.CreateSubscription)
			subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
			subscriptions.POST("/:id/status", subscriptionHandler.UpdateStatus)
			subscriptions.PUT("/:id/dates", subscriptionHandler.UpdateDates)
			subscriptions.GET("/:id/dates/:type/calculated", subscriptionHandler.CalculateDate)
			subscriptions.POST("/:id/renewal", subscriptionHandler.TriggerRenewal)
			subscriptions.POST("/:id/payments/complete", subscriptionHandler.PaymentComplete)
			subscriptions.POST("/:id/payments/failed", subscriptionHandler.PaymentFailed)
			subscriptions.GET("/:id/notes", subscriptionHandler.ListNotes)
		}
	}

	return router
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("billing_period", func(fl validator.FieldLevel) bool {
			_, err := vo.ParseBillingPeriod(fl.Field().String())
			return err == nil
		})
	}
}
