package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(webhookHandler *WebhookHandler, orderHandler *OrderHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/webhooks/:vendor", webhookHandler.HandleWebhook)

	router.POST("/orders", orderHandler.CreateOrder)
	router.GET("/orders/:merchantOrderID", orderHandler.GetOrder)
	router.POST("/orders/:merchantOrderID/reconcile", orderHandler.Reconcile)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
