package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/cloudmesa/console-backend-go/internal/api/handlers"
	"github.com/cloudmesa/console-backend-go/internal/api/middleware"
	"github.com/cloudmesa/console-backend-go/internal/config"
	"github.com/cloudmesa/console-backend-go/internal/core/alerts"
	"github.com/cloudmesa/console-backend-go/internal/core/autoscaling"
	"github.com/cloudmesa/console-backend-go/internal/core/controls"
	"github.com/cloudmesa/console-backend-go/internal/core/dashboard"
	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/websocket"
)

// NewRouter creates and configures the main HTTP router.
func NewRouter(cfg *config.Config, logger *logrus.Logger, dash *dashboard.Service, controllers map[metrics.Kind]*controls.Controller, alertSvc *alerts.Service, asgSvc *autoscaling.Service, wsHub *websocket.Hub) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(middleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	h := handlers.NewHandlers(cfg, logger, dash, controllers, alertSvc, asgSvc, wsHub)

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", websocket.HandleWebSocketGin(wsHub))

	api := router.Group("/api/v1")
	{
		m := api.Group("/metrics")
		{
			m.GET("/definitions/:kind", h.GetMetricDefinitions)
			m.GET("/:kind", h.GetMetrics)
			m.GET("/:kind/snapshot", h.GetDashboardSnapshot)
		}

		ctrls := api.Group("/controls")
		{
			ctrls.GET("/:kind", h.GetControls)
			ctrls.POST("/:kind/resource", h.SelectResource)
			ctrls.PUT("/:kind/timerange", h.SetTimeRange)
			ctrls.PUT("/:kind/granularity", h.SetGranularity)
			ctrls.POST("/:kind/confirm", h.ConfirmControls)
		}

		al := api.Group("/alerts")
		{
			al.GET("", h.ListAlerts)
			al.POST("", h.CreateAlert)
			al.GET("/notifications", h.GetNotificationSettings)
			al.POST("/notifications/enable", h.EnableEmailNotifications)
			al.GET("/:id", h.GetAlert)
			al.PUT("/:id", h.UpdateAlert)
			al.DELETE("/:id", h.DeleteAlert)
			al.POST("/:id/toggle", h.ToggleAlert)
			al.GET("/:id/history", h.GetAlertHistory)
		}

		asg := api.Group("/autoscaling/groups")
		{
			asg.GET("", h.ListGroups)
			asg.POST("", h.CreateGroup)
			asg.GET("/:id", h.GetGroup)
			asg.PUT("/:id", h.UpdateGroup)
			asg.DELETE("/:id", h.DeleteGroup)
			asg.PUT("/:id/capacity", h.SetGroupCapacity)
			asg.POST("/:id/policy/evaluate", h.EvaluateGroupPolicy)
		}
	}

	return router
}
