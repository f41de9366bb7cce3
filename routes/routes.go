package routes

import (
	"safehub/controllers"
	"safehub/middlewares"

	"github.com/gin-gonic/gin"
)

// Deps carries the constructed controllers the router needs.
type Deps struct {
	Timers    *controllers.TimerController
	Guardians *controllers.GuardianController
	Emergency *controllers.EmergencyController
	Alerts    *controllers.AlertController
	Realtime  *controllers.RealtimeController
	Devices   *controllers.DeviceController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Protected user routes
	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)
		user.POST("/notifications/toggle", controllers.ToggleNotifications)
		user.POST("/devices", d.Devices.Register)
	}

	// Safety engine
	safety := r.Group("/safety")
	safety.Use(middlewares.AuthMiddleware())
	{
		safety.POST("/timer", d.Timers.Start)
		safety.GET("/timer/active", d.Timers.Active)
		safety.GET("/timer/history", d.Timers.History)
		safety.POST("/timer/:id/stop", d.Timers.Stop)
		safety.POST("/timer/:id/cancel", d.Timers.Cancel)
		safety.PATCH("/timer/:id/location", d.Timers.UpdateLocation)

		safety.POST("/emergency", d.Emergency.Trigger)
		safety.GET("/emergency/pending", d.Emergency.Pending)
		safety.POST("/connectivity", d.Emergency.ReportConnectivity)
	}

	// Guardians
	guardians := r.Group("/guardians")
	guardians.Use(middlewares.AuthMiddleware())
	{
		guardians.POST("", d.Guardians.Add)
		guardians.GET("", d.Guardians.List)
		guardians.DELETE("/:id", d.Guardians.Delete)
	}

	// Campus-wide safety alerts
	alerts := r.Group("/alerts")
	alerts.Use(middlewares.AuthMiddleware())
	{
		alerts.GET("", d.Alerts.List)
		alerts.POST("", d.Alerts.Create)
		alerts.PUT("/:id", d.Alerts.Update)
		alerts.POST("/:id/deactivate", d.Alerts.Deactivate)
	}

	// Realtime alert stream
	ws := r.Group("/realtime")
	ws.Use(middlewares.AuthMiddleware())
	{
		ws.GET("/alerts", d.Realtime.AlertsWS)
	}

	return r
}
