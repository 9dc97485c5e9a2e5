package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/LeeinUITk17/fwserver/pkg/firewatch"
	"github.com/LeeinUITk17/fwserver/pkg/ws"
)

type RestfulServer struct {
	Server           *gin.Engine
	Fw               *firewatch.Firewatch
	Hub              *ws.Hub
	RateLimiterStore *firewatch.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(clientID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(clientID)
	}
}

func (rs *RestfulServer) CheckClientLimiter(clientID string) bool {
	limiter := rs.GetLimiter(clientID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	if rs.Hub != nil {
		rs.Server.GET("/ws", func(c *gin.Context) {
			ws.ServeWs(rs.Hub, c.Writer, c.Request)
		})
	}

	alerts := rs.Server.Group("/alerts")
	{
		alerts.GET("", rs.GetAlerts)
		alerts.GET("/stats", rs.GetAlertStats)
		alerts.GET("/:alert_id", rs.GetAlert)
		alerts.POST("", rs.CreateAlert)
		alerts.POST("/:alert_id/status", rs.UpdateAlertStatus)
	}

	zones := rs.Server.Group("/zones")
	{
		zones.POST("", rs.CreateZone)
		zones.GET("", rs.GetZones)
		zones.GET("/:zone_id", rs.GetZone)
	}

	sensors := rs.Server.Group("/sensors")
	{
		sensors.POST("", rs.CreateSensor)
		sensors.GET("/:sensor_id/logs", rs.GetSensorLogs)
	}

	cameras := rs.Server.Group("/cameras")
	{
		cameras.POST("", rs.CreateCamera)
		cameras.GET("", rs.GetCameras)
	}

	users := rs.Server.Group("/users")
	{
		users.POST("", rs.CreateUser)
		users.GET("", rs.GetUsers)
	}
}
