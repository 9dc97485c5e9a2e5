package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/firewatch"
	"github.com/LeeinUITk17/fwserver/pkg/models"
)

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type AlertResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Origin    string    `json:"origin"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	SensorID  *string   `json:"sensorId,omitempty"`
	CameraID  *string   `json:"cameraId,omitempty"`
	UserID    *string   `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAlertResponse(alert models.Alert) AlertResponse {
	return AlertResponse{
		ID:        alert.ID,
		Message:   alert.Message,
		Status:    string(alert.Status),
		Origin:    string(alert.Origin),
		ImageURL:  alert.ImageURL,
		SensorID:  alert.SensorID,
		CameraID:  alert.CameraID,
		UserID:    alert.UserID,
		CreatedAt: alert.CreatedAt,
	}
}

func (rs *RestfulServer) GetAlerts(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var query models.AlertQuery
	if raw := c.Query("status"); raw != "" {
		status := models.AlertStatus(raw)
		query.Status = &status
	}
	if raw := c.Query("page"); raw != "" {
		query.Page, _ = strconv.Atoi(raw)
	}
	if raw := c.Query("limit"); raw != "" {
		query.Limit, _ = strconv.Atoi(raw)
	}
	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
			return
		}
		query.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
			return
		}
		query.EndDate = &t
	}

	alerts, total, err := rs.Fw.Alert.GetAlerts(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  common.Mapper(alerts, toAlertResponse),
		"total": total,
	})
}

func (rs *RestfulServer) GetAlertStats(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	pending, err := rs.Fw.Alert.PendingCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func (rs *RestfulServer) GetAlert(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	alert, err := rs.Fw.Alert.GetAlert(c.Param("alert_id"))
	if errors.Is(err, firewatch.ErrAlertNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toAlertResponse(*alert))
}

type CreateAlertRequest struct {
	Message  string  `json:"message"`
	SensorID *string `json:"sensorId"`
	CameraID *string `json:"cameraId"`
	ImageURL *string `json:"imageUrl"`
}

var createAlertRequestSchema = z.Struct(z.Shape{
	"Message":  z.String().Min(1).Required(),
	"SensorID": z.Ptr(z.String()),
	"CameraID": z.Ptr(z.String()),
	"ImageURL": z.Ptr(z.String()),
})

// CreateAlert is the manual-origin entry point; threshold and detection
// alerts are created by the pipelines, not through this endpoint.
func (rs *RestfulServer) CreateAlert(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req CreateAlertRequest
	if err := createAlertRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	alert, created, err := rs.Fw.Alert.CreateIfAbsent(&models.Alert{
		Message:  req.Message,
		Origin:   models.AlertOriginManual,
		SensorID: req.SensorID,
		CameraID: req.CameraID,
		ImageURL: req.ImageURL,
	})
	if errors.Is(err, firewatch.ErrInvalidOrigin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, toAlertResponse(*alert))
}

type UpdateAlertStatusRequest struct {
	Status string `json:"status"`
	UserID string `json:"userId"`
}

var updateAlertStatusRequestSchema = z.Struct(z.Shape{
	"Status": z.String().OneOf([]string{
		string(models.AlertStatusResolved),
		string(models.AlertStatusIgnored),
	}).Required(),
	"UserID": z.String().Min(1).Required(),
})

func (rs *RestfulServer) UpdateAlertStatus(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req UpdateAlertStatusRequest
	if err := updateAlertStatusRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	alert, err := rs.Fw.Alert.Resolve(c.Param("alert_id"), models.AlertStatus(req.Status), req.UserID)
	if errors.Is(err, firewatch.ErrAlertNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, firewatch.ErrInvalidTransition) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toAlertResponse(*alert))
}

type ZoneRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      *string  `json:"city"`
}

var zoneRequestSchema = z.Struct(z.Shape{
	"Name":      z.String().Min(1).Required(),
	"Latitude":  z.Ptr(z.Float64()),
	"Longitude": z.Ptr(z.Float64()),
	"City":      z.Ptr(z.String()),
})

func (rs *RestfulServer) CreateZone(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req ZoneRequest
	if err := zoneRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	zone := models.Zone{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		City:      req.City,
	}
	if err := rs.Fw.Registry.CreateZone(&zone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, zone)
}

func (rs *RestfulServer) GetZones(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	zones, err := rs.Fw.Registry.ListZones()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, zones)
}

func (rs *RestfulServer) GetZone(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	zone, err := rs.Fw.Registry.GetZone(c.Param("zone_id"))
	if errors.Is(err, firewatch.ErrZoneNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, zone)
}

type SensorRequest struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Location  string   `json:"location"`
	Threshold *float64 `json:"threshold"`
	ZoneID    string   `json:"zoneId"`
}

var sensorRequestSchema = z.Struct(z.Shape{
	"Name": z.String().Min(1).Required(),
	"Type": z.String().OneOf([]string{
		string(models.SensorTypeTemperature),
		string(models.SensorTypeHumidity),
		string(models.SensorTypeTempHumid),
	}).Required(),
	"Location":  z.String(),
	"Threshold": z.Ptr(z.Float64()),
	"ZoneID":    z.String().Min(1).Required(),
})

func (rs *RestfulServer) CreateSensor(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req SensorRequest
	if err := sensorRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	sensor := models.Sensor{
		Name:      req.Name,
		Type:      models.SensorType(req.Type),
		Location:  req.Location,
		Threshold: req.Threshold,
		ZoneID:    req.ZoneID,
	}
	if err := rs.Fw.Registry.CreateSensor(&sensor); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sensor)
}

func (rs *RestfulServer) GetSensorLogs(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := rs.Fw.Registry.ListSensorLogs(c.Param("sensor_id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}

type CameraRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ZoneID      string `json:"zoneId"`
	IsDetecting bool   `json:"isDetecting"`
}

var cameraRequestSchema = z.Struct(z.Shape{
	"Name":        z.String().Min(1).Required(),
	"URL":         z.String().Min(1).Required(),
	"ZoneID":      z.String().Min(1).Required(),
	"IsDetecting": z.Bool(),
})

func (rs *RestfulServer) CreateCamera(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req CameraRequest
	if err := cameraRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	camera := models.Camera{
		Name:        req.Name,
		URL:         req.URL,
		ZoneID:      req.ZoneID,
		IsDetecting: req.IsDetecting,
	}
	if err := rs.Fw.Registry.CreateCamera(&camera); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, camera)
}

func (rs *RestfulServer) GetCameras(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	cameras, err := rs.Fw.Registry.ListCameras()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cameras)
}

type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

var userRequestSchema = z.Struct(z.Shape{
	"Name":  z.String().Min(1).Required(),
	"Email": z.String().Email().Required(),
	"Role": z.String().OneOf([]string{
		string(models.RoleAdmin),
		string(models.RoleSupervisor),
		string(models.RoleUser),
	}).Required(),
	"IsActive": z.Bool(),
})

func (rs *RestfulServer) CreateUser(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req UserRequest
	if err := userRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     models.Role(req.Role),
		IsActive: req.IsActive,
	}
	if err := rs.Fw.Registry.CreateUser(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (rs *RestfulServer) GetUsers(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	users, err := rs.Fw.Registry.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, users)
}
