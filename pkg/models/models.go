package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SensorType string

const (
	SensorTypeTemperature SensorType = "TEMPERATURE"
	SensorTypeHumidity    SensorType = "HUMIDITY"
	SensorTypeTempHumid   SensorType = "TEMP_HUMID"
)

type SensorStatus string

const (
	SensorStatusActive      SensorStatus = "ACTIVE"
	SensorStatusInactive    SensorStatus = "INACTIVE"
	SensorStatusError       SensorStatus = "ERROR"
	SensorStatusMaintenance SensorStatus = "MAINTENANCE"
)

type CameraStatus string

const (
	CameraStatusOnline      CameraStatus = "ONLINE"
	CameraStatusOffline     CameraStatus = "OFFLINE"
	CameraStatusError       CameraStatus = "ERROR"
	CameraStatusMaintenance CameraStatus = "MAINTENANCE"
)

type AlertStatus string

const (
	AlertStatusPending  AlertStatus = "PENDING"
	AlertStatusResolved AlertStatus = "RESOLVED"
	AlertStatusIgnored  AlertStatus = "IGNORED"
)

type AlertOrigin string

const (
	AlertOriginSensorThreshold AlertOrigin = "SENSOR_THRESHOLD"
	AlertOriginMLDetection     AlertOrigin = "ML_DETECTION"
	AlertOriginManual          AlertOrigin = "MANUAL"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleUser       Role = "USER"
)

type Zone struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Latitude  *float64
	Longitude *float64
	City      *string
	CreatedAt time.Time

	Sensors []Sensor `gorm:"foreignKey:ZoneID"`
	Cameras []Camera `gorm:"foreignKey:ZoneID"`
}

func (z *Zone) BeforeCreate(tx *gorm.DB) error {
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	return nil
}

// HasLocation reports whether the zone can be resolved to a weather query,
// either by coordinates or by city name.
func (z *Zone) HasLocation() bool {
	return (z.Latitude != nil && z.Longitude != nil) || z.City != nil
}

type Sensor struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Type      SensorType `gorm:"type:varchar(20);check:type IN ('TEMPERATURE','HUMIDITY','TEMP_HUMID')"`
	Location  string
	Threshold *float64
	Status    SensorStatus `gorm:"type:varchar(20);index"`
	ZoneID    string       `gorm:"index"`
	CreatedAt time.Time

	Logs []SensorLog `gorm:"foreignKey:SensorID"`
}

func (s *Sensor) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SensorLog rows are append-only; they are created by the simulation pass and
// never updated afterwards.
type SensorLog struct {
	ID          string `gorm:"primaryKey"`
	SensorID    string `gorm:"index"`
	Temperature *float64
	Humidity    *float64
	CreatedAt   time.Time
}

func (l *SensorLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type Camera struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	URL         string
	Status      CameraStatus `gorm:"type:varchar(20);index"`
	IsDetecting bool
	ZoneID      string `gorm:"index"`
	CreatedAt   time.Time
}

func (c *Camera) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Email     string `gorm:"uniqueIndex"`
	Role      Role   `gorm:"type:varchar(20);check:role IN ('ADMIN','SUPERVISOR','USER')"`
	IsActive  bool
	CreatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Alert carries the hazard source in SourceID, a copy of either SensorID or
// CameraID. The partial unique index on it is what makes CreateIfAbsent
// atomic: sqlite rejects a second PENDING row for the same source, no matter
// which process inserts it.
type Alert struct {
	ID        string `gorm:"primaryKey"`
	Message   string
	Status    AlertStatus `gorm:"type:varchar(20);default:'PENDING'"`
	Origin    AlertOrigin `gorm:"type:varchar(30)"`
	ImageURL  *string
	SensorID  *string `gorm:"index"`
	CameraID  *string `gorm:"index"`
	SourceID  *string `gorm:"index:idx_alerts_pending_source,unique,where:status = 'PENDING'"`
	UserID    *string
	CreatedAt time.Time
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// WeatherConditions is the current outdoor reading for a zone location.
type WeatherConditions struct {
	TempC       float64
	HumidityPct float64
}

// Prediction is the inference service's verdict for one frame.
type Prediction struct {
	Label      string
	Confidence float64
}

const PredictionLabelFire = "FIRE"

// AlertQuery filters and pages an alert listing.
type AlertQuery struct {
	Status    *AlertStatus
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// AlertEvent is the realtime push payload emitted as "new_alert".
type AlertEvent struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	SensorName string    `json:"sensorName,omitempty"`
	CameraName string    `json:"cameraName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
