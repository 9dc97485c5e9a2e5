package firewatch

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/models"
)

var ErrZoneNotFound = errors.New("zone not found")

// The registry is the thin administrative surface over zones, sensors,
// cameras and users. The pipelines only ever read these entities.

func (f *Firewatch) createZone(zone *models.Zone) error {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryRegistry),
	)

	if err := f.Db.Conn.Create(zone).Error; err != nil {
		return err
	}
	logger.Info("Zone created", zap.String("zone_id", zone.ID))
	return nil
}

func (f *Firewatch) listZones() ([]models.Zone, error) {
	var zones []models.Zone
	err := f.Db.Conn.
		Preload("Sensors").
		Preload("Cameras").
		Order("name asc").
		Find(&zones).Error
	return zones, err
}

func (f *Firewatch) getZone(zoneID string) (*models.Zone, error) {
	var zone models.Zone
	err := f.Db.Conn.
		Preload("Sensors").
		Preload("Cameras").
		First(&zone, "id = ?", zoneID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrZoneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (f *Firewatch) createSensor(sensor *models.Sensor) error {
	if sensor.Status == "" {
		sensor.Status = models.SensorStatusActive
	}
	return f.Db.Conn.Create(sensor).Error
}

func (f *Firewatch) listSensorLogs(sensorID string, limit int) ([]models.SensorLog, error) {
	if limit < 1 {
		limit = 50
	}
	var logs []models.SensorLog
	err := f.Db.Conn.
		Where("sensor_id = ?", sensorID).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (f *Firewatch) createCamera(camera *models.Camera) error {
	if camera.Status == "" {
		camera.Status = models.CameraStatusOnline
	}
	return f.Db.Conn.Create(camera).Error
}

func (f *Firewatch) listCameras() ([]models.Camera, error) {
	var cameras []models.Camera
	err := f.Db.Conn.Order("name asc").Find(&cameras).Error
	return cameras, err
}

func (f *Firewatch) createUser(user *models.User) error {
	return f.Db.Conn.Create(user).Error
}

func (f *Firewatch) listUsers() ([]models.User, error) {
	var users []models.User
	err := f.Db.Conn.Order("name asc").Find(&users).Error
	return users, err
}

type IRegistryImpl struct {
	fw *Firewatch
}

func (ir *IRegistryImpl) CreateZone(zone *models.Zone) error {
	return ir.fw.createZone(zone)
}

func (ir *IRegistryImpl) ListZones() ([]models.Zone, error) {
	return ir.fw.listZones()
}

func (ir *IRegistryImpl) GetZone(zoneID string) (*models.Zone, error) {
	return ir.fw.getZone(zoneID)
}

func (ir *IRegistryImpl) CreateSensor(sensor *models.Sensor) error {
	return ir.fw.createSensor(sensor)
}

func (ir *IRegistryImpl) ListSensorLogs(sensorID string, limit int) ([]models.SensorLog, error) {
	return ir.fw.listSensorLogs(sensorID, limit)
}

func (ir *IRegistryImpl) CreateCamera(camera *models.Camera) error {
	return ir.fw.createCamera(camera)
}

func (ir *IRegistryImpl) ListCameras() ([]models.Camera, error) {
	return ir.fw.listCameras()
}

func (ir *IRegistryImpl) CreateUser(user *models.User) error {
	return ir.fw.createUser(user)
}

func (ir *IRegistryImpl) ListUsers() ([]models.User, error) {
	return ir.fw.listUsers()
}

func (f *Firewatch) GetIRegistry() IRegistry {
	return &IRegistryImpl{fw: f}
}
