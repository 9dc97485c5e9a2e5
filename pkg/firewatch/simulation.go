package firewatch

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/models"
)

const (
	baseIndoorTemp     = 22.0
	baseIndoorHumidity = 45.0
)

// runSimulationPass derives one synthetic reading per ACTIVE sensor from the
// current outdoor conditions of its zone. Every external failure is scoped to
// the entity being processed: a failing weather lookup skips the zone, a
// failing log write skips the sensor, and the pass always runs to the end.
func (f *Firewatch) runSimulationPass(ctx context.Context) {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySimulation),
	)

	if f.Cfg.WeatherAPIKey == "" {
		logger.Warn("Skipping sensor simulation pass, weather API key is not configured")
		return
	}

	var zones []models.Zone
	err := f.Db.Conn.
		Preload("Sensors", "status = ?", models.SensorStatusActive).
		Where("city IS NOT NULL OR (latitude IS NOT NULL AND longitude IS NOT NULL)").
		Find(&zones).Error
	if err != nil {
		logger.Error("Failed to load zones for simulation", zap.Error(err))
		return
	}

	logger.Info("Running sensor simulation pass", zap.Int("zones", len(zones)))

	for _, zone := range zones {
		if len(zone.Sensors) == 0 {
			continue
		}
		f.simulateZone(ctx, &zone)
	}

	logger.Info("Sensor simulation pass finished")
}

func (f *Firewatch) simulateZone(ctx context.Context, zone *models.Zone) {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySimulation),
		zap.String("zone_id", zone.ID),
	)

	var query string
	switch {
	case zone.Latitude != nil && zone.Longitude != nil:
		query = fmt.Sprintf("%v,%v", *zone.Latitude, *zone.Longitude)
	case zone.City != nil:
		query = *zone.City
	default:
		logger.Warn("Zone has no resolvable location, skipping")
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, f.Cfg.CallTimeout)
	defer cancel()

	conditions, err := f.Weather.GetCurrent(callCtx, query)
	if err != nil {
		logger.Error("Failed to fetch weather for zone",
			zap.String("query", query), zap.Error(err))
		return
	}

	logger.Debug("Weather fetched for zone",
		zap.Float64("temp_c", conditions.TempC),
		zap.Float64("humidity_pct", conditions.HumidityPct))

	for _, sensor := range zone.Sensors {
		temperature, humidity := f.deriveReading(&sensor, conditions)
		if temperature == nil && humidity == nil {
			continue
		}

		log := models.SensorLog{
			SensorID:    sensor.ID,
			Temperature: temperature,
			Humidity:    humidity,
		}
		if err := f.Db.Conn.Create(&log).Error; err != nil {
			logger.Error("Failed to create sensor log",
				zap.String("sensor_id", sensor.ID), zap.Error(err))
			continue
		}

		logger.Info("Sensor log created", zap.Reflect("log", log))

		f.checkAndTriggerAlert(ctx, &sensor, &log)
	}
}

// deriveReading simulates an indoor reading influenced by outdoor conditions
// plus bounded noise. A small configured fraction of readings is forced over
// the sensor's threshold to exercise alerting; the rest are held below it.
func (f *Firewatch) deriveReading(sensor *models.Sensor, conditions *models.WeatherConditions) (*float64, *float64) {
	var temperature, humidity *float64
	rng := f.rng()

	switch sensor.Type {
	case models.SensorTypeTemperature, models.SensorTypeTempHumid:
		simTemp := baseIndoorTemp +
			(conditions.TempC-15)*0.1 +
			(rng.Float64()-0.5)*1
		simTemp = round2(simTemp)

		if sensor.Threshold != nil {
			if rng.Float64() < f.Cfg.BreachChance {
				simTemp = round2(*sensor.Threshold + rng.Float64()*2)
			} else if simTemp < *sensor.Threshold {
				simTemp = math.Min(simTemp, *sensor.Threshold-0.5)
			}
		}
		temperature = &simTemp
	}

	switch sensor.Type {
	case models.SensorTypeHumidity, models.SensorTypeTempHumid:
		simHumidity := baseIndoorHumidity +
			(conditions.HumidityPct-50)*0.05 +
			(rng.Float64()-0.5)*2
		simHumidity = math.Max(0, math.Min(100, round2(simHumidity)))
		humidity = &simHumidity
	}

	return temperature, humidity
}

func (f *Firewatch) checkAndTriggerAlert(ctx context.Context, sensor *models.Sensor, log *models.SensorLog) {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySimulation),
	)

	if sensor.Threshold == nil || log.Temperature == nil {
		return
	}
	if *log.Temperature < *sensor.Threshold {
		return
	}

	logger.Warn("Sensor threshold met or exceeded",
		zap.String("sensor_id", sensor.ID),
		zap.Float64("temperature", *log.Temperature),
		zap.Float64("threshold", *sensor.Threshold))

	message := fmt.Sprintf(
		"Temperature %.1f°C exceeded threshold %.1f°C for sensor '%s' at '%s'.",
		*log.Temperature, *sensor.Threshold, sensor.Name, sensor.Location,
	)

	alert, created, err := f.Alert.CreateIfAbsent(&models.Alert{
		Message:  message,
		Origin:   models.AlertOriginSensorThreshold,
		SensorID: &sensor.ID,
	})
	if err != nil {
		logger.Error("Failed to create alert for sensor",
			zap.String("sensor_id", sensor.ID), zap.Error(err))
		return
	}
	if !created {
		return
	}

	f.Notify.Dispatch(ctx, alert)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type ISimulationImpl struct {
	fw *Firewatch
}

func (is *ISimulationImpl) RunPass(ctx context.Context) {
	is.fw.runSimulationPass(ctx)
}

func (f *Firewatch) GetISimulation() ISimulation {
	return &ISimulationImpl{fw: f}
}
