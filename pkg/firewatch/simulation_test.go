package firewatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/models"
	_ "github.com/LeeinUITk17/fwserver/pkg/testing"
)

// The in-memory database is shared across the package's tests, so each pass
// test first deactivates sensors left behind by earlier tests. Zones without
// active sensors are skipped by the pass.
func deactivateAllSensors(t *testing.T, fwObj *Firewatch) {
	err := fwObj.Db.Conn.Model(&models.Sensor{}).
		Where("status = ?", models.SensorStatusActive).
		Update("status", models.SensorStatusInactive).Error
	require.NoError(t, err)
}

func seedZoneWithSensor(t *testing.T, fwObj *Firewatch, city string, sensorType models.SensorType, threshold *float64) (*models.Zone, *models.Sensor) {
	zone := &models.Zone{Name: "zone-" + city, City: &city}
	require.NoError(t, fwObj.Registry.CreateZone(zone))

	sensor := &models.Sensor{
		Name:      "sensor-" + city,
		Type:      sensorType,
		Location:  "roof",
		Threshold: threshold,
		Status:    models.SensorStatusActive,
		ZoneID:    zone.ID,
	}
	require.NoError(t, fwObj.Registry.CreateSensor(sensor))
	return zone, sensor
}

func TestRunSimulationPass(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, fwObj, collab, _, _ := GetMockFirewatchWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	deactivateAllSensors(t, fwObj)

	threshold := 40.0
	_, sensor := seedZoneWithSensor(t, fwObj, "Hanoi", models.SensorTypeTempHumid, &threshold)

	collab.Weather.
		EXPECT().
		GetCurrent(gomock.Any(), gomock.Eq("Hanoi")).
		Return(&models.WeatherConditions{TempC: 32.0, HumidityPct: 70.0}, nil).
		Times(1)

	fwObj.Simulation.RunPass(context.Background())

	logs, err := fwObj.Registry.ListSensorLogs(sensor.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	require.NotNil(t, logs[0].Temperature)
	assert.Less(t, *logs[0].Temperature, threshold)
	require.NotNil(t, logs[0].Humidity)
	assert.GreaterOrEqual(t, *logs[0].Humidity, 0.0)
	assert.LessOrEqual(t, *logs[0].Humidity, 100.0)

	// No breach, so no alert was opened for the sensor
	var count int64
	err = fwObj.Db.Conn.Model(&models.Alert{}).
		Where("sensor_id = ?", sensor.ID).
		Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRunSimulationPass_Breach(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, fwObj, collab, _, mockINotify := GetMockFirewatchWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	deactivateAllSensors(t, fwObj)
	fwObj.Cfg.BreachChance = 1.0 // every reading is forced over the threshold

	threshold := 40.0
	_, sensor := seedZoneWithSensor(t, fwObj, "Saigon", models.SensorTypeTemperature, &threshold)

	collab.Weather.
		EXPECT().
		GetCurrent(gomock.Any(), gomock.Eq("Saigon")).
		Return(&models.WeatherConditions{TempC: 35.0, HumidityPct: 60.0}, nil).
		Times(1)

	mockINotify.
		EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		Times(1)

	fwObj.Simulation.RunPass(context.Background())

	logs, err := fwObj.Registry.ListSensorLogs(sensor.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].Temperature)
	assert.GreaterOrEqual(t, *logs[0].Temperature, threshold)

	var alert models.Alert
	err = fwObj.Db.Conn.First(&alert, "sensor_id = ?", sensor.ID).Error
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusPending, alert.Status)
	assert.Equal(t, models.AlertOriginSensorThreshold, alert.Origin)
	assert.Contains(t, alert.Message, "exceeded threshold")
	assert.Contains(t, alert.Message, sensor.Name)
}

func TestRunSimulationPass_BreachDeduped(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, fwObj, collab, _, mockINotify := GetMockFirewatchWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	deactivateAllSensors(t, fwObj)
	fwObj.Cfg.BreachChance = 1.0

	threshold := 40.0
	_, sensor := seedZoneWithSensor(t, fwObj, "Danang", models.SensorTypeTemperature, &threshold)

	collab.Weather.
		EXPECT().
		GetCurrent(gomock.Any(), gomock.Eq("Danang")).
		Return(&models.WeatherConditions{TempC: 35.0, HumidityPct: 60.0}, nil).
		Times(2)

	// Only the pass that opens the alert notifies; the second breach rides
	// on the still-pending alert.
	mockINotify.
		EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		Times(1)

	fwObj.Simulation.RunPass(context.Background())
	fwObj.Simulation.RunPass(context.Background())

	var count int64
	err := fwObj.Db.Conn.Model(&models.Alert{}).
		Where("sensor_id = ?", sensor.ID).
		Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRunSimulationPass_NoAPIKey(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, fwObj, _, _, _ := GetMockFirewatchWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	deactivateAllSensors(t, fwObj)
	fwObj.Cfg.WeatherAPIKey = ""

	threshold := 40.0
	seedZoneWithSensor(t, fwObj, "Hue", models.SensorTypeTemperature, &threshold)

	// No weather expectations are registered: the pass must bail out before
	// touching the client.
	fwObj.Simulation.RunPass(context.Background())
}

func TestRunSimulationPass_ZoneFailureIsolation(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, fwObj, collab, _, _ := GetMockFirewatchWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	deactivateAllSensors(t, fwObj)

	threshold := 40.0
	_, brokenSensor := seedZoneWithSensor(t, fwObj, "BrokenCity", models.SensorTypeTemperature, &threshold)
	_, healthySensor := seedZoneWithSensor(t, fwObj, "HealthyCity", models.SensorTypeTemperature, &threshold)

	collab.Weather.
		EXPECT().
		GetCurrent(gomock.Any(), gomock.Eq("BrokenCity")).
		Return(nil, assert.AnError).
		Times(1)
	collab.Weather.
		EXPECT().
		GetCurrent(gomock.Any(), gomock.Eq("HealthyCity")).
		Return(&models.WeatherConditions{TempC: 30.0, HumidityPct: 55.0}, nil).
		Times(1)

	fwObj.Simulation.RunPass(context.Background())

	brokenLogs, err := fwObj.Registry.ListSensorLogs(brokenSensor.ID, 10)
	require.NoError(t, err)
	assert.Len(t, brokenLogs, 0)

	healthyLogs, err := fwObj.Registry.ListSensorLogs(healthySensor.ID, 10)
	require.NoError(t, err)
	assert.Len(t, healthyLogs, 1)
}

func TestDeriveReading_HumidityOnly(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, fwObj, _, _, _ := GetMockFirewatchWithMemorySqliteDialector(t, false, true)
	defer ctrl.Finish()

	sensor := &models.Sensor{Type: models.SensorTypeHumidity}
	conditions := &models.WeatherConditions{TempC: 30.0, HumidityPct: 80.0}

	temperature, humidity := fwObj.deriveReading(sensor, conditions)
	assert.Nil(t, temperature)
	require.NotNil(t, humidity)
	assert.GreaterOrEqual(t, *humidity, 0.0)
	assert.LessOrEqual(t, *humidity, 100.0)
}
