package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/LeeinUITk17/fwserver/pkg/firewatch/mocks"
	_ "github.com/LeeinUITk17/fwserver/pkg/testing"

	"github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/db"
	"github.com/LeeinUITk17/fwserver/pkg/firewatch"
	"github.com/LeeinUITk17/fwserver/pkg/models"
)

func setupTestServer() *RestfulServer {
	fwObj := firewatch.Firewatch{
		Db: *db.GetInstance(db.UseMemorySqliteDialector()),
	}
	fwObj.WithServices(firewatch.ServiceOpts{
		Alert:    fwObj.GetIAlert(),
		Registry: fwObj.GetIRegistry(),
	})

	rs := &RestfulServer{
		Server: gin.Default(),
		Fw:     &fwObj,
		// default we use no limiter, if need, later assign it rs.RateLimiterStore = firewatch.NewRateLimiterStore(...)
	}

	rs.Setup()

	return rs
}

func TestHealthCheck(t *testing.T) {
	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateAndResolveAlert(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	userID := uuid.NewString()

	body, _ := json.Marshal(CreateAlertRequest{
		Message: "manual report: burning smell near loading dock",
	})
	req := httptest.NewRequest("POST", "/alerts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var created AlertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, string(models.AlertStatusPending), created.Status)
	assert.Equal(t, string(models.AlertOriginManual), created.Origin)

	// Resolve it
	body, _ = json.Marshal(UpdateAlertStatusRequest{
		Status: string(models.AlertStatusResolved),
		UserID: userID,
	})
	req = httptest.NewRequest("POST", "/alerts/"+created.ID+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resolved AlertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.Equal(t, string(models.AlertStatusResolved), resolved.Status)
	require.NotNil(t, resolved.UserID)
	assert.Equal(t, userID, *resolved.UserID)

	// Resolving a terminal alert conflicts
	req = httptest.NewRequest("POST", "/alerts/"+created.ID+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown alert is 404
	req = httptest.NewRequest("POST", "/alerts/"+uuid.NewString()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAlert_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	{
		rs := setupTestServer()
		// empty payload should be rejected
		payload := []byte("{}")
		req := httptest.NewRequest("POST", "/alerts", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		rs := setupTestServer()
		// PENDING is not an acceptable target status
		body, _ := json.Marshal(UpdateAlertStatusRequest{
			Status: string(models.AlertStatusPending),
			UserID: uuid.NewString(),
		})
		req := httptest.NewRequest("POST", "/alerts/"+uuid.NewString()+"/status", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		rs := setupTestServer()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockIAlert := mocks.NewMockIAlert(ctrl)
		rs.Fw.Alert = mockIAlert
		mockIAlert.EXPECT().
			GetAlerts(gomock.Any()).
			Return(nil, int64(0), fmt.Errorf("just causing error")).
			Times(1)

		req := httptest.NewRequest("GET", "/alerts", nil)
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	}
}

func TestGetAlertsAndStats(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	body, _ := json.Marshal(CreateAlertRequest{Message: "manual report: stats check"})
	req := httptest.NewRequest("POST", "/alerts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest("GET", "/alerts?status=PENDING&page=1&limit=5", nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Data  []AlertResponse `json:"data"`
		Total int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.GreaterOrEqual(t, listing.Total, int64(1))
	for _, alert := range listing.Data {
		assert.Equal(t, string(models.AlertStatusPending), alert.Status)
	}

	// Malformed dates are rejected
	req = httptest.NewRequest("GET", "/alerts?start_date=yesterday", nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest("GET", "/alerts/stats", nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Pending int64 `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.GreaterOrEqual(t, stats.Pending, int64(1))
}

func TestZoneAndSensorEndpoints(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	city := "Hanoi"
	body, _ := json.Marshal(ZoneRequest{Name: "warehouse-zone", City: &city})
	req := httptest.NewRequest("POST", "/zones", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var zone models.Zone
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &zone))
	require.NotEmpty(t, zone.ID)

	req = httptest.NewRequest("GET", "/zones/"+zone.ID, nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/zones/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	threshold := 40.0
	body, _ = json.Marshal(SensorRequest{
		Name:      "dock-sensor",
		Type:      string(models.SensorTypeTemperature),
		Location:  "dock",
		Threshold: &threshold,
		ZoneID:    zone.ID,
	})
	req = httptest.NewRequest("POST", "/sensors", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var sensor models.Sensor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sensor))
	assert.Equal(t, models.SensorStatusActive, sensor.Status)

	req = httptest.NewRequest("GET", "/sensors/"+sensor.ID+"/logs", nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var logs []models.SensorLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Len(t, logs, 0)

	// Unknown sensor type is rejected before it reaches storage
	body, _ = json.Marshal(SensorRequest{
		Name:   "bad-sensor",
		Type:   "PRESSURE",
		ZoneID: zone.ID,
	})
	req = httptest.NewRequest("POST", "/sensors", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	body, _ := json.Marshal(UserRequest{
		Name:     "Op Admin",
		Email:    uuid.NewString() + "@example.test",
		Role:     string(models.RoleAdmin),
		IsActive: true,
	})
	req := httptest.NewRequest("POST", "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	body, _ = json.Marshal(UserRequest{
		Name:  "No Mail",
		Email: "not-an-email",
		Role:  string(models.RoleAdmin),
	})
	req = httptest.NewRequest("POST", "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func setupTestServerWithLimiter(limiter *firewatch.RateLimiterStore) *RestfulServer {
	fwObj := firewatch.Firewatch{
		Db: *db.GetInstance(db.UseMemorySqliteDialector()),
	}
	fwObj.WithServices(firewatch.ServiceOpts{
		Alert:    fwObj.GetIAlert(),
		Registry: fwObj.GetIRegistry(),
	})

	rs := &RestfulServer{
		Server:           gin.Default(),
		Fw:               &fwObj,
		RateLimiterStore: limiter,
	}

	rs.Setup()

	return rs
}

func TestGetAlertsWithLimiter(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServerWithLimiter(firewatch.NewRateLimiterStore(1, 1))

	req := httptest.NewRequest("GET", "/alerts", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Burst consumed, next request from the same client is throttled
	req = httptest.NewRequest("GET", "/alerts", nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
