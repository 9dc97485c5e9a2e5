package firewatch

import (
	"context"
	"math/rand"
	"time"

	"github.com/LeeinUITk17/fwserver/pkg/db"
	"github.com/LeeinUITk17/fwserver/pkg/models"
)

// WeatherClient returns current outdoor conditions for a location query,
// either "lat,lon" or a free-text place name.
type WeatherClient interface {
	GetCurrent(ctx context.Context, query string) (*models.WeatherConditions, error)
}

// ImageCapture grabs one still frame from a camera stream.
type ImageCapture interface {
	Capture(ctx context.Context, streamURL string) ([]byte, error)
}

// InferenceClient scores a base64-encoded frame for fire.
type InferenceClient interface {
	Predict(ctx context.Context, imageBase64 string) (*models.Prediction, error)
}

// BlobStore persists an image and returns a retrievable URL.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, publicID string, folder string) (string, error)
}

// Mailer delivers one alert mail to one recipient. A delivery that outlives
// ctx must return ctx's error instead of blocking the caller.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, message string, imageURL *string) error
}

// Broadcaster pushes a named event to all realtime subscribers. Emits are
// best-effort and must never block the caller.
type Broadcaster interface {
	Emit(event string, payload any)
}

type IAlert interface {
	CreateIfAbsent(input *models.Alert) (*models.Alert, bool, error)
	Resolve(alertID string, newStatus models.AlertStatus, actingUserID string) (*models.Alert, error)
	GetAlerts(query models.AlertQuery) ([]models.Alert, int64, error)
	GetAlert(alertID string) (*models.Alert, error)
	PendingCount() (int64, error)
}

type ISimulation interface {
	RunPass(ctx context.Context)
}

type IDetection interface {
	RunPass(ctx context.Context)
}

type INotify interface {
	Dispatch(ctx context.Context, alert *models.Alert)
}

type IRegistry interface {
	CreateZone(zone *models.Zone) error
	ListZones() ([]models.Zone, error)
	GetZone(zoneID string) (*models.Zone, error)
	CreateSensor(sensor *models.Sensor) error
	ListSensorLogs(sensorID string, limit int) ([]models.SensorLog, error)
	CreateCamera(camera *models.Camera) error
	ListCameras() ([]models.Camera, error)
	CreateUser(user *models.User) error
	ListUsers() ([]models.User, error)
}

type Firewatch struct {
	Db  db.DB
	Cfg *Config
	Rng *rand.Rand

	Weather   WeatherClient
	Capture   ImageCapture
	Inference InferenceClient
	Blob      BlobStore
	Mailer    Mailer
	Broadcast Broadcaster

	Alert      IAlert
	Simulation ISimulation
	Detection  IDetection
	Notify     INotify
	Registry   IRegistry
}

type ServiceOpts struct {
	Alert      IAlert
	Simulation ISimulation
	Detection  IDetection
	Notify     INotify
	Registry   IRegistry
}

func (f *Firewatch) WithServices(opts ServiceOpts) *Firewatch {
	if opts.Alert != nil {
		f.Alert = opts.Alert
	}
	if opts.Simulation != nil {
		f.Simulation = opts.Simulation
	}
	if opts.Detection != nil {
		f.Detection = opts.Detection
	}
	if opts.Notify != nil {
		f.Notify = opts.Notify
	}
	if opts.Registry != nil {
		f.Registry = opts.Registry
	}
	return f
}

func (f *Firewatch) rng() *rand.Rand {
	if f.Rng == nil {
		f.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return f.Rng
}
