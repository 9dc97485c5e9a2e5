package firewatch

import (
	"bufio"
	"encoding/json"
	"io"
	"math/rand"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/LeeinUITk17/fwserver/pkg/db"
	"github.com/LeeinUITk17/fwserver/pkg/firewatch/mocks"
)

// MockCollaborators bundles the mocked external-world clients wired into the
// Firewatch instance returned by GetMockFirewatchWithMemorySqliteDialector.
type MockCollaborators struct {
	Weather   *mocks.MockWeatherClient
	Capture   *mocks.MockImageCapture
	Inference *mocks.MockInferenceClient
	Blob      *mocks.MockBlobStore
	Mailer    *mocks.MockMailer
	Broadcast *mocks.MockBroadcaster
}

func GetMockFirewatchWithMemorySqliteDialector(t *testing.T, useMockIAlert, useMockINotify bool) (
	*gomock.Controller,
	*Firewatch,
	*MockCollaborators,
	*mocks.MockIAlert,
	*mocks.MockINotify,
) {
	ctrl := gomock.NewController(t)

	collaborators := &MockCollaborators{
		Weather:   mocks.NewMockWeatherClient(ctrl),
		Capture:   mocks.NewMockImageCapture(ctrl),
		Inference: mocks.NewMockInferenceClient(ctrl),
		Blob:      mocks.NewMockBlobStore(ctrl),
		Mailer:    mocks.NewMockMailer(ctrl),
		Broadcast: mocks.NewMockBroadcaster(ctrl),
	}
	mockIAlert := mocks.NewMockIAlert(ctrl)
	mockINotify := mocks.NewMockINotify(ctrl)

	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations

	fwInstance := &Firewatch{
		Db: *dbInstance,
		Cfg: &Config{
			ScanInterval:       DefaultScanInterval,
			DetectionThreshold: DefaultDetectionThreshold,
			BreachChance:       0, // deterministic readings unless a test opts in
			CallTimeout:        DefaultCallTimeout,
			CaptureTimeout:     DefaultCaptureTimeout,
			WeatherAPIKey:      "test-key",
		},
		Rng:       rand.New(rand.NewSource(1)),
		Weather:   collaborators.Weather,
		Capture:   collaborators.Capture,
		Inference: collaborators.Inference,
		Blob:      collaborators.Blob,
		Mailer:    collaborators.Mailer,
		Broadcast: collaborators.Broadcast,
	}

	alertService := fwInstance.GetIAlert()
	if useMockIAlert {
		alertService = mockIAlert
	}

	notifyService := fwInstance.GetINotify()
	if useMockINotify {
		notifyService = mockINotify
	}

	fwInstance.WithServices(ServiceOpts{
		Alert:      alertService,
		Simulation: fwInstance.GetISimulation(),
		Detection:  fwInstance.GetIDetection(),
		Notify:     notifyService,
		Registry:   fwInstance.GetIRegistry(),
	})

	return ctrl, fwInstance, collaborators, mockIAlert, mockINotify
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
