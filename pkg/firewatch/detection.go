package firewatch

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/models"
)

// runDetectionPass captures and scores one frame per eligible camera. A
// camera is eligible when it is ONLINE and has detection enabled. Capture,
// inference and upload failures are all scoped to the current camera.
func (f *Firewatch) runDetectionPass(ctx context.Context) {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryDetection),
	)

	var cameras []models.Camera
	err := f.Db.Conn.
		Where("status = ? AND is_detecting = ?", models.CameraStatusOnline, true).
		Find(&cameras).Error
	if err != nil {
		logger.Error("Failed to load cameras for detection", zap.Error(err))
		return
	}

	if len(cameras) == 0 {
		logger.Info("No cameras enabled for detection or online")
		return
	}

	logger.Info("Running fire detection pass", zap.Int("cameras", len(cameras)))

	for _, camera := range cameras {
		f.processCamera(ctx, &camera)
	}

	logger.Info("Fire detection pass finished")
}

func (f *Firewatch) processCamera(ctx context.Context, camera *models.Camera) {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryDetection),
		zap.String("camera_id", camera.ID),
	)

	captureCtx, cancel := context.WithTimeout(ctx, f.Cfg.CaptureTimeout)
	frame, err := f.Capture.Capture(captureCtx, camera.URL)
	cancel()
	if err != nil {
		logger.Error("Failed to capture snapshot", zap.Error(err))
		return
	}
	if len(frame) == 0 {
		logger.Warn("No snapshot obtained, skipping detection")
		return
	}

	predictCtx, cancel := context.WithTimeout(ctx, f.Cfg.CallTimeout)
	prediction, err := f.Inference.Predict(predictCtx, base64.StdEncoding.EncodeToString(frame))
	cancel()
	if err != nil {
		logger.Error("Failed to get prediction", zap.Error(err))
		return
	}

	if prediction.Label == models.PredictionLabelFire && prediction.Confidence >= f.Cfg.DetectionThreshold {
		logger.Warn("Fire detected by inference",
			zap.String("camera_name", camera.Name),
			zap.Float64("confidence", prediction.Confidence))
		f.triggerFireAlert(ctx, camera, frame, prediction.Confidence)
		return
	}

	logger.Info("No significant fire detected",
		zap.String("label", prediction.Label),
		zap.Float64("confidence", prediction.Confidence))
}

// triggerFireAlert uploads the frame (best-effort) and creates the alert.
// A failed upload drops the image URL but never the alert.
func (f *Firewatch) triggerFireAlert(ctx context.Context, camera *models.Camera, frame []byte, confidence float64) {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryDetection),
		zap.String("camera_id", camera.ID),
	)

	var zoneName string
	var zone models.Zone
	if err := f.Db.Conn.First(&zone, "id = ?", camera.ZoneID).Error; err == nil {
		zoneName = zone.Name
	}

	var imageURL *string
	if f.Blob != nil {
		publicID := fmt.Sprintf("fire_alert_%s_%d", camera.ID, time.Now().UnixMilli())
		folder := "fire_alerts/unknown_zone"
		if zoneName != "" {
			folder = "fire_alerts/" + zoneName
		}

		uploadCtx, cancel := context.WithTimeout(ctx, f.Cfg.CallTimeout)
		url, err := f.Blob.Upload(uploadCtx, frame, publicID, folder)
		cancel()
		if err != nil {
			logger.Error("Failed to upload snapshot, proceeding without image", zap.Error(err))
		} else {
			imageURL = &url
			logger.Info("Snapshot uploaded", zap.String("image_url", url))
		}
	}

	displayZone := zoneName
	if displayZone == "" {
		displayZone = "N/A"
	}
	message := fmt.Sprintf(
		"FIRE DETECTED by AI at camera '%s' (Zone: %s). Confidence: %.2f",
		camera.Name, displayZone, confidence,
	)

	alert, created, err := f.Alert.CreateIfAbsent(&models.Alert{
		Message:  message,
		Origin:   models.AlertOriginMLDetection,
		CameraID: &camera.ID,
		ImageURL: imageURL,
	})
	if err != nil {
		logger.Error("Failed to create fire alert", zap.Error(err))
		return
	}
	if !created {
		return
	}

	logger.Info("Fire alert created", zap.String("alert_id", alert.ID))
	f.Notify.Dispatch(ctx, alert)
}

type IDetectionImpl struct {
	fw *Firewatch
}

func (id *IDetectionImpl) RunPass(ctx context.Context) {
	id.fw.runDetectionPass(ctx)
}

func (f *Firewatch) GetIDetection() IDetection {
	return &IDetectionImpl{fw: f}
}
