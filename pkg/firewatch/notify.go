package firewatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/models"
)

const newAlertEvent = "new_alert"

const mailFanoutConcurrency = 4

// dispatch delivers a freshly created alert to the realtime channel and to
// all eligible mail recipients. Delivery is strictly best-effort: every
// failure is logged per recipient and nothing propagates back to the pipeline
// that created the alert.
func (f *Firewatch) dispatch(ctx context.Context, alert *models.Alert) {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryNotify),
		zap.String("alert_id", alert.ID),
	)

	sourceName := f.broadcastAlert(alert, logger)

	recipients, err := f.recipientsFor(alert.Origin)
	if err != nil {
		logger.Error("Failed to resolve notification recipients", zap.Error(err))
		return
	}
	if len(recipients) == 0 {
		logger.Warn("No active users found to notify")
		return
	}
	if f.Mailer == nil {
		logger.Warn("Mailer is not configured, skipping mail delivery")
		return
	}

	subject := fmt.Sprintf("🔥 URGENT FIRE ALERT: %s", sourceName)
	logger.Info("Notifying users via email", zap.Int("recipients", len(recipients)))

	// The group waits for every delivery to settle; tasks swallow their own
	// errors so one dead mailbox cannot starve the rest, and each delivery
	// is bounded by the call timeout so a hung SMTP socket cannot wedge the
	// pass that triggered it.
	g := new(errgroup.Group)
	g.SetLimit(mailFanoutConcurrency)
	for _, recipient := range recipients {
		recipient := recipient
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, f.Cfg.CallTimeout)
			defer cancel()
			if err := f.Mailer.Send(sendCtx, recipient.Email, subject, alert.Message, alert.ImageURL); err != nil {
				logger.Error("Failed to send alert email",
					zap.String("to", recipient.Email), zap.Error(err))
				return nil
			}
			logger.Info("Alert email sent", zap.String("to", recipient.Email))
			return nil
		})
	}
	_ = g.Wait()
}

// broadcastAlert emits the compact realtime event and returns the display
// name of the hazard source for use in mail subjects.
func (f *Firewatch) broadcastAlert(alert *models.Alert, logger *zap.Logger) string {
	event := models.AlertEvent{
		ID:        alert.ID,
		Message:   alert.Message,
		CreatedAt: alert.CreatedAt,
	}

	sourceName := "Unknown Source"
	if alert.SensorID != nil {
		var sensor models.Sensor
		if err := f.Db.Conn.First(&sensor, "id = ?", *alert.SensorID).Error; err == nil {
			sourceName = sensor.Name
		}
		event.SensorName = sourceName
	} else if alert.CameraID != nil {
		var camera models.Camera
		if err := f.Db.Conn.First(&camera, "id = ?", *alert.CameraID).Error; err == nil {
			sourceName = camera.Name
		}
		event.CameraName = sourceName
	}

	if f.Broadcast != nil {
		f.Broadcast.Emit(newAlertEvent, event)
		logger.Info("Emitted new_alert event")
	}

	return sourceName
}

// recipientsFor resolves the notifiable users: administrators for sensor
// alerts, administrators and supervisors for ML detections.
func (f *Firewatch) recipientsFor(origin models.AlertOrigin) ([]models.User, error) {
	roles := []models.Role{models.RoleAdmin}
	if origin == models.AlertOriginMLDetection {
		roles = append(roles, models.RoleSupervisor)
	}

	var users []models.User
	err := f.Db.Conn.
		Where("role IN ? AND is_active = ?", roles, true).
		Find(&users).Error
	return users, err
}

type INotifyImpl struct {
	fw *Firewatch
}

func (in *INotifyImpl) Dispatch(ctx context.Context, alert *models.Alert) {
	in.fw.dispatch(ctx, alert)
}

func (f *Firewatch) GetINotify() INotify {
	return &INotifyImpl{fw: f}
}
