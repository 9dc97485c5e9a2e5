package firewatch

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/models"
)

var (
	ErrAlertNotFound     = errors.New("alert not found")
	ErrInvalidTransition = errors.New("alert is not pending")
	ErrInvalidOrigin     = errors.New("alert origin does not match its source reference")
)

// createIfAbsent inserts a PENDING alert for the given source, or returns the
// source's existing PENDING alert. The decision is made by the storage layer:
// the insert trips the partial unique index on (source_id, status=PENDING)
// when an open alert already exists, so concurrent passes and multiple
// scheduler instances cannot double-create.
func (f *Firewatch) createIfAbsent(input *models.Alert) (*models.Alert, bool, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryAlert),
	)

	if err := checkOriginCoupling(input); err != nil {
		return nil, false, err
	}

	alert := models.Alert{
		ID:       input.ID,
		Message:  input.Message,
		Status:   models.AlertStatusPending,
		Origin:   input.Origin,
		ImageURL: input.ImageURL,
		SensorID: input.SensorID,
		CameraID: input.CameraID,
	}
	if input.SensorID != nil {
		alert.SourceID = input.SensorID
	} else if input.CameraID != nil {
		alert.SourceID = input.CameraID
	}

	err := f.Db.Conn.Create(&alert).Error
	if err == nil {
		logger.Info("Alert created", zap.Reflect("alert", alert))
		return &alert, true, nil
	}

	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, fmt.Errorf("create alert: %w", err)
	}

	// a duplicated key without a source means some other unique constraint
	// fired, such as a caller-supplied ID; there is no pending row to re-read
	if alert.SourceID == nil {
		return nil, false, fmt.Errorf("create alert: %w", err)
	}

	var existing models.Alert
	findErr := f.Db.Conn.
		Where("source_id = ? AND status = ?", *alert.SourceID, models.AlertStatusPending).
		First(&existing).Error
	if findErr != nil {
		// the pending alert was resolved between the insert and the re-read;
		// the next scheduled cycle is the retry mechanism
		return nil, false, fmt.Errorf("create alert: %w", err)
	}

	logger.Info("Skipping alert creation, pending alert exists",
		zap.String("source_id", *alert.SourceID),
		zap.String("existing_alert_id", existing.ID))
	return &existing, false, nil
}

func checkOriginCoupling(input *models.Alert) error {
	switch input.Origin {
	case models.AlertOriginSensorThreshold:
		if input.SensorID == nil {
			return ErrInvalidOrigin
		}
	case models.AlertOriginMLDetection:
		if input.CameraID == nil {
			return ErrInvalidOrigin
		}
	case models.AlertOriginManual:
		// may reference neither
	default:
		return fmt.Errorf("unknown alert origin %q", input.Origin)
	}
	return nil
}

// resolve moves a PENDING alert to RESOLVED or IGNORED. Terminal states never
// revert: the UPDATE only matches PENDING rows, so a lost race surfaces as
// ErrInvalidTransition instead of overwriting the winner.
func (f *Firewatch) resolve(alertID string, newStatus models.AlertStatus, actingUserID string) (*models.Alert, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryAlert),
	)

	if newStatus != models.AlertStatusResolved && newStatus != models.AlertStatusIgnored {
		return nil, fmt.Errorf("%w: cannot transition to %q", ErrInvalidTransition, newStatus)
	}
	if actingUserID == "" {
		return nil, errors.New("acting user is required to resolve an alert")
	}

	res := f.Db.Conn.Model(&models.Alert{}).
		Where("id = ? AND status = ?", alertID, models.AlertStatusPending).
		Updates(map[string]any{"status": newStatus, "user_id": actingUserID})
	if res.Error != nil {
		return nil, fmt.Errorf("update alert status: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var existing models.Alert
		err := f.Db.Conn.First(&existing, "id = ?", alertID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load alert: %w", err)
		}
		return nil, fmt.Errorf("%w: alert %s is %s", ErrInvalidTransition, alertID, existing.Status)
	}

	var updated models.Alert
	if err := f.Db.Conn.First(&updated, "id = ?", alertID).Error; err != nil {
		return nil, fmt.Errorf("load alert: %w", err)
	}

	logger.Info("Alert status updated",
		zap.String("alert_id", alertID),
		zap.String("status", string(newStatus)),
		zap.String("user_id", actingUserID))
	return &updated, nil
}

func (f *Firewatch) getAlerts(query models.AlertQuery) ([]models.Alert, int64, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	tx := f.Db.Conn.Model(&models.Alert{})
	if query.Status != nil {
		tx = tx.Where("status = ?", *query.Status)
	}
	if query.StartDate != nil {
		tx = tx.Where("created_at >= ?", *query.StartDate)
	}
	if query.EndDate != nil {
		tx = tx.Where("created_at < ?", query.EndDate.AddDate(0, 0, 1))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []models.Alert
	err := tx.
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&alerts).Error
	return alerts, total, err
}

func (f *Firewatch) getAlert(alertID string) (*models.Alert, error) {
	var alert models.Alert
	err := f.Db.Conn.First(&alert, "id = ?", alertID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (f *Firewatch) pendingCount() (int64, error) {
	var count int64
	err := f.Db.Conn.Model(&models.Alert{}).
		Where("status = ?", models.AlertStatusPending).
		Count(&count).Error
	return count, err
}

type IAlertImpl struct {
	fw *Firewatch
}

func (ia *IAlertImpl) CreateIfAbsent(input *models.Alert) (*models.Alert, bool, error) {
	return ia.fw.createIfAbsent(input)
}

func (ia *IAlertImpl) Resolve(alertID string, newStatus models.AlertStatus, actingUserID string) (*models.Alert, error) {
	return ia.fw.resolve(alertID, newStatus, actingUserID)
}

func (ia *IAlertImpl) GetAlerts(query models.AlertQuery) ([]models.Alert, int64, error) {
	return ia.fw.getAlerts(query)
}

func (ia *IAlertImpl) GetAlert(alertID string) (*models.Alert, error) {
	return ia.fw.getAlert(alertID)
}

func (ia *IAlertImpl) PendingCount() (int64, error) {
	return ia.fw.pendingCount()
}

func (f *Firewatch) GetIAlert() IAlert {
	return &IAlertImpl{fw: f}
}
