package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"homedash/internal/model"
)

// Store defines the interface for all database operations.
// Each method issues a single statement unless documented otherwise.
type Store interface {
	ListDevices(ctx context.Context) ([]model.Device, error)
	GetDevice(ctx context.Context, id int64) (model.Device, error)
	InsertDevice(ctx context.Context, name, typ string) (model.Device, error)
	GetDeviceStatus(ctx context.Context, id int64) (string, error)
	SetDeviceStatus(ctx context.Context, id int64, status string) error
	SetDeviceHealth(ctx context.Context, id int64, health string) error
	ToggleDevice(ctx context.Context, id int64) (string, error)
	CountDevices(ctx context.Context, status string) (int64, error)

	ListUsers(ctx context.Context) ([]model.User, error)
	SetUserRole(ctx context.Context, id int64, role string) error

	ListSchedules(ctx context.Context) ([]ScheduleView, error)
	InsertSchedule(ctx context.Context, deviceID int64, action, scheduleTime string) (model.Schedule, error)

	ListAlerts(ctx context.Context) ([]model.Alert, error)
	GetAlert(ctx context.Context, id int64) (model.Alert, error)
	InsertAlert(ctx context.Context, message string) (model.Alert, error)
	AcknowledgeAlert(ctx context.Context, id int64) error
	CountUnreadAlerts(ctx context.Context) (int64, error)

	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)

	Ping(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- devices ---

func (s *gormStore) ListDevices(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if err := s.db.WithContext(ctx).Order("id").Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

func (s *gormStore) GetDevice(ctx context.Context, id int64) (model.Device, error) {
	var device model.Device
	if err := s.db.WithContext(ctx).Take(&device, id).Error; err != nil {
		return model.Device{}, fmt.Errorf("failed to get device %d: %w", id, notFound(err))
	}
	return device, nil
}

func (s *gormStore) InsertDevice(ctx context.Context, name, typ string) (model.Device, error) {
	device := model.Device{
		Name:   name,
		Type:   typ,
		Status: model.StatusOff,
		Health: model.HealthUnknown,
	}
	if err := s.db.WithContext(ctx).Create(&device).Error; err != nil {
		return model.Device{}, fmt.Errorf("failed to insert device %q: %w", name, err)
	}
	return device, nil
}

func (s *gormStore) GetDeviceStatus(ctx context.Context, id int64) (string, error) {
	var device model.Device
	err := s.db.WithContext(ctx).
		Select("status").
		Where("id = ?", id).
		Take(&device).Error
	if err != nil {
		return "", fmt.Errorf("failed to read status of device %d: %w", id, notFound(err))
	}
	return device.Status, nil
}

func (s *gormStore) SetDeviceStatus(ctx context.Context, id int64, status string) error {
	err := s.db.WithContext(ctx).
		Model(&model.Device{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to set status of device %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) SetDeviceHealth(ctx context.Context, id int64, health string) error {
	err := s.db.WithContext(ctx).
		Model(&model.Device{}).
		Where("id = ?", id).
		Update("health", health).Error
	if err != nil {
		return fmt.Errorf("failed to set health of device %d: %w", id, err)
	}
	return nil
}

// ToggleDevice flips the power state between on and off and returns the new
// state. The read takes a row lock (SELECT ... FOR UPDATE; sqlite serializes
// writers instead) and shares a transaction with the write, so concurrent
// toggles of the same device cannot lose an update.
func (s *gormStore) ToggleDevice(ctx context.Context, id int64) (string, error) {
	var next string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := &gormStore{db: tx}
		var device model.Device
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("status").
			Where("id = ?", id).
			Take(&device).Error
		if err != nil {
			return fmt.Errorf("failed to read status of device %d: %w", id, notFound(err))
		}
		current := device.Status
		next = model.StatusOn
		if current == model.StatusOn {
			next = model.StatusOff
		}
		return txStore.SetDeviceStatus(ctx, id, next)
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

// CountDevices counts devices in the given power state, or all devices when status is empty.
func (s *gormStore) CountDevices(ctx context.Context, status string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Device{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return count, nil
}

// --- users ---

func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *gormStore) SetUserRole(ctx context.Context, id int64, role string) error {
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("role", role).Error
	if err != nil {
		return fmt.Errorf("failed to set role of user %d: %w", id, err)
	}
	return nil
}

// --- schedules ---

// ListSchedules returns schedules joined with their device name. Schedules
// whose device does not exist are left out by the inner join.
func (s *gormStore) ListSchedules(ctx context.Context) ([]ScheduleView, error) {
	var rows []ScheduleView
	err := s.db.WithContext(ctx).
		Table("schedules").
		Select("schedules.id, schedules.device_id, devices.name AS device_name, schedules.action, schedules.schedule_time").
		Joins("JOIN devices ON schedules.device_id = devices.id").
		Order("schedules.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return rows, nil
}

func (s *gormStore) InsertSchedule(ctx context.Context, deviceID int64, action, scheduleTime string) (model.Schedule, error) {
	schedule := model.Schedule{
		DeviceID:     deviceID,
		Action:       action,
		ScheduleTime: scheduleTime,
	}
	if err := s.db.WithContext(ctx).Create(&schedule).Error; err != nil {
		return model.Schedule{}, fmt.Errorf("failed to insert schedule for device %d: %w", deviceID, err)
	}
	return schedule, nil
}

// --- alerts ---

func (s *gormStore) ListAlerts(ctx context.Context) ([]model.Alert, error) {
	var alerts []model.Alert
	if err := s.db.WithContext(ctx).Order("id").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (s *gormStore) GetAlert(ctx context.Context, id int64) (model.Alert, error) {
	var alert model.Alert
	if err := s.db.WithContext(ctx).Take(&alert, id).Error; err != nil {
		return model.Alert{}, fmt.Errorf("failed to get alert %d: %w", id, notFound(err))
	}
	return alert, nil
}

func (s *gormStore) InsertAlert(ctx context.Context, message string) (model.Alert, error) {
	alert := model.Alert{Message: message, Status: model.AlertUnread}
	if err := s.db.WithContext(ctx).Create(&alert).Error; err != nil {
		return model.Alert{}, fmt.Errorf("failed to insert alert: %w", err)
	}
	return alert, nil
}

// AcknowledgeAlert marks the alert read. Already-read or missing alerts are left as they are.
func (s *gormStore) AcknowledgeAlert(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("id = ?", id).
		Update("status", model.AlertRead).Error
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) CountUnreadAlerts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("status = ?", model.AlertUnread).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}
	return count, nil
}

// --- push subscriptions ---

func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Take(&sub).Error; err != nil {
		return model.PushSubscription{}, fmt.Errorf("failed to get subscription: %w", notFound(err))
	}
	return sub, nil
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// Ping checks that the database connection is alive.
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
