package store

import "errors"

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

// ScheduleView is a schedule row joined with the name of its device.
type ScheduleView struct {
	ID           int64
	DeviceID     int64
	DeviceName   string
	Action       string
	ScheduleTime string
}
