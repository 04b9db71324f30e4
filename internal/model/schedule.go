package model

// Schedule is an inert record of a planned device action.
// DeviceID is not a foreign key and ScheduleTime is stored as entered.
type Schedule struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	DeviceID     int64  `gorm:"index" json:"device_id"`
	Action       string `json:"action"`
	ScheduleTime string `json:"schedule_time"`
}
