package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_SQL(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		run              func(s Store) error
		expectedErr      error
	}{
		{
			name: "acknowledge alert is one unconditional update",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "alerts" SET "status"=$1 WHERE id = $2`)).
					WithArgs("read", int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			run: func(s Store) error {
				return s.AcknowledgeAlert(context.Background(), 7)
			},
		},
		{
			name: "set user role",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "role"=$1 WHERE id = $2`)).
					WithArgs("Technician", int64(2)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			run: func(s Store) error {
				return s.SetUserRole(context.Background(), 2, "Technician")
			},
		},
		{
			name: "insert device sets default states",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "devices" ("name","type","status","health") VALUES ($1,$2,$3,$4) RETURNING "id"`)).
					WithArgs("Lamp", "light", "off", "unknown").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectCommit()
			},
			run: func(s Store) error {
				d, err := s.InsertDevice(context.Background(), "Lamp", "light")
				if err == nil && d.ID != 1 {
					return errors.New("id not assigned")
				}
				return err
			},
		},
		{
			name: "toggle locks the row, then writes in the same transaction",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT "status" FROM "devices" WHERE id = \$1 LIMIT \$[0-9]+ FOR UPDATE`).
					WithArgs(int64(3), 1).
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("on"))
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "devices" SET "status"=$1 WHERE id = $2`)).
					WithArgs("off", int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			run: func(s Store) error {
				_, err := s.ToggleDevice(context.Background(), 3)
				return err
			},
		},
		{
			name: "toggle of a missing device rolls back",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT "status" FROM "devices" WHERE id = \$1 LIMIT \$[0-9]+ FOR UPDATE`).
					WithArgs(int64(99), 1).
					WillReturnRows(sqlmock.NewRows([]string{"status"}))
				mock.ExpectRollback()
			},
			run: func(s Store) error {
				_, err := s.ToggleDevice(context.Background(), 99)
				return err
			},
			expectedErr: ErrNotFound,
		},
		{
			name: "schedules use an inner join",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT schedules.id, schedules.device_id, devices.name AS device_name, schedules.action, schedules.schedule_time FROM "schedules" JOIN devices ON schedules.device_id = devices.id`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "device_id", "device_name", "action", "schedule_time"}).
						AddRow(1, 4, "Lamp", "on", "19:00"))
			},
			run: func(s Store) error {
				rows, err := s.ListSchedules(context.Background())
				if err == nil && (len(rows) != 1 || rows[0].DeviceName != "Lamp") {
					return errors.New("unexpected rows")
				}
				return err
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			err := tc.run(s)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_ErrorsAreWrapped(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	boom := errors.New("disk on fire")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "devices"`)).WillReturnError(boom)

	_, err := s.ListDevices(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "failed to list devices")
	assert.NoError(t, mock.ExpectationsWereMet())
}
