package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestListDue_QueryShape(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "task_id", "user_id", "reminder_date", "notified"}).
		AddRow(1, 10, 5, now.Add(-time.Hour), false).
		AddRow(2, 11, 5, now.Add(-time.Minute), false)

	mock.ExpectQuery("SELECT \\* FROM `reminders` WHERE notified = \\? AND reminder_date < \\? ORDER BY reminder_date ASC LIMIT").
		WithArgs(false, now).
		WillReturnRows(rows)

	reminders, err := repo.ListDue(now, 100)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.EqualValues(t, 1, reminders[0].ID)
	assert.True(t, reminders[0].ReminderDate.Before(reminders[1].ReminderDate))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkNotified_QueryShape(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `reminders` SET `notified`=\\?").
		WithArgs(true, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkNotified(7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
