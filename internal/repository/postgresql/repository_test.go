package postgresql

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to TEST_DATABASE_URL, applies the schema and empties every
// table. Tests are skipped when the variable is unset.
func testDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolConfig{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	_, err = db.Exec(ctx, `TRUNCATE TABLE excuses, excuse_requests, attendance_records, reporting_periods, time_windows, users CASCADE`)
	require.NoError(t, err)
	return db
}

type seeded struct {
	userID   string
	windowID string
	periodID string
}

func seed(t *testing.T, db *database.DB) seeded {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	s := seeded{userID: uuid.NewString(), windowID: uuid.NewString(), periodID: uuid.NewString()}

	_, err := NewUserRepository(db).Create(ctx, user.User{ID: s.userID, Email: "ada@example.org", Username: "ada", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC).Add(19 * time.Hour)
	_, err = NewWindowRepository(db).Create(ctx, window.TimeWindow{ID: s.windowID, StartTime: start, EndTime: start.Add(2 * time.Hour), Category: window.CategoryRegular, CreatedAt: now})
	require.NoError(t, err)

	_, err = NewPeriodRepository(db).Create(ctx, period.ReportingPeriod{
		ID:        s.periodID,
		Name:      "March",
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt: now,
	})
	require.NoError(t, err)
	return s
}

func TestRecordRepository_Upsert(t *testing.T) {
	db := testDB(t)
	s := seed(t, db)
	ctx := context.Background()
	repo := NewRecordRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	first, inserted, err := repo.Upsert(ctx, attendance.Record{ID: uuid.NewString(), UserID: s.userID, WindowID: s.windowID, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.True(t, inserted)

	hours := 1.25
	second, inserted, err := repo.Upsert(ctx, attendance.Record{ID: uuid.NewString(), UserID: s.userID, WindowID: s.windowID, PartialHours: &hours, CreatedAt: now.Add(time.Hour), UpdatedAt: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt), "created_at is kept on edit")

	stored, err := repo.GetByUserAndWindow(ctx, s.userID, s.windowID)
	require.NoError(t, err)
	assert.Equal(t, attendance.LegacyPartial{Hours: 1.25}, stored.Credit())

	_, err = repo.GetByUserAndWindow(ctx, s.userID, uuid.NewString())
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestExcuseRepository_Duplicate(t *testing.T) {
	db := testDB(t)
	s := seed(t, db)
	ctx := context.Background()
	repo := NewExcuseRepository(db)
	e := excuse.Excuse{UserID: s.userID, WindowID: s.windowID, PeriodID: s.periodID, Reason: "travel", CreatedBy: s.userID, CreatedAt: time.Now().UTC()}

	e.ID = uuid.NewString()
	_, err := repo.Create(ctx, e)
	require.NoError(t, err)

	e.ID = uuid.NewString()
	_, err = repo.Create(ctx, e)
	assert.ErrorIs(t, err, excuse.ErrExcuseExists)

	exists, err := repo.Exists(ctx, s.userID, s.windowID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_Delete_Cascades(t *testing.T) {
	db := testDB(t)
	s := seed(t, db)
	ctx := context.Background()
	now := time.Now().UTC()
	records := NewRecordRepository(db)
	excuses := NewExcuseRepository(db)

	_, _, err := records.Upsert(ctx, attendance.Record{ID: uuid.NewString(), UserID: s.userID, WindowID: s.windowID, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	_, err = excuses.Create(ctx, excuse.Excuse{ID: uuid.NewString(), UserID: s.userID, WindowID: s.windowID, PeriodID: s.periodID, CreatedBy: s.userID, CreatedAt: now})
	require.NoError(t, err)

	users := NewUserRepository(db)
	require.NoError(t, users.Delete(ctx, s.userID))

	_, err = records.GetByUserAndWindow(ctx, s.userID, s.windowID)
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
	exists, err := excuses.Exists(ctx, s.userID, s.windowID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, users.Delete(ctx, s.userID), user.ErrUserNotFound)
}

func TestPeriodRepository_GetContaining(t *testing.T) {
	db := testDB(t)
	s := seed(t, db)
	repo := NewPeriodRepository(db)

	got, err := repo.GetContaining(context.Background(), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, s.periodID, got.ID)

	_, err = repo.GetContaining(context.Background(), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, period.ErrNoActivePeriod)
}

func TestTransactor_RollsBack(t *testing.T) {
	db := testDB(t)
	s := seed(t, db)
	ctx := context.Background()
	records := NewRecordRepository(db)
	boom := errors.New("boom")

	err := NewTransactor(db).WithinTransaction(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()
		if _, _, err := records.Upsert(txCtx, attendance.Record{ID: uuid.NewString(), UserID: s.userID, WindowID: s.windowID, CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	_, err = records.GetByUserAndWindow(ctx, s.userID, s.windowID)
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}
