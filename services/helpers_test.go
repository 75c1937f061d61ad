package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gym-management-system/database"
	"gym-management-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(false))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// failCreatesOn makes every insert into table fail.
func failCreatesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("forced failure on " + table))
		}
	})
	require.NoError(t, err)
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func ptr[T any](v T) *T { return &v }

// addPoints appends a raw ledger row at a given time.
func addPoints(t *testing.T, db *gorm.DB, userID, sedeID string, typ models.PointEventType, points int64, at time.Time) {
	t.Helper()
	ev := models.PointEvent{UserID: userID, SedeID: sedeID, Type: typ, Points: points, CreatedAt: at.UTC()}
	require.NoError(t, db.Create(&ev).Error)
}

type gymFixture struct {
	Sede    models.Sede
	Groups  map[string]models.MuscleGroup
	Squat   models.Exercise
	Bench   models.Exercise
	Row     models.Exercise
	Routine models.Routine
}

// newGymFixture creates a sede and a routine prescribing squat (3 sets) and bench (2 sets).
func newGymFixture(t *testing.T, db *gorm.DB, durationMinutes *int) *gymFixture {
	t.Helper()
	f := &gymFixture{Sede: models.Sede{Name: "Sede Norte"}, Groups: map[string]models.MuscleGroup{}}
	require.NoError(t, db.Create(&f.Sede).Error)

	for _, name := range []string{"Piernas", "Pecho", "Espalda"} {
		g := models.MuscleGroup{Name: name}
		require.NoError(t, db.Create(&g).Error)
		f.Groups[name] = g
	}

	f.Squat = models.Exercise{Name: "Sentadilla", MuscleGroupID: ptr(f.Groups["Piernas"].ID)}
	f.Bench = models.Exercise{Name: "Press banca", MuscleGroupID: ptr(f.Groups["Pecho"].ID)}
	f.Row = models.Exercise{Name: "Remo", MuscleGroupID: ptr(f.Groups["Espalda"].ID)}
	for _, e := range []*models.Exercise{&f.Squat, &f.Bench, &f.Row} {
		require.NoError(t, db.Create(e).Error)
	}

	f.Routine = models.Routine{Name: "Fuerza", SedeID: f.Sede.ID, DurationMinutes: durationMinutes}
	require.NoError(t, db.Create(&f.Routine).Error)
	for i, re := range []models.RoutineExercise{
		{RoutineID: f.Routine.ID, ExerciseID: f.Squat.ID, Sets: ptr(3), Position: 1},
		{RoutineID: f.Routine.ID, ExerciseID: f.Bench.ID, Sets: ptr(2), Position: 2},
	} {
		re.Position = i + 1
		require.NoError(t, db.Create(&re).Error)
	}
	return f
}

// logSet stores one performance row directly, bypassing the scorer.
func logSet(t *testing.T, db *gorm.DB, userID string, f *gymFixture, exercise models.Exercise, at time.Time) {
	t.Helper()
	session := models.WorkoutSession{UserID: userID, RoutineID: f.Routine.ID, Status: models.SessionPartial, CreatedAt: at.UTC()}
	require.NoError(t, db.Omit("Routine", "Performances").Create(&session).Error)
	perf := models.ExercisePerformance{
		SessionID: session.ID, UserID: userID, RoutineID: f.Routine.ID,
		ExerciseID: exercise.ID, SetNumber: 1, Reps: 10, Weight: 40, CreatedAt: at.UTC(),
	}
	require.NoError(t, db.Create(&perf).Error)
}

type fakeIdentity struct {
	mu       sync.Mutex
	profiles map[string]*Profile
	fail     map[string]bool
	listErr  error
	gets     int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{profiles: map[string]*Profile{}, fail: map[string]bool{}}
}

func (f *fakeIdentity) add(id, name, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[id] = &Profile{ID: id, Name: name, Email: email, Metadata: map[string]any{}}
}

func (f *fakeIdentity) GetProfile(_ context.Context, userID string) (*Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.fail[userID] {
		return nil, fmt.Errorf("%w: fake outage", ErrUpstream)
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, notFoundError("user", userID)
	}
	cp := *p
	cp.Metadata = map[string]any{}
	for k, v := range p.Metadata {
		cp.Metadata[k] = v
	}
	return &cp, nil
}

func (f *fakeIdentity) UpdateMetadata(_ context.Context, userID string, patch map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[userID] {
		return fmt.Errorf("%w: fake outage", ErrUpstream)
	}
	p, ok := f.profiles[userID]
	if !ok {
		return notFoundError("user", userID)
	}
	for k, v := range patch {
		p.Metadata[k] = v
	}
	return nil
}

func (f *fakeIdentity) ListUserIDs(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]string, 0, len(f.profiles))
	for id := range f.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}
