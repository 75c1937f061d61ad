package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gym-management-system/models"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// defaultRoutineMinutes is assumed when a routine has no duration.
const defaultRoutineMinutes = 30

// ActivityWindow is the half-open [Start, End) range a predicate inspects.
type ActivityWindow struct {
	UserID   string
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// ChallengePredicate reports whether a user's activity inside the window satisfies a challenge.
type ChallengePredicate func(ctx context.Context, db *gorm.DB, w ActivityWindow) (bool, error)

var challengePredicates = map[string]ChallengePredicate{
	"dia-de-piernas":         trainedMuscleGroup("Piernas"),
	"dia-de-pecho":           trainedMuscleGroup("Pecho"),
	"dia-de-espalda":         trainedMuscleGroup("Espalda"),
	"dia-de-brazos":          trainedMuscleGroup("Brazos"),
	"dia-de-hombros":         trainedMuscleGroup("Hombros"),
	"dia-de-core":            trainedMuscleGroup("Core"),
	"rutina-larga":           longRoutine(60),
	"largo-aliento":          longRoutine(60),
	"rutina-completa":        completedSessions(1),
	"tres-rutinas-completas": completedSessions(3),
	"asiste-a-clase":         classEnrollments(1),
	"dos-clases":             classEnrollments(2),
	"entrena-hoy":            trainingDays(1),
	"semana-3-de-7":          trainingDays(3),
	"semana-5-de-7":          trainingDays(5),
	"cuerpo-completo":        distinctMuscleGroups(3),
}

// challengePhrases is the title fallback for challenges whose code is not registered.
// Longer phrases come first so they win over their prefixes.
var challengePhrases = []struct {
	phrase string
	code   string
}{
	{"3 rutinas completas", "tres-rutinas-completas"},
	{"semana 3 de 7", "semana-3-de-7"},
	{"semana 5 de 7", "semana-5-de-7"},
	{"asiste a una clase", "asiste-a-clase"},
	{"dia de piernas", "dia-de-piernas"},
	{"dia de pecho", "dia-de-pecho"},
	{"dia de espalda", "dia-de-espalda"},
	{"dia de brazos", "dia-de-brazos"},
	{"dia de hombros", "dia-de-hombros"},
	{"dia de core", "dia-de-core"},
	{"rutina completa", "rutina-completa"},
	{"cuerpo completo", "cuerpo-completo"},
	{"rutina larga", "rutina-larga"},
	{"largo aliento", "largo-aliento"},
	{"entrena hoy", "entrena-hoy"},
	{"2 clases", "dos-clases"},
}

var titleFolder = cases.Fold()

func normalizeTitle(title string) string {
	folded := titleFolder.String(unidecode.Unidecode(title))
	return strings.Join(strings.Fields(folded), " ")
}

// resolvePredicate returns nil for challenges that can never be completed.
func resolvePredicate(ch models.Challenge) ChallengePredicate {
	if p, ok := challengePredicates[ch.Code]; ok {
		return p
	}
	title := normalizeTitle(ch.Title)
	for _, m := range challengePhrases {
		if strings.Contains(title, m.phrase) {
			return challengePredicates[m.code]
		}
	}
	return nil
}

func performancesInWindow(db *gorm.DB, w ActivityWindow) *gorm.DB {
	return db.Model(&models.ExercisePerformance{}).
		Where("exercise_performances.user_id = ?", w.UserID).
		Where("exercise_performances.created_at >= ? AND exercise_performances.created_at < ?", w.Start.UTC(), w.End.UTC())
}

func sessionsInWindow(db *gorm.DB, w ActivityWindow) *gorm.DB {
	return db.Model(&models.WorkoutSession{}).
		Where("workout_sessions.user_id = ?", w.UserID).
		Where("workout_sessions.created_at >= ? AND workout_sessions.created_at < ?", w.Start.UTC(), w.End.UTC())
}

func trainedMuscleGroup(name string) ChallengePredicate {
	return func(ctx context.Context, db *gorm.DB, w ActivityWindow) (bool, error) {
		var n int64
		err := performancesInWindow(db.WithContext(ctx), w).
			Joins("JOIN exercises ON exercises.id = exercise_performances.exercise_id").
			Joins("JOIN muscle_groups ON muscle_groups.id = exercises.muscle_group_id").
			Where("LOWER(muscle_groups.name) = LOWER(?)", name).
			Count(&n).Error
		if err != nil {
			return false, fmt.Errorf("check muscle group %s: %w", name, err)
		}
		return n > 0, nil
	}
}

func longRoutine(minMinutes int) ChallengePredicate {
	return func(ctx context.Context, db *gorm.DB, w ActivityWindow) (bool, error) {
		var n int64
		err := sessionsInWindow(db.WithContext(ctx), w).
			Joins("JOIN routines ON routines.id = workout_sessions.routine_id").
			Where("workout_sessions.status <> ?", models.SessionNotDone).
			Where("CASE WHEN routines.duration_minutes > 0 THEN routines.duration_minutes ELSE ? END >= ?", defaultRoutineMinutes, minMinutes).
			Count(&n).Error
		if err != nil {
			return false, fmt.Errorf("check long routine: %w", err)
		}
		return n > 0, nil
	}
}

func completedSessions(atLeast int64) ChallengePredicate {
	return func(ctx context.Context, db *gorm.DB, w ActivityWindow) (bool, error) {
		var n int64
		err := sessionsInWindow(db.WithContext(ctx), w).
			Where("workout_sessions.status = ?", models.SessionCompleted).
			Count(&n).Error
		if err != nil {
			return false, fmt.Errorf("count completed sessions: %w", err)
		}
		return n >= atLeast, nil
	}
}

func classEnrollments(atLeast int64) ChallengePredicate {
	return func(ctx context.Context, db *gorm.DB, w ActivityWindow) (bool, error) {
		var n int64
		err := db.WithContext(ctx).Model(&models.PointEvent{}).
			Where("user_id = ? AND type = ?", w.UserID, models.PointEventClassEnroll).
			Where("created_at >= ? AND created_at < ?", w.Start.UTC(), w.End.UTC()).
			Count(&n).Error
		if err != nil {
			return false, fmt.Errorf("count class enrollments: %w", err)
		}
		return n >= atLeast, nil
	}
}

// trainingDays counts distinct local calendar days with at least one logged set.
func trainingDays(atLeast int) ChallengePredicate {
	return func(ctx context.Context, db *gorm.DB, w ActivityWindow) (bool, error) {
		var stamps []time.Time
		err := performancesInWindow(db.WithContext(ctx), w).
			Pluck("exercise_performances.created_at", &stamps).Error
		if err != nil {
			return false, fmt.Errorf("list training days: %w", err)
		}
		loc := w.Location
		if loc == nil {
			loc = time.UTC
		}
		days := make(map[string]struct{})
		for _, ts := range stamps {
			days[ts.In(loc).Format(time.DateOnly)] = struct{}{}
		}
		return len(days) >= atLeast, nil
	}
}

func distinctMuscleGroups(atLeast int) ChallengePredicate {
	return func(ctx context.Context, db *gorm.DB, w ActivityWindow) (bool, error) {
		var groups []string
		err := performancesInWindow(db.WithContext(ctx), w).
			Joins("JOIN exercises ON exercises.id = exercise_performances.exercise_id").
			Where("exercises.muscle_group_id IS NOT NULL").
			Distinct().
			Pluck("exercises.muscle_group_id", &groups).Error
		if err != nil {
			return false, fmt.Errorf("list muscle groups: %w", err)
		}
		return len(groups) >= atLeast, nil
	}
}
