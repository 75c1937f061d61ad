package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"gym-management-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SetInput struct {
	Reps    int     `json:"reps" validate:"gte=0"`
	Weight  float64 `json:"weight" validate:"gte=0"`
	Comment *string `json:"comment,omitempty"`
}

type PerformanceInput struct {
	ExerciseID string     `json:"exercise_id" validate:"required"`
	Sets       []SetInput `json:"sets" validate:"dive"`
}

type CreateSessionInput struct {
	UserID       string             `json:"-"`
	RoutineID    string             `json:"routine_id" validate:"required"`
	Notes        *string            `json:"notes,omitempty"`
	Performances []PerformanceInput `json:"performances" validate:"dive"`
}

// SessionScore is the outcome of comparing logged sets with a routine's prescription.
type SessionScore struct {
	RequiredSets       int                  `json:"required_sets"`
	CompletedSets      int                  `json:"completed_sets"`
	LoggedSets         int                  `json:"logged_sets"`
	CompletionRatio    float64              `json:"completion_ratio"`
	CompletedExercises int                  `json:"completed_count"`
	TotalExercises     int                  `json:"total_exercises"`
	Status             models.SessionStatus `json:"status"`
}

type SessionResult struct {
	Session       models.WorkoutSession `json:"session"`
	Score         SessionScore          `json:"score"`
	PointsAwarded int64                 `json:"points_awarded"`
	Rewards       Rewards               `json:"rewards"`
}

// ScoreSession compares logged sets with the prescription. Extra sets never push an
// exercise past its requirement and sets for unprescribed exercises only count as logged.
func ScoreSession(prescribed []models.RoutineExercise, performed []PerformanceInput) SessionScore {
	required := make(map[string]int)
	for _, re := range prescribed {
		sets := 1
		if re.Sets != nil && *re.Sets > 1 {
			sets = *re.Sets
		}
		required[re.ExerciseID] += sets
	}

	logged := make(map[string]int)
	var score SessionScore
	for _, p := range performed {
		logged[p.ExerciseID] += len(p.Sets)
		score.LoggedSets += len(p.Sets)
	}

	for exerciseID, req := range required {
		score.RequiredSets += req
		done := min(logged[exerciseID], req)
		score.CompletedSets += done
		if done >= req {
			score.CompletedExercises++
		}
	}
	score.TotalExercises = len(required)

	if score.RequiredSets > 0 {
		score.CompletionRatio = min(1, max(0, float64(score.CompletedSets)/float64(score.RequiredSets)))
	}

	switch {
	case score.LoggedSets == 0:
		score.Status = models.SessionNotDone
	case score.RequiredSets > 0 && score.CompletedSets >= score.RequiredSets:
		score.Status = models.SessionCompleted
	default:
		score.Status = models.SessionPartial
	}
	return score
}

// SessionPoints is round(duration/10 * 20 * ratio) with a 30 minute default duration.
func SessionPoints(durationMinutes *int, ratio float64) int64 {
	d := defaultRoutineMinutes
	if durationMinutes != nil && *durationMinutes > 0 {
		d = *durationMinutes
	}
	return int64(math.Round(float64(d) / 10 * 20 * ratio))
}

type WorkoutSessionService struct {
	DB           *gorm.DB
	Gamification *Gamification

	now func() time.Time
}

func NewWorkoutSessionService(db *gorm.DB, g *Gamification) *WorkoutSessionService {
	return &WorkoutSessionService{DB: db, Gamification: g, now: time.Now}
}

func validateSessionInput(in CreateSessionInput) error {
	if in.UserID == "" {
		return validationError("user id is required")
	}
	if in.RoutineID == "" {
		return validationError("routine id is required")
	}
	for i, p := range in.Performances {
		if p.ExerciseID == "" {
			return validationError("performance %d has no exercise id", i)
		}
		for j, set := range p.Sets {
			if set.Reps < 0 || set.Weight < 0 {
				return validationError("performance %d set %d has negative reps or weight", i, j)
			}
		}
	}
	return nil
}

// performanceRows flattens the input into one row per set. Set numbers continue per exercise.
func performanceRows(session models.WorkoutSession, in []PerformanceInput, at time.Time) []models.ExercisePerformance {
	next := make(map[string]int)
	var rows []models.ExercisePerformance
	for _, p := range in {
		for _, set := range p.Sets {
			next[p.ExerciseID]++
			rows = append(rows, models.ExercisePerformance{
				SessionID:  session.ID,
				UserID:     session.UserID,
				RoutineID:  session.RoutineID,
				ExerciseID: p.ExerciseID,
				SetNumber:  next[p.ExerciseID],
				Reps:       set.Reps,
				Weight:     set.Weight,
				Comment:    set.Comment,
				CreatedAt:  at,
			})
		}
	}
	return rows
}

// Create scores and stores a session with its sets and points in one transaction,
// then runs badge and challenge evaluation on a best-effort basis.
func (s *WorkoutSessionService) Create(ctx context.Context, in CreateSessionInput) (*SessionResult, error) {
	if err := validateSessionInput(in); err != nil {
		return nil, err
	}

	var routine models.Routine
	err := s.DB.WithContext(ctx).Preload("Exercises").First(&routine, "id = ?", in.RoutineID).Error
	if err != nil {
		return nil, lookupError("routine", in.RoutineID, err)
	}

	if err := s.checkExercises(ctx, in.Performances); err != nil {
		return nil, err
	}

	score := ScoreSession(routine.Exercises, in.Performances)
	var points int64
	if score.Status != models.SessionNotDone {
		points = SessionPoints(routine.DurationMinutes, score.CompletionRatio)
	}

	now := s.now().UTC()
	session := models.WorkoutSession{
		UserID:    in.UserID,
		RoutineID: routine.ID,
		Status:    score.Status,
		Notes:     in.Notes,
		CreatedAt: now,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		rows := performanceRows(session, in.Performances, now)
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("create performances: %w", err)
			}
			session.Performances = rows
		}
		if points <= 0 {
			return nil
		}
		routineID := routine.ID
		_, err := registerEvent(tx, RegisterEventInput{
			UserID:       in.UserID,
			SedeID:       routine.SedeID,
			Type:         models.PointEventRoutineComplete,
			RoutineID:    &routineID,
			CustomPoints: &points,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SESSIONS] %s logged %s on routine %s (%d/%d sets, +%d)",
		in.UserID, score.Status, routine.ID, score.CompletedSets, score.RequiredSets, points)

	result := &SessionResult{Session: session, Score: score, PointsAwarded: points}
	if s.Gamification != nil {
		result.Rewards = s.Gamification.AfterActivity(ctx, in.UserID, routine.SedeID)
	}
	return result, nil
}

// checkExercises fails with ErrNotFound on the first performance naming an unknown exercise.
func (s *WorkoutSessionService) checkExercises(ctx context.Context, perfs []PerformanceInput) error {
	if len(perfs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(perfs))
	for _, p := range perfs {
		ids = append(ids, p.ExerciseID)
	}
	var known []string
	err := s.DB.WithContext(ctx).Model(&models.Exercise{}).Where("id IN ?", ids).Pluck("id", &known).Error
	if err != nil {
		return fmt.Errorf("load exercises: %w", err)
	}
	found := make(map[string]bool, len(known))
	for _, id := range known {
		found[id] = true
	}
	for _, id := range ids {
		if !found[id] {
			return notFoundError("exercise", id)
		}
	}
	return nil
}

type SessionPage struct {
	Sessions   []models.WorkoutSession `json:"sessions"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}

// ListByUser returns a user's sessions newest first, with routine and sets preloaded.
func (s *WorkoutSessionService) ListByUser(ctx context.Context, userID, routineID string, page, limit int) (*SessionPage, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	if page < 1 {
		page = 1
	}
	limit = clampLimit(limit, defaultPageSize, maxPageSize)

	q := s.DB.WithContext(ctx).Model(&models.WorkoutSession{}).Where("user_id = ?", userID)
	if routineID != "" {
		q = q.Where("routine_id = ?", routineID)
	}
	q = q.Session(&gorm.Session{})

	out := &SessionPage{Page: page, Limit: limit, Sessions: []models.WorkoutSession{}}
	if err := q.Count(&out.Total).Error; err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	err := q.Preload("Routine").
		Preload("Performances", func(db *gorm.DB) *gorm.DB {
			return db.Order("exercise_id ASC").Order("set_number ASC")
		}).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&out.Sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out.TotalPages = int((out.Total + int64(limit) - 1) / int64(limit))
	return out, nil
}
