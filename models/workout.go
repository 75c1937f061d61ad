package models

import (
	"time"

	"gorm.io/gorm"
)

type Sede struct {
	ID   string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Timestamps
}

func (s *Sede) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

type MuscleGroup struct {
	ID   string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"` // "Piernas", "Pecho", ...
}

func (m *MuscleGroup) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

type Exercise struct {
	ID            string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name          string       `gorm:"not null" json:"name"`
	MuscleGroupID *string      `gorm:"index" json:"muscle_group_id,omitempty"`
	MuscleGroup   *MuscleGroup `gorm:"foreignKey:MuscleGroupID" json:"muscle_group,omitempty"`
}

func (e *Exercise) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

type Routine struct {
	ID              string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name            string            `gorm:"not null" json:"name"`
	SedeID          string            `gorm:"index;not null" json:"sede_id"`
	DurationMinutes *int              `json:"duration_minutes,omitempty"`
	Exercises       []RoutineExercise `gorm:"foreignKey:RoutineID" json:"exercises,omitempty"`
	Timestamps
}

func (r *Routine) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// RoutineExercise prescribes an exercise inside a routine. Nil Sets means one.
type RoutineExercise struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RoutineID  string `gorm:"index;not null" json:"routine_id"`
	ExerciseID string `gorm:"index;not null" json:"exercise_id"`
	Sets       *int   `json:"sets,omitempty"`
	Position   int    `json:"position"`
}

func (re *RoutineExercise) BeforeCreate(tx *gorm.DB) error {
	ensureID(&re.ID)
	return nil
}

type SessionStatus string

const (
	SessionNotDone   SessionStatus = "NOT_DONE"
	SessionPartial   SessionStatus = "PARTIAL"
	SessionCompleted SessionStatus = "COMPLETED"
)

type WorkoutSession struct {
	ID           string                `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID       string                `gorm:"index;not null" json:"user_id"`
	RoutineID    string                `gorm:"index;not null" json:"routine_id"`
	Routine      *Routine              `gorm:"foreignKey:RoutineID" json:"routine,omitempty"`
	Status       SessionStatus         `gorm:"type:varchar(16);not null" json:"status"`
	Notes        *string               `json:"notes,omitempty"`
	Performances []ExercisePerformance `gorm:"foreignKey:SessionID" json:"performances,omitempty"`
	CreatedAt    time.Time             `gorm:"index;autoCreateTime" json:"created_at"`
}

func (ws *WorkoutSession) BeforeCreate(tx *gorm.DB) error {
	ensureID(&ws.ID)
	return nil
}

// ExercisePerformance is one logged set.
type ExercisePerformance struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID  string    `gorm:"index;not null" json:"session_id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	RoutineID  string    `gorm:"index;not null" json:"routine_id"`
	ExerciseID string    `gorm:"index;not null" json:"exercise_id"`
	SetNumber  int       `gorm:"not null" json:"set_number"`
	Reps       int       `gorm:"not null" json:"reps"`
	Weight     float64   `gorm:"not null" json:"weight"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `gorm:"index;autoCreateTime" json:"created_at"`
}

func (ep *ExercisePerformance) BeforeCreate(tx *gorm.DB) error {
	ensureID(&ep.ID)
	return nil
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&Sede{}, &MuscleGroup{}, &Exercise{}, &Routine{}, &RoutineExercise{},
		&WorkoutSession{}, &ExercisePerformance{},
		&PointEvent{}, &LeaderboardSnapshot{},
		&Badge{}, &UserBadge{},
		&Challenge{}, &UserChallenge{},
	}
}
