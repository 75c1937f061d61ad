package database

import (
	"fmt"

	"gym-management-system/models"

	"gorm.io/gorm"
)

var seedSedes = []string{"Sede Centro", "Sede Norte", "Sede Sur"}

var seedMuscleGroups = []string{"Piernas", "Pecho", "Espalda", "Brazos", "Hombros", "Core"}

var seedBadges = []models.Badge{
	{Code: "PRIMERA_CLASE", Name: "Primera clase", Description: "Te inscribiste en tu primera clase", Icon: "🎟️", Metric: models.BadgeMetricClassEnrollCount, Threshold: 1},
	{Code: "CINCO_CLASES", Name: "Habitual", Description: "Cinco clases reservadas", Icon: "📅", Metric: models.BadgeMetricClassEnrollCount, Threshold: 5},
	{Code: "PRIMERA_RUTINA", Name: "Primera rutina", Description: "Completaste tu primera rutina", Icon: "💪", Metric: models.BadgeMetricRoutineCompleteCount, Threshold: 1},
	{Code: "DIEZ_RUTINAS", Name: "Constancia", Description: "Diez rutinas registradas", Icon: "🔥", Metric: models.BadgeMetricRoutineCompleteCount, Threshold: 10},
	{Code: "CIEN_PUNTOS", Name: "Cien puntos", Description: "Sumaste 100 puntos", Icon: "⭐", Metric: models.BadgeMetricTotalPoints, Threshold: 100},
	{Code: "MIL_PUNTOS", Name: "Mil puntos", Description: "Sumaste 1000 puntos", Icon: "🏆", Metric: models.BadgeMetricTotalPoints, Threshold: 1000},
}

var seedChallenges = []models.Challenge{
	{Title: "Día de piernas", Description: "Registra un ejercicio de piernas hoy", Frequency: models.ChallengeDaily, PointsReward: 30, MinLevel: 3},
	{Title: "Día de pecho", Description: "Registra un ejercicio de pecho hoy", Frequency: models.ChallengeDaily, PointsReward: 30, MinLevel: 3},
	{Title: "Día de espalda", Description: "Registra un ejercicio de espalda hoy", Frequency: models.ChallengeDaily, PointsReward: 30, MinLevel: 3},
	{Title: "Día de brazos", Description: "Registra un ejercicio de brazos hoy", Frequency: models.ChallengeDaily, PointsReward: 30, MinLevel: 3},
	{Title: "Día de hombros", Description: "Registra un ejercicio de hombros hoy", Frequency: models.ChallengeDaily, PointsReward: 30, MinLevel: 3},
	{Title: "Día de core", Description: "Registra un ejercicio de core hoy", Frequency: models.ChallengeDaily, PointsReward: 30, MinLevel: 3},
	{Title: "Rutina larga", Description: "Haz una rutina de al menos 60 minutos", Frequency: models.ChallengeDaily, PointsReward: 40, MinLevel: 3},
	{Title: "Rutina completa", Description: "Completa todas las series de una rutina", Frequency: models.ChallengeDaily, PointsReward: 40, MinLevel: 3},
	{Code: "asiste-a-clase", Title: "Asiste a una clase", Description: "Inscríbete en una clase hoy", Frequency: models.ChallengeDaily, PointsReward: 25, MinLevel: 3},
	{Title: "Entrena hoy", Description: "Registra al menos una serie", Frequency: models.ChallengeDaily, PointsReward: 20, MinLevel: 3},
	{Title: "Semana 3 de 7", Description: "Entrena tres días distintos esta semana", Frequency: models.ChallengeWeekly, PointsReward: 80, MinLevel: 3},
	{Title: "Semana 5 de 7", Description: "Entrena cinco días distintos esta semana", Frequency: models.ChallengeWeekly, PointsReward: 150, MinLevel: 4},
	{Title: "Largo aliento", Description: "Una rutina de 60 minutos o más esta semana", Frequency: models.ChallengeWeekly, PointsReward: 60, MinLevel: 3},
	{Code: "tres-rutinas-completas", Title: "3 rutinas completas", Description: "Completa tres rutinas esta semana", Frequency: models.ChallengeWeekly, PointsReward: 100, MinLevel: 3},
	{Code: "dos-clases", Title: "2 clases", Description: "Asiste a dos clases esta semana", Frequency: models.ChallengeWeekly, PointsReward: 60, MinLevel: 3},
	{Title: "Cuerpo completo", Description: "Trabaja tres grupos musculares esta semana", Frequency: models.ChallengeWeekly, PointsReward: 90, MinLevel: 3},
}

type SeedReport struct {
	Sedes        int
	MuscleGroups int
	Badges       int
	Challenges   int
}

// Seed inserts reference data. Rows that already exist are left untouched.
func Seed(db *gorm.DB) (*SeedReport, error) {
	report := &SeedReport{}
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, name := range seedSedes {
			s := models.Sede{}
			res := tx.Where(models.Sede{Name: name}).FirstOrCreate(&s)
			if res.Error != nil {
				return fmt.Errorf("seed sede %s: %w", name, res.Error)
			}
			report.Sedes += int(res.RowsAffected)
		}
		for _, name := range seedMuscleGroups {
			g := models.MuscleGroup{}
			res := tx.Where(models.MuscleGroup{Name: name}).FirstOrCreate(&g)
			if res.Error != nil {
				return fmt.Errorf("seed muscle group %s: %w", name, res.Error)
			}
			report.MuscleGroups += int(res.RowsAffected)
		}
		for _, b := range seedBadges {
			row := models.Badge{}
			res := tx.Where(models.Badge{Code: b.Code}).Attrs(b).FirstOrCreate(&row)
			if res.Error != nil {
				return fmt.Errorf("seed badge %s: %w", b.Code, res.Error)
			}
			report.Badges += int(res.RowsAffected)
		}
		for _, c := range seedChallenges {
			c.IsActive = true
			row := models.Challenge{}
			res := tx.Where("title = ? AND sede_id IS NULL", c.Title).Attrs(c).FirstOrCreate(&row)
			if res.Error != nil {
				return fmt.Errorf("seed challenge %s: %w", c.Title, res.Error)
			}
			report.Challenges += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
