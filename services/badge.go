package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gym-management-system/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeService struct {
	DB *gorm.DB

	now func() time.Time
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db, now: time.Now}
}

// BadgeStatus is a catalog badge seen from one user's perspective.
type BadgeStatus struct {
	Badge        models.Badge `json:"badge"`
	Earned       bool         `json:"earned"`
	EarnedAt     *time.Time   `json:"earned_at,omitempty"`
	CurrentValue int64        `json:"current_value"`
	Progress     float64      `json:"progress"` // 0..1
}

type badgeMetrics map[models.BadgeMetric]int64

// metrics computes every badge metric in one pass over the ledger.
func metrics(db *gorm.DB, userID, sedeID string) (badgeMetrics, error) {
	var row struct {
		TotalPoints          int64
		ClassEnrollCount     int64
		RoutineCompleteCount int64
	}
	q := db.Model(&models.PointEvent{}).
		Select(`COALESCE(SUM(points), 0) AS total_points,
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS class_enroll_count,
			COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS routine_complete_count`,
			models.PointEventClassEnroll, models.PointEventRoutineComplete).
		Where("user_id = ?", userID)
	if sedeID != "" {
		q = q.Where("sede_id = ?", sedeID)
	}
	if err := q.Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("compute badge metrics for %s: %w", userID, err)
	}
	return badgeMetrics{
		models.BadgeMetricTotalPoints:          row.TotalPoints,
		models.BadgeMetricClassEnrollCount:     row.ClassEnrollCount,
		models.BadgeMetricRoutineCompleteCount: row.RoutineCompleteCount,
	}, nil
}

func badgeProgress(value, threshold int64) float64 {
	if threshold <= 0 {
		return 0
	}
	return min(1, float64(value)/float64(threshold))
}

func (s *BadgeService) catalog(db *gorm.DB) ([]models.Badge, error) {
	var badges []models.Badge
	if err := db.Order("threshold ASC").Order("code ASC").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("load badge catalog: %w", err)
	}
	return badges, nil
}

func (s *BadgeService) earned(db *gorm.DB, userID string) (map[string]models.UserBadge, error) {
	var rows []models.UserBadge
	if err := db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load earned badges for %s: %w", userID, err)
	}
	out := make(map[string]models.UserBadge, len(rows))
	for _, r := range rows {
		out[r.BadgeID] = r
	}
	return out, nil
}

// EvaluateAndReturnNew grants every badge whose threshold is now met and returns only the new grants.
// Existing grants are never revoked, even if the metric later drops.
func (s *BadgeService) EvaluateAndReturnNew(ctx context.Context, userID, sedeID string) ([]BadgeStatus, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	db := s.DB.WithContext(ctx)

	earned, err := s.earned(db, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.catalog(db)
	if err != nil {
		return nil, err
	}
	m, err := metrics(db, userID, sedeID)
	if err != nil {
		return nil, err
	}

	var granted []BadgeStatus
	for _, b := range badges {
		if _, ok := earned[b.ID]; ok {
			continue
		}
		value, known := m[b.Metric]
		if !known {
			log.Printf("[BADGES] badge %s has unknown metric %q, skipping", b.Code, b.Metric)
			continue
		}
		if value < b.Threshold {
			continue
		}

		at := s.now().UTC()
		meta, err := json.Marshal(map[string]any{"metric": b.Metric, "value": value, "sede_id": sedeID})
		if err != nil {
			return granted, fmt.Errorf("encode badge %s metadata: %w", b.Code, err)
		}
		ub := models.UserBadge{
			UserID:   userID,
			BadgeID:  b.ID,
			EarnedAt: at,
			Metadata: datatypes.JSON(meta),
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ub)
		if res.Error != nil {
			return granted, fmt.Errorf("grant badge %s to %s: %w", b.Code, userID, res.Error)
		}
		if res.RowsAffected == 0 {
			// another evaluation got there first
			continue
		}
		log.Printf("🎖️ [BADGES] %s → %s (%s=%d)", b.Code, userID, b.Metric, value)
		granted = append(granted, BadgeStatus{
			Badge:        b,
			Earned:       true,
			EarnedAt:     &at,
			CurrentValue: value,
			Progress:     badgeProgress(value, b.Threshold),
		})
	}
	return granted, nil
}

// EvaluateForUser is EvaluateAndReturnNew reduced to the granted badge ids.
func (s *BadgeService) EvaluateForUser(ctx context.Context, userID, sedeID string) ([]string, error) {
	granted, err := s.EvaluateAndReturnNew(ctx, userID, sedeID)
	ids := make([]string, 0, len(granted))
	for _, g := range granted {
		ids = append(ids, g.Badge.ID)
	}
	return ids, err
}

// GetUserBadges lists the whole catalog with the user's earned state and progress.
func (s *BadgeService) GetUserBadges(ctx context.Context, userID, sedeID string) ([]BadgeStatus, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	db := s.DB.WithContext(ctx)

	badges, err := s.catalog(db)
	if err != nil {
		return nil, err
	}
	earned, err := s.earned(db, userID)
	if err != nil {
		return nil, err
	}
	m, err := metrics(db, userID, sedeID)
	if err != nil {
		return nil, err
	}

	out := make([]BadgeStatus, 0, len(badges))
	for _, b := range badges {
		value := m[b.Metric]
		st := BadgeStatus{
			Badge:        b,
			CurrentValue: value,
			Progress:     badgeProgress(value, b.Threshold),
		}
		if ub, ok := earned[b.ID]; ok {
			at := ub.EarnedAt
			st.Earned = true
			st.EarnedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *BadgeService) ByCode(ctx context.Context, code string) (*models.Badge, error) {
	var b models.Badge
	if err := s.DB.WithContext(ctx).Where("code = ?", code).First(&b).Error; err != nil {
		return nil, lookupError("badge", code, err)
	}
	return &b, nil
}

// SetIcon replaces a badge's icon reference.
func (s *BadgeService) SetIcon(ctx context.Context, code, icon string) (*models.Badge, error) {
	b, err := s.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(b).Update("icon", icon).Error; err != nil {
		return nil, fmt.Errorf("update badge icon %s: %w", code, err)
	}
	b.Icon = icon
	return b, nil
}
