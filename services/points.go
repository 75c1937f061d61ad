package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gym-management-system/models"

	"gorm.io/gorm"
)

// BasePoints are the default awards per ledger event type.
var BasePoints = map[models.PointEventType]int64{
	models.PointEventClassEnroll:     10,
	models.PointEventRoutineAssign:   15,
	models.PointEventRoutineComplete: 25,
}

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	defaultPageSize         = 20
	maxPageSize             = 100
)

type PointsService struct {
	DB       *gorm.DB
	Identity IdentityProvider

	now func() time.Time
}

func NewPointsService(db *gorm.DB, idp IdentityProvider) *PointsService {
	return &PointsService{DB: db, Identity: idp, now: time.Now}
}

type RegisterEventInput struct {
	UserID       string                `json:"user_id" validate:"required"`
	SedeID       string                `json:"sede_id" validate:"required"`
	Type         models.PointEventType `json:"type" validate:"required"`
	ClassID      *string               `json:"class_id,omitempty"`
	RoutineID    *string               `json:"routine_id,omitempty"`
	CustomPoints *int64                `json:"custom_points,omitempty" validate:"omitempty,gte=0"`
}

// RegisterEvent appends one ledger row.
func (s *PointsService) RegisterEvent(ctx context.Context, in RegisterEventInput) (*models.PointEvent, error) {
	return registerEvent(s.DB.WithContext(ctx), in)
}

// registerEvent writes through db, which may be an open transaction.
func registerEvent(db *gorm.DB, in RegisterEventInput) (*models.PointEvent, error) {
	if in.UserID == "" {
		return nil, validationError("user id is required")
	}
	if in.SedeID == "" {
		return nil, validationError("sede id is required")
	}
	if !in.Type.Valid() {
		return nil, validationError("unknown point event type %q", in.Type)
	}

	var points int64
	switch base, ok := BasePoints[in.Type]; {
	case in.CustomPoints != nil:
		if *in.CustomPoints < 0 {
			return nil, validationError("custom points must not be negative")
		}
		points = *in.CustomPoints
	case ok:
		points = base
	default:
		return nil, fmt.Errorf("%w: no base points for %s and no custom amount given", ErrConfiguration, in.Type)
	}

	event := models.PointEvent{
		UserID:    in.UserID,
		SedeID:    in.SedeID,
		Type:      in.Type,
		Points:    points,
		ClassID:   in.ClassID,
		RoutineID: in.RoutineID,
	}
	if err := db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("append point event: %w", err)
	}
	log.Printf("[POINTS] +%d %s for user %s at sede %s", points, in.Type, in.UserID, in.SedeID)
	return &event, nil
}

// TotalPoints sums the ledger for a user, optionally scoped to one sede.
func (s *PointsService) TotalPoints(ctx context.Context, userID, sedeID string) (int64, error) {
	return totalPoints(s.DB.WithContext(ctx), userID, sedeID)
}

func totalPoints(db *gorm.DB, userID, sedeID string) (int64, error) {
	var total int64
	q := db.Model(&models.PointEvent{}).Where("user_id = ?", userID)
	if sedeID != "" {
		q = q.Where("sede_id = ?", sedeID)
	}
	if err := q.Select("COALESCE(SUM(points), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum points for %s: %w", userID, err)
	}
	return total, nil
}

// LeaderboardPeriod is the aggregation window.
type LeaderboardPeriod string

const (
	PeriodAll    LeaderboardPeriod = "all"
	Period7Days  LeaderboardPeriod = "7d"
	Period30Days LeaderboardPeriod = "30d"
)

func ParseLeaderboardPeriod(raw string) (LeaderboardPeriod, error) {
	switch p := LeaderboardPeriod(raw); p {
	case "":
		return PeriodAll, nil
	case PeriodAll, Period7Days, Period30Days:
		return p, nil
	}
	return "", validationError("unknown leaderboard period %q", raw)
}

func (p LeaderboardPeriod) days() int {
	switch p {
	case Period7Days:
		return 7
	case Period30Days:
		return 30
	}
	return 0
}

type LeaderboardQuery struct {
	Period LeaderboardPeriod
	SedeID string
	Limit  int
}

type UserLeaderboardRow struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	TotalPoints int64  `json:"total_points"`
}

type SedeLeaderboardRow struct {
	Rank        int    `json:"rank"`
	SedeID      string `json:"sede_id"`
	SedeName    string `json:"sede_name"`
	TotalPoints int64  `json:"total_points"`
}

type pointsAggregate struct {
	GroupKey string
	Total    int64
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// aggregate sums the ledger grouped by column. Ties rank by key ascending.
func (s *PointsService) aggregate(ctx context.Context, column string, q LeaderboardQuery) ([]pointsAggregate, error) {
	period, err := ParseLeaderboardPeriod(string(q.Period))
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx).Model(&models.PointEvent{}).
		Select(column + " AS group_key, SUM(points) AS total")
	if days := period.days(); days > 0 {
		now := s.now().UTC()
		db = db.Where("created_at >= ? AND created_at <= ?", now.AddDate(0, 0, -days), now)
	}
	if q.SedeID != "" {
		db = db.Where("sede_id = ?", q.SedeID)
	}

	var rows []pointsAggregate
	err = db.Group(column).
		Order("total DESC").
		Order(column + " ASC").
		Limit(clampLimit(q.Limit, defaultLeaderboardLimit, maxLeaderboardLimit)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate leaderboard: %w", err)
	}
	return rows, nil
}

func (s *PointsService) UserLeaderboard(ctx context.Context, q LeaderboardQuery) ([]UserLeaderboardRow, error) {
	aggs, err := s.aggregate(ctx, "user_id", q)
	if err != nil {
		return nil, err
	}

	out := make([]UserLeaderboardRow, 0, len(aggs))
	for i, a := range aggs {
		p := resolveProfile(ctx, s.Identity, a.GroupKey)
		out = append(out, UserLeaderboardRow{
			Rank:        i + 1,
			UserID:      a.GroupKey,
			DisplayName: p.Name,
			Email:       p.Email,
			TotalPoints: a.Total,
		})
	}
	return out, nil
}

// SedeLeaderboard ignores q.SedeID.
func (s *PointsService) SedeLeaderboard(ctx context.Context, q LeaderboardQuery) ([]SedeLeaderboardRow, error) {
	q.SedeID = ""
	aggs, err := s.aggregate(ctx, "sede_id", q)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(aggs))
	for _, a := range aggs {
		ids = append(ids, a.GroupKey)
	}
	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		var sedes []models.Sede
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&sedes).Error; err != nil {
			log.Printf("[POINTS] sede name lookup failed: %v", err)
		}
		for _, sd := range sedes {
			names[sd.ID] = sd.Name
		}
	}

	out := make([]SedeLeaderboardRow, 0, len(aggs))
	for i, a := range aggs {
		name, ok := names[a.GroupKey]
		if !ok {
			name = a.GroupKey
		}
		out = append(out, SedeLeaderboardRow{Rank: i + 1, SedeID: a.GroupKey, SedeName: name, TotalPoints: a.Total})
	}
	return out, nil
}

type PointsHistory struct {
	Events     []models.PointEvent `json:"events"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// History lists a user's ledger rows, newest first.
func (s *PointsService) History(ctx context.Context, userID, sedeID string, page, limit int) (*PointsHistory, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	if page < 1 {
		page = 1
	}
	limit = clampLimit(limit, defaultPageSize, maxPageSize)

	q := s.DB.WithContext(ctx).Model(&models.PointEvent{}).Where("user_id = ?", userID)
	if sedeID != "" {
		q = q.Where("sede_id = ?", sedeID)
	}
	q = q.Session(&gorm.Session{})

	out := &PointsHistory{Page: page, Limit: limit, Events: []models.PointEvent{}}
	if err := q.Count(&out.Total).Error; err != nil {
		return nil, fmt.Errorf("count point events: %w", err)
	}
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&out.Events).Error
	if err != nil {
		return nil, fmt.Errorf("list point events: %w", err)
	}
	out.TotalPages = int((out.Total + int64(limit) - 1) / int64(limit))
	return out, nil
}
