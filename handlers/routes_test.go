package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"gym-management-system/database"
	"gym-management-system/middleware"
	"gym-management-system/models"
	"gym-management-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testToken = "svc-token"

type stubUploader struct {
	key  string
	body string
}

func (s *stubUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	raw, _ := io.ReadAll(body)
	s.key, s.body = key, string(raw)
	return "https://cdn.gym.test/" + key, nil
}

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	icons  *stubUploader
	sedeID string
	routID string
	squat  string
	bench  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(false))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	sede := models.Sede{Name: "Sede Centro"}
	require.NoError(t, db.Create(&sede).Error)
	squat := models.Exercise{Name: "Sentadilla"}
	bench := models.Exercise{Name: "Press banca"}
	require.NoError(t, db.Create(&squat).Error)
	require.NoError(t, db.Create(&bench).Error)
	duration := 40
	routine := models.Routine{Name: "Fuerza", SedeID: sede.ID, DurationMinutes: &duration}
	require.NoError(t, db.Create(&routine).Error)
	three, two := 3, 2
	require.NoError(t, db.Create(&models.RoutineExercise{RoutineID: routine.ID, ExerciseID: squat.ID, Sets: &three}).Error)
	require.NoError(t, db.Create(&models.RoutineExercise{RoutineID: routine.ID, ExerciseID: bench.ID, Sets: &two}).Error)

	badges := services.NewBadgeService(db)
	challenges := services.NewChallengeService(db, time.UTC)
	gamification := services.NewGamification(badges, challenges)
	icons := &stubUploader{}

	app := fiber.New()
	app.Use(middleware.GatewayAuthMiddleware(testToken))
	SetupRoutes(app, &Services{
		Points:       services.NewPointsService(db, nil),
		Progression:  services.NewProgressionService(db, nil),
		Badges:       badges,
		Challenges:   challenges,
		Sessions:     services.NewWorkoutSessionService(db, gamification),
		Gamification: gamification,
		Reset:        services.NewResetService(db, nil, false),
		Icons:        icons,
	})

	return &testEnv{app: app, db: db, icons: icons, sedeID: sede.ID, routID: routine.ID, squat: squat.ID, bench: bench.ID}
}

func (e *testEnv) do(t *testing.T, method, path, userID, roles string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if roles != "" {
		req.Header.Set("X-User-Roles", roles)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func TestAdminPointEventRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"user_id": "u1", "sede_id": env.sedeID, "type": "CLASS_ENROLL"}

	resp, _ := env.do(t, "POST", "/s/admin/points/events", "staff", "", body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, out := env.do(t, "POST", "/s/admin/points/events", "staff", "admin", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	event := out["event"].(map[string]any)
	assert.EqualValues(t, 10, event["points"])
	assert.Contains(t, out, "rewards")
}

func TestAdminPointEventErrors(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, "POST", "/s/admin/points/events", "staff", "admin", map[string]any{"user_id": "u1", "type": "CLASS_ENROLL"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, out := env.do(t, "POST", "/s/admin/points/events", "staff", "admin",
		map[string]any{"user_id": "u1", "sede_id": env.sedeID, "type": "CHALLENGE_COMPLETE"})
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "failed to register point event", out["error"])
}

func TestCreateSessionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"routine_id": env.routID,
		"performances": []map[string]any{
			{"exercise_id": env.squat, "sets": []map[string]any{{"reps": 10, "weight": 50}, {"reps": 8, "weight": 55}, {"reps": 6, "weight": 60}}},
			{"exercise_id": env.bench, "sets": []map[string]any{{"reps": 10, "weight": 40}}},
		},
	}

	resp, out := env.do(t, "POST", "/s/sessions", "u1", "", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 64, out["points_awarded"])
	session := out["session"].(map[string]any)
	assert.Equal(t, "PARTIAL", session["status"])
	assert.Equal(t, "u1", session["user_id"])

	resp, out = env.do(t, "GET", "/s/sessions?page=1&limit=5", "u1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, out["total"])

	resp, out = env.do(t, "GET", "/s/leaderboard/users?period=7d", "u1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	rows := out["rows"].([]any)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 64, rows[0].(map[string]any)["total_points"])
}

func TestCreateSessionEndpointErrors(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, "POST", "/s/sessions", "u1", "", map[string]any{"performances": []any{}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, "POST", "/s/sessions", "u1", "", map[string]any{"routine_id": "missing"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, "POST", "/s/sessions", "", "", map[string]any{"routine_id": env.routID})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLevelAndChallengeEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, out := env.do(t, "GET", "/s/me/level", "u1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, out["level"])
	assert.Equal(t, false, out["challenges_unlocked"])

	resp, out = env.do(t, "GET", "/s/me/challenges?frequency=weekly", "u1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "WEEKLY", out["frequency"])
	assert.Empty(t, out["challenges"])

	resp, _ = env.do(t, "GET", "/s/me/challenges?frequency=yearly", "u1", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, "POST", "/s/me/level/ack", "u1", "", nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode, "no identity provider configured")
}

func TestLeaderboardRejectsUnknownPeriod(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, "GET", "/s/leaderboard/sedes?period=year", "u1", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestBadgeEndpoints(t *testing.T) {
	env := newTestEnv(t)
	badge := models.Badge{Name: "Primera clase", Metric: models.BadgeMetricClassEnrollCount, Threshold: 1}
	require.NoError(t, env.db.Create(&badge).Error)

	resp, out := env.do(t, "POST", "/s/me/badges/evaluate", "u1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, out["new_badges"])

	require.NoError(t, env.db.Create(&models.PointEvent{UserID: "u1", SedeID: env.sedeID, Type: models.PointEventClassEnroll, Points: 10}).Error)
	resp, out = env.do(t, "POST", "/s/me/badges/evaluate", "u1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, out["new_badges"], 1)

	resp, out = env.do(t, "GET", "/s/me/badges", "u1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := out["badges"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, true, list[0].(map[string]any)["earned"])
}

func iconRequest(t *testing.T, code string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="icon"; filename="medal.PNG"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("PUT", "/s/admin/badges/"+code+"/icon", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("X-User-ID", "staff")
	req.Header.Set("X-User-Roles", "admin")
	return req
}

func TestBadgeIconUpload(t *testing.T) {
	env := newTestEnv(t)
	badge := models.Badge{Name: "Primera clase", Metric: models.BadgeMetricClassEnrollCount, Threshold: 1}
	require.NoError(t, env.db.Create(&badge).Error)

	resp, out := env.send(t, iconRequest(t, badge.Code))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://cdn.gym.test/"+env.icons.key, out["icon"])
	assert.Regexp(t, `^badges/primera_clase-[0-9a-f]{8}\.png$`, env.icons.key)
	assert.Equal(t, "png-bytes", env.icons.body)

	resp, _ = env.send(t, iconRequest(t, "UNKNOWN"))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestResetDisabled(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, "POST", "/s/admin/reset", "staff", "admin", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
