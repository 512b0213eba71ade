package routes_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/config"
	"eventhub/mocks"
	"eventhub/models"
	"eventhub/routes"
	"eventhub/utils"
)

/* ---------- helpers ---------- */

type server struct {
	s      *gin.Engine
	store  *mocks.Store
	tokens *utils.Tokens
	mr     *miniredis.Miniredis
}

func generousLimits() config.LimitsConfig {
	return config.LimitsConfig{
		GlobalRPS: 1000, GlobalBurst: 1000,
		UserRPS: 1000, UserBurst: 1000,
		LoginRPS: 1000, LoginBurst: 1000,
		DailyQuota:    10000,
		LoginAttempts: 1000,
		LoginWindow:   time.Minute,
	}
}

func setupServer(t *testing.T, mutate ...func(*routes.Deps)) server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := mocks.NewStore()
	tokens := utils.NewTokens("test-secret", time.Hour)
	deps := routes.Deps{
		Users:         store.UserRepo(),
		Events:        store.EventRepo(),
		Participants:  store.ParticipantRepo(),
		Registrations: store.RegistrationRepo(),
		Dashboard:     store.DashboardRepo(),
		Tokens:        tokens,
		Redis:         rdb,
		Log:           log,
		Limits:        generousLimits(),
	}
	for _, m := range mutate {
		m(&deps)
	}

	s := gin.New()
	routes.RegisterRoutes(ctx, s, deps)
	return server{s: s, store: store, tokens: tokens, mr: mr}
}

func doReq(s *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

// authToken seeds a user with the role and returns a token for it.
func (sv server) authToken(t *testing.T, role models.Role) (string, models.User) {
	t.Helper()
	u := sv.store.AddUser(string(role)+"-"+uuid.NewString()[:8]+"@example.com", "secret1", role)
	token, err := sv.tokens.GenerateToken(utils.Principal{ID: u.ID, Email: u.Email, Role: string(u.Role)})
	require.NoError(t, err)
	return token, u
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
	Detail string `json:"detail"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

/* ---------- health ---------- */

func TestHealth(t *testing.T) {
	sv := setupServer(t)
	w := doReq(sv.s, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", decode[map[string]string](t, w)["status"])
}

func TestHealthDB_PingFailure(t *testing.T) {
	sv := setupServer(t, func(d *routes.Deps) {
		d.Ping = func(context.Context) error { return errors.New("connection refused") }
	})
	w := doReq(sv.s, http.MethodGet, "/health/db", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ERROR", decode[map[string]string](t, w)["status"])
}

/* ---------- auth ---------- */

func TestLogin_OK(t *testing.T) {
	sv := setupServer(t)
	u := sv.store.AddUser("staff@example.com", "secret1", models.RoleStaff)

	w := doReq(sv.s, http.MethodPost, "/api/auth/login", `{"email":"staff@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[struct {
		Token string `json:"token"`
		User  struct {
			ID       uuid.UUID `json:"id"`
			Email    string    `json:"email"`
			Role     string    `json:"role"`
			FullName string    `json:"fullName"`
		} `json:"user"`
	}](t, w)
	assert.Equal(t, u.ID, body.User.ID)
	assert.Equal(t, "staff", body.User.Role)

	p, err := sv.tokens.VerifyToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
}

func TestLogin_BadPassword_401(t *testing.T) {
	sv := setupServer(t)
	sv.store.AddUser("staff@example.com", "secret1", models.RoleStaff)

	w := doReq(sv.s, http.MethodPost, "/api/auth/login", `{"email":"staff@example.com","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode[apiError](t, w).Message)
}

func TestLogin_AttemptQuota(t *testing.T) {
	sv := setupServer(t, func(d *routes.Deps) { d.Limits.LoginAttempts = 2 })

	for i := 0; i < 2; i++ {
		w := doReq(sv.s, http.MethodPost, "/api/auth/login", `{"email":"x@example.com","password":"nope"}`, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := doReq(sv.s, http.MethodPost, "/api/auth/login", `{"email":"x@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestMe(t *testing.T) {
	sv := setupServer(t)
	token, u := sv.authToken(t, models.RoleStaff)

	w := doReq(sv.s, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, u.Email, decode[map[string]any](t, w)["email"])
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	sv := setupServer(t)
	for _, path := range []string{"/api/events", "/api/participants", "/api/registrations", "/api/dashboard", "/api/users"} {
		w := doReq(sv.s, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestUsersRoutes_AdminOnly(t *testing.T) {
	sv := setupServer(t)
	staff, _ := sv.authToken(t, models.RoleStaff)
	admin, _ := sv.authToken(t, models.RoleAdmin)

	w := doReq(sv.s, http.MethodGet, "/api/users", "", staff)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doReq(sv.s, http.MethodGet, "/api/users", "", admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

/* ---------- dashboard ---------- */

func TestDashboard_Shape(t *testing.T) {
	sv := setupServer(t)
	token, _ := sv.authToken(t, models.RoleStaff)
	pct := 75.5
	sv.store.Stats = models.Dashboard{
		TotalEvents: 4, PublishedEvents: 2, TodayRegistrations: 9,
		TopEvents: []models.TopEvent{
			{ID: uuid.New(), Title: "Busy", MaxParticipants: 200, CurrentCount: 151, FillPercentage: &pct},
			{ID: uuid.New(), Title: "No seats", MaxParticipants: 0, CurrentCount: 0},
		},
	}

	w := doReq(sv.s, http.MethodGet, "/api/dashboard", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 4, body["totalEvents"])
	assert.EqualValues(t, 2, body["publishedEvents"])
	assert.EqualValues(t, 9, body["todayRegistrations"])
	top := body["topEvents"].([]any)
	require.Len(t, top, 2)
	assert.EqualValues(t, 75.5, top[0].(map[string]any)["fill_percentage"])
	second := top[1].(map[string]any)
	v, present := second["fill_percentage"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestDashboard_EmptyTopEvents(t *testing.T) {
	sv := setupServer(t)
	token, _ := sv.authToken(t, models.RoleAdmin)

	w := doReq(sv.s, http.MethodGet, "/api/dashboard", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"topEvents":[]`)
}

/* ---------- failures ---------- */

type brokenEvents struct{ models.EventRepository }

func (brokenEvents) List(context.Context, models.EventFilter) ([]models.Event, error) {
	return nil, errors.New("pq: connection reset")
}

func TestUnexpectedError_500(t *testing.T) {
	sv := setupServer(t, func(d *routes.Deps) {
		d.Events = brokenEvents{d.Events}
		d.ExposeErrors = true
	})
	token, _ := sv.authToken(t, models.RoleStaff)

	w := doReq(sv.s, http.MethodGet, "/api/events", "", token)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[apiError](t, w)
	assert.Equal(t, "internal_error", body.Error)
	assert.Equal(t, "pq: connection reset", body.Detail)
}
