package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/akulov/points-api/internal/events"
	"github.com/akulov/points-api/internal/models"
	"github.com/akulov/points-api/internal/repo"
	"github.com/akulov/points-api/internal/service"
	pkg_hash "github.com/akulov/points-api/pkg/hash"
)

var testSecret = []byte("test-jwt-secret")

type testEnv struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RevokedToken{}))

	gormRepo := &repo.GormRepo{DB: db}
	producer := events.NewProducer("")

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	Register(e, &Deps{
		AuthHandler: &AuthHTTP{Svc: &service.AuthService{
			Repo:      gormRepo,
			Events:    producer,
			JWTSecret: testSecret,
			TokenTTL:  time.Hour,
		}},
		UserHandler:  &UserHTTP{Svc: &service.UserService{Repo: gormRepo, Events: producer}},
		AdminHandler: &AdminHTTP{Svc: &service.UserService{Repo: gormRepo, Events: producer}},
		JWTSecret:    testSecret,
		Repo:         gormRepo,
	})

	return &testEnv{t: t, e: e, db: db}
}

func (env *testEnv) doJSON(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder) map[string]any {
	env.t.Helper()

	var out map[string]any
	require.NoError(env.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (env *testEnv) register(username, email, password, role string) *httptest.ResponseRecorder {
	return env.doJSON(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"role":     role,
	}, "")
}

func (env *testEnv) login(email, password string) *httptest.ResponseRecorder {
	return env.doJSON(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
}

// seedAdmin provisions the privileged account out of band, the only way an
// admin ever comes to exist.
func (env *testEnv) seedAdmin(password string) *models.User {
	env.t.Helper()

	pwHash, err := pkg_hash.HashPassword(password)
	require.NoError(env.t, err)
	admin := models.User{
		Username:     "root",
		Email:        "root@x.com",
		PasswordHash: pwHash,
		Role:         models.RoleAdmin,
	}
	require.NoError(env.t, env.db.Create(&admin).Error)
	return &admin
}

func (env *testEnv) adminToken() string {
	env.t.Helper()

	env.seedAdmin("rootpw")
	rec := env.login("root@x.com", "rootpw")
	require.Equal(env.t, http.StatusOK, rec.Code)
	return env.decode(rec)["token"].(string)
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.register("alice", "a@x.com", "p1", models.RoleDeveloper)
	require.Equal(t, http.StatusOK, rec.Code)

	body := env.decode(rec)
	require.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "a@x.com", user["email"])
	require.Equal(t, models.RoleDeveloper, user["role"])
	require.Equal(t, float64(0), user["points"])
	require.NotContains(t, rec.Body.String(), "password", "hash must never leave the store boundary")
}

func TestRegister_Failures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.register("alice", "a@x.com", "p1", models.RoleDeveloper)
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		role     string
		wantCode int
		wantErr  string
	}{
		{name: "missing field", username: "bob", email: "", password: "p1", role: models.RoleQATester, wantCode: 400, wantErr: "All fields are required"},
		{name: "admin role", username: "bob", email: "b@x.com", password: "p1", role: models.RoleAdmin, wantCode: 403, wantErr: "Cannot register with admin role"},
		{name: "unknown role", username: "bob", email: "b@x.com", password: "p1", role: "wizard", wantCode: 400, wantErr: "Invalid role"},
		{name: "duplicate username", username: "alice", email: "b@x.com", password: "p1", role: models.RoleQATester, wantCode: 400, wantErr: "User already exists with this email or username"},
		{name: "duplicate email", username: "bob", email: "a@x.com", password: "p1", role: models.RoleQATester, wantCode: 400, wantErr: "User already exists with this email or username"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := env.register(tt.username, tt.email, tt.password, tt.role)
			require.Equal(t, tt.wantCode, rec.Code)
			require.Equal(t, tt.wantErr, env.decode(rec)["error"])
		})
	}
}

func TestLogin_GenericRejection(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.register("alice", "a@x.com", "p1", models.RoleDeveloper)
	require.Equal(t, http.StatusOK, rec.Code)

	recUnknown := env.login("nobody@x.com", "p1")
	recWrongPw := env.login("a@x.com", "wrong")

	require.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	require.Equal(t, http.StatusUnauthorized, recWrongPw.Code)
	require.Equal(t, recUnknown.Body.String(), recWrongPw.Body.String(),
		"unknown email and wrong password must be indistinguishable")
	require.Equal(t, "Invalid credentials", env.decode(recWrongPw)["error"])
}

func TestListUsers_SelfScoped(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.register("alice", "a@x.com", "p1", models.RoleDeveloper).Code)
	require.Equal(t, http.StatusOK, env.register("carol", "c@x.com", "p1", models.RoleDeveloper).Code)
	require.Equal(t, http.StatusOK, env.register("bob", "b@x.com", "p1", models.RoleQATester).Code)

	rec := env.login("a@x.com", "p1")
	require.Equal(t, http.StatusOK, rec.Code)
	token := env.decode(rec)["token"].(string)

	listRec := env.doJSON(http.MethodGet, "/api/v1/users", nil, token)
	require.Equal(t, http.StatusOK, listRec.Code)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	for _, u := range users {
		require.Equal(t, models.RoleDeveloper, u["role"])
	}
}

func TestSortedUsers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.register("low", "l@x.com", "p1", models.RoleDeveloper).Code)
	require.Equal(t, http.StatusOK, env.register("high", "h@x.com", "p1", models.RoleDeveloper).Code)
	require.NoError(t, env.db.Model(&models.User{}).Where("username = ?", "high").Update("points", 999).Error)

	rec := env.login("l@x.com", "p1")
	require.Equal(t, http.StatusOK, rec.Code)
	token := env.decode(rec)["token"].(string)

	tests := []struct {
		name  string
		query string
		first string
	}{
		{name: "default descending", query: "", first: "high"},
		{name: "ascending", query: "?order=asc", first: "low"},
		{name: "garbage falls back to descending", query: "?order=whatever", first: "high"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sortedRec := env.doJSON(http.MethodGet, "/api/v1/sortedusers"+tt.query, nil, token)
			require.Equal(t, http.StatusOK, sortedRec.Code)

			var users []map[string]any
			require.NoError(t, json.Unmarshal(sortedRec.Body.Bytes(), &users))
			require.Len(t, users, 2)
			require.Equal(t, tt.first, users[0]["username"])
		})
	}
}

func TestAdminRoutes_RejectNonAdmin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.register("alice", "a@x.com", "p1", models.RoleDeveloper)
	require.Equal(t, http.StatusOK, rec.Code)
	token := env.decode(rec)["token"].(string)

	adminRec := env.doJSON(http.MethodGet, "/api/v1/admin/users", nil, token)
	require.Equal(t, http.StatusUnauthorized, adminRec.Code)
	require.Equal(t, "Not authorized", env.decode(adminRec)["error"])
}

func TestAdmin_DeleteUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.adminToken()

	rec := env.register("alice", "a@x.com", "p1", models.RoleDeveloper)
	require.Equal(t, http.StatusOK, rec.Code)
	id := uint(env.decode(rec)["user"].(map[string]any)["id"].(float64))

	delRec := env.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", id), nil, token)
	require.Equal(t, http.StatusOK, delRec.Code)
	require.Equal(t, "User deleted successfully", env.decode(delRec)["message"])

	missingRec := env.doJSON(http.MethodDelete, "/api/v1/admin/users/99", nil, token)
	require.Equal(t, http.StatusNotFound, missingRec.Code)
	require.Equal(t, "User not found", env.decode(missingRec)["error"])
}

func TestAdmin_UpdatePoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.adminToken()

	rec := env.register("alice", "a@x.com", "p1", models.RoleDeveloper)
	require.Equal(t, http.StatusOK, rec.Code)
	id := uint(env.decode(rec)["user"].(map[string]any)["id"].(float64))

	updRec := env.doJSON(http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%d/points", id),
		map[string]int{"points": 250}, token)
	require.Equal(t, http.StatusOK, updRec.Code)
	require.Equal(t, "User points updated successfully", env.decode(updRec)["message"])

	var stored models.User
	require.NoError(t, env.db.First(&stored, id).Error)
	require.Equal(t, 250, stored.Points)

	missingRec := env.doJSON(http.MethodPut, "/api/v1/admin/users/99/points",
		map[string]int{"points": 250}, token)
	require.Equal(t, http.StatusNotFound, missingRec.Code)
	require.Equal(t, "User not found", env.decode(missingRec)["error"])

	noBodyRec := env.doJSON(http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%d/points", id),
		map[string]string{}, token)
	require.Equal(t, http.StatusBadRequest, noBodyRec.Code)
	require.Equal(t, "Points value is required", env.decode(noBodyRec)["error"])
}

func TestLogout_RevokesToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.register("alice", "a@x.com", "p1", models.RoleDeveloper)
	require.Equal(t, http.StatusOK, rec.Code)
	token := env.decode(rec)["token"].(string)

	outRec := env.doJSON(http.MethodPost, "/api/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, outRec.Code)
	require.Equal(t, "Logged out successfully", env.decode(outRec)["message"])

	// the exact string is now dead even though signature and expiry still hold
	reuseRec := env.doJSON(http.MethodGet, "/api/v1/users", nil, token)
	require.Equal(t, http.StatusUnauthorized, reuseRec.Code)
	require.Equal(t, "Token invalidated", env.decode(reuseRec)["error"])
}

func TestProtectedRoutes_TokenFailures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	missingRec := env.doJSON(http.MethodGet, "/api/v1/users", nil, "")
	require.Equal(t, http.StatusUnauthorized, missingRec.Code)
	require.Equal(t, "Access token required", env.decode(missingRec)["error"])

	invalidRec := env.doJSON(http.MethodGet, "/api/v1/users", nil, "not-a-jwt")
	require.Equal(t, http.StatusForbidden, invalidRec.Code)
	require.Equal(t, "Invalid token", env.decode(invalidRec)["error"])
}

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.doJSON(http.MethodGet, "/health/live", nil, "").Code)
	require.Equal(t, http.StatusOK, env.doJSON(http.MethodGet, "/health/ready", nil, "").Code)
}
