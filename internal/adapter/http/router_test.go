package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ict-ticketing/internal/adapter/middleware"
	"ict-ticketing/internal/adapter/repository/sqlstore"
	"ict-ticketing/internal/config"
	"ict-ticketing/internal/infrastructure/db"
	"ict-ticketing/internal/infrastructure/metrics"
	"ict-ticketing/internal/infrastructure/security"
	"ict-ticketing/internal/usecase/auth"
	"ict-ticketing/internal/usecase/inventory"
	"ict-ticketing/internal/usecase/ticket"
	"ict-ticketing/pkg/id"
)

var reRequestCode = regexp.MustCompile(`^REQ-[0-9A-F]{8}$`)

type apiEnv struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T, strict bool) *apiEnv {
	t.Helper()
	gdb, err := db.OpenGorm(config.DriverSQLite, ":memory:", "silent", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	issuer, err := security.NewJWTIssuer("router-test-secret-0123456789abcdef")
	require.NoError(t, err)
	m := metrics.New("ticketing")

	users := sqlstore.NewUserRepository(gdb)
	authUC := auth.NewUsecase(users, security.NewBcryptHasher(bcrypt.MinCost), issuer, time.Hour, nil)
	invUC := inventory.NewUsecase(sqlstore.NewDeviceRepository(gdb), nil)
	ticketUC := ticket.NewUsecase(
		sqlstore.NewRequestRepository(gdb),
		sqlstore.NewGormUoW(gdb),
		ticket.WithStrictTransitions(strict),
		ticket.WithObserver(m),
	)

	e := NewRouter(RouterDeps{
		Auth:           authUC,
		Inventory:      invUC,
		Tickets:        ticketUC,
		Redis:          rdb,
		IdempotencyTTL: time.Minute,
		Metrics:        m,
		HealthChecks:   map[string]HealthCheck{"database": sqlDB.PingContext},
	})
	return &apiEnv{t: t, e: e}
}

func (a *apiEnv) do(method, path, token string, body any, hdr ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *apiEnv) signup(username, password, role string) map[string]any {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": username, "email": username + "@x.io", "password": password, "role": role,
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeObj(a.t, rec)
}

func (a *apiEnv) login(username, password string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/token", "", map[string]string{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeObj(a.t, rec)
	assert.Equal(a.t, "bearer", body["token_type"])
	return body["access_token"].(string)
}

func decodeObj(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestScenario_SubmitAndApprove(t *testing.T) {
	api := newAPI(t, false)

	alice := api.signup("alice", "pw1", "")
	assert.Equal(t, "user", alice["role"])
	assert.NotContains(t, alice, "hashed_password")
	api.signup("bob", "pw2", "approver")

	aliceTok := api.login("alice", "pw1")
	bobTok := api.login("bob", "pw2")

	rec := api.do(http.MethodPost, "/api/requests/", aliceTok, map[string]any{
		"device": "Laptop", "quantity": 2, "status": "approved",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeObj(t, rec)
	assert.Equal(t, "pending", created["status"], "client-supplied status must be ignored")
	assert.EqualValues(t, 2, created["quantity"])
	assert.Regexp(t, reRequestCode, created["request_code"])
	code := created["request_code"].(string)
	reqID := int(created["id"].(float64))

	// plain users cannot see the queue
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/requests/pending", aliceTok, nil).Code)

	rec = api.do(http.MethodGet, "/api/requests/pending", bobTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decodeList(t, rec)
	require.Len(t, pending, 1)
	assert.Equal(t, code, pending[0]["request_code"])

	// and cannot decide
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, pathf("/api/requests/%d/approve", reqID), aliceTok, nil).Code)

	rec = api.do(http.MethodPost, pathf("/api/requests/%d/approve", reqID), bobTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Request "+code+" approved", decodeObj(t, rec)["message"])

	rec = api.do(http.MethodGet, "/api/requests/me", aliceTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeList(t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, "approved", mine[0]["status"])
	assert.Nil(t, mine[0]["reject_reason"])

	// pending queue is empty again
	assert.Empty(t, decodeList(t, api.do(http.MethodGet, "/api/requests/pending", bobTok, nil)))
}

func TestScenario_Inventory(t *testing.T) {
	api := newAPI(t, false)
	api.signup("root", "pw", "admin")
	api.signup("alice", "pw1", "")
	adminTok := api.login("root", "pw")
	aliceTok := api.login("alice", "pw1")

	rec := api.do(http.MethodPost, "/api/inventory/", adminTok, map[string]any{"device_id": "DEV-001", "type": "Laptop"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Available", decodeObj(t, rec)["status"])

	rec = api.do(http.MethodPost, "/api/inventory/", adminTok, map[string]any{"device_id": "DEV-001", "type": "Phone"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "device id already exists", decodeObj(t, rec)["error"])

	rec = api.do(http.MethodPatch, "/api/inventory/DEV-001/status", adminTok, map[string]string{"status": "Issued"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Updated", decodeObj(t, rec)["message"])

	rec = api.do(http.MethodGet, "/api/inventory", aliceTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Issued", list[0]["status"])
	assert.Equal(t, "Laptop", list[0]["type"])

	// non-admins cannot mutate
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/inventory", aliceTok, map[string]any{"device_id": "X", "type": "Y"}).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/api/inventory/DEV-001", aliceTok, nil).Code)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPatch, "/api/inventory/DEV-404/status", adminTok, map[string]string{"status": "Issued"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodPatch, "/api/inventory/DEV-001/status", adminTok, map[string]string{}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodPost, "/api/inventory", adminTok, map[string]any{"device_id": "DEV-2"}).Code)

	rec = api.do(http.MethodDelete, "/api/inventory/DEV-001", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted", decodeObj(t, rec)["message"])
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/inventory/DEV-001", adminTok, nil).Code)
}

func TestScenario_RejectIssueAndMissing(t *testing.T) {
	api := newAPI(t, false)
	api.signup("alice", "pw1", "")
	api.signup("bob", "pw2", "approver")
	api.signup("root", "pw", "admin")
	aliceTok := api.login("alice", "pw1")
	bobTok := api.login("bob", "pw2")
	adminTok := api.login("root", "pw")

	submit := func() int {
		rec := api.do(http.MethodPost, "/api/requests", aliceTok, map[string]any{"device": "Monitor", "purpose": "desk"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeObj(t, rec)
		assert.EqualValues(t, 1, body["quantity"])
		return int(body["id"].(float64))
	}
	first, second := submit(), submit()

	rec := api.do(http.MethodPost, pathf("/api/requests/%d/reject", first), bobTok, map[string]string{"reason": "out of stock"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasSuffix(decodeObj(t, rec)["message"].(string), " rejected"))

	// reject without a body stores an empty reason
	rec = api.do(http.MethodPost, pathf("/api/requests/%d/reject", second), bobTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	mine := decodeList(t, api.do(http.MethodGet, "/api/requests/me", aliceTok, nil))
	require.Len(t, mine, 2)
	assert.EqualValues(t, second, mine[0]["id"], "newest first")
	assert.Equal(t, "", mine[0]["reject_reason"])
	assert.Equal(t, "out of stock", mine[1]["reject_reason"])

	// issuing needs an approved request and an admin
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, pathf("/api/requests/%d/issue", first), adminTok, nil).Code)
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, pathf("/api/requests/%d/approve", first), bobTok, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, pathf("/api/requests/%d/issue", first), bobTok, nil).Code)
	rec = api.do(http.MethodPost, pathf("/api/requests/%d/issue", first), adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasSuffix(decodeObj(t, rec)["message"].(string), " issued"))

	for _, p := range []string{"/api/requests/9999/approve", "/api/requests/9999/reject", "/api/requests/9999/issue"} {
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, p, adminTok, nil).Code, p)
	}
	assert.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodPost, "/api/requests/abc/approve", bobTok, nil).Code)
}

func TestScenario_StrictTransitions(t *testing.T) {
	api := newAPI(t, true)
	api.signup("alice", "pw1", "")
	api.signup("bob", "pw2", "approver")
	aliceTok := api.login("alice", "pw1")
	bobTok := api.login("bob", "pw2")

	rec := api.do(http.MethodPost, "/api/requests", aliceTok, map[string]any{"device": "Laptop"})
	require.Equal(t, http.StatusOK, rec.Code)
	reqID := int(decodeObj(t, rec)["id"].(float64))

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, pathf("/api/requests/%d/reject", reqID), bobTok, map[string]string{"reason": "no"}).Code)
	rec = api.do(http.MethodPost, pathf("/api/requests/%d/approve", reqID), bobTok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", decodeObj(t, rec)["kind"])
}

func TestScenario_Credentials(t *testing.T) {
	api := newAPI(t, false)
	api.signup("alice", "pw1", "")

	rec := api.do(http.MethodPost, "/api/auth/token", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPw := decodeObj(t, rec)["error"]
	rec = api.do(http.MethodPost, "/api/auth/token", "", map[string]string{"username": "nobody", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrongPw, decodeObj(t, rec)["error"])

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/auth/token", "", map[string]string{"username": "alice"}).Code)

	// duplicates
	rec = api.do(http.MethodPost, "/api/auth/signup", "", map[string]any{"username": "alice", "email": "other@x.io", "password": "p"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username already exists", decodeObj(t, rec)["error"])
	rec = api.do(http.MethodPost, "/api/auth/signup", "", map[string]any{"username": "al2", "email": "alice@x.io", "password": "p"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email already exists", decodeObj(t, rec)["error"])

	rec = api.do(http.MethodPost, "/api/auth/signup", "", map[string]any{"username": "z", "email": "not-an-email", "password": "p"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation failed", decodeObj(t, rec)["error"])

	// identity
	tok := api.login("alice", "pw1")
	rec = api.do(http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeObj(t, rec)
	assert.Equal(t, "alice", me["username"])
	assert.NotContains(t, me, "hashed_password")

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/requests/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/requests/me", tok+"x", nil).Code)
}

func TestScenario_IdempotentSubmit(t *testing.T) {
	api := newAPI(t, false)
	api.signup("alice", "pw1", "")
	tok := api.login("alice", "pw1")
	key := id.NewID32()

	body := map[string]any{"device": "Laptop"}
	first := api.do(http.MethodPost, "/api/requests", tok, body, middleware.HeaderIdempotencyKey, key)
	second := api.do(http.MethodPost, "/api/requests", tok, body, middleware.HeaderIdempotencyKey, key)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// without a key a retry is a new request
	api.do(http.MethodPost, "/api/requests", tok, body)
	assert.Len(t, decodeList(t, api.do(http.MethodGet, "/api/requests/me", tok, nil)), 2)
}

func TestScenario_HealthAndMetrics(t *testing.T) {
	api := newAPI(t, false)
	api.signup("alice", "pw1", "")
	tok := api.login("alice", "pw1")
	api.do(http.MethodPost, "/api/requests", tok, map[string]any{"device": "Laptop"})

	rec := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"database": "ok"}, decodeObj(t, rec)["checks"])

	rec = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ticketing_requests_submitted_total 1")
	assert.Contains(t, rec.Body.String(), `route="/api/requests"`)
}

func TestScenario_LongPassword(t *testing.T) {
	api := newAPI(t, false)
	long := strings.Repeat("p", 80)

	api.signup("alice", long, "")
	tok := api.login("alice", long)
	assert.NotEmpty(t, tok)

	// a 72-byte prefix is a different password
	rec := api.do(http.MethodPost, "/api/auth/token", "", map[string]string{"username": "alice", "password": long[:72]})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScenario_PanicIsRecoveredAndCounted(t *testing.T) {
	api := newAPI(t, false)
	api.e.GET("/api/explode", func(c echo.Context) error { panic("kaboom") })

	rec := api.do(http.MethodGet, "/api/explode", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ticketing_http_requests_total{method="GET",route="/api/explode",status="500"} 1`)
}
