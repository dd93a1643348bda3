package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-admin/internal/auth"
	mw "github.com/ukydev/fleet-admin/internal/middleware"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/query"
	"github.com/ukydev/fleet-admin/internal/service"
)

const testActor = "4821930571"

type MockOperations struct {
	mock.Mock
}

func (m *MockOperations) Login(ctx context.Context, form service.LoginForm) (string, error) {
	args := m.Called(ctx, form)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) CreateOrganization(ctx context.Context, actor string, form service.CreateOrganizationForm) (string, error) {
	args := m.Called(ctx, actor, form)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) EditOrganization(ctx context.Context, actor string, ref service.OrganizationRef, form service.EditOrganizationForm) (string, error) {
	args := m.Called(ctx, actor, ref, form)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) DeleteOrganization(ctx context.Context, actor string, form service.DeleteOrganizationForm) (service.CascadeReport, error) {
	args := m.Called(ctx, actor, form)
	return args.Get(0).(service.CascadeReport), args.Error(1)
}

func (m *MockOperations) ViewOrganizations(ctx context.Context, actor string, filter query.OrganizationFilter, extra models.Extra) ([]models.Organization, error) {
	args := m.Called(ctx, actor, filter, extra)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Organization), args.Error(1)
}

func (m *MockOperations) Dashboard(ctx context.Context, actor string) (models.DashboardCounts, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(models.DashboardCounts), args.Error(1)
}

func (m *MockOperations) CreateUser(ctx context.Context, actor string, form service.CreateUserForm) (string, error) {
	args := m.Called(ctx, actor, form)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) UpdateUser(ctx context.Context, actor string, ref service.UserRef, form service.UpdateUserForm) (string, error) {
	args := m.Called(ctx, actor, ref, form)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) DeleteUser(ctx context.Context, actor string, ref service.UserRef) (string, error) {
	args := m.Called(ctx, actor, ref)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) ViewUsers(ctx context.Context, actor string, filter query.UserFilter, extra models.Extra) ([]models.OrganizationUser, error) {
	args := m.Called(ctx, actor, filter, extra)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrganizationUser), args.Error(1)
}

func (m *MockOperations) UpdatePassword(ctx context.Context, actor string, form service.UpdatePasswordForm) (string, error) {
	args := m.Called(ctx, actor, form)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) CreateTracker(ctx context.Context, actor string, form service.CreateTrackerForm) (string, error) {
	args := m.Called(ctx, actor, form)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) UpdateTracker(ctx context.Context, actor string, form service.UpdateTrackerForm) (string, error) {
	args := m.Called(ctx, actor, form)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) DeleteTracker(ctx context.Context, actor string, ref service.TrackerRef) (string, error) {
	args := m.Called(ctx, actor, ref)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) RemoveTracker(ctx context.Context, actor string, ref service.TrackerRef) (string, error) {
	args := m.Called(ctx, actor, ref)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) ViewTrackers(ctx context.Context, actor string, filter query.TrackerFilter, extra models.Extra) ([]models.Tracker, error) {
	args := m.Called(ctx, actor, filter, extra)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tracker), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

type auditEntry struct {
	user, role, endpoint string
}

type recordingAuditor struct {
	entries []auditEntry
}

func (a *recordingAuditor) Record(user, role, endpoint string) {
	a.entries = append(a.entries, auditEntry{user, role, endpoint})
}

type harness struct {
	ops        *MockOperations
	audit      *recordingAuditor
	router     http.Handler
	tokens     *auth.Service
	hook       *test.Hook
	adminToken string
	orgToken   string
}

func newHarness(t *testing.T, store Pinger) *harness {
	t.Helper()
	return buildHarness(t, store, false)
}

func buildHarness(t *testing.T, store Pinger, trustProxy bool) *harness {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	tokens := auth.NewService("handler-secret", clk)
	ops := &MockOperations{}
	auditor := &recordingAuditor{}
	router := NewRouter(RouterConfig{
		Admin:          NewAdminHandler(ops, auditor, time.Second, logger),
		Gate:           mw.NewAuthMiddleware(tokens, nil, logger),
		Limiter:        mw.NewRateLimitMiddleware(clk),
		LoginRateLimit: 3,
		LoginWindow:    time.Minute,
		TrustProxy:     trustProxy,
		Store:          store,
		Log:            logger,
	})

	adminToken, err := tokens.GenerateToken(testActor, map[string]interface{}{auth.ClaimAccountType: "admin"})
	require.NoError(t, err)
	orgToken, err := tokens.GenerateToken("4821930572", map[string]interface{}{auth.ClaimAccountType: "orgadmin"})
	require.NoError(t, err)

	return &harness{ops: ops, audit: auditor, router: router, tokens: tokens, hook: hook, adminToken: adminToken, orgToken: orgToken}
}

// post sends body to path and decodes the JSON reply.
func (h *harness) post(t *testing.T, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr.Code, out
}

// envelope renders a wrapped request body with the given token.
func envelope(key, inner string) string {
	if inner == "" {
		return `{"data":{"key":"` + key + `"}}`
	}
	return `{"data":{"key":"` + key + `",` + inner + `}}`
}

func TestLogin(t *testing.T) {
	h := newHarness(t, nil)
	form := service.LoginForm{LoginName: "root", Password: "s3cret"}
	h.ops.On("Login", mock.Anything, form).Return("signed.jwt.token", nil).Twice()

	for _, body := range []string{
		`{"data":{"form":{"loginname":"root","password":"s3cret"}}}`,
		`{"form":{"loginname":"root","password":"s3cret"}}`,
	} {
		status, out := h.post(t, "/api/admin/login", body)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "success", out["status"])
		assert.Equal(t, "signed.jwt.token", out["token"])
	}
	h.ops.AssertExpectations(t)
}

func TestLogin_Failures(t *testing.T) {
	h := newHarness(t, nil)
	h.ops.On("Login", mock.Anything, service.LoginForm{LoginName: "root", Password: "nope"}).
		Return("", service.Unauthorized(service.CodeInvalidKey))
	h.ops.On("Login", mock.Anything, service.LoginForm{}).
		Return("", service.Invalid(service.CodeLoginValidation, "Login Name is required", "Password is required"))

	status, out := h.post(t, "/api/admin/login", `{"form":{"loginname":"root","password":"nope"}}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "failure", out["status"])
	assert.Equal(t, "SCB3", out["ec"])
	assert.NotContains(t, out, "token")

	status, out = h.post(t, "/api/admin/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SCB4", out["ec"])
	assert.Equal(t, []interface{}{"Login Name is required", "Password is required"}, out["response"])

	status, out = h.post(t, "/api/admin/login", `{"form":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SCB4", out["ec"])
}

func TestLogin_RateLimited(t *testing.T) {
	h := newHarness(t, nil)
	h.ops.On("Login", mock.Anything, mock.Anything).Return("", service.Unauthorized(service.CodeInvalidKey))

	for i := 0; i < 3; i++ {
		status, _ := h.post(t, "/api/admin/login", `{"form":{"loginname":"root","password":"guess"}}`)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
	status, out := h.post(t, "/api/admin/login", `{"form":{"loginname":"root","password":"guess"}}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "failure", out["status"])
	h.ops.AssertNumberOfCalls(t, "Login", 3)
}

func TestLogin_RateLimitIgnoresForwardedFor(t *testing.T) {
	h := newHarness(t, nil)
	h.ops.On("Login", mock.Anything, mock.Anything).Return("", service.Unauthorized(service.CodeInvalidKey))

	attempt := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"form":{"loginname":"root","password":"guess"}}`))
		req.RemoteAddr = "198.51.100.20:41000"
		req.Header.Set("X-Forwarded-For", forwarded)
		req.Header.Set("X-Real-IP", forwarded)
		rr := httptest.NewRecorder()
		h.router.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 1; i <= 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, attempt("203.0.113."+strconv.Itoa(i)))
	}
	assert.Equal(t, http.StatusTooManyRequests, attempt("203.0.113.99"))
	h.ops.AssertNumberOfCalls(t, "Login", 3)
}

func TestLogin_TrustedProxyKeysOnForwardedFor(t *testing.T) {
	h := buildHarness(t, nil, true)
	h.ops.On("Login", mock.Anything, mock.Anything).Return("", service.Unauthorized(service.CodeInvalidKey))

	attempt := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"form":{"loginname":"root","password":"guess"}}`))
		req.RemoteAddr = "10.0.0.5:41000"
		req.Header.Set("X-Forwarded-For", client)
		rr := httptest.NewRecorder()
		h.router.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, attempt("203.0.113.7"))
	}
	assert.Equal(t, http.StatusTooManyRequests, attempt("203.0.113.7"))
	// A different client behind the same proxy has its own window.
	assert.Equal(t, http.StatusUnauthorized, attempt("203.0.113.8"))
}

func TestGate_RejectsBeforeOperation(t *testing.T) {
	h := newHarness(t, nil)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"missing key", "/api/organization/view", `{"data":{"filter":{}}}`, http.StatusUnauthorized, "SCB1"},
		{"garbage key", "/api/trackers/view", envelope("not-a-token", ""), http.StatusUnauthorized, "SCB3"},
		{"dashboard needs admin", "/api/organization/dashboard", envelope(h.orgToken, ""), http.StatusForbidden, "SCB13"},
		{"user create needs admin", "/api/users/create", envelope(h.orgToken, `"form":{}`), http.StatusForbidden, "SCB13"},
		{"tracker create needs admin", "/api/trackers/create", envelope(h.orgToken, `"form":{}`), http.StatusForbidden, "SCB13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := h.post(t, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, out["ec"])
		})
	}
	assert.Empty(t, h.ops.Calls)
}

func TestGate_OrdinaryRoutesAcceptAnyRole(t *testing.T) {
	h := newHarness(t, nil)
	ref := service.UserRef{OrganizationID: "1234567890", UserID: "9876543210"}
	h.ops.On("DeleteUser", mock.Anything, "4821930572", ref).Return("9876543210", nil)

	status, out := h.post(t, "/api/users/delete",
		envelope(h.orgToken, `"form":{"organizationId":"1234567890","userId":"9876543210"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "9876543210", out["userId"])
	h.ops.AssertExpectations(t)
}

func TestOrganizationRoutes(t *testing.T) {
	h := newHarness(t, nil)

	h.ops.On("CreateOrganization", mock.Anything, testActor, mock.MatchedBy(func(f service.CreateOrganizationForm) bool {
		return f.Name == "Green Valley School" && f.Status == "active"
	})).Return("5550001111", nil)
	h.ops.On("EditOrganization", mock.Anything, testActor,
		service.OrganizationRef{OrganizationID: "5550001111"},
		mock.MatchedBy(func(f service.EditOrganizationForm) bool { return f.City == "Pune" }),
	).Return("5550001111", nil)
	h.ops.On("DeleteOrganization", mock.Anything, testActor, service.DeleteOrganizationForm{OrgID: "5550001111"}).
		Return(service.CascadeReport{Held: map[string]int64{"organization": 1}}, nil)

	status, out := h.post(t, "/api/organization/create",
		envelope(h.adminToken, `"form":{"name":"Green Valley School","status":"active"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "5550001111", out["organizationId"])

	status, out = h.post(t, "/api/organization/edit",
		envelope(h.adminToken, `"filter":{"organizationId":"5550001111"},"form":{"city":"Pune"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "5550001111", out["organizationId"])

	status, out = h.post(t, "/api/organization/delete",
		envelope(h.adminToken, `"form":{"orgId":"5550001111"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"status": "success"}, out)

	h.ops.AssertExpectations(t)
}

func TestViewOrganizations_PassesFilterAndExtra(t *testing.T) {
	h := newHarness(t, nil)
	extra := models.Extra{PageJump: 2, OrderByDateCreated: "-1"}
	orgs := []models.Organization{{Tracker: "5550001111", Name: "Green Valley School"}}
	h.ops.On("ViewOrganizations", mock.Anything, testActor, query.OrganizationFilter{City: "Pune"}, extra).Return(orgs, nil)

	status, out := h.post(t, "/api/organization/view",
		envelope(h.adminToken, `"filter":{"city":"Pune"},"extra":{"pageJump":2,"orderByDateCreated":"-1"}`))
	require.Equal(t, http.StatusOK, status)
	list, ok := out["response"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "Green Valley School", list[0].(map[string]interface{})["name"])
	h.ops.AssertExpectations(t)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, nil)
	h.ops.On("Dashboard", mock.Anything, testActor).Return(models.DashboardCounts{
		ActiveOrgCount: 4, ActiveTrackerCount: 31, ActiveAdminUC: 2, ActiveOrgAdminUC: 9,
	}, nil)

	status, out := h.post(t, "/api/organization/dashboard", envelope(h.adminToken, ""))
	require.Equal(t, http.StatusOK, status)
	stats := out["response"].(map[string]interface{})["AdminStats"].(map[string]interface{})
	assert.Equal(t, float64(4), stats["activeOrgCount"])
	assert.Equal(t, float64(31), stats["activeTrackerCount"])
	assert.Equal(t, float64(2), stats["activeAdminUC"])
	assert.Equal(t, float64(9), stats["activeOrgAdminUC"])
}

func TestUserRoutes(t *testing.T) {
	h := newHarness(t, nil)
	ref := service.UserRef{OrganizationID: "5550001111", UserID: "7770001111"}

	h.ops.On("CreateUser", mock.Anything, testActor, mock.MatchedBy(func(f service.CreateUserForm) bool {
		return f.LoginName == "driver01"
	})).Return("7770001111", nil)
	h.ops.On("UpdateUser", mock.Anything, testActor, ref, mock.MatchedBy(func(f service.UpdateUserForm) bool {
		return f.Email == "d1@example.com"
	})).Return("7770001111", nil)
	h.ops.On("UpdatePassword", mock.Anything, testActor, service.UpdatePasswordForm{
		OrganizationID: "5550001111", UserID: "7770001111", Password: "n3wpass",
	}).Return("7770001111", nil)
	h.ops.On("ViewUsers", mock.Anything, testActor, query.UserFilter{OrganizationID: "5550001111"}, models.Extra{}).
		Return([]models.OrganizationUser{{Tracker: "7770001111", Password: "plain"}}, nil)

	status, out := h.post(t, "/api/users/create", envelope(h.adminToken, `"form":{"loginname":"driver01"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "7770001111", out["userId"])

	status, out = h.post(t, "/api/users/update",
		envelope(h.adminToken, `"filter":{"organizationId":"5550001111","userId":"7770001111"},"form":{"email":"d1@example.com"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "7770001111", out["userId"])

	status, out = h.post(t, "/api/users/update-password",
		envelope(h.adminToken, `"form":{"organizationId":"5550001111","userId":"7770001111","password":"n3wpass"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "7770001111", out["userId"])

	status, out = h.post(t, "/api/users/view", envelope(h.adminToken, `"filter":{"organizationId":"5550001111"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, out["response"], 1)

	h.ops.AssertExpectations(t)
}

func TestTrackerRoutes(t *testing.T) {
	h := newHarness(t, nil)
	ref := service.TrackerRef{OrganizationID: "5550001111", TrackerID: "1700000000000KA01AB1234"}

	h.ops.On("CreateTracker", mock.Anything, testActor, mock.MatchedBy(func(f service.CreateTrackerForm) bool {
		return f.IMEI == "356938035643809" && f.VehicleInformation != nil
	})).Return(ref.TrackerID, nil)
	h.ops.On("UpdateTracker", mock.Anything, testActor, mock.MatchedBy(func(f service.UpdateTrackerForm) bool {
		return f.TrackerID == ref.TrackerID && f.IMEI2 == "356938035643810"
	})).Return(ref.TrackerID, nil)
	h.ops.On("DeleteTracker", mock.Anything, testActor, ref).Return(ref.TrackerID, nil)
	h.ops.On("RemoveTracker", mock.Anything, testActor, ref).Return(ref.TrackerID, nil)
	h.ops.On("ViewTrackers", mock.Anything, testActor, query.TrackerFilter{OrganizationID: "5550001111", IMEI: "356938035643809"}, models.Extra{}).
		Return([]models.Tracker{}, nil)

	status, out := h.post(t, "/api/trackers/create",
		envelope(h.adminToken, `"form":{"imei":"356938035643809","vehicleInformation":{"name":"Bus 1","regno":"KA01AB1234"}}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, ref.TrackerID, out["trackerId"])

	refForm := `"form":{"organizationId":"5550001111","trackerId":"1700000000000KA01AB1234"}`
	status, out = h.post(t, "/api/trackers/update",
		envelope(h.adminToken, `"form":{"organizationId":"5550001111","trackerId":"1700000000000KA01AB1234","imei2":"356938035643810"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, ref.TrackerID, out["trackerId"])

	for _, path := range []string{"/api/trackers/delete", "/api/trackers/remove"} {
		status, out = h.post(t, path, envelope(h.adminToken, refForm))
		assert.Equal(t, http.StatusOK, status, path)
		assert.Equal(t, ref.TrackerID, out["trackerId"], path)
	}

	status, out = h.post(t, "/api/trackers/view",
		envelope(h.adminToken, `"filter":{"organizationId":"5550001111","imei":"356938035643809"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{}, out["response"])

	h.ops.AssertExpectations(t)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		response interface{}
	}{
		{"validation", service.Invalid("", "Email must be a valid email"), http.StatusBadRequest, "", []interface{}{"Email must be a valid email"}},
		{"missing ids", service.Invalid(service.CodeMissingTrackerIDs), http.StatusBadRequest, "SCB5", nil},
		{"org not found", service.NotFound(service.CodeOrgNotFound), http.StatusNotFound, "SCB6", nil},
		{"imei conflict", service.Conflict(service.CodeIMEIConflict), http.StatusConflict, "SCB9", nil},
		{"fault", service.Fault("find organization", errors.New("connection reset")), http.StatusInternalServerError, "", "internal server error"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "", "internal server error"},
		{"timeout", service.Fault("find tracker", context.DeadlineExceeded), http.StatusInternalServerError, "", "store timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.ops.On("CreateTracker", mock.Anything, testActor, mock.Anything).Return("", tt.err)

			status, out := h.post(t, "/api/trackers/create", envelope(h.adminToken, `"form":{}`))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, "failure", out["status"])
			if tt.code == "" {
				assert.NotContains(t, out, "ec")
			} else {
				assert.Equal(t, tt.code, out["ec"])
			}
			if tt.response == nil {
				assert.NotContains(t, out, "response")
			} else {
				assert.Equal(t, tt.response, out["response"])
			}
			assert.NotContains(t, out, "trackerId")

			if status == http.StatusInternalServerError {
				var logged bool
				for _, e := range h.hook.AllEntries() {
					if e.Message == "operation failed" {
						logged = true
						assert.Equal(t, logrus.ErrorLevel, e.Level)
						assert.Equal(t, "/api/trackers/create", e.Data["path"])
					}
				}
				assert.True(t, logged)
			}
		})
	}
}

func TestMalformedForm(t *testing.T) {
	h := newHarness(t, nil)

	status, out := h.post(t, "/api/trackers/update", envelope(h.adminToken, `"form":"imei=1"`))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "failure", out["status"])
	assert.Empty(t, h.ops.Calls)
	assert.Equal(t, []auditEntry{{testActor, "admin", "updateTracker"}}, h.audit.entries)
}

func TestMalformedSectionsAreAudited(t *testing.T) {
	tests := []struct {
		path     string
		body     string
		endpoint string
	}{
		{"/api/organization/create", `"form":[1]`, "createOrg"},
		{"/api/organization/edit", `"filter":"x"`, "editOrg"},
		{"/api/organization/delete", `"form":7`, "deleteOrg"},
		{"/api/organization/view", `"filter":[]`, "viewOrgs"},
		{"/api/users/update", `"filter":{},"form":"x"`, "updateUser"},
		{"/api/users/delete", `"form":true`, "deleteUser"},
		{"/api/users/view", `"filter":1`, "viewUsers"},
		{"/api/users/update-password", `"form":"x"`, "updatePassword"},
		{"/api/trackers/update", `"form":{"organizationId":"7003004005","trackerId":"T1","imei":123}`, "updateTracker"},
		{"/api/trackers/delete", `"form":[]`, "deleteTracker"},
		{"/api/trackers/remove", `"form":"x"`, "removeTracker"},
		{"/api/trackers/view", `"filter":false`, "viewTrackers"},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			h := newHarness(t, nil)
			status, _ := h.post(t, tt.path, envelope(h.orgToken, tt.body))
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, []auditEntry{{"4821930572", "admin", tt.endpoint}}, h.audit.entries)
			assert.Empty(t, h.ops.Calls)
		})
	}

	// Elevated routes are audited as well.
	h := newHarness(t, nil)
	status, _ := h.post(t, "/api/trackers/create", envelope(h.adminToken, `"form":"x"`))
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = h.post(t, "/api/users/create", envelope(h.adminToken, `"form":"x"`))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []auditEntry{
		{testActor, "admin", "createTracker"},
		{testActor, "admin", "createUser"},
	}, h.audit.entries)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		store  Pinger
		status int
		want   string
	}{
		{"reachable", stubPinger{}, http.StatusOK, "success"},
		{"unreachable", stubPinger{err: errors.New("no reachable servers")}, http.StatusServiceUnavailable, "failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.store)
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			h.router.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			var out map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
			assert.Equal(t, tt.want, out["status"])
		})
	}
}
