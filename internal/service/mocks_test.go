package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/cipher"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/notify"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MockOrganizationCollection struct {
	mock.Mock
}

func (m *MockOrganizationCollection) InsertOrganization(ctx context.Context, org models.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *MockOrganizationCollection) FindOrganization(ctx context.Context, orgID string, statuses ...models.Status) (*models.Organization, error) {
	args := m.Called(ctx, orgID, statuses)
	org, _ := args.Get(0).(*models.Organization)
	return org, args.Error(1)
}

func (m *MockOrganizationCollection) CountActiveByName(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrganizationCollection) UpdateOrganization(ctx context.Context, orgID string, set bson.M) error {
	return m.Called(ctx, orgID, set).Error(0)
}

func (m *MockOrganizationCollection) SetOrganizationStatus(ctx context.Context, orgID string, status models.Status) error {
	return m.Called(ctx, orgID, status).Error(0)
}

func (m *MockOrganizationCollection) FindOrganizations(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Organization, error) {
	args := m.Called(ctx, filter, opts)
	orgs, _ := args.Get(0).([]models.Organization)
	return orgs, args.Error(1)
}

func (m *MockOrganizationCollection) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.OrganizationUser) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserCollection) FindUser(ctx context.Context, orgID, userID string, statuses ...models.Status) (*models.OrganizationUser, error) {
	args := m.Called(ctx, orgID, userID, statuses)
	user, _ := args.Get(0).(*models.OrganizationUser)
	return user, args.Error(1)
}

func (m *MockUserCollection) FindActiveByLoginName(ctx context.Context, orgID, loginName string) (*models.OrganizationUser, error) {
	args := m.Called(ctx, orgID, loginName)
	user, _ := args.Get(0).(*models.OrganizationUser)
	return user, args.Error(1)
}

func (m *MockUserCollection) FindActiveByEmail(ctx context.Context, email string) (*models.OrganizationUser, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.OrganizationUser)
	return user, args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, orgID, userID string, set bson.M) error {
	return m.Called(ctx, orgID, userID, set).Error(0)
}

func (m *MockUserCollection) FindUsers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.OrganizationUser, error) {
	args := m.Called(ctx, filter, opts)
	users, _ := args.Get(0).([]models.OrganizationUser)
	return users, args.Error(1)
}

func (m *MockUserCollection) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserCollection) CountActiveInOrg(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTrackerCollection struct {
	mock.Mock
}

func (m *MockTrackerCollection) InsertTracker(ctx context.Context, tracker models.Tracker) error {
	return m.Called(ctx, tracker).Error(0)
}

func (m *MockTrackerCollection) FindTracker(ctx context.Context, orgID, trackerID string, statuses ...models.Status) (*models.Tracker, error) {
	args := m.Called(ctx, orgID, trackerID, statuses)
	tracker, _ := args.Get(0).(*models.Tracker)
	return tracker, args.Error(1)
}

func (m *MockTrackerCollection) IMEIInUse(ctx context.Context, imeis []string, excludeTracker string) (bool, error) {
	args := m.Called(ctx, imeis, excludeTracker)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrackerCollection) FindActiveTracker(ctx context.Context, filter bson.M) (*models.Tracker, error) {
	args := m.Called(ctx, filter)
	tracker, _ := args.Get(0).(*models.Tracker)
	return tracker, args.Error(1)
}

func (m *MockTrackerCollection) UpdateTracker(ctx context.Context, orgID, trackerID string, set bson.M) error {
	return m.Called(ctx, orgID, trackerID, set).Error(0)
}

func (m *MockTrackerCollection) DeleteTracker(ctx context.Context, orgID, trackerID string) error {
	return m.Called(ctx, orgID, trackerID).Error(0)
}

func (m *MockTrackerCollection) FindTrackers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Tracker, error) {
	args := m.Called(ctx, filter, opts)
	trackers, _ := args.Get(0).([]models.Tracker)
	return trackers, args.Error(1)
}

func (m *MockTrackerCollection) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTrackerCollection) CountActiveInOrg(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

type MockHistoryCollection struct {
	mock.Mock
}

func (m *MockHistoryCollection) InsertHistory(ctx context.Context, entry models.TrackerHistory) error {
	return m.Called(ctx, entry).Error(0)
}

type MockAdminCollection struct {
	mock.Mock
}

func (m *MockAdminCollection) InsertAdmin(ctx context.Context, admin models.AdminUser) error {
	return m.Called(ctx, admin).Error(0)
}

func (m *MockAdminCollection) FindActiveAdmin(ctx context.Context, loginName string) (*models.AdminUser, error) {
	args := m.Called(ctx, loginName)
	admin, _ := args.Get(0).(*models.AdminUser)
	return admin, args.Error(1)
}

func (m *MockAdminCollection) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockLoginLatestCollection struct {
	mock.Mock
}

func (m *MockLoginLatestCollection) FindLatestLogin(ctx context.Context, orgID string) (*models.LoginLatest, error) {
	args := m.Called(ctx, orgID)
	latest, _ := args.Get(0).(*models.LoginLatest)
	return latest, args.Error(1)
}

type MockCascader struct {
	mock.Mock
}

func (m *MockCascader) HoldChildren(ctx context.Context, collection, orgID string) (int64, error) {
	args := m.Called(ctx, collection, orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCascader) DeleteAssignments(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

type MockIDAllocator struct {
	mock.Mock
}

func (m *MockIDAllocator) RandomTracker(ctx context.Context, field, collection string) (string, error) {
	args := m.Called(ctx, field, collection)
	return args.String(0), args.Error(1)
}

// auditEntry is what the recording auditor saw.
type auditEntry struct {
	User, Role, Endpoint, Action, Collection string
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAuditor) Record(user, role, endpoint string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{User: user, Role: role, Endpoint: endpoint})
}

func (a *recordingAuditor) RecordAction(user, action, collection string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{User: user, Action: action, Collection: collection})
}

func (a *recordingAuditor) all() []auditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]auditEntry(nil), a.entries...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Publish(ev notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Close() {}

func (n *recordingNotifier) all() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

const testActor = "4821930571"

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	orgs     *MockOrganizationCollection
	users    *MockUserCollection
	trackers *MockTrackerCollection
	history  *MockHistoryCollection
	admins   *MockAdminCollection
	logins   *MockLoginLatestCollection
	cascade  *MockCascader
	ids      *MockIDAllocator
	audit    *recordingAuditor
	notes    *recordingNotifier
	cipher   *cipher.Cipher
	tokens   *auth.Service
	clock    *clock.Mock
	hook     *test.Hook
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	c, err := cipher.New("test-aes-key", "test-aes-iv")
	require.NoError(t, err)

	clk := clock.NewMock()
	clk.Set(testNow)
	logger, hook := test.NewNullLogger()

	f := &fixture{
		orgs:     new(MockOrganizationCollection),
		users:    new(MockUserCollection),
		trackers: new(MockTrackerCollection),
		history:  new(MockHistoryCollection),
		admins:   new(MockAdminCollection),
		logins:   new(MockLoginLatestCollection),
		cascade:  new(MockCascader),
		ids:      new(MockIDAllocator),
		audit:    &recordingAuditor{},
		notes:    &recordingNotifier{},
		cipher:   c,
		tokens:   auth.NewService("test-secret", clk),
		clock:    clk,
		hook:     hook,
	}
	f.svc = New(Deps{
		Organizations: f.orgs,
		Users:         f.users,
		Trackers:      f.trackers,
		History:       f.history,
		Admins:        f.admins,
		LoginLatest:   f.logins,
		Cascade:       f.cascade,
		IDs:           f.ids,
		Cipher:        f.cipher,
		Tokens:        f.tokens,
		Audit:         f.audit,
		Notifier:      f.notes,
		Clock:         clk,
		Log:           logger,
	})
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.orgs.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.trackers.AssertExpectations(t)
	f.history.AssertExpectations(t)
	f.admins.AssertExpectations(t)
	f.logins.AssertExpectations(t)
	f.cascade.AssertExpectations(t)
	f.ids.AssertExpectations(t)
}

// assertAudited checks that endpoint was recorded first, under the admin role.
func (f *fixture) assertAudited(t *testing.T, endpoint string) {
	t.Helper()
	entries := f.audit.all()
	if assert.NotEmpty(t, entries) {
		assert.Equal(t, auditEntry{User: testActor, Role: "admin", Endpoint: endpoint}, entries[0])
	}
}

// assertCode checks err is a service error of the given kind and code.
func assertCode(t *testing.T, err error, kind Kind, code string) {
	t.Helper()
	require.Error(t, err)
	e := AsError(err)
	assert.Equal(t, kind, e.Kind, "kind of %v", err)
	assert.Equal(t, code, e.Code, "code of %v", err)
}
