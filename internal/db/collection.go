package db

import (
	"context"

	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrganizationCollection defines the organization store operations.
type OrganizationCollection interface {
	InsertOrganization(ctx context.Context, org models.Organization) error
	FindOrganization(ctx context.Context, orgID string, statuses ...models.Status) (*models.Organization, error)
	CountActiveByName(ctx context.Context, name string) (int64, error)
	UpdateOrganization(ctx context.Context, orgID string, set bson.M) error
	SetOrganizationStatus(ctx context.Context, orgID string, status models.Status) error
	FindOrganizations(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Organization, error)
	CountActive(ctx context.Context) (int64, error)
}

// UserCollection defines the organization user store operations.
type UserCollection interface {
	InsertUser(ctx context.Context, user models.OrganizationUser) error
	FindUser(ctx context.Context, orgID, userID string, statuses ...models.Status) (*models.OrganizationUser, error)
	FindActiveByLoginName(ctx context.Context, orgID, loginName string) (*models.OrganizationUser, error)
	FindActiveByEmail(ctx context.Context, email string) (*models.OrganizationUser, error)
	UpdateUser(ctx context.Context, orgID, userID string, set bson.M) error
	FindUsers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.OrganizationUser, error)
	CountActive(ctx context.Context) (int64, error)
	CountActiveInOrg(ctx context.Context, orgID string) (int64, error)
}

// TrackerCollection defines the device record store operations.
type TrackerCollection interface {
	InsertTracker(ctx context.Context, tracker models.Tracker) error
	FindTracker(ctx context.Context, orgID, trackerID string, statuses ...models.Status) (*models.Tracker, error)
	IMEIInUse(ctx context.Context, imeis []string, excludeTracker string) (bool, error)
	FindActiveTracker(ctx context.Context, filter bson.M) (*models.Tracker, error)
	UpdateTracker(ctx context.Context, orgID, trackerID string, set bson.M) error
	DeleteTracker(ctx context.Context, orgID, trackerID string) error
	FindTrackers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Tracker, error)
	CountActive(ctx context.Context) (int64, error)
	CountActiveInOrg(ctx context.Context, orgID string) (int64, error)
}

// HistoryCollection appends tracker identity changes.
type HistoryCollection interface {
	InsertHistory(ctx context.Context, entry models.TrackerHistory) error
}

// ActionLogCollection appends audit entries.
type ActionLogCollection interface {
	InsertActionLog(ctx context.Context, entry models.ActionLog) error
}

// AdminCollection defines the platform administrator store operations.
type AdminCollection interface {
	InsertAdmin(ctx context.Context, admin models.AdminUser) error
	FindActiveAdmin(ctx context.Context, loginName string) (*models.AdminUser, error)
	CountActive(ctx context.Context) (int64, error)
}

// LoginLatestCollection reads the last-login projection.
type LoginLatestCollection interface {
	FindLatestLogin(ctx context.Context, orgID string) (*models.LoginLatest, error)
}

// Cascader propagates an organization's hold status to dependent
// collections and clears its assignments.
type Cascader interface {
	HoldChildren(ctx context.Context, collection, orgID string) (int64, error)
	DeleteAssignments(ctx context.Context, orgID string) (int64, error)
}
