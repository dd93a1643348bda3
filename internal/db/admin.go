package db

import (
	"context"
	"fmt"

	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAdminCollection implements AdminCollection for MongoDB.
type MongoAdminCollection struct {
	Collection *mongo.Collection
}

// InsertAdmin inserts a platform administrator.
func (c *MongoAdminCollection) InsertAdmin(ctx context.Context, admin models.AdminUser) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, admin)
	return err
}

// FindActiveAdmin finds an active administrator by login name.
func (c *MongoAdminCollection) FindActiveAdmin(ctx context.Context, loginName string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := findOne(ctx, c.Collection, bson.M{"loginName": loginName, "status": models.StatusActive}, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

// CountActive counts active administrators.
func (c *MongoAdminCollection) CountActive(ctx context.Context) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"status": models.StatusActive})
}

// MongoActionLogCollection implements ActionLogCollection for MongoDB.
type MongoActionLogCollection struct {
	Collection *mongo.Collection
}

// InsertActionLog appends an audit entry.
func (c *MongoActionLogCollection) InsertActionLog(ctx context.Context, entry models.ActionLog) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, entry)
	return err
}

// MongoLoginLatestCollection implements LoginLatestCollection for MongoDB.
type MongoLoginLatestCollection struct {
	Collection *mongo.Collection
}

// FindLatestLogin returns the organization's last-login projection.
func (c *MongoLoginLatestCollection) FindLatestLogin(ctx context.Context, orgID string) (*models.LoginLatest, error) {
	var latest models.LoginLatest
	if err := findOne(ctx, c.Collection, bson.M{OrgKey(LoginLatestCollectionName): orgID}, &latest); err != nil {
		return nil, err
	}
	return &latest, nil
}
