package db

import (
	"context"
	"fmt"

	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserCollection implements UserCollection for MongoDB.
type MongoUserCollection struct {
	Collection *mongo.Collection
}

func (c *MongoUserCollection) orgFilter(orgID string) bson.M {
	return bson.M{OrgKey(OrgUserCollectionName): orgID}
}

// InsertUser inserts a new organization user.
func (c *MongoUserCollection) InsertUser(ctx context.Context, user models.OrganizationUser) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, user)
	return err
}

// FindUser finds a user of the organization by its tracker id.
func (c *MongoUserCollection) FindUser(ctx context.Context, orgID, userID string, statuses ...models.Status) (*models.OrganizationUser, error) {
	filter := c.orgFilter(orgID)
	filter["tracker"] = userID

	var user models.OrganizationUser
	if err := findOne(ctx, c.Collection, statusFilter(filter, statuses), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByLoginName finds the active user of the organization holding
// loginName.
func (c *MongoUserCollection) FindActiveByLoginName(ctx context.Context, orgID, loginName string) (*models.OrganizationUser, error) {
	filter := c.orgFilter(orgID)
	filter["loginName"] = loginName
	filter["status"] = models.StatusActive

	var user models.OrganizationUser
	if err := findOne(ctx, c.Collection, filter, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByEmail finds an active user with email in any organization.
func (c *MongoUserCollection) FindActiveByEmail(ctx context.Context, email string) (*models.OrganizationUser, error) {
	var user models.OrganizationUser
	if err := findOne(ctx, c.Collection, bson.M{"email": email, "status": models.StatusActive}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies set to the user, matching on both the user and its
// organization.
func (c *MongoUserCollection) UpdateUser(ctx context.Context, orgID, userID string, set bson.M) error {
	filter := c.orgFilter(orgID)
	filter["tracker"] = userID

	result, err := c.Collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindUsers lists users matching filter.
func (c *MongoUserCollection) FindUsers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.OrganizationUser, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.OrganizationUser{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountActive counts active users across organizations.
func (c *MongoUserCollection) CountActive(ctx context.Context) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"status": models.StatusActive})
}

// CountActiveInOrg counts the organization's active users.
func (c *MongoUserCollection) CountActiveInOrg(ctx context.Context, orgID string) (int64, error) {
	filter := c.orgFilter(orgID)
	filter["status"] = models.StatusActive
	return c.Collection.CountDocuments(ctx, filter)
}
