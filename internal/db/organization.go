package db

import (
	"context"
	"fmt"

	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrganizationCollection implements OrganizationCollection for MongoDB.
type MongoOrganizationCollection struct {
	Collection *mongo.Collection
}

// InsertOrganization inserts a new organization.
func (c *MongoOrganizationCollection) InsertOrganization(ctx context.Context, org models.Organization) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, org)
	return err
}

// FindOrganization finds an organization by its tracker id.
func (c *MongoOrganizationCollection) FindOrganization(ctx context.Context, orgID string, statuses ...models.Status) (*models.Organization, error) {
	var org models.Organization
	filter := statusFilter(bson.M{"tracker": orgID}, statuses)
	if err := findOne(ctx, c.Collection, filter, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// CountActiveByName counts active organizations carrying name.
func (c *MongoOrganizationCollection) CountActiveByName(ctx context.Context, name string) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"name": name, "status": models.StatusActive})
}

// UpdateOrganization applies set to the organization.
func (c *MongoOrganizationCollection) UpdateOrganization(ctx context.Context, orgID string, set bson.M) error {
	result, err := c.Collection.UpdateOne(ctx, bson.M{"tracker": orgID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetOrganizationStatus changes the organization status.
func (c *MongoOrganizationCollection) SetOrganizationStatus(ctx context.Context, orgID string, status models.Status) error {
	return c.UpdateOrganization(ctx, orgID, bson.M{"status": status})
}

// FindOrganizations lists organizations matching filter.
func (c *MongoOrganizationCollection) FindOrganizations(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Organization, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orgs := []models.Organization{}
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// CountActive counts active organizations.
func (c *MongoOrganizationCollection) CountActive(ctx context.Context) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"status": models.StatusActive})
}
