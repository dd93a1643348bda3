package db

import (
	"context"

	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCascade implements Cascader for MongoDB.
type MongoCascade struct {
	Database *mongo.Database
}

// HoldChildren moves the organization's active documents in collection to
// hold and returns how many changed. Running it again is a no-op.
func (c *MongoCascade) HoldChildren(ctx context.Context, collection, orgID string) (int64, error) {
	filter := bson.M{OrgKey(collection): orgID, "status": models.StatusActive}
	result, err := c.Database.Collection(collection).UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": models.StatusHold}})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// DeleteAssignments removes every assignment of the organization.
func (c *MongoCascade) DeleteAssignments(ctx context.Context, orgID string) (int64, error) {
	result, err := c.Database.Collection(AssignmentCollectionName).DeleteMany(ctx, bson.M{OrgKey(AssignmentCollectionName): orgID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
