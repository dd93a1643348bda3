package db

import (
	"context"
	"fmt"

	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTrackerCollection implements TrackerCollection for MongoDB.
type MongoTrackerCollection struct {
	Collection *mongo.Collection
}

func (c *MongoTrackerCollection) keyFilter(orgID, trackerID string) bson.M {
	return bson.M{"tracker": trackerID, OrgKey(TrackerCollectionName): orgID}
}

// imeiFilter matches active trackers holding any of imeis in either slot.
// It returns nil when there is nothing to look for.
func imeiFilter(imeis []string, excludeTracker string) bson.M {
	var or bson.A
	for _, imei := range imeis {
		if imei == "" {
			continue
		}
		or = append(or, bson.M{"imei": imei}, bson.M{"imei2": imei})
	}
	if len(or) == 0 {
		return nil
	}
	filter := bson.M{"$or": or, "status": models.StatusActive}
	if excludeTracker != "" {
		filter["tracker"] = bson.M{"$ne": excludeTracker}
	}
	return filter
}

// InsertTracker inserts a new device record.
func (c *MongoTrackerCollection) InsertTracker(ctx context.Context, tracker models.Tracker) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, tracker)
	return err
}

// FindTracker finds a device record of the organization.
func (c *MongoTrackerCollection) FindTracker(ctx context.Context, orgID, trackerID string, statuses ...models.Status) (*models.Tracker, error) {
	var tracker models.Tracker
	if err := findOne(ctx, c.Collection, statusFilter(c.keyFilter(orgID, trackerID), statuses), &tracker); err != nil {
		return nil, err
	}
	return &tracker, nil
}

// IMEIInUse reports whether an active tracker other than excludeTracker
// holds any of imeis as its imei or imei2.
func (c *MongoTrackerCollection) IMEIInUse(ctx context.Context, imeis []string, excludeTracker string) (bool, error) {
	filter := imeiFilter(imeis, excludeTracker)
	if filter == nil {
		return false, nil
	}
	n, err := c.Collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindActiveTracker returns the first active tracker matching filter.
func (c *MongoTrackerCollection) FindActiveTracker(ctx context.Context, filter bson.M) (*models.Tracker, error) {
	q := bson.M{}
	for k, v := range filter {
		q[k] = v
	}
	q["status"] = models.StatusActive

	var tracker models.Tracker
	if err := findOne(ctx, c.Collection, q, &tracker); err != nil {
		return nil, err
	}
	return &tracker, nil
}

// UpdateTracker applies set to the tracker, matching on both the tracker
// and its organization.
func (c *MongoTrackerCollection) UpdateTracker(ctx context.Context, orgID, trackerID string, set bson.M) error {
	result, err := c.Collection.UpdateOne(ctx, c.keyFilter(orgID, trackerID), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTracker permanently removes the tracker.
func (c *MongoTrackerCollection) DeleteTracker(ctx context.Context, orgID, trackerID string) error {
	result, err := c.Collection.DeleteOne(ctx, c.keyFilter(orgID, trackerID))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindTrackers lists trackers matching filter.
func (c *MongoTrackerCollection) FindTrackers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Tracker, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trackers := []models.Tracker{}
	if err := cursor.All(ctx, &trackers); err != nil {
		return nil, err
	}
	return trackers, nil
}

// CountActive counts active trackers across organizations.
func (c *MongoTrackerCollection) CountActive(ctx context.Context) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"status": models.StatusActive})
}

// CountActiveInOrg counts the organization's active trackers.
func (c *MongoTrackerCollection) CountActiveInOrg(ctx context.Context, orgID string) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{OrgKey(TrackerCollectionName): orgID, "status": models.StatusActive})
}

// MongoHistoryCollection implements HistoryCollection for MongoDB.
type MongoHistoryCollection struct {
	Collection *mongo.Collection
}

// InsertHistory appends a tracker history entry.
func (c *MongoHistoryCollection) InsertHistory(ctx context.Context, entry models.TrackerHistory) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.InsertOne(ctx, entry)
	return err
}
