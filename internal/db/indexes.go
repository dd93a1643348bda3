package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/multierr"
)

type indexSpec struct {
	collection string
	model      mongo.IndexModel
}

func keys(fields ...string) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		d = append(d, bson.E{Key: f, Value: 1})
	}
	return d
}

// indexSpecs lists the lookup indexes. Only organization.tracker is unique;
// every other uniqueness rule is checked by the application against active
// records.
func indexSpecs() []indexSpec {
	return []indexSpec{
		{OrganizationCollectionName, mongo.IndexModel{Keys: keys("tracker"), Options: options.Index().SetUnique(true)}},
		{OrganizationCollectionName, mongo.IndexModel{Keys: keys("name", "status")}},
		{OrgUserCollectionName, mongo.IndexModel{Keys: keys(OrgKey(OrgUserCollectionName), "loginName")}},
		{OrgUserCollectionName, mongo.IndexModel{Keys: keys("email", "status")}},
		{TrackerCollectionName, mongo.IndexModel{Keys: keys(OrgKey(TrackerCollectionName), "tracker")}},
		{TrackerCollectionName, mongo.IndexModel{Keys: keys("imei")}},
		{TrackerCollectionName, mongo.IndexModel{Keys: keys("imei2")}},
		{HistoryCollectionName, mongo.IndexModel{Keys: keys("veh_tracker")}},
		{ActionLogCollectionName, mongo.IndexModel{Keys: keys("logTimeMS")}},
		{AdminCollectionName, mongo.IndexModel{Keys: keys("loginName", "status")}},
		{LoginLatestCollectionName, mongo.IndexModel{Keys: keys(OrgKey(LoginLatestCollectionName))}},
	}
}

// EnsureIndexes creates the lookup indexes. It keeps going past failures
// and returns all of them combined.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	var errs error
	for _, spec := range indexSpecs() {
		if _, err := s.database.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("index on %s: %w", spec.collection, err))
		}
	}
	return errs
}
