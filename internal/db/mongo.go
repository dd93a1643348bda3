package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names of the admin database.
const (
	OrganizationCollectionName = "organization"
	OrgUserCollectionName      = "organization_users"
	TrackerCollectionName      = "organization_tracker"
	HistoryCollectionName      = "tracker_history"
	ActionLogCollectionName    = "actionlog"
	AssignmentCollectionName   = "assignmentcollection"
	AdminCollectionName        = "admin_users"
	LoginLatestCollectionName  = "loginlatest"
	RouteCollectionName        = "routes"
	PickupCollectionName       = "pickupcollection"
	MemberCollectionName       = "membercollection"
	TemplateCollectionName     = "templatecollection"
)

// orgKeys maps a collection to the field naming its owning organization.
// The legacy schema uses two names for the same link.
var orgKeys = map[string]string{
	OrgUserCollectionName:     "organizationTracker",
	TrackerCollectionName:     "organizationTracker",
	RouteCollectionName:       "orgId",
	PickupCollectionName:      "orgId",
	MemberCollectionName:      "orgId",
	TemplateCollectionName:    "orgId",
	AssignmentCollectionName:  "orgId",
	LoginLatestCollectionName: "orgId",
	HistoryCollectionName:     "orgId",
}

// OrgKey returns the organization foreign-key field of collection. It
// panics for a collection that has no organization link.
func OrgKey(collection string) string {
	key, ok := orgKeys[collection]
	if !ok {
		panic(fmt.Sprintf("db: collection %q has no organization key", collection))
	}
	return key
}

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// Store owns the Mongo client and hands out typed collections.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect dials uri, verifies the connection with a ping and selects the
// named database.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return &Store{client: client, database: client.Database(dbName)}, nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Database exposes the underlying database handle.
func (s *Store) Database() *mongo.Database {
	return s.database
}

// Exists reports whether any document in collection has field == value.
func (s *Store) Exists(ctx context.Context, collection, field, value string) (bool, error) {
	n, err := s.database.Collection(collection).CountDocuments(ctx, bson.M{field: value}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Organizations() *MongoOrganizationCollection {
	return &MongoOrganizationCollection{Collection: s.database.Collection(OrganizationCollectionName)}
}

func (s *Store) Users() *MongoUserCollection {
	return &MongoUserCollection{Collection: s.database.Collection(OrgUserCollectionName)}
}

func (s *Store) Trackers() *MongoTrackerCollection {
	return &MongoTrackerCollection{Collection: s.database.Collection(TrackerCollectionName)}
}

func (s *Store) History() *MongoHistoryCollection {
	return &MongoHistoryCollection{Collection: s.database.Collection(HistoryCollectionName)}
}

func (s *Store) ActionLogs() *MongoActionLogCollection {
	return &MongoActionLogCollection{Collection: s.database.Collection(ActionLogCollectionName)}
}

func (s *Store) Admins() *MongoAdminCollection {
	return &MongoAdminCollection{Collection: s.database.Collection(AdminCollectionName)}
}

func (s *Store) LoginLatest() *MongoLoginLatestCollection {
	return &MongoLoginLatestCollection{Collection: s.database.Collection(LoginLatestCollectionName)}
}

// Cascade returns the organization status cascade bound to this database.
func (s *Store) Cascade() *MongoCascade {
	return &MongoCascade{Database: s.database}
}

// statusFilter restricts filter to the given statuses. No statuses means
// any status.
func statusFilter(filter bson.M, statuses []models.Status) bson.M {
	switch len(statuses) {
	case 0:
	case 1:
		filter["status"] = statuses[0]
	default:
		filter["status"] = bson.M{"$in": statuses}
	}
	return filter
}

func findOne(ctx context.Context, c *mongo.Collection, filter interface{}, out interface{}, opts ...*options.FindOneOptions) error {
	if c == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	err := c.FindOne(ctx, filter, opts...).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
