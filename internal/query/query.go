// Package query turns listing filters into Mongo filters and paging
// options.
package query

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Page sizes per listing.
const (
	OrganizationPageSize int64 = 10
	UserPageSize         int64 = 25
	TrackerPageSize      int64 = 25
)

// Page is a resolved skip/limit/sort triple.
type Page struct {
	Skip  int64
	Limit int64
	Sort  bson.D
}

// Paginate resolves paging hints. A positive pageJump skips whole pages
// and wins over pageIndex, which skips single records. When
// orderByDateCreated is "-1" the listing is newest first on sortField.
func Paginate(extra models.Extra, limit int64, sortField string) Page {
	p := Page{Limit: limit}
	if extra.PageIndex > 0 {
		p.Skip = extra.PageIndex
	}
	if extra.PageJump > 0 {
		p.Skip = extra.PageJump * limit
	}
	if extra.OrderByDateCreated == "-1" {
		p.Sort = bson.D{{Key: sortField, Value: -1}}
	}
	return p
}

// FindOptions renders the page as driver options.
func (p Page) FindOptions() *options.FindOptions {
	opts := options.Find().SetSkip(p.Skip).SetLimit(p.Limit)
	if len(p.Sort) > 0 {
		opts.SetSort(p.Sort)
	}
	return opts
}

// contains matches v as a case-insensitive substring.
func contains(v string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
}

func putContains(m bson.M, key, v string) {
	if v != "" {
		m[key] = contains(v)
	}
}

func putExact(m bson.M, key, v string) {
	if v != "" {
		m[key] = v
	}
}

// OrganizationFilter narrows the organization listing.
type OrganizationFilter struct {
	OrganizationID string  `json:"organizationId"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Country        string  `json:"country"`
	Email          string  `json:"email"`
	Location       string  `json:"location"`
	SMSAlert       *string `json:"smsAlert" validate:"omitempty,oneof=true false"`
	AppAlert       *string `json:"appAlert" validate:"omitempty,oneof=true false"`
	EmailAlert     *string `json:"emailAlert" validate:"omitempty,oneof=true false"`
	CallAlert      *string `json:"callAlert" validate:"omitempty,oneof=true false"`
	RFIDAlert      *string `json:"rfidAlert" validate:"omitempty,oneof=true false"`
	ETAAlert       *string `json:"etaAlert" validate:"omitempty,oneof=true false"`
	AlertLock      *string `json:"alertlock" validate:"omitempty,oneof=true false"`

	// Device filters resolve to the organization owning the device.
	RegNo   string `json:"regNo"`
	BoxID   string `json:"boxId"`
	IMEI    string `json:"imei"`
	SimCard string `json:"simCard"`
}

func (f OrganizationFilter) hasDeviceFilter() bool {
	return f.RegNo != "" || f.BoxID != "" || f.IMEI != "" || f.SimCard != ""
}

// TrackerFinder looks up a single active device record.
type TrackerFinder interface {
	FindActiveTracker(ctx context.Context, filter bson.M) (*models.Tracker, error)
}

// Organizations builds the organization listing filter. The boolean is
// false when a device filter matched no tracker, in which case the listing
// is empty and the filter must not be run.
func Organizations(ctx context.Context, f OrganizationFilter, finder TrackerFinder) (bson.M, bool, error) {
	q := bson.M{"status": models.StatusActive}

	putExact(q, "tracker", f.OrganizationID)
	if f.hasDeviceFilter() {
		device := bson.M{}
		putContains(device, "vehicleInformation.regno", f.RegNo)
		putExact(device, "boxid", f.BoxID)
		putExact(device, "simCard", f.SimCard)
		if f.IMEI != "" {
			device["$or"] = bson.A{bson.M{"imei": f.IMEI}, bson.M{"imei2": f.IMEI}}
		}
		tracker, err := finder.FindActiveTracker(ctx, device)
		if errors.Is(err, db.ErrNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		q["tracker"] = tracker.OrganizationTracker
	}

	putContains(q, "name", f.Name)
	putContains(q, "category", f.Category)
	putContains(q, "city", f.City)
	putContains(q, "state", f.State)
	putContains(q, "country", f.Country)
	putContains(q, "email", f.Email)
	if f.Location != "" {
		q["$or"] = bson.A{
			bson.M{"area": contains(f.Location)},
			bson.M{"city": contains(f.Location)},
			bson.M{"state": contains(f.Location)},
		}
	}

	flags := []struct {
		key string
		raw *string
	}{
		{"smsAlert", f.SMSAlert},
		{"appAlert", f.AppAlert},
		{"emailAlert", f.EmailAlert},
		{"callAlert", f.CallAlert},
		{"rfidAlert", f.RFIDAlert},
		{"etaAlert", f.ETAAlert},
		{"alertlock", f.AlertLock},
	}
	for _, fl := range flags {
		flag, err := models.ParseFlag(fl.raw)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", fl.key, err)
		}
		if flag.IsSet() {
			q[fl.key] = flag.Bool()
		}
	}
	return q, true, nil
}

// UserFilter narrows the user listing of one organization.
type UserFilter struct {
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	LoginName      string `json:"loginname"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	Levels         string `json:"levels"`
}

// Users builds the user listing filter. Without an explicit status only
// active and disabled users are listed.
func Users(f UserFilter) bson.M {
	q := bson.M{db.OrgKey(db.OrgUserCollectionName): f.OrganizationID}
	putExact(q, "tracker", f.UserID)
	putContains(q, "name", f.Name)
	putContains(q, "loginName", f.LoginName)
	putContains(q, "email", f.Email)
	putExact(q, "levels", f.Levels)
	if f.Status != "" {
		q["status"] = f.Status
	} else {
		q["status"] = bson.M{"$in": bson.A{models.StatusActive, models.StatusDisabled}}
	}
	return q
}

// TrackerFilter narrows the device listing of one organization.
type TrackerFilter struct {
	OrganizationID string `json:"organizationId"`
	TrackerID      string `json:"trackerId"`
	IMEI           string `json:"imei"`
	RegNo          string `json:"regno"`
	Status         string `json:"status"`
}

// Trackers builds the device listing filter. The imei filter matches
// either slot; status defaults to active.
func Trackers(f TrackerFilter) bson.M {
	q := bson.M{db.OrgKey(db.TrackerCollectionName): f.OrganizationID}
	putExact(q, "tracker", f.TrackerID)
	if f.IMEI != "" {
		q["$or"] = bson.A{bson.M{"imei": f.IMEI}, bson.M{"imei2": f.IMEI}}
	}
	putContains(q, "vehicleInformation.regno", f.RegNo)
	if f.Status != "" {
		q["status"] = f.Status
	} else {
		q["status"] = models.StatusActive
	}
	return q
}
