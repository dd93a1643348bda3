package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the account type carried in API tokens.
type Role string

const (
	// RoleAdmin is the elevated account type required by gated operations.
	RoleAdmin Role = "admin"
)

// IsElevated reports whether the role may run elevated operations.
func (r Role) IsElevated() bool {
	return r == RoleAdmin
}

// AdminUser is a platform administrator stored in admin_users.
type AdminUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Tracker      string             `bson:"tracker" json:"userId"`
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	LoginName    string             `bson:"loginName" json:"loginName"`
	Password     string             `bson:"password" json:"-"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	Status       Status             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"cashedDATEobjInsert" json:"-"`
}

// OrganizationUser is a login belonging to exactly one organization.
// Password holds the cipher text; listings reveal the plain text.
type OrganizationUser struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Tracker             string             `bson:"tracker" json:"userId"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	LoginName           string             `bson:"loginName" json:"loginName"`
	Password            string             `bson:"password" json:"password"`
	Gender              string             `bson:"gender" json:"gender"`
	Designation         string             `bson:"designation" json:"designation"`
	Levels              string             `bson:"levels" json:"levels"`
	Status              Status             `bson:"status" json:"status"`
	DOB                 *time.Time         `bson:"dob" json:"dob"`
	Phone               string             `bson:"phone" json:"phone"`
	Address             string             `bson:"address" json:"address"`
	Area                string             `bson:"area" json:"area"`
	City                string             `bson:"city" json:"city"`
	State               string             `bson:"state" json:"state"`
	Country             string             `bson:"country" json:"country"`
	CampaignType        string             `bson:"campaignType" json:"campaignType"`
	OrganizationTracker string             `bson:"organizationTracker" json:"organizationId"`
	CreatedAt           time.Time          `bson:"cashedDATEobjInsert" json:"-"`
}

// UserPatch is a sparse organization user update.
type UserPatch struct {
	Name         *string
	Email        *string
	LoginName    *string
	Password     *string // cipher text
	Gender       *string
	Designation  *string
	Levels       *string
	Status       *Status
	DOB          *time.Time
	Phone        *string
	Address      *string
	Area         *string
	City         *string
	State        *string
	Country      *string
	CampaignType *string
}

// Set renders the patch as a $set document.
func (p UserPatch) Set() bson.M {
	set := bson.M{}
	putString(set, "name", p.Name)
	putString(set, "email", p.Email)
	putString(set, "loginName", p.LoginName)
	putString(set, "password", p.Password)
	putString(set, "gender", p.Gender)
	putString(set, "designation", p.Designation)
	putString(set, "levels", p.Levels)
	putString(set, "phone", p.Phone)
	putString(set, "address", p.Address)
	putString(set, "area", p.Area)
	putString(set, "city", p.City)
	putString(set, "state", p.State)
	putString(set, "country", p.Country)
	putString(set, "campaignType", p.CampaignType)
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.DOB != nil {
		set["dob"] = *p.DOB
	}
	return set
}

// Claims are the verified contents of an API token.
type Claims struct {
	// Subject is the tracker of the authenticated account ("token" claim).
	Subject string                 `json:"token"`
	Role    Role                   `json:"accountType"`
	Exp     int64                  `json:"exp"`
	All     map[string]interface{} `json:"-"`
}
