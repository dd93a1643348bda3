package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tracker is a GPS device record owned by an organization. Its Tracker id
// is derived from the owner's OrgRefNo and the vehicle plate.
type Tracker struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Tracker             string             `bson:"tracker" json:"trackerId"`
	IMEI                string             `bson:"imei" json:"imei"`
	IMEI2               string             `bson:"imei2" json:"imei2"`
	BoxID               string             `bson:"boxid" json:"boxid"`
	BoxID2              string             `bson:"boxid2" json:"boxid2"`
	SimVendor           string             `bson:"simvendor" json:"simvendor"`
	SimVendor2          string             `bson:"simvendor2" json:"simvendor2"`
	SimCard             string             `bson:"simCard" json:"simCard"`
	SimCard2            string             `bson:"simCard2" json:"simCard2"`
	Date                string             `bson:"Date" json:"Date"`
	LogTimeMS           int64              `bson:"logTimeMS" json:"logTimeMS"`
	VehicleInformation  VehicleInformation `bson:"vehicleInformation" json:"vehicleInformation"`
	Status              Status             `bson:"status" json:"status"`
	OrganizationTracker string             `bson:"organizationTracker" json:"organizationId"`
}

// VehicleInformation describes the vehicle a tracker is fitted to.
type VehicleInformation struct {
	Name                  string     `bson:"name" json:"name"`
	Type                  string     `bson:"type" json:"type"`
	Make                  string     `bson:"make" json:"make"`
	RegNo                 string     `bson:"regno" json:"regno"`
	TabDeviceName         string     `bson:"tabDeviceName" json:"tabDeviceName"`
	OwnerName             string     `bson:"ownerName" json:"ownerName"`
	OwnerPhone            string     `bson:"ownerPhone" json:"ownerPhone"`
	OwnerAddress          string     `bson:"ownerAddress" json:"ownerAddress"`
	Model                 string     `bson:"model" json:"model"`
	ManufactureYear       string     `bson:"manufactureYear" json:"manufactureYear"`
	PurchasedYear         string     `bson:"purchasedYear" json:"purchasedYear"`
	Color                 string     `bson:"color" json:"color"`
	Fuel                  string     `bson:"fuel" json:"fuel"`
	EngineNumber          string     `bson:"engineNumber" json:"engineNumber"`
	ChasisNumber          string     `bson:"chasisNumber" json:"chasisNumber"`
	InsuranceCompany      string     `bson:"insuranceCompany" json:"insuranceCompany"`
	InsurancePolicyNumber string     `bson:"insurancePolicyNumber" json:"insurancePolicyNumber"`
	InsuranceExpiryDate   *time.Time `bson:"insuranceExpiryDate" json:"insuranceExpiryDate"`
	SeatCapacity          string     `bson:"seatCapacity" json:"seatCapacity"`
	DriverName            string     `bson:"driverName" json:"driverName"`
	DriverPhone           string     `bson:"driverPhone" json:"driverPhone"`
	DriverAddress         string     `bson:"driverAddress" json:"driverAddress"`
}

// TrackerPatch is a sparse tracker update. The owning organization is not
// patchable.
type TrackerPatch struct {
	IMEI       *string
	IMEI2      *string
	BoxID      *string
	BoxID2     *string
	SimVendor  *string
	SimVendor2 *string
	SimCard    *string
	SimCard2   *string
	Status     *Status
	Vehicle    VehiclePatch
}

// VehiclePatch addresses vehicleInformation sub-fields one by one so that
// unspecified ones keep their stored values.
type VehiclePatch struct {
	RegNo                 *string
	Name                  *string
	Type                  *string
	TabDeviceName         *string
	Make                  *string
	OwnerName             *string
	OwnerPhone            *string
	OwnerAddress          *string
	Model                 *string
	ManufactureYear       *string
	PurchasedYear         *string
	Color                 *string
	Fuel                  *string
	EngineNumber          *string
	ChasisNumber          *string
	InsuranceCompany      *string
	InsurancePolicyNumber *string
	SeatCapacity          *string
	DriverName            *string
	DriverPhone           *string
	DriverAddress         *string
}

// Set renders the patch as a $set document using dotted paths for the
// nested vehicle fields.
func (p TrackerPatch) Set() bson.M {
	set := bson.M{}
	putString(set, "imei", p.IMEI)
	putString(set, "imei2", p.IMEI2)
	putString(set, "boxid", p.BoxID)
	putString(set, "boxid2", p.BoxID2)
	putString(set, "simvendor", p.SimVendor)
	putString(set, "simvendor2", p.SimVendor2)
	putString(set, "simCard", p.SimCard)
	putString(set, "simCard2", p.SimCard2)
	if p.Status != nil {
		set["status"] = *p.Status
	}

	v := p.Vehicle
	const vi = "vehicleInformation."
	putString(set, vi+"regno", v.RegNo)
	putString(set, vi+"name", v.Name)
	putString(set, vi+"type", v.Type)
	putString(set, vi+"tabDeviceName", v.TabDeviceName)
	putString(set, vi+"make", v.Make)
	putString(set, vi+"ownerName", v.OwnerName)
	putString(set, vi+"ownerPhone", v.OwnerPhone)
	putString(set, vi+"ownerAddress", v.OwnerAddress)
	putString(set, vi+"model", v.Model)
	putString(set, vi+"manufactureYear", v.ManufactureYear)
	putString(set, vi+"purchasedYear", v.PurchasedYear)
	putString(set, vi+"color", v.Color)
	putString(set, vi+"fuel", v.Fuel)
	putString(set, vi+"engineNumber", v.EngineNumber)
	putString(set, vi+"chasisNumber", v.ChasisNumber)
	putString(set, vi+"insuranceCompany", v.InsuranceCompany)
	putString(set, vi+"insurancePolicyNumber", v.InsurancePolicyNumber)
	putString(set, vi+"seatCapacity", v.SeatCapacity)
	putString(set, vi+"driverName", v.DriverName)
	putString(set, vi+"driverPhone", v.DriverPhone)
	putString(set, vi+"driverAddress", v.DriverAddress)
	return set
}

// IdentityChanged reports whether applying p to old would change any of
// the hardware identity fields (imei, imei2, boxid, boxid2).
func (p TrackerPatch) IdentityChanged(old Tracker) bool {
	differs := func(v *string, cur string) bool { return v != nil && *v != cur }
	return differs(p.IMEI, old.IMEI) ||
		differs(p.IMEI2, old.IMEI2) ||
		differs(p.BoxID, old.BoxID) ||
		differs(p.BoxID2, old.BoxID2)
}
