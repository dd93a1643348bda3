package service

import (
	"strings"

	"github.com/ukydev/fleet-admin/internal/models"
)

// LoginForm is the admin login payload.
type LoginForm struct {
	LoginName string `json:"loginname" label:"Login Name" validate:"notblank"`
	Password  string `json:"password" label:"Password" validate:"notblank"`
}

// CreateOrganizationForm is the payload of organization/create.
type CreateOrganizationForm struct {
	Name               string            `json:"name" label:"Name" validate:"notblank"`
	Category           string            `json:"category" label:"Category" validate:"notblank"`
	Address            string            `json:"address" label:"Address" validate:"notblank"`
	Area               string            `json:"area" label:"Area" validate:"notblank"`
	City               string            `json:"city" label:"City" validate:"notblank"`
	State              string            `json:"state" label:"State" validate:"notblank"`
	Country            string            `json:"country" label:"Country" validate:"notblank"`
	Website            string            `json:"website" label:"Website"`
	Email              string            `json:"email" label:"Email" validate:"required,email"`
	Description        string            `json:"description" label:"Description"`
	ContactInformation interface{}       `json:"contactInformation"`
	Status             string            `json:"status" label:"Status" validate:"required,oneof=active hold"`
	OrgStartTime       string            `json:"orgStartTime" label:"Org Start Time"`
	OrgEndTime         string            `json:"orgEndTime" label:"Org End Time"`
	Location           interface{}       `json:"location"`
	Reports            *models.Reports   `json:"reports"`
	Weekdays           *models.Weekdays  `json:"weekdays"`
	VoiceCall          *models.VoiceCall `json:"voiceCall"`
	ClassLists         interface{}       `json:"classLists"`
	SectionLists       interface{}       `json:"SectionLists"`
	SchoolSessionLists interface{}       `json:"schoolsessionLists"`
	CameraModuleView   interface{}       `json:"cameraModuleView"`
	OtherLang          interface{}       `json:"otherlang"`
}

// OrganizationRef identifies the organization an edit applies to.
type OrganizationRef struct {
	OrganizationID string `json:"organizationId"`
}

// EditOrganizationForm is the payload of organization/edit. Empty values
// leave the stored field unchanged.
type EditOrganizationForm struct {
	Name               string            `json:"name" label:"Name"`
	Category           string            `json:"category" label:"Category"`
	Address            string            `json:"address" label:"Address"`
	Area               string            `json:"area" label:"Area"`
	City               string            `json:"city" label:"City"`
	State              string            `json:"state" label:"State"`
	Country            string            `json:"country" label:"Country"`
	Website            string            `json:"website" label:"Website"`
	Email              string            `json:"email" label:"Email" validate:"omitempty,email"`
	Description        string            `json:"description" label:"Description"`
	ContactInformation interface{}       `json:"contactInformation"`
	Location           interface{}       `json:"location"`
	SMSAlert           *string           `json:"smsAlert" validate:"omitempty,oneof=true false"`
	AppAlert           *string           `json:"appAlert" validate:"omitempty,oneof=true false"`
	EmailAlert         *string           `json:"emailAlert" validate:"omitempty,oneof=true false"`
	CallAlert          *string           `json:"callAlert" validate:"omitempty,oneof=true false"`
	RFIDAlert          *string           `json:"rfidAlert" validate:"omitempty,oneof=true false"`
	ETAAlert           *string           `json:"etaAlert" validate:"omitempty,oneof=true false"`
	AlertLock          *string           `json:"alertlock" validate:"omitempty,oneof=true false"`
	CameraModuleView   *string           `json:"cameraModuleView" validate:"omitempty,oneof=true false"`
	OtherLang          *string           `json:"otherlang" validate:"omitempty,oneof=true false"`
	Reports            *models.Reports   `json:"reports"`
	Weekdays           *models.Weekdays  `json:"weekdays"`
	CallingURL         string            `json:"callingURL"`
	VoiceCall          *models.VoiceCall `json:"voiceCall"`
	OrgStartTime       string            `json:"orgStartTime"`
	OrgEndTime         string            `json:"orgEndTime"`
	ClassLists         interface{}       `json:"classLists"`
	SectionLists       interface{}       `json:"SectionLists"`
	SchoolSessionLists interface{}       `json:"schoolsessionLists"`
}

// DeleteOrganizationForm is the payload of organization/delete.
type DeleteOrganizationForm struct {
	OrgID string `json:"orgId" label:"Organization ID" validate:"notblank"`
}

// CreateUserForm is the payload of users/create.
type CreateUserForm struct {
	Name           string `json:"name" label:"Name" validate:"notblank"`
	Email          string `json:"email" label:"Email" validate:"required,email"`
	LoginName      string `json:"loginname" label:"Login Name" validate:"notblank"`
	Password       string `json:"password" label:"Password" validate:"notblank,min=4"`
	Gender         string `json:"gender" label:"Gender" validate:"required,oneof=male female other"`
	Designation    string `json:"designation"`
	Levels         string `json:"levels" label:"Levels" validate:"notblank"`
	Status         string `json:"status" label:"Status" validate:"required,oneof=active hold"`
	DOB            string `json:"dob" validate:"omitempty,date"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Area           string `json:"area"`
	City           string `json:"city"`
	State          string `json:"state"`
	Country        string `json:"country"`
	CampaignType   string `json:"campaignType" validate:"omitempty,oneof=sms broadcast both"`
	OrganizationID string `json:"organizationId" label:"Organization ID" validate:"notblank"`
}

// UserRef identifies a user within its organization.
type UserRef struct {
	OrganizationID string `json:"organizationId" label:"Organization ID" validate:"notblank"`
	UserID         string `json:"userId" label:"User ID" validate:"notblank"`
}

// UpdateUserForm is the payload of users/update. Empty values leave the
// stored field unchanged.
type UpdateUserForm struct {
	Name         string `json:"name" label:"Name"`
	Email        string `json:"email" label:"Email" validate:"omitempty,email"`
	LoginName    string `json:"loginname" label:"Login Name"`
	Password     string `json:"password" label:"Password" validate:"omitempty,min=4"`
	Gender       string `json:"gender" validate:"omitempty,oneof=male female other"`
	Designation  string `json:"designation"`
	Levels       string `json:"levels" label:"Levels"`
	Status       string `json:"status" label:"Status" validate:"omitempty,oneof=active hold"`
	DOB          string `json:"dob" validate:"omitempty,date"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Area         string `json:"area"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	CampaignType string `json:"campaignType"`
}

// UpdatePasswordForm is the payload of users/update-password.
type UpdatePasswordForm struct {
	OrganizationID string `json:"organizationId" label:"Organization ID" validate:"notblank"`
	UserID         string `json:"userId" label:"User ID" validate:"notblank"`
	Password       string `json:"password" label:"New Password" validate:"notblank,min=4"`
}

// VehicleForm carries vehicle details of a device record.
type VehicleForm struct {
	Name                  string            `json:"name" label:"Vehicle Name"`
	Type                  string            `json:"type"`
	Make                  string            `json:"make"`
	RegNo                 string            `json:"regno" label:"Vehicle Regno"`
	TabDeviceName         string            `json:"tabDeviceName"`
	OwnerName             string            `json:"ownerName"`
	OwnerPhone            string            `json:"ownerPhone"`
	OwnerAddress          string            `json:"ownerAddress"`
	Model                 string            `json:"model"`
	ManufactureYear       string            `json:"manufactureYear"`
	PurchasedYear         string            `json:"purchasedYear"`
	Color                 string            `json:"color"`
	Fuel                  string            `json:"fuel"`
	EngineNumber          string            `json:"engineNumber"`
	ChasisNumber          string            `json:"chasisNumber"`
	InsuranceCompany      string            `json:"insuranceCompany"`
	InsurancePolicyNumber string            `json:"insurancePolicyNumber"`
	InsuranceExpiryDate   string            `json:"insuranceExpiryDate" validate:"omitempty,date"`
	SeatCapacity          models.FlexString `json:"seatCapacity"`
	DriverName            string            `json:"driverName"`
	DriverPhone           string            `json:"driverPhone"`
	DriverAddress         string            `json:"driverAddress"`
}

// NewVehicleForm is a VehicleForm whose name and plate are mandatory.
type NewVehicleForm struct {
	VehicleForm
	Name  string `json:"name" label:"Vehicle Name" validate:"notblank"`
	RegNo string `json:"regno" label:"Vehicle Regno" validate:"notblank"`
}

// CreateTrackerForm is the payload of trackers/create.
type CreateTrackerForm struct {
	IMEI               string          `json:"imei" label:"IMEI" validate:"notblank"`
	IMEI2              string          `json:"imei2"`
	BoxID              string          `json:"boxid" label:"Box ID" validate:"notblank"`
	BoxID2             string          `json:"boxid2"`
	SimVendor          string          `json:"simvendor"`
	SimVendor2         string          `json:"simvendor2"`
	SimCard            string          `json:"simCard"`
	SimCard2           string          `json:"simCard2"`
	OrganizationID     string          `json:"organizationId" label:"Organization ID" validate:"notblank"`
	VehicleInformation *NewVehicleForm `json:"vehicleInformation" label:"Vehicle Information" validate:"required"`
}

// UpdateTrackerForm is the payload of trackers/update. Empty values leave
// the stored field unchanged.
type UpdateTrackerForm struct {
	OrganizationID     string       `json:"organizationId"`
	TrackerID          string       `json:"trackerId"`
	IMEI               string       `json:"imei"`
	IMEI2              string       `json:"imei2"`
	BoxID              string       `json:"boxid"`
	BoxID2             string       `json:"boxid2"`
	SimVendor          string       `json:"simvendor"`
	SimVendor2         string       `json:"simvendor2"`
	SimCard            string       `json:"simCard"`
	SimCard2           string       `json:"simCard2"`
	Status             string       `json:"status" label:"Status" validate:"omitempty,oneof=active hold disabled"`
	VehicleInformation *VehicleForm `json:"vehicleInformation"`
}

// TrackerRef identifies a device record within its organization.
type TrackerRef struct {
	OrganizationID string `json:"organizationId" label:"Organization ID" validate:"notblank"`
	TrackerID      string `json:"trackerId" label:"Tracker ID" validate:"notblank"`
}

// opt trims s and returns nil when nothing is left.
func opt(s string) *string {
	return models.Optional(strings.TrimSpace(s))
}

func optStatus(s string) *models.Status {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	st := models.Status(s)
	return &st
}

// truthy mirrors how loosely typed clients send switches: true, "true",
// non-zero numbers and non-empty strings all count.
func truthy(v interface{}) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != "" && b != "false" && b != "0"
	case float64:
		return b != 0
	default:
		return true
	}
}
