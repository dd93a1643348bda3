package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a tenant of the fleet platform. Its Tracker is the
// public identifier and never changes once assigned.
type Organization struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Tracker            string             `bson:"tracker" json:"organizationId"`
	Name               string             `bson:"name" json:"name"`
	Category           string             `bson:"category" json:"category"`
	Address            string             `bson:"address" json:"address"`
	Area               string             `bson:"area" json:"area"`
	City               string             `bson:"city" json:"city"`
	State              string             `bson:"state" json:"state"`
	Country            string             `bson:"country" json:"country"`
	Website            string             `bson:"website" json:"website"`
	Email              string             `bson:"email" json:"email"`
	Description        string             `bson:"description" json:"description"`
	ContactInformation interface{}        `bson:"contactInformation" json:"contactInformation"`
	Status             Status             `bson:"status" json:"status"`
	SMSAlert           bool               `bson:"smsAlert" json:"smsAlert"`
	AppAlert           bool               `bson:"appAlert" json:"appAlert"`
	CallAlert          bool               `bson:"callAlert" json:"callAlert"`
	EmailAlert         bool               `bson:"emailAlert" json:"emailAlert"`
	RFIDAlert          bool               `bson:"rfidAlert" json:"rfidAlert"`
	ETAAlert           bool               `bson:"etaAlert" json:"etaAlert"`
	AlertLock          bool               `bson:"alertlock" json:"alertlock"`
	CameraModuleView   bool               `bson:"cameraModuleView" json:"cameraModuleView"`
	OtherLang          bool               `bson:"otherlang" json:"otherlang"`
	OrgStartTime       string             `bson:"orgStartTime" json:"orgStartTime"`
	OrgEndTime         string             `bson:"orgEndTime" json:"orgEndTime"`
	OrgRefNo           int64              `bson:"orgRefNo" json:"orgRefNo"`
	OrgLocation        interface{}        `bson:"orgLocation" json:"orgLocation"`
	Reports            Reports            `bson:"reports" json:"reports"`
	Weekdays           Weekdays           `bson:"weekdays" json:"weekdays"`
	VoiceCall          VoiceCall          `bson:"voiceCall" json:"voiceCall"`
	CallingURL         string             `bson:"callingURL,omitempty" json:"callingURL,omitempty"`
	ClassLists         interface{}        `bson:"classLists,omitempty" json:"classLists,omitempty"`
	SectionLists       interface{}        `bson:"SectionLists,omitempty" json:"SectionLists,omitempty"`
	SchoolSessionLists interface{}        `bson:"schoolsessionLists,omitempty" json:"schoolsessionLists,omitempty"`
	CreatedAt          time.Time          `bson:"cashedDATEobjInsert" json:"-"`

	// Filled in by listings, never stored.
	LastLogin       *LoginLatest `bson:"-" json:"lastLogin,omitempty"`
	OrgTrackerCount int64        `bson:"-" json:"orgTrackerCount"`
	OrgUserCount    int64        `bson:"-" json:"orgUserCount"`
}

// Reports toggles which report families an organization can see.
type Reports struct {
	RFID     bool            `bson:"rfid" json:"rfid"`
	Tracking TrackingReports `bson:"tracking" json:"tracking"`
	AlertLog AlertLogReports `bson:"alertlog" json:"alertlog"`
	Others   OtherReports    `bson:"others" json:"others"`
}

type TrackingReports struct {
	Movement        bool `bson:"movement" json:"movement"`
	Halt            bool `bson:"halt" json:"halt"`
	MovementAndHalt bool `bson:"movementandhalt" json:"movementandhalt"`
	Overspeed       bool `bson:"overspeed" json:"overspeed"`
	Lowspeed        bool `bson:"lowspeed" json:"lowspeed"`
	RangeOfSpeed    bool `bson:"rangeofspeed" json:"rangeofspeed"`
	DaySummary      bool `bson:"daysummary" json:"daysummary"`
}

type AlertLogReports struct {
	CallAlertMadeLog bool `bson:"callalertmadelog" json:"callalertmadelog"`
	RouteHistoryLog  bool `bson:"routehistorylog" json:"routehistorylog"`
	MemberHistoryLog bool `bson:"memberhistorylog" json:"memberhistorylog"`
}

type OtherReports struct {
	Panic              bool `bson:"panic" json:"panic"`
	VehicleLastUpdate  bool `bson:"vehiclelastupdate" json:"vehiclelastupdate"`
	Engine             bool `bson:"engine" json:"engine"`
	AC                 bool `bson:"ac" json:"ac"`
	AccAndDecc         bool `bson:"accanddecc" json:"accanddecc"`
	RouteVehicleMapped bool `bson:"routevehiclemapped" json:"routevehiclemapped"`
	Geofence           bool `bson:"geofence" json:"geofence"`
}

// Weekdays marks the operating days of an organization.
type Weekdays struct {
	Sunday    bool `bson:"sunday" json:"sunday"`
	Monday    bool `bson:"monday" json:"monday"`
	Tuesday   bool `bson:"tuesday" json:"tuesday"`
	Wednesday bool `bson:"wednesday" json:"wednesday"`
	Thursday  bool `bson:"thursday" json:"thursday"`
	Friday    bool `bson:"friday" json:"friday"`
	Saturday  bool `bson:"saturday" json:"saturday"`
}

// VoiceCall configures outbound voice alerts.
type VoiceCall struct {
	Channel string `bson:"channel" json:"channel"`
	VoiceID string `bson:"voiceId" json:"voiceId"`
}

// DefaultReports enables every report family.
func DefaultReports() Reports {
	return Reports{
		RFID:     true,
		Tracking: TrackingReports{
			Movement: true, Halt: true, MovementAndHalt: true, Overspeed: true,
			Lowspeed: true, RangeOfSpeed: true, DaySummary: true,
		},
		AlertLog: AlertLogReports{CallAlertMadeLog: true, RouteHistoryLog: true, MemberHistoryLog: true},
		Others:   OtherReports{
			Panic: true, VehicleLastUpdate: true, Engine: true, AC: true,
			AccAndDecc: true, RouteVehicleMapped: true, Geofence: true,
		},
	}
}

// DefaultWeekdays is Monday to Friday.
func DefaultWeekdays() Weekdays {
	return Weekdays{Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true}
}

// OrganizationPatch is a sparse organization update. Nil fields and unset
// flags are left untouched in the store.
type OrganizationPatch struct {
	Name               *string
	Category           *string
	Address            *string
	Area               *string
	City               *string
	State              *string
	Country            *string
	Website            *string
	Email              *string
	Description        *string
	ContactInformation interface{}
	OrgLocation        interface{}
	Reports            *Reports
	Weekdays           *Weekdays
	VoiceCall          *VoiceCall
	OrgStartTime       *string
	OrgEndTime         *string
	ClassLists         interface{}
	SectionLists       interface{}
	// ClearSchoolSessions empties the list and wins over SchoolSessionLists.
	ClearSchoolSessions bool
	SchoolSessionLists  interface{}
	CallingURL          string

	SMSAlert         Flag
	AppAlert         Flag
	EmailAlert       Flag
	CallAlert        Flag
	RFIDAlert        Flag
	ETAAlert         Flag
	AlertLock        Flag
	CameraModuleView Flag
	OtherLang        Flag
}

// Set renders the patch as a $set document. callingURL is always written.
func (p OrganizationPatch) Set() bson.M {
	set := bson.M{"callingURL": p.CallingURL}
	putString(set, "name", p.Name)
	putString(set, "category", p.Category)
	putString(set, "address", p.Address)
	putString(set, "area", p.Area)
	putString(set, "city", p.City)
	putString(set, "state", p.State)
	putString(set, "country", p.Country)
	putString(set, "website", p.Website)
	putString(set, "email", p.Email)
	putString(set, "description", p.Description)
	putString(set, "orgStartTime", p.OrgStartTime)
	putString(set, "orgEndTime", p.OrgEndTime)
	if p.ContactInformation != nil {
		set["contactInformation"] = p.ContactInformation
	}
	if p.OrgLocation != nil {
		set["orgLocation"] = p.OrgLocation
	}
	if p.Reports != nil {
		set["reports"] = *p.Reports
	}
	if p.Weekdays != nil {
		set["weekdays"] = *p.Weekdays
	}
	if p.VoiceCall != nil {
		set["voiceCall"] = *p.VoiceCall
	}
	if p.ClassLists != nil {
		set["classLists"] = p.ClassLists
	}
	if p.SectionLists != nil {
		set["SectionLists"] = p.SectionLists
	}
	if p.ClearSchoolSessions {
		set["schoolsessionLists"] = bson.A{}
	} else if p.SchoolSessionLists != nil {
		set["schoolsessionLists"] = p.SchoolSessionLists
	}
	putFlag(set, "smsAlert", p.SMSAlert)
	putFlag(set, "appAlert", p.AppAlert)
	putFlag(set, "emailAlert", p.EmailAlert)
	putFlag(set, "callAlert", p.CallAlert)
	putFlag(set, "rfidAlert", p.RFIDAlert)
	putFlag(set, "etaAlert", p.ETAAlert)
	putFlag(set, "alertlock", p.AlertLock)
	putFlag(set, "cameraModuleView", p.CameraModuleView)
	putFlag(set, "otherlang", p.OtherLang)
	return set
}

func putString(m bson.M, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putFlag(m bson.M, key string, f Flag) {
	if f.IsSet() {
		m[key] = f.Bool()
	}
}

// Optional returns nil for an empty string, otherwise a pointer to it.
// Empty form values are treated as absent throughout the API.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
