package models

// TrackerHistory is an append-only record of a tracker's hardware identity
// change. Written only when imei, imei2, boxid or boxid2 actually changed.
type TrackerHistory struct {
	Tracker     string                 `bson:"tracker" json:"historyId"`
	VehTracker  string                 `bson:"veh_tracker" json:"trackerId"`
	OldIMEI     string                 `bson:"old_imei" json:"old_imei"`
	OldIMEI2    string                 `bson:"old_imei2" json:"old_imei2"`
	OldBoxID    string                 `bson:"old_boxid" json:"old_boxid"`
	OldBoxID2   string                 `bson:"old_boxid2" json:"old_boxid2"`
	OldSimCard  string                 `bson:"old_simCard" json:"old_simCard"`
	OldSimCard2 string                 `bson:"old_simCard2" json:"old_simCard2"`
	OldRegNo    string                 `bson:"old_regno" json:"old_regno"`
	NewIMEI     string                 `bson:"new_imei,omitempty" json:"new_imei,omitempty"`
	NewIMEI2    string                 `bson:"new_imei2,omitempty" json:"new_imei2,omitempty"`
	NewBoxID    string                 `bson:"new_boxid,omitempty" json:"new_boxid,omitempty"`
	NewBoxID2   string                 `bson:"new_boxid2,omitempty" json:"new_boxid2,omitempty"`
	NewRegNo    string                 `bson:"new_regno,omitempty" json:"new_regno,omitempty"`
	UserTracker string                 `bson:"userTracker" json:"userTracker"`
	OrgID       string                 `bson:"orgId" json:"organizationId"`
	OrgName     string                 `bson:"orgName" json:"orgName"`
	LogTimeMS   int64                  `bson:"logTimeMS" json:"logTimeMS"`
	OldData     TrackerHistorySnapshot `bson:"old_data" json:"old_data"`
}

// TrackerHistorySnapshot keeps the parts of the pre-image that are not
// flattened into old_* fields.
type TrackerHistorySnapshot struct {
	VehicleInformation  VehicleInformation `bson:"vehicleInformation" json:"vehicleInformation"`
	OrganizationTracker string             `bson:"organizationTracker" json:"organizationId"`
}
