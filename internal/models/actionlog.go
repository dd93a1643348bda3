package models

// ActionLog is an append-only audit entry. Request entries carry Endpoint;
// cascade entries carry Action and Collection.
type ActionLog struct {
	User       string `bson:"user" json:"user"`
	Role       string `bson:"role,omitempty" json:"role,omitempty"`
	Endpoint   string `bson:"endpoint,omitempty" json:"endpoint,omitempty"`
	Action     string `bson:"action,omitempty" json:"action,omitempty"`
	Collection string `bson:"collection,omitempty" json:"collection,omitempty"`
	LogTimeMS  int64  `bson:"logTimeMS" json:"logTimeMS"`
}
