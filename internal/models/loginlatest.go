package models

// LoginLatest is the last-login projection kept per organization by the
// login flow. Read-only here.
type LoginLatest struct {
	OrgID     string      `bson:"orgId" json:"-"`
	UserName  string      `bson:"userName" json:"userName"`
	RouteID   string      `bson:"routeId" json:"routeId"`
	UserEmail string      `bson:"userEmail" json:"userEmail"`
	LoginTime interface{} `bson:"loginTime" json:"loginTime"`
}
