package models

import (
	"bytes"
	"encoding/json"
)

// Envelope is the common request body. Clients may wrap it in {"data": ...}.
type Envelope struct {
	Key    string          `json:"key"`
	Form   json.RawMessage `json:"form"`
	Filter json.RawMessage `json:"filter"`
	Extra  Extra           `json:"extra"`
}

// Extra carries paging and sort hints for listings.
type Extra struct {
	PageIndex          int64  `json:"pageIndex"`
	PageJump           int64  `json:"pageJump"`
	OrderByDateCreated string `json:"orderByDateCreated"`
}

// DashboardCounts is the admin overview of active records.
type DashboardCounts struct {
	ActiveOrgCount     int64 `json:"activeOrgCount"`
	ActiveTrackerCount int64 `json:"activeTrackerCount"`
	ActiveAdminUC      int64 `json:"activeAdminUC"`
	ActiveOrgAdminUC   int64 `json:"activeOrgAdminUC"`
}

// DecodeEnvelope parses a request body, unwrapping {"data": ...} when
// present. An empty body yields an empty envelope.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return env, nil
	}
	var wrapped struct {
		Data *Envelope `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return env, err
	}
	if wrapped.Data != nil {
		return *wrapped.Data, nil
	}
	err := json.Unmarshal(body, &env)
	return env, err
}

// Response statuses.
const (
	ResponseSuccess = "success"
	ResponseFailure = "failure"
)

// Response is the common reply body. IDField names the key under which ID
// is sent, e.g. "organizationId".
type Response struct {
	Status   string
	EC       string
	Response interface{}
	IDField  string
	ID       string
}

func (r Response) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"status": r.Status}
	if r.EC != "" {
		out["ec"] = r.EC
	}
	if r.Response != nil {
		out["response"] = r.Response
	}
	if r.IDField != "" && r.ID != "" {
		out[r.IDField] = r.ID
	}
	return json.Marshal(out)
}
