package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/ident"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/notify"
	"github.com/ukydev/fleet-admin/internal/query"
	"github.com/ukydev/fleet-admin/internal/validate"
)

// dateLayout is the legacy ddmmyyyy creation date of a device record.
const dateLayout = "02012006"

// CreateTracker registers a device for an active organization. The device
// id is derived from the organization's reference number and the plate.
// Every check runs before the single insert.
func (s *Service) CreateTracker(ctx context.Context, actor string, form CreateTrackerForm) (string, error) {
	s.audit.Record(actor, auditRole, "createTracker")

	if err := s.check(form, ""); err != nil {
		return "", err
	}

	imei, imei2 := strings.TrimSpace(form.IMEI), strings.TrimSpace(form.IMEI2)
	inUse, err := s.trackers.IMEIInUse(ctx, []string{imei, imei2}, "")
	if err != nil {
		return "", Fault("check imei", err)
	}
	if inUse {
		return "", Conflict(CodeIMEIConflict)
	}

	orgID := strings.TrimSpace(form.OrganizationID)
	org, err := s.orgs.FindOrganization(ctx, orgID, models.StatusActive)
	if err != nil {
		return "", notFoundOr(err, CodeOrgNotFound, "find organization")
	}

	vf := form.VehicleInformation
	trackerID := ident.DeriveTrackerID(org.OrgRefNo, vf.RegNo)

	// A held record keeps its id; it is reactivated, not re-created.
	_, err = s.trackers.FindTracker(ctx, orgID, trackerID)
	switch {
	case err == nil:
		return "", Conflict(CodeTrackerConflict)
	case !errors.Is(err, db.ErrNotFound):
		return "", Fault("find tracker", err)
	}

	vehicle := vf.VehicleForm.info()
	vehicle.Name = strings.TrimSpace(vf.Name)
	vehicle.RegNo = strings.TrimSpace(vf.RegNo)

	now := s.clock.Now()
	tracker := models.Tracker{
		Tracker:             trackerID,
		IMEI:                imei,
		IMEI2:               imei2,
		BoxID:               strings.TrimSpace(form.BoxID),
		BoxID2:              strings.TrimSpace(form.BoxID2),
		SimVendor:           strings.TrimSpace(form.SimVendor),
		SimVendor2:          strings.TrimSpace(form.SimVendor2),
		SimCard:             strings.TrimSpace(form.SimCard),
		SimCard2:            strings.TrimSpace(form.SimCard2),
		Date:                now.Format(dateLayout),
		LogTimeMS:           now.UnixMilli(),
		VehicleInformation:  vehicle,
		Status:              models.StatusActive,
		OrganizationTracker: orgID,
	}
	if err := s.trackers.InsertTracker(ctx, tracker); err != nil {
		return "", Fault("insert tracker", err)
	}

	s.notifier.Publish(notify.Event{
		Event:          notify.EventTrackerCreated,
		OrganizationID: orgID,
		TrackerID:      trackerID,
		IMEI:           imei,
		IMEI2:          imei2,
		At:             now,
	})
	return trackerID, nil
}

func (f VehicleForm) info() models.VehicleInformation {
	v := models.VehicleInformation{
		Name:                  strings.TrimSpace(f.Name),
		Type:                  strings.TrimSpace(f.Type),
		Make:                  strings.TrimSpace(f.Make),
		RegNo:                 strings.TrimSpace(f.RegNo),
		TabDeviceName:         strings.TrimSpace(f.TabDeviceName),
		OwnerName:             strings.TrimSpace(f.OwnerName),
		OwnerPhone:            strings.TrimSpace(f.OwnerPhone),
		OwnerAddress:          strings.TrimSpace(f.OwnerAddress),
		Model:                 strings.TrimSpace(f.Model),
		ManufactureYear:       strings.TrimSpace(f.ManufactureYear),
		PurchasedYear:         strings.TrimSpace(f.PurchasedYear),
		Color:                 strings.TrimSpace(f.Color),
		Fuel:                  strings.TrimSpace(f.Fuel),
		EngineNumber:          strings.TrimSpace(f.EngineNumber),
		ChasisNumber:          strings.TrimSpace(f.ChasisNumber),
		InsuranceCompany:      strings.TrimSpace(f.InsuranceCompany),
		InsurancePolicyNumber: strings.TrimSpace(f.InsurancePolicyNumber),
		SeatCapacity:          strings.TrimSpace(string(f.SeatCapacity)),
		DriverName:            strings.TrimSpace(f.DriverName),
		DriverPhone:           strings.TrimSpace(f.DriverPhone),
		DriverAddress:         strings.TrimSpace(f.DriverAddress),
	}
	if f.InsuranceExpiryDate != "" {
		if t, err := validate.ParseDate(f.InsuranceExpiryDate); err == nil {
			v.InsuranceExpiryDate = &t
		}
	}
	return v
}

func (f UpdateTrackerForm) patch() models.TrackerPatch {
	p := models.TrackerPatch{
		IMEI:       opt(f.IMEI),
		IMEI2:      opt(f.IMEI2),
		BoxID:      opt(f.BoxID),
		BoxID2:     opt(f.BoxID2),
		SimVendor:  opt(f.SimVendor),
		SimVendor2: opt(f.SimVendor2),
		SimCard:    opt(f.SimCard),
		SimCard2:   opt(f.SimCard2),
		Status:     optStatus(f.Status),
	}
	if vf := f.VehicleInformation; vf != nil {
		p.Vehicle = models.VehiclePatch{
			RegNo:                 opt(vf.RegNo),
			Name:                  opt(vf.Name),
			Type:                  opt(vf.Type),
			TabDeviceName:         opt(vf.TabDeviceName),
			Make:                  opt(vf.Make),
			OwnerName:             opt(vf.OwnerName),
			OwnerPhone:            opt(vf.OwnerPhone),
			OwnerAddress:          opt(vf.OwnerAddress),
			Model:                 opt(vf.Model),
			ManufactureYear:       opt(vf.ManufactureYear),
			PurchasedYear:         opt(vf.PurchasedYear),
			Color:                 opt(vf.Color),
			Fuel:                  opt(vf.Fuel),
			EngineNumber:          opt(vf.EngineNumber),
			ChasisNumber:          opt(vf.ChasisNumber),
			InsuranceCompany:      opt(vf.InsuranceCompany),
			InsurancePolicyNumber: opt(vf.InsurancePolicyNumber),
			SeatCapacity:          opt(string(vf.SeatCapacity)),
			DriverName:            opt(vf.DriverName),
			DriverPhone:           opt(vf.DriverPhone),
			DriverAddress:         opt(vf.DriverAddress),
		}
	}
	return p
}

// UpdateTracker applies a sparse update to a device record and writes a
// history entry when its imei, imei2, boxid or boxid2 actually changes.
// The owning organization is never changed.
func (s *Service) UpdateTracker(ctx context.Context, actor string, form UpdateTrackerForm) (string, error) {
	s.audit.Record(actor, auditRole, "updateTracker")

	if err := s.check(form, ""); err != nil {
		return "", err
	}
	orgID, trackerID := strings.TrimSpace(form.OrganizationID), strings.TrimSpace(form.TrackerID)
	if orgID == "" || trackerID == "" {
		return "", Invalid(CodeMissingTrackerIDs)
	}

	patch := form.patch()
	for _, imei := range []*string{patch.IMEI, patch.IMEI2} {
		if imei == nil {
			continue
		}
		inUse, err := s.trackers.IMEIInUse(ctx, []string{*imei}, trackerID)
		if err != nil {
			return "", Fault("check imei", err)
		}
		if inUse {
			return "", Conflict(CodeIMEIConflict)
		}
	}

	old, err := s.trackers.FindTracker(ctx, orgID, trackerID)
	if err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "find tracker")
	}
	if patch.Status != nil && *patch.Status == models.StatusActive && old.Status != models.StatusActive {
		// Stored imeis the patch keeps must be free again.
		var kept []string
		if patch.IMEI == nil && old.IMEI != "" {
			kept = append(kept, old.IMEI)
		}
		if patch.IMEI2 == nil && old.IMEI2 != "" {
			kept = append(kept, old.IMEI2)
		}
		if len(kept) > 0 {
			inUse, err := s.trackers.IMEIInUse(ctx, kept, trackerID)
			if err != nil {
				return "", Fault("check imei", err)
			}
			if inUse {
				return "", Conflict(CodeIMEIConflict)
			}
		}
	}

	if set := patch.Set(); len(set) > 0 {
		if err := s.trackers.UpdateTracker(ctx, orgID, trackerID, set); err != nil {
			return "", notFoundOr(err, CodeRecordNotFound, "update tracker")
		}
	}

	if patch.IdentityChanged(*old) {
		if err := s.recordHistory(ctx, actor, orgID, *old, patch); err != nil {
			return "", err
		}
	}

	ev := notify.Event{Event: notify.EventTrackerUpdated, OrganizationID: orgID, TrackerID: trackerID, IMEI: old.IMEI, IMEI2: old.IMEI2, At: s.clock.Now()}
	if patch.IMEI != nil {
		ev.IMEI = *patch.IMEI
	}
	if patch.IMEI2 != nil {
		ev.IMEI2 = *patch.IMEI2
	}
	s.notifier.Publish(ev)
	return trackerID, nil
}

// recordHistory appends the identity change of old. The organization name
// is read at the time of the change.
func (s *Service) recordHistory(ctx context.Context, actor, orgID string, old models.Tracker, patch models.TrackerPatch) error {
	var orgName string
	org, err := s.orgs.FindOrganization(ctx, orgID, models.StatusActive)
	switch {
	case err == nil:
		orgName = org.Name
	case !errors.Is(err, db.ErrNotFound):
		return Fault("find organization", err)
	}

	entry := models.TrackerHistory{
		Tracker:     uuid.NewString(),
		VehTracker:  old.Tracker,
		OldIMEI:     old.IMEI,
		OldIMEI2:    old.IMEI2,
		OldBoxID:    old.BoxID,
		OldBoxID2:   old.BoxID2,
		OldSimCard:  old.SimCard,
		OldSimCard2: old.SimCard2,
		OldRegNo:    old.VehicleInformation.RegNo,
		UserTracker: actor,
		OrgID:       orgID,
		OrgName:     orgName,
		LogTimeMS:   s.nowMS(),
		OldData:     models.TrackerHistorySnapshot{
			VehicleInformation:  old.VehicleInformation,
			OrganizationTracker: old.OrganizationTracker,
		},
	}
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	entry.NewIMEI = deref(patch.IMEI)
	entry.NewIMEI2 = deref(patch.IMEI2)
	entry.NewBoxID = deref(patch.BoxID)
	entry.NewBoxID2 = deref(patch.BoxID2)
	entry.NewRegNo = deref(patch.Vehicle.RegNo)

	if err := s.history.InsertHistory(ctx, entry); err != nil {
		return Fault("insert tracker history", err)
	}
	return nil
}

// DeleteTracker puts an active or disabled device record on hold.
func (s *Service) DeleteTracker(ctx context.Context, actor string, ref TrackerRef) (string, error) {
	s.audit.Record(actor, auditRole, "deleteTracker")

	if msgs := s.validator.Struct(ref); len(msgs) > 0 {
		return "", Invalid(CodeMissingTrackerIDs, msgs...)
	}
	orgID, trackerID := strings.TrimSpace(ref.OrganizationID), strings.TrimSpace(ref.TrackerID)

	old, err := s.trackers.FindTracker(ctx, orgID, trackerID, models.StatusActive, models.StatusDisabled)
	if err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "find tracker")
	}
	if err := s.trackers.UpdateTracker(ctx, orgID, trackerID, models.TrackerPatch{Status: optStatus(string(models.StatusHold))}.Set()); err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "hold tracker")
	}

	s.notifier.Publish(notify.Event{Event: notify.EventTrackerHold, OrganizationID: orgID, TrackerID: trackerID, IMEI: old.IMEI, IMEI2: old.IMEI2, At: s.clock.Now()})
	return trackerID, nil
}

// RemoveTracker deletes a device record permanently.
func (s *Service) RemoveTracker(ctx context.Context, actor string, ref TrackerRef) (string, error) {
	s.audit.Record(actor, auditRole, "removeTracker")

	if msgs := s.validator.Struct(ref); len(msgs) > 0 {
		return "", Invalid(CodeMissingTrackerIDs, msgs...)
	}
	orgID, trackerID := strings.TrimSpace(ref.OrganizationID), strings.TrimSpace(ref.TrackerID)

	old, err := s.trackers.FindTracker(ctx, orgID, trackerID)
	if err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "find tracker")
	}
	if err := s.trackers.DeleteTracker(ctx, orgID, trackerID); err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "remove tracker")
	}

	s.notifier.Publish(notify.Event{Event: notify.EventTrackerRemoved, OrganizationID: orgID, TrackerID: trackerID, IMEI: old.IMEI, IMEI2: old.IMEI2, At: s.clock.Now()})
	return trackerID, nil
}

// ViewTrackers lists an organization's device records, active ones unless
// a status is given.
func (s *Service) ViewTrackers(ctx context.Context, actor string, filter query.TrackerFilter, extra models.Extra) ([]models.Tracker, error) {
	s.audit.Record(actor, auditRole, "viewTrackers")

	if err := s.check(filter, ""); err != nil {
		return nil, err
	}
	if strings.TrimSpace(filter.OrganizationID) == "" {
		return nil, Invalid(CodeBadFilter)
	}

	page := query.Paginate(extra, query.TrackerPageSize, "logTimeMS")
	trackers, err := s.trackers.FindTrackers(ctx, query.Trackers(filter), page.FindOptions())
	if err != nil {
		return nil, Fault("find trackers", err)
	}
	return trackers, nil
}
